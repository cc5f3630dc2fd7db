// Package embedding guards the query text embedder with a token budget.
package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecspace/internal/domain"
	logpkg "github.com/kailas-cloud/vecspace/internal/logger"
	"github.com/kailas-cloud/vecspace/internal/metrics"
)

// BudgetChecker is what the embedder needs from a budget.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	RemainingDaily() int64
	RemainingMonthly() int64
}

// InstrumentedEmbedder charges every provider call against a budget.
// Provider request metrics live in transport/openai; this layer only
// tracks budget state.
type InstrumentedEmbedder struct {
	inner    domain.Embedder
	provider string
	model    string
	budget   BudgetChecker
	logger   *zap.Logger
}

// NewInstrumentedEmbedder wraps inner. budget may be nil, in which case
// calls pass straight through.
func NewInstrumentedEmbedder(
	inner domain.Embedder, provider, model string,
	budget BudgetChecker, logger *zap.Logger,
) *InstrumentedEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &InstrumentedEmbedder{
		inner:    inner,
		provider: provider,
		model:    model,
		budget:   budget,
		logger:   logger,
	}
	e.publishRemaining()
	return e
}

// Embed rejects over-budget requests before reaching the provider and
// charges the tokens it reports afterwards. Cached results report zero
// tokens and are free.
func (e *InstrumentedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	log := logpkg.From(ctx, e.logger).With(
		zap.String("provider", e.provider),
		zap.String("model", e.model),
	)

	if e.budget != nil {
		if err := e.budget.Check(ctx); err != nil {
			log.Warn("Embedding rejected by budget", zap.Error(err))
			return domain.EmbeddingResult{}, fmt.Errorf("budget check: %w", err)
		}
	}

	start := time.Now()
	res, err := e.inner.Embed(ctx, text)
	elapsed := time.Since(start)
	if err != nil {
		log.Error("Embedding request failed", zap.Duration("duration", elapsed), zap.Error(err))
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	if e.budget != nil && res.TotalTokens > 0 {
		e.budget.Record(int64(res.TotalTokens))
		e.publishRemaining()
	}

	log.Debug("Embedding request completed",
		zap.Duration("duration", elapsed),
		zap.Int("dimensions", len(res.Embedding)),
		zap.Int("total_tokens", res.TotalTokens),
	)
	return res, nil
}

// HealthCheck delegates to the inner embedder when it has one.
func (e *InstrumentedEmbedder) HealthCheck(ctx context.Context) error {
	hc, ok := e.inner.(domain.HealthChecker)
	if !ok {
		return nil
	}
	if err := hc.HealthCheck(ctx); err != nil {
		return fmt.Errorf("embedding health check: %w", err)
	}
	return nil
}

func (e *InstrumentedEmbedder) publishRemaining() {
	if e.budget == nil {
		return
	}
	g := metrics.EmbeddingBudgetTokensRemaining
	g.WithLabelValues(e.provider, PeriodDaily).Set(float64(e.budget.RemainingDaily()))
	g.WithLabelValues(e.provider, PeriodMonthly).Set(float64(e.budget.RemainingMonthly()))
}
