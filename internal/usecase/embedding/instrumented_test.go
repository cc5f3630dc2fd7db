package embedding

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecspace/internal/domain"
	"github.com/kailas-cloud/vecspace/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	os.Exit(m.Run())
}

type mockEmbedder struct {
	result    domain.EmbeddingResult
	err       error
	healthErr error
	calls     int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

func (m *mockEmbedder) HealthCheck(_ context.Context) error { return m.healthErr }

type plainEmbedder struct{}

func (plainEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, nil
}

func TestInstrumentedEmbedder_Success(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:   []float32{0.1, 0.2, 0.3},
		TotalTokens: 4,
	}}
	p := NewInstrumentedEmbedder(inner, "test", "test-model", nil, zap.NewNop())

	result, err := p.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 || result.TotalTokens != 4 {
		t.Fatalf("result = %+v", result)
	}
}

func TestInstrumentedEmbedder_Error(t *testing.T) {
	inner := &mockEmbedder{err: fmt.Errorf("api error: %w", domain.ErrEmbeddingProviderError)}
	p := NewInstrumentedEmbedder(inner, "test-err", "test-model-e", nil, zap.NewNop())

	_, err := p.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
}

func TestInstrumentedEmbedder_BudgetRejection(t *testing.T) {
	budget := NewBudgetTracker("test-budget", 100, 0, BudgetActionReject, zap.NewNop())
	budget.Record(100)

	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	p := NewInstrumentedEmbedder(inner, "test-budget", "test-model-b", budget, zap.NewNop())

	_, err := p.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingQuotaExceeded) {
		t.Fatalf("expected domain.ErrEmbeddingQuotaExceeded, got %v", err)
	}
	if inner.calls != 0 {
		t.Error("inner embedder must not be called over budget")
	}
}

func TestInstrumentedEmbedder_RecordsBudget(t *testing.T) {
	budget := NewBudgetTracker("test-record", 1000000, 10000000, BudgetActionReject, zap.NewNop())

	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:   []float32{0.1, 0.2, 0.3},
		TotalTokens: 500,
	}}
	p := NewInstrumentedEmbedder(inner, "test-record", "test-model-r", budget, zap.NewNop())

	initialDaily := budget.RemainingDaily()
	initialMonthly := budget.RemainingMonthly()

	if _, err := p.Embed(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := budget.RemainingDaily(); got != initialDaily-500 {
		t.Errorf("expected daily remaining to decrease by 500, got %d -> %d", initialDaily, got)
	}
	if got := budget.RemainingMonthly(); got != initialMonthly-500 {
		t.Errorf("expected monthly remaining to decrease by 500, got %d -> %d", initialMonthly, got)
	}
}

func TestInstrumentedEmbedder_PublishesRemaining(t *testing.T) {
	budget := NewBudgetTracker("test-gauge", 1000, 0, BudgetActionWarn, zap.NewNop())
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}, TotalTokens: 250}}
	p := NewInstrumentedEmbedder(inner, "test-gauge", "m", budget, nil)

	daily := metrics.EmbeddingBudgetTokensRemaining.WithLabelValues("test-gauge", PeriodDaily)
	if got := testutil.ToFloat64(daily); got != 1000 {
		t.Errorf("initial daily gauge = %v, want 1000", got)
	}
	if _, err := p.Embed(context.Background(), "x"); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(daily); got != 750 {
		t.Errorf("daily gauge = %v, want 750", got)
	}
	monthly := metrics.EmbeddingBudgetTokensRemaining.WithLabelValues("test-gauge", PeriodMonthly)
	if got := testutil.ToFloat64(monthly); got != -1 {
		t.Errorf("unlimited monthly gauge = %v, want -1", got)
	}
}

func TestInstrumentedEmbedder_HealthCheck(t *testing.T) {
	p := NewInstrumentedEmbedder(&mockEmbedder{healthErr: errors.New("down")}, "p", "m", nil, nil)
	if err := p.HealthCheck(context.Background()); err == nil {
		t.Error("expected inner health error")
	}

	p = NewInstrumentedEmbedder(plainEmbedder{}, "p", "m", nil, nil)
	if err := p.HealthCheck(context.Background()); err != nil {
		t.Errorf("embedder without health check must pass, got %v", err)
	}
}
