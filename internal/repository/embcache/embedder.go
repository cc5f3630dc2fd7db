// Package embcache puts a key-value cache in front of the query text
// embedder. Store failures degrade to provider calls and never fail a query.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecspace/internal/db"
	"github.com/kailas-cloud/vecspace/internal/domain"
)

// KeyPrefix is prepended to every entry, under the store namespace.
const KeyPrefix = "emb_cache:"

// Cache result labels.
const (
	resultHit     = "hit"
	resultMiss    = "miss"
	resultCorrupt = "corrupt"
)

type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) (int64, error)
}

// Embedder serves repeated query texts from the store.
type Embedder struct {
	inner  domain.Embedder
	store  store
	model  string
	ttl    time.Duration
	total  *prometheus.CounterVec
	logger *zap.Logger
}

// New wraps inner. Entries are keyed by model and text; ttl <= 0 keeps them
// until evicted. total, when non-nil, is counted by "result".
func New(
	inner domain.Embedder,
	s store,
	model string,
	ttl time.Duration,
	total *prometheus.CounterVec,
	logger *zap.Logger,
) *Embedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Embedder{
		inner:  inner,
		store:  s,
		model:  model,
		ttl:    ttl,
		total:  total,
		logger: logger.With(zap.String("component", "embcache")),
	}
}

// Embed returns the cached vector for text or asks the inner embedder.
// Hits report zero tokens, so budgets are only charged for provider calls.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := Key(e.model, text)

	if vec, ok := e.lookup(ctx, key); ok {
		e.count(resultHit)
		return domain.EmbeddingResult{Embedding: vec}, nil
	}
	e.count(resultMiss)

	res, err := e.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}
	if len(res.Embedding) > 0 {
		if err := e.store.Put(ctx, key, encodeVector(res.Embedding), e.ttl); err != nil {
			e.logger.Warn("cache put failed", zap.String("key", key), zap.Error(err))
		}
	}
	return res, nil
}

// HealthCheck reports the inner embedder's health; the store has its own check.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if hc, ok := e.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // passthrough
	}
	return nil
}

// Key derives the store key for text embedded by model.
func Key(model, text string) string {
	h := sha256.Sum256([]byte(model + "\x00" + text))
	return KeyPrefix + hex.EncodeToString(h[:])
}

func (e *Embedder) lookup(ctx context.Context, key string) ([]float32, bool) {
	data, err := e.store.Get(ctx, key)
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
		return nil, false
	case err != nil:
		e.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	vec, err := decodeVector(data)
	if err != nil {
		e.count(resultCorrupt)
		e.logger.Warn("dropping corrupt cache entry", zap.String("key", key), zap.Error(err))
		if _, derr := e.store.Delete(ctx, key); derr != nil {
			e.logger.Debug("cache delete failed", zap.String("key", key), zap.Error(derr))
		}
		return nil, false
	}
	return vec, true
}

func (e *Embedder) count(result string) {
	if e.total != nil {
		e.total.WithLabelValues(result).Inc()
	}
}
