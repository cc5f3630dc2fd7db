// Package metrics holds the service's Prometheus collectors. Each group is
// registered on the default registerer by its Register function.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "vecspace"

const embeddingSubsystem = "embedding"

// Query embedding metrics. Provider calls are recorded by the transport;
// budget and cache series by the decorators around it.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: embeddingSubsystem,
			Name:      "requests_total",
			Help:      "Embedding provider requests by outcome",
		},
		[]string{"provider", "model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: embeddingSubsystem,
			Name:      "request_duration_seconds",
			Help:      "Embedding provider latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: embeddingSubsystem,
			Name:      "tokens_total",
			Help:      "Tokens billed by the embedding provider",
		},
		[]string{"provider", "model", "type"},
	)

	EmbeddingErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: embeddingSubsystem,
			Name:      "errors_total",
			Help:      "Embedding provider failures by kind",
		},
		[]string{"provider", "model", "error_type"},
	)

	EmbeddingBudgetTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: embeddingSubsystem,
			Name:      "budget_tokens_remaining",
			Help:      "Tokens left in the query embedding budget, -1 when unlimited",
		},
		[]string{"provider", "period"},
	)

	EmbeddingBudgetExceededTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: embeddingSubsystem,
			Name:      "budget_exceeded_total",
			Help:      "Requests made while a budget period was exhausted",
		},
		[]string{"provider", "period", "action"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: embeddingSubsystem,
			Name:      "cache_total",
			Help:      "Embedding cache lookups by result (hit, miss, corrupt)",
		},
		[]string{"result"},
	)
)

var embeddingOnce sync.Once

// RegisterEmbeddingMetrics registers the embedding collectors. Safe to call
// more than once.
func RegisterEmbeddingMetrics() {
	embeddingOnce.Do(func() {
		prometheus.MustRegister(
			EmbeddingRequestsTotal,
			EmbeddingRequestDuration,
			EmbeddingTokensTotal,
			EmbeddingErrorsTotal,
			EmbeddingBudgetTokensRemaining,
			EmbeddingBudgetExceededTotal,
			EmbeddingCacheTotal,
		)
	})
}
