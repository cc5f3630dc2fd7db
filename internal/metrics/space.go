package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Normalization, executor and engine metrics.
var (
	NormalizedPointsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "normalized_points_total",
			Help:      "Total points produced by response normalizers",
		},
		[]string{"backend"},
	)

	EmptyNormalizationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "empty_normalizations_total",
			Help:      "Normalizations that produced no points",
		},
		[]string{"backend"},
	)

	ExecutorDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "executor_duration_seconds",
			Help:      "Backend query execution duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"backend", "status"},
	)

	NeighborQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "neighbor_queries_total",
			Help:      "Nearest-neighbor queries by metric and mode (k, threshold, all)",
		},
		[]string{"metric", "mode"},
	)
)

var spaceOnce sync.Once

// RegisterSpaceMetrics registers the normalization, executor and engine
// collectors. Safe to call more than once.
func RegisterSpaceMetrics() {
	spaceOnce.Do(func() {
		prometheus.MustRegister(
			NormalizedPointsTotal,
			EmptyNormalizationsTotal,
			ExecutorDuration,
			NeighborQueriesTotal,
		)
	})
}
