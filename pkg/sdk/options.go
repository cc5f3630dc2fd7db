package vecspace

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	embedder  Embedder
	executors map[string]Executor

	metric    Metric
	defaultK  int
	maxPoints int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithEmbedder sets the text embedding provider used for text queries.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithExecutor attaches an executor to a backend so Execute can run its
// native queries. Unknown backend names make New fail.
func WithExecutor(backend string, e Executor) Option {
	return optionFunc(func(c *clientConfig) {
		if c.executors == nil {
			c.executors = make(map[string]Executor)
		}
		c.executors[backend] = e
	})
}

// WithMetric sets the metric used when a query names none.
// Default: Euclidean.
func WithMetric(m Metric) Option {
	return optionFunc(func(c *clientConfig) {
		c.metric = m
	})
}

// WithDefaultK sets the neighbor count used when a query gives neither K
// nor a threshold. Default: 0 (all neighbors).
func WithDefaultK(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultK = k
	})
}

// WithMaxPoints caps the point list accepted by the engine.
// Default: 100000.
func WithMaxPoints(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxPoints = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
