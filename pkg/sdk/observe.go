package vecspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// opMetrics are exported when WithPrometheus is set. Engine operations carry
// an empty backend label.
type opMetrics struct {
	total   *prometheus.CounterVec
	seconds *prometheus.HistogramVec
	points  *prometheus.CounterVec
}

func newOpMetrics(reg prometheus.Registerer) (*opMetrics, error) {
	total, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vecspace",
		Subsystem: "sdk",
		Name:      "operations_total",
		Help:      "SDK calls by operation, backend and status.",
	}, []string{"operation", "backend", "status"}))
	if err != nil {
		return nil, err
	}
	seconds, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vecspace",
		Subsystem: "sdk",
		Name:      "operation_duration_seconds",
		Help:      "SDK call latency.",
		Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
	}, []string{"operation", "backend"}))
	if err != nil {
		return nil, err
	}
	points, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vecspace",
		Subsystem: "sdk",
		Name:      "points_returned_total",
		Help:      "Points or neighbors returned by successful SDK calls.",
	}, []string{"operation", "backend"}))
	if err != nil {
		return nil, err
	}
	return &opMetrics{total: total, seconds: seconds, points: points}, nil
}

// register adds c to reg. When an identical collector is already there it is
// returned instead, so several clients can share one registry.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return c, fmt.Errorf("vecspace: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return c, fmt.Errorf("vecspace: metric registered as %T", are.ExistingCollector)
	}
	return existing, nil
}

type observer struct {
	logger  *slog.Logger
	metrics *opMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newOpMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

// span tracks one SDK call from begin to end.
type span struct {
	obs     *observer
	ctx     context.Context
	op      string
	backend string
	start   time.Time
	points  int
}

// begin is safe on a nil observer; the span then records nothing.
func (o *observer) begin(ctx context.Context, op, backend string) *span {
	return &span{obs: o, ctx: ctx, op: op, backend: backend, start: time.Now(), points: -1}
}

// returned notes how many points the call produced.
func (s *span) returned(n int) { s.points = n }

func (s *span) end(err error) {
	o := s.obs
	if o == nil {
		return
	}
	took := time.Since(s.start)

	if m := o.metrics; m != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		m.total.WithLabelValues(s.op, s.backend, status).Inc()
		m.seconds.WithLabelValues(s.op, s.backend).Observe(took.Seconds())
		if err == nil && s.points > 0 {
			m.points.WithLabelValues(s.op, s.backend).Add(float64(s.points))
		}
	}

	if o.logger == nil {
		return
	}
	attrs := []slog.Attr{slog.String("op", s.op), slog.Duration("took", took)}
	if s.backend != "" {
		attrs = append(attrs, slog.String("backend", s.backend))
	}
	if err != nil {
		o.logger.LogAttrs(s.ctx, slog.LevelWarn, "vecspace call failed", append(attrs, slog.Any("error", err))...)
		return
	}
	if s.points >= 0 {
		attrs = append(attrs, slog.Int("points", s.points))
	}
	o.logger.LogAttrs(s.ctx, slog.LevelDebug, "vecspace call", attrs...)
}
