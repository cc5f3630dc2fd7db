// Package explore is the use case layer over the adapter registry and the
// distance engine: it resolves backends, embeds query text and records
// normalization and execution metrics.
package explore

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecspace/internal/domain"
	"github.com/kailas-cloud/vecspace/internal/domain/backend"
	"github.com/kailas-cloud/vecspace/internal/domain/filter"
	"github.com/kailas-cloud/vecspace/internal/domain/point"
	"github.com/kailas-cloud/vecspace/internal/domain/query"
	"github.com/kailas-cloud/vecspace/internal/domain/space"
	logpkg "github.com/kailas-cloud/vecspace/internal/logger"
	"github.com/kailas-cloud/vecspace/internal/metrics"
)

const defaultMaxPoints = 100000

// Service handles backend translation and point-space queries.
type Service struct {
	registry Registry
	embed    Embedder
	logger   *zap.Logger

	metric    space.Metric
	k         int
	maxPoints int
}

// New creates an explore service. embed can be nil, which disables text queries.
func New(registry Registry, embed Embedder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		registry:  registry,
		embed:     embed,
		logger:    logger,
		metric:    space.Euclidean,
		maxPoints: defaultMaxPoints,
	}
}

// WithEngineDefaults sets the metric used when a request names none, the
// neighbor count used when a request gives neither k nor a threshold
// (0 = all), and the largest accepted point list.
func (s *Service) WithEngineDefaults(metric space.Metric, k, maxPoints int) *Service {
	if metric != "" {
		s.metric = metric
	}
	if k >= 0 {
		s.k = k
	}
	if maxPoints > 0 {
		s.maxPoints = maxPoints
	}
	return s
}

// Backends lists every supported backend in registry order.
func (s *Service) Backends() []backend.Descriptor {
	return backend.All()
}

// Backend returns the descriptor of one backend.
func (s *Service) Backend(name string) (backend.Descriptor, error) {
	d, ok := backend.Lookup(name)
	if !ok {
		return backend.Descriptor{}, fmt.Errorf("%w: %q", domain.ErrUnknownBackend, name)
	}
	return d, nil
}

// TranslateFilter renders set in the backend's native filter syntax.
func (s *Service) TranslateFilter(name string, set filter.Set) (any, error) {
	a, err := s.registry.Adapter(name)
	if err != nil {
		return nil, err
	}
	out, err := a.TranslateFilter(set)
	if err != nil {
		return nil, fmt.Errorf("translate filter: %w", err)
	}
	return out, nil
}

// Normalize converts a raw backend response into canonical points. A
// malformed response yields an empty list, never an error.
func (s *Service) Normalize(name string, raw any, opts query.NormalizeOptions) ([]point.Point, error) {
	a, err := s.registry.Adapter(name)
	if err != nil {
		return nil, err
	}
	points := a.Normalize(raw, opts)
	s.recordNormalized(a.Name(), len(points))
	if points == nil {
		points = []point.Point{}
	}
	return points, nil
}

func (s *Service) recordNormalized(name string, n int) {
	metrics.NormalizedPointsTotal.WithLabelValues(name).Add(float64(n))
	if n == 0 {
		metrics.EmptyNormalizationsTotal.WithLabelValues(name).Inc()
		s.logger.Debug("normalization produced no points", zap.String("backend", name))
	}
}

// QueryInput is a canonical query plus optional text to embed in place of
// the vector.
type QueryInput struct {
	query.Request
	Text string
}

// BuildQuery renders the query in the backend's native format. Text is
// embedded first when no vector is given.
func (s *Service) BuildQuery(ctx context.Context, name string, in QueryInput) (any, error) {
	a, err := s.registry.Adapter(name)
	if err != nil {
		return nil, err
	}

	req := in.Request
	if in.Text != "" && len(req.Vector) == 0 && len(req.IDs) == 0 {
		if s.embed == nil {
			return nil, domain.ErrEmbedderNotConfigured
		}
		res, err := s.embed.Embed(ctx, in.Text)
		if err != nil {
			logpkg.From(ctx, s.logger).Debug("embed query text failed",
				zap.String("backend", name), zap.Error(err))
			return nil, fmt.Errorf("embed query text: %w", err)
		}
		req.Vector = res.Float64s()
	}

	out, err := a.BuildQuery(req)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return out, nil
}

// Execute runs a backend-native query through the configured executor.
func (s *Service) Execute(ctx context.Context, name, native string) ([]point.Point, error) {
	e, err := s.registry.Executor(name)
	if err != nil {
		return nil, err
	}
	key := backend.Canonical(name)
	log := logpkg.From(ctx, s.logger).With(zap.String("backend", key))

	start := time.Now()
	points, err := e.Execute(ctx, native)
	elapsed := time.Since(start)

	if err != nil {
		metrics.ExecutorDuration.WithLabelValues(key, "error").Observe(elapsed.Seconds())
		log.Warn("backend query failed",
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		return nil, fmt.Errorf("execute: %w", err)
	}

	metrics.ExecutorDuration.WithLabelValues(key, "success").Observe(elapsed.Seconds())
	s.recordNormalized(key, len(points))
	log.Info("backend query executed",
		zap.Duration("duration", elapsed),
		zap.Int("points", len(points)),
	)
	if points == nil {
		points = []point.Point{}
	}
	return points, nil
}

// NeighborsInput configures a nearest-neighbor query. Metric "" uses the
// service default; K nil with no Threshold uses the default k.
type NeighborsInput struct {
	Points      []point.Point
	ReferenceID string
	Metric      string
	VectorField string
	K           *int
	Threshold   *float64
}

// Neighbors returns the points nearest to the reference, closest first.
func (s *Service) Neighbors(in NeighborsInput) ([]space.Neighbor, error) {
	if err := s.checkSize(in.Points); err != nil {
		return nil, err
	}
	metric, err := s.resolveMetric(in.Metric)
	if err != nil {
		return nil, err
	}

	q := space.NeighborQuery{
		Metric:      metric,
		VectorField: in.VectorField,
		K:           s.k,
		Threshold:   in.Threshold,
	}
	if in.K != nil {
		q.K = *in.K
	}

	mode := "all"
	switch {
	case q.Threshold != nil:
		mode = "threshold"
	case q.K > 0:
		mode = "k"
	}
	metrics.NeighborQueriesTotal.WithLabelValues(string(metric), mode).Inc()

	return space.FindNeighbors(in.Points, in.ReferenceID, q), nil
}

// Distances maps every other point's id to its distance from the reference.
func (s *Service) Distances(points []point.Point, referenceID, metricName, vectorField string) (map[string]float64, error) {
	if err := s.checkSize(points); err != nil {
		return nil, err
	}
	metric, err := s.resolveMetric(metricName)
	if err != nil {
		return nil, err
	}
	return space.ComputeDistances(points, referenceID, metric, vectorField), nil
}

// Coordinates is a 3-D position.
type Coordinates struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Centroid returns the mean position of the listed points.
func (s *Service) Centroid(points []point.Point, ids []string) (Coordinates, error) {
	if err := s.checkSize(points); err != nil {
		return Coordinates{}, err
	}
	x, y, z, ok := space.Centroid(points, ids)
	if !ok {
		return Coordinates{}, domain.ErrNoMatchingPoints
	}
	return Coordinates{X: x, Y: y, Z: z}, nil
}

func (s *Service) resolveMetric(name string) (space.Metric, error) {
	if name == "" {
		return s.metric, nil
	}
	m, err := space.ParseMetric(name)
	if err != nil {
		return "", fmt.Errorf("resolve metric: %w", err)
	}
	return m, nil
}

func (s *Service) checkSize(points []point.Point) error {
	if len(points) > s.maxPoints {
		return fmt.Errorf("%w: %d > %d", domain.ErrTooManyPoints, len(points), s.maxPoints)
	}
	return nil
}
