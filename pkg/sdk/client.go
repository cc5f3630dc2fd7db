package vecspace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/vecspace/internal/adapter"
	"github.com/kailas-cloud/vecspace/internal/domain/filter"
	"github.com/kailas-cloud/vecspace/internal/domain/query"
	"github.com/kailas-cloud/vecspace/internal/domain/space"
	exploreuc "github.com/kailas-cloud/vecspace/internal/usecase/explore"
)

// Client is the vecspace SDK entry point. Safe for concurrent use.
type Client struct {
	svc *exploreuc.Service
	obs *observer
}

// New creates a Client. It opens no connections: backends are reached only
// through executors passed with WithExecutor.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	var metric space.Metric
	if cfg.metric != "" {
		m, err := space.ParseMetric(string(cfg.metric))
		if err != nil {
			return nil, fmt.Errorf("vecspace: %w", err)
		}
		metric = m
	}
	if cfg.defaultK < 0 {
		return nil, errors.New("vecspace: default k must be >= 0")
	}

	registry := adapter.NewRegistry()
	for name, e := range cfg.executors {
		if e == nil {
			return nil, fmt.Errorf("vecspace: nil executor for %q", name)
		}
		if err := registry.RegisterExecutor(name, e); err != nil {
			return nil, fmt.Errorf("vecspace: %w", err)
		}
	}

	// Pass nil interface (not typed nil pointer!) when no embedder is set.
	var embed exploreuc.Embedder
	if cfg.embedder != nil {
		embed = &embedderAdapter{inner: cfg.embedder}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	svc := exploreuc.New(registry, embed, nil).WithEngineDefaults(metric, cfg.defaultK, cfg.maxPoints)
	return &Client{svc: svc, obs: obs}, nil
}

// Backends lists every supported backend.
func (c *Client) Backends() []BackendInfo {
	all := c.svc.Backends()
	out := make([]BackendInfo, len(all))
	for i, d := range all {
		out[i] = BackendInfo{
			Name:          d.Name,
			Title:         d.Title,
			Side:          string(d.Side),
			QueryLanguage: d.QueryLanguage,
			Example:       d.Example,
			Help:          d.Help,
		}
	}
	return out
}

// TranslateFilter renders conditions in the backend's native filter syntax:
// a map for JSON backends, a string for SQL-like ones.
func (c *Client) TranslateFilter(backend string, conds []Condition) (out any, err error) {
	sp := c.obs.begin(context.Background(), "filter", backend)
	defer func() { sp.end(err) }()

	set, err := toFilterSet(conds)
	if err != nil {
		return nil, err
	}
	out, err = c.svc.TranslateFilter(backend, set)
	if err != nil {
		return nil, fmt.Errorf("translate filter: %w", err)
	}
	return out, nil
}

// Normalize converts a decoded backend response (maps, slices, numbers)
// into canonical points. Malformed input yields an empty list.
func (c *Client) Normalize(backend string, raw any, opts NormalizeOptions) (points []Point, err error) {
	sp := c.obs.begin(context.Background(), "normalize", backend)
	defer func() { sp.end(err) }()

	points, err = c.svc.Normalize(backend, raw, query.NormalizeOptions{
		ClassName:  opts.ClassName,
		VectorName: opts.VectorName,
	})
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	sp.returned(len(points))
	return points, nil
}

// BuildQuery renders req in the backend's native query format.
func (c *Client) BuildQuery(ctx context.Context, backend string, req QueryRequest) (out any, err error) {
	sp := c.obs.begin(ctx, "query", backend)
	defer func() { sp.end(err) }()

	set, err := toFilterSet(req.Conditions)
	if err != nil {
		return nil, err
	}
	out, err = c.svc.BuildQuery(ctx, backend, exploreuc.QueryInput{
		Request: query.Request{
			Vector:     req.Vector,
			IDs:        req.IDs,
			Filter:     set,
			Limit:      req.Limit,
			Class:      req.Class,
			Properties: req.Properties,
			Namespace:  req.Namespace,
		},
		Text: req.Text,
	})
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return out, nil
}

// Execute runs a native query through the backend's executor.
func (c *Client) Execute(ctx context.Context, backend, native string) (points []Point, err error) {
	sp := c.obs.begin(ctx, "execute", backend)
	defer func() { sp.end(err) }()

	points, err = c.svc.Execute(ctx, backend, native)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	sp.returned(len(points))
	return points, nil
}

// Neighbors returns the points nearest to q.ReferenceID, closest first.
// An unknown reference yields an empty list.
func (c *Client) Neighbors(points []Point, q NeighborQuery) (out []Neighbor, err error) {
	sp := c.obs.begin(context.Background(), "neighbors", "")
	defer func() { sp.end(err) }()

	in := exploreuc.NeighborsInput{
		Points:      points,
		ReferenceID: q.ReferenceID,
		Metric:      string(q.Metric),
		VectorField: q.VectorField,
		Threshold:   q.Threshold,
	}
	if q.K > 0 {
		in.K = &q.K
	}
	found, err := c.svc.Neighbors(in)
	if err != nil {
		return nil, fmt.Errorf("neighbors: %w", err)
	}
	out = make([]Neighbor, len(found))
	for i, n := range found {
		out[i] = Neighbor{ID: n.ID, Distance: n.Distance}
	}
	sp.returned(len(out))
	return out, nil
}

// Distances maps every other point's id to its distance from referenceID.
func (c *Client) Distances(points []Point, referenceID string, metric Metric, vectorField string) (out map[string]float64, err error) {
	sp := c.obs.begin(context.Background(), "distances", "")
	defer func() { sp.end(err) }()

	out, err = c.svc.Distances(points, referenceID, string(metric), vectorField)
	if err != nil {
		return nil, fmt.Errorf("distances: %w", err)
	}
	return out, nil
}

// Centroid returns the mean position of the points whose ids are listed.
func (c *Client) Centroid(points []Point, ids []string) (out Coordinates, err error) {
	sp := c.obs.begin(context.Background(), "centroid", "")
	defer func() { sp.end(err) }()

	pos, err := c.svc.Centroid(points, ids)
	if err != nil {
		return Coordinates{}, fmt.Errorf("centroid: %w", err)
	}
	return Coordinates{X: pos.X, Y: pos.Y, Z: pos.Z}, nil
}

func toFilterSet(conds []Condition) (filter.Set, error) {
	set := make(filter.Set, 0, len(conds))
	for i, cond := range conds {
		fc, err := filter.NewCondition(cond.Field, filter.Operator(cond.Op), cond.Value)
		if err != nil {
			return nil, fmt.Errorf("condition %d: %w", i, err)
		}
		set = append(set, fc)
	}
	return set, nil
}

// ParseConditions decodes the JSON triple form [[field, op, value], ...].
// Integral numbers decode as int64, others as float64.
func ParseConditions(data []byte) ([]Condition, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw []any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCondition, err)
	}
	set, err := filter.FromTriples(raw)
	if err != nil {
		return nil, fmt.Errorf("parse conditions: %w", err)
	}
	out := make([]Condition, len(set))
	for i, c := range set {
		out[i] = Condition{Field: c.Field(), Op: string(c.Op()), Value: c.Value()}
	}
	return out, nil
}
