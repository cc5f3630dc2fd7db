// Package adapter dispatches filter translation, response normalization,
// query building and execution to the per-backend packages by name.
package adapter

import (
	"context"
	"fmt"
	"sync"

	"github.com/kailas-cloud/vecspace/internal/adapter/chroma"
	"github.com/kailas-cloud/vecspace/internal/adapter/grafeo"
	"github.com/kailas-cloud/vecspace/internal/adapter/lancedb"
	"github.com/kailas-cloud/vecspace/internal/adapter/pinecone"
	"github.com/kailas-cloud/vecspace/internal/adapter/qdrant"
	"github.com/kailas-cloud/vecspace/internal/adapter/weaviate"
	"github.com/kailas-cloud/vecspace/internal/domain"
	"github.com/kailas-cloud/vecspace/internal/domain/backend"
	"github.com/kailas-cloud/vecspace/internal/domain/filter"
	"github.com/kailas-cloud/vecspace/internal/domain/point"
	"github.com/kailas-cloud/vecspace/internal/domain/query"
)

// Adapter converts between the canonical model and one backend's formats.
type Adapter interface {
	Name() string
	// TranslateFilter returns a map for JSON backends and a string for
	// SQL-like ones.
	TranslateFilter(set filter.Set) (any, error)
	Normalize(raw any, opts query.NormalizeOptions) []point.Point
	// BuildQuery returns a JSON object or a query string.
	BuildQuery(req query.Request) (any, error)
}

// Executor runs a backend-native query and returns canonical points.
type Executor interface {
	Execute(ctx context.Context, query string) ([]point.Point, error)
}

type funcs struct {
	name      string
	translate func(filter.Set) (any, error)
	normalize func(any, query.NormalizeOptions) []point.Point
	build     func(query.Request) (any, error)
}

func (f funcs) Name() string { return f.name }

func (f funcs) TranslateFilter(set filter.Set) (any, error) { return f.translate(set) }

func (f funcs) Normalize(raw any, opts query.NormalizeOptions) []point.Point {
	return f.normalize(raw, opts)
}

func (f funcs) BuildQuery(req query.Request) (any, error) { return f.build(req) }

func lift[In, Out any](fn func(In) (Out, error)) func(In) (any, error) {
	return func(in In) (any, error) {
		out, err := fn(in)
		if err != nil {
			return nil, err
		}
		return out, nil
	}
}

// Builtin returns the adapters for every registered backend, in registry order.
func Builtin() []Adapter {
	return []Adapter{
		funcs{backend.Qdrant, lift(qdrant.Translate), qdrant.Normalize, lift(qdrant.BuildQuery)},
		funcs{backend.Pinecone, lift(pinecone.Translate), pinecone.Normalize, lift(pinecone.BuildQuery)},
		funcs{backend.Weaviate, lift(weaviate.Translate), weaviate.Normalize, lift(weaviate.BuildQuery)},
		funcs{backend.Chroma, lift(chroma.Translate), chroma.Normalize, lift(chroma.BuildQuery)},
		funcs{backend.LanceDB, lift(lancedb.Translate), lancedb.Normalize, lift(lancedb.BuildQuery)},
		funcs{backend.Grafeo, lift(grafeo.Translate), grafeo.Normalize, lift(grafeo.BuildQuery)},
	}
}

// Registry maps backend names to adapters and, when configured, executors.
// Safe for concurrent use.
type Registry struct {
	adapters map[string]Adapter

	mu        sync.RWMutex
	executors map[string]Executor
}

// NewRegistry creates a registry over the builtin adapters.
func NewRegistry() *Registry {
	r := &Registry{
		adapters:  make(map[string]Adapter),
		executors: make(map[string]Executor),
	}
	for _, a := range Builtin() {
		r.adapters[a.Name()] = a
	}
	return r
}

func unknown(name string) error {
	return fmt.Errorf("%w: %q", domain.ErrUnknownBackend, name)
}

// Adapter returns the adapter for name (case-insensitive).
func (r *Registry) Adapter(name string) (Adapter, error) {
	a, ok := r.adapters[backend.Canonical(name)]
	if !ok {
		return nil, unknown(name)
	}
	return a, nil
}

// RegisterExecutor attaches an executor to a known backend, replacing any
// previous one.
func (r *Registry) RegisterExecutor(name string, e Executor) error {
	key := backend.Canonical(name)
	if _, ok := r.adapters[key]; !ok {
		return unknown(name)
	}
	r.mu.Lock()
	r.executors[key] = e
	r.mu.Unlock()
	return nil
}

// Executor returns the executor for name. A known backend without one
// yields domain.ErrExecutorNotConfigured.
func (r *Registry) Executor(name string) (Executor, error) {
	key := backend.Canonical(name)
	if _, ok := r.adapters[key]; !ok {
		return nil, unknown(name)
	}
	r.mu.RLock()
	e, ok := r.executors[key]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrExecutorNotConfigured, key)
	}
	return e, nil
}

// Executors returns a snapshot of the configured executors by backend name.
func (r *Registry) Executors() map[string]Executor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Executor, len(r.executors))
	for k, v := range r.executors {
		out[k] = v
	}
	return out
}

// TranslateFilter translates set into the named backend's filter syntax.
func (r *Registry) TranslateFilter(name string, set filter.Set) (any, error) {
	a, err := r.Adapter(name)
	if err != nil {
		return nil, err
	}
	return a.TranslateFilter(set)
}

// Normalize converts a raw response of the named backend to points.
func (r *Registry) Normalize(name string, raw any, opts query.NormalizeOptions) ([]point.Point, error) {
	a, err := r.Adapter(name)
	if err != nil {
		return nil, err
	}
	return a.Normalize(raw, opts), nil
}

// BuildQuery renders req in the named backend's query format.
func (r *Registry) BuildQuery(name string, req query.Request) (any, error) {
	a, err := r.Adapter(name)
	if err != nil {
		return nil, err
	}
	return a.BuildQuery(req)
}
