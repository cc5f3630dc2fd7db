package vecspace

import (
	"context"

	"github.com/kailas-cloud/vecspace/internal/domain/point"
	"github.com/kailas-cloud/vecspace/internal/domain/space"
)

// Point is the canonical record produced by Normalize and Execute.
type Point = point.Point

// Metric names a distance function.
type Metric string

// Supported metrics.
const (
	Euclidean  Metric = Metric(space.Euclidean)
	Manhattan  Metric = Metric(space.Manhattan)
	Cosine     Metric = Metric(space.Cosine)
	DotProduct Metric = Metric(space.DotProduct)
)

// BackendInfo describes one supported backend.
type BackendInfo struct {
	Name          string
	Title         string
	Side          string // "browser" or "host"
	QueryLanguage string
	Example       string
	Help          string
}

// Condition is one (field, operator, value) predicate. Operators: = != > >=
// < <= ~ (contains) : (any of).
type Condition struct {
	Field string
	Op    string
	Value any
}

// NormalizeOptions is backend-specific context for unpacking a raw response.
type NormalizeOptions struct {
	ClassName  string // weaviate: data.Get.<ClassName>
	VectorName string // qdrant: named vector to read
}

// QueryRequest is a canonical query to render in a backend's native format.
// Text is embedded through the configured Embedder when Vector and IDs are empty.
type QueryRequest struct {
	Vector     []float64
	Text       string
	IDs        []string
	Conditions []Condition
	Limit      int
	Class      string   // weaviate class / grafeo label
	Properties []string // weaviate fields to select
	Namespace  string   // pinecone namespace
}

// NeighborQuery configures Neighbors. Zero K with no Threshold uses the
// client default (WithDefaultK).
type NeighborQuery struct {
	ReferenceID string
	Metric      Metric // "" = client default
	VectorField string // "" = x/y/z, "vector" = Point.Vector, else metadata field
	K           int
	Threshold   *float64
}

// Neighbor is one nearest-neighbor hit.
type Neighbor struct {
	ID       string
	Distance float64
}

// Coordinates is a 3-D position.
type Coordinates struct {
	X, Y, Z float64
}

// Executor runs a backend-native query and returns canonical points.
type Executor interface {
	Execute(ctx context.Context, query string) ([]Point, error)
}
