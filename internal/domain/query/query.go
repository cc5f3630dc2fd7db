// Package query describes backend-independent query requests and the context
// normalizers need to unpack a backend response.
package query

import (
	"github.com/kailas-cloud/vecspace/internal/domain/filter"
)

// Default result caps, matching the backends' own defaults.
const (
	DefaultSimilarityLimit = 10
	DefaultFetchLimit      = 100
)

// Kind is the shape of a native query.
type Kind string

const (
	// Similarity searches by vector.
	Similarity Kind = "similarity"
	// FilterOnly fetches records matching a filter.
	FilterOnly Kind = "filter"
	// ByIDs fetches records by id.
	ByIDs Kind = "ids"
)

// Request is a canonical query to be rendered in a backend's native format.
type Request struct {
	Vector     []float64
	IDs        []string
	Filter     filter.Set
	Limit      int
	Class      string   // weaviate class / grafeo label
	Properties []string // weaviate fields to select
	Namespace  string   // pinecone namespace
}

// Kind reports which native query shape the request maps to.
func (r Request) Kind() Kind {
	switch {
	case len(r.IDs) > 0:
		return ByIDs
	case len(r.Vector) > 0:
		return Similarity
	default:
		return FilterOnly
	}
}

// EffectiveLimit returns Limit or the default for the request kind.
func (r Request) EffectiveLimit() int {
	if r.Limit > 0 {
		return r.Limit
	}
	if r.Kind() == Similarity {
		return DefaultSimilarityLimit
	}
	return DefaultFetchLimit
}

// NormalizeOptions is backend-specific context for unpacking a raw response.
type NormalizeOptions struct {
	// ClassName selects data.Get.<ClassName> in a weaviate response.
	ClassName string
	// VectorName selects a named vector in a qdrant record.
	VectorName string
}
