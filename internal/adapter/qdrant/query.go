package qdrant

import (
	"fmt"

	"github.com/kailas-cloud/vecspace/internal/domain/query"
)

// BuildQuery renders a request in the JSON form the executor and the
// browser client accept: {"vector", "limit", "filter"}, {"ids"} or
// {"filter", "limit"} for a scroll.
func BuildQuery(req query.Request) (map[string]any, error) {
	if req.Kind() == query.ByIDs {
		return map[string]any{"ids": req.IDs}, nil
	}

	out := map[string]any{"limit": req.EffectiveLimit()}
	if req.Kind() == query.Similarity {
		out["vector"] = req.Vector
	}

	f, err := Translate(req.Filter)
	if err != nil {
		return nil, fmt.Errorf("build qdrant query: %w", err)
	}
	// a scroll is routed on the presence of "filter", so filter-only queries keep it even when empty
	if len(f) > 0 || req.Kind() == query.FilterOnly {
		out["filter"] = f
	}
	return out, nil
}
