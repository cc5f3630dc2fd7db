package lancedb

import (
	"fmt"

	"github.com/kailas-cloud/vecspace/internal/domain/query"
)

// BuildQuery renders {"vector","limit","where"} or {"where","limit"}.
// Id lookups become an id IN (...) predicate.
func BuildQuery(req query.Request) (map[string]any, error) {
	where, err := Translate(req.Filter)
	if err != nil {
		return nil, fmt.Errorf("build lancedb query: %w", err)
	}
	if req.Kind() == query.ByIDs {
		ids := make([]any, len(req.IDs))
		for i, id := range req.IDs {
			ids[i] = id
		}
		byID := "id IN (" + List(ids) + ")"
		if where == "" {
			where = byID
		} else {
			where += " AND " + byID
		}
	}

	out := map[string]any{"limit": req.EffectiveLimit()}
	if req.Kind() == query.Similarity {
		out["vector"] = req.Vector
	}
	if where != "" {
		out["where"] = where
	}
	return out, nil
}
