package chroma

import (
	"fmt"

	"github.com/kailas-cloud/vecspace/internal/domain/query"
)

// BuildQuery renders {"query_embeddings","n_results","where"}, {"ids"} or
// {"where","limit"}.
func BuildQuery(req query.Request) (map[string]any, error) {
	if req.Kind() == query.ByIDs {
		return map[string]any{"ids": req.IDs}, nil
	}

	where, err := Translate(req.Filter)
	if err != nil {
		return nil, fmt.Errorf("build chroma query: %w", err)
	}

	out := map[string]any{}
	if req.Kind() == query.Similarity {
		out["query_embeddings"] = [][]float64{req.Vector}
		out["n_results"] = req.EffectiveLimit()
	} else {
		out["limit"] = req.EffectiveLimit()
	}
	if len(where) > 0 {
		out["where"] = where
	}
	return out, nil
}
