package pinecone

import (
	"fmt"

	"github.com/kailas-cloud/vecspace/internal/domain"
	"github.com/kailas-cloud/vecspace/internal/domain/query"
)

// BuildQuery renders {"vector","topK","filter","namespace"} or {"ids"}.
// Pinecone has no filter-only scan; such requests still need a vector.
func BuildQuery(req query.Request) (map[string]any, error) {
	if req.Kind() == query.ByIDs {
		return map[string]any{"ids": req.IDs}, nil
	}
	if req.Kind() != query.Similarity {
		return nil, fmt.Errorf("%w: pinecone queries need a vector or ids", domain.ErrInvalidQuery)
	}

	out := map[string]any{
		"vector": req.Vector,
		"topK":   req.EffectiveLimit(),
	}
	f, err := Translate(req.Filter)
	if err != nil {
		return nil, fmt.Errorf("build pinecone query: %w", err)
	}
	if len(f) > 0 {
		out["filter"] = f
	}
	if req.Namespace != "" {
		out["namespace"] = req.Namespace
	}
	return out, nil
}
