package qdrant

import (
	"slices"

	"github.com/google/uuid"

	"github.com/kailas-cloud/vecspace/internal/adapter/pointconv"
	"github.com/kailas-cloud/vecspace/internal/domain/point"
	"github.com/kailas-cloud/vecspace/internal/domain/query"
)

// Normalize converts a Qdrant REST response to canonical points. Accepted
// envelopes: {"result": [...]} for search/get, {"result": {"points": [...]}}
// for scroll, and a bare {"points": [...]}. Anything else yields no points.
func Normalize(raw any, opts query.NormalizeOptions) []point.Point {
	records := records(raw)
	points := make([]point.Point, 0, len(records))
	for i, r := range records {
		rec := pointconv.Map(r)
		if rec == nil {
			continue
		}
		p := point.New(recordID(rec["id"], i))

		if s, ok := pointconv.Float(rec["score"]); ok {
			p.SetScore(s)
		}

		payload := pointconv.Map(rec["payload"])
		pointconv.ApplyCoordinates(&p, selectVector(rec["vector"], opts.VectorName), payload)
		p.Merge(payload)
		points = append(points, p)
	}
	return points
}

func records(raw any) []any {
	resp := pointconv.Map(raw)
	if resp == nil {
		return nil
	}
	switch result := resp["result"].(type) {
	case []any:
		return result
	case map[string]any:
		return pointconv.List(result["points"])
	}
	return pointconv.List(resp["points"])
}

// recordID renders numeric ids without a fraction and UUIDs in canonical form.
func recordID(v any, i int) string {
	if s, ok := v.(string); ok {
		if u, err := uuid.Parse(s); err == nil {
			return u.String()
		}
	}
	return pointconv.IDOr(v, i)
}

// selectVector resolves named vectors ({"name": [...]}) to one list: the
// requested name, else the lexically first name.
func selectVector(v any, name string) any {
	named := pointconv.Map(v)
	if named == nil {
		return v
	}
	if name != "" {
		return named[name]
	}
	keys := make([]string, 0, len(named))
	for k := range named {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if _, ok := pointconv.Vector(named[k]); ok {
			return named[k]
		}
	}
	return nil
}
