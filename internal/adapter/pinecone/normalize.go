package pinecone

import (
	"slices"

	"github.com/kailas-cloud/vecspace/internal/adapter/pointconv"
	"github.com/kailas-cloud/vecspace/internal/domain/point"
	"github.com/kailas-cloud/vecspace/internal/domain/query"
)

// Normalize converts a Pinecone query response ({"matches": [...]}) or fetch
// response ({"vectors": {id: {...}}}, ordered by id) to canonical points.
func Normalize(raw any, _ query.NormalizeOptions) []point.Point {
	resp := pointconv.Map(raw)
	if resp == nil {
		return nil
	}

	records := pointconv.List(resp["matches"])
	if records == nil {
		records = fetched(pointconv.Map(resp["vectors"]))
	}

	points := make([]point.Point, 0, len(records))
	for i, r := range records {
		rec := pointconv.Map(r)
		if rec == nil {
			continue
		}
		p := point.New(pointconv.IDOr(rec["id"], i))
		if s, ok := pointconv.Float(rec["score"]); ok {
			p.SetScore(s)
		}
		metadata := pointconv.Map(rec["metadata"])
		pointconv.ApplyCoordinates(&p, rec["values"], metadata)
		p.Merge(metadata)
		points = append(points, p)
	}
	return points
}

func fetched(vectors map[string]any) []any {
	if len(vectors) == 0 {
		return nil
	}
	ids := make([]string, 0, len(vectors))
	for id := range vectors {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]any, 0, len(ids))
	for _, id := range ids {
		rec := pointconv.Map(vectors[id])
		if rec == nil {
			continue
		}
		if _, ok := pointconv.ID(rec["id"]); !ok {
			withID := make(map[string]any, len(rec)+1)
			for k, v := range rec {
				withID[k] = v
			}
			withID["id"] = id
			rec = withID
		}
		out = append(out, rec)
	}
	return out
}
