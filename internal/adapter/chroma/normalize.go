package chroma

import (
	"github.com/kailas-cloud/vecspace/internal/adapter/pointconv"
	"github.com/kailas-cloud/vecspace/internal/domain/point"
	"github.com/kailas-cloud/vecspace/internal/domain/query"
)

// Normalize converts a Chroma get or query response to canonical points.
// Query responses hold one list per query embedding and are recognized by
// their distances key; only the first query's results are used.
func Normalize(raw any, _ query.NormalizeOptions) []point.Point {
	resp := pointconv.Map(raw)
	if resp == nil {
		return nil
	}

	_, isQuery := resp["distances"]
	column := func(key string) []any {
		col := pointconv.List(resp[key])
		if isQuery {
			if len(col) == 0 {
				return nil
			}
			return pointconv.List(col[0])
		}
		return col
	}

	ids := column("ids")
	embeddings := column("embeddings")
	metadatas := column("metadatas")
	documents := column("documents")
	var distances []any
	if isQuery {
		distances = column("distances")
	}

	points := make([]point.Point, 0, len(ids))
	for i, id := range ids {
		p := point.New(pointconv.IDOr(id, i))
		if d, ok := pointconv.Float(at(distances, i)); ok {
			p.SetScore(pointconv.InverseDistanceScore(d))
		}

		metadata := pointconv.Map(at(metadatas, i))
		pointconv.ApplyCoordinates(&p, at(embeddings, i), metadata)
		if doc, ok := at(documents, i).(string); ok && doc != "" {
			p.Set("document", doc)
		}
		p.Merge(metadata)
		points = append(points, p)
	}
	return points
}

func at(list []any, i int) any {
	if i < len(list) {
		return list[i]
	}
	return nil
}
