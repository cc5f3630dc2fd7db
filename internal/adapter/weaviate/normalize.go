package weaviate

import (
	"github.com/kailas-cloud/vecspace/internal/adapter/pointconv"
	"github.com/kailas-cloud/vecspace/internal/domain/point"
	"github.com/kailas-cloud/vecspace/internal/domain/query"
)

const additionalKey = "_additional"

// Normalize converts a Weaviate GraphQL Get response to canonical points.
// Items are read from data.Get.<ClassName>; with no class name a response
// holding exactly one class uses that class. Score is 1 - distance.
func Normalize(raw any, opts query.NormalizeOptions) []point.Point {
	get := pointconv.Map(pointconv.Path(raw, "data", "Get"))
	if get == nil {
		return nil
	}
	className := opts.ClassName
	if className == "" && len(get) == 1 {
		for name := range get {
			className = name
		}
	}
	items := pointconv.List(get[className])

	points := make([]point.Point, 0, len(items))
	for i, it := range items {
		item := pointconv.Map(it)
		if item == nil {
			continue
		}
		additional := pointconv.Map(item[additionalKey])

		p := point.New(pointconv.IDOr(additional["id"], i))
		if d, ok := pointconv.Float(additional["distance"]); ok {
			p.SetScore(1 - d)
		}
		pointconv.ApplyCoordinates(&p, additional["vector"], item)
		p.Merge(item, additionalKey)
		points = append(points, p)
	}
	return points
}
