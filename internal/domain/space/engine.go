package space

import (
	"cmp"
	"math"
	"slices"

	"github.com/kailas-cloud/vecspace/internal/domain/point"
)

// Neighbor is one entry of a nearest-neighbor result.
type Neighbor struct {
	ID       string  `json:"id"`
	Distance float64 `json:"distance"`
}

// NeighborQuery configures FindNeighbors.
// VectorField "" compares x/y/z; "vector" compares Point.Vector; any other
// name reads a numeric list from metadata.
type NeighborQuery struct {
	Metric      Metric
	VectorField string
	K           int      // <= 0 means all
	Threshold   *float64 // when set, K is ignored
}

// Distance returns the distance between two points. When vectorField is set
// and either point lacks it, the distance is +Inf.
func Distance(p1, p2 point.Point, metric Metric, vectorField string) float64 {
	if vectorField == "" {
		return metric.Between(coords(p1), coords(p2))
	}
	a, ok := VectorOf(p1, vectorField)
	if !ok {
		return math.Inf(1)
	}
	b, ok := VectorOf(p2, vectorField)
	if !ok {
		return math.Inf(1)
	}
	return metric.Between(a, b)
}

func coords(p point.Point) []float64 {
	return []float64{p.X, p.Y, p.Z}
}

// VectorOf resolves the named vector field of p.
func VectorOf(p point.Point, field string) ([]float64, bool) {
	if field == point.KeyVector {
		return p.Vector, p.Vector != nil
	}
	raw, ok := p.Metadata[field]
	if !ok {
		return nil, false
	}
	switch v := raw.(type) {
	case []float64:
		return v, true
	case []float32:
		out := make([]float64, len(v))
		for i, f := range v {
			out[i] = float64(f)
		}
		return out, true
	case []any:
		out := make([]float64, len(v))
		for i, e := range v {
			switch n := e.(type) {
			case float64:
				out[i] = n
			case float32:
				out[i] = float64(n)
			case int:
				out[i] = float64(n)
			case int64:
				out[i] = float64(n)
			default:
				return nil, false
			}
		}
		return out, true
	}
	return nil, false
}

func indexOf(points []point.Point, id string) int {
	for i := range points {
		if points[i].ID == id {
			return i
		}
	}
	return -1
}

// ComputeDistances maps every other point's id to its distance from the
// reference. An unknown reference yields an empty map.
func ComputeDistances(points []point.Point, referenceID string, metric Metric, vectorField string) map[string]float64 {
	ref := indexOf(points, referenceID)
	if ref < 0 {
		return map[string]float64{}
	}
	out := make(map[string]float64, len(points)-1)
	for i := range points {
		if i == ref {
			continue
		}
		out[points[i].ID] = Distance(points[ref], points[i], metric, vectorField)
	}
	return out
}

// FindNeighbors returns points ordered by ascending distance from the
// reference, ties kept in input order. The reference itself is excluded.
func FindNeighbors(points []point.Point, referenceID string, q NeighborQuery) []Neighbor {
	ref := indexOf(points, referenceID)
	if ref < 0 {
		return []Neighbor{}
	}

	out := make([]Neighbor, 0, len(points)-1)
	for i := range points {
		if i == ref {
			continue
		}
		d := Distance(points[ref], points[i], q.Metric, q.VectorField)
		if q.Threshold != nil && !(d <= *q.Threshold) {
			continue
		}
		out = append(out, Neighbor{ID: points[i].ID, Distance: d})
	}

	slices.SortStableFunc(out, func(a, b Neighbor) int {
		return cmp.Compare(sortKey(a.Distance), sortKey(b.Distance))
	})

	if q.Threshold == nil && q.K > 0 && len(out) > q.K {
		out = out[:q.K]
	}
	return out
}

// sortKey ranks NaN with +Inf so undefined distances never come first.
func sortKey(d float64) float64 {
	if math.IsNaN(d) {
		return math.Inf(1)
	}
	return d
}

// Centroid returns the mean x/y/z of the points whose ids are listed.
// ok is false when none match.
func Centroid(points []point.Point, ids []string) (x, y, z float64, ok bool) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var n int
	for _, p := range points {
		if _, hit := want[p.ID]; !hit {
			continue
		}
		x += p.X
		y += p.Y
		z += p.Z
		n++
	}
	if n == 0 {
		return 0, 0, 0, false
	}
	return x / float64(n), y / float64(n), z / float64(n), true
}
