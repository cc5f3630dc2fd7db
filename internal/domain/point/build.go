package point

import "fmt"

// SyntheticID is the id given to the i-th record when the source has none.
func SyntheticID(i int) string {
	return fmt.Sprintf("point_%d", i)
}

// FromMaps normalizes a plain point list: either {"points": [...]}, a bare list,
// or a single mapping. Elements that are numeric sequences become positions.
func FromMaps(data any) []Point {
	var items []any
	switch v := data.(type) {
	case map[string]any:
		if list, ok := v["points"].([]any); ok {
			items = list
		} else {
			items = []any{v}
		}
	case []any:
		items = v
	default:
		return []Point{}
	}

	out := make([]Point, 0, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case map[string]any:
			out = append(out, FromMap(v, SyntheticID(i)))
		case []any:
			vec, ok := floats(v)
			if !ok || len(vec) < 2 {
				continue
			}
			p := New(SyntheticID(i))
			p.X, p.Y, p.Z = component(vec, 0), component(vec, 1), component(vec, 2)
			out = append(out, p)
		}
	}
	return out
}

// ArrayOptions carries the optional per-row attributes of FromArrays.
type ArrayOptions struct {
	IDs      []string
	Labels   []string
	Metadata []map[string]any
}

// FromArrays builds points from positions (N x 2 or N x 3). Rows shorter than two
// components are skipped; a missing z is 0.
func FromArrays(positions [][]float64, opts ArrayOptions) []Point {
	out := make([]Point, 0, len(positions))
	for i, pos := range positions {
		if len(pos) < 2 {
			continue
		}
		id := SyntheticID(i)
		if i < len(opts.IDs) && opts.IDs[i] != "" {
			id = opts.IDs[i]
		}
		p := New(id)
		p.X, p.Y, p.Z = pos[0], pos[1], component(pos, 2)
		if i < len(opts.Labels) {
			p.Set("label", opts.Labels[i])
		}
		if i < len(opts.Metadata) {
			p.Merge(opts.Metadata[i])
		}
		out = append(out, p)
	}
	return out
}
