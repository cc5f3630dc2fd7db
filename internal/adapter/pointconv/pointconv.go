// Package pointconv holds the conversions every response normalizer shares:
// loose JSON values to numbers, vectors and ids, and the coordinate fallback.
package pointconv

import (
	"encoding/json"
	"slices"
	"strconv"

	"github.com/kailas-cloud/vecspace/internal/domain/point"
)

// Float converts a decoded JSON number (or a Go numeric) to float64.
func Float(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// Vector converts a list of numbers to []float64. Empty or non-numeric lists
// report false so callers fall back to explicit coordinates.
func Vector(v any) ([]float64, bool) {
	var out []float64
	switch vec := v.(type) {
	case []float64:
		out = vec
	case []float32:
		out = make([]float64, len(vec))
		for i, f := range vec {
			out[i] = float64(f)
		}
	case []any:
		out = make([]float64, 0, len(vec))
		for _, e := range vec {
			f, ok := Float(e)
			if !ok {
				return nil, false
			}
			out = append(out, f)
		}
	default:
		return nil, false
	}
	return out, len(out) > 0
}

// ID formats a backend id as a string. Missing or empty ids report false.
func ID(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		return id, id != ""
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), true
	case json.Number:
		return id.String(), true
	case int:
		return strconv.Itoa(id), true
	case int64:
		return strconv.FormatInt(id, 10), true
	case uint64:
		return strconv.FormatUint(id, 10), true
	}
	return "", false
}

// IDOr returns the formatted id or point_<i>.
func IDOr(v any, i int) string {
	if id, ok := ID(v); ok {
		return id
	}
	return point.SyntheticID(i)
}

// Map asserts a JSON object.
func Map(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// List asserts a JSON array.
func List(v any) []any {
	l, _ := v.([]any)
	return l
}

// Path walks nested objects; any missing step yields nil.
func Path(v any, keys ...string) any {
	for _, k := range keys {
		m := Map(v)
		if m == nil {
			return nil
		}
		v = m[k]
	}
	return v
}

// ApplyCoordinates sets the vector when present, otherwise falls back to the
// explicit x/y/z fields of fields (0 when absent).
func ApplyCoordinates(p *point.Point, vector any, fields map[string]any) {
	if vec, ok := Vector(vector); ok {
		p.SetVector(vec)
		return
	}
	p.X, _ = Float(fields[point.KeyX])
	p.Y, _ = Float(fields[point.KeyY])
	p.Z, _ = Float(fields[point.KeyZ])
}

// InverseDistanceScore maps a dissimilarity to (0, 1]: 1 / (1 + d).
func InverseDistanceScore(d float64) float64 {
	return 1 / (1 + d)
}

// FirstPresent returns the first non-nil value among keys.
func FirstPresent(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// RowOptions configures Rows.
type RowOptions struct {
	// VectorKeys are searched in order for the embedding column.
	VectorKeys []string
	// DistanceKey, when set, names a distance column turned into a score.
	DistanceKey string
	// KeepScalars keeps non-object records as {id: point_<i>, data: value}.
	KeepScalars bool
}

// Rows converts flat records to points. The first present vector key gives
// the coordinates; the remaining columns become metadata.
func Rows(records []any, opts RowOptions) []point.Point {
	skip := slices.Clone(opts.VectorKeys)
	if opts.DistanceKey != "" {
		skip = append(skip, opts.DistanceKey)
	}

	points := make([]point.Point, 0, len(records))
	for i, r := range records {
		row := Map(r)
		if row == nil {
			if opts.KeepScalars && r != nil {
				p := point.New(point.SyntheticID(i))
				p.Set("data", r)
				points = append(points, p)
			}
			continue
		}

		p := point.New(IDOr(row[point.KeyID], i))
		if opts.DistanceKey != "" {
			if d, ok := Float(row[opts.DistanceKey]); ok {
				p.SetScore(InverseDistanceScore(d))
			}
		}
		vector, _ := FirstPresent(row, opts.VectorKeys...)
		ApplyCoordinates(&p, vector, row)
		p.Merge(row, skip...)
		points = append(points, p)
	}
	return points
}

// Records widens typed rows to []any.
func Records(rows []map[string]any) []any {
	out := make([]any, len(rows))
	for i, row := range rows {
		out[i] = row
	}
	return out
}
