// Package point defines the canonical point every backend normalizes into.
package point

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
)

// Reserved keys are owned by the fixed fields and never overwritten by metadata.
const (
	KeyID     = "id"
	KeyX      = "x"
	KeyY      = "y"
	KeyZ      = "z"
	KeyVector = "vector"
	KeyScore  = "score"
)

// Point is a backend-independent record: required fields plus open metadata.
type Point struct {
	ID       string
	X, Y, Z  float64
	Vector   []float64
	Score    *float64
	Metadata map[string]any
}

// New creates a point with an empty metadata map.
func New(id string) Point {
	return Point{ID: id, Metadata: map[string]any{}}
}

// IsReserved reports whether key belongs to a fixed field.
func IsReserved(key string) bool {
	switch key {
	case KeyID, KeyX, KeyY, KeyZ, KeyVector:
		return true
	}
	return false
}

// SetVector stores the embedding and projects its first three components onto x/y/z.
func (p *Point) SetVector(vec []float64) {
	p.Vector = vec
	p.X, p.Y, p.Z = component(vec, 0), component(vec, 1), component(vec, 2)
}

func component(vec []float64, i int) float64 {
	if i < len(vec) {
		return vec[i]
	}
	return 0
}

// SetScore sets the similarity score.
func (p *Point) SetScore(s float64) {
	p.Score = &s
}

// Set stores a metadata field. Reserved keys are ignored.
func (p *Point) Set(key string, value any) {
	if IsReserved(key) {
		return
	}
	if p.Metadata == nil {
		p.Metadata = map[string]any{}
	}
	p.Metadata[key] = value
}

// Merge copies every non-reserved field of fields into metadata, skipping extra keys.
func (p *Point) Merge(fields map[string]any, skip ...string) {
	for k, v := range fields {
		if containsKey(skip, k) {
			continue
		}
		p.Set(k, v)
	}
}

func containsKey(keys []string, k string) bool {
	for _, s := range keys {
		if s == k {
			return true
		}
	}
	return false
}

// Field returns a named field, resolving reserved keys to the fixed fields.
func (p Point) Field(name string) (any, bool) {
	switch name {
	case KeyID:
		return p.ID, true
	case KeyX:
		return p.X, true
	case KeyY:
		return p.Y, true
	case KeyZ:
		return p.Z, true
	case KeyVector:
		return p.Vector, p.Vector != nil
	case KeyScore:
		if p.Score != nil {
			return *p.Score, true
		}
	}
	v, ok := p.Metadata[name]
	return v, ok
}

// Clone returns a deep copy of the fixed fields and a shallow copy of metadata.
func (p Point) Clone() Point {
	out := p
	if p.Vector != nil {
		out.Vector = append([]float64(nil), p.Vector...)
	}
	if p.Score != nil {
		s := *p.Score
		out.Score = &s
	}
	if p.Metadata != nil {
		out.Metadata = maps.Clone(p.Metadata)
	}
	return out
}

// MarshalJSON emits the flat mapping the renderer consumes.
func (p Point) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(p.Metadata)+6)
	for k, v := range p.Metadata {
		m[k] = v
	}
	m[KeyID] = p.ID
	m[KeyX] = p.X
	m[KeyY] = p.Y
	m[KeyZ] = p.Z
	if p.Vector != nil {
		m[KeyVector] = p.Vector
	}
	if p.Score != nil && !math.IsNaN(*p.Score) && !math.IsInf(*p.Score, 0) {
		m[KeyScore] = *p.Score
	}
	return json.Marshal(m)
}

// UnmarshalJSON reads the flat mapping back into fixed fields and metadata.
func (p *Point) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decode point: %w", err)
	}
	*p = FromMap(m, "")
	return nil
}

// FromMap builds a point from a flat mapping. fallbackID is used when the map has no id.
func FromMap(m map[string]any, fallbackID string) Point {
	p := New(fallbackID)
	if id, ok := idString(m[KeyID]); ok {
		p.ID = id
	}
	if vec, ok := floats(m[KeyVector]); ok {
		p.Vector = vec
	}
	p.X, _ = number(m[KeyX])
	p.Y, _ = number(m[KeyY])
	p.Z, _ = number(m[KeyZ])
	if s, ok := number(m[KeyScore]); ok {
		p.SetScore(s)
		p.Merge(m, KeyScore)
		return p
	}
	p.Merge(m)
	return p
}

func idString(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		return id, id != ""
	case float64:
		return fmt.Sprintf("%v", id), true
	case json.Number:
		return id.String(), true
	case int, int64:
		return fmt.Sprintf("%d", id), true
	}
	return "", false
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func floats(v any) ([]float64, bool) {
	switch vec := v.(type) {
	case []float64:
		return vec, true
	case []any:
		out := make([]float64, 0, len(vec))
		for _, e := range vec {
			f, ok := number(e)
			if !ok {
				return nil, false
			}
			out = append(out, f)
		}
		return out, true
	}
	return nil, false
}
