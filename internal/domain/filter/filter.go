// Package filter holds the backend-independent filter language: ordered
// (field, operator, value) conditions combined with implicit AND.
package filter

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/vecspace/internal/domain"
)

// Operator is a comparison in a filter condition.
type Operator string

// Supported operators.
const (
	Eq       Operator = "="
	Ne       Operator = "!="
	Gt       Operator = ">"
	Gte      Operator = ">="
	Lt       Operator = "<"
	Lte      Operator = "<="
	Contains Operator = "~" // substring / text match
	AnyOf    Operator = ":" // array membership
)

// ParseOperator validates an operator token.
func ParseOperator(s string) (Operator, error) {
	op := Operator(s)
	if !op.Valid() {
		return "", fmt.Errorf("%w: operator %q", domain.ErrInvalidCondition, s)
	}
	return op, nil
}

// Valid reports whether op is one of the supported operators.
func (op Operator) Valid() bool {
	switch op {
	case Eq, Ne, Gt, Gte, Lt, Lte, Contains, AnyOf:
		return true
	}
	return false
}

// Condition is a single predicate.
type Condition struct {
	field string
	op    Operator
	value any
}

// NewCondition validates and creates a Condition. json.Number values are
// narrowed to int64 when integral and float64 otherwise.
func NewCondition(field string, op Operator, value any) (Condition, error) {
	if field == "" {
		return Condition{}, fmt.Errorf("%w: field is required", domain.ErrInvalidCondition)
	}
	if !op.Valid() {
		return Condition{}, fmt.Errorf("%w: operator %q", domain.ErrInvalidCondition, string(op))
	}
	v, err := normalizeValue(value)
	if err != nil {
		return Condition{}, fmt.Errorf("%w: field %q: %w", domain.ErrInvalidCondition, field, err)
	}
	return Condition{field: field, op: op, value: v}, nil
}

// MustCondition is NewCondition for literals known to be valid. Panics otherwise.
func MustCondition(field string, op Operator, value any) Condition {
	c, err := NewCondition(field, op, value)
	if err != nil {
		panic(err)
	}
	return c
}

// Field returns the field name.
func (c Condition) Field() string { return c.field }

// Op returns the operator.
func (c Condition) Op() Operator { return c.op }

// Value returns the scalar or list value.
func (c Condition) Value() any { return c.value }

// IsList reports whether the value is a list.
func (c Condition) IsList() bool {
	_, ok := c.value.([]any)
	return ok
}

// ListValue returns the value as a list, wrapping scalars.
func (c Condition) ListValue() []any {
	if l, ok := c.value.([]any); ok {
		return l
	}
	return []any{c.value}
}

// Set is an ordered list of conditions with AND semantics.
type Set []Condition

// FromTriples converts decoded JSON [[field, op, value], ...] into a Set.
// Any element that is not a 3-element array fails the whole set.
func FromTriples(raw []any) (Set, error) {
	set := make(Set, 0, len(raw))
	for i, item := range raw {
		triple, ok := item.([]any)
		if !ok || len(triple) != 3 {
			return nil, fmt.Errorf("%w: element %d is not a (field, operator, value) triple",
				domain.ErrInvalidCondition, i)
		}
		field, ok := triple[0].(string)
		if !ok {
			return nil, fmt.Errorf("%w: element %d: field must be a string", domain.ErrInvalidCondition, i)
		}
		opStr, ok := triple[1].(string)
		if !ok {
			return nil, fmt.Errorf("%w: element %d: operator must be a string", domain.ErrInvalidCondition, i)
		}
		op, err := ParseOperator(opStr)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		c, err := NewCondition(field, op, triple[2])
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		set = append(set, c)
	}
	return set, nil
}

// Triples is the inverse of FromTriples.
func (s Set) Triples() [][]any {
	out := make([][]any, len(s))
	for i, c := range s {
		out[i] = []any{c.field, string(c.op), c.value}
	}
	return out
}

func normalizeValue(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("value is required")
	case json.Number:
		if i, err := strconv.ParseInt(val.String(), 10, 64); err == nil {
			return i, nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", val.String())
		}
		return f, nil
	case int:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case float32:
		return float64(val), nil
	case string, bool, int64, float64:
		return val, nil
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			n, err := normalizeValue(e)
			if err != nil {
				return nil, fmt.Errorf("list element %d: %w", i, err)
			}
			if _, nested := n.([]any); nested {
				return nil, fmt.Errorf("list element %d: nested lists are not supported", i)
			}
			out[i] = n
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}
