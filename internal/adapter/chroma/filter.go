package chroma

import (
	"fmt"

	"github.com/kailas-cloud/vecspace/internal/domain"
	"github.com/kailas-cloud/vecspace/internal/domain/filter"
)

var operators = map[filter.Operator]string{
	filter.Eq:    "$eq",
	filter.Ne:    "$ne",
	filter.Gt:    "$gt",
	filter.Gte:   "$gte",
	filter.Lt:    "$lt",
	filter.Lte:   "$lte",
	filter.AnyOf: "$in",
	// no substring match on metadata; treated as equality
	filter.Contains: "$eq",
}

// Translate converts a condition set to a Chroma where filter. Equality uses
// the {field: value} shorthand; several conditions are combined under $and.
func Translate(set filter.Set) (map[string]any, error) {
	clauses := make([]any, 0, len(set))
	for _, c := range set {
		op, ok := operators[c.Op()]
		if !ok {
			return nil, fmt.Errorf("chroma: %w: %q", domain.ErrUnsupportedOperator, string(c.Op()))
		}
		switch op {
		case "$eq":
			clauses = append(clauses, map[string]any{c.Field(): c.Value()})
		case "$in":
			clauses = append(clauses, map[string]any{c.Field(): map[string]any{op: c.ListValue()}})
		default:
			clauses = append(clauses, map[string]any{c.Field(): map[string]any{op: c.Value()}})
		}
	}

	switch len(clauses) {
	case 0:
		return map[string]any{}, nil
	case 1:
		return clauses[0].(map[string]any), nil
	default:
		return map[string]any{"$and": clauses}, nil
	}
}
