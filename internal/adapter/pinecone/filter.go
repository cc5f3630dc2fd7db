package pinecone

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
}

// Translate converts a condition set to a Pinecone metadata filter. One
// predicate is {field: {$op: value}}; several are combined under $and.
// Pinecone has no text match, so "~" conditions are dropped.
func Translate(set filter.Set) (map[string]any, error) {
	clauses := make([]any, 0, len(set))
	for _, c := range set {
		if c.Op() == filter.Contains {
			continue
		}
		op, ok := operators[c.Op()]
		if !ok {
			return nil, fmt.Errorf("pinecone: %w: %q", domain.ErrUnsupportedOperator, string(c.Op()))
		}
		var value any = c.Value()
		if c.Op() == filter.AnyOf {
			value = c.ListValue()
		}
		clauses = append(clauses, map[string]any{c.Field(): map[string]any{op: value}})
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
