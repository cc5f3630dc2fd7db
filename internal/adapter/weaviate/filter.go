package weaviate

import (
	"fmt"

	"github.com/kailas-cloud/vecspace/internal/domain"
	"github.com/kailas-cloud/vecspace/internal/domain/filter"
)

var operators = map[filter.Operator]string{
	filter.Eq:       "Equal",
	filter.Ne:       "NotEqual",
	filter.Gt:       "GreaterThan",
	filter.Gte:      "GreaterThanEqual",
	filter.Lt:       "LessThan",
	filter.Lte:      "LessThanEqual",
	filter.Contains: "Like",
	filter.AnyOf:    "ContainsAny",
}

// Translate converts a condition set to a Weaviate where filter. Several
// conditions become {"operator": "And", "operands": [...]}.
func Translate(set filter.Set) (map[string]any, error) {
	operands := make([]any, 0, len(set))
	for _, c := range set {
		op, ok := operators[c.Op()]
		if !ok {
			return nil, fmt.Errorf("weaviate: %w: %q", domain.ErrUnsupportedOperator, string(c.Op()))
		}
		operands = append(operands, where(c.Field(), op, c))
	}

	switch len(operands) {
	case 0:
		return map[string]any{}, nil
	case 1:
		return operands[0].(map[string]any), nil
	default:
		return map[string]any{"operator": "And", "operands": operands}, nil
	}
}

func where(field, op string, c filter.Condition) map[string]any {
	out := map[string]any{"path": []any{field}, "operator": op}
	if c.Op() == filter.AnyOf || c.IsList() {
		values := c.ListValue()
		out[listKey(values)] = values
		return out
	}
	out[valueKey(c.Value())] = c.Value()
	return out
}

func valueKey(v any) string {
	switch v.(type) {
	case bool:
		return "valueBoolean"
	case int64:
		return "valueInt"
	case float64:
		return "valueNumber"
	default:
		return "valueText"
	}
}

// listKey types a list by its elements; mixed lists fall back to text.
func listKey(values []any) string {
	if len(values) == 0 {
		return "valueText"
	}
	key := valueKey(values[0])
	for _, v := range values[1:] {
		if valueKey(v) != key {
			return "valueText"
		}
	}
	return key
}
