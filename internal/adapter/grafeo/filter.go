package grafeo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/vecspace/internal/domain"
	"github.com/kailas-cloud/vecspace/internal/domain/filter"
)

// Variable is the node variable predicates are written against.
const Variable = "n"

var comparisons = map[filter.Operator]string{
	filter.Eq:       "=",
	filter.Ne:       "<>",
	filter.Gt:       ">",
	filter.Gte:      ">=",
	filter.Lt:       "<",
	filter.Lte:      "<=",
	filter.Contains: "CONTAINS",
	filter.AnyOf:    "IN",
}

// Translate converts a condition set to a WHERE expression over n,
// e.g. n.category = 'tech' AND n.year > 2020.
func Translate(set filter.Set) (string, error) {
	parts := make([]string, 0, len(set))
	for _, c := range set {
		op, ok := comparisons[c.Op()]
		if !ok {
			return "", fmt.Errorf("grafeo: %w: %q", domain.ErrUnsupportedOperator, string(c.Op()))
		}
		value := literal(c.Value())
		if c.Op() == filter.AnyOf {
			value = list(c.ListValue())
		}
		parts = append(parts, fmt.Sprintf("%s.%s %s %s", Variable, c.Field(), op, value))
	}
	return strings.Join(parts, " AND "), nil
}

func literal(v any) string {
	switch val := v.(type) {
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case []any:
		return list(val)
	default:
		return fmt.Sprint(val)
	}
}

func list(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = literal(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
