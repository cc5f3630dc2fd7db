package lancedb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/vecspace/internal/domain"
	"github.com/kailas-cloud/vecspace/internal/domain/filter"
)

// Translate converts a condition set to a SQL WHERE expression joined with
// AND. String values are single-quoted with embedded quotes doubled.
func Translate(set filter.Set) (string, error) {
	parts := make([]string, 0, len(set))
	for _, c := range set {
		expr, err := expression(c)
		if err != nil {
			return "", err
		}
		parts = append(parts, expr)
	}
	return strings.Join(parts, " AND "), nil
}

func expression(c filter.Condition) (string, error) {
	switch c.Op() {
	case filter.Eq, filter.Ne, filter.Gt, filter.Gte, filter.Lt, filter.Lte:
		return fmt.Sprintf("%s %s %s", c.Field(), c.Op(), Literal(c.Value())), nil
	case filter.Contains:
		return like(c.Field(), fmt.Sprint(c.Value())), nil
	case filter.AnyOf:
		return fmt.Sprintf("%s IN (%s)", c.Field(), List(c.ListValue())), nil
	default:
		return "", fmt.Errorf("lancedb: %w: %q", domain.ErrUnsupportedOperator, string(c.Op()))
	}
}

// Literal renders a SQL literal: quoted strings, bare numbers and booleans.
func Literal(v any) string {
	switch val := v.(type) {
	case string:
		return "'" + escape(val) + "'"
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// List renders comma-separated literals.
func List(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = Literal(v)
	}
	return strings.Join(parts, ", ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// like renders a substring match. LIKE wildcards in the value match
// literally through an ESCAPE clause.
func like(field, value string) string {
	pattern := likeEscaper.Replace(value)
	expr := fmt.Sprintf("%s LIKE '%%%s%%'", field, escape(pattern))
	if pattern != value {
		expr += ` ESCAPE '\'`
	}
	return expr
}

func escape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
