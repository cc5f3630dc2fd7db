package qdrant

import (
	"fmt"

	"github.com/kailas-cloud/vecspace/internal/domain"
	"github.com/kailas-cloud/vecspace/internal/domain/filter"
)

// Translate converts a condition set to a Qdrant REST filter. Qdrant always
// wraps predicates in a "must" list, even a single one.
//
// Known limitation: "!=" conditions are omitted rather than rendered as a
// must_not clause; callers needing exclusion must add must_not themselves.
func Translate(set filter.Set) (map[string]any, error) {
	must := make([]any, 0, len(set))
	for _, c := range set {
		cond, ok, err := translateCondition(c)
		if err != nil {
			return nil, err
		}
		if ok {
			must = append(must, cond)
		}
	}
	if len(must) == 0 {
		return map[string]any{}, nil
	}
	return map[string]any{"must": must}, nil
}

func translateCondition(c filter.Condition) (map[string]any, bool, error) {
	key := c.Field()
	switch c.Op() {
	case filter.Eq:
		return map[string]any{"key": key, "match": map[string]any{"value": c.Value()}}, true, nil
	case filter.Ne:
		return nil, false, nil
	case filter.Gt:
		return rangeCondition(key, "gt", c.Value()), true, nil
	case filter.Gte:
		return rangeCondition(key, "gte", c.Value()), true, nil
	case filter.Lt:
		return rangeCondition(key, "lt", c.Value()), true, nil
	case filter.Lte:
		return rangeCondition(key, "lte", c.Value()), true, nil
	case filter.Contains:
		return map[string]any{"key": key, "match": map[string]any{"text": c.Value()}}, true, nil
	case filter.AnyOf:
		return map[string]any{"key": key, "match": map[string]any{"any": c.ListValue()}}, true, nil
	default:
		return nil, false, fmt.Errorf("qdrant: %w: %q", domain.ErrUnsupportedOperator, string(c.Op()))
	}
}

func rangeCondition(key, bound string, value any) map[string]any {
	return map[string]any{"key": key, "range": map[string]any{bound: value}}
}
