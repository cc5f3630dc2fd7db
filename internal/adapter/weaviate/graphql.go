package weaviate

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/kailas-cloud/vecspace/internal/domain"
	"github.com/kailas-cloud/vecspace/internal/domain/query"
)

// BuildQuery renders a GraphQL Get query:
//
//	{ Get { Class(nearVector: {vector: [...]}, where: {...}, limit: N) { props _additional { id vector distance } } } }
//
// The result is parsed before it is returned.
func BuildQuery(req query.Request) (string, error) {
	if req.Class == "" {
		return "", fmt.Errorf("%w: weaviate queries need a class name", domain.ErrInvalidQuery)
	}

	where, err := Translate(req.Filter)
	if err != nil {
		return "", fmt.Errorf("build weaviate query: %w", err)
	}
	if req.Kind() == query.ByIDs {
		where = withIDs(where, req.IDs)
	}

	var args []string
	if req.Kind() == query.Similarity {
		args = append(args, "nearVector: {vector: "+literal(req.Vector)+"}")
	}
	if len(where) > 0 {
		args = append(args, "where: "+inputValue(where))
	}
	args = append(args, fmt.Sprintf("limit: %d", req.EffectiveLimit()))

	additional := "id vector"
	if req.Kind() == query.Similarity {
		additional += " distance"
	}
	fields := append(slices.Clone(req.Properties), "_additional { "+additional+" }")

	q := fmt.Sprintf("{ Get { %s(%s) { %s } } }", req.Class, strings.Join(args, ", "), strings.Join(fields, " "))
	if _, err := ClassName(q); err != nil {
		return "", fmt.Errorf("build weaviate query: %w", err)
	}
	return q, nil
}

func withIDs(where map[string]any, ids []string) map[string]any {
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	byID := map[string]any{"path": []any{"id"}, "operator": "ContainsAny", "valueText": values}
	if len(where) == 0 {
		return byID
	}
	if where["operator"] == "And" {
		operands, _ := where["operands"].([]any)
		return map[string]any{"operator": "And", "operands": append(slices.Clone(operands), byID)}
	}
	return map[string]any{"operator": "And", "operands": []any{where, byID}}
}

// inputValue renders a where filter as a GraphQL input object. Operator
// values are enums and stay unquoted.
func inputValue(v any) string {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if s, ok := val[k].(string); ok && k == "operator" {
				parts = append(parts, k+": "+s)
				continue
			}
			parts = append(parts, k+": "+inputValue(val[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case []any:
		parts := make([]string, len(val))
		for i, e := range val {
			parts[i] = inputValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return literal(val)
	}
}

// literal renders scalars and number lists; JSON escaping is valid GraphQL.
func literal(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

// ClassName parses a GraphQL Get query and returns the class it selects.
func ClassName(q string) (string, error) {
	doc, gerr := parser.ParseQuery(&ast.Source{Input: q})
	if gerr != nil {
		return "", fmt.Errorf("%w: graphql: %v", domain.ErrInvalidQuery, gerr)
	}
	for _, op := range doc.Operations {
		for _, sel := range op.SelectionSet {
			get, ok := sel.(*ast.Field)
			if !ok || get.Name != "Get" {
				continue
			}
			for _, inner := range get.SelectionSet {
				if class, ok := inner.(*ast.Field); ok {
					return class.Alias, nil
				}
			}
		}
	}
	return "", fmt.Errorf("%w: graphql query has no Get selection", domain.ErrInvalidQuery)
}
