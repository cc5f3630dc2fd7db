package grafeo

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/vecspace/internal/domain"
	"github.com/kailas-cloud/vecspace/internal/domain/query"
)

// DefaultLabel is matched when the request names no label.
const DefaultLabel = "Vector"

// BuildQuery renders MATCH (n:Label) WHERE ... RETURN n LIMIT N. Grafeo has
// no vector search clause, so similarity requests are rejected.
func BuildQuery(req query.Request) (string, error) {
	if req.Kind() == query.Similarity {
		return "", fmt.Errorf("%w: grafeo queries select by filter or ids", domain.ErrInvalidQuery)
	}

	where, err := Translate(req.Filter)
	if err != nil {
		return "", fmt.Errorf("build grafeo query: %w", err)
	}
	if req.Kind() == query.ByIDs {
		ids := make([]any, len(req.IDs))
		for i, id := range req.IDs {
			ids[i] = id
		}
		byID := fmt.Sprintf("%s.id IN %s", Variable, list(ids))
		if where == "" {
			where = byID
		} else {
			where += " AND " + byID
		}
	}

	label := req.Class
	if label == "" {
		label = DefaultLabel
	}

	var b strings.Builder
	fmt.Fprintf(&b, "MATCH (%s:%s)", Variable, label)
	if where != "" {
		b.WriteString(" WHERE " + where)
	}
	fmt.Fprintf(&b, " RETURN %s LIMIT %d", Variable, req.EffectiveLimit())
	return b.String(), nil
}
