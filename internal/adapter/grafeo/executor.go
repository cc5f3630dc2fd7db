package grafeo

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/vecspace/internal/domain"
	"github.com/kailas-cloud/vecspace/internal/domain/backend"
	"github.com/kailas-cloud/vecspace/internal/domain/point"
	"github.com/kailas-cloud/vecspace/internal/domain/query"
)

// Session is a Grafeo session owned by the host process. Query returns the
// decoded records.
type Session interface {
	Query(ctx context.Context, q string) (any, error)
}

// Executor passes query strings through to a Grafeo session.
type Executor struct {
	session Session
}

// NewExecutor creates a Grafeo executor.
func NewExecutor(session Session) *Executor {
	return &Executor{session: session}
}

// Execute runs the query and normalizes the returned records.
func (e *Executor) Execute(ctx context.Context, raw string) ([]point.Point, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: empty grafeo query", domain.ErrInvalidQuery)
	}
	res, err := e.session.Query(ctx, raw)
	if err != nil {
		return nil, domain.NewBackendError(backend.Grafeo, err)
	}
	return Normalize(res, query.NormalizeOptions{}), nil
}
