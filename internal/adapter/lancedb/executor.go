package lancedb

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/vecspace/internal/domain"
	"github.com/kailas-cloud/vecspace/internal/domain/backend"
	"github.com/kailas-cloud/vecspace/internal/domain/point"
	"github.com/kailas-cloud/vecspace/internal/domain/query"
)

// SearchRequest is a vector or full-text search with an optional SQL filter.
type SearchRequest struct {
	Vector   []float32
	FullText string
	Where    string
	Limit    int
}

// Table is a LanceDB table owned by the host process.
type Table interface {
	Search(ctx context.Context, req SearchRequest) ([]map[string]any, error)
	Scan(ctx context.Context, where string, limit int) ([]map[string]any, error)
}

// Executor runs native LanceDB queries against a host table.
type Executor struct {
	table Table
}

// NewExecutor creates a LanceDB executor.
func NewExecutor(table Table) *Executor {
	return &Executor{table: table}
}

type nativeQuery struct {
	Vector []float32 `json:"vector"`
	FTS    string    `json:"fts"`
	Where  string    `json:"where"`
	Limit  int       `json:"limit"`
}

// Execute searches when a vector or fts text is given, otherwise scans.
func (e *Executor) Execute(ctx context.Context, raw string) ([]point.Point, error) {
	var q nativeQuery
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return nil, fmt.Errorf("%w: lancedb query: %w", domain.ErrInvalidQuery, err)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = query.DefaultFetchLimit
	}

	var (
		rows []map[string]any
		err  error
	)
	if q.Vector != nil || q.FTS != "" {
		rows, err = e.table.Search(ctx, SearchRequest{Vector: q.Vector, FullText: q.FTS, Where: q.Where, Limit: limit})
	} else {
		rows, err = e.table.Scan(ctx, q.Where, limit)
	}
	if err != nil {
		return nil, domain.NewBackendError(backend.LanceDB, err)
	}
	return Normalize(rows, query.NormalizeOptions{}), nil
}
