package chroma

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/vecspace/internal/domain"
	"github.com/kailas-cloud/vecspace/internal/domain/backend"
	"github.com/kailas-cloud/vecspace/internal/domain/point"
	"github.com/kailas-cloud/vecspace/internal/domain/query"
)

// Fields requested on get and query calls.
var (
	getInclude   = []string{"embeddings", "metadatas", "documents"}
	queryInclude = []string{"embeddings", "metadatas", "documents", "distances"}
)

// GetRequest mirrors collection.get.
type GetRequest struct {
	IDs           []string
	Where         map[string]any
	WhereDocument map[string]any
	Limit         int
	Include       []string
}

// QueryRequest mirrors collection.query.
type QueryRequest struct {
	QueryEmbeddings [][]float32
	NResults        int
	Where           map[string]any
	WhereDocument   map[string]any
	Include         []string
}

// Collection is a Chroma collection owned by the host process. Responses
// are the decoded JSON column lists (ids, embeddings, metadatas, ...).
type Collection interface {
	Get(ctx context.Context, req GetRequest) (map[string]any, error)
	Query(ctx context.Context, req QueryRequest) (map[string]any, error)
}

// Executor runs native Chroma queries against a host collection.
type Executor struct {
	collection Collection
}

// NewExecutor creates a Chroma executor.
func NewExecutor(collection Collection) *Executor {
	return &Executor{collection: collection}
}

type nativeQuery struct {
	IDs             []string       `json:"ids"`
	QueryEmbeddings [][]float32    `json:"query_embeddings"`
	NResults        int            `json:"n_results"`
	Where           map[string]any `json:"where"`
	WhereDocument   map[string]any `json:"where_document"`
	Limit           int            `json:"limit"`
}

// Execute routes ids → get, query_embeddings → query, where → filtered get,
// anything else → get all.
func (e *Executor) Execute(ctx context.Context, raw string) ([]point.Point, error) {
	var q nativeQuery
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return nil, fmt.Errorf("%w: chroma query: %w", domain.ErrInvalidQuery, err)
	}

	var (
		resp map[string]any
		err  error
	)
	switch {
	case q.IDs != nil:
		resp, err = e.collection.Get(ctx, GetRequest{IDs: q.IDs, Include: getInclude})
	case q.QueryEmbeddings != nil:
		resp, err = e.collection.Query(ctx, QueryRequest{
			QueryEmbeddings: q.QueryEmbeddings,
			NResults:        orDefault(q.NResults, query.DefaultSimilarityLimit),
			Where:           q.Where,
			WhereDocument:   q.WhereDocument,
			Include:         queryInclude,
		})
	default:
		resp, err = e.collection.Get(ctx, GetRequest{
			Where:         q.Where,
			WhereDocument: q.WhereDocument,
			Limit:         orDefault(q.Limit, query.DefaultFetchLimit),
			Include:       getInclude,
		})
	}
	if err != nil {
		return nil, domain.NewBackendError(backend.Chroma, err)
	}
	return Normalize(resp, query.NormalizeOptions{}), nil
}

func orDefault(n, def int) int {
	if n > 0 {
		return n
	}
	return def
}
