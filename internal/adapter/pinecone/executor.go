package pinecone

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pinecone-io/go-pinecone/v2/pinecone"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/kailas-cloud/vecspace/internal/domain"
	"github.com/kailas-cloud/vecspace/internal/domain/backend"
	"github.com/kailas-cloud/vecspace/internal/domain/point"
	"github.com/kailas-cloud/vecspace/internal/domain/query"
)

// IndexClient is the part of *pinecone.IndexConnection the executor calls.
type IndexClient interface {
	QueryByVectorValues(ctx context.Context, in *pinecone.QueryByVectorValuesRequest) (*pinecone.QueryVectorsResponse, error)
	FetchVectors(ctx context.Context, ids []string) (*pinecone.FetchVectorsResponse, error)
}

// Executor runs native Pinecone JSON queries against one index connection.
// The namespace is fixed by the connection.
type Executor struct {
	index     IndexClient
	namespace string
	logger    *zap.Logger
}

// NewExecutor creates a Pinecone executor.
func NewExecutor(index IndexClient, namespace string, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{index: index, namespace: namespace, logger: logger}
}

type nativeQuery struct {
	IDs       []string       `json:"ids"`
	Vector    []float32      `json:"vector"`
	TopK      int            `json:"topK"`
	Limit     int            `json:"limit"`
	Filter    map[string]any `json:"filter"`
	Namespace string         `json:"namespace"`
}

// topK resolves topK, then limit, then the default.
func (q nativeQuery) topK() uint32 {
	switch {
	case q.TopK > 0:
		return uint32(q.TopK)
	case q.Limit > 0:
		return uint32(q.Limit)
	default:
		return query.DefaultSimilarityLimit
	}
}

// Execute fetches by ids when present, otherwise runs a vector query.
func (e *Executor) Execute(ctx context.Context, raw string) ([]point.Point, error) {
	var q nativeQuery
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return nil, fmt.Errorf("%w: pinecone query: %w", domain.ErrInvalidQuery, err)
	}
	if q.Namespace != "" && q.Namespace != e.namespace {
		e.logger.Warn("pinecone namespace is fixed by the connection, ignoring query namespace",
			zap.String("query_namespace", q.Namespace),
			zap.String("namespace", e.namespace),
		)
	}

	var (
		resp map[string]any
		err  error
	)
	switch {
	case len(q.IDs) > 0:
		resp, err = e.fetch(ctx, q.IDs)
	case len(q.Vector) > 0:
		resp, err = e.query(ctx, q)
	default:
		return nil, fmt.Errorf("%w: pinecone query needs vector or ids", domain.ErrInvalidQuery)
	}
	if err != nil {
		return nil, err
	}
	return Normalize(resp, query.NormalizeOptions{}), nil
}

func (e *Executor) fetch(ctx context.Context, ids []string) (map[string]any, error) {
	res, err := e.index.FetchVectors(ctx, ids)
	if err != nil {
		return nil, domain.NewBackendError(backend.Pinecone, err)
	}
	vectors := make(map[string]any, len(res.Vectors))
	for id, v := range res.Vectors {
		if v == nil {
			continue
		}
		vectors[id] = vectorRecord(v)
	}
	return map[string]any{"vectors": vectors}, nil
}

func (e *Executor) query(ctx context.Context, q nativeQuery) (map[string]any, error) {
	req := &pinecone.QueryByVectorValuesRequest{
		Vector:          q.Vector,
		TopK:            q.topK(),
		IncludeValues:   true,
		IncludeMetadata: true,
	}
	if len(q.Filter) > 0 {
		f, err := structpb.NewStruct(q.Filter)
		if err != nil {
			return nil, fmt.Errorf("%w: pinecone filter: %w", domain.ErrInvalidQuery, err)
		}
		req.MetadataFilter = f
	}

	res, err := e.index.QueryByVectorValues(ctx, req)
	if err != nil {
		return nil, domain.NewBackendError(backend.Pinecone, err)
	}

	matches := make([]any, 0, len(res.Matches))
	for _, m := range res.Matches {
		if m == nil || m.Vector == nil {
			continue
		}
		rec := vectorRecord(m.Vector)
		rec["score"] = m.Score
		matches = append(matches, rec)
	}
	return map[string]any{"matches": matches}, nil
}

func vectorRecord(v *pinecone.Vector) map[string]any {
	rec := map[string]any{"id": v.Id}
	if len(v.Values) > 0 {
		rec["values"] = v.Values
	}
	if v.Metadata != nil {
		rec["metadata"] = v.Metadata.AsMap()
	}
	return rec
}
