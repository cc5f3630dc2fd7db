package weaviate

import (
	"context"
	"errors"
	"strings"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/kailas-cloud/vecspace/internal/domain"
	"github.com/kailas-cloud/vecspace/internal/domain/backend"
	"github.com/kailas-cloud/vecspace/internal/domain/point"
	"github.com/kailas-cloud/vecspace/internal/domain/query"
)

// GraphQLRunner sends a raw GraphQL query.
type GraphQLRunner interface {
	Run(ctx context.Context, query string) (*models.GraphQLResponse, error)
}

// ClientRunner runs raw queries through the Weaviate Go client.
type ClientRunner struct {
	Client *weaviate.Client
}

// Run implements GraphQLRunner.
func (r ClientRunner) Run(ctx context.Context, q string) (*models.GraphQLResponse, error) {
	return r.Client.GraphQL().Raw().WithQuery(q).Do(ctx)
}

// Executor runs raw GraphQL Get queries.
type Executor struct {
	runner GraphQLRunner
}

// NewExecutor creates a Weaviate executor.
func NewExecutor(runner GraphQLRunner) *Executor {
	return &Executor{runner: runner}
}

// NewClientExecutor creates an executor over a configured Weaviate client.
func NewClientExecutor(client *weaviate.Client) *Executor {
	return NewExecutor(ClientRunner{Client: client})
}

// Execute runs the query and normalizes data.Get.<Class>.
func (e *Executor) Execute(ctx context.Context, raw string) ([]point.Point, error) {
	className, err := ClassName(raw)
	if err != nil {
		return nil, err
	}

	resp, err := e.runner.Run(ctx, raw)
	if err != nil {
		return nil, domain.NewBackendError(backend.Weaviate, err)
	}
	if resp == nil {
		return []point.Point{}, nil
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, ge := range resp.Errors {
			if ge != nil {
				msgs = append(msgs, ge.Message)
			}
		}
		return nil, domain.NewBackendError(backend.Weaviate, errors.New("graphql: "+strings.Join(msgs, "; ")))
	}

	data := make(map[string]any, len(resp.Data))
	for k, v := range resp.Data {
		data[k] = v
	}
	return Normalize(map[string]any{"data": data}, query.NormalizeOptions{ClassName: className}), nil
}
