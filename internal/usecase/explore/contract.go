package explore

import (
	"context"

	"github.com/kailas-cloud/vecspace/internal/adapter"
	"github.com/kailas-cloud/vecspace/internal/domain"
)

// Registry resolves backend adapters and executors by name.
type Registry interface {
	Adapter(name string) (adapter.Adapter, error)
	Executor(name string) (adapter.Executor, error)
}

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
