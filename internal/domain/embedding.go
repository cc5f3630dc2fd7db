package domain

import "context"

// Embedder turns query text into a vector for similarity queries.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies availability of an external dependency.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Float64s widens the embedding to the engine's element type.
func (r EmbeddingResult) Float64s() []float64 {
	out := make([]float64, len(r.Embedding))
	for i, v := range r.Embedding {
		out[i] = float64(v)
	}
	return out
}
