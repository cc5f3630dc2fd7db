// Package openai embeds query text through any OpenAI-compatible
// embeddings endpoint.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecspace/internal/domain"
	"github.com/kailas-cloud/vecspace/internal/metrics"
)

// Error kinds recorded in vecspace_embedding_errors_total.
const (
	errKindAPI        = "api_error"
	errKindRateLimit  = "rate_limited"
	errKindEmpty      = "empty_response"
	errKindDimensions = "dimension_mismatch"
)

// Config holds the embedding provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	User       string
	Provider   string
	// Timeout bounds each provider call; zero leaves it to the context.
	Timeout time.Duration
	Logger  *zap.Logger
}

// Embedder implements domain.Embedder over go-openai.
type Embedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	user       string
	provider   string
	logger     *zap.Logger
}

// NewEmbedder builds the client. An empty BaseURL targets api.openai.com.
func NewEmbedder(cfg *Config) *Embedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Embedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		user:       cfg.User,
		provider:   cfg.Provider,
		logger:     logger,
	}
}

// Embed returns the vector for text with the provider's token usage. A
// provider rate limit maps to ErrEmbeddingQuotaExceeded; every other
// failure wraps ErrEmbeddingProviderError.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		User:           e.user,
		Dimensions:     e.dimensions,
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		kind, wrapped := classify(err)
		e.fail(kind)
		return domain.EmbeddingResult{}, wrapped
	}

	if len(resp.Data) == 0 {
		e.fail(errKindEmpty)
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	vec := resp.Data[0].Embedding
	if e.dimensions > 0 && len(vec) != e.dimensions {
		e.fail(errKindDimensions)
		e.logger.Warn("embedding dimension mismatch",
			zap.String("model", string(e.model)),
			zap.Int("expected", e.dimensions),
			zap.Int("got", len(vec)),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embedding has %d dimensions, expected %d: %w",
			len(vec), e.dimensions, domain.ErrEmbeddingProviderError)
	}

	model := string(e.model)
	metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(e.provider, model).Observe(time.Since(start).Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(e.provider, model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.EmbeddingTokensTotal.WithLabelValues(e.provider, model, "total").Add(float64(resp.Usage.TotalTokens))
	}

	return domain.EmbeddingResult{
		Embedding:    vec,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// Model returns the configured model name.
func (e *Embedder) Model() string { return string(e.model) }

// HealthCheck lists models, which costs no tokens.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func (e *Embedder) fail(kind string) {
	model := string(e.model)
	metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, model, "error").Inc()
	metrics.EmbeddingErrorsTotal.WithLabelValues(e.provider, model, kind).Inc()
}

// classify turns a go-openai error into an error kind and a domain error
// carrying the provider's message.
func classify(err error) (string, error) {
	status, msg := 0, ""

	var reqErr *openai.RequestError
	var apiErr *openai.APIError
	switch {
	case errors.As(err, &apiErr):
		status, msg = apiErr.HTTPStatusCode, apiErr.Message
	case errors.As(err, &reqErr):
		status, msg = reqErr.HTTPStatusCode, detail(reqErr.Body)
	default:
		return errKindAPI, fmt.Errorf("embedding request failed: %w", domain.ErrEmbeddingProviderError)
	}

	if status == http.StatusTooManyRequests {
		return errKindRateLimit, fmt.Errorf("embedding provider rate limit: %s: %w", msg, domain.ErrEmbeddingQuotaExceeded)
	}
	return errKindAPI, fmt.Errorf("embedding API error %d: %s: %w", status, msg, domain.ErrEmbeddingProviderError)
}

// detail reads the "detail" field some OpenAI-compatible providers use in
// error bodies, falling back to the raw body.
func detail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return string(body)
}
