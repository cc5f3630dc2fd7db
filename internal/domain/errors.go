package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownBackend signals a backend name missing from the descriptor table.
	ErrUnknownBackend = errors.New("unknown backend")
	// ErrInvalidCondition signals a malformed filter condition (a caller bug, not data).
	ErrInvalidCondition = errors.New("invalid filter condition")
	// ErrUnsupportedOperator signals an operator with no native form for a backend.
	ErrUnsupportedOperator = errors.New("unsupported operator")
	// ErrUnknownMetric signals a distance metric name the engine does not know.
	ErrUnknownMetric = errors.New("unknown distance metric")
	// ErrInvalidQuery signals a native query the executor cannot route.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrExecutorNotConfigured signals that no client is wired for a backend.
	ErrExecutorNotConfigured = errors.New("executor not configured")
	// ErrBackendFailure signals an error returned by the backend client.
	ErrBackendFailure = errors.New("backend failure")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbeddingQuotaExceeded signals an exhausted query embedding token budget.
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")
	// ErrEmbedderNotConfigured signals a text query without an embedder.
	ErrEmbedderNotConfigured = errors.New("embedder not configured")
	// ErrNoMatchingPoints signals that none of the requested ids is in the point list.
	ErrNoMatchingPoints = errors.New("no matching points")
	// ErrTooManyPoints signals a point list above the configured engine limit.
	ErrTooManyPoints = errors.New("too many points")
)

// BackendError wraps ErrBackendFailure with the backend that produced it.
type BackendError struct {
	Backend string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Backend, ErrBackendFailure.Error(), e.Err)
}

// Unwrap exposes both the sentinel and the client error to errors.Is / errors.As.
func (e *BackendError) Unwrap() []error { return []error{ErrBackendFailure, e.Err} }

// NewBackendError creates a backend failure error.
func NewBackendError(backend string, err error) error {
	return &BackendError{Backend: backend, Err: err}
}
