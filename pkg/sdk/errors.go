package vecspace

import "github.com/kailas-cloud/vecspace/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrUnknownBackend         = domain.ErrUnknownBackend
	ErrInvalidCondition       = domain.ErrInvalidCondition
	ErrUnsupportedOperator    = domain.ErrUnsupportedOperator
	ErrUnknownMetric          = domain.ErrUnknownMetric
	ErrInvalidQuery           = domain.ErrInvalidQuery
	ErrExecutorNotConfigured  = domain.ErrExecutorNotConfigured
	ErrBackendFailure         = domain.ErrBackendFailure
	ErrEmbedderNotConfigured  = domain.ErrEmbedderNotConfigured
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrNoMatchingPoints       = domain.ErrNoMatchingPoints
	ErrTooManyPoints          = domain.ErrTooManyPoints
)
