package lodestone

import "github.com/lodestone-search/lodestone/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation        = domain.ErrValidation
	ErrNotFound          = domain.ErrNotFound
	ErrEmbeddingUpstream = domain.ErrEmbeddingUpstream
	ErrEmbeddingShape    = domain.ErrEmbeddingShape
	ErrExtractionEmpty   = domain.ErrExtractionEmpty
	ErrInvalidReference  = domain.ErrInvalidReference
	ErrPayloadTooLarge   = domain.ErrPayloadTooLarge
	ErrIndexStore        = domain.ErrIndexStore
)
