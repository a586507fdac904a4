package domain

import "errors"

var (
	// ErrValidation signals a malformed or incomplete client request.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound signals a missing entity.
	ErrNotFound = errors.New("entity not found")
	// ErrEmbeddingUpstream signals an unreachable or failing embedding provider.
	ErrEmbeddingUpstream = errors.New("embedding provider unavailable")
	// ErrEmbeddingShape signals a malformed embedding response (wrong vector length).
	ErrEmbeddingShape = errors.New("embedding has wrong shape")
	// ErrExtractionEmpty signals that media-to-text extraction produced no text.
	ErrExtractionEmpty = errors.New("extraction produced empty text")
	// ErrInvalidReference signals a malformed or unfetchable media reference.
	ErrInvalidReference = errors.New("invalid media reference")
	// ErrPayloadTooLarge signals that an image cannot be shrunk under the transfer ceiling.
	ErrPayloadTooLarge = errors.New("payload exceeds transfer ceiling")
	// ErrIndexStore signals an index store failure.
	ErrIndexStore = errors.New("index store failure")
)
