package entity

import (
	"context"

	"github.com/lodestone-search/lodestone/internal/domain"
)

// Repository defines the storage contract for entity lifecycle operations.
type Repository interface {
	EnsureIndex(ctx context.Context, index string) (created bool, err error)
	Index(ctx context.Context, index string, e *domain.Entity) error
	BulkIndex(ctx context.Context, index string, entities []*domain.Entity) error
	Get(ctx context.Context, index, id string) (domain.Entity, error)
	Delete(ctx context.Context, index, id string) error
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Extractor turns a media reference into embeddable text.
type Extractor interface {
	Extract(ctx context.Context, ref string, kind domain.MediaKind) (string, error)
}
