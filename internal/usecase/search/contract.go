package search

import (
	"context"

	"github.com/lodestone-search/lodestone/internal/domain"
	domsearch "github.com/lodestone-search/lodestone/internal/domain/search"
)

// Repository defines the storage contract for retrieval.
type Repository interface {
	SearchKNN(
		ctx context.Context, index string,
		vector []float32, filters []domsearch.Condition, topK int,
	) ([]domsearch.Hit, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Extractor turns a media reference into embeddable text, for queries that
// are file references rather than plain text.
type Extractor interface {
	Extract(ctx context.Context, ref string, kind domain.MediaKind) (string, error)
}
