package extract

import (
	"context"

	"github.com/lodestone-search/lodestone/internal/imagefit"
)

// Fitter shrinks a referenced image into an inline payload under the vision
// capability's size ceiling.
type Fitter interface {
	Fit(ctx context.Context, rawURL string) (imagefit.Payload, error)
}

// Vision describes an inline image as searchable text.
type Vision interface {
	DescribeImage(ctx context.Context, imageBase64, mediaType string) (string, error)
}

// Summarizer produces a textual description of a file from its reference
// alone, for kinds whose bytes cannot be sent inline.
type Summarizer interface {
	SummarizeReference(ctx context.Context, ref, kind string) (string, error)
}
