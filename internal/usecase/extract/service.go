// Package extract turns media references into embeddable text.
package extract

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lodestone-search/lodestone/internal/domain"
	"github.com/lodestone-search/lodestone/internal/metrics"
)

// Service routes a media reference to the extraction path for its kind:
// images are fitted and described by the vision capability, other kinds are
// summarized from the reference alone.
type Service struct {
	fitter     Fitter
	vision     Vision
	summarizer Summarizer
	logger     *zap.Logger
}

// New creates an extraction service.
func New(fitter Fitter, vision Vision, summarizer Summarizer, logger *zap.Logger) *Service {
	return &Service{fitter: fitter, vision: vision, summarizer: summarizer, logger: logger}
}

// Extract produces searchable text for a media reference. The result is
// never empty: an upstream answer with no usable text is an error.
func (s *Service) Extract(ctx context.Context, ref string, kind domain.MediaKind) (string, error) {
	text, err := s.extract(ctx, ref, kind)
	if err != nil {
		metrics.ExtractionRequestsTotal.WithLabelValues(string(kind), "failure").Inc()
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		metrics.ExtractionRequestsTotal.WithLabelValues(string(kind), "failure").Inc()
		return "", fmt.Errorf("%w: %s %s", domain.ErrExtractionEmpty, kind, ref)
	}

	metrics.ExtractionRequestsTotal.WithLabelValues(string(kind), "success").Inc()
	return text, nil
}

func (s *Service) extract(ctx context.Context, ref string, kind domain.MediaKind) (string, error) {
	switch kind {
	case domain.MediaImage:
		return s.describeImage(ctx, ref)
	case domain.MediaPDF, domain.MediaVideo:
		return s.summarizer.SummarizeReference(ctx, ref, string(kind))
	default:
		return "", fmt.Errorf("%w: unsupported media kind %q", domain.ErrValidation, kind)
	}
}

func (s *Service) describeImage(ctx context.Context, ref string) (string, error) {
	payload, err := s.fitter.Fit(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("fit image %s: %w", ref, err)
	}

	s.logger.Debug("Image fitted for vision",
		zap.String("ref", ref),
		zap.String("media_type", payload.MediaType),
		zap.Int("base64_len", len(payload.Base64)),
	)

	return s.vision.DescribeImage(ctx, payload.Base64, payload.MediaType)
}
