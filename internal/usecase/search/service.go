// Package search implements hybrid retrieval: vector similarity pre-filtered
// by exact-match and range conditions, post-filtered by a relevance floor.
package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lodestone-search/lodestone/internal/domain"
	domsearch "github.com/lodestone-search/lodestone/internal/domain/search"
)

// Params is the raw search input as the transport received it.
type Params struct {
	Query     string
	QueryKind string // media kind when the query is a file reference
	Filters   map[string]any
	TopK      int
	MinScore  *float64
}

// Defaults carries configured retrieval bounds.
type Defaults struct {
	TopK     int
	MaxTopK  int
	MinScore float64
}

// Service executes searches against a tenant's index.
type Service struct {
	repo     Repository
	embed    Embedder
	extract  Extractor
	defaults Defaults
	logger   *zap.Logger
}

// New creates a search service.
func New(repo Repository, embed Embedder, extract Extractor, defaults Defaults, logger *zap.Logger) *Service {
	if defaults.TopK <= 0 {
		defaults.TopK = domsearch.DefaultTopK
	}
	if defaults.MaxTopK <= 0 {
		defaults.MaxTopK = domsearch.MaxTopK
	}
	if defaults.MinScore <= 0 {
		defaults.MinScore = domsearch.DefaultMinScore
	}
	return &Service{repo: repo, embed: embed, extract: extract, defaults: defaults, logger: logger}
}

// Search embeds the query, runs a filtered KNN retrieval and drops hits below
// the relevance floor. Exactly one audit event is emitted per attempt.
func (s *Service) Search(
	ctx context.Context, t domain.Tenant, entityType string, p Params,
) ([]domsearch.Hit, []domain.Event, error) {
	hits, err := s.search(ctx, t, entityType, p)

	ev := domain.NewEvent(t, entityType, domain.EventSearch, domain.StatusSuccess).
		WithQuery(p.Query, len(hits))
	if err != nil {
		ev.Status = domain.StatusFailure
		ev = ev.WithError(err)
	}

	return hits, []domain.Event{ev}, err
}

func (s *Service) search(
	ctx context.Context, t domain.Tenant, entityType string, p Params,
) ([]domsearch.Hit, error) {
	index, err := domain.ResolveIndex(t, entityType)
	if err != nil {
		return nil, err
	}

	filters, err := translateFilters(p.Filters)
	if err != nil {
		return nil, err
	}

	req := domsearch.Request{
		Query:     p.Query,
		QueryKind: p.QueryKind,
		Filters:   filters,
		TopK:      p.TopK,
		MinScore:  p.MinScore,
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	req.ClampTopK(s.defaults.TopK, s.defaults.MaxTopK)

	queryText, err := s.queryText(ctx, &req)
	if err != nil {
		return nil, err
	}

	embResult, err := s.embed.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	hits, err := s.repo.SearchKNN(ctx, index, embResult.Embedding, req.Filters, req.TopK)
	if err != nil {
		return nil, err
	}

	minScore := req.EffectiveMinScore(s.defaults.MinScore)
	kept := hits[:0]
	for _, h := range hits {
		if h.Score >= minScore {
			kept = append(kept, h)
		}
	}

	s.logger.Debug("Search completed",
		zap.String("index", index),
		zap.Int("top_k", req.TopK),
		zap.Float64("min_score", minScore),
		zap.Int("hits", len(kept)),
	)
	return kept, nil
}

// queryText resolves the text to embed. A media query is first turned into a
// description through the extraction pipeline.
func (s *Service) queryText(ctx context.Context, req *domsearch.Request) (string, error) {
	if req.QueryKind == "" {
		return req.Query, nil
	}
	if !domain.IsMedia(req.QueryKind) {
		return "", fmt.Errorf("%w: unsupported query kind %q", domain.ErrValidation, req.QueryKind)
	}

	text, err := s.extract.Extract(ctx, strings.TrimSpace(req.Query), domain.MediaKind(req.QueryKind))
	if err != nil {
		return "", fmt.Errorf("extract query: %w", err)
	}
	return text, nil
}
