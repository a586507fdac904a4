package lodestone

import (
	"context"
	"fmt"
	"time"

	"github.com/lodestone-search/lodestone/internal/domain"
	searchuc "github.com/lodestone-search/lodestone/internal/usecase/search"
)

// SearchService runs retrieval within one tenant index.
type SearchService struct {
	tenant     domain.Tenant
	entityType string
	svc        searchUseCase
	audit      auditUseCase
	obs        *observer
}

// Query embeds the query text (or extracts a media reference first), runs a
// filtered KNN retrieval and returns hits above the relevance floor, best
// match first.
func (s *SearchService) Query(ctx context.Context, q SearchQuery) (hits []SearchHit, err error) {
	start := time.Now()
	defer func() { s.obs.observe("search", start, err) }()

	found, events, err := s.svc.Search(ctx, s.tenant, s.entityType, searchuc.Params{
		Query:     q.Query,
		QueryKind: q.QueryKind,
		Filters:   q.Filters,
		TopK:      q.TopK,
		MinScore:  q.MinScore,
	})
	s.audit.Dispatch(ctx, events)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits = make([]SearchHit, len(found))
	for i, h := range found {
		hits[i] = SearchHit{
			ID:          h.ID,
			Score:       h.Score,
			Name:        h.Name,
			Description: h.Description,
			FileName:    h.FileName,
			FileType:    h.FileType,
			PreviewURL:  h.PreviewURL,
			FilePath:    h.FilePath,
			ContentText: h.ContentText,
			Metadata:    h.Metadata,
		}
	}
	return hits, nil
}
