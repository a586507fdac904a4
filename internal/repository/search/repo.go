// Package search translates retrieval requests into KNN queries and projects
// stored documents into client-facing hits.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lodestone-search/lodestone/internal/db"
	"github.com/lodestone-search/lodestone/internal/domain"
	domsearch "github.com/lodestone-search/lodestone/internal/domain/search"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// SearchKNN performs a filtered vector similarity search against a resolved
// index and returns projected hits ordered by descending similarity. The
// projection never includes the stored embedding.
func (r *Repo) SearchKNN(
	ctx context.Context, index string,
	vector []float32, filters []domsearch.Condition, topK int,
) ([]domsearch.Hit, error) {
	q := &db.KNNQuery{
		IndexName:    fmt.Sprintf("%s%s:idx", domain.KeyPrefix, index),
		Filters:      filters,
		Vector:       vector,
		K:            topK,
		ReturnFields: []string{"$"},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: search knn %s: %w", domain.ErrIndexStore, index, err)
	}

	return parseHits(sr, index)
}

func parseHits(sr *db.SearchResult, index string) ([]domsearch.Hit, error) {
	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	prefix := fmt.Sprintf("%s%s:", domain.KeyPrefix, index)
	hits := make([]domsearch.Hit, 0, len(sr.Entries))

	for _, entry := range sr.Entries {
		id := strings.TrimPrefix(entry.Key, prefix)
		hit, err := parseEntry(id, entry)
		if err != nil {
			return nil, fmt.Errorf("parse hit %s: %w", entry.Key, err)
		}
		hits = append(hits, hit)
	}

	return hits, nil
}

// parseEntry decodes the stored JSON document returned under "$" and projects
// it into a hit, dropping the embedding.
func parseEntry(id string, entry db.SearchEntry) (domsearch.Hit, error) {
	hit := domsearch.Hit{ID: id, Score: entry.Score}

	raw := entry.Fields["$"]
	if raw == "" {
		return hit, nil
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return domsearch.Hit{}, err
	}

	hit.Name = stringField(doc, "name")
	hit.Description = stringField(doc, "description")
	hit.FileName = stringField(doc, "file_name")
	hit.FileType = stringField(doc, "file_type")
	hit.PreviewURL = stringField(doc, "preview_url")
	hit.FilePath = stringField(doc, "file_path")
	hit.ContentText = stringField(doc, "content_text")
	if meta, ok := doc["metadata"].(map[string]any); ok {
		hit.Metadata = meta
	}
	if docID := stringField(doc, "id"); docID != "" {
		hit.ID = docID
	}

	return hit, nil
}

func stringField(doc map[string]any, key string) string {
	s, _ := doc[key].(string)
	return s
}
