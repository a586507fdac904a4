// Package entity persists entities as JSON documents and manages their
// per-index search schema.
package entity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lodestone-search/lodestone/internal/db"
	"github.com/lodestone-search/lodestone/internal/domain"
)

// store is the consumer interface for entities (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// HNSWConfig holds HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo implements usecase/entity.Repository.
type Repo struct {
	store store
	hnsw  HNSWConfig
}

// New creates an entity repository.
func New(s store) *Repo {
	return &Repo{store: s, hnsw: HNSWConfig{M: 32, EFConstruct: 400}}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// EnsureIndex creates the search index for a resolved index name if it does
// not exist yet. Returns true when an index was actually created, so callers
// can record the event. Concurrent creation of the same index is safe: a
// losing racer sees ErrIndexExists and reports created=false.
func (r *Repo) EnsureIndex(ctx context.Context, index string) (bool, error) {
	idxName := indexName(index)

	exists, err := r.store.IndexExists(ctx, idxName)
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", index, err)
	}
	if exists {
		return false, nil
	}

	def, err := buildIndexDef(index, r.hnsw)
	if err != nil {
		return false, fmt.Errorf("build index %s: %w", index, err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil
		}
		return false, fmt.Errorf("%w: create index %s: %w", domain.ErrIndexStore, index, err)
	}
	return true, nil
}

// Index writes an entity document, creating or replacing it.
func (r *Repo) Index(ctx context.Context, index string, e *domain.Entity) error {
	data, err := json.Marshal(buildJSONDoc(e))
	if err != nil {
		return fmt.Errorf("marshal entity %s: %w", e.ID, err)
	}
	key := docKey(index, e.ID)
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("%w: json.set %s: %w", domain.ErrIndexStore, key, err)
	}
	return nil
}

// BulkIndex writes a batch of entity documents in one pipelined round trip.
func (r *Repo) BulkIndex(ctx context.Context, index string, entities []*domain.Entity) error {
	items := make([]db.JSONSetItem, 0, len(entities))
	for _, e := range entities {
		data, err := json.Marshal(buildJSONDoc(e))
		if err != nil {
			return fmt.Errorf("marshal entity %s: %w", e.ID, err)
		}
		items = append(items, db.JSONSetItem{Key: docKey(index, e.ID), Path: "$", Data: data})
	}
	if err := r.store.JSONSetMulti(ctx, items); err != nil {
		return fmt.Errorf("%w: json.set multi: %w", domain.ErrIndexStore, err)
	}
	return nil
}

// Get returns an entity by ID.
func (r *Repo) Get(ctx context.Context, index, id string) (domain.Entity, error) {
	key := docKey(index, id)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Entity{}, fmt.Errorf("%w: entity %s", domain.ErrNotFound, id)
		}
		return domain.Entity{}, fmt.Errorf("%w: json.get %s: %w", domain.ErrIndexStore, key, err)
	}
	return parseJSONGetResult(id, raw)
}

// Exists reports whether an entity document is present.
func (r *Repo) Exists(ctx context.Context, index, id string) (bool, error) {
	ok, err := r.store.Exists(ctx, docKey(index, id))
	if err != nil {
		return false, fmt.Errorf("%w: exists %s: %w", domain.ErrIndexStore, id, err)
	}
	return ok, nil
}

// Delete removes an entity document. Returns ErrNotFound for a missing ID.
func (r *Repo) Delete(ctx context.Context, index, id string) error {
	key := docKey(index, id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("%w: check exists %s: %w", domain.ErrIndexStore, key, err)
	}
	if !exists {
		return fmt.Errorf("%w: entity %s", domain.ErrNotFound, id)
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("%w: del %s: %w", domain.ErrIndexStore, key, err)
	}
	return nil
}

// Key patterns: lodestone:{index}:{id} for documents, lodestone:{index}:idx
// for the search index over prefix lodestone:{index}:.

func docKey(index, id string) string {
	return fmt.Sprintf("%s%s:%s", domain.KeyPrefix, index, id)
}

func indexName(index string) string {
	return fmt.Sprintf("%s%s:idx", domain.KeyPrefix, index)
}

func docPrefix(index string) string {
	return fmt.Sprintf("%s%s:", domain.KeyPrefix, index)
}

// buildIndexDef declares the fixed entity schema: an HNSW vector field plus
// the filterable attributes the search allow-list exposes.
func buildIndexDef(index string, hnsw HNSWConfig) (*db.IndexDefinition, error) {
	return db.NewIndex(indexName(index)).
		Prefix(docPrefix(index)).
		VectorHNSW("$.embedding", "embedding", domain.VectorDim, db.DistanceCosine, hnsw.M, hnsw.EFConstruct).
		Text("$.name", "name").
		Text("$.description", "description").
		Text("$.content_text", "content_text").
		Tag("$.file_type", "file_type").
		Tag("$.file_name", "file_name").
		Tag("$.metadata.author", "author").
		Tag("$.metadata.category", "category").
		Tag("$.metadata.tags[*]", "tags").
		Numeric("$.created_at", "created_at").
		Numeric("$.updated_at", "updated_at").
		Build()
}
