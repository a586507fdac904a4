// Package entity implements the entity lifecycle: create, read, update,
// delete and bulk ingestion, with embedding derivation on every content
// change.
package entity

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lodestone-search/lodestone/internal/domain"
)

// Service orchestrates entity writes through the embedding pipeline. Every
// operation returns its audit events as a side-channel; the caller hands
// them to a dispatcher so sink failures never affect the primary result.
type Service struct {
	repo     Repository
	embed    Embedder
	extract  Extractor
	logger   *zap.Logger
	now      func() time.Time
	maxBatch int
}

// New creates an entity service.
func New(repo Repository, embed Embedder, extract Extractor, logger *zap.Logger) *Service {
	return &Service{
		repo: repo, embed: embed, extract: extract, logger: logger,
		now: time.Now, maxBatch: MaxBatchSize,
	}
}

// WithMaxBatchSize overrides the bulk ingestion limit.
func (s *Service) WithMaxBatchSize(n int) *Service {
	if n > 0 {
		s.maxBatch = n
	}
	return s
}

// Create ingests a new entity. The document is written only after an
// embedding was produced; an embedding failure leaves the index untouched.
func (s *Service) Create(
	ctx context.Context, t domain.Tenant, entityType string, in CreateInput,
) (domain.Entity, []domain.Event, error) {
	index, err := domain.ResolveIndex(t, entityType)
	if err != nil {
		return domain.Entity{}, nil, err
	}
	if err := in.validate(); err != nil {
		return domain.Entity{}, nil, err
	}

	e, err := in.toEntity()
	if err != nil {
		return domain.Entity{}, nil, err
	}

	events, err := s.ensureIndex(ctx, t, entityType, index)
	if err != nil {
		return domain.Entity{}, events, err
	}

	if err := s.embedEntity(ctx, e); err != nil {
		events = append(events,
			domain.NewEvent(t, entityType, domain.EventEmbeddingFailure, domain.StatusFailure).
				WithEntity(e.ID).WithError(err),
			domain.NewEvent(t, entityType, domain.EventEntityCreated, domain.StatusFailure).
				WithEntity(e.ID).WithError(err),
		)
		return domain.Entity{}, events, err
	}

	now := s.now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now

	if err := s.repo.Index(ctx, index, e); err != nil {
		events = append(events, domain.NewEvent(t, entityType, domain.EventEntityCreated, domain.StatusFailure).
			WithEntity(e.ID).WithError(err))
		return domain.Entity{}, events, err
	}

	events = append(events, domain.NewEvent(t, entityType, domain.EventEntityCreated, domain.StatusSuccess).
		WithEntity(e.ID))
	return *e, events, nil
}

// Get returns a stored entity.
func (s *Service) Get(ctx context.Context, t domain.Tenant, entityType, id string) (domain.Entity, error) {
	index, err := domain.ResolveIndex(t, entityType)
	if err != nil {
		return domain.Entity{}, err
	}
	return s.repo.Get(ctx, index, id)
}

// Update applies a partial update. The embedding is regenerated only when a
// field feeding it changed; a pure metadata update keeps the stored vector.
func (s *Service) Update(
	ctx context.Context, t domain.Tenant, entityType, id string, in UpdateInput,
) (domain.Entity, []domain.Event, error) {
	index, err := domain.ResolveIndex(t, entityType)
	if err != nil {
		return domain.Entity{}, nil, err
	}

	e, err := s.repo.Get(ctx, index, id)
	if err != nil {
		return domain.Entity{}, nil, err
	}

	contentChanged, err := in.apply(&e)
	if err != nil {
		return domain.Entity{}, nil, err
	}

	var events []domain.Event
	if contentChanged {
		if err := s.embedEntity(ctx, &e); err != nil {
			events = append(events,
				domain.NewEvent(t, entityType, domain.EventEmbeddingFailure, domain.StatusFailure).
					WithEntity(id).WithError(err),
				domain.NewEvent(t, entityType, domain.EventEntityUpdated, domain.StatusFailure).
					WithEntity(id).WithError(err),
			)
			return domain.Entity{}, events, err
		}
	}

	e.UpdatedAt = s.now().UTC()

	if err := s.repo.Index(ctx, index, &e); err != nil {
		events = append(events, domain.NewEvent(t, entityType, domain.EventEntityUpdated, domain.StatusFailure).
			WithEntity(id).WithError(err))
		return domain.Entity{}, events, err
	}

	events = append(events, domain.NewEvent(t, entityType, domain.EventEntityUpdated, domain.StatusSuccess).
		WithEntity(id))
	return e, events, nil
}

// Delete removes an entity.
func (s *Service) Delete(ctx context.Context, t domain.Tenant, entityType, id string) ([]domain.Event, error) {
	index, err := domain.ResolveIndex(t, entityType)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, index, id); err != nil {
		return []domain.Event{
			domain.NewEvent(t, entityType, domain.EventEntityDeleted, domain.StatusFailure).
				WithEntity(id).WithError(err),
		}, err
	}

	return []domain.Event{
		domain.NewEvent(t, entityType, domain.EventEntityDeleted, domain.StatusSuccess).
			WithEntity(id),
	}, nil
}

// ensureIndex provisions the tenant index on first write and records the
// creation as an event.
func (s *Service) ensureIndex(ctx context.Context, t domain.Tenant, entityType, index string) ([]domain.Event, error) {
	created, err := s.repo.EnsureIndex(ctx, index)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, nil
	}
	s.logger.Info("Index created", zap.String("index", index))
	return []domain.Event{
		domain.NewEvent(t, entityType, domain.EventIndexCreated, domain.StatusSuccess),
	}, nil
}

// embedEntity derives the embeddable text for an entity and attaches its
// embedding. Media entities go through extraction first; the extracted text
// is stored as content_text so it is searchable and re-usable.
func (s *Service) embedEntity(ctx context.Context, e *domain.Entity) error {
	text, err := s.embeddableText(ctx, e)
	if err != nil {
		return err
	}

	result, err := s.embed.Embed(ctx, text)
	if err != nil {
		return err
	}

	e.Embedding = result.Embedding
	return nil
}

func (s *Service) embeddableText(ctx context.Context, e *domain.Entity) (string, error) {
	if domain.IsMedia(e.FileType) {
		text, err := s.extract.Extract(ctx, e.MediaReference(), domain.MediaKind(e.FileType))
		if err != nil {
			return "", err
		}
		e.ContentText = text
		return composeText(e.Name, e.Description, text), nil
	}
	return composeText(e.Name, e.Description, e.ContentText), nil
}

// composeText joins the textual fields into one embedding input, skipping
// blanks so absent fields do not dilute the vector.
func composeText(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}
