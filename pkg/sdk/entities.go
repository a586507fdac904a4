package lodestone

import (
	"context"
	"fmt"
	"time"

	"github.com/lodestone-search/lodestone/internal/domain"
	entityuc "github.com/lodestone-search/lodestone/internal/usecase/entity"
)

// EntityService manages entities within one tenant index.
type EntityService struct {
	tenant     domain.Tenant
	entityType string
	svc        entityUseCase
	audit      auditUseCase
	obs        *observer
}

// Create ingests a new entity. The entity is embedded before it is written;
// an embedding failure leaves the index untouched.
func (s *EntityService) Create(ctx context.Context, in EntityInput) (e Entity, err error) {
	start := time.Now()
	defer func() { s.obs.observe("entity_create", start, err) }()

	stored, events, err := s.svc.Create(ctx, s.tenant, s.entityType, toInternalInput(in))
	s.audit.Dispatch(ctx, events)
	if err != nil {
		return Entity{}, fmt.Errorf("create entity: %w", err)
	}
	return fromInternalEntity(stored), nil
}

// Get retrieves an entity by ID.
func (s *EntityService) Get(ctx context.Context, id string) (e Entity, err error) {
	start := time.Now()
	defer func() { s.obs.observe("entity_get", start, err) }()

	stored, err := s.svc.Get(ctx, s.tenant, s.entityType, id)
	if err != nil {
		return Entity{}, fmt.Errorf("get entity: %w", err)
	}
	return fromInternalEntity(stored), nil
}

// Update applies a partial update. The entity is re-embedded only when an
// embeddable field changed.
func (s *EntityService) Update(ctx context.Context, id string, in EntityUpdate) (e Entity, err error) {
	start := time.Now()
	defer func() { s.obs.observe("entity_update", start, err) }()

	stored, events, err := s.svc.Update(ctx, s.tenant, s.entityType, id, toInternalUpdate(in))
	s.audit.Dispatch(ctx, events)
	if err != nil {
		return Entity{}, fmt.Errorf("update entity: %w", err)
	}
	return fromInternalEntity(stored), nil
}

// Delete removes an entity by ID.
func (s *EntityService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("entity_delete", start, err) }()

	events, err := s.svc.Delete(ctx, s.tenant, s.entityType, id)
	s.audit.Dispatch(ctx, events)
	if err != nil {
		return fmt.Errorf("delete entity: %w", err)
	}
	return nil
}

// BulkCreate ingests a batch with per-item outcomes. A non-nil error means
// the batch was rejected as a whole; otherwise inspect each ItemResult.
func (s *EntityService) BulkCreate(ctx context.Context, inputs []EntityInput) (results []ItemResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("entity_bulk_create", start, err) }()

	internal := make([]entityuc.CreateInput, len(inputs))
	for i, in := range inputs {
		internal[i] = toInternalInput(in)
	}

	items, events, err := s.svc.BulkCreate(ctx, s.tenant, s.entityType, internal)
	s.audit.Dispatch(ctx, events)
	if err != nil {
		return nil, fmt.Errorf("bulk create: %w", err)
	}

	results = make([]ItemResult, len(items))
	for i, it := range items {
		results[i] = ItemResult{ID: it.ID, Err: it.Err}
	}
	return results, nil
}

func toInternalInput(in EntityInput) entityuc.CreateInput {
	return entityuc.CreateInput{
		ID:          in.ID,
		Name:        in.Name,
		Description: in.Description,
		FileName:    in.FileName,
		FileType:    in.FileType,
		PreviewURL:  in.PreviewURL,
		FilePath:    in.FilePath,
		ContentText: in.ContentText,
		Metadata:    in.Metadata,
	}
}

func toInternalUpdate(in EntityUpdate) entityuc.UpdateInput {
	return entityuc.UpdateInput{
		Name:        in.Name,
		Description: in.Description,
		FileName:    in.FileName,
		FileType:    in.FileType,
		PreviewURL:  in.PreviewURL,
		FilePath:    in.FilePath,
		ContentText: in.ContentText,
		Metadata:    in.Metadata,
	}
}

func fromInternalEntity(e domain.Entity) Entity {
	var meta map[string]any
	if len(e.Metadata) > 0 {
		meta = make(map[string]any, len(e.Metadata))
		for k, v := range e.Metadata {
			meta[k] = v.Raw()
		}
	}
	return Entity{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		FileName:    e.FileName,
		FileType:    e.FileType,
		PreviewURL:  e.PreviewURL,
		FilePath:    e.FilePath,
		ContentText: e.ContentText,
		Metadata:    meta,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}
