package entity

import (
	"context"
	"fmt"

	"github.com/lodestone-search/lodestone/internal/domain"
)

// MaxBatchSize is the default limit on items per bulk request.
const MaxBatchSize = 100

// ItemResult reports the per-item outcome of a bulk ingestion.
type ItemResult struct {
	ID  string
	Err error
}

// OK reports whether the item was indexed.
func (r ItemResult) OK() bool { return r.Err == nil }

// BulkCreate ingests a batch of entities with per-item error reporting.
// Items are validated and embedded one by one; all items that survive the
// pipeline are written in a single pipelined store round trip, so a store
// failure fails them together while bad items never block good ones.
func (s *Service) BulkCreate(
	ctx context.Context, t domain.Tenant, entityType string, inputs []CreateInput,
) ([]ItemResult, []domain.Event, error) {
	index, err := domain.ResolveIndex(t, entityType)
	if err != nil {
		return nil, nil, err
	}

	results := make([]ItemResult, len(inputs))
	if len(inputs) > s.maxBatch {
		return nil, nil, fmt.Errorf("%w: batch size %d exceeds %d", domain.ErrValidation, len(inputs), s.maxBatch)
	}

	events, err := s.ensureIndex(ctx, t, entityType, index)
	if err != nil {
		return nil, events, err
	}

	now := s.now().UTC()
	valid := make([]*domain.Entity, 0, len(inputs))
	validIdx := make([]int, 0, len(inputs))

	for i := range inputs {
		in := &inputs[i]
		results[i].ID = in.ID

		e, err := s.prepareItem(ctx, in)
		if err != nil {
			results[i].Err = err
			events = append(events, domain.NewEvent(t, entityType, domain.EventEntityCreated, domain.StatusFailure).
				WithEntity(in.ID).WithError(err))
			continue
		}

		e.CreatedAt, e.UpdatedAt = now, now
		valid = append(valid, e)
		validIdx = append(validIdx, i)
	}

	if len(valid) > 0 {
		if err := s.repo.BulkIndex(ctx, index, valid); err != nil {
			for _, i := range validIdx {
				results[i].Err = err
				events = append(events, domain.NewEvent(t, entityType, domain.EventEntityCreated, domain.StatusFailure).
					WithEntity(results[i].ID).WithError(err))
			}
			return results, events, nil
		}
		for _, i := range validIdx {
			events = append(events, domain.NewEvent(t, entityType, domain.EventEntityCreated, domain.StatusSuccess).
				WithEntity(results[i].ID))
		}
	}

	return results, events, nil
}

func (s *Service) prepareItem(ctx context.Context, in *CreateInput) (*domain.Entity, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	e, err := in.toEntity()
	if err != nil {
		return nil, err
	}
	if err := s.embedEntity(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}
