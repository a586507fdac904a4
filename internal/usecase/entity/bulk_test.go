package entity

import (
	"context"
	"errors"
	"testing"

	"github.com/lodestone-search/lodestone/internal/domain"
)

func TestBulkCreateMixedOutcomes(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	var batch []*domain.Entity
	repo.bulkIndexFn = func(_ context.Context, _ string, entities []*domain.Entity) error {
		batch = entities
		return nil
	}

	inputs := []CreateInput{
		textInput("ok-1"),
		{ID: "bad-1", FileType: "image"}, // media without reference
		textInput("ok-2"),
	}

	results, events, err := svc.BulkCreate(context.Background(), testTenant(), "document", inputs)
	if err != nil {
		t.Fatalf("BulkCreate: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	if !results[0].OK() || !results[2].OK() {
		t.Fatalf("good items failed: %+v", results)
	}
	if results[1].OK() || !errors.Is(results[1].Err, domain.ErrValidation) {
		t.Fatalf("bad item = %+v", results[1])
	}

	if len(batch) != 2 {
		t.Fatalf("batch = %d entities, want 2", len(batch))
	}
	for _, e := range batch {
		if len(e.Embedding) != domain.VectorDim {
			t.Fatalf("entity %s missing embedding", e.ID)
		}
	}

	var succeeded, failed int
	for _, ev := range events {
		if ev.Kind != domain.EventEntityCreated {
			t.Fatalf("unexpected event kind %s", ev.Kind)
		}
		if ev.Status == domain.StatusSuccess {
			succeeded++
		} else {
			failed++
		}
	}
	if succeeded != 2 || failed != 1 {
		t.Fatalf("event outcomes = %d success / %d failure", succeeded, failed)
	}
}

func TestBulkCreateOversized(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	inputs := make([]CreateInput, MaxBatchSize+1)
	for i := range inputs {
		inputs[i] = textInput("ent")
	}

	_, _, err := svc.BulkCreate(context.Background(), testTenant(), "document", inputs)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestBulkCreateStoreFailureFailsBatch(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	storeErr := errors.New("pipeline refused")
	repo.bulkIndexFn = func(context.Context, string, []*domain.Entity) error { return storeErr }

	results, _, err := svc.BulkCreate(context.Background(), testTenant(), "document",
		[]CreateInput{textInput("a"), textInput("b")})
	if err != nil {
		t.Fatalf("BulkCreate: %v", err)
	}
	for _, r := range results {
		if !errors.Is(r.Err, storeErr) {
			t.Fatalf("item %s err = %v, want store error", r.ID, r.Err)
		}
	}
}

func TestBulkCreateEmbeddingFailureIsPerItem(t *testing.T) {
	svc, repo, emb, _ := newTestService(t)

	emb.embedFn = func(_ context.Context, text string) (domain.EmbeddingResult, error) {
		if emb.calls == 1 {
			return domain.EmbeddingResult{}, domain.ErrEmbeddingUpstream
		}
		return domain.EmbeddingResult{Embedding: testVector(domain.VectorDim)}, nil
	}

	var batch []*domain.Entity
	repo.bulkIndexFn = func(_ context.Context, _ string, entities []*domain.Entity) error {
		batch = entities
		return nil
	}

	results, _, err := svc.BulkCreate(context.Background(), testTenant(), "document",
		[]CreateInput{textInput("a"), textInput("b")})
	if err != nil {
		t.Fatalf("BulkCreate: %v", err)
	}
	if !errors.Is(results[0].Err, domain.ErrEmbeddingUpstream) {
		t.Fatalf("first item err = %v", results[0].Err)
	}
	if !results[1].OK() {
		t.Fatalf("second item err = %v", results[1].Err)
	}
	if len(batch) != 1 {
		t.Fatalf("batch = %d, want 1", len(batch))
	}
}
