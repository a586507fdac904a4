package entity

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lodestone-search/lodestone/internal/domain"
)

func TestCreateTextEntity(t *testing.T) {
	svc, repo, emb, ext := newTestService(t)

	var gotIndex string
	var stored *domain.Entity
	repo.indexFn = func(_ context.Context, index string, e *domain.Entity) error {
		gotIndex, stored = index, e
		return nil
	}

	e, events, err := svc.Create(context.Background(), testTenant(), "document", textInput("ent-1"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if gotIndex != "acme_portal_prod-document" {
		t.Fatalf("index = %q", gotIndex)
	}
	if len(stored.Embedding) != domain.VectorDim {
		t.Fatalf("embedding length = %d", len(stored.Embedding))
	}
	if !strings.Contains(emb.lastIn, "Launch checklist") || !strings.Contains(emb.lastIn, "March launch") {
		t.Fatalf("embed input = %q", emb.lastIn)
	}
	if ext.calls != 0 {
		t.Fatal("text entity must not hit the extractor")
	}
	if e.CreatedAt.IsZero() || !e.CreatedAt.Equal(e.UpdatedAt) {
		t.Fatalf("timestamps = %v / %v", e.CreatedAt, e.UpdatedAt)
	}

	kinds := eventKinds(events)
	if len(kinds) != 1 || kinds[0] != domain.EventEntityCreated {
		t.Fatalf("events = %v", kinds)
	}
	if events[0].Status != domain.StatusSuccess {
		t.Fatalf("status = %s", events[0].Status)
	}
}

func TestCreateMediaEntityExtractsFirst(t *testing.T) {
	svc, repo, emb, ext := newTestService(t)

	ext.extractFn = func(_ context.Context, ref string, kind domain.MediaKind) (string, error) {
		if ref != "https://img.example.com/whale.jpg" || kind != domain.MediaImage {
			t.Fatalf("extract args = (%q, %q)", ref, kind)
		}
		return "a surfaced whale", nil
	}

	var stored *domain.Entity
	repo.indexFn = func(_ context.Context, _ string, e *domain.Entity) error {
		stored = e
		return nil
	}

	in := CreateInput{ID: "img-1", FileType: "image", PreviewURL: "https://img.example.com/whale.jpg"}
	if _, _, err := svc.Create(context.Background(), testTenant(), "asset", in); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if stored.ContentText != "a surfaced whale" {
		t.Fatalf("content_text = %q", stored.ContentText)
	}
	if !strings.Contains(emb.lastIn, "a surfaced whale") {
		t.Fatalf("embed input = %q", emb.lastIn)
	}
}

func TestCreateFirstWriteProvisionsIndex(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	repo.ensureIndexFn = func(context.Context, string) (bool, error) { return true, nil }

	_, events, err := svc.Create(context.Background(), testTenant(), "document", textInput("ent-1"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	kinds := eventKinds(events)
	if len(kinds) != 2 || kinds[0] != domain.EventIndexCreated || kinds[1] != domain.EventEntityCreated {
		t.Fatalf("events = %v", kinds)
	}
}

func TestCreateEmbeddingFailureSkipsWrite(t *testing.T) {
	svc, repo, emb, _ := newTestService(t)

	emb.embedFn = func(context.Context, string) (domain.EmbeddingResult, error) {
		return domain.EmbeddingResult{}, domain.ErrEmbeddingUpstream
	}
	repo.indexFn = func(context.Context, string, *domain.Entity) error {
		t.Fatal("index write must not happen after an embedding failure")
		return nil
	}

	_, events, err := svc.Create(context.Background(), testTenant(), "document", textInput("ent-1"))
	if !errors.Is(err, domain.ErrEmbeddingUpstream) {
		t.Fatalf("err = %v, want ErrEmbeddingUpstream", err)
	}

	kinds := eventKinds(events)
	if len(kinds) != 2 || kinds[0] != domain.EventEmbeddingFailure || kinds[1] != domain.EventEntityCreated {
		t.Fatalf("events = %v", kinds)
	}
	if events[1].Status != domain.StatusFailure {
		t.Fatalf("status = %s", events[1].Status)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	cases := []struct {
		name string
		in   CreateInput
	}{
		{"missing id", CreateInput{FileType: "text", Name: "x"}},
		{"media without reference", CreateInput{ID: "a", FileType: "image"}},
		{"text without content", CreateInput{ID: "a", FileType: "text"}},
		{"nested metadata", CreateInput{
			ID: "a", FileType: "text", Name: "x",
			Metadata: map[string]any{"nested": map[string]any{"k": "v"}},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Create(context.Background(), testTenant(), "document", tc.in)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestUpdateMetadataOnlyKeepsEmbedding(t *testing.T) {
	svc, repo, emb, _ := newTestService(t)

	existing := domain.Entity{
		ID: "ent-1", Name: "Launch checklist", FileType: "text",
		Embedding: testVector(domain.VectorDim),
	}
	repo.getFn = func(context.Context, string, string) (domain.Entity, error) { return existing, nil }

	var stored *domain.Entity
	repo.indexFn = func(_ context.Context, _ string, e *domain.Entity) error {
		stored = e
		return nil
	}

	in := UpdateInput{Metadata: map[string]any{"author": "maria"}}
	got, events, err := svc.Update(context.Background(), testTenant(), "document", "ent-1", in)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if emb.calls != 0 {
		t.Fatalf("embed calls = %d, want 0 for metadata-only update", emb.calls)
	}
	if len(stored.Embedding) != domain.VectorDim {
		t.Fatal("stored embedding must be preserved")
	}
	if got.Metadata["author"].Str != "maria" {
		t.Fatalf("metadata = %+v", got.Metadata)
	}
	if kinds := eventKinds(events); len(kinds) != 1 || kinds[0] != domain.EventEntityUpdated {
		t.Fatalf("events = %v", kinds)
	}
}

func TestUpdateContentChangeReembeds(t *testing.T) {
	svc, repo, emb, _ := newTestService(t)

	repo.getFn = func(context.Context, string, string) (domain.Entity, error) {
		return domain.Entity{ID: "ent-1", Name: "Old name", FileType: "text", Embedding: []float32{1}}, nil
	}
	repo.indexFn = func(context.Context, string, *domain.Entity) error { return nil }

	name := "New name"
	if _, _, err := svc.Update(context.Background(), testTenant(), "document", "ent-1", UpdateInput{Name: &name}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if emb.calls != 1 {
		t.Fatalf("embed calls = %d, want 1", emb.calls)
	}
	if !strings.Contains(emb.lastIn, "New name") {
		t.Fatalf("embed input = %q", emb.lastIn)
	}
}

func TestUpdateNotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	name := "x"
	_, _, err := svc.Update(context.Background(), testTenant(), "document", "missing", UpdateInput{Name: &name})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteEmitsEvent(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	var deletedID string
	repo.deleteFn = func(_ context.Context, _ string, id string) error {
		deletedID = id
		return nil
	}

	events, err := svc.Delete(context.Background(), testTenant(), "document", "ent-1")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deletedID != "ent-1" {
		t.Fatalf("deleted id = %q", deletedID)
	}
	if len(events) != 1 || events[0].Kind != domain.EventEntityDeleted || events[0].Status != domain.StatusSuccess {
		t.Fatalf("events = %+v", events)
	}
}

func TestDeleteNotFoundEmitsFailure(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	repo.deleteFn = func(context.Context, string, string) error { return domain.ErrNotFound }

	events, err := svc.Delete(context.Background(), testTenant(), "document", "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if len(events) != 1 || events[0].Status != domain.StatusFailure {
		t.Fatalf("events = %+v", events)
	}
}

func TestCreateInvalidTenant(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, _, err := svc.Create(context.Background(), domain.Tenant{}, "document", textInput("ent-1"))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}
