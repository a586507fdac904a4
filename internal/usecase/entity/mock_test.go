package entity

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/lodestone-search/lodestone/internal/domain"
)

// mockRepo implements Repository for tests.
type mockRepo struct {
	ensureIndexFn func(ctx context.Context, index string) (bool, error)
	indexFn       func(ctx context.Context, index string, e *domain.Entity) error
	bulkIndexFn   func(ctx context.Context, index string, entities []*domain.Entity) error
	getFn         func(ctx context.Context, index, id string) (domain.Entity, error)
	deleteFn      func(ctx context.Context, index, id string) error
}

func (m *mockRepo) EnsureIndex(ctx context.Context, index string) (bool, error) {
	if m.ensureIndexFn != nil {
		return m.ensureIndexFn(ctx, index)
	}
	return false, nil
}

func (m *mockRepo) Index(ctx context.Context, index string, e *domain.Entity) error {
	if m.indexFn != nil {
		return m.indexFn(ctx, index, e)
	}
	return nil
}

func (m *mockRepo) BulkIndex(ctx context.Context, index string, entities []*domain.Entity) error {
	if m.bulkIndexFn != nil {
		return m.bulkIndexFn(ctx, index, entities)
	}
	return nil
}

func (m *mockRepo) Get(ctx context.Context, index, id string) (domain.Entity, error) {
	if m.getFn != nil {
		return m.getFn(ctx, index, id)
	}
	return domain.Entity{}, domain.ErrNotFound
}

func (m *mockRepo) Delete(ctx context.Context, index, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, index, id)
	}
	return nil
}

// mockEmbedder implements Embedder for tests.
type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
	calls   int
	lastIn  string
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	m.lastIn = text
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: testVector(domain.VectorDim)}, nil
}

// mockExtractor implements Extractor for tests.
type mockExtractor struct {
	extractFn func(ctx context.Context, ref string, kind domain.MediaKind) (string, error)
	calls     int
}

func (m *mockExtractor) Extract(ctx context.Context, ref string, kind domain.MediaKind) (string, error) {
	m.calls++
	if m.extractFn != nil {
		return m.extractFn(ctx, ref, kind)
	}
	return "extracted text", nil
}

func newTestService(t *testing.T) (*Service, *mockRepo, *mockEmbedder, *mockExtractor) {
	t.Helper()
	repo := &mockRepo{}
	emb := &mockEmbedder{}
	ext := &mockExtractor{}
	svc := New(repo, emb, ext, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }
	return svc, repo, emb, ext
}

func testTenant() domain.Tenant {
	return domain.Tenant{ClientName: "Acme", AppName: "Portal", Stack: domain.StackProd}
}

func testVector(dim int) []float32 {
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = float32(i) * 0.001
	}
	return vec
}

func textInput(id string) CreateInput {
	return CreateInput{
		ID:          id,
		Name:        "Launch checklist",
		Description: "Steps for the March launch",
		FileType:    "text",
	}
}

func eventKinds(events []domain.Event) []domain.EventKind {
	kinds := make([]domain.EventKind, 0, len(events))
	for _, ev := range events {
		kinds = append(kinds, ev.Kind)
	}
	return kinds
}
