package embedding

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/lodestone-search/lodestone/internal/domain"
)

type mockEmbedder struct {
	embedFn  func(ctx context.Context, text string) (domain.EmbeddingResult, error)
	healthFn func(ctx context.Context) error
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1}}, nil
}

func (m *mockEmbedder) HealthCheck(ctx context.Context) error {
	if m.healthFn != nil {
		return m.healthFn(ctx)
	}
	return nil
}

// plainEmbedder has no HealthCheck method.
type plainEmbedder struct{}

func (plainEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, nil
}

func TestEmbedPassthrough(t *testing.T) {
	inner := &mockEmbedder{
		embedFn: func(_ context.Context, text string) (domain.EmbeddingResult, error) {
			if text != "hello" {
				t.Fatalf("text = %q", text)
			}
			return domain.EmbeddingResult{Embedding: []float32{1, 2}, TotalTokens: 5}, nil
		},
	}
	emb := NewInstrumentedEmbedder(inner, "openai", "test-model", zap.NewNop())

	got, err := emb.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(got.Embedding) != 2 || got.TotalTokens != 5 {
		t.Fatalf("result = %+v", got)
	}
}

func TestEmbedWrapsInnerError(t *testing.T) {
	inner := &mockEmbedder{
		embedFn: func(context.Context, string) (domain.EmbeddingResult, error) {
			return domain.EmbeddingResult{}, domain.ErrEmbeddingUpstream
		},
	}
	emb := NewInstrumentedEmbedder(inner, "openai", "test-model", zap.NewNop())

	_, err := emb.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingUpstream) {
		t.Fatalf("err = %v, want ErrEmbeddingUpstream", err)
	}
}

func TestHealthCheckDelegates(t *testing.T) {
	wantErr := errors.New("provider down")
	inner := &mockEmbedder{
		healthFn: func(context.Context) error { return wantErr },
	}
	emb := NewInstrumentedEmbedder(inner, "openai", "test-model", zap.NewNop())

	if err := emb.HealthCheck(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

func TestHealthCheckSkipsUnsupportedInner(t *testing.T) {
	emb := NewInstrumentedEmbedder(plainEmbedder{}, "openai", "test-model", zap.NewNop())

	if err := emb.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}
