package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lodestone-search/lodestone/internal/db"
	"github.com/lodestone-search/lodestone/internal/db/redis"
	"github.com/lodestone-search/lodestone/internal/domain"
)

// The sink must accept the rueidis-backed store as-is.
var _ store = (*redis.Store)(nil)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	streamAddFn      func(ctx context.Context, stream string, fields map[string]string, maxLen int64) error
	streamRevRangeFn func(ctx context.Context, stream string, count int64) ([]db.StreamEntry, error)
}

func (m *mockStore) StreamAdd(ctx context.Context, stream string, fields map[string]string, maxLen int64) error {
	if m.streamAddFn != nil {
		return m.streamAddFn(ctx, stream, fields, maxLen)
	}
	return nil
}

func (m *mockStore) StreamRevRange(ctx context.Context, stream string, count int64) ([]db.StreamEntry, error) {
	if m.streamRevRangeFn != nil {
		return m.streamRevRangeFn(ctx, stream, count)
	}
	return nil, nil
}

func testTenant() domain.Tenant {
	return domain.Tenant{ClientName: "Acme", AppName: "Portal", Stack: domain.StackProd}
}

func TestAppendWritesStream(t *testing.T) {
	ms := &mockStore{}
	sink := New(ms)

	var gotStream string
	var gotFields map[string]string
	var gotMaxLen int64
	ms.streamAddFn = func(_ context.Context, stream string, fields map[string]string, maxLen int64) error {
		gotStream, gotFields, gotMaxLen = stream, fields, maxLen
		return nil
	}

	ev := domain.NewEvent(testTenant(), "document", domain.EventEntityCreated, domain.StatusSuccess).
		WithEntity("ent-1")
	if err := sink.Append(context.Background(), ev); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if gotStream != "lodestone:audit:acme_portal_prod-document" {
		t.Fatalf("stream = %q", gotStream)
	}
	if gotMaxLen != DefaultMaxLen {
		t.Fatalf("maxLen = %d, want %d", gotMaxLen, DefaultMaxLen)
	}
	if gotFields["kind"] != "entity_created" || gotFields["status"] != "success" {
		t.Fatalf("fields = %v", gotFields)
	}
	if gotFields["entity_id"] != "ent-1" {
		t.Fatalf("entity_id = %q", gotFields["entity_id"])
	}
	if _, ok := gotFields["query"]; ok {
		t.Fatal("query field must be omitted for non-search events")
	}
}

func TestAppendInvalidTenant(t *testing.T) {
	sink := New(&mockStore{})

	ev := domain.NewEvent(domain.Tenant{}, "document", domain.EventSearch, domain.StatusFailure)
	if err := sink.Append(context.Background(), ev); err == nil {
		t.Fatal("expected error for unresolvable tenant")
	}
}

func TestAppendStoreFailure(t *testing.T) {
	ms := &mockStore{streamAddFn: func(context.Context, string, map[string]string, int64) error {
		return errors.New("stream unavailable")
	}}
	sink := New(ms)

	ev := domain.NewEvent(testTenant(), "document", domain.EventSearch, domain.StatusSuccess)
	if err := sink.Append(context.Background(), ev); err == nil {
		t.Fatal("expected error from store")
	}
}

func TestRecentRoundTrip(t *testing.T) {
	ms := &mockStore{}
	sink := New(ms)

	ts := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	src := domain.Event{
		Timestamp:   ts,
		Tenant:      testTenant(),
		EntityType:  "document",
		Kind:        domain.EventSearch,
		Status:      domain.StatusSuccess,
		Query:       "rollback plan",
		ResultCount: 7,
	}

	ms.streamRevRangeFn = func(_ context.Context, stream string, count int64) ([]db.StreamEntry, error) {
		if stream != "lodestone:audit:acme_portal_prod-document" {
			t.Fatalf("stream = %q", stream)
		}
		if count != 50 {
			t.Fatalf("count = %d, want 50", count)
		}
		return []db.StreamEntry{{ID: "2-0", Fields: eventToFields(src)}}, nil
	}

	events, err := sink.Recent(context.Background(), testTenant(), "document", 50)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}

	got := events[0]
	if !got.Timestamp.Equal(ts) {
		t.Fatalf("timestamp = %v, want %v", got.Timestamp, ts)
	}
	if got.Kind != domain.EventSearch || got.Query != "rollback plan" || got.ResultCount != 7 {
		t.Fatalf("event mismatch: %+v", got)
	}
	if got.Tenant.ClientName != "Acme" || got.Tenant.Stack != domain.StackProd {
		t.Fatalf("tenant mismatch: %+v", got.Tenant)
	}
}
