package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lodestone-search/lodestone/internal/domain"
	domsearch "github.com/lodestone-search/lodestone/internal/domain/search"
	entityuc "github.com/lodestone-search/lodestone/internal/usecase/entity"
	healthuc "github.com/lodestone-search/lodestone/internal/usecase/health"
	searchuc "github.com/lodestone-search/lodestone/internal/usecase/search"
)

// mockEntityService implements EntityService for tests.
type mockEntityService struct {
	createFn func(ctx context.Context, t domain.Tenant, entityType string, in entityuc.CreateInput) (domain.Entity, []domain.Event, error)
	getFn    func(ctx context.Context, t domain.Tenant, entityType, id string) (domain.Entity, error)
	updateFn func(ctx context.Context, t domain.Tenant, entityType, id string, in entityuc.UpdateInput) (domain.Entity, []domain.Event, error)
	deleteFn func(ctx context.Context, t domain.Tenant, entityType, id string) ([]domain.Event, error)
	bulkFn   func(ctx context.Context, t domain.Tenant, entityType string, inputs []entityuc.CreateInput) ([]entityuc.ItemResult, []domain.Event, error)
}

func (m *mockEntityService) Create(ctx context.Context, t domain.Tenant, entityType string, in entityuc.CreateInput) (domain.Entity, []domain.Event, error) {
	if m.createFn != nil {
		return m.createFn(ctx, t, entityType, in)
	}
	return domain.Entity{ID: in.ID}, nil, nil
}

func (m *mockEntityService) Get(ctx context.Context, t domain.Tenant, entityType, id string) (domain.Entity, error) {
	if m.getFn != nil {
		return m.getFn(ctx, t, entityType, id)
	}
	return domain.Entity{ID: id}, nil
}

func (m *mockEntityService) Update(ctx context.Context, t domain.Tenant, entityType, id string, in entityuc.UpdateInput) (domain.Entity, []domain.Event, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, t, entityType, id, in)
	}
	return domain.Entity{ID: id}, nil, nil
}

func (m *mockEntityService) Delete(ctx context.Context, t domain.Tenant, entityType, id string) ([]domain.Event, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, t, entityType, id)
	}
	return nil, nil
}

func (m *mockEntityService) BulkCreate(ctx context.Context, t domain.Tenant, entityType string, inputs []entityuc.CreateInput) ([]entityuc.ItemResult, []domain.Event, error) {
	if m.bulkFn != nil {
		return m.bulkFn(ctx, t, entityType, inputs)
	}
	return nil, nil, nil
}

// mockSearchService implements SearchService for tests.
type mockSearchService struct {
	searchFn func(ctx context.Context, t domain.Tenant, entityType string, p searchuc.Params) ([]domsearch.Hit, []domain.Event, error)
}

func (m *mockSearchService) Search(ctx context.Context, t domain.Tenant, entityType string, p searchuc.Params) ([]domsearch.Hit, []domain.Event, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, t, entityType, p)
	}
	return nil, nil, nil
}

// mockAuditService implements AuditService for tests.
type mockAuditService struct {
	dispatched []domain.Event
	recentFn   func(ctx context.Context, t domain.Tenant, entityType string, count int) ([]domain.Event, error)
}

func (m *mockAuditService) Dispatch(_ context.Context, events []domain.Event) {
	m.dispatched = append(m.dispatched, events...)
}

func (m *mockAuditService) Recent(ctx context.Context, t domain.Tenant, entityType string, count int) ([]domain.Event, error) {
	if m.recentFn != nil {
		return m.recentFn(ctx, t, entityType, count)
	}
	return nil, nil
}

// mockHealthService implements HealthService for tests.
type mockHealthService struct {
	report healthuc.Report
}

func (m *mockHealthService) Check(context.Context) healthuc.Report {
	if m.report.Status == "" {
		return healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{}}
	}
	return m.report
}

type testServer struct {
	router   *chi.Mux
	entities *mockEntityService
	search   *mockSearchService
	audit    *mockAuditService
	health   *mockHealthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		entities: &mockEntityService{},
		search:   &mockSearchService{},
		audit:    &mockAuditService{},
		health:   &mockHealthService{},
	}
	srv := NewServer(ts.entities, ts.search, ts.audit, ts.health, 100, zap.NewNop())
	ts.router = chi.NewRouter()
	srv.Register(ts.router)
	return ts
}

// do performs a request with tenant headers attached.
func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(headerClientName, "Acme")
	req.Header.Set(headerAppName, "Portal")
	req.Header.Set(headerStack, "prod")
	req.Header.Set(headerEntityType, "document")

	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)
	return rr
}

// doBare performs a request without tenant headers.
func (ts *testServer) doBare(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, http.NoBody)
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)
	return rr
}

func decodeJSON[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}
