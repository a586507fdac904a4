// Package chi implements the HTTP transport: routing, tenant header parsing,
// bearer authentication and domain error mapping.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lodestone-search/lodestone/internal/domain"
	domsearch "github.com/lodestone-search/lodestone/internal/domain/search"
	entityuc "github.com/lodestone-search/lodestone/internal/usecase/entity"
	healthuc "github.com/lodestone-search/lodestone/internal/usecase/health"
	searchuc "github.com/lodestone-search/lodestone/internal/usecase/search"
)

// EntityService is the entity lifecycle contract consumed by the transport.
type EntityService interface {
	Create(ctx context.Context, t domain.Tenant, entityType string, in entityuc.CreateInput) (domain.Entity, []domain.Event, error)
	Get(ctx context.Context, t domain.Tenant, entityType, id string) (domain.Entity, error)
	Update(ctx context.Context, t domain.Tenant, entityType, id string, in entityuc.UpdateInput) (domain.Entity, []domain.Event, error)
	Delete(ctx context.Context, t domain.Tenant, entityType, id string) ([]domain.Event, error)
	BulkCreate(ctx context.Context, t domain.Tenant, entityType string, inputs []entityuc.CreateInput) ([]entityuc.ItemResult, []domain.Event, error)
}

// SearchService is the retrieval contract consumed by the transport.
type SearchService interface {
	Search(ctx context.Context, t domain.Tenant, entityType string, p searchuc.Params) ([]domsearch.Hit, []domain.Event, error)
}

// AuditService delivers audit events and reads the activity log.
type AuditService interface {
	Dispatch(ctx context.Context, events []domain.Event)
	Recent(ctx context.Context, t domain.Tenant, entityType string, count int) ([]domain.Event, error)
}

// HealthService aggregates component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// Server is the HTTP API server.
type Server struct {
	entities    EntityService
	search      SearchService
	audit       AuditService
	health      HealthService
	logger      *zap.Logger
	logPageSize int
}

// NewServer creates an HTTP API server.
func NewServer(
	entities EntityService,
	search SearchService,
	audit AuditService,
	health HealthService,
	logPageSize int,
	logger *zap.Logger,
) *Server {
	if logPageSize <= 0 {
		logPageSize = 100
	}
	return &Server{
		entities:    entities,
		search:      search,
		audit:       audit,
		health:      health,
		logger:      logger,
		logPageSize: logPageSize,
	}
}

// Register mounts all routes on the given router.
func (s *Server) Register(r chi.Router) {
	r.Post("/entity", s.handleCreateEntity)
	r.Get("/entity/{id}", s.handleGetEntity)
	r.Put("/entity/{id}", s.handleUpdateEntity)
	r.Delete("/entity/{id}", s.handleDeleteEntity)
	r.Post("/entity/bulk", s.handleBulkCreate)
	r.Post("/search", s.handleSearch)
	r.Get("/logs", s.handleLogs)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

func (s *Server) handleCreateEntity(w http.ResponseWriter, r *http.Request) {
	t, entityType, err := tenantFromRequest(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	var req entityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	e, events, err := s.entities.Create(r.Context(), t, entityType, req.toCreateInput())
	s.audit.Dispatch(r.Context(), events)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, entityToResponse(e))
}

func (s *Server) handleGetEntity(w http.ResponseWriter, r *http.Request) {
	t, entityType, err := tenantFromRequest(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	e, err := s.entities.Get(r.Context(), t, entityType, chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entityToResponse(e))
}

func (s *Server) handleUpdateEntity(w http.ResponseWriter, r *http.Request) {
	t, entityType, err := tenantFromRequest(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	var req entityUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	e, events, err := s.entities.Update(r.Context(), t, entityType, chi.URLParam(r, "id"), req.toUpdateInput())
	s.audit.Dispatch(r.Context(), events)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entityToResponse(e))
}

func (s *Server) handleDeleteEntity(w http.ResponseWriter, r *http.Request) {
	t, entityType, err := tenantFromRequest(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	events, err := s.entities.Delete(r.Context(), t, entityType, chi.URLParam(r, "id"))
	s.audit.Dispatch(r.Context(), events)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBulkCreate(w http.ResponseWriter, r *http.Request) {
	t, entityType, err := tenantFromRequest(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Entities) == 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "entities list is empty")
		return
	}

	inputs := make([]entityuc.CreateInput, 0, len(req.Entities))
	for i := range req.Entities {
		inputs = append(inputs, req.Entities[i].toCreateInput())
	}

	results, events, err := s.entities.BulkCreate(r.Context(), t, entityType, inputs)
	s.audit.Dispatch(r.Context(), events)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := bulkResponse{Results: make([]bulkItemResponse, 0, len(results))}
	for _, res := range results {
		item := bulkItemResponse{ID: res.ID, Status: "ok"}
		if res.OK() {
			resp.Indexed++
		} else {
			resp.Failed++
			item.Status = "error"
			item.Error = res.Err.Error()
		}
		resp.Results = append(resp.Results, item)
	}

	status := http.StatusOK
	if resp.Failed > 0 {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	t, entityType, err := tenantFromRequest(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	hits, events, err := s.search.Search(r.Context(), t, entityType, searchuc.Params{
		Query:     req.Query,
		QueryKind: req.QueryKind,
		Filters:   req.Filters,
		TopK:      req.TopK,
		MinScore:  req.MinScore,
	})
	s.audit.Dispatch(r.Context(), events)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchToResponse(hits))
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	t, entityType, err := tenantFromRequest(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	count := s.logPageSize
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "limit must be a positive integer")
			return
		}
		if n < count {
			count = n
		}
	}

	events, err := s.audit.Recent(r.Context(), t, entityType, count)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, logsToResponse(events))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// statusMapping orders sentinel checks from most to least specific.
var statusMapping = []struct {
	sentinel error
	status   int
	code     errorCode
}{
	{domain.ErrNotFound, http.StatusNotFound, codeEntityNotFound},
	{domain.ErrPayloadTooLarge, http.StatusUnprocessableEntity, codePayloadTooLarge},
	{domain.ErrInvalidReference, http.StatusUnprocessableEntity, codeInvalidReference},
	{domain.ErrValidation, http.StatusBadRequest, codeValidationFailed},
	{domain.ErrEmbeddingUpstream, http.StatusBadGateway, codeUpstreamFailed},
	{domain.ErrEmbeddingShape, http.StatusBadGateway, codeUpstreamFailed},
	{domain.ErrExtractionEmpty, http.StatusBadGateway, codeUpstreamFailed},
	{domain.ErrIndexStore, http.StatusInternalServerError, codeInternalError},
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, m := range statusMapping {
		if errors.Is(err, m.sentinel) {
			writeError(w, m.status, m.code, err.Error())
			return
		}
	}

	s.logger.Error("Unhandled domain error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
