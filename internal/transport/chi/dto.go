package chi

import (
	"time"

	"github.com/lodestone-search/lodestone/internal/domain"
	domsearch "github.com/lodestone-search/lodestone/internal/domain/search"
	entityuc "github.com/lodestone-search/lodestone/internal/usecase/entity"
)

// errorCode is the machine-readable error discriminator in error responses.
type errorCode string

const (
	codeBadRequest       errorCode = "bad_request"
	codeUnauthorized     errorCode = "unauthorized"
	codeValidationFailed errorCode = "validation_failed"
	codeEntityNotFound   errorCode = "entity_not_found"
	codePayloadTooLarge  errorCode = "payload_too_large"
	codeInvalidReference errorCode = "invalid_reference"
	codeUpstreamFailed   errorCode = "upstream_failed"
	codeInternalError    errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type entityRequest struct {
	ID          string         `json:"id"`
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	FileName    string         `json:"file_name,omitempty"`
	FileType    string         `json:"file_type,omitempty"`
	PreviewURL  string         `json:"preview_url,omitempty"`
	FilePath    string         `json:"file_path,omitempty"`
	ContentText string         `json:"content_text,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func (r *entityRequest) toCreateInput() entityuc.CreateInput {
	return entityuc.CreateInput{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		FileName:    r.FileName,
		FileType:    r.FileType,
		PreviewURL:  r.PreviewURL,
		FilePath:    r.FilePath,
		ContentText: r.ContentText,
		Metadata:    r.Metadata,
	}
}

type entityUpdateRequest struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	FileName    *string        `json:"file_name"`
	FileType    *string        `json:"file_type"`
	PreviewURL  *string        `json:"preview_url"`
	FilePath    *string        `json:"file_path"`
	ContentText *string        `json:"content_text"`
	Metadata    map[string]any `json:"metadata"`
}

func (r *entityUpdateRequest) toUpdateInput() entityuc.UpdateInput {
	return entityuc.UpdateInput{
		Name:        r.Name,
		Description: r.Description,
		FileName:    r.FileName,
		FileType:    r.FileType,
		PreviewURL:  r.PreviewURL,
		FilePath:    r.FilePath,
		ContentText: r.ContentText,
		Metadata:    r.Metadata,
	}
}

// entityResponse is the client-facing projection; it never carries the
// stored embedding.
type entityResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	FileName    string         `json:"file_name,omitempty"`
	FileType    string         `json:"file_type,omitempty"`
	PreviewURL  string         `json:"preview_url,omitempty"`
	FilePath    string         `json:"file_path,omitempty"`
	ContentText string         `json:"content_text,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func entityToResponse(e domain.Entity) entityResponse {
	resp := entityResponse{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		FileName:    e.FileName,
		FileType:    e.FileType,
		PreviewURL:  e.PreviewURL,
		FilePath:    e.FilePath,
		ContentText: e.ContentText,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	if len(e.Metadata) > 0 {
		resp.Metadata = make(map[string]any, len(e.Metadata))
		for k, v := range e.Metadata {
			resp.Metadata[k] = v.Raw()
		}
	}
	return resp
}

type bulkRequest struct {
	Entities []entityRequest `json:"entities"`
}

type bulkItemResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"` // "ok" | "error"
	Error  string `json:"error,omitempty"`
}

type bulkResponse struct {
	Indexed int                `json:"indexed"`
	Failed  int                `json:"failed"`
	Results []bulkItemResponse `json:"results"`
}

type searchRequest struct {
	Query     string         `json:"query"`
	QueryKind string         `json:"query_kind,omitempty"`
	Filters   map[string]any `json:"filters,omitempty"`
	TopK      int            `json:"top_k,omitempty"`
	MinScore  *float64       `json:"min_score,omitempty"`
}

type searchHitResponse struct {
	ID          string         `json:"id"`
	Score       float64        `json:"score"`
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	FileName    string         `json:"file_name,omitempty"`
	FileType    string         `json:"file_type,omitempty"`
	PreviewURL  string         `json:"preview_url,omitempty"`
	FilePath    string         `json:"file_path,omitempty"`
	ContentText string         `json:"content_text,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type searchResponse struct {
	Total   int                 `json:"total"`
	Results []searchHitResponse `json:"results"`
}

func searchToResponse(hits []domsearch.Hit) searchResponse {
	results := make([]searchHitResponse, 0, len(hits))
	for _, h := range hits {
		results = append(results, searchHitResponse{
			ID:          h.ID,
			Score:       h.Score,
			Name:        h.Name,
			Description: h.Description,
			FileName:    h.FileName,
			FileType:    h.FileType,
			PreviewURL:  h.PreviewURL,
			FilePath:    h.FilePath,
			ContentText: h.ContentText,
			Metadata:    h.Metadata,
		})
	}
	return searchResponse{Total: len(results), Results: results}
}

type logEntryResponse struct {
	Timestamp   time.Time `json:"timestamp"`
	Kind        string    `json:"kind"`
	Status      string    `json:"status"`
	EntityID    string    `json:"entity_id,omitempty"`
	Query       string    `json:"query,omitempty"`
	ResultCount int       `json:"result_count,omitempty"`
	Error       string    `json:"error,omitempty"`
}

type logsResponse struct {
	Logs []logEntryResponse `json:"logs"`
}

func logsToResponse(events []domain.Event) logsResponse {
	logs := make([]logEntryResponse, 0, len(events))
	for _, ev := range events {
		logs = append(logs, logEntryResponse{
			Timestamp:   ev.Timestamp,
			Kind:        string(ev.Kind),
			Status:      string(ev.Status),
			EntityID:    ev.EntityID,
			Query:       ev.Query,
			ResultCount: ev.ResultCount,
			Error:       ev.Error,
		})
	}
	return logsResponse{Logs: logs}
}
