package lodestone

import (
	"context"
	"time"
)

// Embedder is the text vectorization provider supplied by the caller.
type Embedder interface {
	Embed(ctx context.Context, text string) (Embedding, error)
}

// Embedding is the result of one embedding call.
type Embedding struct {
	Vector       []float32
	PromptTokens int
	TotalTokens  int
}

// Extractor turns a media reference into embeddable text.
// kind is one of "image", "pdf" or "video".
type Extractor interface {
	Extract(ctx context.Context, ref, kind string) (string, error)
}

// Tenant identifies an isolated data partition. Stack must be
// "prod", "staging" or "dev".
type Tenant struct {
	ClientName string
	AppName    string
	Stack      string
	AppURL     string
}

// Entity is a stored, searchable unit of content. The embedding vector is
// never exposed.
type Entity struct {
	ID          string
	Name        string
	Description string
	FileName    string
	FileType    string
	PreviewURL  string
	FilePath    string
	ContentText string
	Metadata    map[string]any
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EntityInput carries the caller-supplied fields of a new entity.
type EntityInput struct {
	ID          string
	Name        string
	Description string
	FileName    string
	FileType    string
	PreviewURL  string
	FilePath    string
	ContentText string
	Metadata    map[string]any
}

// EntityUpdate is a partial update. Nil pointers mean "leave unchanged";
// metadata keys are merged over the stored map.
type EntityUpdate struct {
	Name        *string
	Description *string
	FileName    *string
	FileType    *string
	PreviewURL  *string
	FilePath    *string
	ContentText *string
	Metadata    map[string]any
}

// ItemResult is the outcome of one item in a bulk operation.
type ItemResult struct {
	ID  string
	Err error
}

// OK reports whether the item was indexed.
func (r ItemResult) OK() bool { return r.Err == nil }

// SearchQuery describes one retrieval request.
type SearchQuery struct {
	Query     string
	QueryKind string // "" or "text" for plain text; "image", "pdf", "video" for media refs
	Filters   map[string]any
	TopK      int
	MinScore  *float64
}

// SearchHit is a single search result.
type SearchHit struct {
	ID          string
	Score       float64
	Name        string
	Description string
	FileName    string
	FileType    string
	PreviewURL  string
	FilePath    string
	ContentText string
	Metadata    map[string]any
}

// AuditEntry is one recorded operation, newest first in listings.
type AuditEntry struct {
	Timestamp   time.Time
	Kind        string
	Status      string
	EntityID    string
	Query       string
	ResultCount int
	Error       string
}
