package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lodestone-search/lodestone/internal/domain"
)

// jsonDoc is the stored JSON shape. Timestamps are epoch milliseconds so the
// index can range-filter them as NUMERIC fields.
type jsonDoc struct {
	ID          string         `json:"id"`
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	FileName    string         `json:"file_name,omitempty"`
	FileType    string         `json:"file_type,omitempty"`
	PreviewURL  string         `json:"preview_url,omitempty"`
	FilePath    string         `json:"file_path,omitempty"`
	ContentText string         `json:"content_text,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Embedding   []float32      `json:"embedding"`
	CreatedAt   int64          `json:"created_at"`
	UpdatedAt   int64          `json:"updated_at"`
}

func buildJSONDoc(e *domain.Entity) jsonDoc {
	doc := jsonDoc{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		FileName:    e.FileName,
		FileType:    e.FileType,
		PreviewURL:  e.PreviewURL,
		FilePath:    e.FilePath,
		ContentText: e.ContentText,
		Embedding:   e.Embedding,
		CreatedAt:   e.CreatedAt.UnixMilli(),
		UpdatedAt:   e.UpdatedAt.UnixMilli(),
	}
	if len(e.Metadata) > 0 {
		doc.Metadata = make(map[string]any, len(e.Metadata))
		for k, v := range e.Metadata {
			doc.Metadata[k] = v.Raw()
		}
	}
	return doc
}

// parseJSONGetResult decodes a JSON.GET $ response, which wraps the document
// in a one-element array.
func parseJSONGetResult(id string, raw []byte) (domain.Entity, error) {
	var docs []jsonDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return domain.Entity{}, fmt.Errorf("unmarshal entity %s: %w", id, err)
	}
	if len(docs) == 0 {
		return domain.Entity{}, fmt.Errorf("%w: entity %s", domain.ErrNotFound, id)
	}
	return entityFromDoc(id, docs[0])
}

func entityFromDoc(id string, doc jsonDoc) (domain.Entity, error) {
	e := domain.Entity{
		ID:          doc.ID,
		Name:        doc.Name,
		Description: doc.Description,
		FileName:    doc.FileName,
		FileType:    doc.FileType,
		PreviewURL:  doc.PreviewURL,
		FilePath:    doc.FilePath,
		ContentText: doc.ContentText,
		Embedding:   doc.Embedding,
		CreatedAt:   time.UnixMilli(doc.CreatedAt).UTC(),
		UpdatedAt:   time.UnixMilli(doc.UpdatedAt).UTC(),
	}
	if e.ID == "" {
		e.ID = id
	}
	if len(doc.Metadata) > 0 {
		e.Metadata = make(domain.Metadata, len(doc.Metadata))
		for k, v := range doc.Metadata {
			mv, err := domain.InferMeta(v)
			if err != nil {
				return domain.Entity{}, fmt.Errorf("metadata field %q: %w", k, err)
			}
			e.Metadata[k] = mv
		}
	}
	return e, nil
}
