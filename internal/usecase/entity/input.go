package entity

import (
	"fmt"
	"strings"

	"github.com/lodestone-search/lodestone/internal/domain"
)

// CreateInput carries the caller-supplied fields of a new entity. Embedding
// and timestamps are derived by the service, never accepted from the caller.
type CreateInput struct {
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

// UpdateInput carries a partial entity update. Nil pointers mean "leave
// unchanged"; metadata keys are merged over the stored map.
type UpdateInput struct {
	Name        *string
	Description *string
	FileName    *string
	FileType    *string
	PreviewURL  *string
	FilePath    *string
	ContentText *string
	Metadata    map[string]any
}

func (in *CreateInput) validate() error {
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("%w: entity id is required", domain.ErrValidation)
	}
	if domain.IsMedia(in.FileType) {
		if in.PreviewURL == "" && in.FilePath == "" {
			return fmt.Errorf("%w: %s entity requires a preview_url or file_path", domain.ErrValidation, in.FileType)
		}
		return nil
	}
	if in.Name == "" && in.Description == "" && in.ContentText == "" {
		return fmt.Errorf("%w: entity requires a name, description or content_text", domain.ErrValidation)
	}
	return nil
}

func (in *CreateInput) toEntity() (*domain.Entity, error) {
	meta, err := inferMetadata(in.Metadata)
	if err != nil {
		return nil, err
	}
	return &domain.Entity{
		ID:          in.ID,
		Name:        in.Name,
		Description: in.Description,
		FileName:    in.FileName,
		FileType:    in.FileType,
		PreviewURL:  in.PreviewURL,
		FilePath:    in.FilePath,
		ContentText: in.ContentText,
		Metadata:    meta,
	}, nil
}

func inferMetadata(raw map[string]any) (domain.Metadata, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	meta := make(domain.Metadata, len(raw))
	for k, v := range raw {
		mv, err := domain.InferMeta(v)
		if err != nil {
			return nil, fmt.Errorf("metadata field %q: %w", k, err)
		}
		meta[k] = mv
	}
	return meta, nil
}

// apply merges the update into a stored entity and reports whether any field
// feeding the embedding changed.
func (in *UpdateInput) apply(e *domain.Entity) (contentChanged bool, err error) {
	set := func(dst *string, src *string, embeddable bool) {
		if src != nil && *src != *dst {
			*dst = *src
			if embeddable {
				contentChanged = true
			}
		}
	}

	set(&e.Name, in.Name, true)
	set(&e.Description, in.Description, true)
	set(&e.ContentText, in.ContentText, true)
	set(&e.FileType, in.FileType, true)
	set(&e.PreviewURL, in.PreviewURL, domain.IsMedia(e.FileType))
	set(&e.FilePath, in.FilePath, domain.IsMedia(e.FileType))
	set(&e.FileName, in.FileName, false)

	if len(in.Metadata) > 0 {
		patch, err := inferMetadata(in.Metadata)
		if err != nil {
			return false, err
		}
		if e.Metadata == nil {
			e.Metadata = make(domain.Metadata, len(patch))
		}
		for k, v := range patch {
			e.Metadata[k] = v
		}
	}

	return contentChanged, nil
}
