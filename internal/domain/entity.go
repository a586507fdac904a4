package domain

import (
	"fmt"
	"time"
)

// VectorDim is the embedding dimension every index is created with. A document
// whose embedding length differs must never reach the index store.
const VectorDim = 1024

// MediaKind is the declared kind of a file-backed entity.
type MediaKind string

const (
	// MediaImage is an image reference, described via the vision capability.
	MediaImage MediaKind = "image"
	// MediaPDF is a document reference, summarized via the text capability.
	MediaPDF MediaKind = "pdf"
	// MediaVideo is a video reference, summarized via the text capability.
	MediaVideo MediaKind = "video"
)

// IsMedia reports whether the file type routes through media-to-text extraction.
func IsMedia(fileType string) bool {
	switch MediaKind(fileType) {
	case MediaImage, MediaPDF, MediaVideo:
		return true
	}
	return false
}

// Entity is a stored, searchable unit of content with an associated embedding.
type Entity struct {
	ID          string
	Name        string
	Description string
	FileName    string
	FileType    string
	PreviewURL  string
	FilePath    string
	ContentText string
	Metadata    Metadata
	Embedding   []float32 // never projected into client responses
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MediaReference returns the reference used for extraction: the preview URL
// when present, otherwise the file path.
func (e Entity) MediaReference() string {
	if e.PreviewURL != "" {
		return e.PreviewURL
	}
	return e.FilePath
}

// Metadata is an open mapping of caller-supplied fields, each value a tagged
// union inferred once at ingestion.
type Metadata map[string]MetaValue

// MetaKind discriminates metadata value types.
type MetaKind int

const (
	// MetaString is a scalar string value.
	MetaString MetaKind = iota
	// MetaNumber is a scalar numeric value.
	MetaNumber
	// MetaBool is a scalar boolean value.
	MetaBool
	// MetaStrings is a list of string values.
	MetaStrings
)

// MetaValue is a single metadata value with its inferred kind.
type MetaValue struct {
	Kind    MetaKind
	Str     string
	Num     float64
	Bool    bool
	Strings []string
}

// InferMeta classifies a decoded JSON value into a MetaValue. Nested objects
// and mixed-type arrays are rejected: metadata values are scalars or string
// lists only.
func InferMeta(v any) (MetaValue, error) {
	switch val := v.(type) {
	case string:
		return MetaValue{Kind: MetaString, Str: val}, nil
	case float64:
		return MetaValue{Kind: MetaNumber, Num: val}, nil
	case int:
		return MetaValue{Kind: MetaNumber, Num: float64(val)}, nil
	case bool:
		return MetaValue{Kind: MetaBool, Bool: val}, nil
	case []string:
		return MetaValue{Kind: MetaStrings, Strings: val}, nil
	case []any:
		items := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return MetaValue{}, fmt.Errorf("%w: metadata arrays may contain only strings", ErrValidation)
			}
			items = append(items, s)
		}
		return MetaValue{Kind: MetaStrings, Strings: items}, nil
	default:
		return MetaValue{}, fmt.Errorf("%w: unsupported metadata value type %T", ErrValidation, v)
	}
}

// Raw returns the metadata value as its natural Go representation.
func (m MetaValue) Raw() any {
	switch m.Kind {
	case MetaNumber:
		return m.Num
	case MetaBool:
		return m.Bool
	case MetaStrings:
		return m.Strings
	default:
		return m.Str
	}
}
