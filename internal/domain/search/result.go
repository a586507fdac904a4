package search

// Hit is a single search result projected to the safe shape: the embedding
// vector is never included.
type Hit struct {
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
