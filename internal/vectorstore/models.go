package vectorstore

// Metadata keys every chunk record carries so retrieved fragments can be
// attributed back to the source that produced them.
const (
	MetaSourceID   = "source_id"
	MetaSourceType = "source_type"
	MetaTitle      = "title"
	MetaOrigin     = "origin"
	MetaChunkIndex = "chunk_index"
)

// Document is one embeddable unit to be stored as a chunk record.
type Document struct {
	// ID is the unique identifier for the record.
	ID string

	// Content is the text payload. It is embedded and stored verbatim.
	Content string

	// Metadata carries source attribution (MetaSourceID, MetaTitle, ...).
	Metadata map[string]interface{}
}

// SearchResult is one retrieved chunk record.
type SearchResult struct {
	// ID is the record identifier.
	ID string `json:"id"`

	// Content is the stored text payload.
	Content string `json:"content"`

	// Score is the similarity score (higher = more similar).
	Score float32 `json:"score"`

	// Metadata is the stored attribution metadata.
	Metadata map[string]interface{} `json:"metadata"`
}
