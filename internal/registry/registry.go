package registry

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSourceNotFound is returned when a source id is not in the registry.
var ErrSourceNotFound = errors.New("source not found")

// ExcerptLimit is the maximum number of runes kept in a source excerpt.
// Longer content is truncated and marked with ExcerptEllipsis.
const ExcerptLimit = 200

// ExcerptEllipsis marks a truncated excerpt.
const ExcerptEllipsis = "..."

// SourceType identifies how a source entered the knowledge base.
type SourceType string

const (
	SourceTypePDF  SourceType = "pdf"
	SourceTypeText SourceType = "text"
	SourceTypeURL  SourceType = "url"
)

// Valid reports whether t is a known source type.
func (t SourceType) Valid() bool {
	switch t {
	case SourceTypePDF, SourceTypeText, SourceTypeURL:
		return true
	}
	return false
}

// Source is one ingested document tracked by the registry.
type Source struct {
	// ID is unique for the lifetime of the process.
	ID string `json:"id"`

	// Type is the kind of source: pdf, text or url.
	Type SourceType `json:"type"`

	// Title is the human-readable label (filename, user title, page title).
	Title string `json:"title"`

	// Origin is where the content came from: the URL for url sources, the
	// uploaded filename for pdf sources.
	Origin string `json:"origin,omitempty"`

	// Excerpt is a bounded preview of the ingested text, used for display
	// only, never for retrieval.
	Excerpt string `json:"excerpt"`

	// IngestedAt is when the source was added.
	IngestedAt time.Time `json:"ingestedAt"`
}

// NewSource builds a Source with a fresh id, a truncated excerpt and the
// current timestamp. The content itself is not retained.
func NewSource(typ SourceType, title, origin, content string) Source {
	return Source{
		ID:         uuid.New().String(),
		Type:       typ,
		Title:      title,
		Origin:     origin,
		Excerpt:    Excerpt(content),
		IngestedAt: time.Now().UTC(),
	}
}

// Excerpt truncates content to ExcerptLimit runes, appending ExcerptEllipsis
// when anything was cut off.
func Excerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= ExcerptLimit {
		return content
	}
	return string(runes[:ExcerptLimit]) + ExcerptEllipsis
}

// Registry is the in-memory catalog of ingested sources.
//
// All methods are safe for concurrent use. Entries keep insertion order.
type Registry struct {
	mu      sync.Mutex
	sources []Source
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{}
}

// Add appends a source. Called by the ingestion coordinator only after the
// vector store write has succeeded.
func (r *Registry) Add(src Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, src)
}

// List returns all sources in insertion order. The returned slice is a copy.
func (r *Registry) List() []Source {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// Len returns the number of tracked sources.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sources)
}

// Remove deletes the source with the given id and returns it.
// Returns ErrSourceNotFound without mutation if the id is unknown.
func (r *Registry) Remove(id string) (Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, src := range r.sources {
		if src.ID == id {
			r.sources = append(r.sources[:i], r.sources[i+1:]...)
			return src, nil
		}
	}
	return Source{}, ErrSourceNotFound
}

// Clear removes all sources.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = nil
}
