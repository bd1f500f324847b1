package http

import (
	"github.com/fyrsmithlabs/knowledged/internal/registry"
	"github.com/fyrsmithlabs/knowledged/internal/vectorstore"
)

// MessageResponse is a plain status message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse carries a failure description.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// SourcesContextResponse lists the cataloged sources.
type SourcesContextResponse struct {
	TotalSources int               `json:"totalSources"`
	Sources      []registry.Source `json:"sources"`
}

// SourcesCountResponse reports a catalog mutation.
type SourcesCountResponse struct {
	Message      string `json:"message"`
	TotalSources int    `json:"totalSources"`
}

// IngestResponse reports a completed ingestion.
type IngestResponse struct {
	Message      string          `json:"message"`
	Source       registry.Source `json:"source"`
	ChunkCount   int             `json:"chunkCount"`
	TotalSources int             `json:"totalSources"`
}

// EmbedTextRequest is the request body for POST /api/embed-text.
type EmbedTextRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// EmbedURLRequest is the request body for POST /api/embed-url.
type EmbedURLRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ChatRequest is the request body for POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries the grounded answer plus the raw retrieved fragments
// in ranking order, for citation by the caller.
type ChatResponse struct {
	Message  string                     `json:"message"`
	Response string                     `json:"response"`
	Sources  []vectorstore.SearchResult `json:"sources"`
}
