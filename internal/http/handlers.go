package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/knowledged/internal/extract"
	"github.com/fyrsmithlabs/knowledged/internal/knowledge"
	"github.com/fyrsmithlabs/knowledged/internal/registry"
	"github.com/fyrsmithlabs/knowledged/internal/vectorstore"
)

// maxPDFBytes caps uploaded PDF size.
const maxPDFBytes = 50 << 20

func defaultPDFExtract(path string) (string, error) {
	return extract.PDF(path)
}

// handleTest confirms the server is up.
func (s *Server) handleTest(c echo.Context) error {
	return c.JSON(http.StatusOK, MessageResponse{Message: "Server is running"})
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleSourcesContext lists cataloged sources in ingestion order.
func (s *Server) handleSourcesContext(c echo.Context) error {
	sources := s.svc.ListSources()
	if sources == nil {
		sources = []registry.Source{}
	}
	return c.JSON(http.StatusOK, SourcesContextResponse{
		TotalSources: len(sources),
		Sources:      sources,
	})
}

// handleClear destroys the vector collection and empties the catalog.
func (s *Server) handleClear(c echo.Context) error {
	if err := s.svc.Clear(c.Request().Context()); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, SourcesCountResponse{
		Message:      "All sources cleared successfully",
		TotalSources: 0,
	})
}

// handleRemoveSource drops one source from the catalog.
func (s *Server) handleRemoveSource(c echo.Context) error {
	id := c.Param("id")
	remaining, err := s.svc.RemoveSource(id)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, SourcesCountResponse{
		Message:      "Source removed from the catalog; its content may still influence retrieval until a full clear",
		TotalSources: remaining,
	})
}

// handleEmbedPDF ingests an uploaded PDF. The file arrives as multipart
// field "pdf" and is staged to a temp file for the parser.
func (s *Server) handleEmbedPDF(c echo.Context) error {
	fileHeader, err := c.FormFile("pdf")
	if err != nil {
		return s.fail(c, fmt.Errorf("%w: pdf file is required", knowledge.ErrValidation))
	}
	if fileHeader.Size > maxPDFBytes {
		return s.fail(c, fmt.Errorf("%w: pdf exceeds %d bytes", knowledge.ErrValidation, maxPDFBytes))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return s.fail(c, fmt.Errorf("%w: opening upload: %w", knowledge.ErrExtraction, err))
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "knowledged-*.pdf")
	if err != nil {
		return s.fail(c, fmt.Errorf("staging upload: %w", err))
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, src); err != nil {
		return s.fail(c, fmt.Errorf("staging upload: %w", err))
	}

	text, err := s.extractPDF(tmp.Name())
	if err != nil {
		return s.fail(c, fmt.Errorf("%w: %w", knowledge.ErrExtraction, err))
	}

	title := strings.TrimSuffix(fileHeader.Filename, filepath.Ext(fileHeader.Filename))
	res, err := s.svc.Ingest(c.Request().Context(), knowledge.IngestRequest{
		Type:    registry.SourceTypePDF,
		Title:   title,
		Origin:  fileHeader.Filename,
		Content: text,
	})
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, ingestResponse("PDF processed successfully", res))
}

// handleEmbedText ingests raw text submitted as JSON.
func (s *Server) handleEmbedText(c echo.Context) error {
	var req EmbedTextRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, fmt.Errorf("%w: invalid request body", knowledge.ErrValidation))
	}

	res, err := s.svc.Ingest(c.Request().Context(), knowledge.IngestRequest{
		Type:    registry.SourceTypeText,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, ingestResponse("Text processed successfully", res))
}

// handleEmbedURL fetches a web page and ingests its visible text. The page
// title becomes the source title when the caller does not supply one.
func (s *Server) handleEmbedURL(c echo.Context) error {
	var req EmbedURLRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, fmt.Errorf("%w: invalid request body", knowledge.ErrValidation))
	}
	if strings.TrimSpace(req.URL) == "" {
		return s.fail(c, fmt.Errorf("%w: url is required", knowledge.ErrValidation))
	}
	if s.fetcher == nil {
		return s.fail(c, fmt.Errorf("%w: url fetching is not available", knowledge.ErrConfiguration))
	}

	pageTitle, text, err := s.fetcher.Fetch(c.Request().Context(), req.URL)
	if err != nil {
		return s.fail(c, fmt.Errorf("%w: %w", knowledge.ErrExtraction, err))
	}

	title := req.Title
	if strings.TrimSpace(title) == "" {
		title = pageTitle
	}
	if strings.TrimSpace(title) == "" {
		title = req.URL
	}

	res, err := s.svc.Ingest(c.Request().Context(), knowledge.IngestRequest{
		Type:    registry.SourceTypeURL,
		Title:   title,
		Origin:  req.URL,
		Content: text,
	})
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, ingestResponse("URL processed successfully", res))
}

// handleChat answers a question grounded in the stored knowledge.
func (s *Server) handleChat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, fmt.Errorf("%w: invalid request body", knowledge.ErrValidation))
	}

	ans, err := s.svc.Answer(c.Request().Context(), req.Message)
	if err != nil {
		return s.fail(c, err)
	}

	sources := ans.Sources
	if sources == nil {
		sources = []vectorstore.SearchResult{}
	}
	return c.JSON(http.StatusOK, ChatResponse{
		Message:  "Query processed successfully",
		Response: ans.Response,
		Sources:  sources,
	})
}

func ingestResponse(msg string, res *knowledge.IngestResult) IngestResponse {
	return IngestResponse{
		Message:      msg,
		Source:       res.Source,
		ChunkCount:   res.ChunkCount,
		TotalSources: res.TotalSources,
	}
}

// fail maps knowledge error kinds onto HTTP status codes and renders the
// uniform {"error": ...} body.
func (s *Server) fail(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, knowledge.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, knowledge.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, knowledge.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, knowledge.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, knowledge.ErrConfiguration), errors.Is(err, knowledge.ErrExtraction):
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Error(err),
		)
	} else {
		s.logger.Warn("request rejected",
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Error(err),
		)
	}

	return c.JSON(status, ErrorResponse{Error: err.Error()})
}
