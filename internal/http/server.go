// Package http provides the HTTP API for knowledged.
package http

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/knowledged/internal/knowledge"
	"github.com/fyrsmithlabs/knowledged/internal/registry"
)

// KnowledgeService is what the handlers need from the knowledge layer.
type KnowledgeService interface {
	Ingest(ctx context.Context, req knowledge.IngestRequest) (*knowledge.IngestResult, error)
	Answer(ctx context.Context, question string) (*knowledge.Answer, error)
	ListSources() []registry.Source
	TotalSources() int
	RemoveSource(id string) (int, error)
	Clear(ctx context.Context) error
}

// URLFetcher fetches a web page and extracts its title and visible text.
type URLFetcher interface {
	Fetch(ctx context.Context, rawURL string) (title, text string, err error)
}

// Server provides the HTTP endpoints for knowledged.
type Server struct {
	echo    *echo.Echo
	svc     KnowledgeService
	fetcher URLFetcher
	logger  *zap.Logger
	config  *Config

	// extractPDF is swappable in tests.
	extractPDF func(path string) (string, error)
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(svc KnowledgeService, fetcher URLFetcher, logger *zap.Logger, cfg *Config) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("knowledge service cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 3001,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	m := newMetrics()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			m.record(c.Request().Method, c.Path(), c.Response().Status, duration)
			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:       e,
		svc:        svc,
		fetcher:    fetcher,
		logger:     logger,
		config:     cfg,
		extractPDF: defaultPDFExtract,
	}

	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/test", s.handleTest)
	s.echo.GET("/health", s.handleHealth)

	api := s.echo.Group("/api")
	api.GET("/sources-context", s.handleSourcesContext)
	api.DELETE("/sources/clear", s.handleClear)
	api.DELETE("/sources/:id", s.handleRemoveSource)
	api.POST("/embed-pdf", s.handleEmbedPDF)
	api.POST("/embed-text", s.handleEmbedText)
	api.POST("/embed-url", s.handleEmbedURL)
	api.POST("/chat", s.handleChat)
}

// Echo exposes the underlying echo instance so main can attach extra
// handlers such as the metrics endpoint.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
