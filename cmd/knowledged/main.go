// Knowledged is a personal knowledge base daemon with a JSON HTTP API.
//
// It ingests PDFs, raw text and web pages into a vector collection, and
// answers questions grounded in what was ingested.
//
// Configuration is loaded from an optional YAML file and environment
// variables. See internal/config for details.
//
// Usage:
//
//	# Start server with defaults
//	OPENAI_API_KEY=sk-... knowledged
//
//	# Configure via environment
//	SERVER_HTTP_PORT=8080 STORE_PROVIDER=qdrant knowledged
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/knowledged/internal/chunk"
	"github.com/fyrsmithlabs/knowledged/internal/config"
	"github.com/fyrsmithlabs/knowledged/internal/embeddings"
	"github.com/fyrsmithlabs/knowledged/internal/extract"
	"github.com/fyrsmithlabs/knowledged/internal/generation"
	"github.com/fyrsmithlabs/knowledged/internal/http"
	"github.com/fyrsmithlabs/knowledged/internal/knowledge"
	"github.com/fyrsmithlabs/knowledged/internal/logging"
	"github.com/fyrsmithlabs/knowledged/internal/registry"
	"github.com/fyrsmithlabs/knowledged/internal/vectorstore"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("knowledged\n")
		fmt.Printf("Version:    %s\n", version)
		fmt.Printf("Commit:     %s\n", gitCommit)
		fmt.Printf("Build Date: %s\n", buildDate)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

// run starts the knowledged server and blocks until the context is
// cancelled. Initialization order: config, logger, AI provider clients,
// vector store, knowledge service, HTTP server. A missing API key does not
// abort startup; the server runs degraded and reports the missing
// credential per request.
func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("starting knowledged",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.String("store_provider", cfg.Store.Provider),
	)

	splitter, err := chunk.NewSplitter(chunk.Config{
		ChunkSize:    cfg.Chunking.Size,
		ChunkOverlap: cfg.Chunking.Overlap,
	})
	if err != nil {
		return fmt.Errorf("initializing splitter: %w", err)
	}

	store, generator, err := initAIBackends(cfg, logger)
	if err != nil {
		return err
	}
	if store != nil {
		defer func() {
			_ = store.Close()
		}()
	}

	svc, err := knowledge.NewService(store, generator, registry.New(), splitter, knowledge.Config{
		CollectionName: cfg.Store.Collection,
		VectorSize:     cfg.Store.VectorSize,
		TopK:           cfg.Retrieval.TopK,
	}, logger)
	if err != nil {
		return fmt.Errorf("initializing knowledge service: %w", err)
	}

	srv, err := http.NewServer(svc, extract.NewURLFetcher(), logger, &http.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	})
	if err != nil {
		return fmt.Errorf("initializing http server: %w", err)
	}

	srv.Echo().GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

// initAIBackends builds the vector store and the chat client. Both come
// back nil, without error, when the API key is absent.
func initAIBackends(cfg *config.Config, logger *zap.Logger) (vectorstore.Store, knowledge.Generator, error) {
	if cfg.OpenAI.APIKey == "" {
		logger.Warn("OPENAI_API_KEY is not set; ingestion and chat are disabled")
		return nil, nil, nil
	}

	embedder, err := embeddings.NewProvider(embeddings.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.EmbeddingModel,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing embedding provider: %w", err)
	}

	store, err := vectorstore.NewStore(cfg.Store.Provider,
		vectorstore.ChromemConfig{
			Path:           cfg.Chromem.Path,
			Compress:       cfg.Chromem.Compress,
			CollectionName: cfg.Store.Collection,
			VectorSize:     cfg.Store.VectorSize,
		},
		vectorstore.QdrantConfig{
			Host:           cfg.Qdrant.Host,
			Port:           cfg.Qdrant.Port,
			APIKey:         cfg.Qdrant.APIKey,
			UseTLS:         cfg.Qdrant.UseTLS,
			CollectionName: cfg.Store.Collection,
			VectorSize:     uint64(cfg.Store.VectorSize),
		},
		embedder, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing vector store: %w", err)
	}

	generator, err := generation.NewClient(generation.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.ChatModel,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing generation client: %w", err)
	}

	return store, generator, nil
}
