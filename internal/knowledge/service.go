package knowledge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/knowledged/internal/chunk"
	"github.com/fyrsmithlabs/knowledged/internal/embeddings"
	"github.com/fyrsmithlabs/knowledged/internal/generation"
	"github.com/fyrsmithlabs/knowledged/internal/registry"
	"github.com/fyrsmithlabs/knowledged/internal/vectorstore"
)

var tracer = otel.Tracer("knowledged.knowledge")

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 5

// DefaultOpTimeout bounds each external call (embedding, store, generation)
// so no request blocks indefinitely.
const DefaultOpTimeout = 60 * time.Second

// Generator produces a chat completion from a system and user message.
type Generator interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Config holds service configuration.
type Config struct {
	// CollectionName is the vector collection the service owns.
	CollectionName string

	// VectorSize is the embedding dimension for the collection.
	VectorSize int

	// TopK is how many chunks retrieval returns per question.
	TopK int

	// OpTimeout bounds each external call.
	OpTimeout time.Duration
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.TopK == 0 {
		c.TopK = DefaultTopK
	}
	if c.OpTimeout == 0 {
		c.OpTimeout = DefaultOpTimeout
	}
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.CollectionName == "" {
		return fmt.Errorf("%w: collection name is required", ErrValidation)
	}
	if c.VectorSize <= 0 {
		return fmt.Errorf("%w: vector size must be positive", ErrValidation)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("%w: top-k must be positive", ErrValidation)
	}
	return nil
}

// IngestRequest describes one source to ingest. Content is the already
// extracted plain text.
type IngestRequest struct {
	Type    registry.SourceType
	Title   string
	Origin  string
	Content string
}

// IngestResult reports a completed ingestion.
type IngestResult struct {
	Source       registry.Source
	ChunkCount   int
	TotalSources int
}

// Answer is the result of a grounded question. Sources carries the raw
// retrieved fragments in ranking order, for citation and debugging by the
// caller.
type Answer struct {
	Response string
	Sources  []vectorstore.SearchResult
}

// Service coordinates the ingestion pipeline and grounded answering.
//
// Store and generator may be nil when the AI provider credential is absent;
// the service then refuses ingestion and answering with ErrConfiguration
// while the catalog operations keep working.
type Service struct {
	store     vectorstore.Store
	generator Generator
	registry  *registry.Registry
	splitter  *chunk.Splitter
	config    Config
	logger    *zap.Logger

	// mu serializes collection mutations: ensure-create, reset, and the
	// store-write portion of ingestion.
	mu sync.Mutex
}

// NewService creates a Service.
func NewService(store vectorstore.Store, generator Generator, reg *registry.Registry, splitter *chunk.Splitter, config Config, logger *zap.Logger) (*Service, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, fmt.Errorf("%w: registry is required", ErrValidation)
	}
	if splitter == nil {
		return nil, fmt.Errorf("%w: splitter is required", ErrValidation)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		generator: generator,
		registry:  reg,
		splitter:  splitter,
		config:    config,
		logger:    logger,
	}, nil
}

// Configured reports whether the AI provider credential was present at
// startup, i.e. whether ingestion and answering can work.
func (s *Service) Configured() bool {
	return s.store != nil && s.generator != nil
}

// Ingest runs the full pipeline for one source: chunk, embed, store, then
// catalog. The registry gains the source only after every chunk is stored,
// so a storage failure leaves no ghost entry behind.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	ctx, span := tracer.Start(ctx, "Service.Ingest")
	defer span.End()

	span.SetAttributes(attribute.String("source_type", string(req.Type)))

	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown source type %q", ErrValidation, req.Type)
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}
	if !s.Configured() {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrConfiguration)
	}

	chunks, err := s.splitter.Split(req.Content)
	if err != nil {
		return nil, fmt.Errorf("chunking content: %w", err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: content has no usable text", ErrValidation)
	}

	src := registry.NewSource(req.Type, req.Title, req.Origin, req.Content)

	docs := make([]vectorstore.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = vectorstore.Document{
			ID:      uuid.New().String(),
			Content: c,
			Metadata: map[string]interface{}{
				vectorstore.MetaSourceID:   src.ID,
				vectorstore.MetaSourceType: string(src.Type),
				vectorstore.MetaTitle:      src.Title,
				vectorstore.MetaOrigin:     src.Origin,
				vectorstore.MetaChunkIndex: i,
			},
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	opCtx, cancel := context.WithTimeout(ctx, s.config.OpTimeout)
	defer cancel()

	if err := s.ensureCollectionLocked(opCtx); err != nil {
		return nil, err
	}
	if _, err := s.store.AddDocuments(opCtx, docs); err != nil {
		span.RecordError(err)
		return nil, s.mapStoreError(err)
	}

	s.registry.Add(src)

	s.logger.Info("source ingested",
		zap.String("source_id", src.ID),
		zap.String("type", string(src.Type)),
		zap.String("title", src.Title),
		zap.Int("chunks", len(chunks)),
	)
	span.SetAttributes(attribute.Int("chunks", len(chunks)))

	return &IngestResult{
		Source:       src,
		ChunkCount:   len(chunks),
		TotalSources: s.registry.Len(),
	}, nil
}

// Answer retrieves the chunks closest to the question, assembles the
// grounded prompt and asks the generator. A missing collection means no
// knowledge yet; the generator is still asked, with an empty context, so the
// model can state that nothing relevant is stored.
func (s *Service) Answer(ctx context.Context, question string) (*Answer, error) {
	ctx, span := tracer.Start(ctx, "Service.Answer")
	defer span.End()

	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: message is required", ErrValidation)
	}
	if !s.Configured() {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrConfiguration)
	}

	searchCtx, searchCancel := context.WithTimeout(ctx, s.config.OpTimeout)
	defer searchCancel()

	results, err := s.store.Search(searchCtx, question, s.config.TopK)
	if err != nil {
		if errors.Is(err, vectorstore.ErrCollectionNotFound) {
			results = nil
		} else {
			span.RecordError(err)
			return nil, s.mapStoreError(err)
		}
	}
	span.SetAttributes(attribute.Int("fragments", len(results)))

	system := BuildSystemPrompt(s.registry.List(), results)

	genCtx, genCancel := context.WithTimeout(ctx, s.config.OpTimeout)
	defer genCancel()

	response, err := s.generator.Complete(genCtx, system, question)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, generation.ErrRateLimited) {
			return nil, fmt.Errorf("%w: %w", ErrRateLimited, err)
		}
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	s.logger.Info("question answered",
		zap.Int("fragments", len(results)),
		zap.Int("response_length", len(response)),
	)

	return &Answer{
		Response: response,
		Sources:  results,
	}, nil
}

// ListSources returns the cataloged sources in ingestion order.
func (s *Service) ListSources() []registry.Source {
	return s.registry.List()
}

// TotalSources returns the number of cataloged sources.
func (s *Service) TotalSources() int {
	return s.registry.Len()
}

// RemoveSource drops a source from the catalog. Its vectors stay in the
// collection until a full clear; the store has no per-source deletion.
func (s *Service) RemoveSource(id string) (int, error) {
	src, err := s.registry.Remove(id)
	if err != nil {
		if errors.Is(err, registry.ErrSourceNotFound) {
			return 0, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return 0, err
	}

	s.logger.Info("source removed from catalog",
		zap.String("source_id", src.ID),
		zap.String("title", src.Title),
	)
	return s.registry.Len(), nil
}

// Clear resets the vector collection (destroy, then recreate empty) and
// empties the catalog together. The registry is cleared only after the store
// side succeeded, so a store failure leaves the catalog untouched.
func (s *Service) Clear(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Service.Clear")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store != nil {
		opCtx, cancel := context.WithTimeout(ctx, s.config.OpTimeout)
		defer cancel()

		err := s.store.DeleteCollection(opCtx, s.config.CollectionName)
		if err != nil && !errors.Is(err, vectorstore.ErrCollectionNotFound) {
			// chromem reports a missing collection as a plain error.
			if !strings.Contains(err.Error(), "doesn't exist") {
				span.RecordError(err)
				return s.mapStoreError(err)
			}
		}
		if err := s.ensureCollectionLocked(opCtx); err != nil {
			span.RecordError(err)
			return err
		}
	}

	s.registry.Clear()
	s.logger.Info("knowledge base cleared")
	return nil
}

// EnsureCollection creates the collection if it does not exist yet. Safe to
// call repeatedly.
func (s *Service) EnsureCollection(ctx context.Context) error {
	if s.store == nil {
		return fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrConfiguration)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureCollectionLocked(ctx)
}

func (s *Service) ensureCollectionLocked(ctx context.Context) error {
	err := s.store.CreateCollection(ctx, s.config.CollectionName, s.config.VectorSize)
	if err != nil && !errors.Is(err, vectorstore.ErrCollectionExists) {
		return s.mapStoreError(err)
	}
	return nil
}

// mapStoreError lifts vector store and embedding failures into the
// package's error kinds.
func (s *Service) mapStoreError(err error) error {
	switch {
	case errors.Is(err, embeddings.ErrRateLimited):
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	case errors.Is(err, vectorstore.ErrUnavailable):
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	case errors.Is(err, vectorstore.ErrInvalidCollectionName), errors.Is(err, vectorstore.ErrInvalidConfig):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	case errors.Is(err, vectorstore.ErrEmbeddingFailed):
		return fmt.Errorf("embedding content: %w", err)
	default:
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
}

