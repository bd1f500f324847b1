package embeddings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	lcembeddings "github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// Sentinel errors for embedding operations.
var (
	// ErrMissingAPIKey indicates no API key was configured.
	ErrMissingAPIKey = errors.New("embedding API key is not configured")

	// ErrRateLimited indicates the upstream embedding API rejected the
	// request for quota reasons.
	ErrRateLimited = errors.New("embedding API rate limited")
)

// DefaultModel is used when no embedding model is configured.
const DefaultModel = "text-embedding-3-small"

// Config holds configuration for the OpenAI embedding provider.
type Config struct {
	// APIKey authenticates against the embeddings endpoint.
	APIKey string

	// BaseURL overrides the API endpoint. Empty means api.openai.com.
	BaseURL string

	// Model is the embedding model name.
	Model string
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// detectDimension returns the embedding dimension for a model name.
// Falls back to 1536, the dimension of the small OpenAI models.
func detectDimension(model string) int {
	switch {
	case strings.Contains(model, "3-large"):
		return 3072
	case strings.Contains(model, "3-small"), strings.Contains(model, "ada-002"):
		return 1536
	default:
		return 1536
	}
}

// Provider generates embeddings through an OpenAI-compatible API.
type Provider struct {
	embedder  lcembeddings.Embedder
	model     string
	dimension int
	logger    *zap.Logger
}

// NewProvider creates an embedding provider from the configuration.
func NewProvider(config Config, logger *zap.Logger) (*Provider, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []openai.Option{
		openai.WithToken(config.APIKey),
		openai.WithEmbeddingModel(config.Model),
	}
	if config.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(config.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}

	embedder, err := lcembeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	logger.Info("embedding provider initialized",
		zap.String("model", config.Model),
		zap.Int("dimension", detectDimension(config.Model)),
	)

	return &Provider{
		embedder:  embedder,
		model:     config.Model,
		dimension: detectDimension(config.Model),
		logger:    logger,
	}, nil
}

// EmbedDocuments generates embeddings for multiple texts, one per input.
func (p *Provider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, classifyError(err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d vectors for %d texts", len(vectors), len(texts))
	}
	return vectors, nil
}

// EmbedQuery generates an embedding for a single query.
func (p *Provider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vector, err := p.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, classifyError(err)
	}
	return vector, nil
}

// Dimension returns the embedding dimension for the configured model.
func (p *Provider) Dimension() int {
	return p.dimension
}

// classifyError maps upstream API failures onto the package sentinels.
func classifyError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "quota") {
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	}
	return fmt.Errorf("generating embeddings: %w", err)
}
