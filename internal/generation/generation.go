// Package generation produces chat completions through an OpenAI-compatible
// API. It is the final stage of answering: the assembled grounded prompt
// goes in, the model's answer text comes out.
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Sentinel errors for generation operations.
var (
	// ErrMissingAPIKey indicates no API key was configured.
	ErrMissingAPIKey = errors.New("generation API key is not configured")

	// ErrRateLimited indicates the upstream chat API rejected the request
	// for quota reasons.
	ErrRateLimited = errors.New("generation API rate limited")

	// ErrEmptyResponse indicates the model returned no choices.
	ErrEmptyResponse = errors.New("model returned an empty response")
)

// Defaults for the chat client.
const (
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.2
	DefaultMaxTokens   = 1024

	// Client-side rate limit to stay under API quotas.
	defaultRateLimit = 2.0
	defaultBurst     = 4
)

// Config holds configuration for the chat completion client.
type Config struct {
	// APIKey authenticates against the chat endpoint.
	APIKey string

	// BaseURL overrides the API endpoint. Empty means api.openai.com.
	BaseURL string

	// Model is the chat model name.
	Model string

	// Temperature controls sampling randomness. Low values keep answers
	// anchored to the supplied context.
	Temperature float64

	// MaxTokens bounds the completion length.
	MaxTokens int
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be in [0, 2], got %v", c.Temperature)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("max tokens cannot be negative, got %d", c.MaxTokens)
	}
	return nil
}

// Client generates chat completions.
type Client struct {
	llm     llms.Model
	config  Config
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient creates a chat completion client from the configuration.
func NewClient(config Config, logger *zap.Logger) (*Client, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []openai.Option{
		openai.WithToken(config.APIKey),
		openai.WithModel(config.Model),
	}
	if config.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(config.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}

	return &Client{
		llm:     llm,
		config:  config,
		limiter: rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
		logger:  logger,
	}, nil
}

// Complete runs a two-turn exchange: the system message carries the grounding
// instructions and context, the user message carries the question.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if strings.TrimSpace(user) == "" {
		return "", fmt.Errorf("user message cannot be empty")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	resp, err := c.llm.GenerateContent(ctx, buildMessages(system, user),
		llms.WithTemperature(c.config.Temperature),
		llms.WithMaxTokens(c.config.MaxTokens),
	)
	if err != nil {
		return "", classifyError(err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return "", ErrEmptyResponse
	}

	c.logger.Debug("completion generated",
		zap.String("model", c.config.Model),
		zap.Int("response_length", len(resp.Choices[0].Content)),
	)
	return resp.Choices[0].Content, nil
}

// buildMessages lays out the two-turn exchange for the chat API.
func buildMessages(system, user string) []llms.MessageContent {
	return []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, system),
		llms.TextParts(schema.ChatMessageTypeHuman, user),
	}
}

// classifyError maps upstream API failures onto the package sentinels.
func classifyError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "quota") {
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	}
	return fmt.Errorf("generating completion: %w", err)
}
