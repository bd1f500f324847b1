// Package chunk splits normalized source text into overlapping chunks for
// embedding. Splitting is recursive-character based, so paragraph and
// sentence boundaries are preferred over hard cuts.
package chunk

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

// Defaults chosen for embedding models with ~8k token context windows.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 100
)

// ErrInvalidConfig indicates invalid splitter configuration.
var ErrInvalidConfig = errors.New("invalid chunking configuration")

// Config holds splitter tuning.
type Config struct {
	// ChunkSize is the target chunk length in characters.
	ChunkSize int

	// ChunkOverlap is how many characters consecutive chunks share.
	ChunkOverlap int
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.ChunkSize == 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.ChunkOverlap == 0 {
		c.ChunkOverlap = DefaultChunkOverlap
	}
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("%w: chunk overlap cannot be negative, got %d", ErrInvalidConfig, c.ChunkOverlap)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d", ErrInvalidConfig, c.ChunkOverlap, c.ChunkSize)
	}
	return nil
}

// Splitter splits text into chunks.
type Splitter struct {
	splitter textsplitter.RecursiveCharacter
	config   Config
}

// NewSplitter creates a Splitter from the given config.
func NewSplitter(config Config) (*Splitter, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Splitter{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(config.ChunkSize),
			textsplitter.WithChunkOverlap(config.ChunkOverlap),
		),
		config: config,
	}, nil
}

// Split breaks text into chunks, dropping empty or whitespace-only pieces.
// Text shorter than the chunk size comes back as a single chunk.
func (s *Splitter) Split(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	pieces, err := s.splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("splitting text: %w", err)
	}

	chunks := make([]string, 0, len(pieces))
	for _, p := range pieces {
		p = strings.TrimSpace(p)
		if p != "" {
			chunks = append(chunks, p)
		}
	}
	return chunks, nil
}
