// Package config provides configuration loading for knowledged.
//
// Configuration comes from an optional YAML file overridden by environment
// variables. Environment variables map onto config keys by splitting on the
// first underscore: SERVER_HTTP_PORT -> server.http_port, OPENAI_API_KEY ->
// openai.api_key.
package config

import (
	"fmt"
	"time"
)

// Config holds the complete knowledged configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	OpenAI    OpenAIConfig    `koanf:"openai"`
	Store     StoreConfig     `koanf:"store"`
	Qdrant    QdrantConfig    `koanf:"qdrant"`
	Chromem   ChromemConfig   `koanf:"chromem"`
	Retrieval RetrievalConfig `koanf:"retrieval"`
	Chunking  ChunkingConfig  `koanf:"chunking"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"http_port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// OpenAIConfig holds credentials and model selection for the AI provider.
// Any endpoint speaking the OpenAI protocol works through BaseURL.
type OpenAIConfig struct {
	APIKey         string `koanf:"api_key"`
	BaseURL        string `koanf:"base_url"`
	EmbeddingModel string `koanf:"embedding_model"`
	ChatModel      string `koanf:"chat_model"`
}

// StoreConfig selects and shapes the vector store.
type StoreConfig struct {
	// Provider is "chromem" (embedded, default) or "qdrant".
	Provider   string `koanf:"provider"`
	Collection string `koanf:"collection"`
	VectorSize int    `koanf:"vector_size"`
}

// QdrantConfig holds connection settings for an external Qdrant server.
type QdrantConfig struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"grpc_port"`
	APIKey string `koanf:"api_key"`
	UseTLS bool   `koanf:"use_tls"`
}

// ChromemConfig holds settings for the embedded store.
type ChromemConfig struct {
	// Path is the persistence directory. Empty keeps everything in memory.
	Path     string `koanf:"path"`
	Compress bool   `koanf:"compress"`
}

// RetrievalConfig tunes answering.
type RetrievalConfig struct {
	TopK int `koanf:"top_k"`
}

// ChunkingConfig tunes the ingestion splitter.
type ChunkingConfig struct {
	Size    int `koanf:"size"`
	Overlap int `koanf:"overlap"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// applyDefaults fills in defaults for unset values.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3001
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.OpenAI.EmbeddingModel == "" {
		cfg.OpenAI.EmbeddingModel = "text-embedding-3-small"
	}
	if cfg.OpenAI.ChatModel == "" {
		cfg.OpenAI.ChatModel = "gpt-4o-mini"
	}
	if cfg.Store.Provider == "" {
		cfg.Store.Provider = "chromem"
	}
	if cfg.Store.Collection == "" {
		cfg.Store.Collection = "knowledged_default"
	}
	if cfg.Store.VectorSize == 0 {
		cfg.Store.VectorSize = 1536
	}
	if cfg.Qdrant.Host == "" {
		cfg.Qdrant.Host = "localhost"
	}
	if cfg.Qdrant.Port == 0 {
		cfg.Qdrant.Port = 6334
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.Chunking.Size == 0 {
		cfg.Chunking.Size = 1000
	}
	if cfg.Chunking.Overlap == 0 {
		cfg.Chunking.Overlap = 100
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// Validate checks the configuration for contradictions. A missing API key is
// not an error here: the server starts degraded and reports the missing
// credential per request.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be in [1, 65535], got %d", c.Server.Port)
	}
	switch c.Store.Provider {
	case "chromem", "qdrant":
	default:
		return fmt.Errorf("store provider must be chromem or qdrant, got %q", c.Store.Provider)
	}
	if c.Store.VectorSize <= 0 {
		return fmt.Errorf("store vector size must be positive, got %d", c.Store.VectorSize)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval top_k must be positive, got %d", c.Retrieval.TopK)
	}
	if c.Chunking.Size <= 0 {
		return fmt.Errorf("chunking size must be positive, got %d", c.Chunking.Size)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("chunking overlap must be in [0, size), got %d", c.Chunking.Overlap)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
