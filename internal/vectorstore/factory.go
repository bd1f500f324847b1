package vectorstore

import (
	"fmt"

	"go.uber.org/zap"
)

// Provider names accepted by NewStore.
const (
	ProviderChromem = "chromem"
	ProviderQdrant  = "qdrant"
)

// NewStore creates a Store for the given provider name.
//
//   - "chromem" (default): embedded store, no external dependencies.
//   - "qdrant": external Qdrant server over gRPC.
func NewStore(provider string, chromemCfg ChromemConfig, qdrantCfg QdrantConfig, embedder Embedder, logger *zap.Logger) (Store, error) {
	switch provider {
	case ProviderChromem, "":
		return NewChromemStore(chromemCfg, embedder, logger)
	case ProviderQdrant:
		return NewQdrantStore(qdrantCfg, embedder)
	default:
		return nil, fmt.Errorf("%w: unsupported provider %q (supported: chromem, qdrant)", ErrInvalidConfig, provider)
	}
}
