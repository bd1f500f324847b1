package vectorstore

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	grpccodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestQdrantConfigValidate(t *testing.T) {
	valid := QdrantConfig{
		Host:           "localhost",
		Port:           6334,
		CollectionName: "knowledge_base",
		VectorSize:     1536,
	}

	t.Run("valid config passes", func(t *testing.T) {
		require.NoError(t, valid.Validate())
	})

	t.Run("missing host", func(t *testing.T) {
		cfg := valid
		cfg.Host = ""
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	})

	t.Run("invalid port", func(t *testing.T) {
		cfg := valid
		cfg.Port = 70000
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	})

	t.Run("missing collection name", func(t *testing.T) {
		cfg := valid
		cfg.CollectionName = ""
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	})

	t.Run("zero vector size", func(t *testing.T) {
		cfg := valid
		cfg.VectorSize = 0
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	})
}

func TestQdrantConfigApplyDefaults(t *testing.T) {
	var cfg QdrantConfig
	cfg.ApplyDefaults()

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 6334, cfg.Port)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.RetryBackoff)
	assert.Equal(t, 50*1024*1024, cfg.MaxMessageSize)
	assert.Equal(t, qdrant.Distance_Cosine, cfg.Distance)
}

func TestValidateCollectionName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple lowercase", "knowledge_base", false},
		{"with digits", "kb_2024", false},
		{"empty", "", true},
		{"uppercase", "KnowledgeBase", true},
		{"spaces", "knowledge base", true},
		{"path traversal", "../etc/passwd", true},
		{"too long", strings.Repeat("a", 65), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCollectionName(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCollectionName)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsTransientError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unavailable", status.Error(grpccodes.Unavailable, "down"), true},
		{"deadline exceeded", status.Error(grpccodes.DeadlineExceeded, "slow"), true},
		{"resource exhausted", status.Error(grpccodes.ResourceExhausted, "throttled"), true},
		{"not found", status.Error(grpccodes.NotFound, "missing"), false},
		{"invalid argument", status.Error(grpccodes.InvalidArgument, "bad"), false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransientError(tt.err))
		})
	}
}
