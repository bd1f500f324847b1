package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"valid", Config{ChunkSize: 1000, ChunkOverlap: 100}, false},
		{"zero overlap", Config{ChunkSize: 500, ChunkOverlap: 0}, false},
		{"negative size", Config{ChunkSize: -1, ChunkOverlap: 0}, true},
		{"negative overlap", Config{ChunkSize: 100, ChunkOverlap: -1}, true},
		{"overlap equals size", Config{ChunkSize: 100, ChunkOverlap: 100}, true},
		{"overlap exceeds size", Config{ChunkSize: 100, ChunkOverlap: 200}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewSplitterAppliesDefaults(t *testing.T) {
	s, err := NewSplitter(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultChunkSize, s.config.ChunkSize)
	assert.Equal(t, DefaultChunkOverlap, s.config.ChunkOverlap)
}

func TestNewSplitterRejectsInvalidConfig(t *testing.T) {
	_, err := NewSplitter(Config{ChunkSize: 10, ChunkOverlap: 10})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSplit(t *testing.T) {
	t.Run("short text is a single chunk", func(t *testing.T) {
		s, err := NewSplitter(Config{})
		require.NoError(t, err)

		chunks, err := s.Split("A short note about Go.")
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "A short note about Go.", chunks[0])
	})

	t.Run("empty text yields no chunks", func(t *testing.T) {
		s, err := NewSplitter(Config{})
		require.NoError(t, err)

		chunks, err := s.Split("   \n\t ")
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("long text is split into multiple chunks", func(t *testing.T) {
		s, err := NewSplitter(Config{ChunkSize: 100, ChunkOverlap: 20})
		require.NoError(t, err)

		var b strings.Builder
		for i := 0; i < 40; i++ {
			b.WriteString("Sentence number with some padding words in it.\n")
		}

		chunks, err := s.Split(b.String())
		require.NoError(t, err)
		assert.Greater(t, len(chunks), 1)
		for _, c := range chunks {
			assert.NotEmpty(t, strings.TrimSpace(c))
		}
	})
}
