package generation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"valid", Config{APIKey: "sk-test", Temperature: 0.2, MaxTokens: 512}, false},
		{"missing api key", Config{Temperature: 0.2}, true},
		{"temperature too high", Config{APIKey: "sk-test", Temperature: 3}, true},
		{"negative temperature", Config{APIKey: "sk-test", Temperature: -0.1}, true},
		{"negative max tokens", Config{APIKey: "sk-test", MaxTokens: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	c := Config{APIKey: "sk-test"}
	c.ApplyDefaults()
	assert.Equal(t, DefaultModel, c.Model)
	assert.Equal(t, DefaultTemperature, c.Temperature)
	assert.Equal(t, DefaultMaxTokens, c.MaxTokens)
}

func TestNewClient(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		_, err := NewClient(Config{}, zap.NewNop())
		assert.ErrorIs(t, err, ErrMissingAPIKey)
	})

	t.Run("valid config", func(t *testing.T) {
		c, err := NewClient(Config{APIKey: "sk-test"}, zap.NewNop())
		require.NoError(t, err)
		assert.NotNil(t, c.limiter)
	})
}

func TestBuildMessages(t *testing.T) {
	messages := buildMessages("You answer from context only.", "What is Go?")
	require.Len(t, messages, 2)

	assert.Equal(t, schema.ChatMessageTypeSystem, messages[0].Role)
	assert.Equal(t, llms.TextContent{Text: "You answer from context only."}, messages[0].Parts[0])
	assert.Equal(t, schema.ChatMessageTypeHuman, messages[1].Role)
	assert.Equal(t, llms.TextContent{Text: "What is Go?"}, messages[1].Parts[0])
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		rateLimited bool
	}{
		{"http 429", errors.New("API returned unexpected status code: 429"), true},
		{"rate limit text", errors.New("Rate limit reached for requests"), true},
		{"other failure", errors.New("context deadline exceeded"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError(tt.err)
			if tt.rateLimited {
				assert.ErrorIs(t, got, ErrRateLimited)
			} else {
				assert.NotErrorIs(t, got, ErrRateLimited)
			}
		})
	}
}
