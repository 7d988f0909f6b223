package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kbrag/internal/adapters/driven/embedding/cache"
	"github.com/custodia-labs/kbrag/internal/config"
	"github.com/custodia-labs/kbrag/internal/core/domain"
)

func TestInitResult_Close(t *testing.T) {
	t.Run("close with nil services", func(t *testing.T) {
		result := &InitResult{}
		// Should not panic
		result.Close()
	})
}

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.EmbeddingConfig
		wantModel string
		wantErr   error
	}{
		{
			name:      "ollama",
			cfg:       config.EmbeddingConfig{Provider: "ollama", Dimensions: 768},
			wantModel: "nomic-embed-text",
		},
		{
			name:      "openai",
			cfg:       config.EmbeddingConfig{Provider: "OpenAI", APIKey: "k", Model: "text-embedding-3-large"},
			wantModel: "text-embedding-3-large",
		},
		{
			name:    "openai without key",
			cfg:     config.EmbeddingConfig{Provider: "openai"},
			wantErr: domain.ErrEmbeddingUnavailable,
		},
		{
			name:    "anthropic has no embeddings",
			cfg:     config.EmbeddingConfig{Provider: "anthropic"},
			wantErr: domain.ErrEmbeddingUnavailable,
		},
		{
			name:    "unknown provider",
			cfg:     config.EmbeddingConfig{Provider: "bedrock"},
			wantErr: domain.ErrEmbeddingUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, svc.ModelName())
		})
	}
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LLMConfig
		wantModel string
		wantErr   error
	}{
		{"default is anthropic", config.LLMConfig{APIKey: "k"}, "claude-3-5-sonnet-latest", nil},
		{"anthropic without key", config.LLMConfig{Provider: "anthropic"}, "", domain.ErrLLMUnavailable},
		{"openai", config.LLMConfig{Provider: "openai", APIKey: "k", Model: "gpt-4o"}, "gpt-4o", nil},
		{"ollama", config.LLMConfig{Provider: "ollama"}, "llama3.2", nil},
		{"unknown", config.LLMConfig{Provider: "bedrock"}, "", domain.ErrLLMUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, svc.ModelName())
		})
	}
}

func TestInit_WithCache(t *testing.T) {
	mr := miniredis.RunT(t)

	s := &config.Settings{
		Embedding: config.EmbeddingConfig{Provider: "ollama"},
		LLM:       config.LLMConfig{Provider: "ollama"},
		Redis:     config.RedisConfig{Addr: mr.Addr(), TTL: cache.DefaultTTL},
	}

	result, err := Init(context.Background(), s)
	require.NoError(t, err)
	defer result.Close()

	_, cached := result.EmbeddingService.(*cache.Service)
	assert.True(t, cached)
	assert.Empty(t, result.Warnings)
	assert.NotNil(t, result.LLMService)
}

func TestInit_CacheUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	s := &config.Settings{
		Embedding: config.EmbeddingConfig{Provider: "ollama"},
		LLM:       config.LLMConfig{Provider: "ollama"},
		Redis:     config.RedisConfig{Addr: addr},
	}

	result, err := Init(context.Background(), s)
	require.NoError(t, err)
	defer result.Close()

	_, cached := result.EmbeddingService.(*cache.Service)
	assert.False(t, cached)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "embedding cache disabled")
}

func TestInit_LLMError(t *testing.T) {
	s := &config.Settings{
		Embedding: config.EmbeddingConfig{Provider: "ollama"},
		LLM:       config.LLMConfig{Provider: "anthropic"},
	}

	_, err := Init(context.Background(), s)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestInitEmbedding_NoCache(t *testing.T) {
	s := &config.Settings{
		Embedding: config.EmbeddingConfig{Provider: "ollama"},
		LLM:       config.LLMConfig{Provider: "anthropic"},
	}

	embedding, warnings, err := InitEmbedding(context.Background(), s)
	require.NoError(t, err, "the LLM is not built")
	defer embedding.Close()

	_, cached := embedding.(*cache.Service)
	assert.False(t, cached)
	assert.Empty(t, warnings)
}

func TestInitEmbedding_UnsupportedProvider(t *testing.T) {
	s := &config.Settings{Embedding: config.EmbeddingConfig{Provider: "anthropic"}}

	_, _, err := InitEmbedding(context.Background(), s)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestValidate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	svc, err := CreateLLMService(config.LLMConfig{Provider: "ollama", BaseURL: srv.URL})
	require.NoError(t, err)
	assert.NoError(t, Validate(context.Background(), svc))

	boom := errors.New("boom")
	err = Validate(context.Background(), pingFunc(func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return boom
	}))
	assert.ErrorIs(t, err, boom)
}
