package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kbrag/internal/core/domain"
)

func TestNewEmbeddingService(t *testing.T) {
	t.Run("api key required for default url", func(t *testing.T) {
		_, err := NewEmbeddingService(Config{})
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})

	t.Run("compatible gateway without key", func(t *testing.T) {
		svc, err := NewEmbeddingService(Config{BaseURL: "http://gateway.local/v1"})
		require.NoError(t, err)
		assert.Equal(t, DefaultModel, svc.ModelName())
		assert.Equal(t, 1536, svc.Dimensions())
	})

	t.Run("model dimensions", func(t *testing.T) {
		svc, err := NewEmbeddingService(Config{APIKey: "k", Model: "text-embedding-3-large"})
		require.NoError(t, err)
		assert.Equal(t, 3072, svc.Dimensions())
	})
}

func TestEmbedBatch_OrdersByIndexAndSplits(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var req embeddingRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 1536, req.Dimensions)

		// Reply in reverse order to exercise index sorting.
		type item struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		data := make([]item, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, item{Embedding: []float32{float32(len(req.Input[i]))}, Index: i})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
	}))
	defer srv.Close()

	svc, err := NewEmbeddingService(Config{APIKey: "key", BaseURL: srv.URL, MaxBatchSize: 2})
	require.NoError(t, err)

	got, err := svc.EmbedBatch(context.Background(), []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1}, {2}, {3}}, got)
	assert.Equal(t, 2, requests)
}

func TestEmbed_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"api error object", http.StatusUnauthorized, `{"error":{"message":"bad key","type":"auth"}}`, domain.ErrUpstream},
		{"non json failure", http.StatusBadGateway, `upstream down`, domain.ErrUpstream},
		{"missing embedding", http.StatusOK, `{"data":[]}`, domain.ErrUpstream},
		{"index out of range", http.StatusOK, `{"data":[{"embedding":[1],"index":5}]}`, domain.ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			svc, err := NewEmbeddingService(Config{APIKey: "k", BaseURL: srv.URL})
			require.NoError(t, err)

			_, err = svc.Embed(context.Background(), "hello")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEmbed_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	svc, err := NewEmbeddingService(Config{BaseURL: url})
	require.NoError(t, err)

	_, err = svc.Embed(context.Background(), "hello")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	svc, err := NewEmbeddingService(Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}

func TestEmbedBatch_Empty(t *testing.T) {
	svc, err := NewEmbeddingService(Config{APIKey: "k"})
	require.NoError(t, err)

	got, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}
