package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kbrag/internal/core/domain"
)

func TestSearchService_Search(t *testing.T) {
	vec := &mockVectorSearch{response: &domain.SearchResponse{
		TotalHits: 1,
		MaxScore:  1.5,
		Hits: []domain.SearchHit{{
			ID:         "10-0",
			Score:      1.5,
			Title:      "Reset password",
			Highlights: map[string][]string{"content": {"<em>reset</em> it"}},
		}},
	}}
	metrics := &mockMetrics{}
	svc := NewSearchService(vec, "vector_field")
	svc.SetMetrics(metrics)

	resp, err := svc.Search(context.Background(), domain.SearchRequest{Query: "  reset  "})
	require.NoError(t, err)

	assert.Equal(t, "knowledge-base", vec.searchIndex)
	assert.Equal(t, 10, vec.searchBody["size"])
	assert.Contains(t, vec.searchBody["query"], "multi_match")
	require.Len(t, resp.Hits, 1)
	assert.Equal(t, []string{"<em>reset</em> it"}, resp.Hits[0].Highlights["content"])
	assert.Equal(t, []string{"search:success"}, metrics.calls)
}

func TestSearchService_Search_TargetsIndexedFields(t *testing.T) {
	// Chunks are stored as {"title", "content", ...}; every lexical query
	// must reach the chunk text, not only the title.
	for _, qt := range []domain.QueryType{"", domain.QueryMatch, domain.QueryMultiMatch, "bool"} {
		t.Run(string(qt), func(t *testing.T) {
			vec := &mockVectorSearch{}
			svc := NewSearchService(vec, "vector_field")

			_, err := svc.Search(context.Background(), domain.SearchRequest{Query: "PIN", QueryType: qt})
			require.NoError(t, err)

			sent := asJSON(t, vec.searchBody)
			assert.Contains(t, sent, `"content"`)
			assert.NotContains(t, sent, `"body"`)
		})
	}

	vec := &mockVectorSearch{}
	_, err := NewSearchService(vec, "").Search(context.Background(), domain.SearchRequest{Query: "PIN"})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"size": 10,
		"query": {"multi_match": {"query": "PIN", "fields": ["title^2", "content"], "type": "best_fields", "fuzziness": "AUTO"}},
		"highlight": {"fields": {"title": {}, "content": {"fragment_size": 150, "number_of_fragments": 3}}}
	}`, asJSON(t, vec.searchBody))
}

func TestSearchService_Search_ExplicitIndexAndSize(t *testing.T) {
	vec := &mockVectorSearch{}
	svc := NewSearchService(vec, "")

	_, err := svc.Search(context.Background(), domain.SearchRequest{
		Query: "refund", Index: "faq", Size: 3, QueryType: domain.QueryMatch,
	})
	require.NoError(t, err)
	assert.Equal(t, "faq", vec.searchIndex)
	assert.Equal(t, 3, vec.searchBody["size"])
}

func TestSearchService_Search_VectorEmbedsQuery(t *testing.T) {
	emb := &mockEmbeddingService{embedding: []float32{0.3}}
	vec := &mockVectorSearch{}
	svc := NewSearchService(vec, "vector_field")
	svc.SetEmbeddingService(emb)

	_, err := svc.Search(context.Background(), domain.SearchRequest{Query: "refund", QueryType: domain.QueryVector})
	require.NoError(t, err)
	assert.Equal(t, []string{"refund"}, emb.queries)

	knn := vec.searchBody["query"].(map[string]any)["knn"].(map[string]any)
	field := knn["vector_field"].(map[string]any)
	assert.Equal(t, []float32{0.3}, field["vector"])
}

func TestSearchService_Search_Errors(t *testing.T) {
	boom := errors.New("boom")

	t.Run("empty query", func(t *testing.T) {
		metrics := &mockMetrics{}
		svc := NewSearchService(&mockVectorSearch{}, "")
		svc.SetMetrics(metrics)

		_, err := svc.Search(context.Background(), domain.SearchRequest{Query: "   "})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Equal(t, []string{"search:error"}, metrics.calls)
	})

	t.Run("vector without embedding service", func(t *testing.T) {
		svc := NewSearchService(&mockVectorSearch{}, "")
		_, err := svc.Search(context.Background(), domain.SearchRequest{Query: "x", QueryType: domain.QueryVector})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("search fails", func(t *testing.T) {
		svc := NewSearchService(&mockVectorSearch{searchErr: boom}, "")
		_, err := svc.Search(context.Background(), domain.SearchRequest{Query: "x"})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("not configured", func(t *testing.T) {
		svc := NewSearchService(nil, "")
		_, err := svc.Search(context.Background(), domain.SearchRequest{Query: "x"})
		assert.ErrorIs(t, err, domain.ErrVectorIndexUnavailable)
	})
}
