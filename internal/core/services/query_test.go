package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kbrag/internal/core/domain"
)

// asJSON renders body so expectations can be written as literal JSON.
func asJSON(t *testing.T, body map[string]any) string {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	return string(data)
}

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name string
		req  domain.SearchRequest
		want string
	}{
		{
			name: "match",
			req:  domain.SearchRequest{Query: "refund", QueryType: domain.QueryMatch, Size: 3},
			want: `{"size":3,"query":{"match":{"content":"refund"}}}`,
		},
		{
			name: "multi_match is the default",
			req:  domain.SearchRequest{Query: "refund"},
			want: `{
				"size": 10,
				"query": {"multi_match": {"query": "refund", "fields": ["title^2", "content"], "type": "best_fields", "fuzziness": "AUTO"}},
				"highlight": {"fields": {"title": {}, "content": {"fragment_size": 150, "number_of_fragments": 3}}}
			}`,
		},
		{
			name: "vector",
			req:  domain.SearchRequest{QueryType: domain.QueryVector, Vector: []float32{0.5, 1}, Size: 2},
			want: `{"size":2,"query":{"knn":{"embedding":{"vector":[0.5,1],"k":2}}}}`,
		},
		{
			name: "custom keeps its size",
			req: domain.SearchRequest{QueryType: domain.QueryCustom, Size: 4, CustomQuery: map[string]any{
				"size":  1,
				"query": map[string]any{"match_all": map[string]any{}},
			}},
			want: `{"size":1,"query":{"match_all":{}}}`,
		},
		{
			name: "custom gets default size",
			req: domain.SearchRequest{QueryType: domain.QueryCustom, CustomQuery: map[string]any{
				"query": map[string]any{"match_all": map[string]any{}},
			}},
			want: `{"size":10,"query":{"match_all":{}}}`,
		},
		{
			name: "unknown type builds bool",
			req:  domain.SearchRequest{Query: "refund", QueryType: "fancy"},
			want: `{
				"size": 10,
				"query": {"bool": {
					"should": [
						{"match": {"title": {"query": "refund", "boost": 2}}},
						{"match": {"content": {"query": "refund"}}}
					],
					"minimum_should_match": 1
				}}
			}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := BuildSearchQuery(tt.req, "embedding")
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, asJSON(t, body))
		})
	}
}

func TestBuildSearchQuery_DefaultVectorField(t *testing.T) {
	body, err := BuildSearchQuery(domain.SearchRequest{QueryType: domain.QueryVector, Vector: []float32{1}}, "")
	require.NoError(t, err)
	knn := body["query"].(map[string]any)["knn"].(map[string]any)
	assert.Contains(t, knn, DefaultVectorField)
}

func TestBuildSearchQuery_Invalid(t *testing.T) {
	_, err := BuildSearchQuery(domain.SearchRequest{Query: "x", QueryType: domain.QueryVector}, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = BuildSearchQuery(domain.SearchRequest{Query: "x", QueryType: domain.QueryCustom}, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBuildSearchQuery_CustomNotMutated(t *testing.T) {
	custom := map[string]any{"query": map[string]any{}}
	_, err := BuildSearchQuery(domain.SearchRequest{QueryType: domain.QueryCustom, CustomQuery: custom}, "")
	require.NoError(t, err)
	assert.NotContains(t, custom, "size")
}
