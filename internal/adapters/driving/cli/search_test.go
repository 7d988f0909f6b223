package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kbrag/internal/core/domain"
)

func searchRuntime() *mockRuntime {
	rt := newMockRuntime()
	rt.search.resp = &domain.SearchResponse{
		TotalHits: 3,
		Hits: []domain.SearchHit{
			{
				ID:         "10-0",
				Score:      1.25,
				Title:      "Reset password",
				Metadata:   map[string]any{"url": "https://help.example.com/10"},
				Highlights: map[string][]string{"content": {" Click <em>reset</em> "}},
			},
			{ID: "11-0", Score: 0.5},
		},
	}
	return rt
}

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
}

func TestSearchCmd_Short(t *testing.T) {
	assert.Equal(t, "Search the vector index", searchCmd.Short)
}

func TestSearchCmd_Long(t *testing.T) {
	assert.Contains(t, searchCmd.Long, "multi_match")
	assert.Contains(t, searchCmd.Long, "vector")
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	_, cleanup := setupTestRuntime(searchRuntime())
	defer cleanup()

	_, err := execute("search")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_HasSizeFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("size")
	require.NotNil(t, flag, "size flag should exist")
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "10", flag.DefValue)
}

func TestSearchCmd_ExecutesWithQuery(t *testing.T) {
	rt := searchRuntime()
	_, cleanup := setupTestRuntime(rt)
	defer cleanup()

	out, err := execute("search", "reset")

	require.NoError(t, err)
	assert.Equal(t, domain.SearchRequest{Query: "reset", Size: 10}, rt.search.got)
	assert.Contains(t, out, "Results (2 of 3):")
	assert.Contains(t, out, "[1] Reset password (1.25)")
	assert.Contains(t, out, "https://help.example.com/10")
	assert.Contains(t, out, "Click <em>reset</em>")
	assert.Contains(t, out, "[2] 11-0 (0.50)", "ID stands in for a missing title")
}

func TestSearchCmd_PassesFlags(t *testing.T) {
	rt := searchRuntime()
	_, cleanup := setupTestRuntime(rt)
	defer cleanup()

	_, err := execute("search", "-t", "vector", "-n", "5", "--index", "kb-2", "reset")

	require.NoError(t, err)
	assert.Equal(t, domain.SearchRequest{
		Query:     "reset",
		Index:     "kb-2",
		Size:      5,
		QueryType: domain.QueryVector,
	}, rt.search.got)
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	_, cleanup := setupTestRuntime(searchRuntime())
	defer cleanup()

	out, err := execute("search", "--json", "reset")

	require.NoError(t, err)
	var resp domain.SearchResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 3, resp.TotalHits)
	assert.Len(t, resp.Hits, 2)
}

func TestSearchCmd_JSONEmptyHits(t *testing.T) {
	_, cleanup := setupTestRuntime(newMockRuntime())
	defer cleanup()

	out, err := execute("search", "--json", "nothing")

	require.NoError(t, err)
	assert.Contains(t, out, `"hits": []`)
}

func TestSearchCmd_ServiceNotConfigured(t *testing.T) {
	rt := searchRuntime()
	rt.searchErr = errNotConfigured
	_, cleanup := setupTestRuntime(rt)
	defer cleanup()

	_, err := execute("search", "test")

	assert.ErrorIs(t, err, errNotConfigured)
}

func TestSearchCmd_SearchError(t *testing.T) {
	rt := searchRuntime()
	rt.search.err = domain.ErrInvalidInput
	_, cleanup := setupTestRuntime(rt)
	defer cleanup()

	_, err := execute("search", "test")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "search failed")
}

func TestOutputSearchTable_EmptyResults(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)

	outputSearchTable(rootCmd, &domain.SearchResponse{})

	assert.Contains(t, buf.String(), "No results found")
}

func TestFirstHighlight(t *testing.T) {
	tests := []struct {
		name       string
		highlights map[string][]string
		want       string
	}{
		{"none", nil, ""},
		{"content wins", map[string][]string{"title": {"t"}, "content": {"c"}}, "c"},
		{"sorted fallback", map[string][]string{"title": {"t"}, "body": {"b"}}, "b"},
		{"empty fragments", map[string][]string{"content": {}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, firstHighlight(tt.highlights))
		})
	}
}
