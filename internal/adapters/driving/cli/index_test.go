package cli

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kbrag/internal/adapters/driven/storage/jsonl"
	"github.com/custodia-labs/kbrag/internal/core/domain"
)

func writeArticles(t *testing.T, articles []domain.CuratedArticle) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "articles.jsonl")
	require.NoError(t, jsonl.WriteAll(path, articles))
	return path
}

func TestIndexCmd_FromFile(t *testing.T) {
	rt := newMockRuntime()
	_, cleanup := setupTestRuntime(rt)
	defer cleanup()

	path := writeArticles(t, []domain.CuratedArticle{
		{ID: 1, Title: "Reset password", Body: "Click reset."},
		{ID: 2, Title: "Invoices", Body: "Open billing."},
	})

	out, err := execute("index", path)

	require.NoError(t, err)
	require.Len(t, rt.index.got, 2)
	assert.Equal(t, int64(2), rt.index.got[1].ID)
	assert.Contains(t, out, "Indexed 2 articles as 4 chunks (0 skipped)")
}

func TestIndexCmd_FromDB(t *testing.T) {
	rt := newMockRuntime()
	rt.articles = &mockArticleService{articles: []domain.CuratedArticle{{ID: 7, Body: "text"}}}
	_, cleanup := setupTestRuntime(rt)
	defer cleanup()

	out, err := execute("index", "--db")

	require.NoError(t, err)
	require.Len(t, rt.index.got, 1)
	assert.Contains(t, out, "Indexed 1 articles")
}

func TestIndexCmd_SourceRequired(t *testing.T) {
	_, cleanup := setupTestRuntime(newMockRuntime())
	defer cleanup()

	_, err := execute("index")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "either a JSONL file or --db")

	_, err = execute("index", "--db", "file.jsonl")
	require.Error(t, err)
}

func TestIndexCmd_EmptyFile(t *testing.T) {
	rt := newMockRuntime()
	rt.indexErr = errors.New("must not be built")
	_, cleanup := setupTestRuntime(rt)
	defer cleanup()

	out, err := execute("index", writeArticles(t, nil))

	require.NoError(t, err)
	assert.Contains(t, out, "No articles to index.")
}

func TestIndexCmd_MissingFile(t *testing.T) {
	_, cleanup := setupTestRuntime(newMockRuntime())
	defer cleanup()

	_, err := execute("index", filepath.Join(t.TempDir(), "missing.jsonl"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading")
}

func TestIndexCmd_IndexError(t *testing.T) {
	rt := newMockRuntime()
	rt.index.err = domain.ErrEmbeddingUnavailable
	_, cleanup := setupTestRuntime(rt)
	defer cleanup()

	_, err := execute("index", writeArticles(t, []domain.CuratedArticle{{ID: 1, Body: "x"}}))

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}
