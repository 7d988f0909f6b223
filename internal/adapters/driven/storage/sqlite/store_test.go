package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kbrag/internal/core/domain"
)

// setupInMemoryStore creates an in-memory SQLite store for testing.
func setupInMemoryStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func testArticle(id int64) *domain.CuratedArticle {
	return &domain.CuratedArticle{
		ID:        id,
		Title:     "Article",
		URL:       "https://help.example.com/articles/1",
		UpdatedAt: time.Date(2024, 4, 5, 6, 7, 8, 0, time.UTC),
		Outdated:  false,
		Labels:    []string{"billing", "faq"},
		Body:      "• Step one\n• Step two",
		RawBody:   "<ul><li>Step one</li><li>Step two</li></ul>",
	}
}

func TestNewStore_CreatesFile(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "articles.db"), store.Path())
	assert.FileExists(t, store.Path())
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, testArticle(1)))
	require.NoError(t, store.Close())

	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_SaveAndGet(t *testing.T) {
	store := setupInMemoryStore(t)
	ctx := context.Background()

	want := testArticle(42)
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.URL, got.URL)
	assert.Equal(t, want.Labels, got.Labels)
	assert.Equal(t, want.Body, got.Body)
	assert.Equal(t, want.RawBody, got.RawBody)
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt))
}

func TestStore_SaveUpserts(t *testing.T) {
	store := setupInMemoryStore(t)
	ctx := context.Background()

	a := testArticle(7)
	require.NoError(t, store.Save(ctx, a))

	a.Title = "Renamed"
	a.Outdated = true
	require.NoError(t, store.Save(ctx, a))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := store.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.True(t, got.Outdated)
}

func TestStore_GetNotFound(t *testing.T) {
	store := setupInMemoryStore(t)

	_, err := store.Get(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_SaveNil(t *testing.T) {
	store := setupInMemoryStore(t)
	assert.ErrorIs(t, store.Save(context.Background(), nil), domain.ErrInvalidInput)
}

func TestStore_List(t *testing.T) {
	store := setupInMemoryStore(t)
	ctx := context.Background()

	for _, id := range []int64{3, 1, 2} {
		require.NoError(t, store.Save(ctx, testArticle(id)))
	}
	empty := &domain.CuratedArticle{ID: 4}
	require.NoError(t, store.Save(ctx, empty))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 4)

	for i, a := range list {
		assert.Equal(t, int64(i+1), a.ID)
	}
	assert.Empty(t, list[3].Labels)
	assert.True(t, list[3].UpdatedAt.IsZero())
}
