package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "kbrag")

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ConfigFileName), store.Path())
	assert.Empty(t, store.Keys())
}

func TestNewConfigStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("not = [valid"), 0600))

	_, err := NewConfigStore(dir)
	assert.Error(t, err)
}

func TestConfigStore_GetSet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.model", "claude"))
	require.NoError(t, store.Set("answer.max_results", int64(10)))

	v, ok := store.Get("llm.model")
	require.True(t, ok)
	assert.Equal(t, "claude", v)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_Unset(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.model", "claude"))
	require.NoError(t, store.Set("vector.index", "kb"))
	require.NoError(t, store.Unset("llm.model"))
	require.NoError(t, store.Unset("never.set"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "[llm]")

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"vector.index"}, reloaded.Keys())
}

func TestConfigStore_PersistsNestedTables(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.provider", "anthropic"))
	require.NoError(t, store.Set("llm.model", "claude-3-5-sonnet-latest"))
	require.NoError(t, store.Set("vector.index", "kb"))
	require.NoError(t, store.Set("log_level", "debug"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[llm]")
	assert.Contains(t, string(data), "[vector]")

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"llm.model", "llm.provider", "log_level", "vector.index"}, reloaded.Keys())
	v, _ := reloaded.Get("llm.provider")
	assert.Equal(t, "anthropic", v)
}

func TestConfigStore_IntSurvivesReload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("answer.max_tokens", 4000))

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	v, ok := reloaded.Get("answer.max_tokens")
	require.True(t, ok)
	assert.Equal(t, int64(4000), v)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("llm.api_key", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("key", n)
		}(i)
		go func() {
			defer wg.Done()
			_, _ = store.Get("key")
		}()
	}
	wg.Wait()

	_, ok := store.Get("key")
	assert.True(t, ok)
}

func TestUnflattenMap(t *testing.T) {
	got := unflattenMap(map[string]any{
		"a":     1,
		"a.b":   2,
		"c.d.e": "x",
		"c.f":   true,
	})

	assert.Equal(t, map[string]any{
		"a": 1,
		"c": map[string]any{
			"d": map[string]any{"e": "x"},
			"f": true,
		},
	}, got)
}

func TestFlattenMap(t *testing.T) {
	got := flattenMap(map[string]any{
		"top": "v",
		"llm": map[string]any{"model": "m", "opts": map[string]any{"temp": 0.1}},
	}, "")

	assert.Equal(t, map[string]any{
		"top":           "v",
		"llm.model":     "m",
		"llm.opts.temp": 0.1,
	}, got)
}
