package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestSetAndGet(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("similarity.threshold", 0.9))
	require.NoError(t, store.Set("embedding.provider", "ollama"))
	require.NoError(t, store.Set("merge.annotate", true))

	assert.Equal(t, 0.9, store.GetFloat("similarity.threshold"))
	assert.Equal(t, "ollama", store.GetString("embedding.provider"))
	assert.True(t, store.GetBool("merge.annotate"))

	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestPersistence(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("embedding.model", "nomic-embed-text"))
	require.NoError(t, store.Set("loader.exclude", []string{"vendor/**", "node_modules/**"}))

	// A fresh store reads the persisted values back.
	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", reopened.GetString("embedding.model"))
	assert.Equal(t, []string{"vendor/**", "node_modules/**"}, reopened.GetStringSlice("loader.exclude"))
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("key", "value"))
	require.NoError(t, store.Delete("key"))

	_, ok := store.Get("key")
	assert.False(t, ok)
}

func TestLoadFlattensNestedTables(t *testing.T) {
	dir := t.TempDir()
	content := "[similarity]\nthreshold = 0.85\nworkers = 4\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, 0.85, store.GetFloat("similarity.threshold"))
	assert.Equal(t, 4, store.GetInt("similarity.workers"))
}

func TestTypeMismatchesReturnZeroValues(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("key", "text"))

	assert.Equal(t, 0, store.GetInt("key"))
	assert.Equal(t, 0.0, store.GetFloat("key"))
	assert.False(t, store.GetBool("key"))
	assert.Nil(t, store.GetStringSlice("key"))
}
