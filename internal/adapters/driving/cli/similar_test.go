package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarCmd_Use(t *testing.T) {
	assert.Equal(t, "similar <file> [path]", similarCmd.Use)
}

func TestSimilarCmd_FindsMatches(t *testing.T) {
	dir := corpusDir(t)
	query := filepath.Join(t.TempDir(), "query.md")
	require.NoError(t, os.WriteFile(query, []byte("the quick brown fox jumps over the lazy dog"), 0644))

	out, err := execute(t, "similar", query, dir, "--threshold", "0.8", "--data-dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "a.md")
	assert.Contains(t, out, "b.md")
	assert.NotContains(t, out, "c.md")
}

func TestSimilarCmd_NoMatches(t *testing.T) {
	dir := corpusDir(t)
	query := filepath.Join(t.TempDir(), "query.md")
	require.NoError(t, os.WriteFile(query, []byte("nothing shared with any corpus file at all"), 0644))

	out, err := execute(t, "similar", query, dir, "--threshold", "0.9", "--data-dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No similar documents found.")
}

func TestSimilarCmd_MissingFile(t *testing.T) {
	_, err := execute(t, "similar", filepath.Join(t.TempDir(), "missing.md"), "--data-dir", t.TempDir())
	assert.Error(t, err)
}

func TestRunsCmd_EmptyStore(t *testing.T) {
	out, err := execute(t, "runs", "list", "--data-dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No recorded runs.")
}

func TestRunsCmd_RecordsAnalyzeRuns(t *testing.T) {
	dir := corpusDir(t)
	dataDir := t.TempDir()

	_, err := execute(t, "analyze", dir, "--threshold", "0.8", "--data-dir", dataDir)
	require.NoError(t, err)

	out, err := execute(t, "runs", "list", "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "lexical")
	assert.Contains(t, out, "0.80")
}
