package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeCmd_Use(t *testing.T) {
	assert.Equal(t, "merge <source> <target>", mergeCmd.Use)
}

func TestMergeCmd_RequiresTwoArgs(t *testing.T) {
	_, err := execute(t, "merge", "only-one")
	assert.Error(t, err)
}

func TestMergeCmd_WritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "source.md")
	target := filepath.Join(dir, "target.md")
	output := filepath.Join(dir, "merged.md")

	require.NoError(t, os.WriteFile(source, []byte("Shared paragraph of enough length here.\n\nUnique source paragraph that must be appended."), 0644))
	require.NoError(t, os.WriteFile(target, []byte("Shared paragraph of enough length here."), 0644))

	out, err := execute(t, "merge", source, target, "-o", output, "--data-dir", t.TempDir())
	defer func() { mergeOutput = "" }()

	require.NoError(t, err)
	assert.Contains(t, out, "Merged 1 sections")

	merged, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(merged), "Unique source paragraph")
	assert.Contains(t, string(merged), "<!-- merged from")
}

func TestMergeCmd_NoAnnotate(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "source.md")
	target := filepath.Join(dir, "target.md")
	output := filepath.Join(dir, "merged.md")

	require.NoError(t, os.WriteFile(source, []byte("A wholly distinct source paragraph to append."), 0644))
	require.NoError(t, os.WriteFile(target, []byte("The original target paragraph stays first."), 0644))

	_, err := execute(t, "merge", source, target, "-o", output, "--no-annotate", "--data-dir", t.TempDir())
	defer func() {
		mergeOutput = ""
		mergeNoAnnotate = false
	}()

	require.NoError(t, err)
	merged, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.NotContains(t, string(merged), "<!-- merged from")
}

func TestMergeCmd_RejectsBadThreshold(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "source.md")
	target := filepath.Join(dir, "target.md")
	require.NoError(t, os.WriteFile(source, []byte("text"), 0644))
	require.NoError(t, os.WriteFile(target, []byte("text"), 0644))

	_, err := execute(t, "merge", source, target, "--match-threshold", "150", "--data-dir", t.TempDir())
	defer func() { mergeMatchThreshold = 0 }()

	assert.Error(t, err)
}
