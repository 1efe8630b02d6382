package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docdup-cli/internal/core/domain"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestNewLoader(t *testing.T) {
	t.Run("requires a root", func(t *testing.T) {
		_, err := NewLoader(Config{})
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	})

	t.Run("rejects a missing root", func(t *testing.T) {
		_, err := NewLoader(Config{Root: filepath.Join(t.TempDir(), "nope")})
		assert.Error(t, err)
	})

	t.Run("rejects an invalid glob", func(t *testing.T) {
		_, err := NewLoader(Config{Root: t.TempDir(), Include: []string{"[broken"}})
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	})
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("loads matching files with relative IDs", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "readme.md", "# Readme")
		writeFile(t, root, "docs/guide.md", "# Guide")
		writeFile(t, root, "main.go", "package main")

		loader, err := NewLoader(Config{Root: root})
		require.NoError(t, err)

		docs, err := loader.Load(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 2)

		ids := []string{docs[0].ID, docs[1].ID}
		assert.Contains(t, ids, "readme.md")
		assert.Contains(t, ids, "docs/guide.md")
	})

	t.Run("honours exclusion patterns", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "keep.md", "kept")
		writeFile(t, root, "node_modules/pkg/readme.md", "skipped")
		writeFile(t, root, "drafts/old.md", "skipped")

		loader, err := NewLoader(Config{
			Root:    root,
			Exclude: []string{"**/node_modules/**", "drafts/**"},
		})
		require.NoError(t, err)

		docs, err := loader.Load(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "keep.md", docs[0].ID)
	})

	t.Run("skips oversized files", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "small.md", "ok")
		writeFile(t, root, "big.md", "this content is larger than the limit")

		loader, err := NewLoader(Config{Root: root, MaxFileSize: 10})
		require.NoError(t, err)

		docs, err := loader.Load(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "small.md", docs[0].ID)
	})

	t.Run("fills document fields", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "notes/plan.md", "the plan")

		loader, err := NewLoader(Config{Root: root})
		require.NoError(t, err)

		docs, err := loader.Load(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "plan", docs[0].Title)
		assert.Equal(t, "the plan", docs[0].Content)
		assert.Equal(t, ".md", docs[0].Metadata["extension"])
		assert.Contains(t, docs[0].URI, "file://")
	})

	t.Run("cancellation aborts the walk", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "a.md", "content")

		loader, err := NewLoader(Config{Root: root})
		require.NoError(t, err)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err = loader.Load(cancelled)
		assert.Error(t, err)
	})
}

func TestWatch(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "watched.md", "original")

	loader, err := NewLoader(Config{Root: root})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- loader.Watch(ctx)
	}()

	// Give the watcher a moment to register, then touch the file.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, root, "watched.md", "changed")

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("watch did not observe the change")
	}
}

func TestWatchCancellation(t *testing.T) {
	root := t.TempDir()
	loader, err := NewLoader(Config{Root: root})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- loader.Watch(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not return on cancellation")
	}
}
