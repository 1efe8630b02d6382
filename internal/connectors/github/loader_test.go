package github

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docdup-cli/internal/core/domain"
)

func TestNewLoader(t *testing.T) {
	ctx := context.Background()

	t.Run("requires owner and repo", func(t *testing.T) {
		_, err := NewLoader(ctx, Config{Owner: "custodia-labs"})
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)

		_, err = NewLoader(ctx, Config{Repo: "docs"})
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	})

	t.Run("rejects an invalid glob", func(t *testing.T) {
		_, err := NewLoader(ctx, Config{Owner: "o", Repo: "r", Include: []string{"[broken"}})
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	})

	t.Run("works without a token for public repos", func(t *testing.T) {
		loader, err := NewLoader(ctx, Config{Owner: "o", Repo: "r"})
		require.NoError(t, err)
		assert.Equal(t, "github:o/r", loader.Name())
	})
}

func TestMatches(t *testing.T) {
	loader, err := NewLoader(context.Background(), Config{Owner: "o", Repo: "r"})
	require.NoError(t, err)

	assert.True(t, loader.matches("README.md"))
	assert.True(t, loader.matches("docs/guide/intro.markdown"))
	assert.True(t, loader.matches("notes.txt"))
	assert.False(t, loader.matches("main.go"))
	assert.False(t, loader.matches("assets/logo.png"))

	custom, err := NewLoader(context.Background(), Config{Owner: "o", Repo: "r", Include: []string{"docs/**"}})
	require.NoError(t, err)
	assert.True(t, custom.matches("docs/a.md"))
	assert.False(t, custom.matches("README.md"))
}
