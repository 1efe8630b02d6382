package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docdup-cli/internal/core/domain"
	"github.com/custodia-labs/docdup-cli/internal/core/services"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	lexical := services.NewLexicalCalculator()
	merger, err := services.NewMergeService(lexical)
	require.NoError(t, err)

	server, err := NewServer(&Ports{
		Calculator: lexical,
		Clusterer:  services.NewClusterService(),
		Merger:     merger,
	})
	require.NoError(t, err)
	return server
}

func TestNewServer(t *testing.T) {
	t.Run("requires a calculator", func(t *testing.T) {
		_, err := NewServer(&Ports{Clusterer: services.NewClusterService()})
		assert.ErrorIs(t, err, ErrMissingCalculator)
	})

	t.Run("requires a clusterer", func(t *testing.T) {
		_, err := NewServer(&Ports{Calculator: services.NewLexicalCalculator()})
		assert.ErrorIs(t, err, ErrMissingClusterer)
	})
}

func TestServer_handleMatrix(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t)

	t.Run("returns labels, rows and stats", func(t *testing.T) {
		input := MatrixInput{
			Documents: []DocumentInput{
				{ID: "a", Content: "the quick brown fox"},
				{ID: "b", Content: "the quick brown fox"},
				{ID: "c", Content: "unrelated words entirely"},
			},
		}
		_, output, err := server.handleMatrix(ctx, nil, input)
		require.NoError(t, err)

		assert.Equal(t, []string{"a", "b", "c"}, output.Labels)
		require.Len(t, output.Rows, 3)
		assert.Equal(t, 1.0, output.Rows[0][1])
		assert.Equal(t, 1.0, output.Rows[0][0])
		assert.Equal(t, 3, output.Stats.Pairs)
	})

	t.Run("rejects fewer than two documents", func(t *testing.T) {
		input := MatrixInput{Documents: []DocumentInput{{ID: "only", Content: "text"}}}
		_, _, err := server.handleMatrix(ctx, nil, input)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("rejects documents without an id", func(t *testing.T) {
		input := MatrixInput{Documents: []DocumentInput{
			{ID: "a", Content: "text"},
			{Content: "text"},
		}}
		_, _, err := server.handleMatrix(ctx, nil, input)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestServer_handleDuplicates(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t)

	t.Run("clusters near-duplicates with a default threshold", func(t *testing.T) {
		input := DuplicatesInput{
			Documents: []DocumentInput{
				{ID: "a", Content: "shared words make these two documents nearly identical"},
				{ID: "b", Content: "shared words make these two documents nearly identical"},
				{ID: "c", Content: "something else entirely different here"},
			},
		}
		_, output, err := server.handleDuplicates(ctx, nil, input)
		require.NoError(t, err)

		require.Len(t, output.Clusters, 1)
		assert.Equal(t, []string{"a", "b"}, output.Clusters[0])
		require.Len(t, output.Pairs, 1)
		assert.Equal(t, "a", output.Pairs[0].Source)
		assert.Equal(t, 1.0, output.Pairs[0].Score)
	})

	t.Run("no clusters below threshold", func(t *testing.T) {
		input := DuplicatesInput{
			Documents: []DocumentInput{
				{ID: "a", Content: "completely distinct first document"},
				{ID: "b", Content: "utterly unrelated second text"},
			},
			Threshold: 0.95,
		}
		_, output, err := server.handleDuplicates(ctx, nil, input)
		require.NoError(t, err)
		assert.Empty(t, output.Clusters)
		assert.Empty(t, output.Pairs)
	})
}

func TestServer_handleMerge(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t)

	t.Run("merges unique sections", func(t *testing.T) {
		input := MergeInput{
			SourceID:      "source.md",
			SourceContent: "A wholly unique section from the source document.",
			TargetID:      "target.md",
			TargetContent: "The target keeps its own paragraph of content.",
		}
		_, output, err := server.handleMerge(ctx, nil, input)
		require.NoError(t, err)

		assert.Equal(t, 1, output.SectionsAdded)
		assert.Contains(t, output.MergedText, "The target keeps its own paragraph")
		assert.Contains(t, output.MergedText, "A wholly unique section")
	})

	t.Run("requires both ids", func(t *testing.T) {
		_, _, err := server.handleMerge(ctx, nil, MergeInput{SourceID: "s"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
