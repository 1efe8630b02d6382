package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docdup-cli/internal/core/domain"
)

func TestLexicalPairwise(t *testing.T) {
	calc := NewLexicalCalculator()
	ctx := context.Background()

	t.Run("identical texts score 1.0", func(t *testing.T) {
		score, err := calc.Pairwise(ctx, "The quick brown fox", "The quick brown fox")
		require.NoError(t, err)
		assert.Equal(t, 1.0, score)
	})

	t.Run("is symmetric", func(t *testing.T) {
		ab, err := calc.Pairwise(ctx, "alpha beta gamma", "alpha beta delta")
		require.NoError(t, err)
		ba, err := calc.Pairwise(ctx, "alpha beta delta", "alpha beta gamma")
		require.NoError(t, err)
		assert.Equal(t, ab, ba)
	})

	t.Run("ignores token order", func(t *testing.T) {
		score, err := calc.Pairwise(ctx, "quick brown fox", "fox quick brown")
		require.NoError(t, err)
		assert.Equal(t, 1.0, score)
	})

	t.Run("partial overlap scores proportionally", func(t *testing.T) {
		score, err := calc.Pairwise(ctx, "cat dog", "cat bird")
		require.NoError(t, err)
		assert.InDelta(t, 0.5, score, 1e-9)
	})

	t.Run("disjoint texts score 0.0", func(t *testing.T) {
		score, err := calc.Pairwise(ctx, "cat cat cat", "dog dog dog")
		require.NoError(t, err)
		assert.Equal(t, 0.0, score)
	})

	t.Run("rejects empty text", func(t *testing.T) {
		_, err := calc.Pairwise(ctx, "   ", "something")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = calc.Pairwise(ctx, "something", "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("rejects oversized text", func(t *testing.T) {
		small := NewLexicalCalculator(WithLexicalMaxTextLength(10))
		_, err := small.Pairwise(ctx, strings.Repeat("a", 11), "ok")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestLexicalAlgorithms(t *testing.T) {
	ctx := context.Background()

	for _, algorithm := range []LexicalAlgorithm{
		AlgorithmLevenshtein,
		AlgorithmJaroWinkler,
		AlgorithmSorensenDice,
	} {
		t.Run(string(algorithm), func(t *testing.T) {
			calc := NewLexicalCalculator(WithLexicalAlgorithm(algorithm))

			same, err := calc.Pairwise(ctx, "deduplication", "deduplication")
			require.NoError(t, err)
			assert.Equal(t, 1.0, same)

			near, err := calc.Pairwise(ctx, "deduplication", "deduplicatoin")
			require.NoError(t, err)
			assert.Greater(t, near, 0.5)
			assert.LessOrEqual(t, near, 1.0)
		})
	}
}

func TestLexicalMatrix(t *testing.T) {
	calc := NewLexicalCalculator()
	ctx := context.Background()

	docs := []domain.Document{
		{ID: "d1", Content: "the quick brown fox jumps"},
		{ID: "d2", Content: "the quick brown fox leaps"},
		{ID: "d3", Content: "entirely unrelated words here"},
	}

	t.Run("produces a symmetric matrix with unit diagonal", func(t *testing.T) {
		m, err := calc.Matrix(ctx, docs, 0.0)
		require.NoError(t, err)
		require.Equal(t, 3, m.Dim())

		for i := 0; i < 3; i++ {
			assert.Equal(t, 1.0, m.At(i, i))
			for j := 0; j < 3; j++ {
				assert.Equal(t, m.At(i, j), m.At(j, i))
			}
		}
		assert.InDelta(t, 0.8, m.At(0, 1), 1e-9)
	})

	t.Run("thresholded cells become zero, not omitted", func(t *testing.T) {
		m, err := calc.Matrix(ctx, []domain.Document{
			{ID: "d1", Content: "cat cat cat"},
			{ID: "d2", Content: "dog dog dog"},
		}, 0.9)
		require.NoError(t, err)
		assert.Equal(t, 2, m.Dim())
		assert.Equal(t, 0.0, m.At(0, 1))
	})

	t.Run("raising the threshold never adds non-zero cells", func(t *testing.T) {
		low, err := calc.Matrix(ctx, docs, 0.1)
		require.NoError(t, err)
		high, err := calc.Matrix(ctx, docs, 0.9)
		require.NoError(t, err)

		lowCount, highCount := 0, 0
		for i := 0; i < 3; i++ {
			for j := i + 1; j < 3; j++ {
				if low.At(i, j) > 0 {
					lowCount++
				}
				if high.At(i, j) > 0 {
					highCount++
				}
			}
		}
		assert.GreaterOrEqual(t, lowCount, highCount)
	})

	t.Run("rejects threshold outside [0,1]", func(t *testing.T) {
		_, err := calc.Matrix(ctx, docs, 1.5)
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	})

	t.Run("rejects duplicate document IDs", func(t *testing.T) {
		_, err := calc.Matrix(ctx, []domain.Document{
			{ID: "same", Content: "first text"},
			{ID: "same", Content: "second text"},
		}, 0.5)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("cancellation aborts the scan", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := calc.Matrix(cancelled, docs, 0.0)
		assert.ErrorIs(t, err, domain.ErrCancelled)
	})
}

func TestLexicalFindSimilar(t *testing.T) {
	calc := NewLexicalCalculator()
	ctx := context.Background()

	queries := []domain.Document{
		{ID: "q", Content: "shared vocabulary for comparison"},
	}
	candidates := []domain.Document{
		{ID: "q", Content: "shared vocabulary for comparison"},
		{ID: "c1", Content: "shared vocabulary for comparison"},
		{ID: "c2", Content: "shared vocabulary for matching"},
		{ID: "c3", Content: "nothing alike at all"},
	}

	results, err := calc.FindSimilar(ctx, queries, candidates, 0.5)
	require.NoError(t, err)

	// Self-pair is skipped; c3 is below threshold.
	require.Len(t, results, 2)
	assert.Equal(t, "c1", results[0].Target)
	assert.Equal(t, 1.0, results[0].Score)
	assert.Equal(t, "c2", results[1].Target)

	// Sorted by score descending.
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)

	t.Run("ties break on target order", func(t *testing.T) {
		results, err := calc.FindSimilar(ctx, queries, []domain.Document{
			{ID: "zz", Content: "shared vocabulary for comparison"},
			{ID: "aa", Content: "shared vocabulary for comparison"},
		}, 0.5)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "aa", results[0].Target)
		assert.Equal(t, "zz", results[1].Target)
	})
}
