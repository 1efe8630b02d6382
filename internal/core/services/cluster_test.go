package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docdup-cli/internal/core/domain"
)

func TestFindClusters(t *testing.T) {
	finder := NewClusterService()

	t.Run("transitive connection forms one cluster", func(t *testing.T) {
		// A-B and A-C are similar; B-C is not. All three belong to one
		// cluster through A.
		m, err := domain.NewMatrix([]string{"A", "B", "C"}, [][]float64{
			{1.0, 0.95, 0.95},
			{0.95, 1.0, 0.1},
			{0.95, 0.1, 1.0},
		})
		require.NoError(t, err)

		clusters, err := finder.FindClusters(m, 0.9)
		require.NoError(t, err)
		require.Len(t, clusters, 1)
		assert.Equal(t, []string{"A", "B", "C"}, clusters[0].Members)
	})

	t.Run("separate components form separate clusters", func(t *testing.T) {
		m, err := domain.NewMatrix([]string{"a", "b", "c", "d"}, [][]float64{
			{1.0, 0.95, 0.0, 0.0},
			{0.95, 1.0, 0.0, 0.0},
			{0.0, 0.0, 1.0, 0.92},
			{0.0, 0.0, 0.92, 1.0},
		})
		require.NoError(t, err)

		clusters, err := finder.FindClusters(m, 0.9)
		require.NoError(t, err)
		require.Len(t, clusters, 2)
		assert.Equal(t, []string{"a", "b"}, clusters[0].Members)
		assert.Equal(t, []string{"c", "d"}, clusters[1].Members)
	})

	t.Run("clusters are disjoint", func(t *testing.T) {
		m, err := domain.NewMatrix([]string{"a", "b", "c", "d", "e"}, [][]float64{
			{1.0, 0.91, 0.0, 0.0, 0.0},
			{0.91, 1.0, 0.93, 0.0, 0.0},
			{0.0, 0.93, 1.0, 0.0, 0.0},
			{0.0, 0.0, 0.0, 1.0, 0.99},
			{0.0, 0.0, 0.0, 0.99, 1.0},
		})
		require.NoError(t, err)

		clusters, err := finder.FindClusters(m, 0.9)
		require.NoError(t, err)

		seen := make(map[string]bool)
		for _, cluster := range clusters {
			assert.GreaterOrEqual(t, cluster.Size(), 2)
			for _, member := range cluster.Members {
				assert.False(t, seen[member], "document %s appears in two clusters", member)
				seen[member] = true
			}
		}
	})

	t.Run("singletons are discarded", func(t *testing.T) {
		m, err := domain.NewMatrix([]string{"a", "b", "c"}, [][]float64{
			{1.0, 0.95, 0.2},
			{0.95, 1.0, 0.2},
			{0.2, 0.2, 1.0},
		})
		require.NoError(t, err)

		clusters, err := finder.FindClusters(m, 0.9)
		require.NoError(t, err)
		require.Len(t, clusters, 1)
		assert.False(t, clusters[0].Contains("c"))
	})

	t.Run("no duplicates yields no clusters", func(t *testing.T) {
		m := domain.CreateEmpty([]string{"a", "b", "c"}, 0.0)
		clusters, err := finder.FindClusters(m, 0.9)
		require.NoError(t, err)
		assert.Empty(t, clusters)
	})

	t.Run("rejects threshold outside [0,1]", func(t *testing.T) {
		m := domain.CreateEmpty([]string{"a", "b"}, 0.0)
		_, err := finder.FindClusters(m, 1.01)
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	})

	t.Run("rejects a nil matrix", func(t *testing.T) {
		_, err := finder.FindClusters(nil, 0.9)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
