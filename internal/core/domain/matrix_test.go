package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMatrix(t *testing.T) {
	t.Run("accepts a valid symmetric matrix", func(t *testing.T) {
		m, err := NewMatrix([]string{"a", "b"}, [][]float64{
			{1.0, 0.5},
			{0.5, 1.0},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, m.Dim())
		assert.Equal(t, 0.5, m.At(0, 1))
	})

	t.Run("rejects non-square input", func(t *testing.T) {
		_, err := NewMatrix([]string{"a", "b"}, [][]float64{
			{1.0, 0.5},
			{0.5},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("rejects row count mismatch", func(t *testing.T) {
		_, err := NewMatrix([]string{"a", "b", "c"}, [][]float64{
			{1.0, 0.5},
			{0.5, 1.0},
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("rejects asymmetric values", func(t *testing.T) {
		_, err := NewMatrix([]string{"a", "b"}, [][]float64{
			{1.0, 0.5},
			{0.7, 1.0},
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("rejects non-unit diagonal", func(t *testing.T) {
		_, err := NewMatrix([]string{"a", "b"}, [][]float64{
			{0.9, 0.5},
			{0.5, 1.0},
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestCreateEmpty(t *testing.T) {
	m := CreateEmpty([]string{"a", "b", "c"}, 0.3)

	for i := 0; i < 3; i++ {
		// Diagonal is forced to 1.0 regardless of fill.
		assert.Equal(t, 1.0, m.At(i, i))
		for j := 0; j < 3; j++ {
			if i != j {
				assert.Equal(t, 0.3, m.At(i, j))
			}
		}
	}
}

func TestMatrixNormalize(t *testing.T) {
	base, err := NewMatrix([]string{"a", "b", "c"}, [][]float64{
		{1.0, 0.2, 0.6},
		{0.2, 1.0, 0.4},
		{0.6, 0.4, 1.0},
	})
	require.NoError(t, err)

	t.Run("none returns input unchanged", func(t *testing.T) {
		m, err := base.Normalize(NormalizeNone)
		require.NoError(t, err)
		assert.True(t, m.Equal(base))
	})

	t.Run("minmax rescales to [0,1]", func(t *testing.T) {
		m, err := base.Normalize(NormalizeMinMax)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, m.At(0, 1), 1e-9)
		assert.InDelta(t, 1.0, m.At(0, 2), 1e-9)
		assert.InDelta(t, 0.5, m.At(1, 2), 1e-9)
		// Diagonal and symmetry survive normalization.
		assert.Equal(t, 1.0, m.At(1, 1))
		assert.Equal(t, m.At(2, 0), m.At(0, 2))
	})

	t.Run("zscore centers on the mean", func(t *testing.T) {
		m, err := base.Normalize(NormalizeZScore)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, m.At(1, 2), 1e-9) // 0.4 is the mean
		assert.Less(t, m.At(0, 1), 0.0)
		assert.Greater(t, m.At(0, 2), 0.0)
	})

	t.Run("constant field is returned unchanged", func(t *testing.T) {
		flat := CreateEmpty([]string{"a", "b", "c"}, 0.5)
		m, err := flat.Normalize(NormalizeMinMax)
		require.NoError(t, err)
		assert.True(t, m.Equal(flat))
	})

	t.Run("unknown method fails", func(t *testing.T) {
		_, err := base.Normalize(NormalizeMethod("median"))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("original is not mutated", func(t *testing.T) {
		_, err := base.Normalize(NormalizeMinMax)
		require.NoError(t, err)
		assert.Equal(t, 0.2, base.At(0, 1))
	})
}

func TestMatrixFilterByThreshold(t *testing.T) {
	m, err := NewMatrix([]string{"a", "b", "c"}, [][]float64{
		{1.0, 0.9, 0.3},
		{0.9, 1.0, 0.7},
		{0.3, 0.7, 1.0},
	})
	require.NoError(t, err)

	filtered := m.FilterByThreshold(0.7)
	assert.Equal(t, 0.9, filtered.At(0, 1))
	assert.Equal(t, 0.7, filtered.At(1, 2))
	assert.Equal(t, 0.0, filtered.At(0, 2))
	assert.Equal(t, 1.0, filtered.At(0, 0))

	t.Run("filtering is idempotent", func(t *testing.T) {
		again := filtered.FilterByThreshold(0.7)
		assert.True(t, again.Equal(filtered))
	})

	t.Run("raising the threshold never adds edges", func(t *testing.T) {
		low := m.FilterByThreshold(0.3)
		high := m.FilterByThreshold(0.8)
		assert.GreaterOrEqual(t, countNonZeroOffDiagonal(low), countNonZeroOffDiagonal(high))
	})
}

func countNonZeroOffDiagonal(m *Matrix) int {
	count := 0
	for i := 0; i < m.Dim(); i++ {
		for j := 0; j < m.Dim(); j++ {
			if i != j && m.At(i, j) != 0 {
				count++
			}
		}
	}
	return count
}

func TestMatrixStats(t *testing.T) {
	t.Run("summarizes the upper triangle", func(t *testing.T) {
		m, err := NewMatrix([]string{"a", "b", "c"}, [][]float64{
			{1.0, 0.9, 0.5},
			{0.9, 1.0, 0.1},
			{0.5, 0.1, 1.0},
		})
		require.NoError(t, err)

		stats := m.Stats()
		assert.Equal(t, 3, stats.Pairs)
		assert.InDelta(t, 0.5, stats.Mean, 1e-9)
		assert.Equal(t, 0.1, stats.Min)
		assert.Equal(t, 0.9, stats.Max)
		assert.Equal(t, 0.5, stats.Median)
		assert.Equal(t, 1, stats.High)
		assert.Equal(t, 1, stats.Medium)
		assert.Equal(t, 1, stats.Low)
	})

	t.Run("single document yields zero stats", func(t *testing.T) {
		m := CreateEmpty([]string{"only"}, 0.0)
		assert.Equal(t, MatrixStats{}, m.Stats())
	})
}

func TestMatrixConvert(t *testing.T) {
	m, err := NewMatrix([]string{"a", "b", "c"}, [][]float64{
		{1.0, 0.25, 0.0},
		{0.25, 1.0, 0.75},
		{0.0, 0.75, 1.0},
	})
	require.NoError(t, err)

	t.Run("round-trips exactly", func(t *testing.T) {
		triplet, err := m.Convert(MatrixFormatTriplet)
		require.NoError(t, err)
		assert.Equal(t, MatrixFormatTriplet, triplet.Format())

		dense, err := triplet.Convert(MatrixFormatDense)
		require.NoError(t, err)
		assert.True(t, dense.Equal(m))
		assert.Equal(t, 0.25, triplet.At(1, 0))
		assert.Equal(t, 1.0, triplet.At(2, 2))
	})

	t.Run("unknown format fails", func(t *testing.T) {
		_, err := m.Convert(MatrixFormat("csr"))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestMatrixIndexOf(t *testing.T) {
	m := CreateEmpty([]string{"a", "b"}, 0)
	assert.Equal(t, 1, m.IndexOf("b"))
	assert.Equal(t, -1, m.IndexOf("missing"))
}
