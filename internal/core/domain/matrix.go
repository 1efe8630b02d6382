package domain

import (
	"fmt"
	"math"
	"sort"
)

// MatrixFormat identifies the internal representation of a Matrix.
// Conversion between formats is exact: values are copied, never recomputed.
type MatrixFormat string

// Supported matrix representations.
const (
	// MatrixFormatDense stores all n*n cells row-major.
	MatrixFormatDense MatrixFormat = "dense"

	// MatrixFormatTriplet stores only non-zero off-diagonal cells of the
	// upper triangle. Compact for heavily thresholded matrices.
	MatrixFormatTriplet MatrixFormat = "triplet"
)

// NormalizeMethod selects how off-diagonal matrix values are rescaled.
type NormalizeMethod string

// Supported normalization methods.
const (
	NormalizeNone   NormalizeMethod = "none"
	NormalizeMinMax NormalizeMethod = "minmax"
	NormalizeZScore NormalizeMethod = "zscore"
)

// matrixEpsilon is the tolerance for symmetry and diagonal checks.
const matrixEpsilon = 1e-9

// tripletEntry is one stored cell of a triplet-format matrix.
// Only upper-triangle cells (row < col) are stored.
type tripletEntry struct {
	row, col int
	value    float64
}

// Matrix is a square, symmetric similarity table indexed by an ordered
// list of document IDs (the label vector). The diagonal is always 1.0.
// A Matrix is immutable once constructed; transformations return new
// values, so a Matrix can be shared across goroutines without locking.
type Matrix struct {
	labels []string
	format MatrixFormat
	dense  []float64      // row-major, len n*n; set for dense format
	sparse []tripletEntry // upper-triangle non-zeros; set for triplet format
}

// NewMatrix builds a dense Matrix from rows, validating the invariants:
// the table must be square with dimension len(labels), symmetric, and
// have a unit diagonal. Violations fail with ErrInvalidInput.
func NewMatrix(labels []string, rows [][]float64) (*Matrix, error) {
	n := len(labels)
	if len(rows) != n {
		return nil, fmt.Errorf("matrix: %d rows for %d labels: %w", len(rows), n, ErrInvalidInput)
	}
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("matrix: row %d has %d columns, want %d: %w", i, len(row), n, ErrInvalidInput)
		}
	}
	dense := make([]float64, n*n)
	for i := 0; i < n; i++ {
		if math.Abs(rows[i][i]-1.0) > matrixEpsilon {
			return nil, fmt.Errorf("matrix: diagonal cell %d is %v, want 1.0: %w", i, rows[i][i], ErrInvalidInput)
		}
		for j := 0; j < n; j++ {
			if math.Abs(rows[i][j]-rows[j][i]) > matrixEpsilon {
				return nil, fmt.Errorf("matrix: asymmetric cells (%d,%d): %w", i, j, ErrInvalidInput)
			}
			dense[i*n+j] = rows[i][j]
		}
	}
	return &Matrix{labels: copyLabels(labels), format: MatrixFormatDense, dense: dense}, nil
}

// CreateEmpty builds a dense Matrix with every off-diagonal cell set to
// fill. The diagonal is forced to 1.0 regardless of fill.
func CreateEmpty(labels []string, fill float64) *Matrix {
	n := len(labels)
	dense := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				dense[i*n+j] = 1.0
			} else {
				dense[i*n+j] = fill
			}
		}
	}
	return &Matrix{labels: copyLabels(labels), format: MatrixFormatDense, dense: dense}
}

// newDense wraps an already-valid dense buffer. Internal constructor for
// transformations that preserve the invariants by construction.
func newDense(labels []string, dense []float64) *Matrix {
	return &Matrix{labels: labels, format: MatrixFormatDense, dense: dense}
}

// Dim returns the number of documents (and rows/columns).
func (m *Matrix) Dim() int {
	return len(m.labels)
}

// Format returns the internal representation.
func (m *Matrix) Format() MatrixFormat {
	return m.format
}

// Labels returns a copy of the ordered document ID vector.
func (m *Matrix) Labels() []string {
	return copyLabels(m.labels)
}

// IndexOf returns the row index of a document ID, or -1 if absent.
func (m *Matrix) IndexOf(id string) int {
	for i, label := range m.labels {
		if label == id {
			return i
		}
	}
	return -1
}

// At returns the cell (i, j). It panics when indices are out of range,
// matching slice semantics.
func (m *Matrix) At(i, j int) float64 {
	n := m.Dim()
	if i < 0 || i >= n || j < 0 || j >= n {
		panic(fmt.Sprintf("matrix: index (%d,%d) out of range for dimension %d", i, j, n))
	}
	if m.format == MatrixFormatDense {
		return m.dense[i*n+j]
	}
	if i == j {
		return 1.0
	}
	if i > j {
		i, j = j, i
	}
	for _, e := range m.sparse {
		if e.row == i && e.col == j {
			return e.value
		}
	}
	return 0.0
}

// Rows returns a copy of the full table, row by row. Intended for export;
// mutating the returned slices does not affect the Matrix.
func (m *Matrix) Rows() [][]float64 {
	n := m.Dim()
	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		rows[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			rows[i][j] = m.At(i, j)
		}
	}
	return rows
}

// Convert returns a Matrix with the same values in the target format.
// Values round-trip exactly through any sequence of conversions.
func (m *Matrix) Convert(target MatrixFormat) (*Matrix, error) {
	switch target {
	case MatrixFormatDense:
		if m.format == MatrixFormatDense {
			return m, nil
		}
		return newDense(m.labels, m.toDense()), nil
	case MatrixFormatTriplet:
		if m.format == MatrixFormatTriplet {
			return m, nil
		}
		n := m.Dim()
		var sparse []tripletEntry
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if v := m.dense[i*n+j]; v != 0 {
					sparse = append(sparse, tripletEntry{row: i, col: j, value: v})
				}
			}
		}
		return &Matrix{labels: m.labels, format: MatrixFormatTriplet, sparse: sparse}, nil
	default:
		return nil, fmt.Errorf("matrix: unknown format %q: %w", target, ErrInvalidConfig)
	}
}

// toDense materializes the full row-major buffer regardless of format.
func (m *Matrix) toDense() []float64 {
	n := m.Dim()
	if m.format == MatrixFormatDense {
		out := make([]float64, n*n)
		copy(out, m.dense)
		return out
	}
	out := make([]float64, n*n)
	for i := 0; i < n; i++ {
		out[i*n+i] = 1.0
	}
	for _, e := range m.sparse {
		out[e.row*n+e.col] = e.value
		out[e.col*n+e.row] = e.value
	}
	return out
}

// Normalize rescales the off-diagonal values and returns a new Matrix in
// the same format. When all off-diagonal values are equal there is nothing
// to rescale and the input is returned unchanged. An unknown method fails
// with ErrInvalidConfig.
func (m *Matrix) Normalize(method NormalizeMethod) (*Matrix, error) {
	switch method {
	case NormalizeNone:
		return m, nil
	case NormalizeMinMax, NormalizeZScore:
	default:
		return nil, fmt.Errorf("matrix: unknown normalize method %q: %w", method, ErrInvalidConfig)
	}

	values := m.offDiagonal()
	if len(values) == 0 {
		return m, nil
	}
	min, max := values[0], values[0]
	sum := 0.0
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	if max-min <= matrixEpsilon {
		// Constant field cannot be normalized.
		return m, nil
	}

	var rescale func(v float64) float64
	if method == NormalizeMinMax {
		rescale = func(v float64) float64 { return (v - min) / (max - min) }
	} else {
		mean := sum / float64(len(values))
		variance := 0.0
		for _, v := range values {
			variance += (v - mean) * (v - mean)
		}
		std := math.Sqrt(variance / float64(len(values)))
		if std <= matrixEpsilon {
			return m, nil
		}
		rescale = func(v float64) float64 { return (v - mean) / std }
	}

	n := m.Dim()
	dense := m.toDense()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := rescale(dense[i*n+j])
			dense[i*n+j] = v
			dense[j*n+i] = v
		}
	}
	result := newDense(m.labels, dense)
	if m.format == MatrixFormatTriplet {
		return result.Convert(MatrixFormatTriplet)
	}
	return result, nil
}

// FilterByThreshold zeroes off-diagonal cells below threshold and returns
// a new Matrix in the same format. The diagonal is re-forced to 1.0.
func (m *Matrix) FilterByThreshold(threshold float64) *Matrix {
	n := m.Dim()
	dense := m.toDense()
	for i := 0; i < n; i++ {
		dense[i*n+i] = 1.0
		for j := i + 1; j < n; j++ {
			if dense[i*n+j] < threshold {
				dense[i*n+j] = 0.0
				dense[j*n+i] = 0.0
			}
		}
	}
	result := newDense(m.labels, dense)
	if m.format == MatrixFormatTriplet {
		converted, _ := result.Convert(MatrixFormatTriplet)
		return converted
	}
	return result
}

// MatrixStats summarizes the upper triangle of a similarity matrix.
type MatrixStats struct {
	// Pairs is the number of unordered document pairs.
	Pairs int

	// Mean, Std, Min, Max and Median describe the off-diagonal scores.
	Mean   float64
	Std    float64
	Min    float64
	Max    float64
	Median float64

	// High counts pairs scoring >= 0.8, Medium pairs in [0.5, 0.8),
	// Low pairs below 0.5.
	High   int
	Medium int
	Low    int
}

// Stats computes summary statistics over the upper triangle. A matrix with
// fewer than two documents yields all-zero stats, not an error.
func (m *Matrix) Stats() MatrixStats {
	values := m.offDiagonal()
	if len(values) == 0 {
		return MatrixStats{}
	}

	stats := MatrixStats{Pairs: len(values), Min: values[0], Max: values[0]}
	sum := 0.0
	for _, v := range values {
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
		sum += v
		switch {
		case v >= 0.8:
			stats.High++
		case v >= 0.5:
			stats.Medium++
		default:
			stats.Low++
		}
	}
	stats.Mean = sum / float64(len(values))

	variance := 0.0
	for _, v := range values {
		variance += (v - stats.Mean) * (v - stats.Mean)
	}
	stats.Std = math.Sqrt(variance / float64(len(values)))

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		stats.Median = sorted[mid]
	} else {
		stats.Median = (sorted[mid-1] + sorted[mid]) / 2
	}

	return stats
}

// Equal reports whether two matrices have the same labels and the same
// values within floating-point tolerance, regardless of format.
func (m *Matrix) Equal(o *Matrix) bool {
	if o == nil || m.Dim() != o.Dim() {
		return false
	}
	for i, label := range m.labels {
		if o.labels[i] != label {
			return false
		}
	}
	n := m.Dim()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if math.Abs(m.At(i, j)-o.At(i, j)) > matrixEpsilon {
				return false
			}
		}
	}
	return true
}

// offDiagonal collects the upper-triangle values, excluding the diagonal.
func (m *Matrix) offDiagonal() []float64 {
	n := m.Dim()
	if n < 2 {
		return nil
	}
	values := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			values = append(values, m.At(i, j))
		}
	}
	return values
}

func copyLabels(labels []string) []string {
	out := make([]string, len(labels))
	copy(out, labels)
	return out
}
