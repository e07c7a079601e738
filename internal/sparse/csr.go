package sparse

import "fmt"

// CSR is a compressed-sparse-row matrix: rowOffsets has length n+1 and is
// monotonically non-decreasing; cols and vals are parallel slices of length
// NNZ. It is built once via COO.ToCSR and then mutated only by zeroing.
type CSR struct {
	n          int
	rowOffsets []int
	cols       []int
	vals       []float64
}

// Dim returns the matrix dimension.
func (m *CSR) Dim() int { return m.n }

// NNZ returns the number of stored entries, including entries that have been
// zeroed in place.
func (m *CSR) NNZ() int { return m.rowOffsets[m.n] }

// RowDot returns the dot product of row i with x. It reads only row-local
// state, so callers may evaluate disjoint row ranges concurrently.
func (m *CSR) RowDot(i int, x []float64) float64 {
	var sum float64
	for j := m.rowOffsets[i]; j < m.rowOffsets[i+1]; j++ {
		sum += m.vals[j] * x[m.cols[j]]
	}
	return sum
}

// MulVec computes dst = M·x row by row. dst and x must be distinct slices of
// length Dim.
func (m *CSR) MulVec(dst, x []float64) error {
	if len(dst) != m.n || len(x) != m.n {
		return fmt.Errorf("%w: want %d, got dst %d / x %d", ErrDimensionMismatch, m.n, len(dst), len(x))
	}
	for i := 0; i < m.n; i++ {
		dst[i] = m.RowDot(i, x)
	}
	return nil
}

// ZeroRow overwrites every value in row i with zero. Column indices and row
// offsets stay structurally intact: zeroed entries still occupy storage but
// contribute nothing to future multiplies. The trade is memory for
// simplicity; the matrix never compacts.
func (m *CSR) ZeroRow(i int) error {
	if i < 0 || i >= m.n {
		return fmt.Errorf("%w: row %d in %d×%d matrix", ErrOutOfRange, i, m.n, m.n)
	}
	for j := m.rowOffsets[i]; j < m.rowOffsets[i+1]; j++ {
		m.vals[j] = 0
	}
	return nil
}

// ZeroCol overwrites every value in column j with zero. Entries of one
// column are scattered across many rows, so concurrent callers must not
// overlap with ZeroRow or ZeroCol on other pages.
func (m *CSR) ZeroCol(j int) error {
	if j < 0 || j >= m.n {
		return fmt.Errorf("%w: column %d in %d×%d matrix", ErrOutOfRange, j, m.n, m.n)
	}
	for k, c := range m.cols {
		if c == j {
			m.vals[k] = 0
		}
	}
	return nil
}

// ForEachInCol calls fn for every non-zero entry stored in column j.
// Column entries are scattered across rows, so this walks the full matrix.
func (m *CSR) ForEachInCol(j int, fn func(row int, val float64)) {
	for i := 0; i < m.n; i++ {
		for k := m.rowOffsets[i]; k < m.rowOffsets[i+1]; k++ {
			if m.cols[k] == j && m.vals[k] != 0 {
				fn(i, m.vals[k])
			}
		}
	}
}

// Row returns the column indices and values of row i. Both slices alias the
// matrix storage and must not be mutated by the caller.
func (m *CSR) Row(i int) (cols []int, vals []float64) {
	lo, hi := m.rowOffsets[i], m.rowOffsets[i+1]
	return m.cols[lo:hi], m.vals[lo:hi]
}
