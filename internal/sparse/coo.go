package sparse

import "fmt"

// element is a single (row, col, value) triple. Insertion order carries no
// meaning; ToCSR groups by row regardless.
type element struct {
	row, col int
	val      float64
}

// COO is a coordinate-list sparse matrix. It supports amortized O(1) append
// and is used transiently: during transition-matrix construction and as the
// residual link matrix while sparsifying.
type COO struct {
	n      int
	elems  []element
	budget int // 0 means grow on demand
}

// NewCOO creates an empty n×n COO matrix that grows on demand.
func NewCOO(n int) *COO {
	return &COO{n: n}
}

// NewCOOWithBudget creates an empty n×n COO matrix preallocated for at most
// budget elements. Append fails with ErrCapacityExceeded once the budget is
// spent; exceeding it signals a construction-time size estimation bug.
func NewCOOWithBudget(n, budget int) *COO {
	return &COO{n: n, elems: make([]element, 0, budget), budget: budget}
}

// Dim returns the matrix dimension.
func (m *COO) Dim() int { return m.n }

// Len returns the number of stored elements.
func (m *COO) Len() int { return len(m.elems) }

// Append adds an element. Duplicate (row, col) pairs are kept; their values
// add up under multiplication.
func (m *COO) Append(row, col int, val float64) error {
	if row < 0 || row >= m.n || col < 0 || col >= m.n {
		return fmt.Errorf("%w: (%d, %d) in %d×%d matrix", ErrOutOfRange, row, col, m.n, m.n)
	}
	if m.budget > 0 && len(m.elems) == m.budget {
		return fmt.Errorf("%w: budget %d", ErrCapacityExceeded, m.budget)
	}
	m.elems = append(m.elems, element{row: row, col: col, val: val})
	return nil
}

// Transpose swaps the row and column role of every element in place. The
// transition matrix is built in natural row-as-source order and transposed
// once, because the iteration multiplies by Pᵀ.
func (m *COO) Transpose() {
	for i := range m.elems {
		m.elems[i].row, m.elems[i].col = m.elems[i].col, m.elems[i].row
	}
}

// MulVec computes dst = M·x by scattering element products. dst and x must
// be distinct slices of length Dim.
func (m *COO) MulVec(dst, x []float64) error {
	if len(dst) != m.n || len(x) != m.n {
		return fmt.Errorf("%w: want %d, got dst %d / x %d", ErrDimensionMismatch, m.n, len(dst), len(x))
	}
	for i := range dst {
		dst[i] = 0
	}
	for _, e := range m.elems {
		dst[e.row] += e.val * x[e.col]
	}
	return nil
}

// ToCSR converts the matrix to compressed-sparse-row form with a counting
// pass per row followed by a prefix sum. Rows with no elements (dangling
// pages) get a zero-width offset span.
func (m *COO) ToCSR() *CSR {
	counts := make([]int, m.n)
	for _, e := range m.elems {
		counts[e.row]++
	}

	offsets := make([]int, m.n+1)
	for i := 0; i < m.n; i++ {
		offsets[i+1] = offsets[i] + counts[i]
	}

	nnz := len(m.elems)
	cols := make([]int, nnz)
	vals := make([]float64, nnz)

	// cursor tracks the next free slot inside each row's span.
	cursor := make([]int, m.n)
	copy(cursor, offsets[:m.n])
	for _, e := range m.elems {
		cols[cursor[e.row]] = e.col
		vals[cursor[e.row]] = e.val
		cursor[e.row]++
	}

	return &CSR{n: m.n, rowOffsets: offsets, cols: cols, vals: vals}
}
