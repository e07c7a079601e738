// Package sparse provides the two sparse matrix representations used by the
// PageRank solver: a growable coordinate-list (COO) form for incremental
// construction, and a compressed-sparse-row (CSR) form for the hot
// matrix-vector multiply. Both are square, indexed by page.
package sparse

import "errors"

// ErrCapacityExceeded is returned when appending to a COO matrix that was
// preallocated with a fixed element budget and the budget is exhausted.
var ErrCapacityExceeded = errors.New("sparse: element capacity exceeded")

// ErrOutOfRange is returned when a row or column index falls outside the
// matrix dimension.
var ErrOutOfRange = errors.New("sparse: index out of range")

// ErrDimensionMismatch is returned when a vector operand's length does not
// match the matrix dimension.
var ErrDimensionMismatch = errors.New("sparse: dimension mismatch")
