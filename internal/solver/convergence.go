package solver

import "github.com/papapumpkin/magnetar/internal/sparse"

// Tracker owns the per-page convergence state: a monotone converged flag per
// page, the frozen contribution vector of converged pages, and the residual
// link matrix holding edges from converged sources to not-yet-converged
// targets.
type Tracker struct {
	converged    []bool
	contribution []float64
	residual     *sparse.COO
	count        int
}

// NewTracker creates a tracker for n pages. edgeBudget bounds the residual
// link matrix; the working matrix's NNZ is always sufficient since every
// residual edge is copied from it.
func NewTracker(n, edgeBudget int) *Tracker {
	return &Tracker{
		converged:    make([]bool, n),
		contribution: make([]float64, n),
		residual:     sparse.NewCOOWithBudget(n, edgeBudget),
	}
}

// IsConverged reports whether page i has been marked converged. Flags are
// monotone: once true, true for the rest of the run.
func (t *Tracker) IsConverged(i int) bool { return t.converged[i] }

// Count returns the number of converged pages.
func (t *Tracker) Count() int { return t.count }

// MarkConverged freezes page i at value. It is idempotent: marking an
// already-converged page is a no-op and returns false.
func (t *Tracker) MarkConverged(i int, value float64) bool {
	if t.converged[i] {
		return false
	}
	t.converged[i] = true
	t.contribution[i] = value
	t.count++
	return true
}

// Contribution returns the frozen contribution vector. Non-converged entries
// are zero. The slice aliases tracker state and must not be mutated.
func (t *Tracker) Contribution() []float64 { return t.contribution }

// RecordResidualEdge records an edge from converged page from to
// non-converged page to. The residual matrix is laid out so that
// multiplication by the rank vector accumulates into the target page.
func (t *Tracker) RecordResidualEdge(from, to int, weight float64) error {
	return t.residual.Append(to, from, weight)
}

// ResidualContribution recomputes dst as the inbound contribution every page
// receives from converged sources, given the current rank vector. Called
// each time the converged set changes.
func (t *Tracker) ResidualContribution(dst, rank []float64) error {
	return t.residual.MulVec(dst, rank)
}
