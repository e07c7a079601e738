// Package solver implements the iterative PageRank computation: a damped
// power iteration over the transposed transition matrix with an adaptive
// sparsification pass that freezes converged pages and zeroes their edges
// out of the working matrix, shrinking the multiply cost as the run
// progresses.
package solver

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/papapumpkin/magnetar/internal/parallel"
	"github.com/papapumpkin/magnetar/internal/runlog"
	"github.com/papapumpkin/magnetar/internal/sparse"
)

// ErrInvalidDamping is returned when the damping factor is outside (0, 1].
var ErrInvalidDamping = errors.New("solver: damping factor must be in (0, 1]")

// ErrInvalidTolerance is returned when the convergence tolerance is not
// strictly positive.
var ErrInvalidTolerance = errors.New("solver: tolerance must be > 0")

// ErrVectorMismatch is returned when the initial vector's length does not
// match the matrix dimension.
var ErrVectorMismatch = errors.New("solver: vector length does not match matrix dimension")

// Options configures a solver run.
type Options struct {
	// Damping is the probability of following an outgoing link rather than
	// teleporting; typically 0.85.
	Damping float64

	// Tolerance is the convergence threshold, applied both to the global L1
	// delta and to the per-page relative change.
	Tolerance float64

	// MaxIterations bounds the run; 0 means unbounded.
	MaxIterations int

	// CheckPeriod is the iteration period of both the global convergence
	// check and the per-page sparsification pass.
	CheckPeriod int

	// CorrectionScale scales the teleportation-mass correction term
	// scale·(‖prev‖₁−‖next‖₁)/n added to every page. 0.5 reproduces the
	// reference numerics; 1.0 is the textbook update that conserves total
	// probability mass; 0 disables the correction entirely, so mass lost
	// to damping and dangling pages is not reinjected.
	CorrectionScale float64

	// Workers is the fork-join worker count for the data-parallel passes;
	// 0 or less uses the available hardware parallelism.
	Workers int

	// History emits every intermediate vector to the sink, not only the
	// final one.
	History bool
}

// DefaultOptions returns the reference defaults: damping 0.85, tolerance
// 1e-6, unbounded iterations, period-3 checks, halved correction.
func DefaultOptions() Options {
	return Options{
		Damping:         0.85,
		Tolerance:       1e-6,
		MaxIterations:   0,
		CheckPeriod:     3,
		CorrectionScale: 0.5,
	}
}

// Result is the outcome of a run.
type Result struct {
	Vector     []float64
	Iterations int
	Converged  bool
}

// Solver drives the iteration loop. It takes exclusive ownership of the
// working matrix for the duration of the run: rows and columns of converged
// pages are zeroed in place.
type Solver struct {
	// Sink receives vector snapshots; nil behaves like Discard.
	Sink Sink

	// Log receives structured run events; a nil emitter is a no-op.
	Log *runlog.Emitter

	// Progress, when set, is called after every iteration with the most
	// recently computed global delta.
	Progress func(iteration int, delta float64)

	matrix  *sparse.CSR
	tracker *Tracker
	opts    Options

	rank     []float64 // current vector, result of the latest iteration
	prev     []float64 // snapshot of rank at the top of the iteration
	residual []float64 // inbound contribution from converged sources
	newly    []float64 // scratch: >0 marks pages converged this pass
}

// New creates a Solver over the transposed transition matrix and initial
// vector. The matrix is mutated during the run and must not be shared.
func New(matrix *sparse.CSR, vector []float64, opts Options) (*Solver, error) {
	if opts.Damping <= 0 || opts.Damping > 1 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDamping, opts.Damping)
	}
	if opts.Tolerance <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTolerance, opts.Tolerance)
	}
	if len(vector) != matrix.Dim() {
		return nil, fmt.Errorf("%w: %d vs %d", ErrVectorMismatch, len(vector), matrix.Dim())
	}
	if opts.CheckPeriod < 1 {
		opts.CheckPeriod = 3
	}
	if opts.Workers < 1 {
		opts.Workers = parallel.Workers()
	}

	n := matrix.Dim()
	rank := make([]float64, n)
	copy(rank, vector)

	return &Solver{
		matrix:   matrix,
		tracker:  NewTracker(n, matrix.NNZ()),
		opts:     opts,
		rank:     rank,
		prev:     make([]float64, n),
		residual: make([]float64, n),
		newly:    make([]float64, n),
	}, nil
}

// Tracker exposes the run's convergence state.
func (s *Solver) Tracker() *Tracker { return s.tracker }

// Run iterates until the vector converges or MaxIterations is exceeded.
// ctx is checked between iterations only; a single fork-join pass always
// runs to completion.
func (s *Solver) Run(ctx context.Context) (*Result, error) {
	n := s.matrix.Dim()
	iterations := 0
	converged := false
	delta := math.Inf(1)

	_ = s.Log.Emit(runlog.Event{Kind: runlog.KindRunStart, Data: map[string]any{
		"pages":     n,
		"damping":   s.opts.Damping,
		"tolerance": s.opts.Tolerance,
	}})

	for {
		copy(s.prev, s.rank)
		s.step()

		if s.opts.History && s.Sink != nil {
			if err := s.Sink.WriteVector(s.rank, false); err != nil {
				return nil, fmt.Errorf("solver: history sink: %w", err)
			}
		}

		// Periodic global convergence check.
		if iterations%s.opts.CheckPeriod == 0 {
			delta = l1Diff(s.rank, s.prev)
			if delta < s.opts.Tolerance {
				converged = true
			}
		}

		// Periodic sparsification, skipping the very first iteration: a
		// page's relative change is meaningless before mass has moved.
		if iterations != 0 && iterations%s.opts.CheckPeriod == 0 {
			if err := s.sparsify(); err != nil {
				return nil, err
			}
		}

		iterations++
		_ = s.Log.Emit(runlog.Event{Kind: runlog.KindIteration, Iteration: iterations, Data: map[string]any{
			"delta":           delta,
			"converged_pages": s.tracker.Count(),
		}})
		if s.Progress != nil {
			s.Progress(iterations, delta)
		}

		if converged || (s.opts.MaxIterations != 0 && iterations >= s.opts.MaxIterations) {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("solver: %w", err)
		}
	}

	// In history mode the last appended snapshot already is the final
	// vector; only write the final-result form otherwise.
	if s.Sink != nil && !s.opts.History {
		if err := s.Sink.WriteVector(s.rank, true); err != nil {
			return nil, fmt.Errorf("solver: final sink: %w", err)
		}
	}
	_ = s.Log.Emit(runlog.Event{Kind: runlog.KindRunDone, Iteration: iterations, Data: map[string]any{
		"converged": converged,
		"delta":     delta,
	}})

	return &Result{Vector: s.rank, Iterations: iterations, Converged: converged}, nil
}

// step computes one iteration into s.rank from s.prev:
//
//	rank = α·(M·prev)
//	rank[i] += scale·(‖prev‖₁−‖rank‖₁)/n + contribution[i] + residual[i]
//
// The damped multiply shrinks total mass (teleportation and dangling pages
// leak it); the correction term redistributes the lost mass uniformly.
func (s *Solver) step() {
	n := s.matrix.Dim()
	m, damping := s.matrix, s.opts.Damping

	parallel.For(n, s.opts.Workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			s.rank[i] = damping * m.RowDot(i, s.prev)
		}
	})

	correction := s.opts.CorrectionScale * (l1Norm(s.prev) - l1Norm(s.rank)) / float64(n)
	contribution := s.tracker.Contribution()
	parallel.For(n, s.opts.Workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			s.rank[i] += correction + contribution[i] + s.residual[i]
		}
	})
}

// sparsify scans every not-yet-converged page for individual convergence,
// then freezes the hits: record their outgoing edges into the residual link
// matrix, zero their row and column, and refresh the residual contribution.
// The scan is parallel; the freeze is sequential so that no page's edges are
// zeroed before another page's residual capture has seen them.
func (s *Solver) sparsify() error {
	n := s.matrix.Dim()
	tol := s.opts.Tolerance

	parallel.For(n, s.opts.Workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			s.newly[i] = 0
			if s.tracker.IsConverged(i) {
				continue
			}
			prev := math.Abs(s.prev[i])
			if prev == 0 {
				// A zero previous value makes the relative change
				// undefined; count the page as stable only if it stayed
				// at zero, otherwise the change is unbounded.
				if s.rank[i] == 0 {
					s.newly[i] = 1
				}
				continue
			}
			if math.Abs(s.rank[i]-s.prev[i])/prev < tol {
				s.newly[i] = 1
			}
		}
	})

	// Mark the whole batch before capturing residual edges: an edge between
	// two pages converging in the same pass carries frozen-to-frozen mass
	// and must not enter the residual matrix.
	for i := 0; i < n; i++ {
		if s.newly[i] != 0 && !s.tracker.MarkConverged(i, s.rank[i]) {
			s.newly[i] = 0
		}
	}

	for i := 0; i < n; i++ {
		if s.newly[i] == 0 {
			continue
		}

		// Capture links from the newly converged page to pages still in
		// play. The working matrix holds Pᵀ, so page i's outgoing edges
		// live in column i.
		var recErr error
		s.matrix.ForEachInCol(i, func(target int, weight float64) {
			if recErr == nil && !s.tracker.IsConverged(target) {
				recErr = s.tracker.RecordResidualEdge(i, target, weight)
			}
		})
		if recErr != nil {
			return fmt.Errorf("solver: residual capture for page %d: %w", i, recErr)
		}

		if err := s.matrix.ZeroRow(i); err != nil {
			return fmt.Errorf("solver: sparsify: %w", err)
		}
		if err := s.matrix.ZeroCol(i); err != nil {
			return fmt.Errorf("solver: sparsify: %w", err)
		}
		if err := s.tracker.ResidualContribution(s.residual, s.rank); err != nil {
			return fmt.Errorf("solver: residual contribution: %w", err)
		}

		_ = s.Log.Emit(runlog.Event{Kind: runlog.KindPageConverged, Data: map[string]any{
			"page": i, "value": s.rank[i],
		}})
	}
	return nil
}

// l1Norm returns the L1 norm of v.
func l1Norm(v []float64) float64 {
	var norm float64
	for _, x := range v {
		norm += math.Abs(x)
	}
	return norm
}

// l1Diff returns the L1 norm of the element-wise difference a−b.
func l1Diff(a, b []float64) float64 {
	var norm float64
	for i := range a {
		norm += math.Abs(a[i] - b[i])
	}
	return norm
}
