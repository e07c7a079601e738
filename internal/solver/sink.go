package solver

// Sink receives PageRank vector snapshots from the solver. In history mode
// the solver calls it once per iteration with final=false and the last
// snapshot written is the final vector; otherwise it makes a single call
// with final=true. The solver knows nothing about the sink's storage
// format.
type Sink interface {
	WriteVector(v []float64, final bool) error
}

// Discard is a Sink that drops every snapshot. Useful for library callers
// that only want the Result.
var Discard Sink = discard{}

type discard struct{}

func (discard) WriteVector([]float64, bool) error { return nil }
