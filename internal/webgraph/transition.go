package webgraph

import (
	"fmt"

	"github.com/papapumpkin/magnetar/internal/sparse"
)

// Transition builds the solver's working matrix from the edge list: each
// edge (u, v) contributes 1/outDegree(u), the matrix is transposed to Pᵀ
// (the iteration multiplies by the transpose), and the result is converted
// to CSR. Dangling pages produce empty columns in Pᵀ; the solver's
// teleportation correction reinjects their mass.
func Transition(g *Graph) (*sparse.CSR, error) {
	if g.Pages <= 0 {
		return nil, fmt.Errorf("webgraph: transition: %w", ErrEmptyGraph)
	}

	outDeg := make([]int, g.Pages)
	for _, e := range g.Edges {
		outDeg[e.From]++
	}

	coo := sparse.NewCOOWithBudget(g.Pages, len(g.Edges))
	for _, e := range g.Edges {
		if err := coo.Append(e.From, e.To, 1/float64(outDeg[e.From])); err != nil {
			return nil, fmt.Errorf("webgraph: transition: %w", err)
		}
	}

	coo.Transpose()
	return coo.ToCSR(), nil
}

// UniformVector returns the initial PageRank vector: every page starts at
// the uniform probability 1/n.
func UniformVector(n int) []float64 {
	v := make([]float64, n)
	p := 1 / float64(n)
	for i := range v {
		v[i] = p
	}
	return v
}
