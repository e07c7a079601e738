// Package webgraph loads directed web-link graphs from edge-list files and
// builds the normalized transition matrix consumed by the solver.
//
// The accepted format is the SNAP edge-list style: lines beginning with '#'
// or '//' are comments, every other non-empty line holds a whitespace- or
// comma-separated "from to" pair of page indices. A "# Nodes: N Edges: E"
// comment header, when present, is used to preallocate.
package webgraph

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrEmptyGraph is returned when a graph file yields no edges at all.
var ErrEmptyGraph = errors.New("webgraph: no edges found")

// ErrMalformedLine is returned when an edge line cannot be parsed.
var ErrMalformedLine = errors.New("webgraph: malformed edge line")

// Edge is a directed link between two pages.
type Edge struct {
	From, To int
}

// Graph is a loaded edge list. Pages is one past the highest page index seen,
// so indices form the dense range [0, Pages).
type Graph struct {
	Pages int
	Edges []Edge
}

// Load reads a graph from the edge-list file at path.
func Load(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("webgraph: open %s: %w", path, err)
	}
	defer f.Close()

	g, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("webgraph: parse %s: %w", path, err)
	}
	return g, nil
}

// Parse reads an edge list from r.
func Parse(r io.Reader) (*Graph, error) {
	g := &Graph{}
	maxIndex := -1

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			if edges, ok := parseSizeHeader(line); ok && cap(g.Edges) == 0 {
				g.Edges = make([]Edge, 0, edges)
			}
			continue
		}

		from, to, err := parseEdge(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		g.Edges = append(g.Edges, Edge{From: from, To: to})
		if from > maxIndex {
			maxIndex = from
		}
		if to > maxIndex {
			maxIndex = to
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("webgraph: read: %w", err)
	}
	if len(g.Edges) == 0 {
		return nil, ErrEmptyGraph
	}

	g.Pages = maxIndex + 1
	return g, nil
}

// parseSizeHeader recognizes the SNAP "# Nodes: N Edges: E" comment and
// returns the claimed edge count.
func parseSizeHeader(line string) (edges int, ok bool) {
	fields := strings.Fields(strings.Trim(line, "#/ "))
	for i, f := range fields {
		if strings.EqualFold(f, "Edges:") && i+1 < len(fields) {
			n, err := strconv.Atoi(fields[i+1])
			if err == nil && n > 0 {
				return n, true
			}
		}
	}
	return 0, false
}

func parseEdge(line string) (from, to int, err error) {
	// Tolerate comma separators by normalizing to whitespace.
	fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
	if len(fields) < 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}
	from, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad source %q", ErrMalformedLine, fields[0])
	}
	to, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad target %q", ErrMalformedLine, fields[1])
	}
	if from < 0 || to < 0 {
		return 0, 0, fmt.Errorf("%w: negative page index in %q", ErrMalformedLine, line)
	}
	return from, to, nil
}

// Dangling returns the number of pages with no outgoing links.
func (g *Graph) Dangling() int {
	outDeg := make([]int, g.Pages)
	for _, e := range g.Edges {
		outDeg[e.From]++
	}
	n := 0
	for _, d := range outDeg {
		if d == 0 {
			n++
		}
	}
	return n
}
