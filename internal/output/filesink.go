// Package output provides solver.Sink implementations for writing PageRank
// vectors to disk.
package output

import (
	"bufio"
	"fmt"
	"os"
	"sync"
)

// FileSink writes vector snapshots to a text file, one line per snapshot
// with space-separated values. The first write truncates the file; history
// snapshots append after that. A final-result write always overwrites, so a
// non-history run leaves exactly one line.
type FileSink struct {
	path string

	mu      sync.Mutex
	written bool
}

// NewFileSink creates a sink writing to path. The file is not touched until
// the first WriteVector call.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// WriteVector writes one snapshot line.
func (s *FileSink) WriteVector(v []float64, final bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	flags := os.O_CREATE | os.O_WRONLY
	if final || !s.written {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}

	f, err := os.OpenFile(s.path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("output: open %s: %w", s.path, err)
	}

	w := bufio.NewWriter(f)
	for _, x := range v {
		if _, err := fmt.Fprintf(w, "%f ", x); err != nil {
			f.Close()
			return fmt.Errorf("output: write %s: %w", s.path, err)
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		f.Close()
		return fmt.Errorf("output: write %s: %w", s.path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("output: flush %s: %w", s.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("output: close %s: %w", s.path, err)
	}

	s.written = true
	return nil
}
