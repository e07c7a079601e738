// Package ui renders magnetar's terminal output: banners, run parameters,
// and per-iteration progress lines. Everything writes to stderr so stdout
// stays clean for piped results.
package ui

import (
	"fmt"
	"os"

	"github.com/papapumpkin/magnetar/internal/ansi"
)

// Printer writes human-readable progress to stderr. Most output is gated on
// verbose mode; errors and the run outcome always print.
type Printer struct {
	verbose bool
}

// New creates a Printer.
func New(verbose bool) *Printer {
	return &Printer{verbose: verbose}
}

// Section prints a stage banner, verbose mode only.
func (p *Printer) Section(title string) {
	if !p.verbose {
		return
	}
	fmt.Fprintf(os.Stderr, ansi.Yellow+"----- %s -----"+ansi.Reset+"\n", title)
}

// GraphStats reports the loaded graph's shape, verbose mode only.
func (p *Printer) GraphStats(pages, edges, dangling int) {
	if !p.verbose {
		return
	}
	fmt.Fprintf(os.Stderr, "Number of pages: %d\nNumber of edges: %d\nDangling pages: %d\n",
		pages, edges, dangling)
}

// Parameters reports the effective solver parameters, verbose mode only.
func (p *Printer) Parameters(damping, tolerance float64, maxIterations int) {
	if !p.verbose {
		return
	}
	if maxIterations == 0 {
		fmt.Fprintln(os.Stderr, "Maximum number of iterations: inf")
	} else {
		fmt.Fprintf(os.Stderr, "Maximum number of iterations: %d\n", maxIterations)
	}
	fmt.Fprintf(os.Stderr, "Convergence tolerance: %g\nDamping factor: %g\n", tolerance, damping)
}

// Iteration prints one progress line, alternating color by parity so a
// scrolling run is easier to eyeball.
func (p *Printer) Iteration(n int, delta float64) {
	color := ansi.Cyan
	if n%2 == 1 {
		color = ansi.Blue
	}
	fmt.Fprintf(os.Stderr, color+"Iteration %d: delta = %f"+ansi.Reset+"\n", n, delta)
}

// Done reports the run outcome.
func (p *Printer) Done(iterations int, converged bool) {
	if converged {
		fmt.Fprintf(os.Stderr, ansi.Green+ansi.Bold+"✓ converged"+ansi.Reset+" after %d iteration(s)\n", iterations)
		return
	}
	fmt.Fprintf(os.Stderr, ansi.Red+ansi.Bold+"✗ did not converge"+ansi.Reset+" within %d iteration(s)\n", iterations)
}

// Error prints an error line.
func (p *Printer) Error(msg string) {
	fmt.Fprintf(os.Stderr, ansi.Red+ansi.Bold+"error: "+ansi.Reset+"%s\n", msg)
}

// Info prints a dim informational line.
func (p *Printer) Info(msg string) {
	fmt.Fprintf(os.Stderr, ansi.Dim+"%s"+ansi.Reset+"\n", msg)
}
