// Package parallel provides a fork-join loop helper for the solver's
// data-parallel passes. Work is split into fixed contiguous partitions, one
// per worker; the calling goroutine blocks until every partition finishes.
// No goroutine outlives a call, and no partition blocks or suspends.
package parallel

import (
	"runtime"
	"sync"
)

// Workers returns the default worker count: the available hardware
// parallelism.
func Workers() int {
	return runtime.GOMAXPROCS(0)
}

// For runs fn over the index range [0, n) split into at most workers
// contiguous partitions. fn receives a half-open [lo, hi) range and is
// invoked once per partition, each on its own goroutine. workers < 1 falls
// back to Workers(). For returns after every partition completes.
func For(n, workers int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	if workers < 1 {
		workers = Workers()
	}
	if workers > n {
		workers = n
	}
	if workers == 1 {
		fn(0, n)
		return
	}

	// Spread the remainder over the leading partitions so sizes differ by
	// at most one.
	chunk := n / workers
	rem := n % workers

	var wg sync.WaitGroup
	lo := 0
	for w := 0; w < workers; w++ {
		hi := lo + chunk
		if w < rem {
			hi++
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
		lo = hi
	}
	wg.Wait()
}
