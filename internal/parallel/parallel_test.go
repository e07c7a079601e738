package parallel

import (
	"sync/atomic"
	"testing"
)

func TestFor_CoversEveryIndexOnce(t *testing.T) {
	t.Parallel()

	for _, workers := range []int{1, 2, 3, 7, 16} {
		n := 101
		visits := make([]int32, n)
		For(n, workers, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				atomic.AddInt32(&visits[i], 1)
			}
		})
		for i, v := range visits {
			if v != 1 {
				t.Errorf("workers=%d: index %d visited %d times", workers, i, v)
			}
		}
	}
}

func TestFor_MoreWorkersThanWork(t *testing.T) {
	t.Parallel()

	var count int32
	For(3, 64, func(lo, hi int) {
		atomic.AddInt32(&count, int32(hi-lo))
	})
	if count != 3 {
		t.Errorf("covered %d indexes, want 3", count)
	}
}

func TestFor_EmptyRange(t *testing.T) {
	t.Parallel()

	called := false
	For(0, 4, func(lo, hi int) { called = true })
	if called {
		t.Error("fn called for empty range")
	}
}

func TestFor_BlocksUntilDone(t *testing.T) {
	t.Parallel()

	// Sum without atomics into per-partition slots: if For returned before
	// every partition finished, the total would come up short.
	n := 1000
	partials := make([]int64, n)
	For(n, 8, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			partials[i] = int64(i)
		}
	})
	var sum int64
	for _, p := range partials {
		sum += p
	}
	if want := int64(n*(n-1)) / 2; sum != want {
		t.Errorf("sum = %d, want %d", sum, want)
	}
}

func TestFor_DefaultWorkers(t *testing.T) {
	t.Parallel()

	var count int32
	For(10, 0, func(lo, hi int) {
		atomic.AddInt32(&count, int32(hi-lo))
	})
	if count != 10 {
		t.Errorf("covered %d indexes, want 10", count)
	}
}
