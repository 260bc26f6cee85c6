// Package parallel provides CPU-bound work partitioning used by the grid
// search and the random forest trainer.
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize divides items across the available CPU cores and executes fn
// for each contiguous [start, end) range in its own goroutine, blocking until
// every range has been processed.
func Parallelize(items int, fn func(start, end int)) {
	if items == 0 {
		return
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}

	// Ceiling division so the final chunk absorbs the remainder.
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}

// ParallelizeWithThreshold runs fn sequentially over the whole range when
// items is at or below threshold, and in parallel otherwise. Small inputs are
// cheaper to process on one goroutine than to fan out.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}

	Parallelize(items, fn)
}
