package mlp

import (
	"runtime"
	"sync"
)

// Index ranges shorter than this are not worth the goroutine overhead.
const parallelGrain = 32

// forSpans partitions [0, n) into disjoint contiguous spans and runs fn on
// each, concurrently when parallel is set.  fn must only write locations
// belonging to its span.  forSpans returns after every span has completed,
// so a call acts as a full barrier between phases.
func forSpans(parallel bool, n int, fn func(begin, end int)) {
	if !parallel || n < parallelGrain {
		fn(0, n)
		return
	}

	workers := runtime.GOMAXPROCS(0)
	chunk := (n + workers - 1) / workers
	if chunk < parallelGrain {
		chunk = parallelGrain
	}

	var wg sync.WaitGroup
	for begin := 0; begin < n; begin += chunk {
		end := begin + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(begin, end int) {
			defer wg.Done()
			fn(begin, end)
		}(begin, end)
	}
	wg.Wait()
}

// forEach runs fn(i) for every i in [0, n), concurrently when parallel is
// set.  fn must write only locations owned by index i.
func forEach(parallel bool, n int, fn func(i int)) {
	forSpans(parallel, n, func(begin, end int) {
		for i := begin; i < end; i++ {
			fn(i)
		}
	})
}
