package mlp

import (
	"sync/atomic"
	"testing"
)

func TestForSpansCoversRangeOnce(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		for _, n := range []int{0, 1, 31, 32, 33, 1000} {
			hits := make([]int32, n)
			forSpans(parallel, n, func(begin, end int) {
				for i := begin; i < end; i++ {
					atomic.AddInt32(&hits[i], 1)
				}
			})
			for i, h := range hits {
				if h != 1 {
					t.Fatalf("parallel=%v n=%d: index %d visited %d times", parallel, n, i, h)
				}
			}
		}
	}
}

func TestForEachActsAsBarrier(t *testing.T) {
	// Writes from a forEach must all be visible once it returns; a second
	// phase reading the whole buffer observes every element.
	const n = 1000
	buf := make([]float32, n)
	forEach(true, n, func(i int) {
		buf[i] = float32(i)
	})
	forEach(true, n, func(i int) {
		if buf[n-1-i] != float32(n-1-i) {
			t.Errorf("element %d not visible after barrier", n-1-i)
		}
	})
}
