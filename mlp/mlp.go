// Package mlp implements the computational core of a chain-structured
// feed-forward network trainer: dense (fully-connected) layers supporting
// forward propagation, first-order backpropagation, and second-order
// backpropagation that accumulates a diagonal Hessian approximation for
// per-parameter adaptive learning rates.
//
// A Network owns an ordered chain of Nodes and drives every pass by explicit
// iteration.  All per-stream scratch lives in a Workspace created by the
// caller, so running the same network concurrently is a matter of giving
// each goroutine its own workspace.  Weights are read-only during
// propagation and may be shared freely across streams.
package mlp

import "fmt"

// checkDim panics when a vector crossing the propagation boundary does not
// match the declared size.  A mismatch is a programming defect; it is never
// truncated or silently tolerated.
func checkDim(what string, got, want int) {
	if got != want {
		panic(fmt.Sprintf("mlp: %s has length %d, want %d", what, got, want))
	}
}

// checkPositive panics when a construction-time dimension is not positive.
func checkPositive(what string, v int) {
	if v <= 0 {
		panic(fmt.Sprintf("mlp: %s must be positive, got %d", what, v))
	}
}
