package mlp

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func buildIsolationNet(t *testing.T) *Network {
	t.Helper()
	net, err := New(
		NewInput(3),
		NewDense(Sigmoid{}, 3, 5, true),
		NewDense(Identity{}, 5, 2, true),
	)
	require.NoError(t, err)
	XavierUniform(net, 77)
	return net
}

type passResult struct {
	out       []float32
	prevDelta []float32
	dw1, dw2  []float32
}

func runPass(net *Network, ws *Workspace, x, delta []float32) passResult {
	out := net.Forward(ws, x)
	prevDelta := net.Backward(ws, delta)
	return passResult{
		out:       append([]float32(nil), out...),
		prevDelta: append([]float32(nil), prevDelta...),
		dw1:       append([]float32(nil), ws.Dense(1).DW...),
		dw2:       append([]float32(nil), ws.Dense(2).DW...),
	}
}

// Two streams on two workspaces must behave exactly as two sequential runs:
// no cross-contamination of cached outputs or gradient accumulators.
func TestWorkspaceIsolation(t *testing.T) {
	net := buildIsolationNet(t)

	xA := []float32{0.9, -0.3, 0.5}
	xB := []float32{-0.7, 0.2, 0.1}
	deltaA := []float32{1, -0.5}
	deltaB := []float32{0.25, 2}

	wantA := runPass(net, net.NewWorkspace(), xA, deltaA)
	wantB := runPass(net, net.NewWorkspace(), xB, deltaB)

	for trial := 0; trial < 20; trial++ {
		wsA := net.NewWorkspace()
		wsB := net.NewWorkspace()

		var gotA, gotB passResult
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			gotA = runPass(net, wsA, xA, deltaA)
		}()
		go func() {
			defer wg.Done()
			gotB = runPass(net, wsB, xB, deltaB)
		}()
		wg.Wait()

		if diff := cmp.Diff(gotA, wantA, cmp.AllowUnexported(passResult{})); diff != "" {
			t.Fatalf("trial %d stream A; diff (-got +want)\n%s", trial, diff)
		}
		if diff := cmp.Diff(gotB, wantB, cmp.AllowUnexported(passResult{})); diff != "" {
			t.Fatalf("trial %d stream B; diff (-got +want)\n%s", trial, diff)
		}
	}
}

func TestReduceGrads(t *testing.T) {
	net := buildIsolationNet(t)

	xA := []float32{0.9, -0.3, 0.5}
	xB := []float32{-0.7, 0.2, 0.1}
	delta := []float32{1, -0.5}

	// Both samples accumulated on one stream.
	combined := net.NewWorkspace()
	net.Forward(combined, xA)
	net.Backward(combined, delta)
	net.Forward(combined, xB)
	net.Backward(combined, delta)

	// The same samples split across two streams, then reduced.
	wsA := net.NewWorkspace()
	wsB := net.NewWorkspace()
	net.Forward(wsA, xA)
	net.Backward(wsA, delta)
	net.Forward(wsB, xB)
	net.Backward(wsB, delta)
	ReduceGrads(wsA, wsB)

	for n := 1; n < net.Len(); n++ {
		want := combined.Dense(n).DW
		got := wsA.Dense(n).DW
		require.Len(t, got, len(want))
		for j := range want {
			require.InDeltaf(t, want[j], got[j], 1e-6, "node %d DW[%d]", n, j)
		}

		wantB := combined.Dense(n).DB
		gotB := wsA.Dense(n).DB
		for j := range wantB {
			require.InDeltaf(t, wantB[j], gotB[j], 1e-6, "node %d DB[%d]", n, j)
		}
	}
}

func TestZeroGrads(t *testing.T) {
	net := buildIsolationNet(t)

	ws := net.NewWorkspace()
	net.Forward(ws, []float32{0.5, 0.5, 0.5})
	net.Backward(ws, []float32{1, 1})

	ws.ZeroGrads()
	for n := 1; n < net.Len(); n++ {
		for j, g := range ws.Dense(n).DW {
			require.Zerof(t, g, "node %d DW[%d]", n, j)
		}
		for j, g := range ws.Dense(n).DB {
			require.Zerof(t, g, "node %d DB[%d]", n, j)
		}
	}
}
