package mlp

// Workspace owns the scratch state for one concurrent propagation stream.
// Create one per goroutine with Network.NewWorkspace; never share one
// across streams.  Passing the workspace explicitly at every call makes the
// concurrency contract visible at the call boundary instead of being an
// implicit invariant keyed by an integer worker id.
type Workspace struct {
	states []NodeState
}

// State returns the scratch state of node i.
func (w *Workspace) State(i int) NodeState { return w.states[i] }

// Dense returns the dense scratch of node i, or nil when node i is not a
// dense layer.
func (w *Workspace) Dense(i int) *DenseState {
	s, _ := w.states[i].(*DenseState)
	return s
}

// ZeroGrads clears the stream-local gradient accumulators before a fresh
// accumulation episode.
func (w *Workspace) ZeroGrads() {
	for _, st := range w.states {
		s, ok := st.(*DenseState)
		if !ok {
			continue
		}
		for i := range s.DW {
			s.DW[i] = 0
		}
		for i := range s.DB {
			s.DB[i] = 0
		}
	}
}

// ReduceGrads sums the gradient accumulators of srcs into dst.  This is the
// cross-stream reduction step that turns per-worker gradients into one
// update; dst is typically also one of the streams that accumulated.
func ReduceGrads(dst *Workspace, srcs ...*Workspace) {
	for _, src := range srcs {
		for n, st := range src.states {
			s, ok := st.(*DenseState)
			if !ok {
				continue
			}
			d := dst.states[n].(*DenseState)
			for i := range s.DW {
				d.DW[i] += s.DW[i]
			}
			for i := range s.DB {
				d.DB[i] += s.DB[i]
			}
		}
	}
}
