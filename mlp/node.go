package mlp

// Node kinds, reported by Kind() for external tooling such as initializers
// and serializers.
const (
	KindInput = "input"
	KindDense = "fully-connected"
)

// NodeState holds the scratch buffers one node needs for one concurrent
// propagation stream: cached pre-activations and outputs, delta relay
// buffers, and per-stream gradient accumulators.  States are created once
// per workspace and reused across calls; no propagation call allocates.
type NodeState interface {
	// Output returns the node's forward output cached by the most recent
	// Forward call on this state.
	Output() []float32
}

// Node is one link of the layer chain.  Nodes hold no references to their
// neighbors; the Network owns the ordered sequence and hands each backward
// call its upstream node, so a node only ever implements its own per-node
// computation.
type Node interface {
	Kind() string
	InSize() int
	OutSize() int

	// Query surface used by initializers and serializers.
	ConnectionSize() int
	FanInSize() int
	FanOutSize() int

	Activation() Activation

	// NewState allocates the scratch buffers one concurrent stream needs
	// for this node.
	NewState() NodeState

	// Forward computes the node's output for in, caching pre-activations
	// and outputs in st.  The returned slice aliases st and is valid until
	// the next Forward call on the same state.
	Forward(st NodeState, in []float32) []float32

	// Backward consumes the delta for this node's output (already scaled by
	// this node's own activation derivative), accumulates parameter
	// gradients into st, and returns the delta for the upstream node,
	// scaled by the upstream node's activation derivative.  Forward must
	// have run on the same state first.
	Backward(st NodeState, prev Node, prevState NodeState, delta []float32) []float32

	// Backward2nd consumes a second-order (squared) delta, accumulates the
	// diagonal Hessian approximation into the node's shared accumulators,
	// and returns the second-order delta for the upstream node.  The
	// accumulators are not worker-isolated: callers must never run this
	// pass on more than one stream at a time.
	Backward2nd(prev Node, prevState NodeState, delta2 []float32) []float32
}
