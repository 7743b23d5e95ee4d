package mlp

import "github.com/pkg/errors"

// Network owns the ordered layer chain and drives every propagation pass by
// explicit iteration: forward order for Forward, reverse order for the two
// backward passes.  Nodes never traverse on their own, so network depth
// costs no call-stack depth.
type Network struct {
	nodes []Node
}

// New validates and assembles a chain.  The chain must start with exactly
// one Input terminal, contain no further Input nodes, and have matching
// sizes at every seam.  Propagation assumes a well-formed chain and never
// re-verifies it.
func New(nodes ...Node) (*Network, error) {
	if len(nodes) < 2 {
		return nil, errors.Errorf("malformed chain: need an input node and at least one layer, got %d nodes", len(nodes))
	}
	if nodes[0].Kind() != KindInput {
		return nil, errors.Errorf("malformed chain: first node must be an input terminal, got %q", nodes[0].Kind())
	}
	for i := 1; i < len(nodes); i++ {
		if nodes[i].Kind() == KindInput {
			return nil, errors.Errorf("malformed chain: interior node %d is an input terminal", i)
		}
		if nodes[i].InSize() != nodes[i-1].OutSize() {
			return nil, errors.Errorf("malformed chain: node %d consumes %d values but node %d produces %d",
				i, nodes[i].InSize(), i-1, nodes[i-1].OutSize())
		}
	}

	return &Network{nodes: nodes}, nil
}

func (n *Network) Nodes() []Node    { return n.nodes }
func (n *Network) Node(i int) Node  { return n.nodes[i] }
func (n *Network) Len() int         { return len(n.nodes) }
func (n *Network) InSize() int      { return n.nodes[0].InSize() }
func (n *Network) OutSize() int     { return n.nodes[len(n.nodes)-1].OutSize() }

// NewWorkspace allocates the scratch state one concurrent stream needs.
func (n *Network) NewWorkspace() *Workspace {
	states := make([]NodeState, len(n.nodes))
	for i, nd := range n.nodes {
		states[i] = nd.NewState()
	}
	return &Workspace{states: states}
}

// SetParallel toggles intra-layer goroutine fan-out on every dense node.
func (n *Network) SetParallel(on bool) {
	for _, nd := range n.nodes {
		if d, ok := nd.(*Dense); ok {
			d.SetParallel(on)
		}
	}
}

// Forward propagates x through the chain and returns the final output.  The
// result aliases ws and is valid until the next Forward on the same
// workspace.
func (n *Network) Forward(ws *Workspace, x []float32) []float32 {
	out := n.nodes[0].Forward(ws.states[0], x)
	for i := 1; i < len(n.nodes); i++ {
		out = n.nodes[i].Forward(ws.states[i], out)
	}
	return out
}

// Backward relays delta from the downstream end to the input terminal,
// accumulating parameter gradients into ws along the way.  delta must be
// sized to the last node's output and already scaled by that node's
// activation derivative.  Forward must have run on the same workspace
// first.  Returns the delta at the input terminal.
func (n *Network) Backward(ws *Workspace, delta []float32) []float32 {
	for i := len(n.nodes) - 1; i >= 1; i-- {
		delta = n.nodes[i].Backward(ws.states[i], n.nodes[i-1], ws.states[i-1], delta)
	}
	return n.nodes[0].Backward(ws.states[0], nil, nil, delta)
}

// Backward2nd relays a second-order delta upstream, accumulating the
// diagonal Hessian approximation into the shared per-node accumulators.
// Single-stream by contract: the caller must serialize all Backward2nd
// invocations and must pass the workspace whose Forward pass produced the
// cached outputs.
func (n *Network) Backward2nd(ws *Workspace, delta2 []float32) []float32 {
	for i := len(n.nodes) - 1; i >= 1; i-- {
		delta2 = n.nodes[i].Backward2nd(n.nodes[i-1], ws.states[i-1], delta2)
	}
	return n.nodes[0].Backward2nd(nil, nil, delta2)
}

// ZeroHessian clears the Hessian-diagonal accumulators before a fresh
// estimation episode.
func (n *Network) ZeroHessian() {
	for _, nd := range n.nodes {
		if d, ok := nd.(*Dense); ok {
			d.zeroHessian()
		}
	}
}
