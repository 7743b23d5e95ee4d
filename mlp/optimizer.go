package mlp

// SGD applies plain gradient descent with a fixed learning rate.  It
// consumes the gradient accumulators of one workspace; reduce across
// workspaces first when gradients were accumulated on several streams.
type SGD struct {
	Alpha float32
}

func (o *SGD) Apply(net *Network, ws *Workspace) {
	for i, nd := range net.Nodes() {
		d, ok := nd.(*Dense)
		if !ok {
			continue
		}
		s := ws.State(i).(*DenseState)
		for j := range d.W {
			d.W[j] -= o.Alpha * s.DW[j]
		}
		for j := range d.B {
			d.B[j] -= o.Alpha * s.DB[j]
		}
	}
}

// LevenbergMarquardt applies a per-parameter adaptive learning rate derived
// from the diagonal Hessian accumulators:
//
//	w -= alpha / (h/samples + mu) * g
//
// where h is the accumulated Hessian diagonal and samples is the number of
// samples it was accumulated over.  mu keeps the step finite where the
// curvature estimate vanishes.
type LevenbergMarquardt struct {
	Alpha float32
	Mu    float32
}

func (o *LevenbergMarquardt) Apply(net *Network, ws *Workspace, samples int) {
	checkPositive("hessian sample count", samples)
	inv := 1 / float32(samples)

	for i, nd := range net.Nodes() {
		d, ok := nd.(*Dense)
		if !ok {
			continue
		}
		s := ws.State(i).(*DenseState)
		for j := range d.W {
			d.W[j] -= o.Alpha / (d.WHessian[j]*inv + o.Mu) * s.DW[j]
		}
		for j := range d.B {
			d.B[j] -= o.Alpha / (d.BHessian[j]*inv + o.Mu) * s.DB[j]
		}
	}
}
