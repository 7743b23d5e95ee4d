package mlp

// Dense is a fully-connected layer.
//
// Weights use the input-major convention W[c*outSize+i]: the weight from
// input c to output i.  A weight row W[c*outSize : (c+1)*outSize] is
// therefore contiguous, which is what the delta-relay dot product consumes.
//
// W and B are read-only during propagation, so any number of streams may
// run Forward/Backward concurrently as long as each has its own Workspace.
// WHessian and BHessian are shared accumulators written only by
// Backward2nd, which is single-stream by contract.
type Dense struct {
	act      Activation
	inSize   int
	outSize  int
	hasBias  bool
	parallel bool

	W []float32 // len inSize*outSize
	B []float32 // len outSize, empty when bias is disabled

	WHessian []float32
	BHessian []float32

	prevDelta2 []float32
}

func NewDense(act Activation, inSize, outSize int, hasBias bool) *Dense {
	if act == nil {
		panic("mlp: dense layer requires an activation")
	}
	checkPositive("dense input size", inSize)
	checkPositive("dense output size", outSize)

	d := &Dense{
		act:        act,
		inSize:     inSize,
		outSize:    outSize,
		hasBias:    hasBias,
		W:          make([]float32, inSize*outSize),
		WHessian:   make([]float32, inSize*outSize),
		prevDelta2: make([]float32, inSize),
	}
	if hasBias {
		d.B = make([]float32, outSize)
		d.BHessian = make([]float32, outSize)
	}
	return d
}

func (d *Dense) Kind() string           { return KindDense }
func (d *Dense) InSize() int            { return d.inSize }
func (d *Dense) OutSize() int           { return d.outSize }
func (d *Dense) FanInSize() int         { return d.inSize }
func (d *Dense) FanOutSize() int        { return d.outSize }
func (d *Dense) Activation() Activation { return d.act }
func (d *Dense) HasBias() bool          { return d.hasBias }

func (d *Dense) ConnectionSize() int {
	n := d.inSize * d.outSize
	if d.hasBias {
		n += d.outSize
	}
	return n
}

// SetParallel enables goroutine fan-out over the output and input index
// ranges inside the propagation passes.  Results are identical either way;
// this only trades dispatch overhead against per-call latency.
func (d *Dense) SetParallel(on bool) { d.parallel = on }

// DenseState is the per-stream scratch of a dense node.  DW and DB are the
// stream-local gradient accumulators; summing them across streams and
// zeroing them between accumulation episodes is the orchestrator's job.
type DenseState struct {
	A         []float32 // pre-activations
	Out       []float32
	PrevDelta []float32
	DW        []float32
	DB        []float32
}

func (s *DenseState) Output() []float32 { return s.Out }

func (d *Dense) NewState() NodeState {
	s := &DenseState{
		A:         make([]float32, d.outSize),
		Out:       make([]float32, d.outSize),
		PrevDelta: make([]float32, d.inSize),
		DW:        make([]float32, d.inSize*d.outSize),
	}
	if d.hasBias {
		s.DB = make([]float32, d.outSize)
	}
	return s
}

func (d *Dense) Forward(st NodeState, in []float32) []float32 {
	s := st.(*DenseState)
	checkDim("dense input", len(in), d.inSize)

	// Pre-activation phase.  Each output index owns its slot of s.A, so the
	// writes are disjoint across partitions.
	forEach(d.parallel, d.outSize, func(i int) {
		sum := float32(0)
		for c := 0; c < d.inSize; c++ {
			sum += d.W[c*d.outSize+i] * in[c]
		}
		if d.hasBias {
			sum += d.B[i]
		}
		s.A[i] = sum
	})

	// Activation phase.  forEach has already acted as a barrier, so F may
	// read the whole pre-activation vector (softmax does).
	forEach(d.parallel, d.outSize, func(i int) {
		s.Out[i] = d.act.F(s.A, i)
	})

	return s.Out
}

func (d *Dense) Backward(st NodeState, prev Node, prevState NodeState, delta []float32) []float32 {
	s := st.(*DenseState)
	checkDim("dense delta", len(delta), d.outSize)

	prevOut := prevState.Output()
	prevAct := prev.Activation()

	// Relay the delta upstream: prevDelta[c] is the dot of the incoming
	// delta with input c's weight row, scaled by the upstream node's
	// activation derivative.
	forEach(d.parallel, d.inSize, func(c int) {
		s.PrevDelta[c] = vecDot(delta, d.W[c*d.outSize:(c+1)*d.outSize]) * prevAct.Df(prevOut[c])
	})

	// Outer-product gradient accumulation over disjoint output spans.
	forSpans(d.parallel, d.outSize, func(begin, end int) {
		for c := 0; c < d.inSize; c++ {
			vecMulAdd(delta[begin:end], prevOut[c], s.DW[c*d.outSize+begin:c*d.outSize+end])
		}
		if d.hasBias {
			for i := begin; i < end; i++ {
				s.DB[i] += delta[i]
			}
		}
	})

	return s.PrevDelta
}

// Backward2nd accumulates the diagonal Hessian approximation.  Cross
// second-derivative terms are dropped, which keeps the cost linear in the
// parameter count.  Not safe for concurrent use: WHessian and BHessian are
// shared across streams.
func (d *Dense) Backward2nd(prev Node, prevState NodeState, delta2 []float32) []float32 {
	checkDim("dense second-order delta", len(delta2), d.outSize)

	prevOut := prevState.Output()
	prevAct := prev.Activation()

	for c := 0; c < d.inSize; c++ {
		po2 := prevOut[c] * prevOut[c]
		for r := 0; r < d.outSize; r++ {
			d.WHessian[c*d.outSize+r] += delta2[r] * po2
		}
	}

	if d.hasBias {
		for r := 0; r < d.outSize; r++ {
			d.BHessian[r] += delta2[r]
		}
	}

	for c := 0; c < d.inSize; c++ {
		sum := float32(0)
		for r := 0; r < d.outSize; r++ {
			w := d.W[c*d.outSize+r]
			sum += delta2[r] * w * w
		}
		df := prevAct.Df(prevOut[c])
		d.prevDelta2[c] = sum * df * df
	}

	return d.prevDelta2
}

func (d *Dense) zeroHessian() {
	for i := range d.WHessian {
		d.WHessian[i] = 0
	}
	for i := range d.BHessian {
		d.BHessian[i] = 0
	}
}
