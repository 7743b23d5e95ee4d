package mlp

// Input is the chain's upstream terminal.  It caches the sample vector as
// its output so the first dense layer can read it back during the backward
// passes, and it terminates traversal by returning every delta unchanged.
type Input struct {
	size int
}

func NewInput(size int) *Input {
	checkPositive("input size", size)
	return &Input{size: size}
}

func (in *Input) Kind() string           { return KindInput }
func (in *Input) InSize() int            { return in.size }
func (in *Input) OutSize() int           { return in.size }
func (in *Input) ConnectionSize() int    { return 0 }
func (in *Input) FanInSize() int         { return in.size }
func (in *Input) FanOutSize() int        { return in.size }
func (in *Input) Activation() Activation { return Identity{} }

type inputState struct {
	out []float32
}

func (s *inputState) Output() []float32 { return s.out }

func (in *Input) NewState() NodeState {
	return &inputState{out: make([]float32, in.size)}
}

func (in *Input) Forward(st NodeState, x []float32) []float32 {
	s := st.(*inputState)
	checkDim("input vector", len(x), in.size)
	copy(s.out, x)
	return s.out
}

func (in *Input) Backward(st NodeState, prev Node, prevState NodeState, delta []float32) []float32 {
	return delta
}

func (in *Input) Backward2nd(prev Node, prevState NodeState, delta2 []float32) []float32 {
	return delta2
}
