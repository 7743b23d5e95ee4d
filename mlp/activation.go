package mlp

import "github.com/chewxy/math32"

// Activation is the nonlinearity applied to a node's pre-activation vector.
//
// F receives the whole pre-activation vector plus the index to compute, so
// strategies that normalize over the vector (softmax) fit the same contract
// as purely elementwise ones.  Df is the derivative expressed in terms of
// the cached output value, which is what the backward passes have on hand.
type Activation interface {
	F(a []float32, i int) float32
	Df(y float32) float32
}

type Identity struct{}

func (Identity) F(a []float32, i int) float32 { return a[i] }
func (Identity) Df(y float32) float32         { return 1 }

type Sigmoid struct{}

func (Sigmoid) F(a []float32, i int) float32 { return 1 / (1 + math32.Exp(-a[i])) }
func (Sigmoid) Df(y float32) float32         { return y * (1 - y) }

type TanH struct{}

func (TanH) F(a []float32, i int) float32 { return math32.Tanh(a[i]) }
func (TanH) Df(y float32) float32         { return 1 - y*y }

type ReLU struct{}

func (ReLU) F(a []float32, i int) float32 {
	if a[i] < 0 {
		return 0
	}
	return a[i]
}

func (ReLU) Df(y float32) float32 {
	if y > 0 {
		return 1
	}
	return 0
}

// Softmax normalizes over the whole pre-activation vector.  For stability we
// use the identity softmax(v) = softmax(v - c) and subtract the maximum
// element before exponentiating.
//
// https://stackoverflow.com/questions/42599498/numerically-stable-softmax
type Softmax struct{}

func (Softmax) F(a []float32, i int) float32 {
	maxa := math32.Inf(-1)
	for _, v := range a {
		if v > maxa {
			maxa = v
		}
	}

	var sum float32
	for _, v := range a {
		sum += math32.Exp(v - maxa)
	}

	return math32.Exp(a[i]-maxa) / sum
}

func (Softmax) Df(y float32) float32 { return y * (1 - y) }
