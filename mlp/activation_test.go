package mlp

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestSigmoid(t *testing.T) {
	a := []float32{0, 2, -2}

	if got := (Sigmoid{}).F(a, 0); got != 0.5 {
		t.Errorf("F(0) = %v, want 0.5", got)
	}

	want := 1 / (1 + math32.Exp(-2))
	if got := (Sigmoid{}).F(a, 1); math32.Abs(got-want) > 1e-6 {
		t.Errorf("F(2) = %v, want %v", got, want)
	}

	// Df is expressed in terms of the output value.
	y := (Sigmoid{}).F(a, 1)
	if got, want := (Sigmoid{}).Df(y), y*(1-y); got != want {
		t.Errorf("Df(%v) = %v, want %v", y, got, want)
	}
}

func TestReLU(t *testing.T) {
	a := []float32{-1, 0, 3}

	for i, want := range []float32{0, 0, 3} {
		if got := (ReLU{}).F(a, i); got != want {
			t.Errorf("F(a, %d) = %v, want %v", i, got, want)
		}
	}
	if got := (ReLU{}).Df(3); got != 1 {
		t.Errorf("Df(3) = %v, want 1", got)
	}
	if got := (ReLU{}).Df(0); got != 0 {
		t.Errorf("Df(0) = %v, want 0", got)
	}
}

func TestTanH(t *testing.T) {
	a := []float32{0.7}
	y := (TanH{}).F(a, 0)
	if want := math32.Tanh(0.7); y != want {
		t.Errorf("F(0.7) = %v, want %v", y, want)
	}
	if got, want := (TanH{}).Df(y), 1-y*y; got != want {
		t.Errorf("Df(%v) = %v, want %v", y, got, want)
	}
}

func TestSoftmaxNormalizes(t *testing.T) {
	a := []float32{1, 2, 3, 4}

	var sum float32
	prev := float32(0)
	for i := range a {
		v := (Softmax{}).F(a, i)
		if v <= prev {
			t.Errorf("softmax not increasing at index %d: %v <= %v", i, v, prev)
		}
		prev = v
		sum += v
	}

	if math32.Abs(sum-1) > 1e-6 {
		t.Errorf("softmax outputs sum to %v, want 1", sum)
	}
}

func TestSoftmaxShiftInvariant(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{1001, 1002, 1003}

	for i := range a {
		va := (Softmax{}).F(a, i)
		vb := (Softmax{}).F(b, i)
		if math32.Abs(va-vb) > 1e-6 {
			t.Errorf("index %d: %v vs %v after shift", i, va, vb)
		}
	}
}
