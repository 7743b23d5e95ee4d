package mlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsMalformedChains(t *testing.T) {
	t.Run("no nodes", func(t *testing.T) {
		_, err := New()
		require.Error(t, err)
	})

	t.Run("missing input terminal", func(t *testing.T) {
		_, err := New(
			NewDense(Sigmoid{}, 2, 2, true),
			NewDense(Sigmoid{}, 2, 1, true),
		)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "input terminal")
	})

	t.Run("interior input terminal", func(t *testing.T) {
		_, err := New(
			NewInput(2),
			NewInput(2),
			NewDense(Sigmoid{}, 2, 1, true),
		)
		require.Error(t, err)
	})

	t.Run("size mismatch", func(t *testing.T) {
		_, err := New(
			NewInput(2),
			NewDense(Sigmoid{}, 2, 4, true),
			NewDense(Sigmoid{}, 3, 1, true),
		)
		require.Error(t, err)
	})

	t.Run("lone input", func(t *testing.T) {
		_, err := New(NewInput(2))
		require.Error(t, err)
	})
}

func TestNetworkShape(t *testing.T) {
	net, err := New(
		NewInput(4),
		NewDense(Sigmoid{}, 4, 3, true),
		NewDense(Identity{}, 3, 2, false),
	)
	require.NoError(t, err)

	assert.Equal(t, 3, net.Len())
	assert.Equal(t, 4, net.InSize())
	assert.Equal(t, 2, net.OutSize())

	input := net.Node(0)
	assert.Equal(t, KindInput, input.Kind())
	assert.Equal(t, 0, input.ConnectionSize())
	assert.Equal(t, 4, input.FanInSize())
	assert.Equal(t, 4, input.FanOutSize())

	assert.Equal(t, 4*3+3, net.Node(1).ConnectionSize())
	assert.Equal(t, 3*2, net.Node(2).ConnectionSize())
}

// The backward relay must terminate at the input terminal and return a
// delta sized to the input.
func TestBackwardTerminatesAtInput(t *testing.T) {
	net, err := New(
		NewInput(4),
		NewDense(Sigmoid{}, 4, 3, true),
		NewDense(Sigmoid{}, 3, 2, true),
	)
	require.NoError(t, err)
	XavierUniform(net, 21)

	ws := net.NewWorkspace()
	net.Forward(ws, []float32{0.1, 0.2, 0.3, 0.4})

	prevDelta := net.Backward(ws, []float32{1, -1})
	require.Len(t, prevDelta, 4)

	prevDelta2 := net.Backward2nd(ws, []float32{1, 1})
	require.Len(t, prevDelta2, 4)
}

func TestZeroHessian(t *testing.T) {
	net, err := New(
		NewInput(2),
		NewDense(Identity{}, 2, 2, true),
	)
	require.NoError(t, err)
	XavierUniform(net, 8)

	ws := net.NewWorkspace()
	net.Forward(ws, []float32{1, 2})
	net.Backward2nd(ws, []float32{1, 1})

	d := net.Node(1).(*Dense)
	require.NotEqual(t, float32(0), d.WHessian[0])

	net.ZeroHessian()
	for j, h := range d.WHessian {
		assert.Zerof(t, h, "WHessian[%d]", j)
	}
	for j, h := range d.BHessian {
		assert.Zerof(t, h, "BHessian[%d]", j)
	}
}
