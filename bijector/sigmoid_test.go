package bijector

import (
	"math"
	"testing"

	"github.com/samuelfneumann/prob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func TestSigmoid(t *testing.T) {
	s := NewSigmoid()
	xs := []float64{-10, -3.3, 0, 3.3, 10}

	checkRoundTrip(t, s, xs, 1e-9)
	checkJacobianRelation(t, s, xs, 1e-9)
	checkFused(t, s, xs)

	assert.False(t, s.IsConstantJacobian())
	assert.Equal(t, 0, s.EventNDims())
	assert.Equal(t, tensor.Shape{3}, s.ForwardEventShape(tensor.Shape{3}))
}

func TestSigmoidForward(t *testing.T) {
	s := NewSigmoid()

	y, err := s.Forward(prob.Scalar(0))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, values(t, y)[0], 1e-15)
}

func TestSigmoidTailStability(t *testing.T) {
	s := NewSigmoid()

	// Far into the tails the naive log(sigmoid * (1 - sigmoid))
	// saturates to -Inf; the closed form must stay finite with the
	// asymptote fldj(x) -> -|x|.
	xs := []float64{-40, -700, 700, 40}
	x := prob.New(tensor.Shape{len(xs)}, append([]float64{}, xs...))

	fldj, err := s.ForwardLogDetJacobian(x)
	require.NoError(t, err)

	for i, v := range values(t, fldj) {
		require.False(t, math.IsInf(v, 0), "x = %v", xs[i])
		assert.InDelta(t, -math.Abs(xs[i]), v, 1e-9, "x = %v", xs[i])
	}
}

func TestSigmoidInverseLogDetDirectForm(t *testing.T) {
	s := NewSigmoid()

	// Near the boundary of the unit interval the direct
	// -log(y) - log1p(-y) form must remain finite and match the
	// asymptote.
	y := prob.New(tensor.Shape{2}, []float64{1e-300, 1 - 1e-12})

	ildj, err := s.InverseLogDetJacobian(y)
	require.NoError(t, err)

	got := values(t, ildj)
	assert.InDelta(t, -math.Log(1e-300), got[0], 1e-6)
	assert.InDelta(t, -math.Log(1e-12), got[1], 1e-3)
}

func TestSigmoidFloat32(t *testing.T) {
	s := NewSigmoid()

	x := prob.New32(tensor.Shape{3}, []float32{-5, 0, 5})

	y, err := s.Forward(x)
	require.NoError(t, err)
	require.Equal(t, tensor.Float32, y.Dtype())

	back, err := s.Inverse(y)
	require.NoError(t, err)
	require.Equal(t, tensor.Float32, back.Dtype())

	data, err := prob.Float32s(back)
	require.NoError(t, err)
	for i, want := range []float32{-5, 0, 5} {
		assert.InDelta(t, want, data[i], 1e-4)
	}
}
