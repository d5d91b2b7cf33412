package bijector

import (
	"math"
	"testing"

	"github.com/samuelfneumann/prob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func TestExp(t *testing.T) {
	b := NewExp()
	xs := []float64{-5, -1, 0, 1, 5}

	checkRoundTrip(t, b, xs, 1e-12)
	checkJacobianRelation(t, b, xs, 1e-12)
	checkFused(t, b, xs)

	assert.False(t, b.IsConstantJacobian())
	assert.Equal(t, 0, b.EventNDims())
}

func TestExpLogDet(t *testing.T) {
	b := NewExp()

	// log|d/dx exp(x)| = x exactly.
	xs := []float64{-2, 0, 3}
	x := prob.New(tensor.Shape{len(xs)}, append([]float64{}, xs...))

	fldj, err := b.ForwardLogDetJacobian(x)
	require.NoError(t, err)
	assert.Equal(t, xs, values(t, fldj))

	y, err := b.Forward(x)
	require.NoError(t, err)

	ildj, err := b.InverseLogDetJacobian(y)
	require.NoError(t, err)
	for i, v := range values(t, ildj) {
		assert.InDelta(t, -xs[i], v, 1e-12)
	}
}

func TestExpDomain(t *testing.T) {
	b := NewExp()

	// Inverting at a point outside the codomain gives NaN, not a
	// panic; density code downstream treats NaN log-probabilities as
	// out of support.
	x, err := b.Inverse(prob.Scalar(-1))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(values(t, x)[0]))
}
