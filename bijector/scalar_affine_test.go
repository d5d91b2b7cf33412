package bijector

import (
	"math"
	"testing"

	"github.com/samuelfneumann/prob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func TestScalarAffine(t *testing.T) {
	b, err := NewScalarAffine(3, -2)
	require.NoError(t, err)

	xs := []float64{-4, 0, 7}

	checkRoundTrip(t, b, xs, 1e-12)
	checkJacobianRelation(t, b, xs, 1e-12)
	checkFused(t, b, xs)

	assert.Equal(t, 3.0, b.Shift())
	assert.Equal(t, -2.0, b.Scale())
	assert.True(t, b.IsConstantJacobian())
	assert.Equal(t, 0, b.EventNDims())
}

func TestScalarAffineForward(t *testing.T) {
	b, err := NewScalarAffine(1, 2)
	require.NoError(t, err)

	y, err := b.Forward(prob.New(tensor.Shape{3}, []float64{0, 1, 2}))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3, 5}, values(t, y))
}

func TestScalarAffineLogDet(t *testing.T) {
	// The Jacobian is log|scale| regardless of sign and of the point
	// of evaluation.
	b, err := NewScalarAffine(0, -4)
	require.NoError(t, err)

	fldj, err := b.ForwardLogDetJacobian(
		prob.New(tensor.Shape{2}, []float64{-100, 100}))
	require.NoError(t, err)

	for _, v := range values(t, fldj) {
		assert.InDelta(t, math.Log(4), v, 1e-15)
	}
}

func TestScalarAffineZeroScale(t *testing.T) {
	_, err := NewScalarAffine(1, 0)
	assert.Error(t, err)
}
