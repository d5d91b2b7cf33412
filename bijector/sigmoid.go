package bijector

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/samuelfneumann/prob"
	"gorgonia.org/tensor"
)

// Sigmoid maps the real line onto the open unit interval through
// y = 1 / (1 + exp(-x)).
//
// Both log-det-Jacobian directions use closed forms that stay finite
// and accurate far into the tails, where the naive
// log(sigmoid(x) * (1 - sigmoid(x))) saturates and cancels
// catastrophically:
//
//	fldj(x) = -softplus(-x) - softplus(x)
//	ildj(y) = -log(y) - log1p(-y)
type Sigmoid struct{}

// NewSigmoid returns a new Sigmoid bijector.
func NewSigmoid() Sigmoid { return Sigmoid{} }

// Forward computes sigmoid(x) elementwise.
func (Sigmoid) Forward(x *tensor.Dense) (*tensor.Dense, error) {
	return prob.Apply(x, prob.Sigmoid, prob.Sigmoid32)
}

// Inverse computes logit(y) elementwise.
func (Sigmoid) Inverse(y *tensor.Dense) (*tensor.Dense, error) {
	return prob.Apply(y, prob.Logit, prob.Logit32)
}

// ForwardLogDetJacobian computes -softplus(-x) - softplus(x)
// elementwise.
func (Sigmoid) ForwardLogDetJacobian(x *tensor.Dense) (*tensor.Dense,
	error) {
	return prob.Apply(x,
		func(v float64) float64 {
			return -prob.Softplus(-v) - prob.Softplus(v)
		},
		func(v float32) float32 {
			return -prob.Softplus32(-v) - prob.Softplus32(v)
		},
	)
}

// InverseLogDetJacobian computes -log(y) - log1p(-y) elementwise. This
// direct form avoids the round trip through Inverse, which would lose
// precision as y approaches 0 or 1.
func (Sigmoid) InverseLogDetJacobian(y *tensor.Dense) (*tensor.Dense,
	error) {
	return prob.Apply(y,
		func(v float64) float64 {
			return -math.Log(v) - math.Log1p(-v)
		},
		func(v float32) float32 {
			return -math32.Log(v) - math32.Log1p(-v)
		},
	)
}

// ForwardAndLogDet computes Forward and ForwardLogDetJacobian
// together.
func (s Sigmoid) ForwardAndLogDet(x *tensor.Dense) (*tensor.Dense,
	*tensor.Dense, error) {
	return forwardAndLogDetOf(s, x)
}

// IsConstantJacobian returns false.
func (Sigmoid) IsConstantJacobian() bool { return false }

// EventNDims returns 0: Sigmoid acts elementwise.
func (Sigmoid) EventNDims() int { return 0 }

// ForwardEventShape returns event unchanged.
func (Sigmoid) ForwardEventShape(event tensor.Shape) tensor.Shape {
	return event
}
