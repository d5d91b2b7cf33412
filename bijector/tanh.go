package bijector

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/samuelfneumann/prob"
	"gorgonia.org/tensor"
)

// Tanh maps the real line onto (-1, 1) through y = tanh(x). The
// forward log-det-Jacobian uses the identity
//
//	log(1 - tanh(x)^2) = 2 * (log(2) - x - softplus(-2x))
//
// which stays accurate where 1 - tanh(x)^2 underflows.
type Tanh struct{}

// NewTanh returns a new Tanh bijector.
func NewTanh() Tanh { return Tanh{} }

// Forward computes tanh(x) elementwise.
func (Tanh) Forward(x *tensor.Dense) (*tensor.Dense, error) {
	return prob.Apply(x, math.Tanh, math32.Tanh)
}

// Inverse computes atanh(y) elementwise.
func (Tanh) Inverse(y *tensor.Dense) (*tensor.Dense, error) {
	return prob.Apply(y, math.Atanh, math32.Atanh)
}

// ForwardLogDetJacobian computes 2(log2 - x - softplus(-2x))
// elementwise.
func (Tanh) ForwardLogDetJacobian(x *tensor.Dense) (*tensor.Dense, error) {
	return prob.Apply(x,
		func(v float64) float64 {
			return 2.0 * (math.Ln2 - v - prob.Softplus(-2.0*v))
		},
		func(v float32) float32 {
			return 2.0 * (math32.Ln2 - v - prob.Softplus32(-2.0*v))
		},
	)
}

// InverseLogDetJacobian derives the inverse direction from the
// forward closed form.
func (t Tanh) InverseLogDetJacobian(y *tensor.Dense) (*tensor.Dense,
	error) {
	return InverseLogDetJacobianOf(t, y)
}

// ForwardAndLogDet computes Forward and ForwardLogDetJacobian
// together.
func (t Tanh) ForwardAndLogDet(x *tensor.Dense) (*tensor.Dense,
	*tensor.Dense, error) {
	return forwardAndLogDetOf(t, x)
}

// IsConstantJacobian returns false.
func (Tanh) IsConstantJacobian() bool { return false }

// EventNDims returns 0: Tanh acts elementwise.
func (Tanh) EventNDims() int { return 0 }

// ForwardEventShape returns event unchanged.
func (Tanh) ForwardEventShape(event tensor.Shape) tensor.Shape {
	return event
}
