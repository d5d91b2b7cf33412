package bijector

import (
	"github.com/samuelfneumann/prob"
	"gorgonia.org/tensor"
)

// Identity is the trivial bijector y = x.
type Identity struct{}

// NewIdentity returns a new Identity bijector.
func NewIdentity() Identity { return Identity{} }

// Forward returns x.
func (Identity) Forward(x *tensor.Dense) (*tensor.Dense, error) {
	return x, nil
}

// Inverse returns y.
func (Identity) Inverse(y *tensor.Dense) (*tensor.Dense, error) {
	return y, nil
}

// ForwardLogDetJacobian returns zeros shaped like x.
func (Identity) ForwardLogDetJacobian(x *tensor.Dense) (*tensor.Dense,
	error) {
	return prob.Apply(x,
		func(float64) float64 { return 0 },
		func(float32) float32 { return 0 },
	)
}

// InverseLogDetJacobian returns zeros shaped like y.
func (i Identity) InverseLogDetJacobian(y *tensor.Dense) (*tensor.Dense,
	error) {
	return i.ForwardLogDetJacobian(y)
}

// ForwardAndLogDet computes Forward and ForwardLogDetJacobian
// together.
func (i Identity) ForwardAndLogDet(x *tensor.Dense) (*tensor.Dense,
	*tensor.Dense, error) {
	return forwardAndLogDetOf(i, x)
}

// IsConstantJacobian returns true.
func (Identity) IsConstantJacobian() bool { return true }

// EventNDims returns 0.
func (Identity) EventNDims() int { return 0 }

// ForwardEventShape returns event unchanged.
func (Identity) ForwardEventShape(event tensor.Shape) tensor.Shape {
	return event
}
