package bijector

import "gorgonia.org/tensor"

// Invert swaps the two directions of a bijector: the forward map of
// Invert(b) is b's inverse and vice versa.
type Invert struct {
	bijector Bijector
}

// NewInvert returns the inverse of b as a bijector in its own right.
func NewInvert(b Bijector) *Invert { return &Invert{bijector: b} }

// Forward evaluates the wrapped bijector's inverse.
func (i *Invert) Forward(x *tensor.Dense) (*tensor.Dense, error) {
	return i.bijector.Inverse(x)
}

// Inverse evaluates the wrapped bijector's forward map.
func (i *Invert) Inverse(y *tensor.Dense) (*tensor.Dense, error) {
	return i.bijector.Forward(y)
}

// ForwardLogDetJacobian evaluates the wrapped bijector's inverse
// log-det-Jacobian.
func (i *Invert) ForwardLogDetJacobian(x *tensor.Dense) (*tensor.Dense,
	error) {
	return i.bijector.InverseLogDetJacobian(x)
}

// InverseLogDetJacobian evaluates the wrapped bijector's forward
// log-det-Jacobian.
func (i *Invert) InverseLogDetJacobian(y *tensor.Dense) (*tensor.Dense,
	error) {
	return i.bijector.ForwardLogDetJacobian(y)
}

// ForwardAndLogDet computes Forward and ForwardLogDetJacobian
// together.
func (i *Invert) ForwardAndLogDet(x *tensor.Dense) (*tensor.Dense,
	*tensor.Dense, error) {
	return forwardAndLogDetOf(i, x)
}

// IsConstantJacobian reports whether the wrapped bijector has a
// constant Jacobian.
func (i *Invert) IsConstantJacobian() bool {
	return i.bijector.IsConstantJacobian()
}

// EventNDims returns the event dimensions consumed by the wrapped
// bijector.
func (i *Invert) EventNDims() int { return i.bijector.EventNDims() }

// ForwardEventShape returns the event shape produced by the wrapped
// bijector's inverse. Only shape-preserving bijectors can be inverted
// without a dedicated inverse shape rule, so the event shape passes
// through unchanged.
func (i *Invert) ForwardEventShape(event tensor.Shape) tensor.Shape {
	return event
}
