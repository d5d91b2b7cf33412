// Package bijector provides invertible, differentiable transforms with
// computable log-determinant Jacobians, used to build transformed
// distributions by change-of-variables.
//
// All bijectors are immutable after construction and hold no hidden
// state, so a single bijector may be used from many goroutines at
// once. Scalar bijectors act elementwise and support float64 and
// float32 tensors.
package bijector

import (
	"fmt"

	"github.com/samuelfneumann/prob"
	"gorgonia.org/tensor"
)

// A Bijector is an invertible map between a domain and a codomain,
// together with the log-absolute-determinant of its local Jacobian in
// each direction. The Jacobian terms are elementwise: they are not yet
// summed over event dimensions, which is the caller's job since only
// the caller knows how many trailing dimensions constitute an event.
type Bijector interface {
	// Forward evaluates the transform at x.
	Forward(x *tensor.Dense) (*tensor.Dense, error)

	// Inverse evaluates the inverse transform at y.
	Inverse(y *tensor.Dense) (*tensor.Dense, error)

	// ForwardLogDetJacobian returns log|det J(x)| of the forward
	// transform, elementwise over x.
	ForwardLogDetJacobian(x *tensor.Dense) (*tensor.Dense, error)

	// InverseLogDetJacobian returns log|det J(y)| of the inverse
	// transform, elementwise over y. It always equals the negated
	// ForwardLogDetJacobian at the pre-image of y, but implementations
	// may compute it directly when a more stable closed form exists.
	InverseLogDetJacobian(y *tensor.Dense) (*tensor.Dense, error)

	// ForwardAndLogDet returns Forward(x) and
	// ForwardLogDetJacobian(x) together, sharing work where possible.
	ForwardAndLogDet(x *tensor.Dense) (*tensor.Dense, *tensor.Dense, error)

	// IsConstantJacobian reports whether log|det J| is the same at
	// every point of the domain.
	IsConstantJacobian() bool

	// EventNDims returns the number of trailing event dimensions the
	// transform consumes. Scalar bijectors consume none.
	EventNDims() int

	// ForwardEventShape returns the event shape produced by the
	// forward transform for a given input event shape.
	ForwardEventShape(event tensor.Shape) tensor.Shape
}

// InverseLogDetJacobianOf derives the inverse log-det-Jacobian of b at
// y through the generic relation ildj(y) = -fldj(inverse(y)). Bijectors
// without a directly stable inverse form implement
// InverseLogDetJacobian with it.
func InverseLogDetJacobianOf(b Bijector, y *tensor.Dense) (*tensor.Dense,
	error) {
	x, err := b.Inverse(y)
	if err != nil {
		return nil, fmt.Errorf("inverseLogDetJacobian: %v", err)
	}

	fldj, err := b.ForwardLogDetJacobian(x)
	if err != nil {
		return nil, fmt.Errorf("inverseLogDetJacobian: %v", err)
	}

	return prob.Apply(fldj,
		func(v float64) float64 { return -v },
		func(v float32) float32 { return -v },
	)
}

// forwardAndLogDetOf is the generic ForwardAndLogDet for bijectors
// whose forward and Jacobian evaluations share no work.
func forwardAndLogDetOf(b Bijector, x *tensor.Dense) (*tensor.Dense,
	*tensor.Dense, error) {
	y, err := b.Forward(x)
	if err != nil {
		return nil, nil, err
	}

	ldj, err := b.ForwardLogDetJacobian(x)
	if err != nil {
		return nil, nil, err
	}

	return y, ldj, nil
}
