package bijector

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/samuelfneumann/prob"
	"gorgonia.org/tensor"
)

// Exp maps the real line onto the positive reals through y = exp(x).
// A standard normal pushed through Exp is the log-normal distribution.
type Exp struct{}

// NewExp returns a new Exp bijector.
func NewExp() Exp { return Exp{} }

// Forward computes exp(x) elementwise.
func (Exp) Forward(x *tensor.Dense) (*tensor.Dense, error) {
	return prob.Apply(x, math.Exp, math32.Exp)
}

// Inverse computes log(y) elementwise.
func (Exp) Inverse(y *tensor.Dense) (*tensor.Dense, error) {
	return prob.Apply(y, math.Log, math32.Log)
}

// ForwardLogDetJacobian returns x: log|d/dx exp(x)| = x.
func (Exp) ForwardLogDetJacobian(x *tensor.Dense) (*tensor.Dense, error) {
	return prob.Apply(x,
		func(v float64) float64 { return v },
		func(v float32) float32 { return v },
	)
}

// InverseLogDetJacobian returns -log(y) directly rather than through
// the generic relation, skipping an exp/log round trip.
func (Exp) InverseLogDetJacobian(y *tensor.Dense) (*tensor.Dense, error) {
	return prob.Apply(y,
		func(v float64) float64 { return -math.Log(v) },
		func(v float32) float32 { return -math32.Log(v) },
	)
}

// ForwardAndLogDet computes Forward and ForwardLogDetJacobian
// together.
func (e Exp) ForwardAndLogDet(x *tensor.Dense) (*tensor.Dense,
	*tensor.Dense, error) {
	return forwardAndLogDetOf(e, x)
}

// IsConstantJacobian returns false.
func (Exp) IsConstantJacobian() bool { return false }

// EventNDims returns 0: Exp acts elementwise.
func (Exp) EventNDims() int { return 0 }

// ForwardEventShape returns event unchanged.
func (Exp) ForwardEventShape(event tensor.Shape) tensor.Shape {
	return event
}
