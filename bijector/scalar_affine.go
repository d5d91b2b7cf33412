package bijector

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/prob"
	"gorgonia.org/tensor"
)

// ScalarAffine maps y = shift + scale * x elementwise. Its Jacobian is
// the constant log|scale|.
type ScalarAffine struct {
	shift, scale float64
	logScale     float64
}

// NewScalarAffine returns a new ScalarAffine bijector. The scale must
// be non-zero, otherwise the map is not invertible.
func NewScalarAffine(shift, scale float64) (*ScalarAffine, error) {
	if scale == 0 {
		return nil, fmt.Errorf("newScalarAffine: scale must be non-zero")
	}

	return &ScalarAffine{
		shift:    shift,
		scale:    scale,
		logScale: math.Log(math.Abs(scale)),
	}, nil
}

// Shift returns the additive term of the map.
func (s *ScalarAffine) Shift() float64 { return s.shift }

// Scale returns the multiplicative term of the map.
func (s *ScalarAffine) Scale() float64 { return s.scale }

// Forward computes shift + scale*x elementwise.
func (s *ScalarAffine) Forward(x *tensor.Dense) (*tensor.Dense, error) {
	return prob.Apply(x,
		func(v float64) float64 { return s.shift + s.scale*v },
		func(v float32) float32 {
			return float32(s.shift) + float32(s.scale)*v
		},
	)
}

// Inverse computes (y - shift) / scale elementwise.
func (s *ScalarAffine) Inverse(y *tensor.Dense) (*tensor.Dense, error) {
	return prob.Apply(y,
		func(v float64) float64 { return (v - s.shift) / s.scale },
		func(v float32) float32 {
			return (v - float32(s.shift)) / float32(s.scale)
		},
	)
}

// ForwardLogDetJacobian returns log|scale| at every element of x.
func (s *ScalarAffine) ForwardLogDetJacobian(x *tensor.Dense) (*tensor.Dense,
	error) {
	return prob.Apply(x,
		func(float64) float64 { return s.logScale },
		func(float32) float32 { return float32(s.logScale) },
	)
}

// InverseLogDetJacobian returns -log|scale| at every element of y.
func (s *ScalarAffine) InverseLogDetJacobian(y *tensor.Dense) (*tensor.Dense,
	error) {
	return prob.Apply(y,
		func(float64) float64 { return -s.logScale },
		func(float32) float32 { return float32(-s.logScale) },
	)
}

// ForwardAndLogDet computes Forward and ForwardLogDetJacobian
// together.
func (s *ScalarAffine) ForwardAndLogDet(x *tensor.Dense) (*tensor.Dense,
	*tensor.Dense, error) {
	return forwardAndLogDetOf(s, x)
}

// IsConstantJacobian returns true.
func (*ScalarAffine) IsConstantJacobian() bool { return true }

// EventNDims returns 0: ScalarAffine acts elementwise.
func (*ScalarAffine) EventNDims() int { return 0 }

// ForwardEventShape returns event unchanged.
func (*ScalarAffine) ForwardEventShape(event tensor.Shape) tensor.Shape {
	return event
}
