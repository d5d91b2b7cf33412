package bijector

import (
	"fmt"

	"github.com/samuelfneumann/prob"
	"gorgonia.org/tensor"
)

// Chain composes bijectors. Like function composition, the last
// bijector given is applied first in the forward direction:
// NewChain(f, g) is the map x ↦ f(g(x)).
type Chain struct {
	bijectors []Bijector
}

// NewChain returns the composition of the given bijectors. At least
// one bijector is required, and all constituents must consume the same
// number of event dimensions so their Jacobian terms can be summed.
func NewChain(bijectors ...Bijector) (*Chain, error) {
	if len(bijectors) == 0 {
		return nil, fmt.Errorf("newChain: expected at least one bijector")
	}

	for _, b := range bijectors {
		if b.EventNDims() != bijectors[0].EventNDims() {
			return nil, fmt.Errorf("newChain: constituents consume "+
				"different event dimensions: %v and %v",
				bijectors[0].EventNDims(), b.EventNDims())
		}
	}

	return &Chain{bijectors: bijectors}, nil
}

// Forward applies each constituent in turn, innermost first.
func (c *Chain) Forward(x *tensor.Dense) (*tensor.Dense, error) {
	var err error
	for i := len(c.bijectors) - 1; i >= 0; i-- {
		x, err = c.bijectors[i].Forward(x)
		if err != nil {
			return nil, fmt.Errorf("forward: %v", err)
		}
	}

	return x, nil
}

// Inverse applies each constituent's inverse in turn, outermost first.
func (c *Chain) Inverse(y *tensor.Dense) (*tensor.Dense, error) {
	var err error
	for _, b := range c.bijectors {
		y, err = b.Inverse(y)
		if err != nil {
			return nil, fmt.Errorf("inverse: %v", err)
		}
	}

	return y, nil
}

// ForwardLogDetJacobian accumulates each constituent's contribution at
// the intermediate value it actually sees.
func (c *Chain) ForwardLogDetJacobian(x *tensor.Dense) (*tensor.Dense,
	error) {
	_, ldj, err := c.ForwardAndLogDet(x)

	return ldj, err
}

// InverseLogDetJacobian accumulates each constituent's inverse
// contribution at the intermediate value it actually sees.
func (c *Chain) InverseLogDetJacobian(y *tensor.Dense) (*tensor.Dense,
	error) {
	var total *tensor.Dense
	for _, b := range c.bijectors {
		ldj, err := b.InverseLogDetJacobian(y)
		if err != nil {
			return nil, fmt.Errorf("inverseLogDetJacobian: %v", err)
		}

		if total == nil {
			total = ldj
		} else {
			total, err = prob.Apply2(
				func(a, b float64) float64 { return a + b }, total, ldj)
			if err != nil {
				return nil, fmt.Errorf("inverseLogDetJacobian: %v", err)
			}
		}

		y, err = b.Inverse(y)
		if err != nil {
			return nil, fmt.Errorf("inverseLogDetJacobian: %v", err)
		}
	}

	return total, nil
}

// ForwardAndLogDet pushes x through the chain once, summing Jacobian
// terms along the way.
func (c *Chain) ForwardAndLogDet(x *tensor.Dense) (*tensor.Dense,
	*tensor.Dense, error) {
	var total *tensor.Dense
	for i := len(c.bijectors) - 1; i >= 0; i-- {
		y, ldj, err := c.bijectors[i].ForwardAndLogDet(x)
		if err != nil {
			return nil, nil, fmt.Errorf("forwardAndLogDet: %v", err)
		}

		if total == nil {
			total = ldj
		} else {
			total, err = prob.Apply2(
				func(a, b float64) float64 { return a + b }, total, ldj)
			if err != nil {
				return nil, nil, fmt.Errorf("forwardAndLogDet: %v", err)
			}
		}

		x = y
	}

	return x, total, nil
}

// IsConstantJacobian returns true only if every constituent has a
// constant Jacobian.
func (c *Chain) IsConstantJacobian() bool {
	for _, b := range c.bijectors {
		if !b.IsConstantJacobian() {
			return false
		}
	}

	return true
}

// EventNDims returns the event dimensions consumed by the
// constituents.
func (c *Chain) EventNDims() int { return c.bijectors[0].EventNDims() }

// ForwardEventShape composes the constituents' shape effects,
// innermost first.
func (c *Chain) ForwardEventShape(event tensor.Shape) tensor.Shape {
	for i := len(c.bijectors) - 1; i >= 0; i-- {
		event = c.bijectors[i].ForwardEventShape(event)
	}

	return event
}
