package distribution

import (
	"fmt"
	"reflect"

	"github.com/samuelfneumann/prob"
	"github.com/samuelfneumann/prob/bijector"
	"gorgonia.org/tensor"
)

// Transformed is the pushforward of a base distribution through a
// bijector: samples are drawn from the base and mapped forward, and
// densities are corrected by the bijector's log-det-Jacobian under the
// change of variables. The base distribution and bijector are shared,
// not copied.
type Transformed struct {
	base Distribution
	bij  bijector.Bijector

	eventShape tensor.Shape
	eventNDims int
}

// NewTransformed returns the distribution of bij(X) where X follows
// base.
func NewTransformed(base Distribution,
	bij bijector.Bijector) (*Transformed, error) {
	if base == nil || bij == nil {
		return nil, fmt.Errorf("newTransformed: base distribution and " +
			"bijector must be non-nil")
	}

	event := bij.ForwardEventShape(base.EventShape())

	return &Transformed{
		base:       base,
		bij:        bij,
		eventShape: event,
		eventNDims: len(base.EventShape()),
	}, nil
}

// Base returns the base distribution.
func (t *Transformed) Base() Distribution { return t.base }

// Bijector returns the transform.
func (t *Transformed) Bijector() bijector.Bijector { return t.bij }

// EventShape returns the base event shape pushed through the
// bijector's shape transform.
func (t *Transformed) EventShape() tensor.Shape { return t.eventShape }

// BatchShape returns the base batch shape.
func (t *Transformed) BatchShape() tensor.Shape {
	return t.base.BatchShape()
}

// SampleN draws n samples from the base and maps them forward.
func (t *Transformed) SampleN(key prob.Key, count int) (*tensor.Dense,
	error) {
	x, err := t.base.SampleN(key, count)
	if err != nil {
		return nil, fmt.Errorf("sampleN: %v", err)
	}

	y, err := t.bij.Forward(x)
	if err != nil {
		return nil, fmt.Errorf("sampleN: %v", err)
	}

	return y, nil
}

// Sample draws samples of the given sample shape.
func (t *Transformed) Sample(seed, sampleShape interface{}) (*tensor.Dense,
	error) {
	return sampleShaped(t, seed, sampleShape)
}

// SampleAndLogProb draws samples and their log densities in one pass:
// the base's own fused sampler supplies x and log p(x), and the
// forward log-det-Jacobian computed at x corrects the density. This
// avoids round-tripping through Inverse and keeps the two outputs
// consistent to floating-point accuracy.
func (t *Transformed) SampleAndLogProb(seed, sampleShape interface{}) (
	*tensor.Dense, *tensor.Dense, error) {
	key, shape, err := prob.ConvertSeedAndSampleShape(seed, sampleShape)
	if err != nil {
		return nil, nil, fmt.Errorf("sampleAndLogProb: %w", err)
	}

	x, baseLogProb, err := t.base.SampleAndLogProb(key, shape)
	if err != nil {
		return nil, nil, fmt.Errorf("sampleAndLogProb: %v", err)
	}

	y, ldj, err := t.bij.ForwardAndLogDet(x)
	if err != nil {
		return nil, nil, fmt.Errorf("sampleAndLogProb: %v", err)
	}

	ldjSum, err := prob.SumTrailing(ldj, t.eventNDims)
	if err != nil {
		return nil, nil, fmt.Errorf("sampleAndLogProb: %v", err)
	}

	logProb, err := sub(baseLogProb, ldjSum)
	if err != nil {
		return nil, nil, fmt.Errorf("sampleAndLogProb: %v", err)
	}

	return y, logProb, nil
}

// LogProb returns log p(inverse(y)) plus the inverse log-det-Jacobian
// at y, summed over the event dimensions.
func (t *Transformed) LogProb(value *tensor.Dense) (*tensor.Dense, error) {
	x, err := t.bij.Inverse(value)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}

	baseLogProb, err := t.base.LogProb(x)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}

	ildj, err := t.bij.InverseLogDetJacobian(value)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}

	ildjSum, err := prob.SumTrailing(ildj, t.eventNDims)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}

	out, err := add(baseLogProb, ildjSum)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}

	return out, nil
}

// Prob returns the density of value.
func (t *Transformed) Prob(value *tensor.Dense) (*tensor.Dense, error) {
	return probOf(t, value)
}

// CDF has no generic form: it would require knowing the bijector's
// monotonicity.
func (t *Transformed) CDF(*tensor.Dense) (*tensor.Dense, error) {
	return nil, unsupported("transformed cdf")
}

// LogCDF has no generic form.
func (t *Transformed) LogCDF(*tensor.Dense) (*tensor.Dense, error) {
	return nil, unsupported("transformed log cdf")
}

// Mean has no generic form: expectations do not commute with nonlinear
// maps.
func (t *Transformed) Mean() (*tensor.Dense, error) {
	return nil, unsupported("transformed mean")
}

// Mode has no generic form.
func (t *Transformed) Mode() (*tensor.Dense, error) {
	return nil, unsupported("transformed mode")
}

// Median has no generic form.
func (t *Transformed) Median() (*tensor.Dense, error) {
	return nil, unsupported("transformed median")
}

// StdDev has no generic form.
func (t *Transformed) StdDev() (*tensor.Dense, error) {
	return nil, unsupported("transformed stddev")
}

// Variance has no generic form.
func (t *Transformed) Variance() (*tensor.Dense, error) {
	return nil, unsupported("transformed variance")
}

// Entropy is the base entropy shifted by the log-det-Jacobian when the
// Jacobian is constant; otherwise it has no closed form.
func (t *Transformed) Entropy() (*tensor.Dense, error) {
	if !t.bij.IsConstantJacobian() {
		return nil, unsupported("transformed entropy")
	}

	baseEntropy, err := t.base.Entropy()
	if err != nil {
		return nil, fmt.Errorf("entropy: %v", err)
	}

	// The Jacobian is constant, so evaluate it at an arbitrary point
	// of the right shape.
	point, err := prob.BroadcastTo(prob.Scalar(0), t.base.EventShape())
	if err != nil {
		return nil, fmt.Errorf("entropy: %v", err)
	}

	ldj, err := t.bij.ForwardLogDetJacobian(point)
	if err != nil {
		return nil, fmt.Errorf("entropy: %v", err)
	}

	ldjSum, err := prob.SumTrailing(ldj, t.eventNDims)
	if err != nil {
		return nil, fmt.Errorf("entropy: %v", err)
	}

	out, err := add(baseEntropy, ldjSum)
	if err != nil {
		return nil, fmt.Errorf("entropy: %v", err)
	}

	return out, nil
}

// KLDivergence returns KL(t ‖ other).
func (t *Transformed) KLDivergence(other Distribution) (*tensor.Dense,
	error) {
	return KL(t, other)
}

// CrossEntropy returns H(t) + KL(t ‖ other).
func (t *Transformed) CrossEntropy(other Distribution) (*tensor.Dense,
	error) {
	return CrossEntropy(t, other)
}

// klTransformedTransformed exploits the invariance of KL under a
// common invertible map: when both sides share the same bijector, the
// divergence equals that of the base distributions.
func klTransformedTransformed(a, b Distribution) (*tensor.Dense, error) {
	ta := a.(*Transformed)
	tb := b.(*Transformed)

	if !reflect.DeepEqual(ta.bij, tb.bij) {
		return nil, fmt.Errorf("%w: transformed distributions with "+
			"different bijectors", prob.ErrUnsupportedDivergence)
	}

	return KL(ta.base, tb.base)
}

func init() {
	RegisterKL(&Transformed{}, &Transformed{}, klTransformedTransformed)
}
