package distribution

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/prob"
	"gonum.org/v1/gonum/stat/distuv"
	"gorgonia.org/tensor"
)

// MultivariateNormalDiag is a multivariate normal distribution with a
// diagonal covariance matrix. The last dimension of the parameter
// tensors is the event dimension; leading dimensions are batch
// dimensions.
type MultivariateNormalDiag struct {
	loc       *tensor.Dense
	scaleDiag *tensor.Dense

	batchShape tensor.Shape
	dim        int
}

// NewMultivariateNormalDiag returns a new MultivariateNormalDiag with
// the given location and diagonal scale. Both must hold float64s, have
// at least one dimension, and be broadcast-compatible.
func NewMultivariateNormalDiag(loc, scaleDiag *tensor.Dense) (
	*MultivariateNormalDiag, error) {
	if loc.Dtype() != tensor.Float64 ||
		scaleDiag.Dtype() != tensor.Float64 {
		return nil, fmt.Errorf("newMultivariateNormalDiag: expected "+
			"float64 parameters but got %v and %v", loc.Dtype(),
			scaleDiag.Dtype())
	}
	if len(loc.Shape()) < 1 || len(scaleDiag.Shape()) < 1 {
		return nil, fmt.Errorf("newMultivariateNormalDiag: %w: parameters "+
			"must have at least one dimension", prob.ErrIncompatibleShapes)
	}

	shape, err := prob.BroadcastShapes(loc.Shape(), scaleDiag.Shape())
	if err != nil {
		return nil, fmt.Errorf("newMultivariateNormalDiag: %w", err)
	}

	loc, err = prob.BroadcastTo(loc, shape)
	if err != nil {
		return nil, fmt.Errorf("newMultivariateNormalDiag: %w", err)
	}
	scaleDiag, err = prob.BroadcastTo(scaleDiag, shape)
	if err != nil {
		return nil, fmt.Errorf("newMultivariateNormalDiag: %w", err)
	}

	return &MultivariateNormalDiag{
		loc:        loc,
		scaleDiag:  scaleDiag,
		batchShape: shape[:len(shape)-1].Clone(),
		dim:        shape[len(shape)-1],
	}, nil
}

// Loc returns the location parameter at its broadcast shape.
func (m *MultivariateNormalDiag) Loc() *tensor.Dense { return m.loc }

// ScaleDiag returns the diagonal scale at its broadcast shape.
func (m *MultivariateNormalDiag) ScaleDiag() *tensor.Dense {
	return m.scaleDiag
}

// Dim returns the event dimensionality.
func (m *MultivariateNormalDiag) Dim() int { return m.dim }

// EventShape returns the trailing event dimension.
func (m *MultivariateNormalDiag) EventShape() tensor.Shape {
	return tensor.Shape{m.dim}
}

// BatchShape returns the leading dimensions of the parameter tensors.
func (m *MultivariateNormalDiag) BatchShape() tensor.Shape {
	return m.batchShape
}

// SampleN draws n independent event vectors per batch element from a
// standard normal stream seeded by key, shifted and scaled
// elementwise.
func (m *MultivariateNormalDiag) SampleN(key prob.Key, count int) (
	*tensor.Dense, error) {
	std := distuv.Normal{Mu: 0, Sigma: 1, Src: key.Source()}

	loc, err := prob.Float64s(m.loc)
	if err != nil {
		return nil, fmt.Errorf("sampleN: %v", err)
	}
	scale, err := prob.Float64s(m.scaleDiag)
	if err != nil {
		return nil, fmt.Errorf("sampleN: %v", err)
	}

	size := len(loc)
	out := make([]float64, count*size)
	for i := range out {
		out[i] = loc[i%size] + scale[i%size]*std.Rand()
	}

	shape := append(tensor.Shape{count}, m.batchShape...)
	shape = append(shape, m.dim)

	return prob.New(shape, out), nil
}

// Sample draws samples of the given sample shape.
func (m *MultivariateNormalDiag) Sample(seed,
	sampleShape interface{}) (*tensor.Dense, error) {
	return sampleShaped(m, seed, sampleShape)
}

// SampleAndLogProb draws samples together with their log densities.
func (m *MultivariateNormalDiag) SampleAndLogProb(seed,
	sampleShape interface{}) (*tensor.Dense, *tensor.Dense, error) {
	return sampleAndLogProbOf(m, seed, sampleShape)
}

// LogProb returns the log density of value, summing the elementwise
// normal terms over the event dimension.
func (m *MultivariateNormalDiag) LogProb(value *tensor.Dense) (
	*tensor.Dense, error) {
	terms, err := prob.Apply3(normalLogProb, value, m.loc, m.scaleDiag)
	if err != nil {
		return nil, fmt.Errorf("logProb: %w", err)
	}

	out, err := prob.SumTrailing(terms, 1)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}

	return out, nil
}

// Prob returns the density of value.
func (m *MultivariateNormalDiag) Prob(value *tensor.Dense) (*tensor.Dense,
	error) {
	return probOf(m, value)
}

// CDF has no closed form for multivariate normals.
func (m *MultivariateNormalDiag) CDF(*tensor.Dense) (*tensor.Dense, error) {
	return nil, unsupported("multivariate normal cdf")
}

// LogCDF has no closed form for multivariate normals.
func (m *MultivariateNormalDiag) LogCDF(*tensor.Dense) (*tensor.Dense,
	error) {
	return nil, unsupported("multivariate normal log cdf")
}

// Mean returns the location parameter. Summaries return copies so
// mutating the result cannot alter the distribution's parameters.
func (m *MultivariateNormalDiag) Mean() (*tensor.Dense, error) {
	return m.loc.Clone().(*tensor.Dense), nil
}

// Mode returns the location parameter.
func (m *MultivariateNormalDiag) Mode() (*tensor.Dense, error) {
	return m.loc.Clone().(*tensor.Dense), nil
}

// Median returns the location parameter.
func (m *MultivariateNormalDiag) Median() (*tensor.Dense, error) {
	return m.loc.Clone().(*tensor.Dense), nil
}

// StdDev returns the diagonal scale.
func (m *MultivariateNormalDiag) StdDev() (*tensor.Dense, error) {
	return m.scaleDiag.Clone().(*tensor.Dense), nil
}

// Variance returns the squared diagonal scale.
func (m *MultivariateNormalDiag) Variance() (*tensor.Dense, error) {
	return prob.Apply(m.scaleDiag,
		func(s float64) float64 { return s * s },
		func(s float32) float32 { return s * s },
	)
}

// Entropy returns the sum of the marginal entropies over the event
// dimension, per batch element.
func (m *MultivariateNormalDiag) Entropy() (*tensor.Dense, error) {
	terms, err := prob.Apply(m.scaleDiag,
		func(s float64) float64 {
			return 0.5 + halfLogTwoPi + math.Log(s)
		},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("entropy: %v", err)
	}

	out, err := prob.SumTrailing(terms, 1)
	if err != nil {
		return nil, fmt.Errorf("entropy: %v", err)
	}

	return out, nil
}

// KLDivergence returns KL(m ‖ other).
func (m *MultivariateNormalDiag) KLDivergence(other Distribution) (
	*tensor.Dense, error) {
	return KL(m, other)
}

// CrossEntropy returns H(m) + KL(m ‖ other).
func (m *MultivariateNormalDiag) CrossEntropy(other Distribution) (
	*tensor.Dense, error) {
	return CrossEntropy(m, other)
}

// klMVNDiagMVNDiag sums the elementwise normal divergences over the
// event dimension.
func klMVNDiagMVNDiag(a, b Distribution) (*tensor.Dense, error) {
	ma := a.(*MultivariateNormalDiag)
	mb := b.(*MultivariateNormalDiag)

	if ma.dim != mb.dim {
		return nil, fmt.Errorf("klMVNDiagMVNDiag: %w: event dimensions "+
			"%v and %v", prob.ErrIncompatibleShapes, ma.dim, mb.dim)
	}

	d, err := sub(ma.loc, mb.loc)
	if err != nil {
		return nil, fmt.Errorf("klMVNDiagMVNDiag: %w", err)
	}

	terms, err := prob.Apply3(func(d, sigma1, sigma2 float64) float64 {
		return normalKL(d, sigma1, 0, sigma2)
	}, d, ma.scaleDiag, mb.scaleDiag)
	if err != nil {
		return nil, fmt.Errorf("klMVNDiagMVNDiag: %w", err)
	}

	out, err := prob.SumTrailing(terms, 1)
	if err != nil {
		return nil, fmt.Errorf("klMVNDiagMVNDiag: %v", err)
	}

	return out, nil
}

func init() {
	RegisterKL(&MultivariateNormalDiag{}, &MultivariateNormalDiag{},
		klMVNDiagMVNDiag)
}
