package distribution

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/prob"
	"gonum.org/v1/gonum/stat/distuv"
	"gorgonia.org/tensor"
)

// Normal is a univariate normal distribution, which may hold a batch
// of normal distributions simultaneously: the location and scale
// tensors are broadcast against each other at construction, and each
// element of the broadcast result parameterizes an independent
// distribution. The event shape is always scalar; the batch shape is
// the broadcast parameter shape.
type Normal struct {
	loc   *tensor.Dense
	scale *tensor.Dense

	batchShape tensor.Shape
}

// NewNormal returns a new Normal with the given location and scale.
// The parameters must hold float64s and be broadcast-compatible; they
// are materialized at their broadcast shape once, here, so shape
// queries never re-derive it.
func NewNormal(loc, scale *tensor.Dense) (*Normal, error) {
	if loc.Dtype() != tensor.Float64 || scale.Dtype() != tensor.Float64 {
		return nil, fmt.Errorf("newNormal: expected float64 parameters "+
			"but got %v and %v", loc.Dtype(), scale.Dtype())
	}

	batch, err := prob.BroadcastShapes(loc.Shape(), scale.Shape())
	if err != nil {
		return nil, fmt.Errorf("newNormal: %w", err)
	}

	loc, err = prob.BroadcastTo(loc, batch)
	if err != nil {
		return nil, fmt.Errorf("newNormal: %w", err)
	}
	scale, err = prob.BroadcastTo(scale, batch)
	if err != nil {
		return nil, fmt.Errorf("newNormal: %w", err)
	}

	return &Normal{loc: loc, scale: scale, batchShape: batch}, nil
}

// Loc returns the location parameter at its broadcast shape.
func (n *Normal) Loc() *tensor.Dense { return n.loc }

// Scale returns the scale parameter at its broadcast shape.
func (n *Normal) Scale() *tensor.Dense { return n.scale }

// EventShape returns the scalar event shape.
func (n *Normal) EventShape() tensor.Shape { return tensor.Shape{} }

// BatchShape returns the broadcast parameter shape.
func (n *Normal) BatchShape() tensor.Shape { return n.batchShape }

// SampleN draws n independent samples per batch element using a
// standard normal stream seeded by key, shifted and scaled by the
// parameters.
func (n *Normal) SampleN(key prob.Key, count int) (*tensor.Dense, error) {
	std := distuv.Normal{Mu: 0, Sigma: 1, Src: key.Source()}

	loc, err := prob.Float64s(n.loc)
	if err != nil {
		return nil, fmt.Errorf("sampleN: %v", err)
	}
	scale, err := prob.Float64s(n.scale)
	if err != nil {
		return nil, fmt.Errorf("sampleN: %v", err)
	}

	batch := len(loc)
	out := make([]float64, count*batch)
	for i := range out {
		out[i] = loc[i%batch] + scale[i%batch]*std.Rand()
	}

	shape := append(tensor.Shape{count}, n.batchShape...)

	return prob.New(shape, out), nil
}

// Sample draws samples of the given sample shape.
func (n *Normal) Sample(seed, sampleShape interface{}) (*tensor.Dense,
	error) {
	return sampleShaped(n, seed, sampleShape)
}

// SampleAndLogProb draws samples together with their log densities.
func (n *Normal) SampleAndLogProb(seed, sampleShape interface{}) (
	*tensor.Dense, *tensor.Dense, error) {
	return sampleAndLogProbOf(n, seed, sampleShape)
}

// LogProb returns the log density of value, broadcasting its leading
// dimensions against the batch shape.
func (n *Normal) LogProb(value *tensor.Dense) (*tensor.Dense, error) {
	out, err := prob.Apply3(normalLogProb, value, n.loc, n.scale)
	if err != nil {
		return nil, fmt.Errorf("logProb: %w", err)
	}

	return out, nil
}

// Prob returns the density of value.
func (n *Normal) Prob(value *tensor.Dense) (*tensor.Dense, error) {
	return probOf(n, value)
}

// CDF returns the cumulative distribution function at value.
func (n *Normal) CDF(value *tensor.Dense) (*tensor.Dense, error) {
	out, err := prob.Apply3(func(x, mu, sigma float64) float64 {
		return 0.5 * (1 + math.Erf((x-mu)/(sigma*math.Sqrt2)))
	}, value, n.loc, n.scale)
	if err != nil {
		return nil, fmt.Errorf("cdf: %w", err)
	}

	return out, nil
}

// LogCDF returns the log of the cumulative distribution function at
// value.
func (n *Normal) LogCDF(value *tensor.Dense) (*tensor.Dense, error) {
	return logCDFOf(n, value)
}

// Quantile returns the inverse of the CDF at the probabilities in p:
// the value below which a fraction p of the mass lies.
func (n *Normal) Quantile(p *tensor.Dense) (*tensor.Dense, error) {
	out, err := prob.Apply3(func(p, mu, sigma float64) float64 {
		if p < 0 || p > 1 {
			return math.NaN()
		}

		return mu + sigma*math.Sqrt2*math.Erfinv(2*p-1)
	}, p, n.loc, n.scale)
	if err != nil {
		return nil, fmt.Errorf("quantile: %w", err)
	}

	return out, nil
}

// Mean returns the location parameter. Summaries return copies so
// mutating the result cannot alter the distribution's parameters.
func (n *Normal) Mean() (*tensor.Dense, error) {
	return n.loc.Clone().(*tensor.Dense), nil
}

// Mode returns the location parameter.
func (n *Normal) Mode() (*tensor.Dense, error) {
	return n.loc.Clone().(*tensor.Dense), nil
}

// Median returns the location parameter.
func (n *Normal) Median() (*tensor.Dense, error) {
	return n.loc.Clone().(*tensor.Dense), nil
}

// StdDev returns the scale parameter.
func (n *Normal) StdDev() (*tensor.Dense, error) {
	return n.scale.Clone().(*tensor.Dense), nil
}

// Variance returns the squared scale.
func (n *Normal) Variance() (*tensor.Dense, error) {
	return prob.Apply(n.scale,
		func(s float64) float64 { return s * s },
		func(s float32) float32 { return s * s },
	)
}

// Entropy returns 0.5 log(2πe σ²) per batch element.
func (n *Normal) Entropy() (*tensor.Dense, error) {
	return prob.Apply(n.scale,
		func(s float64) float64 {
			return 0.5 + halfLogTwoPi + math.Log(s)
		},
		nil,
	)
}

// KLDivergence returns KL(n ‖ other).
func (n *Normal) KLDivergence(other Distribution) (*tensor.Dense, error) {
	return KL(n, other)
}

// CrossEntropy returns H(n) + KL(n ‖ other).
func (n *Normal) CrossEntropy(other Distribution) (*tensor.Dense, error) {
	return CrossEntropy(n, other)
}

// klNormalNormal is the closed-form KL between two (batches of)
// normals, elementwise over the broadcast batch shapes.
func klNormalNormal(a, b Distribution) (*tensor.Dense, error) {
	na, ok := a.(normalLike)
	if !ok {
		return nil, fmt.Errorf("klNormalNormal: %T is not normal-like", a)
	}
	nb, ok := b.(normalLike)
	if !ok {
		return nil, fmt.Errorf("klNormalNormal: %T is not normal-like", b)
	}

	kl, err := prob.Apply2(
		func(mu1, mu2 float64) float64 { return mu1 - mu2 },
		na.Loc(), nb.Loc())
	if err != nil {
		return nil, fmt.Errorf("klNormalNormal: %w", err)
	}

	kl, err = prob.Apply3(func(d, sigma1, sigma2 float64) float64 {
		return normalKL(d, sigma1, 0, sigma2)
	}, kl, na.Scale(), nb.Scale())
	if err != nil {
		return nil, fmt.Errorf("klNormalNormal: %w", err)
	}

	return kl, nil
}

// normalLike is any distribution parameterized by a location and a
// scale at their broadcast shapes. Normal and LogStddevNormal both
// satisfy it, which is what lets the reparameterized kind reuse the
// normal divergence unchanged.
type normalLike interface {
	Loc() *tensor.Dense
	Scale() *tensor.Dense
}

func init() {
	RegisterKL(&Normal{}, &Normal{}, klNormalNormal)
}
