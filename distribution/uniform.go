package distribution

import (
	"fmt"
	"math"

	rng "github.com/leesper/go_rng"
	"github.com/samuelfneumann/prob"
	"gorgonia.org/tensor"
)

// Uniform is a continuous uniform distribution on [low, high), which
// may hold a batch of uniform distributions simultaneously. The bounds
// are broadcast against each other at construction.
type Uniform struct {
	low  *tensor.Dense
	high *tensor.Dense

	batchShape tensor.Shape
}

// NewUniform returns a new Uniform on [low, high). The bounds must
// hold float64s, be broadcast-compatible, and satisfy low < high
// elementwise.
func NewUniform(low, high *tensor.Dense) (*Uniform, error) {
	if low.Dtype() != tensor.Float64 || high.Dtype() != tensor.Float64 {
		return nil, fmt.Errorf("newUniform: expected float64 bounds but "+
			"got %v and %v", low.Dtype(), high.Dtype())
	}

	batch, err := prob.BroadcastShapes(low.Shape(), high.Shape())
	if err != nil {
		return nil, fmt.Errorf("newUniform: %w", err)
	}

	low, err = prob.BroadcastTo(low, batch)
	if err != nil {
		return nil, fmt.Errorf("newUniform: %w", err)
	}
	high, err = prob.BroadcastTo(high, batch)
	if err != nil {
		return nil, fmt.Errorf("newUniform: %w", err)
	}

	lowData, err := prob.Float64s(low)
	if err != nil {
		return nil, fmt.Errorf("newUniform: %v", err)
	}
	highData, err := prob.Float64s(high)
	if err != nil {
		return nil, fmt.Errorf("newUniform: %v", err)
	}
	for i := range lowData {
		if lowData[i] >= highData[i] {
			return nil, fmt.Errorf("newUniform: expected low < high but "+
				"got %v and %v", lowData[i], highData[i])
		}
	}

	return &Uniform{low: low, high: high, batchShape: batch}, nil
}

// Low returns the lower bound at its broadcast shape.
func (u *Uniform) Low() *tensor.Dense { return u.low }

// High returns the upper bound at its broadcast shape.
func (u *Uniform) High() *tensor.Dense { return u.high }

// EventShape returns the scalar event shape.
func (u *Uniform) EventShape() tensor.Shape { return tensor.Shape{} }

// BatchShape returns the broadcast bound shape.
func (u *Uniform) BatchShape() tensor.Shape { return u.batchShape }

// SampleN draws n independent samples per batch element from a
// uniform stream seeded by key.
func (u *Uniform) SampleN(key prob.Key, count int) (*tensor.Dense, error) {
	gen := rng.NewUniformGenerator(int64(key.Seed() &
		math.MaxInt64))

	low, err := prob.Float64s(u.low)
	if err != nil {
		return nil, fmt.Errorf("sampleN: %v", err)
	}
	high, err := prob.Float64s(u.high)
	if err != nil {
		return nil, fmt.Errorf("sampleN: %v", err)
	}

	batch := len(low)
	out := make([]float64, count*batch)
	for i := range out {
		out[i] = gen.Float64Range(low[i%batch], high[i%batch])
	}

	shape := append(tensor.Shape{count}, u.batchShape...)

	return prob.New(shape, out), nil
}

// Sample draws samples of the given sample shape.
func (u *Uniform) Sample(seed, sampleShape interface{}) (*tensor.Dense,
	error) {
	return sampleShaped(u, seed, sampleShape)
}

// SampleAndLogProb draws samples together with their log densities.
func (u *Uniform) SampleAndLogProb(seed, sampleShape interface{}) (
	*tensor.Dense, *tensor.Dense, error) {
	return sampleAndLogProbOf(u, seed, sampleShape)
}

// LogProb returns -log(high - low) inside the support and -Inf
// outside.
func (u *Uniform) LogProb(value *tensor.Dense) (*tensor.Dense, error) {
	out, err := prob.Apply3(func(x, low, high float64) float64 {
		if x < low || x >= high {
			return math.Inf(-1)
		}

		return -math.Log(high - low)
	}, value, u.low, u.high)
	if err != nil {
		return nil, fmt.Errorf("logProb: %w", err)
	}

	return out, nil
}

// Prob returns the density of value.
func (u *Uniform) Prob(value *tensor.Dense) (*tensor.Dense, error) {
	return probOf(u, value)
}

// CDF returns the cumulative distribution function at value.
func (u *Uniform) CDF(value *tensor.Dense) (*tensor.Dense, error) {
	out, err := prob.Apply3(func(x, low, high float64) float64 {
		switch {
		case x < low:
			return 0
		case x >= high:
			return 1
		default:
			return (x - low) / (high - low)
		}
	}, value, u.low, u.high)
	if err != nil {
		return nil, fmt.Errorf("cdf: %w", err)
	}

	return out, nil
}

// LogCDF returns the log of the cumulative distribution function at
// value.
func (u *Uniform) LogCDF(value *tensor.Dense) (*tensor.Dense, error) {
	return logCDFOf(u, value)
}

// Quantile returns the inverse of the CDF at the probabilities in p.
func (u *Uniform) Quantile(p *tensor.Dense) (*tensor.Dense, error) {
	out, err := prob.Apply3(func(p, low, high float64) float64 {
		if p < 0 || p > 1 {
			return math.NaN()
		}

		return low + p*(high-low)
	}, p, u.low, u.high)
	if err != nil {
		return nil, fmt.Errorf("quantile: %w", err)
	}

	return out, nil
}

// Mean returns (low + high) / 2.
func (u *Uniform) Mean() (*tensor.Dense, error) {
	return prob.Apply2(func(low, high float64) float64 {
		return (low + high) / 2
	}, u.low, u.high)
}

// Mode is undefined: every point of the support is equally probable.
func (u *Uniform) Mode() (*tensor.Dense, error) {
	return nil, unsupported("uniform mode")
}

// Median returns (low + high) / 2.
func (u *Uniform) Median() (*tensor.Dense, error) { return u.Mean() }

// StdDev returns (high - low) / sqrt(12).
func (u *Uniform) StdDev() (*tensor.Dense, error) {
	return prob.Apply2(func(low, high float64) float64 {
		return (high - low) / math.Sqrt(12)
	}, u.low, u.high)
}

// Variance returns (high - low)² / 12.
func (u *Uniform) Variance() (*tensor.Dense, error) {
	return prob.Apply2(func(low, high float64) float64 {
		d := high - low

		return d * d / 12
	}, u.low, u.high)
}

// Entropy returns log(high - low).
func (u *Uniform) Entropy() (*tensor.Dense, error) {
	return prob.Apply2(func(low, high float64) float64 {
		return math.Log(high - low)
	}, u.low, u.high)
}

// KLDivergence returns KL(u ‖ other).
func (u *Uniform) KLDivergence(other Distribution) (*tensor.Dense, error) {
	return KL(u, other)
}

// CrossEntropy returns H(u) + KL(u ‖ other).
func (u *Uniform) CrossEntropy(other Distribution) (*tensor.Dense, error) {
	return CrossEntropy(u, other)
}

// klUniformUniform is log((high2-low2)/(high1-low1)) where the first
// support is contained in the second, and +Inf elsewhere.
func klUniformUniform(a, b Distribution) (*tensor.Dense, error) {
	ua := a.(*Uniform)
	ub := b.(*Uniform)

	width, err := prob.Apply2(func(low, high float64) float64 {
		return high - low
	}, ua.low, ua.high)
	if err != nil {
		return nil, fmt.Errorf("klUniformUniform: %w", err)
	}

	contained, err := prob.Apply3(func(w, low2, high2 float64) float64 {
		return (high2 - low2) / w
	}, width, ub.low, ub.high)
	if err != nil {
		return nil, fmt.Errorf("klUniformUniform: %w", err)
	}

	// Containment check: a's support must sit inside b's.
	inA, err := prob.Apply3(func(low1, low2, high2 float64) float64 {
		if low1 < low2 {
			return math.Inf(1)
		}

		return 0
	}, ua.low, ub.low, ub.high)
	if err != nil {
		return nil, fmt.Errorf("klUniformUniform: %w", err)
	}
	inB, err := prob.Apply3(func(high1, low2, high2 float64) float64 {
		if high1 > high2 {
			return math.Inf(1)
		}

		return 0
	}, ua.high, ub.low, ub.high)
	if err != nil {
		return nil, fmt.Errorf("klUniformUniform: %w", err)
	}

	kl, err := prob.Apply3(func(ratio, penaltyA, penaltyB float64) float64 {
		return math.Log(ratio) + penaltyA + penaltyB
	}, contained, inA, inB)
	if err != nil {
		return nil, fmt.Errorf("klUniformUniform: %w", err)
	}

	return kl, nil
}

func init() {
	RegisterKL(&Uniform{}, &Uniform{}, klUniformUniform)
}
