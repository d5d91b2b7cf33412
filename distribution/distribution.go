// Package distribution provides probability distributions over
// gorgonia.org/tensor dense arrays, composable with the bijectors in
// package bijector and interoperable with the gonum distributions
// framework through the Gonum adapter.
//
// Every distribution is immutable once constructed and holds no hidden
// random state: sampling takes an explicit seed, so all operations are
// pure functions of their stored parameters and inputs, reproducible
// and safe to call concurrently.
//
// A distribution separates its event shape (the shape of one
// realization) from its batch shape (the shape over which independent
// distribution instances are broadcast). Sampling prepends the
// requested sample shape, so samples always have shape
//
//	sampleShape + batchShape + eventShape
package distribution

import (
	"fmt"

	"github.com/samuelfneumann/prob"
	"gorgonia.org/tensor"
)

// Distribution is a probability distribution. Concrete implementations
// need only provide a core sampler for n independent draws (SampleN);
// the arbitrary-sample-shape Sample and the fused SampleAndLogProb are
// derived generically from it.
//
// Statistical summaries without a closed form fail with an error
// wrapping prob.ErrUnsupported, which callers should treat as "not
// available" rather than a hard failure.
type Distribution interface {
	// EventShape returns the shape of a single realization.
	EventShape() tensor.Shape

	// BatchShape returns the shape over which independent instances of
	// the distribution are broadcast. It is fixed at construction.
	BatchShape() tensor.Shape

	// SampleN draws n independent samples, returned with a leading
	// dimension of size n followed by the batch and event shapes.
	SampleN(key prob.Key, n int) (*tensor.Dense, error)

	// Sample draws samples of the given sample shape. The seed may be
	// a raw integer of any fixed width or a canonical prob.Key; the
	// sample shape may be nil, a single integer, or an integer
	// sequence.
	Sample(seed, sampleShape interface{}) (*tensor.Dense, error)

	// SampleAndLogProb draws samples together with their log
	// probability densities.
	SampleAndLogProb(seed, sampleShape interface{}) (*tensor.Dense,
		*tensor.Dense, error)

	// LogProb returns the log probability density or mass of value,
	// broadcasting the value's leading dimensions against the batch
	// shape.
	LogProb(value *tensor.Dense) (*tensor.Dense, error)

	// Prob returns the probability density or mass of value.
	Prob(value *tensor.Dense) (*tensor.Dense, error)

	// CDF returns the cumulative distribution function at value.
	CDF(value *tensor.Dense) (*tensor.Dense, error)

	// LogCDF returns the log of the cumulative distribution function
	// at value.
	LogCDF(value *tensor.Dense) (*tensor.Dense, error)

	Mean() (*tensor.Dense, error)
	Mode() (*tensor.Dense, error)
	Median() (*tensor.Dense, error)
	StdDev() (*tensor.Dense, error)
	Variance() (*tensor.Dense, error)
	Entropy() (*tensor.Dense, error)

	// KLDivergence returns KL(receiver ‖ other), resolved through the
	// registered divergence table.
	KLDivergence(other Distribution) (*tensor.Dense, error)

	// CrossEntropy returns H(receiver) + KL(receiver ‖ other).
	CrossEntropy(other Distribution) (*tensor.Dense, error)
}

// sampleShaped is the shared Sample mechanism: it normalizes the seed
// and sample shape, draws prod(sampleShape) flat samples from the
// distribution's core sampler, and folds the flat leading dimension
// back into the requested sample shape.
func sampleShaped(d Distribution, seed,
	sampleShape interface{}) (*tensor.Dense, error) {
	key, shape, err := prob.ConvertSeedAndSampleShape(seed, sampleShape)
	if err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}

	out := make(tensor.Shape, 0,
		len(shape)+len(d.BatchShape())+len(d.EventShape()))
	out = append(out, shape...)
	out = append(out, d.BatchShape()...)
	out = append(out, d.EventShape()...)

	// A zero-size sample shape is valid and yields an empty tensor
	// without touching the core sampler.
	if shape.Size() == 0 {
		return prob.New(out, nil), nil
	}

	flat, err := d.SampleN(key, shape.Size())
	if err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}

	data, err := prob.Float64s(flat)
	if err != nil {
		return nil, fmt.Errorf("sample: %v", err)
	}

	return prob.New(out, data), nil
}

// sampleAndLogProbOf is the default fused sampler: sample, then
// evaluate LogProb on the result. Distributions whose sampling
// procedure yields the density as a byproduct override it.
func sampleAndLogProbOf(d Distribution, seed,
	sampleShape interface{}) (*tensor.Dense, *tensor.Dense, error) {
	samples, err := d.Sample(seed, sampleShape)
	if err != nil {
		return nil, nil, err
	}

	logProb, err := d.LogProb(samples)
	if err != nil {
		return nil, nil, fmt.Errorf("sampleAndLogProb: %v", err)
	}

	return samples, logProb, nil
}

// probOf is the default Prob: exp(LogProb(value)). Distributions with
// a more stable direct density override it.
func probOf(d Distribution, value *tensor.Dense) (*tensor.Dense, error) {
	logProb, err := d.LogProb(value)
	if err != nil {
		return nil, err
	}

	return prob.Apply(logProb, exp64, exp32)
}

// logCDFOf is the default LogCDF: log(CDF(value)).
func logCDFOf(d Distribution, value *tensor.Dense) (*tensor.Dense, error) {
	cdf, err := d.CDF(value)
	if err != nil {
		return nil, err
	}

	return prob.Apply(cdf, log64, log32)
}

// unsupported reports that a quantity has no closed form or is not
// provided by the distribution.
func unsupported(what string) error {
	return fmt.Errorf("%w: %v", prob.ErrUnsupported, what)
}
