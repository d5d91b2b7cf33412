package distribution

import (
	"fmt"
	"math"
	"reflect"

	"github.com/samuelfneumann/prob"
	"github.com/samuelfneumann/prob/bijector"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
	"gorgonia.org/tensor"
)

// Foreign distribution surfaces. Gonum's univariate distributions
// expose float64-valued methods and its multivariate distributions
// slice-valued ones; the adapter detects which surface a wrapped value
// provides and delegates through these interfaces.
type (
	univariateLogProber interface{ LogProb(float64) float64 }
	univariateRander    interface{ Rand() float64 }
	univariateProber    interface{ Prob(float64) float64 }
	univariateCDFer     interface{ CDF(float64) float64 }

	multivariateDist interface {
		Dim() int
		Rand([]float64) []float64
		LogProb([]float64) float64
	}

	scalarMeaner    interface{ Mean() float64 }
	scalarModer     interface{ Mode() float64 }
	scalarMedianer  interface{ Median() float64 }
	scalarStdDever  interface{ StdDev() float64 }
	scalarVariancer interface{ Variance() float64 }
	scalarEntropyer interface{ Entropy() float64 }

	vectorMeaner interface{ Mean([]float64) []float64 }
)

// Gonum adapts a gonum distribution to the local Distribution
// contract by delegation. All density and summary calls forward to the
// wrapped value; only the seed and shape representations are
// translated at the boundary, so results agree with calling the
// wrapped value directly.
//
// The wrapped value is never mutated. Sampling installs a Key-derived
// random source into a copy, so the adapter stays free of hidden
// state even though gonum distributions normally carry their source
// internally.
type Gonum struct {
	dist interface{}

	eventShape tensor.Shape
}

// FromGonum wraps a gonum distribution. The value must expose either
// the univariate surface (LogProb(float64) float64 at minimum) or the
// multivariate one (Dim, Rand([]float64), LogProb([]float64)).
func FromGonum(dist interface{}) (*Gonum, error) {
	if d, ok := dist.(multivariateDist); ok {
		return &Gonum{
			dist:       dist,
			eventShape: tensor.Shape{d.Dim()},
		}, nil
	}

	// Gonum's univariate kinds use value receivers, so dereference
	// pointers to them; multivariate kinds use pointer receivers and
	// were handled above.
	if v := reflect.ValueOf(dist); v.Kind() == reflect.Ptr && !v.IsNil() {
		if _, ok := v.Elem().Interface().(univariateLogProber); ok {
			dist = v.Elem().Interface()
		}
	}

	if _, ok := dist.(univariateLogProber); ok {
		return &Gonum{dist: dist, eventShape: tensor.Shape{}}, nil
	}

	return nil, fmt.Errorf("fromGonum: %T exposes neither a univariate "+
		"nor a multivariate distribution surface", dist)
}

// Unwrap returns the wrapped gonum distribution.
func (g *Gonum) Unwrap() interface{} { return g.dist }

// EventShape returns the scalar shape for univariate wrapped
// distributions and the event dimension for multivariate ones.
func (g *Gonum) EventShape() tensor.Shape { return g.eventShape }

// BatchShape returns the empty shape: a wrapped gonum value is a
// single distribution instance.
func (g *Gonum) BatchShape() tensor.Shape { return tensor.Shape{} }

// seeded returns a copy of the wrapped distribution whose random
// source is derived from key. Gonum's parameterized kinds carry their
// source in an exported Src field, which is set on a copy;
// distmv.Normal and distuv.Categorical take their source at
// construction and are rebuilt.
func (g *Gonum) seeded(key prob.Key) (interface{}, error) {
	if d, ok := g.dist.(*distmv.Normal); ok {
		var cov mat.SymDense
		d.CovarianceMatrix(&cov)
		normal, ok := distmv.NewNormal(d.Mean(nil), &cov, key.Source())
		if !ok {
			return nil, fmt.Errorf("seeded: covariance of wrapped %T is "+
				"not positive definite", g.dist)
		}

		return normal, nil
	}

	if d, ok := g.dist.(distuv.Categorical); ok {
		return distuv.NewCategorical(categoricalWeights(d),
			key.Source()), nil
	}

	v := reflect.ValueOf(g.dist)
	if v.Kind() == reflect.Struct {
		field := v.FieldByName("Src")
		srcType := reflect.TypeOf((*rand.Source)(nil)).Elem()
		if field.IsValid() && field.Type() == srcType {
			seeded := reflect.New(v.Type()).Elem()
			seeded.Set(v)
			seeded.FieldByName("Src").Set(reflect.ValueOf(key.Source()))

			return seeded.Interface(), nil
		}
	}

	return nil, fmt.Errorf("seeded: %w: cannot install a random source "+
		"into %T", prob.ErrUnsupported, g.dist)
}

// SampleN draws n independent samples from the wrapped distribution
// using a Key-derived source.
func (g *Gonum) SampleN(key prob.Key, count int) (*tensor.Dense, error) {
	seeded, err := g.seeded(key)
	if err != nil {
		return nil, fmt.Errorf("sampleN: %w", err)
	}

	if d, ok := seeded.(multivariateDist); ok {
		dim := d.Dim()
		out := make([]float64, count*dim)
		for i := 0; i < count; i++ {
			d.Rand(out[i*dim : (i+1)*dim])
		}

		return prob.New(tensor.Shape{count, dim}, out), nil
	}

	d, ok := seeded.(univariateRander)
	if !ok {
		return nil, fmt.Errorf("sampleN: %w: %T cannot sample",
			prob.ErrUnsupported, g.dist)
	}

	out := make([]float64, count)
	for i := range out {
		out[i] = d.Rand()
	}

	return prob.New(tensor.Shape{count}, out), nil
}

// Sample draws samples of the given sample shape.
func (g *Gonum) Sample(seed, sampleShape interface{}) (*tensor.Dense,
	error) {
	return sampleShaped(g, seed, sampleShape)
}

// SampleAndLogProb draws samples together with their log densities.
func (g *Gonum) SampleAndLogProb(seed, sampleShape interface{}) (
	*tensor.Dense, *tensor.Dense, error) {
	return sampleAndLogProbOf(g, seed, sampleShape)
}

// mapValues delegates a univariate float64 method elementwise over
// value.
func (g *Gonum) mapValues(method string, fn func(float64) float64,
	value *tensor.Dense) (*tensor.Dense, error) {
	out, err := prob.Apply(value, fn, nil)
	if err != nil {
		return nil, fmt.Errorf("%v: %v", method, err)
	}

	return out, nil
}

// mapRows delegates a multivariate []float64 method over the trailing
// event dimension of value.
func (g *Gonum) mapRows(method string, fn func([]float64) float64,
	value *tensor.Dense) (*tensor.Dense, error) {
	dim := g.eventShape[0]
	shape := value.Shape()
	if len(shape) < 1 || shape[len(shape)-1] != dim {
		return nil, fmt.Errorf("%v: %w: expected trailing dimension %v "+
			"but got shape %v", method, prob.ErrIncompatibleShapes, dim,
			shape)
	}

	data, err := prob.Float64s(value)
	if err != nil {
		return nil, fmt.Errorf("%v: %v", method, err)
	}

	out := make([]float64, len(data)/dim)
	for i := range out {
		out[i] = fn(data[i*dim : (i+1)*dim])
	}

	return prob.New(shape[:len(shape)-1].Clone(), out), nil
}

// LogProb delegates to the wrapped distribution's log density.
func (g *Gonum) LogProb(value *tensor.Dense) (*tensor.Dense, error) {
	if d, ok := g.dist.(multivariateDist); ok {
		return g.mapRows("logProb", d.LogProb, value)
	}

	return g.mapValues("logProb", g.dist.(univariateLogProber).LogProb,
		value)
}

// Prob delegates to the wrapped distribution's density when it has
// one, falling back to exp(LogProb).
func (g *Gonum) Prob(value *tensor.Dense) (*tensor.Dense, error) {
	if d, ok := g.dist.(univariateProber); ok {
		return g.mapValues("prob", d.Prob, value)
	}

	return probOf(g, value)
}

// CDF delegates to the wrapped distribution's cumulative distribution
// function.
func (g *Gonum) CDF(value *tensor.Dense) (*tensor.Dense, error) {
	d, ok := g.dist.(univariateCDFer)
	if !ok {
		return nil, unsupported(fmt.Sprintf("%T cdf", g.dist))
	}

	return g.mapValues("cdf", d.CDF, value)
}

// LogCDF returns the log of the delegated CDF.
func (g *Gonum) LogCDF(value *tensor.Dense) (*tensor.Dense, error) {
	d, ok := g.dist.(univariateCDFer)
	if !ok {
		return nil, unsupported(fmt.Sprintf("%T log cdf", g.dist))
	}

	return g.mapValues("logCDF", func(x float64) float64 {
		return math.Log(d.CDF(x))
	}, value)
}

// Mean delegates to the wrapped distribution.
func (g *Gonum) Mean() (*tensor.Dense, error) {
	switch d := g.dist.(type) {
	case scalarMeaner:
		return prob.Scalar(d.Mean()), nil
	case vectorMeaner:
		mean := d.Mean(nil)

		return prob.New(g.eventShape.Clone(), mean), nil
	default:
		return nil, unsupported(fmt.Sprintf("%T mean", g.dist))
	}
}

// Mode delegates to the wrapped distribution.
func (g *Gonum) Mode() (*tensor.Dense, error) {
	d, ok := g.dist.(scalarModer)
	if !ok {
		return nil, unsupported(fmt.Sprintf("%T mode", g.dist))
	}

	return prob.Scalar(d.Mode()), nil
}

// Median delegates to the wrapped distribution.
func (g *Gonum) Median() (*tensor.Dense, error) {
	d, ok := g.dist.(scalarMedianer)
	if !ok {
		return nil, unsupported(fmt.Sprintf("%T median", g.dist))
	}

	return prob.Scalar(d.Median()), nil
}

// StdDev delegates to the wrapped distribution.
func (g *Gonum) StdDev() (*tensor.Dense, error) {
	d, ok := g.dist.(scalarStdDever)
	if !ok {
		return nil, unsupported(fmt.Sprintf("%T stddev", g.dist))
	}

	return prob.Scalar(d.StdDev()), nil
}

// Variance delegates to the wrapped distribution.
func (g *Gonum) Variance() (*tensor.Dense, error) {
	d, ok := g.dist.(scalarVariancer)
	if !ok {
		return nil, unsupported(fmt.Sprintf("%T variance", g.dist))
	}

	return prob.Scalar(d.Variance()), nil
}

// Entropy delegates to the wrapped distribution.
func (g *Gonum) Entropy() (*tensor.Dense, error) {
	d, ok := g.dist.(scalarEntropyer)
	if !ok {
		return nil, unsupported(fmt.Sprintf("%T entropy", g.dist))
	}

	return prob.Scalar(d.Entropy()), nil
}

// KLDivergence returns KL(g ‖ other), routed through the combined
// dispatch so wrapped and native pairings resolve to the same formula.
func (g *Gonum) KLDivergence(other Distribution) (*tensor.Dense, error) {
	return KL(g, other)
}

// CrossEntropy returns H(g) + KL(g ‖ other).
func (g *Gonum) CrossEntropy(other Distribution) (*tensor.Dense, error) {
	return CrossEntropy(g, other)
}

// Native returns the native counterpart of the wrapped distribution,
// used by the divergence dispatch to resolve wrapped and mixed
// pairings. Wrapped kinds without a native counterpart are reported as
// unsupported.
func (g *Gonum) Native() (Distribution, error) {
	switch d := g.dist.(type) {
	case distuv.Normal:
		normal, err := NewNormal(prob.Scalar(d.Mu), prob.Scalar(d.Sigma))
		if err != nil {
			return nil, fmt.Errorf("native: %v", err)
		}

		return normal, nil

	case distuv.LogNormal:
		normal, err := NewNormal(prob.Scalar(d.Mu), prob.Scalar(d.Sigma))
		if err != nil {
			return nil, fmt.Errorf("native: %v", err)
		}

		transformed, err := NewTransformed(normal, bijector.NewExp())
		if err != nil {
			return nil, fmt.Errorf("native: %v", err)
		}

		return transformed, nil

	case distuv.Uniform:
		uniform, err := NewUniform(prob.Scalar(d.Min), prob.Scalar(d.Max))
		if err != nil {
			return nil, fmt.Errorf("native: %v", err)
		}

		return uniform, nil

	case distuv.Categorical:
		weights := categoricalWeights(d)
		categorical, err := NewCategoricalProbs(
			prob.New(tensor.Shape{len(weights)}, weights))
		if err != nil {
			return nil, fmt.Errorf("native: %v", err)
		}

		return categorical, nil

	case *distmv.Normal:
		var sigma mat.SymDense
		d.CovarianceMatrix(&sigma)
		dim := d.Dim()
		scale := make([]float64, dim)
		for i := 0; i < dim; i++ {
			for j := 0; j < dim; j++ {
				if i != j && sigma.At(i, j) != 0 {
					return nil, unsupported("non-diagonal multivariate " +
						"normal")
				}
			}
			scale[i] = math.Sqrt(sigma.At(i, i))
		}

		mvn, err := NewMultivariateNormalDiag(
			prob.New(tensor.Shape{dim}, d.Mean(nil)),
			prob.New(tensor.Shape{dim}, scale),
		)
		if err != nil {
			return nil, fmt.Errorf("native: %v", err)
		}

		return mvn, nil

	default:
		return nil, unsupported(fmt.Sprintf("%T has no native "+
			"counterpart", g.dist))
	}
}

// categoricalWeights recovers the normalized category weights of a
// distuv.Categorical, which keeps both its weights and its random
// source unexported.
func categoricalWeights(d distuv.Categorical) []float64 {
	weights := make([]float64, d.Len())
	for i := range weights {
		weights[i] = d.Prob(float64(i))
	}

	return weights
}
