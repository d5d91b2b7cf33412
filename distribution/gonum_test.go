package distribution

import (
	"math"
	"testing"

	"github.com/samuelfneumann/prob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
	"gorgonia.org/tensor"
)

func TestFromGonumUnivariate(t *testing.T) {
	g, err := FromGonum(distuv.Gamma{Alpha: 2, Beta: 3})
	require.NoError(t, err)

	assert.True(t, tensor.Shape{}.Eq(g.EventShape()))
	assert.True(t, tensor.Shape{}.Eq(g.BatchShape()))

	// A pointer to a univariate value works too.
	g, err = FromGonum(&distuv.Normal{Mu: 0, Sigma: 1})
	require.NoError(t, err)
	assert.True(t, tensor.Shape{}.Eq(g.EventShape()))
}

func TestFromGonumMultivariate(t *testing.T) {
	oracle, ok := distmv.NewNormal([]float64{0, 0, 0},
		mat.NewSymDense(3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}), nil)
	require.True(t, ok)

	g, err := FromGonum(oracle)
	require.NoError(t, err)
	assert.True(t, tensor.Shape{3}.Eq(g.EventShape()))
}

func TestFromGonumRejectsNonDistribution(t *testing.T) {
	_, err := FromGonum(42)
	assert.Error(t, err)

	_, err = FromGonum("normal")
	assert.Error(t, err)
}

func TestGonumDelegatesDensity(t *testing.T) {
	oracle := distuv.Gamma{Alpha: 2, Beta: 3}

	g, err := FromGonum(oracle)
	require.NoError(t, err)

	xs := []float64{0.1, 0.5, 1, 2}
	x := prob.New(tensor.Shape{len(xs)}, append([]float64{}, xs...))

	logProb, err := g.LogProb(x)
	require.NoError(t, err)
	density, err := g.Prob(x)
	require.NoError(t, err)
	cdf, err := g.CDF(x)
	require.NoError(t, err)
	logCDF, err := g.LogCDF(x)
	require.NoError(t, err)

	for i := range xs {
		assert.InDelta(t, oracle.LogProb(xs[i]), values(t, logProb)[i],
			1e-12, "x = %v", xs[i])
		assert.InDelta(t, oracle.Prob(xs[i]), values(t, density)[i],
			1e-12, "x = %v", xs[i])
		assert.InDelta(t, oracle.CDF(xs[i]), values(t, cdf)[i], 1e-12,
			"x = %v", xs[i])
		assert.InDelta(t, math.Log(oracle.CDF(xs[i])),
			values(t, logCDF)[i], 1e-12, "x = %v", xs[i])
	}
}

func TestGonumDelegatesSummaries(t *testing.T) {
	oracle := distuv.Gamma{Alpha: 2, Beta: 3}

	g, err := FromGonum(oracle)
	require.NoError(t, err)

	mean, err := g.Mean()
	require.NoError(t, err)
	assert.InDelta(t, oracle.Mean(), values(t, mean)[0], 1e-12)

	mode, err := g.Mode()
	require.NoError(t, err)
	assert.InDelta(t, oracle.Mode(), values(t, mode)[0], 1e-12)

	variance, err := g.Variance()
	require.NoError(t, err)
	assert.InDelta(t, oracle.Variance(), values(t, variance)[0], 1e-12)

	stdDev, err := g.StdDev()
	require.NoError(t, err)
	assert.InDelta(t, oracle.StdDev(), values(t, stdDev)[0], 1e-12)
}

func TestGonumSampleSeeded(t *testing.T) {
	g, err := FromGonum(distuv.Normal{Mu: 2, Sigma: 0.5})
	require.NoError(t, err)

	// The seed is translated into gonum's source representation, so
	// the stream reproduces a directly seeded gonum distribution.
	samples, err := g.Sample(42, 5)
	require.NoError(t, err)

	oracle := distuv.Normal{Mu: 2, Sigma: 0.5,
		Src: prob.NewKey(42).Source()}
	for _, got := range values(t, samples) {
		assert.InDelta(t, oracle.Rand(), got, 1e-15)
	}

	// Determinism across calls.
	a, err := g.Sample(7, 3)
	require.NoError(t, err)
	b, err := g.Sample(7, 3)
	require.NoError(t, err)
	assert.Equal(t, values(t, a), values(t, b))

	// The wrapped value itself is never mutated.
	assert.Nil(t, g.Unwrap().(distuv.Normal).Src)
}

func TestGonumSampleMultivariate(t *testing.T) {
	oracle, ok := distmv.NewNormal([]float64{5, -5},
		mat.NewSymDense(2, []float64{1, 0, 0, 4}), nil)
	require.True(t, ok)

	g, err := FromGonum(oracle)
	require.NoError(t, err)

	samples, err := g.Sample(3, []int{100, 2})
	require.NoError(t, err)
	require.True(t, tensor.Shape{100, 2, 2}.Eq(samples.Shape()))

	data := values(t, samples)
	mean1, mean2 := 0.0, 0.0
	for i := 0; i < len(data); i += 2 {
		mean1 += data[i]
		mean2 += data[i+1]
	}
	assert.InDelta(t, 5, mean1/200, 0.3)
	assert.InDelta(t, -5, mean2/200, 0.6)
}

func TestGonumSampleAndLogProb(t *testing.T) {
	g, err := FromGonum(distuv.Normal{Mu: 0, Sigma: 1})
	require.NoError(t, err)

	samples, logProb, err := g.SampleAndLogProb(13, 4)
	require.NoError(t, err)

	indep, err := g.LogProb(samples)
	require.NoError(t, err)
	assert.Equal(t, values(t, indep), values(t, logProb))
}

func TestGonumMultivariateLogProbOracle(t *testing.T) {
	oracle, ok := distmv.NewNormal([]float64{1, 2},
		mat.NewSymDense(2, []float64{2, 0.5, 0.5, 1}), nil)
	require.True(t, ok)

	g, err := FromGonum(oracle)
	require.NoError(t, err)

	x := []float64{0.5, 1.5}
	logProb, err := g.LogProb(prob.New(tensor.Shape{2},
		append([]float64{}, x...)))
	require.NoError(t, err)
	require.True(t, logProb.IsScalar())
	assert.InDelta(t, oracle.LogProb(x), values(t, logProb)[0], 1e-12)

	// A trailing dimension mismatch is a shape error, not a panic.
	_, err = g.LogProb(prob.New(tensor.Shape{3}, []float64{0, 0, 0}))
	assert.ErrorIs(t, err, prob.ErrIncompatibleShapes)
}

func TestGonumUnsupportedSummary(t *testing.T) {
	oracle, ok := distmv.NewNormal([]float64{0, 0},
		mat.NewSymDense(2, []float64{1, 0, 0, 1}), nil)
	require.True(t, ok)

	g, err := FromGonum(oracle)
	require.NoError(t, err)

	// distmv.Normal exposes no scalar StdDev.
	_, err = g.StdDev()
	assert.ErrorIs(t, err, prob.ErrUnsupported)
}

// fixedForeign is a foreign distribution with no random source at all.
type fixedForeign struct{}

func (fixedForeign) LogProb(float64) float64 { return -1 }

func TestGonumUnseedableSampling(t *testing.T) {
	g, err := FromGonum(fixedForeign{})
	require.NoError(t, err)

	// Density evaluation works; sampling has nowhere to install the
	// seed and is reported as unsupported.
	logProb, err := g.LogProb(prob.Scalar(0))
	require.NoError(t, err)
	assert.Equal(t, -1.0, values(t, logProb)[0])

	_, err = g.Sample(0, 3)
	assert.ErrorIs(t, err, prob.ErrUnsupported)
}

// srcForeign is a foreign distribution whose seed arrives through an
// exported Src field, like gonum's parametric kinds.
type srcForeign struct {
	Src rand.Source
}

func (s srcForeign) LogProb(float64) float64 { return -1 }

func (s srcForeign) Rand() float64 {
	return float64(s.Src.Uint64()%1000) / 1000
}

func TestGonumSrcFieldInjection(t *testing.T) {
	g, err := FromGonum(srcForeign{})
	require.NoError(t, err)

	a, err := g.Sample(5, 10)
	require.NoError(t, err)
	b, err := g.Sample(5, 10)
	require.NoError(t, err)
	assert.Equal(t, values(t, a), values(t, b))

	c, err := g.Sample(6, 10)
	require.NoError(t, err)
	assert.NotEqual(t, values(t, a), values(t, c))
}

func TestGonumNative(t *testing.T) {
	// distuv.Normal converts to the native Normal.
	g, err := FromGonum(distuv.Normal{Mu: 1, Sigma: 2})
	require.NoError(t, err)

	native, err := g.Native()
	require.NoError(t, err)

	n, ok := native.(*Normal)
	require.True(t, ok)
	assert.Equal(t, 1.0, values(t, n.Loc())[0])
	assert.Equal(t, 2.0, values(t, n.Scale())[0])

	// distuv.LogNormal converts to Exp of a Normal with matching
	// densities.
	g, err = FromGonum(distuv.LogNormal{Mu: 0.5, Sigma: 1.5})
	require.NoError(t, err)

	native, err = g.Native()
	require.NoError(t, err)
	_, ok = native.(*Transformed)
	require.True(t, ok)

	oracle := distuv.LogNormal{Mu: 0.5, Sigma: 1.5}
	for _, y := range []float64{0.2, 1, 3} {
		logProb, err := native.LogProb(prob.Scalar(y))
		require.NoError(t, err)
		assert.InDelta(t, oracle.LogProb(y), values(t, logProb)[0],
			1e-12, "y = %v", y)
	}

	// Kinds without a counterpart report unsupported.
	g, err = FromGonum(distuv.Gamma{Alpha: 1, Beta: 1})
	require.NoError(t, err)
	_, err = g.Native()
	assert.ErrorIs(t, err, prob.ErrUnsupported)
}

func TestGonumNativeDiagonalMVN(t *testing.T) {
	oracle, ok := distmv.NewNormal([]float64{1, 2},
		mat.NewSymDense(2, []float64{4, 0, 0, 9}), nil)
	require.True(t, ok)

	g, err := FromGonum(oracle)
	require.NoError(t, err)

	native, err := g.Native()
	require.NoError(t, err)

	m, ok := native.(*MultivariateNormalDiag)
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2}, values(t, m.Loc()))
	assert.Equal(t, []float64{2, 3}, values(t, m.ScaleDiag()))

	// Correlated covariance has no diagonal counterpart.
	correlated, ok := distmv.NewNormal([]float64{0, 0},
		mat.NewSymDense(2, []float64{1, 0.5, 0.5, 1}), nil)
	require.True(t, ok)

	g, err = FromGonum(correlated)
	require.NoError(t, err)
	_, err = g.Native()
	assert.ErrorIs(t, err, prob.ErrUnsupported)
}

func TestGonumCategorical(t *testing.T) {
	g, err := FromGonum(distuv.NewCategorical([]float64{0.3, 0.7}, nil))
	require.NoError(t, err)

	// Sampling rebuilds the wrapped value around a Key-derived source,
	// so the stream reproduces a directly seeded gonum categorical.
	samples, err := g.Sample(1, 3)
	require.NoError(t, err)

	oracle := distuv.NewCategorical([]float64{0.3, 0.7},
		prob.NewKey(1).Source())
	for _, got := range values(t, samples) {
		assert.Equal(t, oracle.Rand(), got)
	}

	a, err := g.Sample(9, 5)
	require.NoError(t, err)
	b, err := g.Sample(9, 5)
	require.NoError(t, err)
	assert.Equal(t, values(t, a), values(t, b))
}

func TestGonumCategoricalNative(t *testing.T) {
	g, err := FromGonum(distuv.NewCategorical([]float64{1, 3}, nil))
	require.NoError(t, err)

	native, err := g.Native()
	require.NoError(t, err)

	c, ok := native.(*Categorical)
	require.True(t, ok)
	require.Equal(t, 2, c.NumCategories())

	// NewCategorical normalizes its weights.
	probs := values(t, c.Probs())
	assert.InDelta(t, 0.25, probs[0], 1e-15)
	assert.InDelta(t, 0.75, probs[1], 1e-15)
}

func TestKLCategoricalWrappedAndMixed(t *testing.T) {
	nativeA, err := NewCategoricalProbs(
		prob.New(tensor.Shape{2}, []float64{0.3, 0.7}))
	require.NoError(t, err)
	nativeB, err := NewCategoricalProbs(
		prob.New(tensor.Shape{2}, []float64{0.6, 0.4}))
	require.NoError(t, err)

	wrappedA, err := FromGonum(
		distuv.NewCategorical([]float64{0.3, 0.7}, nil))
	require.NoError(t, err)
	wrappedB, err := FromGonum(
		distuv.NewCategorical([]float64{0.6, 0.4}, nil))
	require.NoError(t, err)

	want, err := KL(nativeA, nativeB)
	require.NoError(t, err)

	pairs := []struct {
		name string
		a, b Distribution
	}{
		{"wrapped/wrapped", wrappedA, wrappedB},
		{"wrapped/native", wrappedA, nativeB},
		{"native/wrapped", nativeA, wrappedB},
	}
	for _, pair := range pairs {
		kl, err := KL(pair.a, pair.b)
		require.NoError(t, err, pair.name)
		assert.InDelta(t, values(t, want)[0], values(t, kl)[0], 1e-12,
			pair.name)
	}

	ce, err := wrappedA.CrossEntropy(nativeB)
	require.NoError(t, err)
	entropy, err := wrappedA.Entropy()
	require.NoError(t, err)
	assert.InDelta(t, values(t, entropy)[0]+values(t, want)[0],
		values(t, ce)[0], 1e-12)
}

func TestKLWrappedAndMixed(t *testing.T) {
	nativeA, err := NewNormal(prob.Scalar(0), prob.Scalar(1))
	require.NoError(t, err)
	nativeB, err := NewNormal(prob.Scalar(1), prob.Scalar(2))
	require.NoError(t, err)

	wrappedA, err := FromGonum(distuv.Normal{Mu: 0, Sigma: 1})
	require.NoError(t, err)
	wrappedB, err := FromGonum(distuv.Normal{Mu: 1, Sigma: 2})
	require.NoError(t, err)

	want, err := KL(nativeA, nativeB)
	require.NoError(t, err)

	pairs := []struct {
		name string
		a, b Distribution
	}{
		{"wrapped/wrapped", wrappedA, wrappedB},
		{"wrapped/native", wrappedA, nativeB},
		{"native/wrapped", nativeA, wrappedB},
	}
	for _, pair := range pairs {
		kl, err := KL(pair.a, pair.b)
		require.NoError(t, err, pair.name)
		assert.InDelta(t, values(t, want)[0], values(t, kl)[0], 1e-12,
			pair.name)
	}

	// The method form resolves through the same table.
	kl, err := wrappedA.KLDivergence(nativeB)
	require.NoError(t, err)
	assert.InDelta(t, values(t, want)[0], values(t, kl)[0], 1e-12)
}

func TestGonumCrossEntropy(t *testing.T) {
	wrapped, err := FromGonum(distuv.Normal{Mu: 0, Sigma: 1})
	require.NoError(t, err)
	other, err := NewNormal(prob.Scalar(1), prob.Scalar(2))
	require.NoError(t, err)

	ce, err := wrapped.CrossEntropy(other)
	require.NoError(t, err)

	entropy, err := wrapped.Entropy()
	require.NoError(t, err)
	kl, err := KL(wrapped, other)
	require.NoError(t, err)

	assert.InDelta(t, values(t, entropy)[0]+values(t, kl)[0],
		values(t, ce)[0], 1e-12)
}
