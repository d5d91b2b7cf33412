package distribution

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/prob"
	"gonum.org/v1/gonum/stat/distuv"
	"gorgonia.org/tensor"
)

// Categorical is a distribution over {0, ..., K-1}, which may hold a
// batch of categorical distributions simultaneously. The last
// dimension of the parameter tensor indexes categories; every leading
// dimension is a batch dimension. The event shape is scalar and
// samples are category indices stored as float64s.
type Categorical struct {
	logits *tensor.Dense // normalized: logsumexp over categories is 0
	probs  *tensor.Dense

	batchShape    tensor.Shape
	numCategories int

	// rows maps each batch element to its row in the flat parameter
	// backing; it exists so density lookups can ride the broadcasting
	// machinery.
	rows *tensor.Dense
}

// NewCategorical returns a new Categorical with the given unnormalized
// log probabilities. The last dimension indexes categories.
func NewCategorical(logits *tensor.Dense) (*Categorical, error) {
	if logits.Dtype() != tensor.Float64 {
		return nil, fmt.Errorf("newCategorical: expected float64 logits "+
			"but got %v", logits.Dtype())
	}
	if len(logits.Shape()) < 1 {
		return nil, fmt.Errorf("newCategorical: %w: logits must have at "+
			"least one dimension", prob.ErrIncompatibleShapes)
	}

	data, err := prob.Float64s(logits)
	if err != nil {
		return nil, fmt.Errorf("newCategorical: %v", err)
	}

	shape := logits.Shape()
	k := shape[len(shape)-1]
	batch := shape[:len(shape)-1].Clone()

	normalized := make([]float64, len(data))
	probs := make([]float64, len(data))
	for row := 0; row*k < len(data); row++ {
		lse := prob.LogSumExp(data[row*k : (row+1)*k])
		for j := 0; j < k; j++ {
			normalized[row*k+j] = data[row*k+j] - lse
			probs[row*k+j] = math.Exp(normalized[row*k+j])
		}
	}

	rows := make([]float64, len(data)/k)
	for i := range rows {
		rows[i] = float64(i)
	}

	return &Categorical{
		logits:        prob.New(shape.Clone(), normalized),
		probs:         prob.New(shape.Clone(), probs),
		batchShape:    batch,
		numCategories: k,
		rows:          prob.New(batch, rows),
	}, nil
}

// NewCategoricalProbs returns a new Categorical with the given
// probabilities, which must be positive where nonzero; they are
// normalized to sum to one over the last dimension.
func NewCategoricalProbs(probs *tensor.Dense) (*Categorical, error) {
	logits, err := prob.Apply(probs, math.Log, nil)
	if err != nil {
		return nil, fmt.Errorf("newCategoricalProbs: %v", err)
	}

	c, err := NewCategorical(logits)
	if err != nil {
		return nil, fmt.Errorf("newCategoricalProbs: %w", err)
	}

	return c, nil
}

// Logits returns the normalized log probabilities.
func (c *Categorical) Logits() *tensor.Dense { return c.logits }

// Probs returns the category probabilities.
func (c *Categorical) Probs() *tensor.Dense { return c.probs }

// NumCategories returns K.
func (c *Categorical) NumCategories() int { return c.numCategories }

// EventShape returns the scalar event shape.
func (c *Categorical) EventShape() tensor.Shape { return tensor.Shape{} }

// BatchShape returns the leading dimensions of the parameter tensor.
func (c *Categorical) BatchShape() tensor.Shape { return c.batchShape }

// SampleN draws n category indices per batch element. Sampling
// delegates to gonum's categorical sampler, one per batch element, all
// fed from the single stream derived from key.
func (c *Categorical) SampleN(key prob.Key, count int) (*tensor.Dense,
	error) {
	probs, err := prob.Float64s(c.probs)
	if err != nil {
		return nil, fmt.Errorf("sampleN: %v", err)
	}

	src := key.Source()
	batch := len(probs) / c.numCategories
	gens := make([]distuv.Categorical, batch)
	for row := range gens {
		weights := make([]float64, c.numCategories)
		copy(weights, probs[row*c.numCategories:(row+1)*c.numCategories])
		gens[row] = distuv.NewCategorical(weights, src)
	}

	out := make([]float64, count*batch)
	for i := range out {
		out[i] = gens[i%batch].Rand()
	}

	shape := append(tensor.Shape{count}, c.batchShape...)

	return prob.New(shape, out), nil
}

// Sample draws samples of the given sample shape.
func (c *Categorical) Sample(seed, sampleShape interface{}) (*tensor.Dense,
	error) {
	return sampleShaped(c, seed, sampleShape)
}

// SampleAndLogProb draws samples together with their log masses.
func (c *Categorical) SampleAndLogProb(seed, sampleShape interface{}) (
	*tensor.Dense, *tensor.Dense, error) {
	return sampleAndLogProbOf(c, seed, sampleShape)
}

// LogProb returns the log mass of the category indices in value,
// broadcasting value's leading dimensions against the batch shape.
// Indices outside [0, K) have log mass -Inf.
func (c *Categorical) LogProb(value *tensor.Dense) (*tensor.Dense, error) {
	logits, err := prob.Float64s(c.logits)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}

	out, err := prob.Apply2(func(v, row float64) float64 {
		idx := int(v)
		if float64(idx) != v || idx < 0 || idx >= c.numCategories {
			return math.Inf(-1)
		}

		return logits[int(row)*c.numCategories+idx]
	}, value, c.rows)
	if err != nil {
		return nil, fmt.Errorf("logProb: %w", err)
	}

	return out, nil
}

// Prob returns the mass of the category indices in value.
func (c *Categorical) Prob(value *tensor.Dense) (*tensor.Dense, error) {
	return probOf(c, value)
}

// CDF returns the probability of drawing a category no greater than
// value, elementwise.
func (c *Categorical) CDF(value *tensor.Dense) (*tensor.Dense, error) {
	probs, err := prob.Float64s(c.probs)
	if err != nil {
		return nil, fmt.Errorf("cdf: %v", err)
	}

	out, err := prob.Apply2(func(v, row float64) float64 {
		idx := int(math.Floor(v))
		if idx < 0 {
			return 0
		}
		if idx >= c.numCategories-1 {
			return 1
		}

		total := 0.0
		for j := 0; j <= idx; j++ {
			total += probs[int(row)*c.numCategories+j]
		}

		return total
	}, value, c.rows)
	if err != nil {
		return nil, fmt.Errorf("cdf: %w", err)
	}

	return out, nil
}

// LogCDF returns the log of the cumulative distribution function at
// value.
func (c *Categorical) LogCDF(value *tensor.Dense) (*tensor.Dense, error) {
	return logCDFOf(c, value)
}

// Mean has no meaning for unordered categories.
func (c *Categorical) Mean() (*tensor.Dense, error) {
	return nil, unsupported("categorical mean")
}

// Mode returns the most probable category per batch element.
func (c *Categorical) Mode() (*tensor.Dense, error) {
	probs, err := prob.Float64s(c.probs)
	if err != nil {
		return nil, fmt.Errorf("mode: %v", err)
	}

	batch := len(probs) / c.numCategories
	out := make([]float64, batch)
	for row := 0; row < batch; row++ {
		best := 0
		for j := 1; j < c.numCategories; j++ {
			if probs[row*c.numCategories+j] > probs[row*c.numCategories+best] {
				best = j
			}
		}
		out[row] = float64(best)
	}

	return prob.New(c.batchShape.Clone(), out), nil
}

// Median has no meaning for unordered categories.
func (c *Categorical) Median() (*tensor.Dense, error) {
	return nil, unsupported("categorical median")
}

// StdDev has no meaning for unordered categories.
func (c *Categorical) StdDev() (*tensor.Dense, error) {
	return nil, unsupported("categorical stddev")
}

// Variance has no meaning for unordered categories.
func (c *Categorical) Variance() (*tensor.Dense, error) {
	return nil, unsupported("categorical variance")
}

// Entropy returns -Σ p log p per batch element.
func (c *Categorical) Entropy() (*tensor.Dense, error) {
	probs, err := prob.Float64s(c.probs)
	if err != nil {
		return nil, fmt.Errorf("entropy: %v", err)
	}
	logits, err := prob.Float64s(c.logits)
	if err != nil {
		return nil, fmt.Errorf("entropy: %v", err)
	}

	batch := len(probs) / c.numCategories
	out := make([]float64, batch)
	for row := 0; row < batch; row++ {
		total := 0.0
		for j := 0; j < c.numCategories; j++ {
			p := probs[row*c.numCategories+j]
			if p > 0 {
				total -= p * logits[row*c.numCategories+j]
			}
		}
		out[row] = total
	}

	return prob.New(c.batchShape.Clone(), out), nil
}

// KLDivergence returns KL(c ‖ other).
func (c *Categorical) KLDivergence(other Distribution) (*tensor.Dense,
	error) {
	return KL(c, other)
}

// CrossEntropy returns H(c) + KL(c ‖ other).
func (c *Categorical) CrossEntropy(other Distribution) (*tensor.Dense,
	error) {
	return CrossEntropy(c, other)
}

// klCategoricalCategorical computes Σ p_a (log p_a - log p_b) per
// broadcast batch element. Both sides must have the same number of
// categories.
func klCategoricalCategorical(a, b Distribution) (*tensor.Dense, error) {
	ca := a.(*Categorical)
	cb := b.(*Categorical)

	if ca.numCategories != cb.numCategories {
		return nil, fmt.Errorf("klCategoricalCategorical: %w: %v and %v "+
			"categories", prob.ErrIncompatibleShapes, ca.numCategories,
			cb.numCategories)
	}

	probsA, err := prob.Float64s(ca.probs)
	if err != nil {
		return nil, fmt.Errorf("klCategoricalCategorical: %v", err)
	}
	logitsA, err := prob.Float64s(ca.logits)
	if err != nil {
		return nil, fmt.Errorf("klCategoricalCategorical: %v", err)
	}
	logitsB, err := prob.Float64s(cb.logits)
	if err != nil {
		return nil, fmt.Errorf("klCategoricalCategorical: %v", err)
	}

	k := ca.numCategories
	out, err := prob.Apply2(func(rowA, rowB float64) float64 {
		total := 0.0
		for j := 0; j < k; j++ {
			p := probsA[int(rowA)*k+j]
			if p > 0 {
				total += p * (logitsA[int(rowA)*k+j] - logitsB[int(rowB)*k+j])
			}
		}

		return total
	}, ca.rows, cb.rows)
	if err != nil {
		return nil, fmt.Errorf("klCategoricalCategorical: %w", err)
	}

	return out, nil
}

func init() {
	RegisterKL(&Categorical{}, &Categorical{}, klCategoricalCategorical)
}
