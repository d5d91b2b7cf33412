package distribution

import (
	"fmt"

	"github.com/samuelfneumann/prob"
	"gorgonia.org/tensor"
)

// LogStddevNormal is a normal distribution parameterized by its
// location and the log of its scale. It behaves exactly like the
// Normal obtained by exponentiating the log scale; the distinct kind
// exists so divergence dispatch can recognize the parameterization.
type LogStddevNormal struct {
	*Normal
	logScale *tensor.Dense
}

// NewLogStddevNormal returns a new LogStddevNormal with the given
// location and log scale, which must be broadcast-compatible float64
// tensors.
func NewLogStddevNormal(loc, logScale *tensor.Dense) (*LogStddevNormal,
	error) {
	scale, err := prob.Apply(logScale, exp64, exp32)
	if err != nil {
		return nil, fmt.Errorf("newLogStddevNormal: %v", err)
	}

	normal, err := NewNormal(loc, scale)
	if err != nil {
		return nil, fmt.Errorf("newLogStddevNormal: %w", err)
	}

	logScale, err = prob.BroadcastTo(logScale, normal.BatchShape())
	if err != nil {
		return nil, fmt.Errorf("newLogStddevNormal: %w", err)
	}

	return &LogStddevNormal{Normal: normal, logScale: logScale}, nil
}

// LogScale returns the log scale parameter at its broadcast shape.
func (l *LogStddevNormal) LogScale() *tensor.Dense { return l.logScale }

// Sample draws samples of the given sample shape.
//
// Sample and SampleAndLogProb are restated on the outer type so the
// shared sampling machinery sees the LogStddevNormal kind, not the
// embedded Normal.
func (l *LogStddevNormal) Sample(seed, sampleShape interface{}) (
	*tensor.Dense, error) {
	return sampleShaped(l, seed, sampleShape)
}

// SampleAndLogProb draws samples together with their log densities.
func (l *LogStddevNormal) SampleAndLogProb(seed,
	sampleShape interface{}) (*tensor.Dense, *tensor.Dense, error) {
	return sampleAndLogProbOf(l, seed, sampleShape)
}

// KLDivergence returns KL(l ‖ other), dispatched on the
// LogStddevNormal kind.
func (l *LogStddevNormal) KLDivergence(other Distribution) (*tensor.Dense,
	error) {
	return KL(l, other)
}

// CrossEntropy returns H(l) + KL(l ‖ other).
func (l *LogStddevNormal) CrossEntropy(other Distribution) (*tensor.Dense,
	error) {
	return CrossEntropy(l, other)
}

// The reparameterization changes nothing about the measure, so every
// pairing of LogStddevNormal and Normal reduces to the Normal‖Normal
// divergence: the entries below all delegate to klNormalNormal, which
// reads both sides through the normalLike interface.
func init() {
	RegisterKL(&LogStddevNormal{}, &LogStddevNormal{}, klNormalNormal)
	RegisterKL(&LogStddevNormal{}, &Normal{}, klNormalNormal)
	RegisterKL(&Normal{}, &LogStddevNormal{}, klNormalNormal)
}
