package prob

import (
	"math"

	"github.com/chewxy/math32"
	"gorgonia.org/tensor"
)

// numElements returns the number of elements a shape describes. The
// empty (scalar) shape describes one element.
func numElements(shape tensor.Shape) int {
	n := 1
	for _, dim := range shape {
		n *= dim
	}

	return n
}

// Softplus computes log(1 + exp(x)) without overflowing for large x or
// losing precision for very negative x.
func Softplus(x float64) float64 {
	if x > 0 {
		return x + math.Log1p(math.Exp(-x))
	}

	return math.Log1p(math.Exp(x))
}

// Softplus32 is Softplus in single precision.
func Softplus32(x float32) float32 {
	if x > 0 {
		return x + math32.Log1p(math32.Exp(-x))
	}

	return math32.Log1p(math32.Exp(x))
}

// Sigmoid computes 1 / (1 + exp(-x)), stable in both tails.
func Sigmoid(x float64) float64 {
	if x >= 0 {
		return 1.0 / (1.0 + math.Exp(-x))
	}

	e := math.Exp(x)

	return e / (1.0 + e)
}

// Sigmoid32 is Sigmoid in single precision.
func Sigmoid32(x float32) float32 {
	if x >= 0 {
		return 1.0 / (1.0 + math32.Exp(-x))
	}

	e := math32.Exp(x)

	return e / (1.0 + e)
}

// Logit computes the inverse of Sigmoid: log(y) - log(1 - y).
func Logit(y float64) float64 {
	return math.Log(y) - math.Log1p(-y)
}

// Logit32 is Logit in single precision.
func Logit32(y float32) float32 {
	return math32.Log(y) - math32.Log1p(-y)
}

// LogSumExp computes log(sum(exp(xs))) shifted by the maximum so that
// no intermediate overflows.
func LogSumExp(xs []float64) float64 {
	max := math.Inf(-1)
	for _, x := range xs {
		if x > max {
			max = x
		}
	}
	if math.IsInf(max, -1) {
		return max
	}

	total := 0.0
	for _, x := range xs {
		total += math.Exp(x - max)
	}

	return max + math.Log(total)
}
