package distribution

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/samuelfneumann/prob"
	"gorgonia.org/tensor"
)

const (
	logTwoPi     = 1.8378770664093453 // log(2π)
	halfLogTwoPi = logTwoPi / 2
)

func exp64(x float64) float64 { return math.Exp(x) }
func exp32(x float32) float32 { return math32.Exp(x) }
func log64(x float64) float64 { return math.Log(x) }
func log32(x float32) float32 { return math32.Log(x) }

func add(a, b *tensor.Dense) (*tensor.Dense, error) {
	return prob.Apply2(func(x, y float64) float64 { return x + y }, a, b)
}

func sub(a, b *tensor.Dense) (*tensor.Dense, error) {
	return prob.Apply2(func(x, y float64) float64 { return x - y }, a, b)
}

// normalLogProb is the elementwise univariate normal log density.
func normalLogProb(x, mu, sigma float64) float64 {
	z := (x - mu) / sigma

	return -0.5*z*z - math.Log(sigma) - halfLogTwoPi
}

// normalKL is the elementwise KL(N(mu1, sigma1) ‖ N(mu2, sigma2)).
func normalKL(mu1, sigma1, mu2, sigma2 float64) float64 {
	d := mu1 - mu2

	return math.Log(sigma2/sigma1) +
		(sigma1*sigma1+d*d)/(2*sigma2*sigma2) - 0.5
}
