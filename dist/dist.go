// Package dist provides log-density functions for the arms sampler
// and quantile helpers for checking the resulting draws.
package dist

import (
	"math"

	"github.com/gonum/mathext"
)

// Normal returns the log-density of a normal distribution with the
// given mean and standard deviation.
func Normal(mean, sd float64) func(float64) float64 {
	if sd <= 0 {
		panic("sd should be > 0")
	}
	return func(x float64) float64 {
		d := (x - mean) / sd
		return -math.Log(sd*math.Sqrt(2*math.Pi)) - d*d/2
	}
}

// NormalMixture returns the log-density of a two-component normal
// mixture with weight w on the first component. For separated modes
// the mixture is not log-concave, so sampling it requires the
// metropolis correction.
func NormalMixture(w, mean1, sd1, mean2, sd2 float64) func(float64) float64 {
	if w <= 0 || w >= 1 {
		panic("w should be in (0, 1)")
	}
	l1 := Normal(mean1, sd1)
	l2 := Normal(mean2, sd2)
	lw1 := math.Log(w)
	lw2 := math.Log(1 - w)
	return func(x float64) float64 {
		a := lw1 + l1(x)
		b := lw2 + l2(x)
		if a < b {
			a, b = b, a
		}
		return a + math.Log1p(math.Exp(b-a))
	}
}

// Gamma returns the log-density of a gamma distribution with the
// given shape and scale.
func Gamma(shape, scale float64) func(float64) float64 {
	if shape <= 0 || scale <= 0 {
		panic("shape and scale of gamma distribution must be > 0")
	}
	g, _ := math.Lgamma(shape)
	return func(x float64) float64 {
		if x <= 0 {
			return math.Inf(-1)
		}
		return (shape-1)*math.Log(x) - x/scale - shape*math.Log(scale) - g
	}
}

// Beta returns the log-density of a beta distribution.
func Beta(p, q float64) func(float64) float64 {
	if p <= 0 || q <= 0 {
		panic("p and q of beta distribution must be > 0")
	}
	lb := LnBeta(p, q)
	return func(x float64) float64 {
		if x <= 0 || x >= 1 {
			return math.Inf(-1)
		}
		return (p-1)*math.Log(x) + (q-1)*math.Log(1-x) - lb
	}
}

// LnBeta returns log of Beta function.
func LnBeta(p, q float64) float64 {
	lgp, _ := math.Lgamma(p)
	lgq, _ := math.Lgamma(q)
	lgpq, _ := math.Lgamma(p + q)
	return lgp + lgq - lgpq
}

// QuantileNormal returns quantile for the standard normal
// distribution.
func QuantileNormal(prob float64) float64 {
	return mathext.NormalQuantile(prob)
}
