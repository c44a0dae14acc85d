/*

Package arms implements adaptive rejection metropolis sampling (Gilks,
Best & Tan 1995): pseudo-random draws from a univariate distribution
known only through a pointwise log-density. For a log-concave target
this is plain adaptive rejection sampling; for other targets the
metropolis correction restores correctness at the price of the draws
forming a Markov chain.

The sampler maintains a piecewise-exponential envelope over the
log-density that improves with every true evaluation, so expensive
densities are evaluated only a handful of times per draw. It is meant
as the single-coordinate step of a Gibbs sampler; the gibbs package
provides such a driver.

*/
package arms

import (
	"fmt"

	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("arms")

// UniformSource supplies uniform variates in [0, 1). *rand.Rand
// satisfies the interface.
type UniformSource interface {
	Float64() float64
}

// Settings specify a single-coordinate sampling run.
type Settings struct {
	// Lower and Upper bound the support of the density.
	Lower, Upper float64
	// Initial holds the starting abscissas, strictly increasing
	// and strictly inside (Lower, Upper). At least three are
	// required.
	Initial []float64
	// Convex is the adjustment for convexity (>= 0). Only
	// relevant with Metropolis on.
	Convex float64
	// MaxPoints limits the envelope chain length; at least
	// 2*len(Initial)+1. Once the limit is reached the envelope
	// stops improving but sampling continues.
	MaxPoints int
	// Metropolis enables the correction step for densities which
	// are not log-concave.
	Metropolis bool
	// Previous is the previous Markov chain iterate; it is only
	// used when Metropolis is on and must lie in [Lower, Upper].
	Previous float64
}

// Sampler draws from a univariate density through an adaptive
// envelope. A Sampler is bound to one coordinate of one chain and is
// not safe for concurrent use.
type Sampler struct {
	env    *envelope
	metrop metropolis
	rng    UniformSource
}

// NewSampler builds the initial envelope, evaluating the log-density
// once per initial abscissa (plus once at the previous iterate when
// metropolis is on).
func NewSampler(lpdf LogDensity, rng UniformSource, s *Settings) (*Sampler, error) {
	env, err := newEnvelope(lpdf, s.Lower, s.Upper, s.Initial, s.Convex, s.MaxPoints, s.Metropolis)
	if err != nil {
		return nil, err
	}
	smp := &Sampler{env: env, rng: rng}
	if s.Metropolis {
		if s.Previous < s.Lower || s.Previous > s.Upper {
			return nil, fmt.Errorf("%w: %v not in [%v, %v]",
				ErrPreviousOutOfBounds, s.Previous, s.Lower, s.Upper)
		}
		smp.metrop = metropolis{
			on:    true,
			xprev: s.Previous,
			yprev: env.evaluate(s.Previous),
		}
	}
	log.Debugf("envelope of %d points on (%v, %v), mass=%g",
		len(env.p), s.Lower, s.Upper, env.mass())
	return smp, nil
}

// Sample returns one accepted draw, refining the envelope along the
// way.
func (s *Sampler) Sample() (float64, error) {
	for {
		w, err := s.env.invert(s.rng.Float64())
		if err != nil {
			return 0, err
		}
		ok, err := s.test(&w)
		if err != nil {
			return 0, err
		}
		if ok {
			return w.x, nil
		}
	}
}

// SampleN returns n accepted draws.
func (s *Sampler) SampleN(n int) ([]float64, error) {
	xs := make([]float64, n)
	for i := range xs {
		x, err := s.Sample()
		if err != nil {
			return nil, err
		}
		xs[i] = x
	}
	return xs, nil
}

// NEvaluations returns the number of log-density evaluations
// performed so far.
func (s *Sampler) NEvaluations() int {
	return s.env.neval
}

// NPoints returns the current envelope chain length.
func (s *Sampler) NPoints() int {
	return len(s.env.p)
}

// SampleOne draws a single value; it is the one-shot form used per
// coordinate per sweep by a Gibbs driver.
func SampleOne(lpdf LogDensity, rng UniformSource, s *Settings) (x float64, neval int, err error) {
	smp, err := NewSampler(lpdf, rng, s)
	if err != nil {
		return 0, 0, err
	}
	x, err = smp.Sample()
	return x, smp.NEvaluations(), err
}
