package arms

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

// stdNormal is an unnormalized standard normal log-density.
func stdNormal(x float64) float64 {
	return -x * x / 2
}

// countCalls wraps a log-density with an evaluation counter.
func countCalls(lpdf LogDensity, n *int) LogDensity {
	return func(x float64) float64 {
		*n++
		return lpdf(x)
	}
}

// bimodal is a mixture of two well separated normals; it is not
// log-concave between the modes.
func bimodal(x float64) float64 {
	a := -(x + 2) * (x + 2) / (2 * 0.4 * 0.4)
	b := -(x - 2) * (x - 2) / (2 * 0.4 * 0.4)
	if a < b {
		a, b = b, a
	}
	return a + math.Log1p(math.Exp(b-a))
}

func normalSettings() *Settings {
	return &Settings{
		Lower:     -3,
		Upper:     3,
		Initial:   []float64{-1, 0, 1},
		MaxPoints: 50,
	}
}

func TestConstructionErrors(tst *testing.T) {
	rng := rand.New(rand.NewSource(1))

	cases := []struct {
		name     string
		settings *Settings
		err      error
	}{
		{"too few points", &Settings{Lower: -3, Upper: 3, Initial: []float64{-1, 1}, MaxPoints: 50}, ErrTooFewInitialPoints},
		{"capacity too small", &Settings{Lower: -3, Upper: 3, Initial: []float64{-1, 0, 1}, MaxPoints: 6}, ErrCapacityTooSmall},
		{"left bound", &Settings{Lower: -1, Upper: 3, Initial: []float64{-1, 0, 1}, MaxPoints: 50}, ErrBoundsViolation},
		{"right bound", &Settings{Lower: -3, Upper: 1, Initial: []float64{-1, 0, 1}, MaxPoints: 50}, ErrBoundsViolation},
		{"unordered", &Settings{Lower: -3, Upper: 3, Initial: []float64{-1, 1, 0}, MaxPoints: 50}, ErrUnorderedInitialPoints},
		{"negative convexity", &Settings{Lower: -3, Upper: 3, Initial: []float64{-1, 0, 1}, Convex: -1, MaxPoints: 50}, ErrInvalidConvexity},
		{"allocation", &Settings{Lower: -3, Upper: 3, Initial: []float64{-1, 0, 1}, MaxPoints: math.MaxInt}, ErrAllocation},
	}
	for _, c := range cases {
		_, err := NewSampler(stdNormal, rng, c.settings)
		if !errors.Is(err, c.err) {
			tst.Errorf("%s: expected %v, got %v", c.name, c.err, err)
		}
	}
}

func TestValidationBeforeEvaluation(tst *testing.T) {
	rng := rand.New(rand.NewSource(1))
	calls := 0
	s := &Settings{Lower: -3, Upper: 3, Initial: []float64{-1, 1}, MaxPoints: 50}
	_, err := NewSampler(countCalls(stdNormal, &calls), rng, s)
	if !errors.Is(err, ErrTooFewInitialPoints) {
		tst.Error("Expected ErrTooFewInitialPoints, got:", err)
	}
	if calls != 0 {
		tst.Error("Density evaluated before validation:", calls)
	}
}

func TestConstructionEvalCount(tst *testing.T) {
	rng := rand.New(rand.NewSource(1))
	calls := 0
	s := &Settings{Lower: -4, Upper: 4, Initial: []float64{-2, -1, 0, 1, 2}, MaxPoints: 50}
	smp, err := NewSampler(countCalls(stdNormal, &calls), rng, s)
	if err != nil {
		tst.Fatal("Error constructing sampler:", err)
	}
	if smp.NEvaluations() != len(s.Initial) {
		tst.Error("Expected one evaluation per initial point, got:", smp.NEvaluations())
	}
	if calls != smp.NEvaluations() {
		tst.Errorf("Counter mismatch: %d calls, %d reported", calls, smp.NEvaluations())
	}
}

func TestCumulativeMonotone(tst *testing.T) {
	rng := rand.New(rand.NewSource(1))
	smp, err := NewSampler(stdNormal, rng, normalSettings())
	if err != nil {
		tst.Fatal("Error constructing sampler:", err)
	}
	e := smp.env
	prev := math.Inf(-1)
	for qi := e.head; qi != none; qi = e.p[qi].pr {
		if e.p[qi].cum < prev {
			tst.Errorf("Cumulative integral decreased: %v after %v", e.p[qi].cum, prev)
		}
		prev = e.p[qi].cum
	}
	if e.mass() <= 0 {
		tst.Error("Total mass should be positive, got:", e.mass())
	}
}

func TestChainOrdered(tst *testing.T) {
	rng := rand.New(rand.NewSource(1))
	smp, err := NewSampler(stdNormal, rng, normalSettings())
	if err != nil {
		tst.Fatal("Error constructing sampler:", err)
	}
	// refine the envelope with a few draws, then check the chain
	if _, err := smp.SampleN(50); err != nil {
		tst.Fatal("Error sampling:", err)
	}
	e := smp.env
	prev := math.Inf(-1)
	n := 0
	for qi := e.head; qi != none; qi = e.p[qi].pr {
		if e.p[qi].x < prev {
			tst.Errorf("Chain not ordered: %v after %v", e.p[qi].x, prev)
		}
		prev = e.p[qi].x
		n++
	}
	if n != len(e.p) {
		tst.Errorf("Chain length %d != arena length %d", n, len(e.p))
	}
}

func TestLogConcaveNoViolation(tst *testing.T) {
	for _, metrop := range []bool{false, true} {
		rng := rand.New(rand.NewSource(1))
		s := normalSettings()
		s.Metropolis = metrop
		smp, err := NewSampler(stdNormal, rng, s)
		if err != nil {
			tst.Fatal("Error constructing sampler:", err)
		}
		if _, err := smp.SampleN(500); err != nil {
			tst.Errorf("metropolis=%v: unexpected error: %v", metrop, err)
		}
	}
}

func TestMixtureViolation(tst *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := &Settings{Lower: -6, Upper: 6, Initial: []float64{-1, 0, 1}, MaxPoints: 100}
	_, err := NewSampler(bimodal, rng, s)
	if !errors.Is(err, ErrEnvelopeViolation) {
		tst.Error("Expected ErrEnvelopeViolation, got:", err)
	}
}

func TestMixtureMetropolis(tst *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := &Settings{
		Lower:      -6,
		Upper:      6,
		Initial:    []float64{-2, -1, 0, 1, 2},
		MaxPoints:  100,
		Metropolis: true,
	}
	smp, err := NewSampler(bimodal, rng, s)
	if err != nil {
		tst.Fatal("Error constructing sampler:", err)
	}
	xs, err := smp.SampleN(500)
	if err != nil {
		tst.Fatal("Error sampling:", err)
	}
	nleft, nright := 0, 0
	for _, x := range xs {
		if x < s.Lower || x > s.Upper {
			tst.Fatal("Sample out of bounds:", x)
		}
		if x < 0 {
			nleft++
		} else {
			nright++
		}
	}
	if nleft == 0 || nright == 0 {
		tst.Errorf("Mode missing: %d draws left, %d right", nleft, nright)
	}
}

func TestCapacityExhaustion(tst *testing.T) {
	rng := rand.New(rand.NewSource(1))
	// 2*3+1 points: the envelope is full from the start and every
	// refinement is silently skipped
	s := normalSettings()
	s.MaxPoints = 7
	smp, err := NewSampler(stdNormal, rng, s)
	if err != nil {
		tst.Fatal("Error constructing sampler:", err)
	}
	if _, err := smp.SampleN(100); err != nil {
		tst.Fatal("Error sampling:", err)
	}
	if smp.NPoints() != 7 {
		tst.Error("Full envelope should not grow, got:", smp.NPoints())
	}
	if smp.NEvaluations() <= len(s.Initial) {
		tst.Error("Evaluations should continue on a full envelope, got:", smp.NEvaluations())
	}
}
