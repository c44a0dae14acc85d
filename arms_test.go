package arms

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/gonum/stat"

	"bitbucket.org/Davydov/arms/dist"
)

func TestTruncatedNormal(tst *testing.T) {
	rng := rand.New(rand.NewSource(1))
	smp, err := NewSampler(stdNormal, rng, normalSettings())
	if err != nil {
		tst.Fatal("Error constructing sampler:", err)
	}
	xs, err := smp.SampleN(1000)
	if err != nil {
		tst.Fatal("Error sampling:", err)
	}
	for _, x := range xs {
		if x < -3 || x > 3 {
			tst.Fatal("Sample out of bounds:", x)
		}
	}
	mean := stat.Mean(xs, nil)
	if math.Abs(mean) > 0.1 {
		tst.Error("Sample mean too far from 0:", mean)
	}
	sd := stat.StdDev(xs, nil)
	if math.Abs(sd-1) > 0.1 {
		tst.Error("Sample standard deviation too far from 1:", sd)
	}
}

func TestEmpiricalQuantile(tst *testing.T) {
	if testing.Short() {
		tst.Skip("skipping test in short mode.")
	}
	rng := rand.New(rand.NewSource(1))
	smp, err := NewSampler(stdNormal, rng, normalSettings())
	if err != nil {
		tst.Fatal("Error constructing sampler:", err)
	}
	xs, err := smp.SampleN(20000)
	if err != nil {
		tst.Fatal("Error sampling:", err)
	}
	sort.Float64s(xs)
	for _, prob := range []float64{0.025, 0.25, 0.5, 0.75, 0.975} {
		q := xs[int(prob*float64(len(xs)))]
		// truncation at +-3 moves the quantiles by less than the
		// test tolerance
		expected := dist.QuantileNormal(prob)
		if math.Abs(q-expected) > 0.1 {
			tst.Errorf("Quantile %v: got %v, expected %v", prob, q, expected)
		}
	}
}

func TestEnvelopeEfficiency(tst *testing.T) {
	rng := rand.New(rand.NewSource(1))
	smp, err := NewSampler(stdNormal, rng, normalSettings())
	if err != nil {
		tst.Fatal("Error constructing sampler:", err)
	}
	if _, err := smp.SampleN(1000); err != nil {
		tst.Fatal("Error sampling:", err)
	}
	// the envelope adapts, so the density is evaluated far less
	// than once per draw
	if smp.NEvaluations() > 500 {
		tst.Error("Too many density evaluations:", smp.NEvaluations())
	}
}

func TestPreviousOutOfBounds(tst *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := normalSettings()
	s.Metropolis = true
	s.Previous = 5
	_, err := NewSampler(stdNormal, rng, s)
	if !errors.Is(err, ErrPreviousOutOfBounds) {
		tst.Error("Expected ErrPreviousOutOfBounds, got:", err)
	}
}

func TestSampleOne(tst *testing.T) {
	rng := rand.New(rand.NewSource(1))
	x, neval, err := SampleOne(stdNormal, rng, normalSettings())
	if err != nil {
		tst.Fatal("Error sampling:", err)
	}
	if x < -3 || x > 3 {
		tst.Error("Sample out of bounds:", x)
	}
	if neval < 3 {
		tst.Error("Expected at least one evaluation per initial point, got:", neval)
	}
}

func TestMetropolisPersistence(tst *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := normalSettings()
	s.Metropolis = true
	s.Previous = 0.5
	smp, err := NewSampler(stdNormal, rng, s)
	if err != nil {
		tst.Fatal("Error constructing sampler:", err)
	}
	// the previous iterate is evaluated once on top of the
	// initial points
	if smp.NEvaluations() != len(s.Initial)+1 {
		tst.Error("Expected initial points plus previous iterate, got:", smp.NEvaluations())
	}
	xs, err := smp.SampleN(500)
	if err != nil {
		tst.Fatal("Error sampling:", err)
	}
	for _, x := range xs {
		if x < -3 || x > 3 {
			tst.Fatal("Sample out of bounds:", x)
		}
	}
}
