package arms

import (
	"math"
	"math/rand"
	"testing"
)

func TestInvertExtremes(tst *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := normalSettings()
	smp, err := NewSampler(stdNormal, rng, s)
	if err != nil {
		tst.Fatal("Error constructing sampler:", err)
	}

	w, err := smp.env.invert(0)
	if err != nil {
		tst.Fatal("Error inverting:", err)
	}
	if math.Abs(w.x-s.Lower) > 1e-10 {
		tst.Error("Zero variate should map to the left bound, got:", w.x)
	}

	w, err = smp.env.invert(1 - 1e-12)
	if err != nil {
		tst.Fatal("Error inverting:", err)
	}
	if math.Abs(w.x-s.Upper) > 1e-4 {
		tst.Error("Near-one variate should map to the right bound, got:", w.x)
	}
}

func TestInvertInsidePiece(tst *testing.T) {
	rng := rand.New(rand.NewSource(1))
	smp, err := NewSampler(stdNormal, rng, normalSettings())
	if err != nil {
		tst.Fatal("Error constructing sampler:", err)
	}
	e := smp.env
	for prob := 0.05; prob < 1; prob += 0.05 {
		w, err := e.invert(prob)
		if err != nil {
			tst.Fatal("Error inverting:", err)
		}
		if w.x < e.p[w.pl].x || w.x > e.p[w.pr].x {
			tst.Errorf("prob=%v: x=%v outside piece [%v, %v]",
				prob, w.x, e.p[w.pl].x, e.p[w.pr].x)
		}
	}
}

func TestDeterminism(tst *testing.T) {
	run := func() ([]float64, int) {
		rng := rand.New(rand.NewSource(42))
		smp, err := NewSampler(stdNormal, rng, normalSettings())
		if err != nil {
			tst.Fatal("Error constructing sampler:", err)
		}
		xs, err := smp.SampleN(100)
		if err != nil {
			tst.Fatal("Error sampling:", err)
		}
		return xs, smp.NEvaluations()
	}

	xs1, neval1 := run()
	xs2, neval2 := run()
	if neval1 != neval2 {
		tst.Errorf("Evaluation counts differ: %d != %d", neval1, neval2)
	}
	for i := range xs1 {
		if xs1[i] != xs2[i] {
			tst.Fatalf("Draw %d differs: %v != %v", i, xs1[i], xs2[i])
		}
	}
}
