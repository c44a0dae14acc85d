// Package gibbs sweeps the coordinates of a state vector, drawing
// each one from its full conditional density with the arms sampler.
package gibbs

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/gonum/matrix/mat64"
	"github.com/op/go-logging"

	"bitbucket.org/Davydov/arms"
	"bitbucket.org/Davydov/arms/checkpoint"
)

var log = logging.MustGetLogger("gibbs")

// Conditional evaluates the log-density of coordinate i conditional
// on the rest of the state. The density may depend on every
// coordinate, not just the one being sampled.
type Conditional func(state []float64, i int) float64

// Settings configure the per-coordinate arms samplers. Slices
// shorter than the number of coordinates are recycled.
type Settings struct {
	Lower, Upper []float64
	Initial      [][]float64
	Convex       []float64
	MaxPoints    []int
	Metropolis   []bool
}

// Sampler runs a gibbs chain. Each sweep draws every coordinate once
// from its conditional density; the accepted value is written back
// into the state before the next coordinate is drawn.
type Sampler struct {
	lpdf     Conditional
	rng      arms.UniformSource
	state    []float64
	settings *Settings
	sweep    int
	neval    int
	ckp      *checkpoint.ChainIO
	sig      chan os.Signal
}

// NewSampler creates a gibbs sampler starting from the given state.
func NewSampler(lpdf Conditional, rng arms.UniformSource, start []float64, s *Settings) *Sampler {
	state := make([]float64, len(start))
	copy(state, start)
	return &Sampler{
		lpdf:     lpdf,
		rng:      rng,
		state:    state,
		settings: s,
	}
}

// SetCheckpointIO enables periodic checkpointing of the chain.
func (g *Sampler) SetCheckpointIO(ckp *checkpoint.ChainIO) {
	g.ckp = ckp
}

// RestoreCheckpoint replaces the chain state with a previously saved
// one, if any. It reports whether a checkpoint was found.
func (g *Sampler) RestoreCheckpoint() (bool, error) {
	if g.ckp == nil {
		return false, nil
	}
	state, err := g.ckp.GetState()
	if err != nil || state == nil {
		return false, err
	}
	if len(state.State) != len(g.state) {
		return false, fmt.Errorf("checkpoint has %d coordinates, chain has %d",
			len(state.State), len(g.state))
	}
	copy(g.state, state.State)
	g.sweep = state.Sweep
	g.neval = state.NEvaluations
	return true, nil
}

// WatchSignals makes the chain stop cleanly after the current sweep.
func (g *Sampler) WatchSignals(sigs ...os.Signal) {
	g.sig = make(chan os.Signal, 1)
	signal.Notify(g.sig, sigs...)
}

// coordSettings assembles the arms settings for coordinate p,
// recycling the per-coordinate vectors.
func (g *Sampler) coordSettings(p int) *arms.Settings {
	s := g.settings
	return &arms.Settings{
		Lower:      s.Lower[p%len(s.Lower)],
		Upper:      s.Upper[p%len(s.Upper)],
		Initial:    s.Initial[p%len(s.Initial)],
		Convex:     s.Convex[p%len(s.Convex)],
		MaxPoints:  s.MaxPoints[p%len(s.MaxPoints)],
		Metropolis: s.Metropolis[p%len(s.Metropolis)],
		Previous:   g.state[p],
	}
}

// Run performs nSweeps full sweeps and returns the samples as a
// matrix with one row per sweep and one column per coordinate. The
// chain stops on the first fatal sampler failure rather than
// producing partially sampled output. On a watched signal the matrix
// is truncated to the completed sweeps.
func (g *Sampler) Run(nSweeps int) (*mat64.Dense, error) {
	nc := len(g.state)
	samples := mat64.NewDense(nSweeps, nc, nil)

	done := 0
Sweep:
	for i := 0; i < nSweeps; i++ {
		for p := 0; p < nc; p++ {
			x, neval, err := arms.SampleOne(g.conditional(p), g.rng, g.coordSettings(p))
			g.neval += neval
			if err != nil {
				return nil, fmt.Errorf("sweep %d, coordinate %d: %w", g.sweep, p, err)
			}
			g.state[p] = x
			samples.Set(i, p, x)
		}
		g.sweep++
		done++

		if g.ckp != nil && g.ckp.Old() {
			g.saveCheckpoint(false)
		}

		select {
		case s := <-g.sig:
			log.Warningf("Received signal %v, stopping after sweep %d.", s, g.sweep)
			break Sweep
		default:
		}
	}

	if g.ckp != nil {
		g.saveCheckpoint(done == nSweeps)
	}

	if done < nSweeps {
		return samples.Slice(0, done, 0, nc).(*mat64.Dense), nil
	}
	return samples, nil
}

// conditional fixes the coordinate of the full conditional density.
func (g *Sampler) conditional(p int) arms.LogDensity {
	return func(x float64) float64 {
		g.state[p] = x
		return g.lpdf(g.state, p)
	}
}

func (g *Sampler) saveCheckpoint(final bool) {
	state := make([]float64, len(g.state))
	copy(state, g.state)
	err := g.ckp.Save(&checkpoint.ChainState{
		State:        state,
		Sweep:        g.sweep,
		NEvaluations: g.neval,
		Final:        final,
	})
	if err != nil {
		log.Error("Error saving chain checkpoint:", err)
	}
}

// State returns the current value of every coordinate.
func (g *Sampler) State() []float64 {
	state := make([]float64, len(g.state))
	copy(state, g.state)
	return state
}

// NEvaluations returns the total number of log-density evaluations
// across all coordinates and sweeps.
func (g *Sampler) NEvaluations() int {
	return g.neval
}

// Sweep returns the number of completed sweeps.
func (g *Sampler) Sweep() int {
	return g.sweep
}
