package arms

import (
	"fmt"
	"math"
)

// Critical constants of the rejection envelope (Gilks, Best & Tan 1995).
const (
	// xEps is the critical relative x-value difference.
	xEps = 1e-5
	// yEps is the critical y-value difference.
	yEps = 0.1
	// eyEps is the critical relative exp(y) difference.
	eyEps = 0.001
	// yCeil is the maximum y avoiding overflow in exp(y).
	yCeil = 50.
)

// LogDensity evaluates the target log-density at x. It is only called
// for x strictly inside the bounds. The density may be unnormalized.
type LogDensity func(x float64) float64

// envelope is the piecewise-exponential rejection envelope over the
// target log-density. The chain alternates bound/intersection points
// and evaluated density points; the arena never reallocates, so
// neighbor indices stay stable across updates.
type envelope struct {
	p          []point
	head, tail int
	ymax       float64
	convex     float64
	metrop     bool
	lpdf       LogDensity
	neval      int
}

// newEnvelope validates the inputs and builds the initial chain of
// 2*len(xinit)+1 points, evaluating the log-density once per initial
// abscissa.
func newEnvelope(lpdf LogDensity, xl, xr float64, xinit []float64, convex float64, maxPoints int, metrop bool) (env *envelope, err error) {
	ninit := len(xinit)
	if ninit < 3 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewInitialPoints, ninit)
	}
	mpoint := 2*ninit + 1
	if maxPoints < mpoint {
		return nil, fmt.Errorf("%w: need at least %d for %d initial points, got %d",
			ErrCapacityTooSmall, mpoint, ninit, maxPoints)
	}
	if xinit[0] <= xl || xinit[ninit-1] >= xr {
		return nil, fmt.Errorf("%w: initial points must lie strictly inside (%v, %v)",
			ErrBoundsViolation, xl, xr)
	}
	for i := 1; i < ninit; i++ {
		if xinit[i] <= xinit[i-1] {
			return nil, fmt.Errorf("%w: xinit[%d]=%v, xinit[%d]=%v",
				ErrUnorderedInitialPoints, i-1, xinit[i-1], i, xinit[i])
		}
	}
	if convex < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConvexity, convex)
	}

	env = &envelope{
		convex: convex,
		metrop: metrop,
		lpdf:   lpdf,
	}
	env.p, err = allocArena(maxPoints)
	if err != nil {
		return nil, err
	}
	env.p = env.p[:mpoint]

	// Alternating chain: bound, density point, intersection, ..., bound.
	env.p[0] = point{x: xl, pl: none, pr: 1}
	for j, k := 1, 0; j < mpoint-1; j++ {
		q := &env.p[j]
		if j%2 == 1 {
			q.x = xinit[k]
			q.y = env.evaluate(q.x)
			q.f = true
			k++
		}
		q.pl = j - 1
		q.pr = j + 1
	}
	env.p[mpoint-1] = point{x: xr, pl: mpoint - 2, pr: none}
	env.head = 0
	env.tail = mpoint - 1

	for j := 0; j < mpoint; j += 2 {
		if err = env.meet(j); err != nil {
			return nil, err
		}
	}
	env.cumulate()

	return env, nil
}

// allocArena reserves the point arena, converting an impossible
// capacity into ErrAllocation instead of a runtime panic.
func allocArena(n int) (p []point, err error) {
	defer func() {
		if recover() != nil {
			p, err = nil, fmt.Errorf("%w: %d points", ErrAllocation, n)
		}
	}()
	return make([]point, 0, n), nil
}

// evaluate calls the log-density callback and counts the evaluation.
func (e *envelope) evaluate(x float64) float64 {
	e.neval++
	return e.lpdf(x)
}

// mass returns the total unnormalized mass under the envelope.
func (e *envelope) mass() float64 {
	return e.p[e.tail].cum
}

// meet recomputes the intersection point qi from the chords of its
// neighbors. A one-sided chord gradient crossing the direct chord
// implies the target is not log-concave there; without metropolis
// this is fatal, with metropolis the gradient is pulled back towards
// the direct chord by the convexity factor.
func (e *envelope) meet(qi int) error {
	q := &e.p[qi]
	if q.f {
		return fmt.Errorf("%w: intersection recomputed at a density point x=%v", ErrGeometry, q.x)
	}

	var gl, gr, grl, dl, dr float64
	var il, ir, irl bool

	if q.pl != none {
		// chord gradient at the left end of the interval
		if p3i := e.p[e.p[q.pl].pl].pl; p3i != none {
			pl, p3 := &e.p[q.pl], &e.p[p3i]
			gl = (pl.y - p3.y) / (pl.x - p3.x)
			il = true
		}
	}
	if q.pr != none {
		// chord gradient at the right end of the interval
		if p3i := e.p[e.p[q.pr].pr].pr; p3i != none {
			pr, p3 := &e.p[q.pr], &e.p[p3i]
			gr = (pr.y - p3.y) / (pr.x - p3.x)
			ir = true
		}
	}
	if q.pl != none && q.pr != none {
		// direct chord across the interval
		pl, pr := &e.p[q.pl], &e.p[q.pr]
		grl = (pr.y - pl.y) / (pr.x - pl.x)
		irl = true
	}

	if irl && il && gl < grl {
		if !e.metrop {
			return fmt.Errorf("%w: left of interval (%v, %v)",
				ErrEnvelopeViolation, e.p[q.pl].x, e.p[q.pr].x)
		}
		gl += (1 + e.convex) * (grl - gl)
	}
	if irl && ir && gr > grl {
		if !e.metrop {
			return fmt.Errorf("%w: right of interval (%v, %v)",
				ErrEnvelopeViolation, e.p[q.pl].x, e.p[q.pr].x)
		}
		gr += (1 + e.convex) * (grl - gr)
	}

	if il && irl {
		dr = (gl - grl) * (e.p[q.pr].x - e.p[q.pl].x)
		if dr < yEps {
			dr = yEps
		}
	}
	if ir && irl {
		dl = (grl - gr) * (e.p[q.pr].x - e.p[q.pl].x)
		if dl < yEps {
			dl = yEps
		}
	}

	switch {
	case il && ir && irl:
		q.x = (dl*e.p[q.pr].x + dr*e.p[q.pl].x) / (dl + dr)
		q.y = (dl*e.p[q.pr].y + dr*e.p[q.pl].y + dl*dr) / (dl + dr)
	case il && irl:
		q.x = e.p[q.pr].x
		q.y = e.p[q.pr].y + dr
	case ir && irl:
		q.x = e.p[q.pl].x
		q.y = e.p[q.pl].y + dl
	case il:
		// right bound
		q.y = e.p[q.pl].y + gl*(q.x-e.p[q.pl].x)
	case ir:
		// left bound
		q.y = e.p[q.pr].y - gr*(e.p[q.pr].x-q.x)
	default:
		return fmt.Errorf("%w: no chord gradient on either side of x=%v", ErrGeometry, q.x)
	}

	if (q.pl != none && q.x < e.p[q.pl].x) ||
		(q.pr != none && q.x > e.p[q.pr].x) {
		return fmt.Errorf("%w: intersection at x=%v escaped its interval", ErrGeometry, q.x)
	}
	return nil
}

// cumulate exponentiates the envelope relative to its maximum and
// recomputes the cumulative integral along the chain.
func (e *envelope) cumulate() {
	e.ymax = e.p[e.head].y
	for qi := e.p[e.head].pr; qi != none; qi = e.p[qi].pr {
		if e.p[qi].y > e.ymax {
			e.ymax = e.p[qi].y
		}
	}

	for qi := e.head; qi != none; qi = e.p[qi].pr {
		e.p[qi].ey = expshift(e.p[qi].y, e.ymax)
	}

	e.p[e.head].cum = 0
	for qi := e.p[e.head].pr; qi != none; qi = e.p[qi].pr {
		e.p[qi].cum = e.p[e.p[qi].pl].cum + e.area(qi)
	}
}

// area integrates the exponentiated envelope piece to the left of qi.
func (e *envelope) area(qi int) float64 {
	q := &e.p[qi]
	l := &e.p[q.pl]
	switch {
	case l.x == q.x:
		return 0
	case math.Abs(q.y-l.y) < yEps:
		// near-linear piece, trapezoid rule
		return 0.5 * (q.ey + l.ey) * (q.x - l.x)
	default:
		return (q.ey - l.ey) / (q.y - l.y) * (q.x - l.x)
	}
}

// expshift exponentiates a shifted y without overflow.
func expshift(y, y0 float64) float64 {
	if y-y0 > -2*yCeil {
		return math.Exp(y - y0 + yCeil)
	}
	return 0
}

// logshift is the inverse of expshift.
func logshift(ey, y0 float64) float64 {
	return math.Log(ey) + y0 - yCeil
}
