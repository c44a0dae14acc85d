package arms

import (
	"fmt"
	"math"
)

// invert maps a cumulative probability in [0, 1) to a point on the
// envelope. The returned working point brackets the envelope piece it
// was drawn from but is not part of the chain.
func (e *envelope) invert(prob float64) (w point, err error) {
	// locate the piece containing the target cumulative value,
	// walking from the right end
	qi := e.tail
	u := prob * e.p[qi].cum
	for e.p[e.p[qi].pl].cum > u {
		qi = e.p[qi].pl
	}

	q := &e.p[qi]
	l := &e.p[q.pl]
	w = point{pl: q.pl, pr: qi, cum: u}

	if l.x == q.x {
		// zero length piece
		w.x, w.y, w.ey = q.x, q.y, q.ey
		return w, nil
	}

	// proportion of the way through the integral within this piece
	prop := (u - l.cum) / (q.cum - l.cum)

	xl, xr := l.x, q.x
	yl, yr := l.y, q.y
	eyl, eyr := l.ey, q.ey
	if math.Abs(yr-yl) < yEps {
		// the piece was integrated with the trapezoid rule
		if math.Abs(eyr-eyl) > eyEps*math.Abs(eyr+eyl) {
			w.x = xl + (xr-xl)/(eyr-eyl)*
				(-eyl+math.Sqrt((1-prop)*eyl*eyl+prop*eyr*eyr))
		} else {
			w.x = xl + (xr-xl)*prop
		}
		w.ey = (w.x-xl)/(xr-xl)*(eyr-eyl) + eyl
		w.y = logshift(w.ey, e.ymax)
	} else {
		// the piece was integrated exactly
		w.x = xl + (xr-xl)/(yr-yl)*
			(-yl+logshift((1-prop)*eyl+prop*eyr, e.ymax))
		w.y = (w.x-xl)/(xr-xl)*(yr-yl) + yl
		w.ey = expshift(w.y, e.ymax)
	}

	if w.x < xl || w.x > xr {
		return w, fmt.Errorf("%w: x=%v outside [%v, %v]", ErrNumericalGuard, w.x, xl, xr)
	}
	return w, nil
}
