package arms

import "fmt"

// update splices a point carrying a fresh log-density evaluation into
// the chain, together with a companion intersection point. When the
// arena has no room for the pair the refinement is silently skipped
// and the stale envelope keeps serving the accept/reject decision.
func (e *envelope) update(p *point) error {
	if !p.f || len(e.p) > cap(e.p)-2 {
		return nil
	}

	qi := len(e.p)
	e.p = append(e.p, point{x: p.x, y: p.y, f: true})
	mi := len(e.p)
	e.p = append(e.p, point{})
	q := &e.p[qi]
	m := &e.p[mi]

	lf, rf := e.p[p.pl].f, e.p[p.pr].f
	switch {
	case lf && !rf:
		// left bracket endpoint is a density point: the new
		// intersection goes between it and the new point
		m.pl = p.pl
		m.pr = qi
		q.pl = mi
		q.pr = p.pr
		e.p[m.pl].pr = mi
		e.p[q.pr].pl = qi
	case !lf && rf:
		m.pr = p.pr
		m.pl = qi
		q.pr = mi
		q.pl = p.pl
		e.p[m.pr].pl = mi
		e.p[q.pl].pr = qi
	default:
		return fmt.Errorf("%w: bracket endpoints of x=%v are not alternating", ErrGeometry, p.x)
	}

	// keep the new density point away from its neighbors
	qli := q.pl
	if e.p[qli].pl != none {
		qli = e.p[qli].pl
	}
	qri := q.pr
	if e.p[qri].pr != none {
		qri = e.p[qri].pr
	}
	xlo, xhi := e.p[qli].x, e.p[qri].x
	if q.x < (1-xEps)*xlo+xEps*xhi {
		q.x = (1-xEps)*xlo + xEps*xhi
		q.y = e.evaluate(q.x)
	} else if q.x > xEps*xlo+(1-xEps)*xhi {
		q.x = xEps*xlo + (1-xEps)*xhi
		q.y = e.evaluate(q.x)
	}

	// recompute the intersections around the new point
	if err := e.meet(q.pl); err != nil {
		return err
	}
	if err := e.meet(q.pr); err != nil {
		return err
	}
	if e.p[q.pl].pl != none {
		if err := e.meet(e.p[e.p[q.pl].pl].pl); err != nil {
			return err
		}
	}
	if e.p[q.pr].pr != none {
		if err := e.meet(e.p[e.p[q.pr].pr].pr); err != nil {
			return err
		}
	}

	e.cumulate()
	return nil
}
