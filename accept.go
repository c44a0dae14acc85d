package arms

import "math"

// metropolis holds the state of the correction step between draws:
// the previous Markov chain iterate and its log-density.
type metropolis struct {
	on    bool
	xprev float64
	yprev float64
}

// test performs the squeeze, rejection and metropolis tests on a
// freshly sampled point. It reports whether the point was accepted;
// on false the caller samples again. Every true evaluation of the
// log-density triggers an envelope update first.
func (s *Sampler) test(p *point) (bool, error) {
	e := s.env

	u := s.rng.Float64() * p.ey
	y := logshift(u, e.ymax)

	if !s.metrop.on && e.p[p.pl].pl != none && e.p[p.pr].pr != none {
		// squeeze between the nearest evaluated neighbors
		ql := p.pl
		if !e.p[ql].f {
			ql = e.p[ql].pl
		}
		qr := p.pr
		if !e.p[qr].f {
			qr = e.p[qr].pr
		}
		l, r := &e.p[ql], &e.p[qr]
		ysqueeze := (r.y*(p.x-l.x) + l.y*(r.x-p.x)) / (r.x - l.x)
		if y <= ysqueeze {
			return true, nil
		}
	}

	ynew := e.evaluate(p.x)

	if !s.metrop.on || y >= ynew {
		// refine the envelope with the new evaluation, then
		// perform the plain rejection test
		p.y = ynew
		p.ey = expshift(p.y, e.ymax)
		p.f = true
		if err := e.update(p); err != nil {
			return false, err
		}
		return y < ynew, nil
	}

	// metropolis step
	yold := s.metrop.yprev
	ql := e.head
	for e.p[e.p[ql].pr].x < s.metrop.xprev {
		ql = e.p[ql].pr
	}
	l, r := &e.p[ql], &e.p[e.p[ql].pr]

	// envelope height at the previous iterate
	w := (s.metrop.xprev - l.x) / (r.x - l.x)
	zold := l.y + w*(r.y-l.y)
	znew := p.y
	if yold < zold {
		zold = yold
	}
	if ynew < znew {
		znew = ynew
	}
	w = ynew - znew - yold + zold
	if w > 0 {
		w = 0
	}
	if w > -yCeil {
		w = math.Exp(w)
	} else {
		w = 0
	}
	if s.rng.Float64() > w {
		// stay at the previous Markov chain iterate
		p.x = s.metrop.xprev
		p.y = s.metrop.yprev
		p.ey = expshift(p.y, e.ymax)
		p.f = true
		p.pl = ql
		p.pr = l.pr
	} else {
		s.metrop.xprev = p.x
		s.metrop.yprev = ynew
	}
	return true, nil
}
