package arms

// none marks an absent neighbor link.
const none = -1

// point is a node of the envelope chain. All points live in an arena
// owned by the envelope; pl and pr are arena indices, so the links
// stay valid when the arena grows.
type point struct {
	// x and y are the coordinates on the log scale.
	x, y float64
	// ey is expshift(y, ymax).
	ey float64
	// cum is the integral of the exponentiated envelope up to x.
	cum float64
	// f is true when y is an evaluated log-density value rather
	// than a chord intersection.
	f bool
	// pl and pr point to the neighbors in the chain.
	pl, pr int
}
