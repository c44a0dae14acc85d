package arms

import "errors"

// Envelope construction errors.
var (
	// ErrTooFewInitialPoints is returned when less than three
	// initial abscissas are provided.
	ErrTooFewInitialPoints = errors.New("arms: less than three initial points")
	// ErrCapacityTooSmall is returned when the maximum number of
	// envelope points cannot hold the initial chain.
	ErrCapacityTooSmall = errors.New("arms: maximum number of envelope points is too small")
	// ErrBoundsViolation is returned when the initial points do not
	// lie strictly inside the bounds.
	ErrBoundsViolation = errors.New("arms: initial points do not satisfy the bounds")
	// ErrUnorderedInitialPoints is returned when the initial points
	// are not strictly increasing.
	ErrUnorderedInitialPoints = errors.New("arms: initial points are not strictly increasing")
	// ErrInvalidConvexity is returned for a negative convexity
	// parameter.
	ErrInvalidConvexity = errors.New("arms: negative convexity parameter")
	// ErrAllocation is returned when the envelope storage cannot be
	// reserved.
	ErrAllocation = errors.New("arms: cannot allocate envelope storage")
)

// Sampling errors.
var (
	// ErrEnvelopeViolation is returned when the target is not
	// log-concave and the metropolis correction is disabled.
	ErrEnvelopeViolation = errors.New("arms: envelope violation without metropolis")
	// ErrGeometry indicates an inconsistent envelope chain; either
	// an extreme density or a bug.
	ErrGeometry = errors.New("arms: envelope geometry is inconsistent")
	// ErrNumericalGuard is returned when inversion produces a point
	// outside its envelope piece.
	ErrNumericalGuard = errors.New("arms: sampled point outside its envelope piece")
	// ErrPreviousOutOfBounds is returned when the previous Markov
	// chain iterate lies outside the bounds.
	ErrPreviousOutOfBounds = errors.New("arms: previous iterate outside the bounds")
)
