package prob

import "errors"

var (
	// ErrInvalidSeedKind indicates a seed value that is neither an
	// integer nor a canonical Key.
	ErrInvalidSeedKind = errors.New("prob: invalid seed kind")

	// ErrInvalidShapeKind indicates a sample shape value that cannot be
	// normalized to a sequence of non-negative integers.
	ErrInvalidShapeKind = errors.New("prob: invalid sample shape")

	// ErrIncompatibleShapes indicates parameter or value shapes that
	// cannot be broadcast together.
	ErrIncompatibleShapes = errors.New("prob: incompatible shapes")

	// ErrUnsupportedDivergence indicates that no divergence is
	// registered for a pair of distribution kinds.
	ErrUnsupportedDivergence = errors.New("prob: no divergence registered")

	// ErrUnsupported indicates that a quantity has no closed form or
	// that a wrapped distribution does not provide it. It marks the
	// quantity as unavailable rather than the input as malformed, so
	// callers can branch on it with errors.Is.
	ErrUnsupported = errors.New("prob: not available")
)
