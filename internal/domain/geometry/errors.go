package geometry

import "errors"

// Sentinel kinds for geometry errors.
var (
	// ErrInvalidGeometry flags zero or negative image dimensions. Analysis
	// cannot proceed without a valid frame, so callers must surface this as a
	// hard failure.
	ErrInvalidGeometry = errors.New("invalid image geometry")
)
