package optics

import "errors"

// Sentinel errors returned (wrapped) by the package. Use errors.Is to
// classify failures.
var (
	// ErrInvalidInput indicates malformed point data: non-finite
	// coordinates, inconsistent dimensionality, or an empty point where
	// one is required.
	ErrInvalidInput = errors.New("optics: invalid input")

	// ErrInvalidConfig indicates an out-of-range configuration value.
	// Detected before any traversal begins; no partial results are returned.
	ErrInvalidConfig = errors.New("optics: invalid configuration")

	// ErrComputation indicates an internal invariant violation (for example
	// a negative distance from a metric). It signals a defect rather than a
	// user error and aborts the current request.
	ErrComputation = errors.New("optics: computation error")
)
