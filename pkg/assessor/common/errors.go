package common

import "errors"

// Error kinds surfaced by the assessment pipeline. Callers classify
// failures with errors.Is; individual sites wrap these with context via
// fmt.Errorf("...: %w", ...).
var (
	// ErrInvalidInput means a caller-supplied parameter violates a
	// precondition (losses outside [0,100), non-positive savings,
	// non-positive annual radiation). Never retried internally.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIncompleteData means a required PV provider field is missing.
	// PV output is never defaulted: every downstream financial number
	// derives from it.
	ErrIncompleteData = errors.New("upstream data incomplete")

	// ErrMalformedSeries means a wind time series is missing required
	// columns or contains no usable rows.
	ErrMalformedSeries = errors.New("malformed time series")
)
