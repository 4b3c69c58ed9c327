package metrics

import "errors"

var (
	// ErrUnknownKind signals that a sensor entry names a kind outside the declared set
	ErrUnknownKind = errors.New("unknown metric kind")

	// ErrUnknownCategory signals that a sensor entry names a category outside the closed set
	ErrUnknownCategory = errors.New("unknown metric category")

	// ErrDuplicateKind signals that a kind appears more than once in a profile
	ErrDuplicateKind = errors.New("duplicate metric kind")

	// ErrMissingKind signals that a profile does not cover the whole declared kind set
	ErrMissingKind = errors.New("missing metric kind")

	// ErrInvalidRange signals a sampling interval with min greater than max
	ErrInvalidRange = errors.New("invalid sampling range")

	// ErrInvalidDecimals signals an unsupported rounding precision
	ErrInvalidDecimals = errors.New("invalid decimals value")

	// ErrInvalidExportName signals an empty or malformed export name
	ErrInvalidExportName = errors.New("invalid export name")
)
