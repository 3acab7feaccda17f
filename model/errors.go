package model

import "github.com/pkg/errors"

// Error kinds surfaced by the grid model and its collaborators. Wrapped
// errors keep these as their cause, so callers match with errors.Is.
var (
	ErrInvalidDimension  = errors.New("invalid grid dimension")
	ErrInvalidDensity    = errors.New("invalid density")
	ErrDimensionMismatch = errors.New("grid dimension mismatch")
	ErrOutOfBounds       = errors.New("cell index out of bounds")

	ErrFetchFailed      = errors.New("pattern fetch failed")
	ErrPersistFailed    = errors.New("pattern persist failed")
	ErrEmptyPatternName = errors.New("pattern name is empty")
)
