package consumption

import "errors"

var (
	// ErrNilTable is returned when no table is given.
	ErrNilTable = errors.New("consumption: nil table")
	// ErrInvalidWindow is returned when window bounds cannot be parsed.
	ErrInvalidWindow = errors.New("consumption: invalid window")
)
