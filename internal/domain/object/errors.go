package object

import "errors"

// Sentinel error kinds for this package.
var (
	ErrInvalidObject = errors.New("invalid object")
	ErrUnknownMod    = errors.New("unknown mod")
)
