package difficulty

import "errors"

// Sentinel error kinds for this package.
var (
	ErrUnknownSkill = errors.New("unknown skill")
	ErrNilSequence  = errors.New("nil sequence")
)
