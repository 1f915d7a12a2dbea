package chartfile

import "errors"

// Sentinel error kinds for chart documents.
var (
	ErrEmptyChart  = errors.New("chart has no objects")
	ErrDecode      = errors.New("decode chart")
	ErrEncode      = errors.New("encode chart")
	ErrUnknownKind = errors.New("unknown object kind")
)
