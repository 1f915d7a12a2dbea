package repository

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrNotFound     = errors.New("chart not found")
	ErrInvalidLimit = errors.New("invalid ranking limit")
)
