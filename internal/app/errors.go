package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrServiceStopped = errors.New("service not running")
	ErrDuplicateChart = errors.New("chart already submitted")
)
