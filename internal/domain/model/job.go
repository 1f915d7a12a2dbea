// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/strain/internal/domain/difficulty"
	"github.com/okian/strain/internal/domain/object"
)

// Job is one chart queued for rating.
type Job struct {
	ID          string           // uuid assigned on submit
	ChartID     string           // caller supplied chart identifier
	Title       string           // display name, may be empty
	Fingerprint uint64           // content hash used for idempotency
	Mods        object.Mods      // modifiers to rate under
	Sequence    *object.Sequence // processed objects
	EnqueuedAt  time.Time
}

// Result is the outcome of a Job.
type Result struct {
	JobID       string
	ChartID     string
	Title       string
	Attributes  difficulty.Attributes
	Err         error
	Duration    time.Duration
	CompletedAt time.Time
}

// Failed reports whether the calculation returned an error.
func (r Result) Failed() bool { return r.Err != nil }

// Rating returns the named skill value of a successful result.
func (r Result) Rating(skill string) (float64, error) {
	if r.Err != nil {
		return 0, r.Err
	}
	return r.Attributes.Rating(skill)
}

// Entry represents a ranking entry.
type Entry struct {
	Rank    int     `json:"rank" yaml:"rank"`
	ChartID string  `json:"chart_id" yaml:"chart_id"`
	Rating  float64 `json:"rating" yaml:"rating"`
}
