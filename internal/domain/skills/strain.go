// Package skills implements the per-object difficulty estimators.
//
// Every skill consumes a sequence strictly in index order through Process
// and is queried once through DifficultyValue afterwards. A skill instance
// lives for exactly one pass and shares no state with other instances.
package skills

import (
	"math"

	"github.com/okian/strain/internal/domain/object"
)

// Default strain configuration constants.
const (
	defaultSectionLength        = 400.0
	defaultDecayWeight          = 0.9
	defaultDifficultyMultiplier = 1.0
)

// Skill is the contract shared by every estimator.
type Skill interface {
	// Process consumes the next object of the sequence.
	Process(current *object.Object)
	// DifficultyValue returns the final scalar after the whole sequence.
	DifficultyValue() float64
}

// Option applies a configuration option to a Strain.
type Option func(*Strain)

// WithDecayWeight sets the geometric weight applied to ranked peaks.
func WithDecayWeight(w float64) Option {
	return func(s *Strain) {
		if w > 0 && w <= 1 {
			s.decayWeight = w
		}
	}
}

// WithDifficultyMultiplier scales the aggregated peaks.
func WithDifficultyMultiplier(m float64) Option {
	return func(s *Strain) {
		if m > 0 {
			s.difficultyMultiplier = m
		}
	}
}

// WithSectionLength sets the peak bucket length in milliseconds.
func WithSectionLength(ms float64) Option {
	return func(s *Strain) {
		if ms > 0 {
			s.sectionLength = ms
		}
	}
}

// Strain is the decaying-strain engine. A skill plugs in its instantaneous
// value function; Strain decays, accumulates, logs and buckets the peaks.
type Strain struct {
	decayBase            float64
	decayWeight          float64
	difficultyMultiplier float64
	sectionLength        float64

	strainValueOf func(current *object.Object) float64

	currentStrain      float64
	objectStrains      []float64
	peaks              []float64
	currentSectionPeak float64
	currentSectionEnd  float64
	prevStartTime      float64
	started            bool
}

// NewStrain builds a Strain around value with the given decay base.
func NewStrain(decayBase float64, value func(current *object.Object) float64, opts ...Option) *Strain {
	s := &Strain{
		decayBase:            decayBase,
		decayWeight:          defaultDecayWeight,
		difficultyMultiplier: defaultDifficultyMultiplier,
		sectionLength:        defaultSectionLength,
		strainValueOf:        value,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process decays the current strain by the object's delta time, adds its
// contribution and records the result.
func (s *Strain) Process(current *object.Object) {
	if !s.started {
		s.currentSectionEnd = math.Ceil(current.StartTime/s.sectionLength) * s.sectionLength
		s.started = true
	}

	for current.StartTime > s.currentSectionEnd {
		s.peaks = append(s.peaks, s.currentSectionPeak)
		s.currentSectionPeak = s.currentStrain * s.strainDecay(s.currentSectionEnd-s.prevStartTime)
		s.currentSectionEnd += s.sectionLength
	}

	s.currentStrain *= s.strainDecay(current.DeltaTime)
	s.currentStrain += s.strainValueOf(current)

	s.objectStrains = append(s.objectStrains, s.currentStrain)
	s.currentSectionPeak = math.Max(s.currentSectionPeak, s.currentStrain)
	s.prevStartTime = current.StartTime
}

func (s *Strain) strainDecay(ms float64) float64 {
	return math.Pow(s.decayBase, ms/1000)
}

// CurrentStrain returns the strain after the last processed object.
func (s *Strain) CurrentStrain() float64 { return s.currentStrain }

// DecayedStrain returns the current strain as it would be after ms more
// milliseconds without input. The state is not modified.
func (s *Strain) DecayedStrain(ms float64) float64 {
	return s.currentStrain * s.strainDecay(ms)
}

// ObjectStrains returns the per-object strain log.
func (s *Strain) ObjectStrains() []float64 {
	out := make([]float64, len(s.objectStrains))
	copy(out, s.objectStrains)
	return out
}

// Peaks returns the saved section peaks followed by the open section.
func (s *Strain) Peaks() []float64 {
	if !s.started {
		return nil
	}
	out := make([]float64, 0, len(s.peaks)+1)
	out = append(out, s.peaks...)
	return append(out, s.currentSectionPeak)
}

// DifficultyValue aggregates the peaks.
func (s *Strain) DifficultyValue() float64 {
	return Aggregate(s.Peaks(), s.decayWeight) * s.difficultyMultiplier
}
