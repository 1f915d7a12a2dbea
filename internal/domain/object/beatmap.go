package object

import "math"

// Beatmap difficulty setting conversions used by chart providers.
const (
	hardRockScale = 1.4
	hardRockCS    = 1.3
	maxSetting    = 10.0
)

// Rate returns the playback speed implied by the modifiers.
func (m Mods) Rate() float64 {
	switch {
	case m.Has(ModDoubleTime):
		return 1.5
	case m.Has(ModHalfTime):
		return 0.75
	default:
		return 1
	}
}

// AdjustCircleSize applies HardRock and Easy to a circle size setting.
func (m Mods) AdjustCircleSize(cs float64) float64 {
	if m.Has(ModHardRock) {
		cs = math.Min(cs*hardRockCS, maxSetting)
	}
	if m.Has(ModEasy) {
		cs /= 2
	}
	return cs
}

// AdjustApproachRate applies HardRock and Easy to an approach rate setting.
func (m Mods) AdjustApproachRate(ar float64) float64 {
	if m.Has(ModHardRock) {
		ar = math.Min(ar*hardRockScale, maxSetting)
	}
	if m.Has(ModEasy) {
		ar /= 2
	}
	return ar
}

// CircleRadius converts a circle size setting to a radius in osu!pixels.
func CircleRadius(cs float64) float64 {
	return 54.4 - 4.48*cs
}

// ApproachRateToPreempt converts an approach rate setting to milliseconds.
func ApproachRateToPreempt(ar float64) float64 {
	if ar < 5 {
		return 1800 - 120*ar
	}
	return 1950 - 150*ar
}

// PreemptToApproachRate is the inverse of ApproachRateToPreempt.
func PreemptToApproachRate(preempt float64) float64 {
	if preempt > 1200 {
		return (1800 - preempt) / 120
	}
	return (1950 - preempt) / 150
}

// Preempt returns the effective visibility window in real milliseconds for
// an approach rate under the modifiers.
func (m Mods) Preempt(ar float64) float64 {
	return ApproachRateToPreempt(m.AdjustApproachRate(ar)) / m.Rate()
}
