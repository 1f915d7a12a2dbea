package skills

import (
	"math"

	"github.com/okian/strain/internal/domain/object"
)

// Rhythm complexity constants.
const (
	rhythmBaseBonus = 0.05

	doubleRatio       = 1.5
	doubleBonus       = 5.0
	doubleRepeatScale = 0.5
	doubleRepeatDecay = 0.9
	doubleHistoryCap  = 10
	doubleResetMarker = -1

	toThirdRatio     = 2.0 / 3.0
	toThirdTolerance = 0.05
	toThirdBonus     = 0.5

	toSixthRatio     = 1.0 / 3.0
	toSixthTolerance = 0.04
	toSixthBonus     = 0.75

	tripleRatio     = 0.5
	tripleTolerance = 0.05
	tripleBonus     = 0.25
	streamRatioMax  = 0.25

	evenTolerance = 0.05

	highFlow = 0.8

	sliderRatioTolerance = 0.02
	sliderEndBonus       = 0.5
	sliderStreamBPMStart = 90.0
	sliderStreamBPMFull  = 150.0
	sliderFlowDistStart  = 1.0
	sliderFlowDistEnd    = 2.5

	lengthRequirement = 50.0
)

// RhythmComplexity rewards rhythm changes between point targets. It keeps
// a running bonus total instead of a decaying strain.
type RhythmComplexity struct {
	circleCount     int
	difficultyTotal float64

	isPreviousOffbeat bool
	previousDoubles   []int
}

// NewRhythmComplexity returns an empty accumulator.
func NewRhythmComplexity() *RhythmComplexity {
	return &RhythmComplexity{previousDoubles: make([]int, 0, doubleHistoryCap)}
}

// CircleCount returns how many point targets were processed.
func (r *RhythmComplexity) CircleCount() int { return r.circleCount }

// Total returns the running bonus total.
func (r *RhythmComplexity) Total() float64 { return r.difficultyTotal }

// IsOffbeat reports the current offbeat flag.
func (r *RhythmComplexity) IsOffbeat() bool { return r.isPreviousOffbeat }

// Process folds one object into the running total.
func (r *RhythmComplexity) Process(current *object.Object) {
	if !current.IsCircle() {
		return
	}
	r.circleCount++
	r.difficultyTotal += r.bonusOf(current)
}

func (r *RhythmComplexity) bonusOf(current *object.Object) float64 {
	bonus := rhythmBaseBonus * current.Flow

	prev := current.Previous(0)
	if prev == nil {
		return bonus
	}

	switch {
	case prev.IsCircle():
		bonus += r.circleTransition(current, prev)
	case prev.IsSlider():
		bonus += r.sliderTransition(current, prev)
	default:
		r.isPreviousOffbeat = false
	}
	return bonus
}

func (r *RhythmComplexity) circleTransition(current, prev *object.Object) float64 {
	prevGap := prev.GapTime
	if prevGap <= 0 {
		prevGap = prev.StrainTime
	}
	if prevGap <= 0 {
		r.isPreviousOffbeat = false
		return 0
	}
	ratio := current.GapTime / prevGap
	highlyFlowing := current.Flow > highFlow

	var bonus float64
	switch {
	case ratio >= doubleRatio && r.isPreviousOffbeat:
		bonus = r.doubleBonus(current.Index)
	case IsRatioEqual(toThirdRatio, current.GapTime, prevGap, toThirdTolerance):
		bonus = toThirdBonus * current.Flow
		if highlyFlowing {
			r.pushDouble(doubleResetMarker)
		}
	case IsRatioEqual(toSixthRatio, current.GapTime, prevGap, toSixthTolerance):
		bonus = toSixthBonus
	case IsRatioEqual(tripleRatio, current.GapTime, prevGap, tripleTolerance) || ratio <= streamRatioMax:
		bonus = tripleBonus
	}

	switch {
	case ratio >= doubleRatio:
		r.isPreviousOffbeat = false
	case IsRatioEqual(toThirdRatio, current.GapTime, prevGap, toThirdTolerance),
		IsRatioEqual(toSixthRatio, current.GapTime, prevGap, toSixthTolerance):
		r.isPreviousOffbeat = highlyFlowing
	case IsRatioEqual(tripleRatio, current.GapTime, prevGap, tripleTolerance),
		ratio <= streamRatioMax,
		IsRatioEqual(1, current.GapTime, prevGap, evenTolerance):
		if highlyFlowing {
			r.isPreviousOffbeat = !r.isPreviousOffbeat
		} else {
			r.isPreviousOffbeat = false
		}
	default:
		r.isPreviousOffbeat = false
	}
	return bonus
}

// doubleBonus is full strength for an isolated double. Each earlier double
// since the last reset marker cuts it, nearer ones harder.
func (r *RhythmComplexity) doubleBonus(index int) float64 {
	bonus := doubleBonus
	for i := len(r.previousDoubles) - 1; i >= 0; i-- {
		prevIndex := r.previousDoubles[i]
		if prevIndex == doubleResetMarker {
			break
		}
		bonus *= 1 - doubleRepeatScale*math.Pow(doubleRepeatDecay, float64(index-prevIndex))
	}
	r.pushDouble(index)
	return bonus
}

func (r *RhythmComplexity) pushDouble(index int) {
	if len(r.previousDoubles) == doubleHistoryCap {
		copy(r.previousDoubles, r.previousDoubles[1:])
		r.previousDoubles = r.previousDoubles[:doubleHistoryCap-1]
	}
	r.previousDoubles = append(r.previousDoubles, index)
}

// sliderTransition only pays for a circle landing on an exact 1/2 or 1/4
// of the previous slider's duration.
func (r *RhythmComplexity) sliderTransition(current, prev *object.Object) float64 {
	duration := prev.Base.Duration
	if duration <= 0 || current.GapTime <= 0 {
		r.isPreviousOffbeat = false
		return 0
	}
	if !IsRatioEqual(0.5, current.GapTime, duration, sliderRatioTolerance) &&
		!IsRatioEqual(0.25, current.GapTime, duration, sliderRatioTolerance) {
		r.isPreviousOffbeat = false
		return 0
	}
	endFlow := SliderEndFlow(current.GapTime, current.JumpDistance)
	r.isPreviousOffbeat = endFlow > highFlow
	return sliderEndBonus * endFlow
}

// SliderEndFlow estimates how stream-like the hop off a slider end is from
// the implied 1/4 stream BPM and the jump distance.
func SliderEndFlow(gapTime, jumpDistance float64) float64 {
	bpm := 15000 / gapTime
	tempo := Transition(bpm, sliderStreamBPMStart, sliderStreamBPMFull)
	spacing := 1 - Transition(jumpDistance/NormalisedRadius, sliderFlowDistStart, sliderFlowDistEnd)
	return tempo * spacing
}

// DifficultyValue returns 1 + average bonus scaled by a length factor, or
// exactly 0 when no point target was seen.
func (r *RhythmComplexity) DifficultyValue() float64 {
	if r.circleCount == 0 {
		return 0
	}
	n := float64(r.circleCount)
	return 1 + (r.difficultyTotal/n)*math.Tanh(n/lengthRequirement)
}
