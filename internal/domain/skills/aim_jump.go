package skills

import (
	"math"

	"github.com/okian/strain/internal/domain/object"
)

// Jump term weighting constants.
const (
	jumpAngleBonus      = 0.25
	jumpAngleRampStart  = math.Pi / 3
	jumpPatternLookback = 2

	velocityDecelPenalty = 0.15
	velocityAccelBonus   = 0.15
	velocityRatioCap     = 2.0

	directionChangeBonus = 0.1
)

// JumpAimValue is the discrete-targeting part of aim, already scaled by
// (1 - Flow). It is exactly 0 for a pure stream object.
func JumpAimValue(current *object.Object) float64 {
	if current.Flow >= 1 {
		return 0
	}

	base := (current.JumpDistance / NormalisedRadius) / current.StrainTime

	location := 1.0
	if prev := current.Previous(0); prev != nil {
		location = LocationWeight(current.Base.Position, prev.Base.Position)
	}

	return (1 - current.Flow) * base * jumpAngleWeight(current) * jumpPatternWeight(current) * location
}

// jumpAngleWeight bumps sharp direction reversals. Near-straight jumps and
// jumps following a near-stacked note get nothing.
func jumpAngleWeight(current *object.Object) float64 {
	prev := current.Previous(0)
	if current.Angle == nil || prev == nil {
		return 1
	}
	req := DistanceRequirement(current.StrainTime, prev.StrainTime, prev.JumpDistance)
	return 1 + jumpAngleBonus*req*Transition(math.Abs(*current.Angle), jumpAngleRampStart, math.Pi)
}

// jumpPatternWeight compares the current jump against up to two earlier
// jumps. Nearer steps weigh more (exponent 2-i); the whole term fades to 1
// unless the earliest inspected jump clears the distance requirement.
func jumpPatternWeight(current *object.Object) float64 {
	weight := 1.0
	next := current
	var earliest, earliestNext *object.Object

	for i := 0; i < jumpPatternLookback; i++ {
		prev := current.Previous(i)
		if prev == nil || prev.Previous(0) == nil {
			break
		}
		factor := velocityWeight(next, prev) * directionWeight(next, prev)
		weight *= math.Pow(factor, float64(jumpPatternLookback-i))

		earliest, earliestNext = prev, next
		next = prev
	}

	if earliest == nil {
		return 1
	}
	req := DistanceRequirement(earliestNext.StrainTime, earliest.StrainTime, earliest.JumpDistance)
	return 1 + (weight-1)*req
}

// velocityWeight penalises slowing down quadratically and rewards speeding
// up along a cosine ramp that saturates at twice the previous velocity.
func velocityWeight(next, prev *object.Object) float64 {
	v := next.JumpDistance / next.StrainTime
	pv := prev.JumpDistance / prev.StrainTime

	ratio := 1.0
	switch {
	case pv > 0:
		ratio = v / pv
	case v > 0:
		ratio = velocityRatioCap
	}

	if ratio < 1 {
		return 1 - velocityDecelPenalty*(1-ratio)*(1-ratio)
	}
	return 1 + velocityAccelBonus*Transition(ratio, 1, velocityRatioCap)
}

// directionWeight rewards a change of turn direction between two jumps, but
// only when the earlier jump had comparable timing. A faster earlier gap
// (stream, triple) or a much slower one disables it.
func directionWeight(next, prev *object.Object) float64 {
	if next.Angle == nil || prev.Angle == nil {
		return 1
	}
	timing := prev.StrainTime / next.StrainTime
	gate := Transition(timing, 0.5, 0.9) * Transition(timing, 2, 1.25)
	change := angleDifference(*next.Angle, *prev.Angle)
	return 1 + directionChangeBonus*gate*Transition(change, 0, math.Pi/2)
}
