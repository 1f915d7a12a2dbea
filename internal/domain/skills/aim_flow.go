package skills

import (
	"math"

	"github.com/okian/strain/internal/domain/object"
)

// Flow term weighting constants.
const (
	flowDecelBonus    = 0.5
	flowDecelBonusMax = 0.3
	flowAccelBonus    = 0.3
	flowRatioCap      = 2.0

	flowAngleBonus  = 0.3
	zigzagBonusKeep = 0.25
)

// FlowAimValue is the continuous-stream part of aim, already scaled by
// Flow. It is exactly 0 for a pure jump object.
func FlowAimValue(current *object.Object) float64 {
	if current.Flow <= 0 {
		return 0
	}

	distance := current.JumpDistance / NormalisedRadius
	base := (math.Tanh(distance-2)+1)*2.5/current.StrainTime + (distance/5)/current.StrainTime

	angle := 1.0
	if current.Angle != nil {
		angle = 1 + (math.Cos(*current.Angle)+1)/10
	}

	location := 1.0
	if prev := current.Previous(0); prev != nil {
		location = LocationWeight(current.Base.Position, prev.Base.Position)
	}

	return current.Flow * base * angle * flowPatternWeight(current) * (1 + (location-1)/2)
}

// flowPatternWeight rewards spacing and direction changes inside a stream.
// The bonus is scaled by the previous object's flow, so nothing is paid
// across a jump-to-stream boundary.
func flowPatternWeight(current *object.Object) float64 {
	prev := current.Previous(0)
	if prev == nil || prev.Previous(0) == nil {
		return 1
	}

	ratio := 1.0
	switch {
	case prev.JumpDistance > 0:
		ratio = current.JumpDistance / prev.JumpDistance
	case current.JumpDistance > 0:
		ratio = flowRatioCap
	}

	distanceBonus := 0.0
	if ratio < 1 {
		distanceBonus = math.Min(flowDecelBonus*(1-ratio)*(1-ratio), flowDecelBonusMax)
	} else {
		isStreamJump := Transition(ratio, 1, 1.5)
		accel := flowAccelBonus * Transition(ratio, 1, flowRatioCap)
		streamJump := accel * calculateStreamJumpWeight(current.JumpDistance/NormalisedRadius)
		distanceBonus = lerp(accel, streamJump, isStreamJump)
	}

	angleBonus := flowAngleChangeBonus(current, prev)

	return 1 + prev.Flow*((1+distanceBonus)*(1+angleBonus)-1)
}

// calculateStreamJumpWeight shrinks the spacing bonus for a stream that
// jumps out wider than stream spacing.
func calculateStreamJumpWeight(distance float64) float64 {
	return 1 / (1 + math.Max(0, distance-1)/2)
}

// flowAngleChangeBonus measures the turn relative to a straight
// continuation: straightening out is no change, tightening on the same
// side counts the extra turn, switching sides counts the whole new turn.
// Repeating the same absolute angle (zigzag) keeps only a fraction.
func flowAngleChangeBonus(current, prev *object.Object) float64 {
	if current.Angle == nil || prev.Angle == nil {
		return 0
	}
	a, b := *current.Angle, *prev.Angle

	var change float64
	if a*b >= 0 {
		change = math.Max(0, math.Abs(a)-math.Abs(b))
	} else {
		change = math.Abs(a)
	}
	bonus := flowAngleBonus * Transition(change, 0, math.Pi/2)

	repeated := Transition(math.Abs(math.Abs(a)-math.Abs(b)), 0, math.Pi/4)
	limit := flowAngleBonus * (zigzagBonusKeep + (1-zigzagBonusKeep)*repeated)
	return math.Min(bonus, limit)
}
