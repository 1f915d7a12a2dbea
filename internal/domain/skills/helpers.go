package skills

import (
	"math"

	"github.com/okian/strain/internal/domain/object"
)

// NormalisedRadius is the circle radius jump distances are normalised to.
const NormalisedRadius = 52.0

// Playfield geometry in osu!pixels.
const (
	playfieldWidth  = 512.0
	playfieldHeight = 384.0
)

var playfieldCentre = object.Vector2{X: playfieldWidth / 2, Y: playfieldHeight / 2}

// Location weighting: the ellipse is tilted clockwise and the bonus grows
// with the squared normalised radius, reaching ~6% on the edges and capped
// at 12% towards the corners.
const (
	locationEllipseTilt   = -math.Pi / 12
	locationBonusPerUnit  = 0.06
	locationBonusMax      = 0.12
	smallCircleBonusScale = 120.0
)

// Transition is a cosine ease from 0 at start to 1 at end, clamped outside.
// start may exceed end for a falling edge. A degenerate interval is a step.
func Transition(x, start, end float64) float64 {
	if start == end {
		if x >= end {
			return 1
		}
		return 0
	}
	t := (x - start) / (end - start)
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	}
	return (1 - math.Cos(math.Pi*t)) / 2
}

// IsRatioEqual reports whether a/b lies within tolerance of ratio.
// A zero divisor never matches.
func IsRatioEqual(ratio, a, b, tolerance float64) bool {
	if b == 0 {
		return false
	}
	return math.Abs(a/b-ratio) <= tolerance
}

// SmallCircleBonus rewards smaller hit targets: 1 + 120/r².
func SmallCircleBonus(radius float64) float64 {
	return 1 + smallCircleBonusScale/(radius*radius)
}

// LocationWeight scores the midpoint of a jump by how far it sits from the
// playfield centre in a tilted elliptical frame.
func LocationWeight(pos, prevPos object.Vector2) float64 {
	mid := pos.Add(prevPos).Scale(0.5).Sub(playfieldCentre).Rotate(locationEllipseTilt)
	x := mid.X / (playfieldWidth / 2)
	y := mid.Y / (playfieldHeight / 2)
	return 1 + math.Min(locationBonusPerUnit*(x*x+y*y), locationBonusMax)
}

// DistanceRequirement gates pattern and angle bonuses. It is 0 when the
// previous gap was meaningfully slower than the current one, otherwise a
// smooth ramp of prevDistance up to the overlap distance
// prevDeltaTime/deltaTime * 2 * NormalisedRadius, so near-stacked notes
// earn nothing.
func DistanceRequirement(deltaTime, prevDeltaTime, prevDistance float64) float64 {
	if !(deltaTime > 0) || prevDeltaTime > deltaTime*slowerGapTolerance {
		return 0
	}
	overlap := prevDeltaTime / deltaTime * 2 * NormalisedRadius
	return Transition(prevDistance, 0, overlap)
}

const slowerGapTolerance = 1.25

// angleDifference returns the absolute difference of two signed angles
// folded into [0, π].
func angleDifference(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 2*math.Pi)
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
