package skills

import (
	"github.com/okian/strain/internal/domain/object"
)

// Tapping constants.
const (
	speedDecayBase       = 0.1
	speedSkillMultiplier = 1.0

	staminaDecayBase       = 0.45
	staminaSkillMultiplier = 0.3 * speedSkillMultiplier

	tapThreshold = 20.0
)

// tapCurve pairs the single-tap and stream curves evaluated at the mean of
// the last two strain times.
type tapCurve struct {
	name       string
	tap        func(ms float64) float64
	stream     func(ms float64) float64
	multiplier float64
}

var (
	speedCurve = tapCurve{
		name: "speed",
		tap: func(ms float64) float64 {
			d := ms - tapThreshold
			return 30/(d*d) + 2/ms
		},
		stream: func(ms float64) float64 {
			d := ms - tapThreshold
			return 12.5/(d*d) + 0.25/ms + 0.005
		},
		multiplier: speedSkillMultiplier,
	}

	staminaCurve = tapCurve{
		name:       "stamina",
		tap:        func(ms float64) float64 { return 2 / (ms - tapThreshold) },
		stream:     func(ms float64) float64 { return 1 / (ms - tapThreshold) },
		multiplier: staminaSkillMultiplier,
	}
)

// Tapping is the tap-rate strain skill; Speed and Stamina differ only in
// curves, multiplier and decay.
type Tapping struct {
	*Strain

	curve tapCurve
}

// NewSpeed builds the peak tapping speed skill.
func NewSpeed(opts ...Option) *Tapping {
	return newTapping(speedCurve, speedDecayBase, opts...)
}

// NewStamina builds the endurance skill.
func NewStamina(opts ...Option) *Tapping {
	return newTapping(staminaCurve, staminaDecayBase, opts...)
}

func newTapping(curve tapCurve, decayBase float64, opts ...Option) *Tapping {
	t := &Tapping{curve: curve}
	t.Strain = NewStrain(decayBase, t.strainValueOf, opts...)
	return t
}

// Name returns "speed" or "stamina".
func (t *Tapping) Name() string { return t.curve.name }

// TapValue is the un-accumulated contribution of current. Strain times at
// or below 20 ms diverge and are left to do so.
func (t *Tapping) TapValue(current *object.Object) float64 {
	ms := current.LastTwoStrainTime / 2
	blended := (1-current.Flow)*t.curve.tap(ms) + current.Flow*t.curve.stream(ms)
	return blended * 1000 * t.curve.multiplier
}

func (t *Tapping) strainValueOf(current *object.Object) float64 {
	return t.TapValue(current)
}
