package skills

import (
	"github.com/okian/strain/internal/domain/object"
)

// Aim constants.
const (
	aimSkillMultiplier = 1059.0
	aimDecayBase       = 0.15
)

// AimMode selects which aim terms a skill instance reports.
type AimMode int

const (
	// AimCombined sums jump and flow and applies the reading multiplier.
	AimCombined AimMode = iota
	// AimJump reports only the jump term.
	AimJump
	// AimFlow reports only the flow term.
	AimFlow
	// AimRaw sums jump and flow without the reading multiplier.
	AimRaw
)

// String returns the attribute name of the mode.
func (m AimMode) String() string {
	switch m {
	case AimCombined:
		return "aim"
	case AimJump:
		return "jump"
	case AimFlow:
		return "flow"
	case AimRaw:
		return "raw_aim"
	default:
		return "unknown"
	}
}

// Aim is the aiming precision skill.
type Aim struct {
	*Strain

	mode   AimMode
	reader reader
}

// NewAim builds an aim skill for the active modifiers.
func NewAim(mods object.Mods, mode AimMode, opts ...Option) *Aim {
	a := &Aim{
		mode:   mode,
		reader: reader{mods: mods},
	}
	a.Strain = NewStrain(aimDecayBase, a.strainValueOf, opts...)
	return a
}

// Mode returns the configured mode.
func (a *Aim) Mode() AimMode { return a.mode }

func (a *Aim) strainValueOf(current *object.Object) float64 {
	var value float64
	switch a.mode {
	case AimJump:
		value = JumpAimValue(current)
	case AimFlow:
		value = FlowAimValue(current)
	default:
		value = JumpAimValue(current) + FlowAimValue(current)
	}
	value *= SmallCircleBonus(current.Base.Radius)

	if a.mode != AimRaw {
		value *= a.reader.multiplier(current)
	}
	return value * aimSkillMultiplier
}
