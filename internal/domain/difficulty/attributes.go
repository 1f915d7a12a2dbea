package difficulty

import (
	"fmt"

	"github.com/okian/strain/internal/domain/object"
)

// Skill names as used in attributes, rankings and configuration.
const (
	SkillAim              = "aim"
	SkillJump             = "jump"
	SkillFlow             = "flow"
	SkillRawAim           = "raw_aim"
	SkillSpeed            = "speed"
	SkillStamina          = "stamina"
	SkillRhythmComplexity = "rhythm"
)

// SkillNames lists every rated skill in report order.
var SkillNames = []string{
	SkillAim, SkillJump, SkillFlow, SkillRawAim,
	SkillSpeed, SkillStamina, SkillRhythmComplexity,
}

// Attributes is the result of rating one sequence.
type Attributes struct {
	Aim              float64 `yaml:"aim" json:"aim"`
	Jump             float64 `yaml:"jump" json:"jump"`
	Flow             float64 `yaml:"flow" json:"flow"`
	RawAim           float64 `yaml:"raw_aim" json:"raw_aim"`
	Speed            float64 `yaml:"speed" json:"speed"`
	Stamina          float64 `yaml:"stamina" json:"stamina"`
	RhythmComplexity float64 `yaml:"rhythm" json:"rhythm"`

	ObjectCount int         `yaml:"object_count" json:"object_count"`
	Circles     int         `yaml:"circles" json:"circles"`
	Sliders     int         `yaml:"sliders" json:"sliders"`
	Spinners    int         `yaml:"spinners" json:"spinners"`
	Mods        object.Mods `yaml:"mods" json:"mods"`

	// Peaks holds the section peaks of every strain skill, keyed by name.
	Peaks map[string][]float64 `yaml:"peaks,omitempty" json:"peaks,omitempty"`
}

// Rating returns the value of the named skill.
func (a Attributes) Rating(name string) (float64, error) {
	switch name {
	case SkillAim:
		return a.Aim, nil
	case SkillJump:
		return a.Jump, nil
	case SkillFlow:
		return a.Flow, nil
	case SkillRawAim:
		return a.RawAim, nil
	case SkillSpeed:
		return a.Speed, nil
	case SkillStamina:
		return a.Stamina, nil
	case SkillRhythmComplexity:
		return a.RhythmComplexity, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSkill, name)
	}
}

// IsSkill reports whether name is a known skill.
func IsSkill(name string) bool {
	_, err := Attributes{}.Rating(name)
	return err == nil
}

func (a *Attributes) set(name string, value float64) {
	switch name {
	case SkillAim:
		a.Aim = value
	case SkillJump:
		a.Jump = value
	case SkillFlow:
		a.Flow = value
	case SkillRawAim:
		a.RawAim = value
	case SkillSpeed:
		a.Speed = value
	case SkillStamina:
		a.Stamina = value
	case SkillRhythmComplexity:
		a.RhythmComplexity = value
	}
}
