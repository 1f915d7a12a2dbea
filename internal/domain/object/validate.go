package object

import (
	"fmt"
	"math"
)

// Validate checks the provider contract the skills rely on. The skills
// themselves never re-check it.
func Validate(objs []Object) error {
	for i := range objs {
		o := &objs[i]
		if i > 0 && o.StartTime < objs[i-1].StartTime {
			return fmt.Errorf("%w: object %d starts at %.3f before object %d at %.3f",
				ErrInvalidObject, i, o.StartTime, i-1, objs[i-1].StartTime)
		}
		if !inUnit(o.Flow) {
			return fmt.Errorf("%w: object %d flow %v outside [0,1]", ErrInvalidObject, i, o.Flow)
		}
		if !inUnit(o.BaseFlow) {
			return fmt.Errorf("%w: object %d base flow %v outside [0,1]", ErrInvalidObject, i, o.BaseFlow)
		}
		if !(o.StrainTime > 0) {
			return fmt.Errorf("%w: object %d strain time must be positive", ErrInvalidObject, i)
		}
		if !(o.Base.Radius > 0) {
			return fmt.Errorf("%w: object %d radius must be positive", ErrInvalidObject, i)
		}
		if !(o.Preempt > 0) {
			return fmt.Errorf("%w: object %d preempt must be positive", ErrInvalidObject, i)
		}
		if o.JumpDistance < 0 || o.RawJumpDistance < 0 || math.IsNaN(o.JumpDistance) {
			return fmt.Errorf("%w: object %d has a negative jump distance", ErrInvalidObject, i)
		}
		if i >= 2 && o.Angle == nil {
			return fmt.Errorf("%w: object %d has no angle", ErrInvalidObject, i)
		}
	}
	return nil
}

func inUnit(x float64) bool {
	return x >= 0 && x <= 1
}
