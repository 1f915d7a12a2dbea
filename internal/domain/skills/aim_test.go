package skills_test

import (
	"math"
	"testing"

	"github.com/okian/strain/internal/domain/object"
	"github.com/okian/strain/internal/domain/skills"
	. "github.com/smartystreets/goconvey/convey"
)

// jumpPair is two circles mirrored about the playfield centre, 2 radii
// apart, 200 ms apart.
func jumpPair(flow float64) *object.Sequence {
	return object.NewSequence([]object.Object{
		{
			StartTime: 1000, DeltaTime: 200, StrainTime: 200, GapTime: 200,
			Preempt: 1200,
			Base:    object.BaseObject{Kind: object.KindCircle, Radius: skills.NormalisedRadius, Position: object.Vector2{X: 204, Y: 192}},
		},
		{
			StartTime: 1200, DeltaTime: 200, StrainTime: 200, GapTime: 200,
			JumpDistance: 2 * skills.NormalisedRadius, RawJumpDistance: 104,
			Flow: flow, BaseFlow: flow, Preempt: 1200,
			Base: object.BaseObject{Kind: object.KindCircle, Radius: skills.NormalisedRadius, Position: object.Vector2{X: 308, Y: 192}},
		},
	})
}

// zigzag is a regular back-and-forth pattern with alternating turn angles.
func zigzag(n int, flow float64, radius float64) *object.Sequence {
	objs := make([]object.Object, n)
	for i := range objs {
		x := 156.0
		if i%2 == 1 {
			x = 356
		}
		objs[i] = object.Object{
			StartTime: float64(1000 + i*150), DeltaTime: 150, StrainTime: 150, GapTime: 150,
			Flow: flow, BaseFlow: flow, Preempt: 800,
			Base: object.BaseObject{Kind: object.KindCircle, Radius: radius, Position: object.Vector2{X: x, Y: 192 + float64(i%3)*20}},
		}
		if i > 0 {
			objs[i].JumpDistance = 200
			objs[i].RawJumpDistance = 200
		}
		if i > 1 {
			a := 0.9 * math.Pi
			if i%2 == 0 {
				a = -a
			}
			objs[i].Angle = object.AngleOf(a)
		}
	}
	return object.NewSequence(objs)
}

func TestJumpAimValue(t *testing.T) {
	Convey("Given a pure jump with no earlier history", t, func() {
		seq := jumpPair(0)

		Convey("When the jump term is evaluated", func() {
			v := skills.JumpAimValue(seq.At(1))

			Convey("Then every weight is neutral and the base is distance over time", func() {
				So(v, ShouldEqual, 0.01)
			})
		})

		Convey("When flow is 1", func() {
			Convey("Then the jump term is exactly 0", func() {
				So(skills.JumpAimValue(jumpPair(1).At(1)), ShouldEqual, 0)
			})
		})

		Convey("When flow is in between", func() {
			cur := jumpPair(0.4).At(1)

			Convey("Then both terms are nonzero", func() {
				So(skills.JumpAimValue(cur), ShouldBeGreaterThan, 0)
				So(skills.FlowAimValue(cur), ShouldBeGreaterThan, 0)
			})
		})
	})

	Convey("Given a sharp zigzag", t, func() {
		seq := zigzag(6, 0, 32)

		Convey("When the jump term is evaluated late in the pattern", func() {
			late := skills.JumpAimValue(seq.At(5))
			flat := (200 / skills.NormalisedRadius) / 150

			Convey("Then the angle and location weights add a bonus", func() {
				So(late, ShouldBeGreaterThan, flat)
			})
		})
	})
}

func TestFlowAimValue(t *testing.T) {
	Convey("Given a pure jump", t, func() {
		Convey("Then the flow term is exactly 0", func() {
			So(skills.FlowAimValue(jumpPair(0).At(1)), ShouldEqual, 0)
		})
	})

	Convey("Given a stream object with no angle", t, func() {
		cur := jumpPair(1).At(1)

		Convey("When the flow term is evaluated", func() {
			v := skills.FlowAimValue(cur)
			d := 2.0
			want := (math.Tanh(d-2)+1)*2.5/200 + (d/5)/200

			Convey("Then it matches the base curve", func() {
				So(v, ShouldAlmostEqual, want, 1e-12)
			})
		})
	})
}

func TestAim(t *testing.T) {
	Convey("Given aim skills over the same sequence", t, func() {
		seq := zigzag(40, 0.5, 40)

		run := func(mods object.Mods, mode skills.AimMode) *skills.Aim {
			a := skills.NewAim(mods, mode)
			seq.Each(a.Process)
			return a
		}

		Convey("When split into jump and flow", func() {
			jump := run(object.ModNone, skills.AimJump)
			flow := run(object.ModNone, skills.AimFlow)
			combined := run(object.ModNone, skills.AimCombined)

			Convey("Then the per-object strains add up to the combined skill", func() {
				js, fs, cs := jump.ObjectStrains(), flow.ObjectStrains(), combined.ObjectStrains()
				So(cs, ShouldHaveLength, seq.Len())
				for i := range cs {
					So(js[i]+fs[i], ShouldAlmostEqual, cs[i], 1e-9)
				}
			})
		})

		Convey("When Hidden is active", func() {
			raw := run(object.ModHidden, skills.AimRaw)
			hidden := run(object.ModHidden, skills.AimCombined)
			plain := run(object.ModNone, skills.AimCombined)

			Convey("Then the reading multiplier raises the result", func() {
				So(hidden.DifficultyValue(), ShouldBeGreaterThan, plain.DifficultyValue())
				So(plain.DifficultyValue(), ShouldBeGreaterThanOrEqualTo, raw.DifficultyValue())
			})
		})

		Convey("When circles are smaller", func() {
			small := skills.NewAim(object.ModNone, skills.AimCombined)
			zigzag(40, 0.5, 20).Each(small.Process)
			large := run(object.ModNone, skills.AimCombined)

			Convey("Then aim is harder", func() {
				So(small.DifficultyValue(), ShouldBeGreaterThan, large.DifficultyValue())
			})
		})

		Convey("Then the mode names match attribute names", func() {
			So(skills.AimCombined.String(), ShouldEqual, "aim")
			So(skills.AimJump.String(), ShouldEqual, "jump")
			So(skills.AimFlow.String(), ShouldEqual, "flow")
			So(skills.AimRaw.String(), ShouldEqual, "raw_aim")
		})
	})
}

func TestReadingMultipliers(t *testing.T) {
	Convey("Given the modifier multipliers", t, func() {
		Convey("Then flashlight only pays past the sightline", func() {
			So(skills.FlashlightMultiplier(100), ShouldEqual, 1)
			So(skills.FlashlightMultiplier(300), ShouldAlmostEqual, 1.3, 1e-12)
		})

		Convey("Then high approach only pays below 325 ms", func() {
			So(skills.HighApproachMultiplier(450), ShouldEqual, 1)
			So(skills.HighApproachMultiplier(200), ShouldAlmostEqual, 1.067, 1e-12)
		})
	})
}
