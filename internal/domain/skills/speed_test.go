package skills_test

import (
	"math"
	"testing"

	"github.com/okian/strain/internal/domain/object"
	"github.com/okian/strain/internal/domain/skills"
	. "github.com/smartystreets/goconvey/convey"
)

func tap(lastTwo, flow float64) *object.Object {
	return &object.Object{
		StartTime: 1000, DeltaTime: lastTwo / 2, StrainTime: lastTwo / 2,
		LastTwoStrainTime: lastTwo, Flow: flow,
	}
}

func TestSpeed(t *testing.T) {
	Convey("Given the speed skill", t, func() {
		speed := skills.NewSpeed()

		Convey("When a single tap at 100 ms is evaluated", func() {
			v := speed.TapValue(tap(200, 0))

			Convey("Then it follows the tap curve", func() {
				So(v, ShouldAlmostEqual, (30/6400.0+2/100.0)*1000, 1e-9)
			})
		})

		Convey("When a stream at 100 ms is evaluated", func() {
			v := speed.TapValue(tap(200, 1))

			Convey("Then it follows the stream curve", func() {
				So(v, ShouldAlmostEqual, (12.5/6400.0+0.25/100.0+0.005)*1000, 1e-9)
			})
		})

		Convey("When flow is in between", func() {
			Convey("Then the value blends both curves linearly", func() {
				a, b := speed.TapValue(tap(200, 0)), speed.TapValue(tap(200, 1))
				So(speed.TapValue(tap(200, 0.25)), ShouldAlmostEqual, 0.75*a+0.25*b, 1e-9)
			})
		})

		Convey("When the notes approach 20 ms", func() {
			v := speed.TapValue(tap(40, 0))

			Convey("Then the value diverges instead of being clamped", func() {
				So(math.IsInf(v, 1), ShouldBeTrue)
			})
		})

		Convey("When taps get faster", func() {
			Convey("Then the value grows", func() {
				So(speed.TapValue(tap(120, 0)), ShouldBeGreaterThan, speed.TapValue(tap(200, 0)))
			})
		})

		Convey("Then its name is speed", func() {
			So(speed.Name(), ShouldEqual, "speed")
		})
	})
}

func TestStamina(t *testing.T) {
	Convey("Given the stamina skill", t, func() {
		stamina := skills.NewStamina()

		Convey("When a single tap at 100 ms is evaluated", func() {
			Convey("Then it uses the reduced curves and multiplier", func() {
				So(stamina.TapValue(tap(200, 0)), ShouldAlmostEqual, 2/80.0*1000*0.3, 1e-9)
				So(stamina.TapValue(tap(200, 1)), ShouldAlmostEqual, 1/80.0*1000*0.3, 1e-9)
			})
		})

		Convey("When a long stream is processed", func() {
			speed := skills.NewSpeed()
			objs := make([]object.Object, 200)
			for i := range objs {
				objs[i] = object.Object{
					StartTime: float64(i) * 100, DeltaTime: 100, StrainTime: 100, GapTime: 100, Flow: 1,
					Base: object.BaseObject{Kind: object.KindCircle, Radius: 32},
				}
			}
			seq := object.NewSequence(objs)
			seq.Each(speed.Process)
			seq.Each(stamina.Process)

			Convey("Then stamina keeps building where speed saturates", func() {
				ss, st := speed.ObjectStrains(), stamina.ObjectStrains()
				So(ss[199], ShouldAlmostEqual, ss[100], 1e-6)
				So(st[50], ShouldBeGreaterThan, st[10])
				So(stamina.DifficultyValue(), ShouldBeGreaterThan, 0)
				So(stamina.Name(), ShouldEqual, "stamina")
			})
		})

		Convey("When the notes approach 20 ms", func() {
			Convey("Then the value diverges", func() {
				So(math.IsInf(stamina.TapValue(tap(40, 0.5)), 1), ShouldBeTrue)
			})
		})
	})
}
