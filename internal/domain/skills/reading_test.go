package skills

import (
	"testing"

	"github.com/okian/strain/internal/domain/object"
	. "github.com/smartystreets/goconvey/convey"
)

func TestReadingWindow(t *testing.T) {
	Convey("Given an empty reading window", t, func() {
		var w readingWindow

		So(w.Len(), ShouldEqual, 0)
		So(w.Front(), ShouldBeNil)

		Convey("When more objects are pushed than it can hold", func() {
			objs := make([]object.Object, readingWindowCapacity+2)
			for i := range objs {
				objs[i].Index = i
				w.PushBack(&objs[i])
			}

			Convey("Then the oldest are dropped", func() {
				So(w.Len(), ShouldEqual, readingWindowCapacity)
				So(w.Front().Index, ShouldEqual, 2)
			})

			Convey("Then iteration runs oldest to newest", func() {
				var seen []int
				w.Each(func(o *object.Object) { seen = append(seen, o.Index) })
				So(seen, ShouldHaveLength, readingWindowCapacity)
				So(seen[0], ShouldEqual, 2)
				So(seen[len(seen)-1], ShouldEqual, readingWindowCapacity+1)
			})
		})

		Convey("When popping an empty window", func() {
			w.PopFront()

			Convey("Then nothing happens", func() {
				So(w.Len(), ShouldEqual, 0)
			})
		})
	})
}

func TestReaderMultiplier(t *testing.T) {
	Convey("Given a reader without modifiers", t, func() {
		r := reader{}

		Convey("When the window is empty and approach is slow", func() {
			m := r.multiplier(&object.Object{StartTime: 0, Preempt: 1200})

			Convey("Then the multiplier is neutral", func() {
				So(m, ShouldEqual, 1)
				So(r.window.Len(), ShouldEqual, 1)
			})
		})

		Convey("When objects fall out of the visibility window", func() {
			objs := make([]object.Object, 8)
			for i := range objs {
				objs[i] = object.Object{StartTime: float64(i) * 100, Preempt: 300, JumpDistance: 200}
				r.multiplier(&objs[i])
			}

			Convey("Then only objects newer than start minus preempt remain", func() {
				// the last call evicts everything before 700-300=400
				So(r.window.Len(), ShouldEqual, 4)
				So(r.window.Front().StartTime, ShouldEqual, 400)
			})
		})

		Convey("When several spread jumps are visible", func() {
			objs := make([]object.Object, 5)
			var m float64
			for i := range objs {
				objs[i] = object.Object{StartTime: float64(i) * 100, Preempt: 1200, JumpDistance: 200}
				m = r.multiplier(&objs[i])
			}

			Convey("Then density adds a bonus", func() {
				So(m, ShouldAlmostEqual, 1+8.0/100, 1e-12)
			})
		})
	})

	Convey("Given a reader under Hidden", t, func() {
		r := reader{mods: object.ModHidden}

		Convey("Then the empty-window multiplier is the hidden base", func() {
			So(r.multiplier(&object.Object{Preempt: 1200}), ShouldEqual, hiddenBase)
		})
	})

	Convey("Given reading density", t, func() {
		Convey("Then streams and stacks count for less", func() {
			So(readingDensity(0, 2*NormalisedRadius), ShouldEqual, 1)
			So(readingDensity(1, 2*NormalisedRadius), ShouldAlmostEqual, 0.4, 1e-12)
			So(readingDensity(0, 0), ShouldEqual, 0.5)
		})
	})
}
