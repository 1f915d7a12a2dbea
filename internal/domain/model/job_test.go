package model_test

import (
	"errors"
	"testing"

	"github.com/okian/strain/internal/domain/difficulty"
	model "github.com/okian/strain/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestResult(t *testing.T) {
	convey.Convey("Given a successful result", t, func() {
		r := model.Result{
			JobID:      "job-1",
			ChartID:    "chart-1",
			Attributes: difficulty.Attributes{Aim: 120.5, Speed: 80},
		}

		convey.Convey("Then it is not failed and exposes ratings", func() {
			convey.So(r.Failed(), convey.ShouldBeFalse)
			v, err := r.Rating(difficulty.SkillAim)
			convey.So(err, convey.ShouldBeNil)
			convey.So(v, convey.ShouldEqual, 120.5)
		})

		convey.Convey("When an unknown skill is requested", func() {
			_, err := r.Rating("reading")

			convey.Convey("Then the skill error is returned", func() {
				convey.So(errors.Is(err, difficulty.ErrUnknownSkill), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a failed result", t, func() {
		boom := errors.New("boom")
		r := model.Result{JobID: "job-2", Err: boom}

		convey.Convey("Then the failure is reported through Rating", func() {
			convey.So(r.Failed(), convey.ShouldBeTrue)
			_, err := r.Rating(difficulty.SkillAim)
			convey.So(err, convey.ShouldEqual, boom)
		})
	})
}
