package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When initialised with defaults", func() {
			err := Init()

			Convey("Then it can be fetched", func() {
				So(err, ShouldBeNil)
				So(Get(), ShouldNotBeNil)
				So(Named("test"), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})

		Convey("When initialised with an unknown format", func() {
			err := Init(WithFormat("xml"))

			Convey("Then it fails", func() {
				So(errors.Is(err, ErrUnknownFormat), ShouldBeTrue)
			})
		})
	})
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a JSON logger on a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithOutput(&buf), WithFormat(FormatJSON)), ShouldBeNil)
		SetLevel(slog.LevelInfo)
		ctx := context.Background()

		Convey("When a record with fields is written", func() {
			Named("calc").Info(ctx, "rated",
				String("chart", "c1"),
				Int("objects", 3),
				Float64("aim", 1.5),
				Bool("parallel", true),
				Duration("took", time.Millisecond),
				Error(errors.New("boom")),
			)

			Convey("Then the fields and source are present", func() {
				var rec map[string]any
				So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)
				So(rec["msg"], ShouldEqual, "rated")
				group, ok := rec["calc"].(map[string]any)
				So(ok, ShouldBeTrue)
				So(group["chart"], ShouldEqual, "c1")
				So(group["parallel"], ShouldEqual, true)
				So(group["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level is raised", func() {
			So(SetLevelString("warn"), ShouldBeNil)
			Get().Info(ctx, "hidden")
			Get().Warn(ctx, "shown")

			Convey("Then lower records are dropped", func() {
				out := buf.String()
				So(strings.Contains(out, "hidden"), ShouldBeFalse)
				So(out, ShouldContainSubstring, "shown")
			})
		})

		Convey("When an unknown level is set", func() {
			err := SetLevelString("loud")

			Convey("Then it is rejected", func() {
				So(errors.Is(err, ErrUnknownLevel), ShouldBeTrue)
			})
		})
	})
}

func TestNop(t *testing.T) {
	Convey("Given a nop logger", t, func() {
		l := Nop()

		Convey("Then every level is accepted silently", func() {
			So(func() {
				l.Debug(context.Background(), "d")
				l.Info(context.Background(), "i")
				l.Named("x").Error(context.Background(), "e")
			}, ShouldNotPanic)
		})
	})
}
