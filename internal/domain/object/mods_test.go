package object_test

import (
	"errors"
	"testing"

	"github.com/okian/strain/internal/domain/object"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseMods(t *testing.T) {
	Convey("Given modifier strings", t, func() {
		cases := map[string]object.Mods{
			"":                  object.ModNone,
			"NM":                object.ModNone,
			"HD":                object.ModHidden,
			"HD,FL":             object.ModHidden | object.ModFlashlight,
			"hidden flashlight": object.ModHidden | object.ModFlashlight,
			"+hd+dt":            object.ModHidden | object.ModDoubleTime,
			"HDHR":              object.ModHidden | object.ModHardRock,
		}

		Convey("Then each parses to its set", func() {
			for in, want := range cases {
				got, err := object.ParseMods(in)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, want)
			}
		})

		Convey("When a token is unknown", func() {
			_, err := object.ParseMods("HD,XX")

			Convey("Then ErrUnknownMod is returned", func() {
				So(errors.Is(err, object.ErrUnknownMod), ShouldBeTrue)
			})
		})
	})
}

func TestModsString(t *testing.T) {
	Convey("Given a modifier set", t, func() {
		m := object.ModFlashlight | object.ModHidden

		Convey("Then acronyms render in a fixed order", func() {
			So(m.String(), ShouldEqual, "HDFL")
			So(m.Acronyms(), ShouldResemble, []string{"HD", "FL"})
			So(object.ModNone.String(), ShouldEqual, "NM")
		})

		Convey("Then Has checks membership", func() {
			So(m.Has(object.ModHidden), ShouldBeTrue)
			So(m.Has(object.ModHardRock), ShouldBeFalse)
			So(m.Has(object.ModNone), ShouldBeFalse)
		})

		Convey("Then the text form round trips", func() {
			text, err := m.MarshalText()
			So(err, ShouldBeNil)
			var back object.Mods
			So(back.UnmarshalText(text), ShouldBeNil)
			So(back, ShouldEqual, m)
		})
	})
}
