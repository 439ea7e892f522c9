package mpv

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseOptions(t *testing.T) {
	Convey("Given an override string", t, func() {
		options, errs := ParseOptions("  --no-osc --volume-max=200\t--really-quiet  ")

		Convey("Every token becomes an option", func() {
			So(errs, ShouldBeEmpty)
			So(options, ShouldResemble, []Option{
				{Name: "osc", Value: "no"},
				{Name: "volume-max", Value: "200"},
				{Name: "really-quiet", Value: "yes"},
			})
		})
	})

	Convey("Values may contain '=' and be empty", t, func() {
		options, errs := ParseOptions("--lavfi-complex=a=b --title=")
		So(errs, ShouldBeEmpty)
		So(options, ShouldResemble, []Option{
			{Name: "lavfi-complex", Value: "a=b"},
			{Name: "title", Value: ""},
		})
	})

	Convey("Malformed tokens are reported and skipped", t, func() {
		options, errs := ParseOptions("osc -v --fs -- --=x")
		So(options, ShouldResemble, []Option{{Name: "fs", Value: "yes"}})
		So(errs, ShouldHaveLength, 4)
		So(errs[0].Error(), ShouldContainSubstring, `"osc"`)
	})

	Convey("An empty string yields nothing", t, func() {
		options, errs := ParseOptions("")
		So(options, ShouldBeEmpty)
		So(errs, ShouldBeEmpty)
	})
}
