package cmd

import (
	"testing"

	"github.com/reelplay/reel/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/cobra"
)

func TestParseValue(t *testing.T) {
	Convey("Values take the type of the default", t, func() {
		v, err := parseValue(key.AudioVolume, []string{"70"})
		So(err, ShouldBeNil)
		So(v, ShouldEqual, 70)

		v, err = parseValue(key.AudioAmp, []string{"1.5"})
		So(err, ShouldBeNil)
		So(v, ShouldEqual, 1.5)

		v, err = parseValue(key.LogsJson, []string{"true"})
		So(err, ShouldBeNil)
		So(v, ShouldEqual, true)

		v, err = parseValue(key.HwDecCodecs, []string{"h264", "hevc"})
		So(err, ShouldBeNil)
		So(v, ShouldResemble, []string{"h264", "hevc"})

		v, err = parseValue(key.MpvBinary, []string{"/opt/mpv"})
		So(err, ShouldBeNil)
		So(v, ShouldEqual, "/opt/mpv")
	})

	Convey("Malformed values are rejected", t, func() {
		_, err := parseValue(key.AudioVolume, []string{"loud"})
		So(err, ShouldNotBeNil)

		_, err = parseValue(key.AudioAmp, []string{"x"})
		So(err, ShouldNotBeNil)

		_, err = parseValue(key.LogsWrite, []string{"maybe"})
		So(err, ShouldNotBeNil)

		_, err = parseValue(key.LogsWrite, nil)
		So(err, ShouldNotBeNil)
	})
}

func TestKeyArg(t *testing.T) {
	Convey("Given a command with a --key flag", t, func() {
		cmd := &cobra.Command{}
		cmd.Flags().String("key", "", "")

		Convey("The argument wins over the flag", func() {
			_ = cmd.Flags().Set("key", key.AudioVolume)
			k, err := keyArg(cmd, []string{key.AudioAmp})
			So(err, ShouldBeNil)
			So(k, ShouldEqual, key.AudioAmp)
		})

		Convey("The flag is used without arguments", func() {
			_ = cmd.Flags().Set("key", key.AudioVolume)
			k, err := keyArg(cmd, nil)
			So(err, ShouldBeNil)
			So(k, ShouldEqual, key.AudioVolume)
		})

		Convey("A missing key is an error", func() {
			_, err := keyArg(cmd, nil)
			So(err, ShouldNotBeNil)
		})

		Convey("Unknown keys get a suggestion", func() {
			_, err := keyArg(cmd, []string{"audio.volum"})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, key.AudioVolume)
		})
	})
}
