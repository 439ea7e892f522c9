package config

import (
	"encoding/json"
	"testing"

	"github.com/reelplay/reel/filesystem"
	"github.com/reelplay/reel/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			So(Setup(), ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			So(Setup(), ShouldBeNil)
			for name := range Default {
				So(viper.IsSet(name), ShouldBeTrue)
			}
			So(viper.GetString(key.MpvBinary), ShouldEqual, "mpv")
			So(viper.GetInt(key.AudioVolume), ShouldEqual, 100)
		})

		Convey("Should pick up environment overrides", func() {
			t.Setenv("REEL_MPV_OPTIONS", "--no-osc --volume-max=200")
			So(Setup(), ShouldBeNil)
			So(viper.GetString(key.MpvOptions), ShouldEqual, "--no-osc --volume-max=200")
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			So(EnvKeyReplacer.Replace("mpv.verbose"), ShouldEqual, "mpv_verbose")
		})
	})
}

func TestField(t *testing.T) {
	Convey("Given a registered field", t, func() {
		field := Default[key.MpvVerbose]

		Convey("Its env name carries the application prefix", func() {
			So(field.Env(), ShouldEqual, "REEL_MPV_VERBOSE")
		})

		Convey("It marshals with its type and default", func() {
			raw, err := json.Marshal(&field)
			So(err, ShouldBeNil)

			var decoded map[string]any
			So(json.Unmarshal(raw, &decoded), ShouldBeNil)
			So(decoded["key"], ShouldEqual, key.MpvVerbose)
			So(decoded["type"], ShouldEqual, "string")
			So(decoded["env"], ShouldEqual, "REEL_MPV_VERBOSE")
		})

		Convey("Pretty output mentions the key", func() {
			So(field.Pretty(), ShouldContainSubstring, key.MpvVerbose)
		})
	})
}
