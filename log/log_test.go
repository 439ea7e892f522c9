package log

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/reelplay/reel/filesystem"
	"github.com/reelplay/reel/key"
	"github.com/reelplay/reel/where"
	"github.com/sirupsen/logrus"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Given logging is disabled", t, func() {
		viper.Set(key.LogsWrite, false)

		Convey("Setup succeeds and the logger discards output", func() {
			So(Setup(), ShouldBeNil)
			So(Logger(), ShouldNotBeNil)
			Info("dropped")
		})
	})

	Convey("Given logging is enabled", t, func() {
		viper.Set(key.LogsWrite, true)
		viper.Set(key.LogsLevel, "debug")
		defer viper.Set(key.LogsWrite, false)

		So(Setup(), ShouldBeNil)

		Convey("The level follows the configuration", func() {
			So(Logger().GetLevel(), ShouldEqual, logrus.DebugLevel)
		})

		Convey("Entries land in the dated log file", func() {
			Component("engine").Info("hello")

			path := filepath.Join(where.Logs(), time.Now().Format("2006-01-02")+".log")
			data, err := filesystem.API().ReadFile(path)
			So(err, ShouldBeNil)
			So(string(data), ShouldContainSubstring, "component=engine")
			So(string(data), ShouldContainSubstring, "hello")
		})

		Convey("An unknown level falls back to info", func() {
			viper.Set(key.LogsLevel, "loud")
			So(Setup(), ShouldBeNil)
			So(Logger().GetLevel(), ShouldEqual, logrus.InfoLevel)
		})
	})
}
