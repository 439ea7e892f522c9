package filesystem

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
)

func TestApi(t *testing.T) {
	Convey("Filesystem API", t, func() {
		Convey("Should default to OsFs", func() {
			SetOsFs()
			So(API().Name(), ShouldEqual, "OsFs")
		})

		Convey("Should switch to MemMapFs", func() {
			SetMemMapFs()
			So(API().Name(), ShouldEqual, "MemMapFS")
		})

		Convey("Should use a caller provided backend", func() {
			fs := afero.NewMemMapFs()
			So(afero.WriteFile(fs, "/movie.srt", []byte("1"), 0o644), ShouldBeNil)

			Use(fs)
			exists, err := API().Exists("/movie.srt")
			So(err, ShouldBeNil)
			So(exists, ShouldBeTrue)
		})
	})
}
