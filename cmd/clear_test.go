package cmd

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
)

func TestRemoveStaleSockets(t *testing.T) {
	Convey("Given a runtime directory with two sockets", t, func() {
		fs := afero.NewMemMapFs()
		dir := "/run/user/1000/reel"
		So(fs.MkdirAll(dir, 0o700), ShouldBeNil)
		for _, name := range []string{"mpv-10-aa.sock", "mpv-20-bb.sock", "notes.txt"} {
			So(afero.WriteFile(fs, dir+"/"+name, nil, 0o600), ShouldBeNil)
		}
		So(fs.MkdirAll(dir+"/sub.sock", 0o700), ShouldBeNil)

		Convey("Only sockets nobody listens on are removed", func() {
			live := dir + "/mpv-20-bb.sock"
			removed, err := removeStaleSockets(fs, dir, func(path string) bool { return path == live })
			So(err, ShouldBeNil)
			So(removed, ShouldEqual, 1)

			gone, _ := afero.Exists(fs, dir+"/mpv-10-aa.sock")
			So(gone, ShouldBeFalse)
			kept, _ := afero.Exists(fs, live)
			So(kept, ShouldBeTrue)
			other, _ := afero.Exists(fs, dir+"/notes.txt")
			So(other, ShouldBeTrue)
			sub, _ := afero.DirExists(fs, dir+"/sub.sock")
			So(sub, ShouldBeTrue)
		})

		Convey("A missing directory is an error", func() {
			_, err := removeStaleSockets(fs, "/nowhere", func(string) bool { return false })
			So(err, ShouldNotBeNil)
		})
	})
}
