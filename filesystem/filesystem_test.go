package filesystem

import (
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAPI(t *testing.T) {
	Convey("Filesystem API", t, func() {
		Convey("Should switch to OsFs", func() {
			SetOsFs()
			So(API().Name(), ShouldEqual, "OsFs")
		})

		Convey("Should switch to MemMapFs", func() {
			SetMemMapFs()
			So(API().Name(), ShouldEqual, "MemMapFS")
		})
	})
}

func TestGacheFs(t *testing.T) {
	Convey("Given an in-memory backend", t, func() {
		SetMemMapFs()
		fs := GacheFs{}

		Convey("Files written through GacheFs should be visible through API", func() {
			So(fs.MkdirAll("/cache", os.ModePerm), ShouldBeNil)

			f, err := fs.OpenFile("/cache/data.json", os.O_CREATE|os.O_WRONLY, 0o644)
			So(err, ShouldBeNil)
			_, err = f.Write([]byte("{}"))
			So(err, ShouldBeNil)
			So(f.Close(), ShouldBeNil)

			data, err := API().ReadFile("/cache/data.json")
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, "{}")
		})
	})
}
