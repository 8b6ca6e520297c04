package hls

import (
	"strings"
	"testing"

	"github.com/coursecast/coursecast/engine"
	. "github.com/smartystreets/goconvey/convey"
)

const masterPlaylist = `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-STREAM-INF:BANDWIDTH=800000,RESOLUTION=640x360
v360/index.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=2500000,RESOLUTION=1280x720
v720/index.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=5000000,RESOLUTION=1920x1080
https://cdn.example.com/v1080/index.m3u8
`

const mediaPlaylist = `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-TARGETDURATION:6
#EXT-X-MEDIA-SEQUENCE:0
#EXTINF:6.000,
seg0.ts
#EXTINF:6.000,
seg1.ts
#EXT-X-ENDLIST
`

func TestParseLevels(t *testing.T) {
	Convey("Given a master playlist", t, func() {
		levels, failure := parseLevels("https://media.example.com/course/master.m3u8", []byte(masterPlaylist))

		Convey("Every variant becomes an absolute level", func() {
			So(failure, ShouldBeNil)
			So(levels, ShouldHaveLength, 3)
			So(levels[0].URL, ShouldEqual, "https://media.example.com/course/v360/index.m3u8")
			So(levels[0].Bandwidth, ShouldEqual, 800000)
			So(levels[1].Height, ShouldEqual, 720)
			So(levels[1].Width, ShouldEqual, 1280)
			So(levels[2].URL, ShouldEqual, "https://cdn.example.com/v1080/index.m3u8")
		})
	})

	Convey("Given a media playlist", t, func() {
		levels, failure := parseLevels("https://media.example.com/v/index.m3u8", []byte(mediaPlaylist))

		Convey("It is a single level at the manifest url", func() {
			So(failure, ShouldBeNil)
			So(levels, ShouldResemble, []engine.Level{{URL: "https://media.example.com/v/index.m3u8"}})
		})
	})

	Convey("Given something that is not a playlist", t, func() {
		_, failure := parseLevels("https://media.example.com/master.m3u8", []byte("<html>gateway</html>"))

		Convey("It is a fatal parsing error", func() {
			So(failure, ShouldNotBeNil)
			So(failure.Fatal, ShouldBeTrue)
			So(failure.Details, ShouldEqual, engine.ManifestParsingError)
		})
	})

	Convey("Given a master playlist without variants", t, func() {
		_, failure := parseLevels("https://media.example.com/master.m3u8", []byte("#EXTM3U\n#EXT-X-VERSION:3\n#EXT-X-INDEPENDENT-SEGMENTS\n"))

		Convey("It is an error", func() {
			So(failure, ShouldNotBeNil)
			So(failure.Fatal, ShouldBeTrue)
		})
	})
}

func TestSelectLevel(t *testing.T) {
	levels := []engine.Level{
		{Bandwidth: 2500000, Height: 720},
		{Bandwidth: 800000, Height: 360},
		{Bandwidth: 5000000, Height: 1080},
	}

	Convey("Given capped automatic selection", t, func() {
		cfg := engine.DefaultConfig()

		Convey("The best level that fits the viewport wins", func() {
			So(selectLevel(levels, cfg, 720), ShouldEqual, 0)
			So(selectLevel(levels, cfg, 1440), ShouldEqual, 2)
		})

		Convey("A viewport smaller than every level gets the lowest bandwidth", func() {
			So(selectLevel(levels, cfg, 240), ShouldEqual, 1)
		})

		Convey("An unknown viewport is not capped", func() {
			So(selectLevel(levels, cfg, 0), ShouldEqual, 2)
		})
	})

	Convey("Given capping disabled", t, func() {
		cfg := engine.DefaultConfig()
		cfg.CapLevelToPlayerSize = false

		So(selectLevel(levels, cfg, 360), ShouldEqual, 2)
	})

	Convey("Given a forced start level", t, func() {
		cfg := engine.DefaultConfig()
		cfg.StartLevel = 1

		So(selectLevel(levels, cfg, 1080), ShouldEqual, 1)

		Convey("Out of range falls back to automatic", func() {
			cfg.StartLevel = 7
			So(selectLevel(levels, cfg, 1080), ShouldEqual, 2)
		})
	})
}

func TestRewriteMediaPlaylist(t *testing.T) {
	Convey("Given a media playlist with relative segments", t, func() {
		out, failure := rewriteMediaPlaylist("https://media.example.com/v720/index.m3u8", []byte(mediaPlaylist))

		Convey("Segments are made absolute", func() {
			So(failure, ShouldBeNil)
			text := string(out)
			So(text, ShouldContainSubstring, "https://media.example.com/v720/seg0.ts")
			So(text, ShouldContainSubstring, "https://media.example.com/v720/seg1.ts")
			So(strings.HasPrefix(text, "#EXTM3U"), ShouldBeTrue)
		})
	})

	Convey("Given a master playlist where a level was expected", t, func() {
		_, failure := rewriteMediaPlaylist("https://media.example.com/v720/index.m3u8", []byte(masterPlaylist))

		So(failure, ShouldNotBeNil)
		So(failure.Details, ShouldEqual, engine.LevelEmptyError)
	})
}
