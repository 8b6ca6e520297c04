package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coursecast/coursecast/config"
	"github.com/coursecast/coursecast/filesystem"
	"github.com/coursecast/coursecast/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestConfig(t *testing.T) {
	Convey("Given the registered defaults", t, func() {
		filesystem.SetMemMapFs()
		So(config.Setup(), ShouldBeNil)

		Convey("FromViper should match DefaultConfig", func() {
			So(FromViper(), ShouldResemble, DefaultConfig())
		})

		Convey("FromViper should honour overrides", func() {
			viper.Set(key.EngineMaxBufferSize, 10)
			viper.Set(key.EngineManifestMaxRetry, -4)
			defer viper.Set(key.EngineMaxBufferSize, 60)
			defer viper.Set(key.EngineManifestMaxRetry, 2)

			cfg := FromViper()
			So(cfg.MaxBufferSize, ShouldEqual, 10*megabyte)
			So(cfg.ManifestMaxRetry, ShouldEqual, 0)
			So(cfg.LoadTimeout, ShouldEqual, 15*time.Second)
		})
	})
}

func TestError(t *testing.T) {
	Convey("Engine errors", t, func() {
		cause := errors.New("connection reset")
		ev := Failure(NetworkError, ManifestLoadError, true, cause)

		So(ev.Kind, ShouldEqual, ErrorEvent)
		So(ev.Err.Error(), ShouldEqual, "fatal networkError (manifestLoadError): connection reset")
		So(errors.Is(ev.Err, cause), ShouldBeTrue)

		ev = Failure(MediaError, BufferStalledError, false, nil)
		So(ev.Err.Error(), ShouldEqual, "recoverable mediaError (bufferStalledError)")
	})

	Convey("Adapters", t, func() {
		module := ModuleFunc(func(Config, Handler) (Engine, error) { return nil, nil })
		loader := LoaderFunc(func(context.Context) (Module, error) { return module, nil })

		got, err := loader.Load(context.Background())
		So(err, ShouldBeNil)
		So(got, ShouldNotBeNil)
	})

	Convey("Levels", t, func() {
		So(Level{Bandwidth: 2_500_000, Height: 720}.String(), ShouldEqual, "720p@2500kbps")
		So(Level{Bandwidth: 64_000}.String(), ShouldEqual, "64kbps")
	})
}
