package playback

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coursecast/coursecast/engine"
	"github.com/coursecast/coursecast/engine/hls"
	"github.com/coursecast/coursecast/source"
	. "github.com/smartystreets/goconvey/convey"
)

const (
	manifestURL    = "https://x/m.manifest"
	progressiveURL = "https://x/f.mp4"
)

var (
	both         = source.NewVideoSource(manifestURL, progressiveURL)
	manifestOnly = source.NewVideoSource(manifestURL, "")
	fileOnly     = source.NewVideoSource("", progressiveURL)
)

func TestGuardDirectStrategies(t *testing.T) {
	ctx := context.Background()

	Convey("Given a progressive-only source", t, func() {
		f := newFixture()
		So(f.guard.Attach(ctx, f.el, fileOnly), ShouldBeNil)

		Convey("It should attach the file without probing or loading an engine", func() {
			So(f.rec.list(), ShouldResemble, []string{"element.set " + progressiveURL})
			So(f.el.probes.Load(), ShouldEqual, 0)
			So(f.loader.calls.Load(), ShouldEqual, 0)
			So(f.ready, ShouldResemble, []Strategy{Progressive})
			So(f.loading, ShouldResemble, []bool{true, false})
			So(f.state(), ShouldEqual, Ready)
		})
	})

	Convey("Given a manifest source and a native-capable element", t, func() {
		f := newFixture()
		f.el.native = true
		So(f.guard.Attach(ctx, f.el, both), ShouldBeNil)

		Convey("It should hand the manifest to the element", func() {
			So(f.rec.list(), ShouldResemble, []string{"element.set " + manifestURL})
			So(f.loader.calls.Load(), ShouldEqual, 0)
			So(f.ready, ShouldResemble, []Strategy{NativeManifest})
		})

		Convey("A media error should degrade to the progressive file", func() {
			f.guard.MediaError(errors.New("decode failed"))

			So(f.rec.list(), ShouldResemble, []string{
				"element.set " + manifestURL,
				"element.clear",
				"element.set " + progressiveURL,
			})
			So(f.states(), ShouldResemble, []State{Ready, Degraded})
			So(f.fatalCount(), ShouldEqual, 0)
		})
	})

	Convey("Given a native manifest the element refuses", t, func() {
		f := newFixture()
		f.el.native = true
		f.el.failURL[manifestURL] = true
		So(f.guard.Attach(ctx, f.el, both), ShouldBeNil)

		Convey("It should pass through Failed and degrade", func() {
			So(f.states(), ShouldResemble, []State{Failed, Degraded})
			So(f.ready, ShouldResemble, []Strategy{Progressive})
		})
	})
}

func TestGuardEngine(t *testing.T) {
	ctx := context.Background()

	Convey("Given both urls and no native support", t, func() {
		f := newFixture()
		So(f.guard.Attach(ctx, f.el, both), ShouldBeNil)
		f.guard.Wait()

		Convey("The engine should be configured, attached and loaded in order", func() {
			So(f.rec.list(), ShouldResemble, []string{
				"module.new",
				"engine1.attach",
				"engine1.load " + manifestURL,
			})
			So(f.el.probes.Load(), ShouldEqual, 1)
			So(f.state(), ShouldEqual, Attaching)
			So(f.loading, ShouldResemble, []bool{true})
		})

		Convey("ManifestParsed should make the session ready", func() {
			f.module.engine(0).emit(engine.Event{Kind: engine.ManifestParsed})

			So(f.states(), ShouldResemble, []State{LoadingEngineModule, Configuring, Attaching, Ready})
			So(f.ready, ShouldResemble, []Strategy{EngineManifest})
			So(f.loading, ShouldResemble, []bool{true, false})
		})

		Convey("A fatal decode error after Ready should degrade to progressive", func() {
			eng := f.module.engine(0)
			eng.emit(engine.Event{Kind: engine.ManifestParsed})
			eng.emit(engine.Failure(engine.MediaError, engine.BufferAppendError, true, errors.New("decode")))

			So(f.states(), ShouldResemble, []State{LoadingEngineModule, Configuring, Attaching, Ready, Degraded})
			So(f.fatalCount(), ShouldEqual, 0)

			snap, _ := f.guard.Snapshot()
			So(snap.Strategy, ShouldEqual, Progressive)
			So(snap.Attempted, ShouldResemble, []Strategy{EngineManifest, Progressive})

			Convey("Teardown should run destroy, detach, clear, before the fallback attaches", func() {
				So(f.rec.list()[3:], ShouldResemble, []string{
					"engine1.destroy",
					"engine1.detach",
					"element.clear",
					"element.set " + progressiveURL,
				})
			})

			Convey("Later engine events should be ignored", func() {
				eng.emit(engine.Failure(engine.NetworkError, engine.FragLoadError, true, nil))
				So(f.fatalCount(), ShouldEqual, 0)
				So(f.rec.count("element.set"), ShouldEqual, 1)
			})

			Convey("A second fatal error on progressive should be terminal", func() {
				f.guard.MediaError(errors.New("404"))
				f.guard.MediaError(errors.New("404 again"))

				So(f.fatalCount(), ShouldEqual, 1)
				So(f.fatals[0].Kind, ShouldEqual, KindEngineUnavailable)
				So(errors.Is(f.fatals[0], ErrMedia), ShouldBeTrue)
				So(f.state(), ShouldEqual, Failed)
				So(f.rec.count("element.set"), ShouldEqual, 1)
			})
		})

		Convey("Non-fatal network errors should be absorbed", func() {
			eng := f.module.engine(0)
			eng.emit(engine.Failure(engine.NetworkError, engine.ManifestLoadError, false, errors.New("timeout")))
			eng.emit(engine.Failure(engine.NetworkError, engine.ManifestLoadError, false, errors.New("timeout")))

			So(f.state(), ShouldEqual, Attaching)
			So(f.rec.count("engine1.destroy"), ShouldEqual, 0)

			Convey("Until the engine reports its retries exhausted", func() {
				eng.emit(engine.Failure(engine.NetworkError, engine.ManifestLoadError, true, errors.New("timeout")))

				So(f.states(), ShouldResemble, []State{LoadingEngineModule, Configuring, Attaching, Failed, Degraded})
				So(f.ready, ShouldResemble, []Strategy{Progressive})
			})
		})

		Convey("Destroy should tear the engine down exactly once", func() {
			f.guard.Destroy()
			f.guard.Destroy()

			So(f.rec.count("engine1.destroy"), ShouldEqual, 1)
			So(f.rec.count("engine1.detach"), ShouldEqual, 1)
			So(f.rec.count("element.clear"), ShouldEqual, 1)
			So(f.state(), ShouldEqual, Destroyed)
			So(f.loading, ShouldResemble, []bool{true, false})
		})

		Convey("Attaching again should destroy the old engine before building the new one", func() {
			f.module.engine(0).emit(engine.Event{Kind: engine.ManifestParsed})
			So(f.guard.Attach(ctx, f.el, source.NewVideoSource("https://x/other.manifest", "")), ShouldBeNil)
			f.guard.Wait()

			events := f.rec.list()
			So(f.rec.count("module.new"), ShouldEqual, 2)
			So(f.rec.count("engine1.destroy"), ShouldEqual, 1)
			So(f.rec.index("engine1.destroy"), ShouldBeLessThan, lastIndex(events, "module.new"))
			So(f.rec.index("element.clear"), ShouldBeLessThan, lastIndex(events, "module.new"))
		})
	})

	Convey("Given an engine module that fails to load", t, func() {
		f := newFixture()
		f.loader.err = errors.New("script error")

		Convey("With a progressive fallback it should degrade silently", func() {
			So(f.guard.Attach(ctx, f.el, both), ShouldBeNil)
			f.guard.Wait()

			So(f.states(), ShouldResemble, []State{LoadingEngineModule, Failed, Degraded})
			So(f.rec.count("module.new"), ShouldEqual, 0)
			So(f.rec.list(), ShouldResemble, []string{"element.clear", "element.set " + progressiveURL})
			So(f.fatalCount(), ShouldEqual, 0)
			So(f.ready, ShouldResemble, []Strategy{Progressive})
		})

		Convey("Without one it should report EngineUnavailable once", func() {
			So(f.guard.Attach(ctx, f.el, manifestOnly), ShouldBeNil)
			f.guard.Wait()

			So(f.states(), ShouldResemble, []State{LoadingEngineModule, Failed})
			So(f.fatalCount(), ShouldEqual, 1)
			So(f.fatals[0].Kind, ShouldEqual, KindEngineUnavailable)
			So(errors.Is(f.fatals[0], ErrEngineLoad), ShouldBeTrue)
			So(f.loading, ShouldResemble, []bool{true, false})
		})
	})

	Convey("Given an engine that cannot be constructed", t, func() {
		f := newFixture()
		f.module.newErr = errors.New("bad config")
		So(f.guard.Attach(ctx, f.el, both), ShouldBeNil)
		f.guard.Wait()

		Convey("It should fail from Configuring and degrade", func() {
			So(f.states(), ShouldResemble, []State{LoadingEngineModule, Configuring, Failed, Degraded})
		})
	})

	Convey("Given a guard without a loader", t, func() {
		f := newFixture(WithLoader(nil))
		So(f.guard.Attach(ctx, f.el, both), ShouldBeNil)

		Convey("Engine strategies should degrade immediately", func() {
			So(f.states(), ShouldResemble, []State{LoadingEngineModule, Failed, Degraded})
			So(f.loader.calls.Load(), ShouldEqual, 0)
		})
	})

	Convey("Given a custom engine config", t, func() {
		cfg := engine.DefaultConfig()
		cfg.MaxBufferLength = 5 * time.Second
		cfg.CapLevelToPlayerSize = false
		f := newFixture(WithEngineConfig(cfg))
		So(f.guard.Attach(ctx, f.el, manifestOnly), ShouldBeNil)
		f.guard.Wait()

		Convey("The engine should be constructed with it", func() {
			So(f.module.configs, ShouldHaveLength, 1)
			So(f.module.configs[0], ShouldResemble, cfg)
		})
	})
}

func TestGuardCancellation(t *testing.T) {
	ctx := context.Background()

	Convey("Given an engine load that has not resolved yet", t, func() {
		f := newFixture()
		f.loader.gate = make(chan struct{})
		So(f.guard.Attach(ctx, f.el, both), ShouldBeNil)
		So(f.state(), ShouldEqual, LoadingEngineModule)

		Convey("Destroy should discard the result when it arrives", func() {
			f.guard.Destroy()
			close(f.loader.gate)
			f.guard.Wait()

			So(f.rec.count("module.new"), ShouldEqual, 0)
			So(f.states(), ShouldResemble, []State{LoadingEngineModule, Destroyed})
			So(f.ready, ShouldBeEmpty)
			So(f.fatalCount(), ShouldEqual, 0)
		})

		Convey("A new attach should supersede it", func() {
			So(f.guard.Attach(ctx, f.el, fileOnly), ShouldBeNil)
			close(f.loader.gate)
			f.guard.Wait()

			So(f.rec.count("module.new"), ShouldEqual, 0)
			So(f.rec.list(), ShouldResemble, []string{"element.clear", "element.set " + progressiveURL})
			So(f.ready, ShouldResemble, []Strategy{Progressive})
		})
	})

	Convey("Given nothing attached", t, func() {
		f := newFixture()

		Convey("Destroy should be a no-op", func() {
			So(func() { f.guard.Destroy(); f.guard.Destroy() }, ShouldNotPanic)
			So(f.rec.list(), ShouldBeEmpty)
			_, ok := f.guard.Snapshot()
			So(ok, ShouldBeFalse)
		})

		Convey("MediaError should be ignored", func() {
			f.guard.MediaError(errors.New("late"))
			So(f.fatalCount(), ShouldEqual, 0)
		})
	})
}

func TestGuardInvalidSource(t *testing.T) {
	Convey("Given an attached session", t, func() {
		f := newFixture()
		So(f.guard.Attach(context.Background(), f.el, fileOnly), ShouldBeNil)

		Convey("Attaching a source with no urls should fail fast", func() {
			err := f.guard.Attach(context.Background(), f.el, source.NewVideoSource("", ""))

			var perr *Error
			So(errors.As(err, &perr), ShouldBeTrue)
			So(perr.Kind, ShouldEqual, KindInvalidSource)
			So(errors.Is(err, ErrInvalidSource), ShouldBeTrue)

			So(f.rec.list(), ShouldResemble, []string{"element.set " + progressiveURL})
			So(f.state(), ShouldEqual, Ready)
			So(f.fatalCount(), ShouldEqual, 0)
		})

		Convey("Attaching to a nil element should fail", func() {
			So(f.guard.Attach(context.Background(), nil, fileOnly), ShouldNotBeNil)
		})
	})
}

func TestGuardReentrancy(t *testing.T) {
	Convey("Given an observer that destroys on ready", t, func() {
		rec := &recorder{}
		el := &fakeElement{rec: rec}

		var guard *Guard
		guard = NewGuard(WithObserver(ObserverFuncs{
			Ready: func(Strategy) { guard.Destroy() },
		}))

		So(guard.Attach(context.Background(), el, fileOnly), ShouldBeNil)

		Convey("The destroy should run after the attach completes", func() {
			So(rec.list(), ShouldResemble, []string{"element.set " + progressiveURL, "element.clear"})
			snap, _ := guard.Snapshot()
			So(snap.States(), ShouldResemble, []State{Ready, Destroyed})
		})
	})
}

func TestGuardDestroyWaits(t *testing.T) {
	Convey("Given a native session whose fallback attach is slow", t, func() {
		f := newFixture()
		f.el.native = true
		So(f.guard.Attach(context.Background(), f.el, both), ShouldBeNil)

		f.el.holdURL = progressiveURL
		f.el.hold = make(chan struct{})

		go f.guard.MediaError(errors.New("decode failed"))
		So(f.rec.waitFor("element.set "+progressiveURL), ShouldBeTrue)

		destroyed := make(chan struct{})
		go func() {
			f.guard.Destroy()
			f.rec.add("window.close")
			close(destroyed)
		}()

		Convey("Destroy should return only after the element was released", func() {
			early := false
			select {
			case <-destroyed:
				early = true
			case <-time.After(50 * time.Millisecond):
			}
			So(early, ShouldBeFalse)

			close(f.el.hold)
			<-destroyed

			So(f.rec.list(), ShouldResemble, []string{
				"element.set " + manifestURL,
				"element.clear",
				"element.set " + progressiveURL,
				"element.clear",
				"window.close",
			})
			So(f.state(), ShouldEqual, Destroyed)
		})
	})
}

func TestGuardBuiltinEngine(t *testing.T) {
	Convey("Given the built-in engine and an origin serving a broken manifest", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/master.m3u8" {
				http.NotFound(w, r)
				return
			}
			_, _ = io.WriteString(w, "not a playlist")
		}))
		defer srv.Close()

		loader := hls.NewLoader(srv.Client())
		defer loader.Close()

		cfg := engine.DefaultConfig()
		cfg.ManifestMaxRetry = 0
		cfg.RetryDelay = time.Millisecond

		ready := make(chan Strategy, 4)
		rec := &recorder{}
		el := &fakeElement{rec: rec, failURL: map[string]bool{}}
		guard := NewGuard(WithLoader(loader), WithEngineConfig(cfg), WithObserver(ObserverFuncs{
			Ready: func(s Strategy) { ready <- s },
		}))

		src := source.NewVideoSource(srv.URL+"/master.m3u8", progressiveURL)
		So(guard.Attach(context.Background(), el, src), ShouldBeNil)

		Convey("The fatal parse error should degrade to the progressive file", func() {
			got := NoStrategy
			select {
			case got = <-ready:
			case <-time.After(5 * time.Second):
			}
			So(got, ShouldEqual, Progressive)

			snap, _ := guard.Snapshot()
			So(snap.States(), ShouldResemble, []State{LoadingEngineModule, Configuring, Attaching, Failed, Degraded})
			So(rec.list(), ShouldResemble, []string{"element.clear", "element.set " + progressiveURL})

			Convey("And the guard should still accept a destroy", func() {
				guard.Destroy()
				snap, _ := guard.Snapshot()
				So(snap.State, ShouldEqual, Destroyed)
				So(rec.list(), ShouldHaveLength, 3)
			})
		})
	})
}

func lastIndex(events []string, name string) int {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i] == name {
			return i
		}
	}
	return -1
}
