package hls

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coursecast/coursecast/engine"
	"github.com/coursecast/coursecast/network"
	"github.com/coursecast/coursecast/player"
	. "github.com/smartystreets/goconvey/convey"
)

type testElement struct {
	height int

	mu        sync.Mutex
	source    string
	buffering player.Buffering
}

func (e *testElement) ID() string              { return "test" }
func (e *testElement) ClearSource() error      { return e.SetSource("") }
func (e *testElement) CanPlayType(string) bool { return false }
func (e *testElement) Size() (int, int, error) { return e.height * 16 / 9, e.height, nil }

func (e *testElement) SetSource(url string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.source = url
	return nil
}

func (e *testElement) SetBuffering(b player.Buffering) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buffering = b
	return nil
}

func (e *testElement) current() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.source
}

func collect() (engine.Handler, <-chan engine.Event) {
	events := make(chan engine.Event, 32)
	return func(ev engine.Event) { events <- ev }, events
}

func next(events <-chan engine.Event) engine.Event {
	select {
	case ev := <-events:
		return ev
	case <-time.After(5 * time.Second):
		return engine.Event{}
	}
}

func origin(masterHits *atomic.Int32, masterStatus int) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/master.m3u8", func(w http.ResponseWriter, r *http.Request) {
		masterHits.Add(1)
		if masterStatus != http.StatusOK {
			w.WriteHeader(masterStatus)
			return
		}
		_, _ = io.WriteString(w, masterPlaylist)
	})
	mux.HandleFunc("/v720/index.m3u8", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, mediaPlaylist)
	})
	mux.HandleFunc("/garbage.m3u8", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "not a playlist")
	})
	return httptest.NewServer(mux)
}

func fastConfig() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.RetryDelay = time.Millisecond
	return cfg
}

func TestEngine(t *testing.T) {
	Convey("Given a loaded engine module", t, func() {
		loader := NewLoader(nil)
		module, err := loader.Load(context.Background())
		So(err, ShouldBeNil)
		defer loader.Close()

		Convey("Loading again returns the same module", func() {
			again, err := loader.Load(context.Background())
			So(err, ShouldBeNil)
			So(again, ShouldEqual, module)
		})

		Convey("And a healthy origin", func() {
			var hits atomic.Int32
			srv := origin(&hits, http.StatusOK)
			defer srv.Close()

			handler, events := collect()
			eng, err := module.New(fastConfig(), handler)
			So(err, ShouldBeNil)

			el := &testElement{height: 720}
			So(eng.AttachMedia(el), ShouldBeNil)
			So(eng.LoadSource(srv.URL+"/master.m3u8"), ShouldBeNil)

			parsed := next(events)

			Convey("The manifest is parsed and the level fitting the viewport is chosen", func() {
				So(parsed.Kind, ShouldEqual, engine.ManifestParsed)
				So(parsed.Levels, ShouldHaveLength, 3)
				So(parsed.Level, ShouldEqual, 1)
				So(next(events).Kind, ShouldEqual, engine.LevelSwitched)
				So(eng.Destroy(), ShouldBeNil)
			})

			Convey("Buffer bounds are applied to the element", func() {
				el.mu.Lock()
				buffering := el.buffering
				el.mu.Unlock()

				So(buffering.Back, ShouldEqual, 90*time.Second)
				So(buffering.Forward, ShouldEqual, 30*time.Second)
				So(eng.Destroy(), ShouldBeNil)
			})

			Convey("The element plays the relayed level with absolute segments", func() {
				resp, err := http.Get(el.current())
				So(err, ShouldBeNil)
				body, _ := io.ReadAll(resp.Body)
				resp.Body.Close()

				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(string(body), ShouldContainSubstring, srv.URL+"/v720/seg0.ts")

				Convey("Destroy removes the route", func() {
					So(eng.Destroy(), ShouldBeNil)
					So(eng.Destroy(), ShouldBeNil)

					resp, err := http.Get(el.current())
					So(err, ShouldBeNil)
					resp.Body.Close()
					So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
				})
			})
		})

		Convey("And an origin that keeps failing", func() {
			var hits atomic.Int32
			srv := origin(&hits, http.StatusServiceUnavailable)
			defer srv.Close()

			handler, events := collect()
			eng, _ := module.New(fastConfig(), handler)
			defer eng.Destroy()

			So(eng.AttachMedia(&testElement{height: 720}), ShouldBeNil)
			So(eng.LoadSource(srv.URL+"/master.m3u8"), ShouldBeNil)

			Convey("Retries are reported as recoverable and exhaustion as fatal", func() {
				for range 2 {
					ev := next(events)
					So(ev.Kind, ShouldEqual, engine.ErrorEvent)
					So(ev.Err.Fatal, ShouldBeFalse)
				}

				ev := next(events)
				So(ev.Kind, ShouldEqual, engine.ErrorEvent)
				So(ev.Err.Fatal, ShouldBeTrue)
				So(ev.Err.Type, ShouldEqual, engine.NetworkError)
				So(ev.Err.Details, ShouldEqual, engine.ManifestLoadError)
				So(hits.Load(), ShouldEqual, 3)
			})
		})

		Convey("And a manifest that does not parse", func() {
			var hits atomic.Int32
			srv := origin(&hits, http.StatusOK)
			defer srv.Close()

			handler, events := collect()
			eng, _ := module.New(fastConfig(), handler)
			defer eng.Destroy()

			So(eng.AttachMedia(&testElement{}), ShouldBeNil)
			So(eng.LoadSource(srv.URL+"/garbage.m3u8"), ShouldBeNil)

			ev := next(events)
			So(ev.Kind, ShouldEqual, engine.ErrorEvent)
			So(ev.Err.Fatal, ShouldBeTrue)
			So(ev.Err.Details, ShouldEqual, engine.ManifestParsingError)
		})

		Convey("An engine destroyed by its own fatal event handler", func() {
			var hits atomic.Int32
			srv := origin(&hits, http.StatusOK)
			defer srv.Close()

			var eng engine.Engine
			destroyed := make(chan struct{})
			eng, _ = module.New(fastConfig(), func(ev engine.Event) {
				if ev.Kind == engine.ErrorEvent && ev.Err.Fatal {
					_ = eng.Destroy()
					close(destroyed)
				}
			})

			el := &testElement{}
			So(eng.AttachMedia(el), ShouldBeNil)
			So(eng.LoadSource(srv.URL+"/garbage.m3u8"), ShouldBeNil)

			returned := false
			select {
			case <-destroyed:
				returned = true
			case <-time.After(5 * time.Second):
			}
			So(returned, ShouldBeTrue)
			So(el.current(), ShouldEqual, "")
		})

		Convey("A destroyed engine refuses new work", func() {
			handler, _ := collect()
			eng, _ := module.New(fastConfig(), handler)
			So(eng.Destroy(), ShouldBeNil)
			So(eng.AttachMedia(&testElement{}), ShouldNotBeNil)
			So(eng.LoadSource("http://example.com/master.m3u8"), ShouldNotBeNil)
		})
	})
}

func TestRetryable(t *testing.T) {
	Convey("Client errors are not retried", t, func() {
		So(retryable(&network.StatusError{Code: http.StatusNotFound}), ShouldBeFalse)
		So(retryable(context.Canceled), ShouldBeFalse)
	})

	Convey("Server errors, throttling and transport errors are", t, func() {
		So(retryable(&network.StatusError{Code: http.StatusBadGateway}), ShouldBeTrue)
		So(retryable(&network.StatusError{Code: http.StatusTooManyRequests}), ShouldBeTrue)
		So(retryable(io.ErrUnexpectedEOF), ShouldBeTrue)
	})
}
