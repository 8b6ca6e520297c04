package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/coursecast/coursecast/filesystem"
	"github.com/coursecast/coursecast/playback"
	"github.com/coursecast/coursecast/player"
	"github.com/coursecast/coursecast/provider"
	"github.com/coursecast/coursecast/source"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

type fakeWindow struct {
	mu      sync.Mutex
	sources []string
	opened  string
	paused  bool
	closed  bool
	onError func(error)
	exit    chan struct{}
}

func newFakeWindow() *fakeWindow {
	return &fakeWindow{exit: make(chan struct{})}
}

func (w *fakeWindow) ID() string { return "fake" }

func (w *fakeWindow) SetSource(url string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sources = append(w.sources, url)
	return nil
}

func (w *fakeWindow) ClearSource() error { return w.SetSource("") }
func (w *fakeWindow) CanPlayType(string) bool { return false }
func (w *fakeWindow) Open(title string) error {
	w.opened = title
	return nil
}

func (w *fakeWindow) OnMediaError(fn func(error)) { w.onError = fn }
func (w *fakeWindow) Position() (time.Duration, error) { return 0, nil }
func (w *fakeWindow) Duration() (time.Duration, error) { return 0, nil }
func (w *fakeWindow) Wait() <-chan struct{} { return w.exit }

func (w *fakeWindow) TogglePause() error {
	w.paused = !w.paused
	return nil
}

func (w *fakeWindow) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *fakeWindow) current() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.sources) == 0 {
		return ""
	}
	return w.sources[len(w.sources)-1]
}

var _ player.Window = (*fakeWindow)(nil)

type stubSource struct{ videos []*source.Video }

func (s *stubSource) Name() string { return "stub" }
func (s *stubSource) ID() string   { return "stub" }

func (s *stubSource) Search(context.Context, string) ([]*source.Video, error) {
	return s.videos, nil
}

func (s *stubSource) VideoOf(context.Context, string) (*source.Video, error) {
	return nil, errors.New("unused")
}

// pump feeds every queued playback event back into the bubble.
func pump(b *statefulBubble) {
	for {
		select {
		case msg := <-b.playbackChannel:
			b.Update(msg)
		default:
			return
		}
	}
}

func press(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func TestBubble(t *testing.T) {
	Convey("Given a bubble with a progressive-only video", t, func() {
		window := newFakeWindow()
		video := &source.Video{ID: "1", Title: "Intro", Course: "Go", ProgressiveURL: "https://media.example.com/1.mp4"}

		b := newBubble(&Options{
			Providers: []*provider.Provider{{
				ID:   "stub",
				Name: "stub",
				CreateSource: func() (source.Source, error) {
					return &stubSource{videos: []*source.Video{video}}, nil
				},
			}},
			NewWindow: func() (player.Window, error) { return window, nil },
		})
		defer b.stopPlayback()
		b.resize(120, 40)

		So(b.state, ShouldEqual, searchState)

		Convey("Searching lists the provider's videos", func() {
			b.inputC.SetValue("intro")
			_, cmd := b.Update(press("enter"))
			So(cmd, ShouldNotBeNil)
			So(b.state, ShouldEqual, loadingState)

			found := b.searchVideos("intro")()
			b.Update(found)
			So(b.state, ShouldEqual, videosState)
			So(b.videosC.Items(), ShouldHaveLength, 1)

			Convey("Choosing a video plays it", func() {
				b.Update(press("enter"))
				pump(b)

				So(b.state, ShouldEqual, playState)
				So(window.opened, ShouldEqual, "Go / Intro")
				So(window.current(), ShouldEqual, "https://media.example.com/1.mp4")
				So(b.strategy, ShouldEqual, playback.Progressive)
				So(b.playbackLoading, ShouldBeFalse)
				So(b.View(), ShouldContainSubstring, "progressive")

				Convey("Space toggles pause", func() {
					b.Update(press(" "))
					So(window.paused, ShouldBeTrue)
				})

				Convey("A media error is terminal and shows the error panel", func() {
					window.onError(&player.MediaError{Reason: "error", Detail: "decode"})
					pump(b)

					So(b.state, ShouldEqual, errorState)
					So(b.View(), ShouldContainSubstring, "Playback failed")
					So(errors.Is(b.lastError, playback.ErrEngineUnavailable), ShouldBeTrue)

					Convey("Replay attaches the same source again", func() {
						b.Update(press("r"))
						pump(b)

						So(b.state, ShouldEqual, playState)
						So(b.strategy, ShouldEqual, playback.Progressive)
						So(window.current(), ShouldEqual, "https://media.example.com/1.mp4")
					})
				})

				Convey("Quitting destroys the session before closing the player", func() {
					_, cmd := b.Update(press("q"))
					So(cmd, ShouldNotBeNil)
					So(window.current(), ShouldEqual, "")
					So(window.closed, ShouldBeTrue)

					snapshot, ok := b.guard.Snapshot()
					So(ok, ShouldBeTrue)
					So(snapshot.State, ShouldEqual, playback.Destroyed)
				})

				Convey("The player exiting returns to the list", func() {
					b.Update(playerExitedMsg{window: window})
					So(b.state, ShouldEqual, videosState)
					So(b.window, ShouldBeNil)
				})
			})
		})

		Convey("A search without results returns to the search input", func() {
			b.newState(loadingState)
			b.Update(videosFoundMsg(nil))
			So(b.state, ShouldEqual, searchState)
		})

		Convey("A video without any url is rejected before the player opens", func() {
			b.play(&source.Video{ID: "2", Title: "Empty"})
			So(b.state, ShouldEqual, errorState)
			So(window.opened, ShouldEqual, "")
			So(b.View(), ShouldContainSubstring, "Something went wrong")
		})
	})
}

func TestObserver(t *testing.T) {
	Convey("Given a bubble that fell behind on playback events", t, func() {
		b := newBubble(&Options{})
		defer b.cancel()

		observer := b.observer()
		tracer, ok := observer.(playback.Tracer)
		So(ok, ShouldBeTrue)

		for range cap(b.playbackChannel) + 1 {
			tracer.OnTransition(playback.Transition{To: playback.Attaching})
		}
		So(len(b.playbackChannel), ShouldEqual, cap(b.playbackChannel))

		Convey("A fatal error should wait for room instead of being dropped", func() {
			delivered := make(chan struct{})
			go func() {
				observer.OnFatalError(&playback.Error{Kind: playback.KindEngineUnavailable})
				close(delivered)
			}()

			var fatal *playback.Error
			timeout := time.After(time.Second)
		drain:
			for {
				select {
				case msg := <-b.playbackChannel:
					if m, ok := msg.(playbackFatalMsg); ok {
						fatal = m.err
						break drain
					}
				case <-timeout:
					break drain
				}
			}

			So(fatal, ShouldNotBeNil)
			So(fatal.Kind, ShouldEqual, playback.KindEngineUnavailable)
			<-delivered
		})

		Convey("A loading change should not be lost either", func() {
			go observer.OnLoadingStateChange(false)

			got := 0
			for range cap(b.playbackChannel) + 1 {
				select {
				case msg := <-b.playbackChannel:
					if _, ok := msg.(playbackLoadingMsg); ok {
						got++
					}
				case <-time.After(time.Second):
				}
			}
			So(got, ShouldEqual, 1)
		})
	})
}
