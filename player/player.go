// Package player provides the media elements playback sources are bound to.
//
// An element is a window owned by an external player process. The hosting UI
// opens and closes it; the playback controller only ever sets and clears its
// source.
package player

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Element is the surface the playback controller drives.
type Element interface {
	// ID identifies the element in logs.
	ID() string

	// SetSource starts loading url, replacing whatever was loaded.
	SetSource(url string) error

	// ClearSource unloads the current source. Clearing an empty element is a no-op.
	ClearSource() error

	// CanPlayType reports whether the element can decode mime without help.
	CanPlayType(mime string) bool
}

// Buffering limits applied by a streaming engine.
type Buffering struct {
	Back     time.Duration
	Forward  time.Duration
	MaxBytes int64
}

// Buffered is implemented by elements whose buffer can be tuned.
type Buffered interface {
	SetBuffering(b Buffering) error
}

// Sizer is implemented by elements that know their viewport size in pixels.
type Sizer interface {
	Size() (width, height int, err error)
}

// Window is an Element with a process lifecycle and transport controls.
type Window interface {
	Element

	// Open starts the player idle, with no source loaded.
	Open(title string) error

	// OnMediaError registers fn to receive fatal load or decode errors.
	OnMediaError(fn func(error))

	TogglePause() error
	Position() (time.Duration, error)
	Duration() (time.Duration, error)

	// Wait is closed when the player process exits.
	Wait() <-chan struct{}

	Close() error
}

// MediaError is a fatal error reported by the element for its current source.
type MediaError struct {
	Reason string
	Detail string
}

func (e *MediaError) Error() string {
	if e.Detail == "" {
		return "media error: " + e.Reason
	}
	return fmt.Sprintf("media error: %s: %s", e.Reason, e.Detail)
}

const (
	MPVName  = "mpv"
	IINAName = "iina"
)

var constructors = map[string]func() Window{
	MPVName:  func() Window { return NewMPV() },
	IINAName: func() Window { return NewIINA() },
}

// Available lists the element names New accepts.
func Available() []string {
	return []string{MPVName, IINAName}
}

// New returns an unopened element by name.
func New(name string) (Window, error) {
	constructor, ok := constructors[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown player %q, available: %s", name, strings.Join(Available(), ", "))
	}
	return constructor(), nil
}

var playable = []string{
	"application/vnd.apple.mpegurl",
	"application/x-mpegurl",
	"video/mp4",
	"video/webm",
	"video/mp2t",
	"video/quicktime",
}

// canPlayType matches mime against the types ffmpeg based players decode.
func canPlayType(mime string) bool {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return lo.Contains(playable, mime)
}
