package playback

import (
	"errors"
	"fmt"

	"github.com/coursecast/coursecast/engine"
	"github.com/coursecast/coursecast/source"
)

// ErrorKind classifies playback failures.
type ErrorKind int

const (
	// KindInvalidSource means the source had no URLs. It is never retried.
	KindInvalidSource ErrorKind = iota + 1
	// KindEngineLoad means the engine module could not be loaded or constructed.
	KindEngineLoad
	// KindManifest means the manifest could not be parsed or had no usable levels.
	KindManifest
	// KindNetwork means the engine gave up on a request after its retries.
	KindNetwork
	// KindMedia means the element could not load or decode the media.
	KindMedia
	// KindEngineUnavailable means every strategy failed.
	KindEngineUnavailable
)

// Sentinels for errors.Is against *Error.
var (
	ErrInvalidSource     = source.ErrInvalidSource
	ErrEngineLoad        = errors.New("streaming engine failed to load")
	ErrManifest          = errors.New("manifest error")
	ErrNetwork           = errors.New("network error")
	ErrMedia             = errors.New("media error")
	ErrEngineUnavailable = errors.New("no playback strategy left")
)

var sentinels = map[ErrorKind]error{
	KindInvalidSource:     ErrInvalidSource,
	KindEngineLoad:        ErrEngineLoad,
	KindManifest:          ErrManifest,
	KindNetwork:           ErrNetwork,
	KindMedia:             ErrMedia,
	KindEngineUnavailable: ErrEngineUnavailable,
}

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidSource:
		return "InvalidSource"
	case KindEngineLoad:
		return "EngineLoadError"
	case KindManifest:
		return "ManifestError"
	case KindNetwork:
		return "NetworkError"
	case KindMedia:
		return "MediaError"
	case KindEngineUnavailable:
		return "EngineUnavailable"
	default:
		return "Unknown"
	}
}

// Error is a classified playback failure.
type Error struct {
	Kind     ErrorKind
	Strategy Strategy
	Err      error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Strategy != NoStrategy {
		msg += " (" + e.Strategy.String() + ")"
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}

// kindOf maps an engine error to the kind it is reported as.
func kindOf(err *engine.Error) ErrorKind {
	switch {
	case err.Details == engine.ManifestParsingError, err.Details == engine.LevelEmptyError:
		return KindManifest
	case err.Type == engine.NetworkError:
		return KindNetwork
	case err.Type == engine.MediaError, err.Type == engine.MuxError:
		return KindMedia
	default:
		return KindEngineLoad
	}
}
