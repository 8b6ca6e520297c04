package playback

import "github.com/coursecast/coursecast/engine"

// Severity tells the controller whether an error ends the current strategy.
type Severity int

const (
	NonFatal Severity = iota
	Fatal
)

func (s Severity) String() string {
	if s == Fatal {
		return "fatal"
	}
	return "non-fatal"
}

// Classify decides how an engine error is handled. Errors the engine marks
// fatal stay fatal. Parse failures and demux failures are fatal even when
// unmarked since no retry can fix them. Everything else is a transient error
// the engine is still working through.
func Classify(err *engine.Error) Severity {
	if err == nil {
		return NonFatal
	}

	if err.Fatal {
		return Fatal
	}

	switch err.Details {
	case engine.ManifestParsingError, engine.LevelEmptyError, engine.BufferAppendError:
		return Fatal
	}

	if err.Type == engine.MuxError {
		return Fatal
	}

	return NonFatal
}
