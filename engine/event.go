package engine

import "fmt"

// EventKind discriminates Event.
type EventKind int

const (
	ManifestParsed EventKind = iota + 1
	LevelSwitched
	ErrorEvent
)

func (k EventKind) String() string {
	switch k {
	case ManifestParsed:
		return "manifestParsed"
	case LevelSwitched:
		return "levelSwitched"
	case ErrorEvent:
		return "error"
	default:
		return "unknown"
	}
}

// Level is one variant stream of a master playlist.
type Level struct {
	URL       string `json:"url"`
	Bandwidth uint32 `json:"bandwidth"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
}

func (l Level) String() string {
	if l.Height > 0 {
		return fmt.Sprintf("%dp@%dkbps", l.Height, l.Bandwidth/1000)
	}
	return fmt.Sprintf("%dkbps", l.Bandwidth/1000)
}

// Event is emitted by an engine through its Handler.
type Event struct {
	Kind   EventKind
	Levels []Level
	Level  int
	Err    *Error
}

// ErrorType is the coarse class of an engine error.
type ErrorType string

const (
	NetworkError ErrorType = "networkError"
	MediaError   ErrorType = "mediaError"
	MuxError     ErrorType = "muxError"
	OtherError   ErrorType = "otherError"
)

// ErrorDetails names what failed.
type ErrorDetails string

const (
	ManifestLoadError    ErrorDetails = "manifestLoadError"
	ManifestLoadTimeout  ErrorDetails = "manifestLoadTimeOut"
	ManifestParsingError ErrorDetails = "manifestParsingError"
	LevelEmptyError      ErrorDetails = "levelEmptyError"
	LevelLoadError       ErrorDetails = "levelLoadError"
	FragLoadError        ErrorDetails = "fragLoadError"
	BufferStalledError   ErrorDetails = "bufferStalledError"
	BufferAppendError    ErrorDetails = "bufferAppendError"
	AttachMediaError     ErrorDetails = "attachMediaError"
	InternalException    ErrorDetails = "internalException"
)

// Error describes an engine failure. Fatal is false while the engine is
// still retrying on its own.
type Error struct {
	Type    ErrorType
	Details ErrorDetails
	Fatal   bool
	Err     error
}

func (e *Error) Error() string {
	severity := "recoverable"
	if e.Fatal {
		severity = "fatal"
	}
	if e.Err == nil {
		return fmt.Sprintf("%s %s (%s)", severity, e.Type, e.Details)
	}
	return fmt.Sprintf("%s %s (%s): %v", severity, e.Type, e.Details, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Failure builds an ErrorEvent.
func Failure(t ErrorType, details ErrorDetails, fatal bool, err error) Event {
	return Event{Kind: ErrorEvent, Err: &Error{Type: t, Details: details, Fatal: fatal, Err: err}}
}
