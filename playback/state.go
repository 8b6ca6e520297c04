package playback

// State is the lifecycle state of a session.
type State int

const (
	Idle State = iota
	LoadingEngineModule
	Configuring
	Attaching
	Ready
	Degraded
	Failed
	Destroyed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case LoadingEngineModule:
		return "LoadingEngineModule"
	case Configuring:
		return "Configuring"
	case Attaching:
		return "Attaching"
	case Ready:
		return "Ready"
	case Degraded:
		return "Degraded"
	case Failed:
		return "Failed"
	case Destroyed:
		return "Destroyed"
	default:
		return "Unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Playing reports whether the element has a working source.
func (s State) Playing() bool {
	return s == Ready || s == Degraded
}

// Transition is one recorded state change.
type Transition struct {
	Session  string   `json:"session"`
	From     State    `json:"from"`
	To       State    `json:"to"`
	Strategy Strategy `json:"strategy"`
}
