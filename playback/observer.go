package playback

// Observer is the event surface for the hosting UI. Callbacks are delivered
// in order right after the step that caused them, outside the Guard's
// executor; they may call back into the Guard but must not block on
// Guard.Wait.
type Observer interface {
	OnLoadingStateChange(loading bool)
	OnReady(strategy Strategy)
	// OnFatalError fires at most once per session, only when every strategy failed.
	OnFatalError(err *Error)
}

// Tracer is optionally implemented by observers that want every transition.
type Tracer interface {
	OnTransition(t Transition)
}

// ObserverFuncs adapts plain functions to Observer and Tracer. Nil fields are skipped.
type ObserverFuncs struct {
	Loading    func(loading bool)
	Ready      func(strategy Strategy)
	Fatal      func(err *Error)
	Transition func(t Transition)
}

func (o ObserverFuncs) OnLoadingStateChange(loading bool) {
	if o.Loading != nil {
		o.Loading(loading)
	}
}

func (o ObserverFuncs) OnReady(strategy Strategy) {
	if o.Ready != nil {
		o.Ready(strategy)
	}
}

func (o ObserverFuncs) OnFatalError(err *Error) {
	if o.Fatal != nil {
		o.Fatal(err)
	}
}

func (o ObserverFuncs) OnTransition(t Transition) {
	if o.Transition != nil {
		o.Transition(t)
	}
}
