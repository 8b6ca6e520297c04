package playback

import (
	"context"

	"github.com/coursecast/coursecast/log"
	"github.com/coursecast/coursecast/player"
	"github.com/coursecast/coursecast/source"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// session is one attach of one source to one element. It is never reused.
type session struct {
	id        string
	el        player.Element
	src       source.VideoSource
	ctx       context.Context
	cancel    context.CancelFunc
	order     []Strategy
	attempted []Strategy
	strategy  Strategy
	adapter   Adapter
	state     State
	trace     []Transition

	degraded      bool
	loading       bool
	fatalReported bool

	onTransition func(Transition)
	log          *logrus.Entry
}

func newSession(ctx context.Context, el player.Element, src source.VideoSource, onTransition func(Transition)) *session {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(ctx)

	return &session{
		id:           id,
		el:           el,
		src:          src,
		ctx:          ctx,
		cancel:       cancel,
		state:        Idle,
		onTransition: onTransition,
		log:          log.WithFields(log.Fields{"session": id, "element": el.ID()}),
	}
}

func (s *session) setState(to State) {
	if s.state == to {
		return
	}

	t := Transition{Session: s.id, From: s.state, To: to, Strategy: s.strategy}
	s.state = to
	s.trace = append(s.trace, t)

	s.log.WithFields(log.Fields{"from": t.From, "to": t.To, "strategy": t.Strategy}).Debug("transition")
	if s.onTransition != nil {
		s.onTransition(t)
	}
}

// next returns the first strategy in the order not yet attempted.
func (s *session) next() (Strategy, bool) {
	return lo.Find(s.order, func(st Strategy) bool {
		return !lo.Contains(s.attempted, st)
	})
}

// Snapshot is a copy of a session's observable state.
type Snapshot struct {
	Session   string       `json:"session"`
	State     State        `json:"state"`
	Strategy  Strategy     `json:"strategy"`
	Order     []Strategy   `json:"order"`
	Attempted []Strategy   `json:"attempted"`
	Trace     []Transition `json:"trace"`
}

func (s *session) snapshot() *Snapshot {
	return &Snapshot{
		Session:   s.id,
		State:     s.state,
		Strategy:  s.strategy,
		Order:     append([]Strategy(nil), s.order...),
		Attempted: append([]Strategy(nil), s.attempted...),
		Trace:     append([]Transition(nil), s.trace...),
	}
}

// States returns the To side of every transition in order.
func (s Snapshot) States() []State {
	return lo.Map(s.Trace, func(t Transition, _ int) State { return t.To })
}
