package playback

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/coursecast/coursecast/engine"
	"github.com/coursecast/coursecast/player"
	"github.com/coursecast/coursecast/source"
)

// Guard owns at most one playback session and serializes everything that
// happens to it.
type Guard struct {
	probe    CapabilityProbe
	loader   engine.Loader
	config   engine.Config
	observer Observer
	tracer   Tracer

	exec    serial
	events  serial
	pending sync.WaitGroup
	latest  atomic.Pointer[Snapshot]

	// only touched on exec
	session *session
	last    *session
}

// Option configures a Guard.
type Option func(*Guard)

// WithProbe replaces NativeManifestSupport.
func WithProbe(probe CapabilityProbe) Option {
	return func(g *Guard) { g.probe = probe }
}

// WithLoader sets the streaming engine loader. Without one, engine
// strategies fail with KindEngineLoad and degrade.
func WithLoader(loader engine.Loader) Option {
	return func(g *Guard) { g.loader = loader }
}

// WithEngineConfig overrides engine.DefaultConfig.
func WithEngineConfig(cfg engine.Config) Option {
	return func(g *Guard) { g.config = cfg }
}

// WithObserver registers the hosting UI's callbacks. If observer also
// implements Tracer it receives every transition.
func WithObserver(observer Observer) Option {
	return func(g *Guard) {
		g.observer = observer
		g.tracer, _ = observer.(Tracer)
	}
}

// NewGuard returns an idle Guard. Without options it probes elements with
// NativeManifestSupport, has no streaming engine and reports to nobody.
func NewGuard(opts ...Option) *Guard {
	g := &Guard{
		probe:    NativeManifestSupport,
		config:   engine.DefaultConfig(),
		observer: ObserverFuncs{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var errNilElement = errors.New("playback: nil element")

// Attach binds src to el, destroying any current session first. An invalid
// source is rejected before anything is touched and leaves the current
// session alone.
//
// Attach returns once the previous session is torn down and the new one has
// started. An engine load may still be in flight; Wait observes it.
func (g *Guard) Attach(ctx context.Context, el player.Element, src source.VideoSource) error {
	if el == nil {
		return errNilElement
	}
	if err := src.Validate(); err != nil {
		return &Error{Kind: KindInvalidSource, Err: err}
	}

	<-g.post(func() {
		g.release()
		g.start(ctx, el, src)
	})
	return nil
}

// Destroy tears down the current session. It is idempotent and safe when
// nothing is attached. Once it returns the element is not touched again
// until the next Attach.
func (g *Guard) Destroy() {
	<-g.post(g.release)
}

// MediaError reports a fatal element error for the current source. The
// session degrades to its next strategy or fails terminally.
func (g *Guard) MediaError(err error) {
	g.post(func() {
		s := g.session
		if s == nil || s.adapter == nil {
			return
		}
		if s.state == Failed || s.state == Destroyed {
			return
		}
		g.fail(s, &Error{Kind: KindMedia, Strategy: s.strategy, Err: err})
	})
}

// Wait blocks until every in-flight engine load has been applied or
// discarded and the callbacks it caused were delivered. It must not be
// called from an Observer callback.
func (g *Guard) Wait() {
	g.pending.Wait()
	<-g.events.do(func() {})
}

// Snapshot returns the state of the current or most recent session.
// ok is false before the first Attach.
func (g *Guard) Snapshot() (Snapshot, bool) {
	snap := g.latest.Load()
	if snap == nil {
		return Snapshot{}, false
	}
	return *snap, true
}

// post runs fn on the executor, then delivers the observer callbacks it
// queued. Callbacks never run on the executor, so they may call Attach or
// Destroy.
func (g *Guard) post(fn func()) <-chan struct{} {
	done := g.exec.do(func() {
		fn()
		if g.last != nil {
			g.latest.Store(g.last.snapshot())
		}
	})
	g.events.flush()
	return done
}

// notify queues an observer callback. Only called on the executor.
func (g *Guard) notify(fn func()) {
	g.events.enqueue(fn)
}

func (g *Guard) start(ctx context.Context, el player.Element, src source.VideoSource) {
	s := newSession(ctx, el, src, g.transition)
	g.session, g.last = s, s

	s.log.WithField("source", src.String()).Info("attaching")
	g.setLoading(s, true)

	order, err := ResolveStrategyOrder(src, func() bool { return g.probe(el) })
	if err != nil {
		g.terminate(s, &Error{Kind: KindInvalidSource, Err: err})
		return
	}
	s.order = order
	s.log.WithField("order", order).Debug("resolved strategies")

	g.advance(s, nil)
}

// advance attaches the next untried strategy or fails terminally with cause.
func (g *Guard) advance(s *session, cause *Error) {
	next, ok := s.next()
	if !ok {
		g.terminate(s, cause)
		return
	}

	s.attempted = append(s.attempted, next)
	s.strategy = next
	s.log = s.log.WithField("strategy", next)
	url := next.url(s.src)

	if next != EngineManifest {
		a := newDirectAdapter(next, s.el)
		s.adapter = a
		if err := a.Attach(url); err != nil {
			kind := KindMedia
			if next == NativeManifest {
				kind = KindManifest
			}
			g.fail(s, &Error{Kind: kind, Strategy: next, Err: err})
			return
		}
		g.settle(s)
		return
	}

	a := &engineAdapter{
		loader:  g.loader,
		config:  g.config,
		post:    g.post,
		pending: &g.pending,
		log:     s.log,
		hooks: engineHooks{
			state: func(to State) {
				if g.session == s {
					s.setState(to)
				}
			},
			ready: func() {
				if g.session == s {
					g.settle(s)
				}
			},
			fatal: func(err *Error) {
				if g.session == s {
					g.fail(s, err)
				}
			},
		},
	}
	s.adapter = a
	a.Attach(s.ctx, s.el, url)
}

// settle marks the current strategy as playing.
func (g *Guard) settle(s *session) {
	if s.degraded {
		s.setState(Degraded)
	} else {
		s.setState(Ready)
	}

	s.log.Info("ready")
	strategy := s.strategy
	g.notify(func() { g.observer.OnReady(strategy) })
	g.setLoading(s, false)
}

// fail releases the failed adapter and moves on. A session that had not
// reached Ready passes through Failed; one that had goes straight to
// Degraded if a fallback attaches.
func (g *Guard) fail(s *session, err *Error) {
	s.log.WithError(err).Warn("strategy failed")

	if s.adapter != nil {
		if derr := s.adapter.Destroy(); derr != nil {
			s.log.WithError(derr).Warn("teardown after failure")
		}
		s.adapter = nil
	}

	if !s.state.Playing() {
		s.setState(Failed)
	}
	s.degraded = true

	g.advance(s, err)
}

func (g *Guard) terminate(s *session, cause *Error) {
	s.setState(Failed)

	if !s.fatalReported {
		s.fatalReported = true
		err := &Error{Kind: KindEngineUnavailable, Strategy: s.strategy, Err: cause}
		s.log.WithError(err).Error("playback failed")
		g.notify(func() { g.observer.OnFatalError(err) })
	}
	g.setLoading(s, false)
}

// release destroys the current session. Pending engine loads for it are
// discarded when they arrive.
func (g *Guard) release() {
	s := g.session
	if s == nil {
		return
	}
	g.session = nil
	s.cancel()

	if s.adapter != nil {
		if err := s.adapter.Destroy(); err != nil {
			s.log.WithError(err).Warn("teardown")
		}
		s.adapter = nil
	}

	s.setState(Destroyed)
	g.setLoading(s, false)
	s.log.Info("destroyed")
}

func (g *Guard) setLoading(s *session, loading bool) {
	if s.loading == loading {
		return
	}
	s.loading = loading
	g.notify(func() { g.observer.OnLoadingStateChange(loading) })
}

func (g *Guard) transition(t Transition) {
	if g.tracer != nil {
		g.notify(func() { g.tracer.OnTransition(t) })
	}
}
