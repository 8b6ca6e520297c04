package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/coursecast/coursecast/engine"
	"github.com/coursecast/coursecast/player"
	"github.com/sirupsen/logrus"
)

// Adapter binds one strategy to an element. Destroy is idempotent and
// releases everything the adapter acquired.
type Adapter interface {
	Strategy() Strategy
	Destroy() error
}

// directAdapter hands a URL straight to the element. It serves both
// Progressive and NativeManifest; neither ever creates an engine.
type directAdapter struct {
	strategy  Strategy
	el        player.Element
	destroyed bool
}

func newDirectAdapter(strategy Strategy, el player.Element) *directAdapter {
	return &directAdapter{strategy: strategy, el: el}
}

func (a *directAdapter) Strategy() Strategy { return a.strategy }

func (a *directAdapter) Attach(url string) error {
	if err := a.el.SetSource(url); err != nil {
		return fmt.Errorf("set source: %w", err)
	}
	return nil
}

func (a *directAdapter) Destroy() error {
	if a.destroyed {
		return nil
	}
	a.destroyed = true
	return a.el.ClearSource()
}

var errNoLoader = errors.New("no streaming engine configured")

// engineHooks are how an engineAdapter reports to its session.
type engineHooks struct {
	state func(State)
	ready func()
	fatal func(*Error)
}

// engineAdapter drives Loader → Module.New → AttachMedia → LoadSource.
// Every method except the load goroutine runs on the Guard's executor.
type engineAdapter struct {
	loader  engine.Loader
	config  engine.Config
	post    func(func()) <-chan struct{}
	pending *sync.WaitGroup
	hooks   engineHooks
	log     *logrus.Entry

	state     State
	el        player.Element
	url       string
	eng       engine.Engine
	cancel    context.CancelFunc
	destroyed bool
}

func (a *engineAdapter) Strategy() Strategy { return EngineManifest }

// Attach starts loading the engine module. It returns before the load
// finishes; the outcome arrives through the hooks.
func (a *engineAdapter) Attach(ctx context.Context, el player.Element, url string) {
	a.el, a.url = el, url
	a.setState(LoadingEngineModule)

	if a.loader == nil {
		a.fail(KindEngineLoad, errNoLoader)
		return
	}

	var loadCtx context.Context
	if a.config.LoadTimeout > 0 {
		loadCtx, a.cancel = context.WithTimeout(ctx, a.config.LoadTimeout)
	} else {
		loadCtx, a.cancel = context.WithCancel(ctx)
	}

	a.pending.Add(1)
	go func() {
		defer a.pending.Done()
		module, err := a.loader.Load(loadCtx)
		<-a.post(func() { a.loaded(module, err) })
	}()
}

func (a *engineAdapter) loaded(module engine.Module, err error) {
	if a.destroyed || a.state != LoadingEngineModule {
		a.log.Debug("discarding engine load result for a superseded session")
		return
	}
	a.cancel()

	if err == nil && module == nil {
		err = errNoLoader
	}
	if err != nil {
		a.fail(KindEngineLoad, fmt.Errorf("load engine: %w", err))
		return
	}

	a.setState(Configuring)
	eng, err := module.New(a.config, a.handle)
	if err != nil {
		a.fail(KindEngineLoad, fmt.Errorf("construct engine: %w", err))
		return
	}
	a.eng = eng

	a.setState(Attaching)
	if err := eng.AttachMedia(a.el); err != nil {
		a.fail(KindEngineLoad, fmt.Errorf("attach media: %w", err))
		return
	}
	if err := eng.LoadSource(a.url); err != nil {
		a.fail(KindManifest, fmt.Errorf("load source: %w", err))
	}
}

// handle is the engine's event handler and may run on any goroutine.
func (a *engineAdapter) handle(ev engine.Event) {
	a.post(func() { a.apply(ev) })
}

func (a *engineAdapter) apply(ev engine.Event) {
	if a.destroyed || a.state == Failed {
		return
	}

	switch ev.Kind {
	case engine.ManifestParsed:
		if a.state != Attaching {
			return
		}
		a.log.WithField("levels", len(ev.Levels)).Info("manifest parsed")
		a.state = Ready
		a.hooks.ready()
	case engine.LevelSwitched:
		a.log.WithField("level", ev.Level).Debug("level switched")
	case engine.ErrorEvent:
		if ev.Err == nil {
			return
		}
		if Classify(ev.Err) == NonFatal {
			a.log.WithError(ev.Err).Warn("engine error, still retrying")
			return
		}
		a.fail(kindOf(ev.Err), ev.Err)
	}
}

func (a *engineAdapter) setState(to State) {
	a.state = to
	a.hooks.state(to)
}

func (a *engineAdapter) fail(kind ErrorKind, err error) {
	a.state = Failed
	a.hooks.fatal(&Error{Kind: kind, Strategy: EngineManifest, Err: err})
}

// Destroy releases the engine, detaches it and clears the element, in that
// order. It is safe from any state, including mid-load.
func (a *engineAdapter) Destroy() error {
	if a.destroyed {
		return nil
	}
	a.destroyed = true

	if a.cancel != nil {
		a.cancel()
	}

	var errs []error
	if a.eng != nil {
		errs = append(errs, a.eng.Destroy(), a.eng.DetachMedia())
		a.eng = nil
	}
	if a.el != nil {
		errs = append(errs, a.el.ClearSource())
	}

	a.state = Destroyed
	return errors.Join(errs...)
}
