package hls

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"

	"github.com/avast/retry-go/v4"
	"github.com/coursecast/coursecast/constant"
	"github.com/coursecast/coursecast/engine"
	"github.com/coursecast/coursecast/log"
	"github.com/coursecast/coursecast/network"
	"github.com/coursecast/coursecast/player"
	"github.com/google/uuid"
)

const maxPlaylistSize = 8 << 20

var errDestroyed = errors.New("hls: engine destroyed")

// Engine plays one manifest into one element.
type Engine struct {
	id      string
	cfg     engine.Config
	handler engine.Handler
	module  *Module

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	el        player.Element
	url       string
	started   bool
	destroyed bool
}

func newEngine(m *Module, cfg engine.Config, handler engine.Handler) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		id:      uuid.NewString(),
		cfg:     cfg,
		handler: handler,
		module:  m,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// AttachMedia binds el. Loading starts once both element and source are set.
func (e *Engine) AttachMedia(el player.Element) error {
	if el == nil {
		return errors.New("hls: nil element")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed {
		return errDestroyed
	}
	e.el = el
	e.maybeStart()
	return nil
}

func (e *Engine) LoadSource(url string) error {
	if url == "" {
		return errors.New("hls: empty manifest url")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed {
		return errDestroyed
	}
	e.url = url
	e.maybeStart()
	return nil
}

func (e *Engine) DetachMedia() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.el = nil
	return nil
}

// Destroy stops loading and unregisters the relay route. It does not wait
// for the load goroutine, which may be the one calling it from an event
// handler. No events are emitted and the element is not touched afterwards.
func (e *Engine) Destroy() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed {
		return nil
	}
	e.destroyed = true
	e.cancel()
	e.module.relay.remove(e.id)
	return nil
}

// maybeStart must be called with mu held.
func (e *Engine) maybeStart() {
	if e.started || e.el == nil || e.url == "" {
		return
	}
	e.started = true
	go e.run(e.el, e.url)
}

func (e *Engine) run(el player.Element, manifestURL string) {
	body, err := e.fetch(e.ctx, manifestURL, e.cfg.ManifestMaxRetry, engine.ManifestLoadError)
	if err != nil {
		if e.ctx.Err() != nil {
			return
		}
		e.emit(engine.Failure(engine.NetworkError, loadDetails(err, engine.ManifestLoadError), true, err))
		return
	}

	levels, failure := parseLevels(manifestURL, body)
	if failure != nil {
		e.emit(engine.Event{Kind: engine.ErrorEvent, Err: failure})
		return
	}

	index := selectLevel(levels, e.cfg, viewportHeight(el))
	level := levels[index]

	log.WithFields(log.Fields{
		"engine": e.id,
		"levels": len(levels),
		"level":  level.String(),
	}).Info("manifest parsed")

	if b, ok := el.(player.Buffered); ok {
		err := b.SetBuffering(player.Buffering{
			Back:     e.cfg.BackBufferLength,
			Forward:  e.cfg.MaxBufferLength,
			MaxBytes: e.cfg.MaxBufferSize,
		})
		if err != nil {
			log.Warnf("engine %s: set buffering: %v", e.id, err)
		}
	}

	if err := e.point(el, level); err != nil {
		e.emit(engine.Failure(engine.OtherError, engine.AttachMediaError, true, err))
		return
	}

	e.emit(engine.Event{Kind: engine.ManifestParsed, Levels: levels, Level: index})
	e.emit(engine.Event{Kind: engine.LevelSwitched, Levels: levels, Level: index})
}

// point registers the relay route for level and hands it to el. Nothing
// happens once Destroy has run; Destroy waits for a SetSource in progress.
func (e *Engine) point(el player.Element, level engine.Level) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed {
		return errDestroyed
	}

	e.module.relay.add(e.id, &route{
		levelURL: level.URL,
		retries:  e.cfg.LevelMaxRetry,
		fetch:    e.fetch,
		emit:     e.emit,
	})
	return el.SetSource(e.module.base + routePath(e.id))
}

// emit drops events once the engine is destroyed.
func (e *Engine) emit(ev engine.Event) {
	if e.ctx.Err() != nil {
		return
	}
	e.handler(ev)
}

// fetch GETs a playlist, retrying up to retries times. Every failed attempt
// except the last is reported as a non-fatal error event.
func (e *Engine) fetch(ctx context.Context, url string, retries int, details engine.ErrorDetails) ([]byte, error) {
	attempts := uint(max(0, retries)) + 1

	return retry.DoWithData(
		func() ([]byte, error) {
			resp, err := network.Get(ctx, e.module.client, url, map[string]string{
				constant.HeaderAccept: constant.MIMETypeHLS + ", */*",
			})
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()

			return io.ReadAll(io.LimitReader(resp.Body, maxPlaylistSize))
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(e.cfg.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			if n+1 < attempts {
				e.emit(engine.Failure(engine.NetworkError, loadDetails(err, details), false, err))
			}
		}),
	)
}

// retryable rejects client errors other than timeouts and throttling.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	var status *network.StatusError
	if errors.As(err, &status) {
		switch status.Code {
		case http.StatusRequestTimeout, http.StatusTooManyRequests:
			return true
		}
		return status.Code >= 500
	}

	return true
}

func loadDetails(err error, details engine.ErrorDetails) engine.ErrorDetails {
	if details != engine.ManifestLoadError {
		return details
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return engine.ManifestLoadTimeout
	}
	return details
}

func viewportHeight(el player.Element) int {
	sizer, ok := el.(player.Sizer)
	if !ok {
		return 0
	}

	_, height, err := sizer.Size()
	if err != nil {
		return 0
	}
	return height
}
