// Package engine defines the streaming engine the playback controller drives
// when an element cannot play HLS manifests on its own.
//
// Engines are loaded lazily through a Loader, constructed from a Module with
// an explicit Config, and report progress through Events.
package engine

import (
	"context"

	"github.com/coursecast/coursecast/player"
)

// Engine is one streaming engine instance bound to at most one element.
type Engine interface {
	// AttachMedia binds the engine to el.
	AttachMedia(el player.Element) error

	// LoadSource starts loading the manifest at url. Completion is reported
	// through a ManifestParsed or Error event.
	LoadSource(url string) error

	// DetachMedia unbinds the element.
	DetachMedia() error

	// Destroy stops all network activity. The engine is unusable afterwards.
	Destroy() error
}

// Handler receives engine events. It may be called from any goroutine.
type Handler func(Event)

// Module is a loaded engine implementation.
type Module interface {
	New(cfg Config, handler Handler) (Engine, error)
}

// Loader resolves the engine module. Loading may be slow and is the only
// asynchronous step before an engine exists.
type Loader interface {
	Load(ctx context.Context) (Module, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) (Module, error)

func (f LoaderFunc) Load(ctx context.Context) (Module, error) {
	return f(ctx)
}

// ModuleFunc adapts a function to Module.
type ModuleFunc func(cfg Config, handler Handler) (Engine, error)

func (f ModuleFunc) New(cfg Config, handler Handler) (Engine, error) {
	return f(cfg, handler)
}
