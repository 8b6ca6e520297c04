// Package hls is the built-in streaming engine.
//
// Loading the engine starts a loopback HTTP relay. Each engine instance
// fetches the master playlist with its own retry budget, picks a level no
// taller than the element's viewport, and points the element at the relay,
// which serves that level's media playlist with absolute segment URLs.
package hls

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coursecast/coursecast/engine"
	"github.com/coursecast/coursecast/log"
	"github.com/coursecast/coursecast/network"
)

const defaultAddr = "127.0.0.1:0"

// Loader starts the relay the first time it is loaded and returns the
// same Module afterwards.
type Loader struct {
	client *http.Client
	addr   string

	mu     sync.Mutex
	module *Module
}

// NewLoader returns a Loader that fetches playlists with client.
// A nil client means network.Client.
func NewLoader(client *http.Client) *Loader {
	if client == nil {
		client = network.Client
	}
	return &Loader{client: client, addr: defaultAddr}
}

func (l *Loader) Load(ctx context.Context) (engine.Module, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.module != nil {
		return l.module, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", l.addr)
	if err != nil {
		return nil, fmt.Errorf("start playlist relay: %w", err)
	}

	relay := newRelay()
	server := &http.Server{
		Handler:           relay.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("playlist relay: %v", err)
		}
	}()

	l.module = &Module{
		client: l.client,
		relay:  relay,
		server: server,
		base:   "http://" + listener.Addr().String(),
	}
	log.Infof("playlist relay listening on %s", l.module.base)

	return l.module, nil
}

// Close stops the relay. A later Load starts a new one.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.module == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := l.module.server.Shutdown(ctx)
	l.module = nil
	return err
}

// Module constructs engines that share one relay.
type Module struct {
	client *http.Client
	relay  *relay
	server *http.Server
	base   string
}

func (m *Module) New(cfg engine.Config, handler engine.Handler) (engine.Engine, error) {
	if handler == nil {
		return nil, errors.New("hls: nil event handler")
	}
	return newEngine(m, cfg, handler), nil
}
