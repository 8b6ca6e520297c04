package hls

import (
	"context"
	"net/http"
	"sync"

	"github.com/coursecast/coursecast/constant"
	"github.com/coursecast/coursecast/engine"
	"github.com/coursecast/coursecast/log"
)

type route struct {
	levelURL string
	retries  int
	fetch    func(ctx context.Context, url string, retries int, details engine.ErrorDetails) ([]byte, error)
	emit     func(engine.Event)
}

// relay serves the selected level of every live engine.
type relay struct {
	mu     sync.RWMutex
	routes map[string]*route
}

func newRelay() *relay {
	return &relay{routes: make(map[string]*route)}
}

func routePath(id string) string {
	return "/" + id + "/level.m3u8"
}

func (r *relay) add(id string, rt *route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[id] = rt
}

func (r *relay) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.routes, id)
}

func (r *relay) get(id string) (*route, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.routes[id]
	return rt, ok
}

func (r *relay) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{id}/level.m3u8", r.serveLevel)
	return mux
}

func (r *relay) serveLevel(w http.ResponseWriter, req *http.Request) {
	id := req.PathValue("id")

	rt, ok := r.get(id)
	if !ok {
		http.NotFound(w, req)
		return
	}

	body, err := rt.fetch(req.Context(), rt.levelURL, rt.retries, engine.LevelLoadError)
	if err != nil {
		if req.Context().Err() == nil {
			rt.emit(engine.Failure(engine.NetworkError, engine.LevelLoadError, true, err))
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	playlist, failure := rewriteMediaPlaylist(rt.levelURL, body)
	if failure != nil {
		rt.emit(engine.Event{Kind: engine.ErrorEvent, Err: failure})
		http.Error(w, failure.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set(constant.HeaderContentType, constant.MIMETypeHLS)
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(playlist); err != nil {
		log.Debugf("relay %s: write: %v", id, err)
	}
}
