package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coursecast/coursecast/auth"
	"github.com/coursecast/coursecast/filesystem"
	"github.com/coursecast/coursecast/network"
	"github.com/coursecast/coursecast/source"
	. "github.com/smartystreets/goconvey/convey"
)

type api struct {
	hits     atomic.Int32
	lastAuth atomic.Value
}

func (a *api) server() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/videos/{id}", func(w http.ResponseWriter, r *http.Request) {
		a.hits.Add(1)
		a.lastAuth.Store(r.Header.Get("Authorization"))

		if r.PathValue("id") != "v1" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(source.Video{
			ID:          "v1",
			Title:       "Intro",
			Course:      "Go Basics",
			ManifestURL: "v1/master.m3u8",
		})
	})
	mux.HandleFunc("GET /api/videos", func(w http.ResponseWriter, r *http.Request) {
		a.hits.Add(1)
		_ = json.NewEncoder(w).Encode(searchResponse{Results: []*source.Video{
			{ID: "a", Title: "Channels in depth", Course: "Concurrency"},
			{ID: "b", Title: "Goroutines", Course: "Go Basics"},
			nil,
			{Title: "missing id"},
		}})
	})
	return httptest.NewServer(mux)
}

func TestCatalog(t *testing.T) {
	Convey("Given a catalog backed by a test API", t, func() {
		filesystem.SetMemMapFs()

		a := &api{}
		srv := a.server()
		defer srv.Close()

		c := New(Options{
			BaseURL:  srv.URL + "/api/",
			Token:    func() (string, error) { return "secret", nil },
			CacheDir: "/cache/" + t.Name(),
			CacheTTL: time.Hour,
		})
		So(c.ClearCache(), ShouldBeNil)

		Convey("VideoOf returns the descriptor with the token attached", func() {
			video, err := c.VideoOf(context.Background(), "v1")
			So(err, ShouldBeNil)
			So(video.Title, ShouldEqual, "Intro")
			So(video.Source, ShouldEqual, c)
			So(a.lastAuth.Load(), ShouldEqual, "Bearer secret")

			Convey("And serves it from cache afterwards", func() {
				_, err := c.VideoOf(context.Background(), "v1")
				So(err, ShouldBeNil)
				So(a.hits.Load(), ShouldEqual, 1)
			})

			Convey("And its relative manifest resolves against the media base", func() {
				src, err := video.VideoSource("https://media.example.com/")
				So(err, ShouldBeNil)
				So(src.Manifest.MustGet(), ShouldEqual, "https://media.example.com/v1/master.m3u8")
			})
		})

		Convey("An unknown id is ErrNotFound", func() {
			_, err := c.VideoOf(context.Background(), "nope")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("Search drops malformed results and ranks by match", func() {
			videos, err := c.Search(context.Background(), "goroutines")
			So(err, ShouldBeNil)
			So(videos, ShouldHaveLength, 2)
			So(videos[0].ID, ShouldEqual, "b")

			Convey("A repeated search is cached", func() {
				again, err := c.Search(context.Background(), "  Goroutines ")
				So(err, ShouldBeNil)
				So(again, ShouldHaveLength, 2)
				So(a.hits.Load(), ShouldEqual, 1)
			})
		})

		Convey("A blank query returns nothing without a request", func() {
			videos, err := c.Search(context.Background(), " ")
			So(err, ShouldBeNil)
			So(videos, ShouldBeEmpty)
			So(a.hits.Load(), ShouldEqual, 0)
		})
	})

	Convey("Given no stored token", t, func() {
		filesystem.SetMemMapFs()

		a := &api{}
		srv := a.server()
		defer srv.Close()

		c := New(Options{
			BaseURL:  srv.URL + "/api",
			Token:    func() (string, error) { return "", auth.ErrNoToken },
			CacheDir: "/cache/anonymous",
		})

		Convey("Requests carry no Authorization header", func() {
			_, err := c.VideoOf(context.Background(), "v1")
			So(err, ShouldBeNil)
			So(a.lastAuth.Load(), ShouldEqual, "")
		})
	})

	Convey("Given a failing API", t, func() {
		filesystem.SetMemMapFs()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := New(Options{BaseURL: srv.URL, CacheDir: "/cache/failing"})

		Convey("The status is reported", func() {
			_, err := c.VideoOf(context.Background(), "v1")
			var status *network.StatusError
			So(errors.As(err, &status), ShouldBeTrue)
			So(status.Code, ShouldEqual, http.StatusInternalServerError)
		})
	})

	Convey("Without a base url requests fail early", t, func() {
		filesystem.SetMemMapFs()
		c := New(Options{CacheDir: "/cache/none"})
		_, err := c.VideoOf(context.Background(), "v1")
		So(err, ShouldNotBeNil)
	})
}
