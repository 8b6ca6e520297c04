// Package catalog is a client for the video metadata API.
//
// GET {base}/videos/{id} returns a single descriptor and
// GET {base}/videos?search={query}&limit={n} returns {"results": [...]}.
// Descriptors and search results are cached on disk.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/coursecast/coursecast/auth"
	"github.com/coursecast/coursecast/constant"
	"github.com/coursecast/coursecast/key"
	"github.com/coursecast/coursecast/log"
	"github.com/coursecast/coursecast/network"
	"github.com/coursecast/coursecast/source"
	"github.com/coursecast/coursecast/where"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

const Name = "catalog"

// ErrNotFound is returned by VideoOf for an unknown id.
var ErrNotFound = errors.New("video not found")

type Options struct {
	// BaseURL is the API root, e.g. https://api.example.com/api.
	BaseURL string

	// Token returns the bearer token. A nil func or ErrNoToken sends no
	// Authorization header.
	Token func() (string, error)

	Client      *http.Client
	CacheDir    string
	CacheTTL    time.Duration
	SearchLimit int
}

// Catalog implements source.Source over the REST API.
type Catalog struct {
	opts     Options
	videos   *cacher[*source.Video]
	searches *cacher[[]string]
}

func New(opts Options) *Catalog {
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.Client == nil {
		opts.Client = network.Client
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = 20
	}

	return &Catalog{
		opts:     opts,
		videos:   newCacher[*source.Video](opts.CacheDir, "catalog_videos.json", opts.CacheTTL),
		searches: newCacher[[]string](opts.CacheDir, "catalog_search.json", opts.CacheTTL),
	}
}

// FromConfig builds a Catalog from the catalog section of the config and
// the keyring token.
func FromConfig() *Catalog {
	return New(Options{
		BaseURL:     viper.GetString(key.CatalogBaseURL),
		Token:       auth.Token,
		CacheDir:    where.Cache(),
		CacheTTL:    time.Duration(viper.GetInt(key.CatalogCacheTTL)) * time.Minute,
		SearchLimit: viper.GetInt(key.CatalogSearchLimit),
	})
}

// MediaBaseURL is what relative descriptor URLs resolve against:
// catalog.media_base_url when set, the API base otherwise.
func MediaBaseURL() string {
	if base := viper.GetString(key.CatalogMediaBaseURL); base != "" {
		return base
	}
	return viper.GetString(key.CatalogBaseURL)
}

func (c *Catalog) Name() string { return Name }
func (c *Catalog) ID() string   { return Name }

func (c *Catalog) VideoOf(ctx context.Context, id string) (*source.Video, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("empty video id")
	}

	if cached, ok := c.videos.Get(id).Get(); ok {
		cached.Source = c
		return cached, nil
	}

	var video source.Video
	if err := c.get(ctx, "/videos/"+url.PathEscape(id), nil, &video); err != nil {
		var status *network.StatusError
		if errors.As(err, &status) && status.Code == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}

	if video.ID == "" {
		video.ID = id
	}
	video.Source = c

	if err := c.videos.Set(id, &video); err != nil {
		log.Warnf("catalog: cache video %s: %v", id, err)
	}

	return &video, nil
}

type searchResponse struct {
	Results []*source.Video `json:"results"`
}

// Search queries the API and ranks the results by fuzzy distance of the
// query to "course title".
func (c *Catalog) Search(ctx context.Context, query string) ([]*source.Video, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	if ids, ok := c.searches.Get(query).Get(); ok {
		videos, err := c.fromCache(ids)
		if err == nil {
			return videos, nil
		}
	}

	params := url.Values{}
	params.Set("search", query)
	params.Set("limit", strconv.Itoa(c.opts.SearchLimit))

	var response searchResponse
	if err := c.get(ctx, "/videos", params, &response); err != nil {
		return nil, err
	}

	videos := lo.Filter(response.Results, func(v *source.Video, _ int) bool {
		return v != nil && v.ID != ""
	})
	for _, v := range videos {
		v.Source = c
		if err := c.videos.Set(v.ID, v); err != nil {
			log.Warnf("catalog: cache video %s: %v", v.ID, err)
		}
	}

	rank(query, videos)

	ids := lo.Map(videos, func(v *source.Video, _ int) string { return v.ID })
	if err := c.searches.Set(query, ids); err != nil {
		log.Warnf("catalog: cache search %q: %v", query, err)
	}

	return videos, nil
}

func (c *Catalog) fromCache(ids []string) ([]*source.Video, error) {
	videos := make([]*source.Video, 0, len(ids))
	for _, id := range ids {
		video, ok := c.videos.Get(id).Get()
		if !ok {
			return nil, fmt.Errorf("video %s evicted", id)
		}
		video.Source = c
		videos = append(videos, video)
	}
	return videos, nil
}

// ClearCache drops every cached descriptor and search.
func (c *Catalog) ClearCache() error {
	return errors.Join(c.videos.Clear(), c.searches.Clear())
}

// rank orders videos by fuzzy match quality. Videos that do not match at
// all keep their API order after the ones that do.
func rank(query string, videos []*source.Video) {
	query = strings.ToLower(query)

	distance := func(v *source.Video) int {
		d := fuzzy.RankMatchNormalizedFold(query, v.Course+" "+v.Title)
		if d < 0 {
			return int(^uint(0) >> 1)
		}
		return d
	}

	sort.SliceStable(videos, func(i, j int) bool {
		return distance(videos[i]) < distance(videos[j])
	})
}

func (c *Catalog) get(ctx context.Context, path string, params url.Values, into any) error {
	if c.opts.BaseURL == "" {
		return fmt.Errorf("%s is not set", key.CatalogBaseURL)
	}

	endpoint := c.opts.BaseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	headers := map[string]string{constant.HeaderAccept: constant.MIMETypeJSON}
	if c.opts.Token != nil {
		token, err := c.opts.Token()
		switch {
		case err == nil && token != "":
			headers[constant.HeaderAuthorization] = "Bearer " + token
		case err != nil && !errors.Is(err, auth.ErrNoToken):
			log.Warnf("catalog: read token: %v", err)
		}
	}

	log.WithFields(log.Fields{"endpoint": endpoint}).Debug("catalog request")

	resp, err := network.Get(ctx, c.opts.Client, endpoint, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}
