// Package query remembers past searches and suggests them back.
package query

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/coursecast/coursecast/filesystem"
	"github.com/coursecast/coursecast/key"
	"github.com/coursecast/coursecast/where"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
	"golang.org/x/exp/slices"
)

type record struct {
	Rank  int    `json:"rank"`
	Query string `json:"query"`
}

var (
	mu     sync.Mutex
	once   sync.Once
	cacher *gache.Cache[map[string]*record]
)

func history() *gache.Cache[map[string]*record] {
	once.Do(func() {
		cacher = gache.New[map[string]*record](&gache.Options{
			Path:       filepath.Join(where.Cache(), "queries.json"),
			FileSystem: &filesystem.GacheFs{},
		})
	})
	return cacher
}

func load() map[string]*record {
	records, expired, err := history().Get()
	if err != nil || expired || records == nil {
		return make(map[string]*record)
	}
	return records
}

// Remember adds weight to the rank of q.
func Remember(q string, weight int) error {
	q = sanitize(q)
	if q == "" {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	records := load()
	if r, ok := records[q]; ok {
		r.Rank += weight
	} else {
		records[q] = &record{Rank: weight, Query: q}
	}

	return history().Set(records)
}

// Suggest returns the best ranked past query matching q.
func Suggest(q string) mo.Option[string] {
	suggestions := SuggestMany(q)
	if len(suggestions) == 0 {
		return mo.None[string]()
	}
	return mo.Some(suggestions[0])
}

// SuggestMany returns past queries fuzzy matching q, highest rank first.
// It returns nothing when search.query_suggestions is off.
func SuggestMany(q string) []string {
	if !viper.GetBool(key.SearchQuerySuggestions) {
		return nil
	}

	q = sanitize(q)

	mu.Lock()
	records := lo.Filter(lo.Values(load()), func(r *record, _ int) bool {
		return fuzzy.Match(q, r.Query)
	})
	mu.Unlock()

	slices.SortFunc(records, func(a, b *record) int {
		if a.Rank != b.Rank {
			return b.Rank - a.Rank
		}
		return strings.Compare(a.Query, b.Query)
	})

	return lo.Map(records, func(r *record, _ int) string {
		return r.Query
	})
}

func sanitize(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}
