package catalog

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/coursecast/coursecast/filesystem"
	"github.com/metafates/gache"
	"github.com/samber/mo"
)

type cacheData[T any] struct {
	Entries map[string]T `json:"entries"`
}

// cacher is a keyed view over a single gache file.
type cacher[T any] struct {
	internal *gache.Cache[*cacheData[T]]
	mu       sync.RWMutex
}

func newCacher[T any](dir, name string, lifetime time.Duration) *cacher[T] {
	return &cacher[T]{
		internal: gache.New[*cacheData[T]](&gache.Options{
			Path:       filepath.Join(dir, name),
			Lifetime:   lifetime,
			FileSystem: &filesystem.GacheFs{},
		}),
	}
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.Join(strings.Fields(key), " "))
}

func (c *cacher[T]) Get(key string) mo.Option[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, expired, err := c.internal.Get()
	if err != nil || expired || data == nil {
		return mo.None[T]()
	}

	if value, ok := data.Entries[normalizeKey(key)]; ok {
		return mo.Some(value)
	}
	return mo.None[T]()
}

func (c *cacher[T]) Set(key string, value T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, expired, err := c.internal.Get()
	if err != nil {
		return err
	}

	if expired || data == nil {
		data = &cacheData[T]{Entries: make(map[string]T)}
	}
	data.Entries[normalizeKey(key)] = value
	return c.internal.Set(data)
}

func (c *cacher[T]) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.internal.Set(&cacheData[T]{Entries: make(map[string]T)})
}
