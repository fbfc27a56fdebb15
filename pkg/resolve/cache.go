package resolve

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/goliatone/go-smartrender/pkg/registry"
	"github.com/goliatone/go-smartrender/pkg/subject"
)

// DefaultCacheSize bounds the memo table when callers do not choose a size.
const DefaultCacheSize = 256

// Lookup is the fallback consulted on a cache miss, usually Resolver.Resolve.
type Lookup func(t *subject.Type, h Hints) (registry.Config, bool)

// Result memoises one resolution outcome. Misses are cached too: a repeated
// miss is as hot as a repeated hit.
type Result struct {
	Config registry.Config
	Found  bool
}

// Cache is a bounded, LRU-evicting memo table over a Lookup. Purge must be
// wired to every store mutation (registry.Store.OnMutate) so no entry
// computed against a mutated store is ever served.
type Cache struct {
	entries *lru.Cache[registry.Key, Result]
	lookup  Lookup
	gen     atomic.Uint64
}

// NewCache creates a cache holding at most size entries. Sizes below 1 fall
// back to DefaultCacheSize.
func NewCache(size int, lookup Lookup) (*Cache, error) {
	if lookup == nil {
		return nil, fmt.Errorf("resolve: cache lookup is required")
	}
	if size < 1 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[registry.Key, Result](size)
	if err != nil {
		return nil, fmt.Errorf("resolve: create cache: %w", err)
	}
	return &Cache{entries: entries, lookup: lookup}, nil
}

// Resolve serves from the memo table, falling back to the lookup on a miss
// and storing the outcome. A Purge that lands between the fallback and the
// store invalidates the outcome, so it is returned but not cached.
func (c *Cache) Resolve(t *subject.Type, h Hints) (registry.Config, bool) {
	if c == nil || t == nil {
		return registry.Config{}, false
	}

	key := registry.Key{Type: t.Name(), Model: h.Model, Variation: h.Variation}
	if res, ok := c.entries.Get(key); ok {
		return res.Config, res.Found
	}

	gen := c.gen.Load()
	cfg, found := c.lookup(t, h)
	if c.gen.Load() == gen {
		c.entries.Add(key, Result{Config: cfg, Found: found})
	}
	return cfg, found
}

// Purge drops every entry. Wired to store mutations; also safe to call
// manually.
func (c *Cache) Purge() {
	if c == nil {
		return
	}
	c.gen.Add(1)
	c.entries.Purge()
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}
