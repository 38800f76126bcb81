// Package plancache memoizes the expensive steps of turning a surface
// query into an executable plan: translation to a logical tree,
// optimization, and physical strategy selection. A cache hit skips all
// three and returns the already-built physicalplan.Plan directly.
package plancache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/arrowkit/arrowkit/src/physicalplan"
)

// DefaultCapacity is the number of distinct canonical query shapes kept
// resident before the least-recently-used entry is evicted.
const DefaultCapacity = 100

// Cache stores physical plans keyed by a query's canonical shape
// (translator.CanonicalKey abstracts every literal constant to "?", so two
// queries differing only in a WHERE constant share one entry).
type Cache struct {
	lru     *lru.Cache[string, *physicalplan.Plan]
	hits    atomic.Uint64
	misses  atomic.Uint64
}

// New builds a Cache holding at most capacity entries; capacity <= 0 uses
// DefaultCapacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	l, _ := lru.New[string, *physicalplan.Plan](capacity)
	return &Cache{lru: l}
}

// Get returns the cached plan for key, recording a hit or miss.
func (c *Cache) Get(key string) (*physicalplan.Plan, bool) {
	plan, ok := c.lru.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return plan, ok
}

// Put stores plan under key, evicting the least-recently-used entry if the
// cache is already at capacity.
func (c *Cache) Put(key string, plan *physicalplan.Plan) {
	c.lru.Add(key, plan)
}

// Clear empties the cache without resetting hit/miss counters.
func (c *Cache) Clear() {
	c.lru.Purge()
}

// Stats reports cumulative hit/miss counts since construction.
type Stats struct {
	Hits   uint64
	Misses uint64
}

func (c *Cache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Len reports the number of entries currently resident.
func (c *Cache) Len() int { return c.lru.Len() }
