// Package cache holds compiled expressions keyed by their source text, so
// hosts that re-submit the same query against many documents pay for
// lexing, parsing, and parent-slot resolution once instead of per call.
//
// Eviction is least-recently-used: the cache tracks each entry's recency on
// access and discards the coldest entry when a new source would exceed
// capacity. Hit, miss, and eviction totals are kept so hosts can size the
// cache against their real workload.
package cache

import (
	"container/list"
	"sync"

	"github.com/secondlayerco/jsonata/pkg/types"
)

// Stats is a point-in-time snapshot of cache effectiveness counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

type compiled struct {
	source string
	expr   *types.Expression
}

// Cache is a fixed-capacity, least-recently-used store of compiled
// expressions. Safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	capacity int
	recency  *list.List // front = most recently used; values are *compiled
	bySource map[string]*list.Element
	stats    Stats
}

// New creates a Cache holding at most capacity compiled expressions.
// A capacity of zero or less falls back to 256.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 256
	}
	return &Cache{
		capacity: capacity,
		recency:  list.New(),
		bySource: make(map[string]*list.Element, capacity),
	}
}

// Get returns the compiled expression for source, marking it most recently
// used. The second return is false on a miss.
func (c *Cache) Get(source string) (*types.Expression, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.bySource[source]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	c.recency.MoveToFront(el)
	return el.Value.(*compiled).expr, true
}

// Set stores expr under source, replacing any previous entry and evicting
// the least recently used expression if the cache is full.
func (c *Cache) Set(source string, expr *types.Expression) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store(source, expr)
}

// GetOrCompile returns the cached expression for source, or runs compile,
// stores its result, and returns it. Compilation errors are returned to the
// caller and never cached, so a transient failure does not poison the key.
func (c *Cache) GetOrCompile(source string, compile func() (*types.Expression, error)) (*types.Expression, error) {
	if expr, ok := c.Get(source); ok {
		return expr, nil
	}
	expr, err := compile()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	// Another goroutine may have compiled the same source while this one
	// was; keep whichever landed first so both callers share one AST.
	if el, ok := c.bySource[source]; ok {
		c.recency.MoveToFront(el)
		return el.Value.(*compiled).expr, nil
	}
	c.store(source, expr)
	return expr, nil
}

// Len reports how many expressions are currently cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.bySource)
}

// Stats returns a snapshot of the hit/miss/eviction counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Clear discards every cached expression. Counters are retained.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recency.Init()
	c.bySource = make(map[string]*list.Element, c.capacity)
}

// store inserts or replaces source's entry; c.mu must be held.
func (c *Cache) store(source string, expr *types.Expression) {
	if el, ok := c.bySource[source]; ok {
		el.Value.(*compiled).expr = expr
		c.recency.MoveToFront(el)
		return
	}
	for len(c.bySource) >= c.capacity {
		coldest := c.recency.Back()
		if coldest == nil {
			break
		}
		c.recency.Remove(coldest)
		delete(c.bySource, coldest.Value.(*compiled).source)
		c.stats.Evictions++
	}
	c.bySource[source] = c.recency.PushFront(&compiled{source: source, expr: expr})
}
