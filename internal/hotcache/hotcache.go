package hotcache

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/edgegate/internal/domain"
)

// DefaultSize bounds the number of hosts kept in process memory.
const DefaultSize = 1024

type entry struct {
	mapping   *domain.HostMapping // nil means a cached negative lookup
	expiresAt time.Time
}

// Cache is the in-process hot tier of the mapping resolver: a bounded
// map of host -> mapping with TTL expiry and least-recently-used
// eviction. A nil mapping is a first-class value, caching the fact that
// a host is unknown. The cache is constructed once per process and
// passed by reference so tests can swap it for a fresh or smaller one.
type Cache struct {
	mu      sync.Mutex
	items   map[string]entry
	lru     []string // eviction order, least recently used first
	maxSize int
	now     func() time.Time
}

// New creates a hot cache bounded to maxSize entries.
func New(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultSize
	}
	return &Cache{
		items:   make(map[string]entry, maxSize),
		lru:     make([]string, 0, maxSize),
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Get returns the cached mapping for host. The second return value is
// true when a fresh entry exists; a (nil, true) result is a cached
// negative and must be treated as "known absent".
func (c *Cache) Get(host string) (*domain.HostMapping, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[host]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.items, host)
		c.removeLRU(host)
		return nil, false
	}
	c.touchLRU(host)
	return e.mapping, true
}

// Set stores a mapping (or a negative when mapping is nil) for host
// with the given TTL, evicting the least recently used entry when the
// cache is full.
func (c *Cache) Set(host string, mapping *domain.HostMapping, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[host]; !exists && len(c.items) >= c.maxSize {
		if len(c.lru) > 0 {
			evict := c.lru[0]
			c.lru = c.lru[1:]
			delete(c.items, evict)
		}
	}
	c.items[host] = entry{mapping: mapping, expiresAt: c.now().Add(ttl)}
	c.touchLRU(host)
}

// Delete drops the entry for host, if any.
func (c *Cache) Delete(host string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, host)
	c.removeLRU(host)
}

// Len returns the number of live entries, counting expired ones that
// have not been read yet.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Cache) touchLRU(host string) {
	c.removeLRU(host)
	c.lru = append(c.lru, host)
}

func (c *Cache) removeLRU(host string) {
	for i, h := range c.lru {
		if h == host {
			c.lru = append(c.lru[:i], c.lru[i+1:]...)
			return
		}
	}
}
