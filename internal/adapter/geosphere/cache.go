package geosphere

import (
	"context"
	"sync"
	"time"

	"github.com/gampnico/scintillometry-tools/internal/domain"
	"github.com/gampnico/scintillometry-tools/internal/observability"
)

// CachedProvider wraps a WeatherProvider with an in-memory LRU cache. Unlike
// a geocoding cache, weather goes stale: entries older than maxAge are
// treated as misses and refetched.
type CachedProvider struct {
	inner   domain.WeatherProvider
	cache   *lruCache
	maxAge  time.Duration
	metrics *observability.Metrics
}

// NewCachedProvider creates a cache decorator around a weather provider.
func NewCachedProvider(inner domain.WeatherProvider, maxEntries int, maxAge time.Duration, metrics *observability.Metrics) *CachedProvider {
	return &CachedProvider{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		maxAge:  maxAge,
		metrics: metrics,
	}
}

func (c *CachedProvider) Latest(ctx context.Context, stationID string) (domain.Observation, error) {
	if obs, fetchedAt, ok := c.cache.get(stationID); ok {
		if domain.Clock.Since(fetchedAt) < c.maxAge {
			c.metrics.WeatherCache.WithLabelValues("hit").Inc()
			return obs, nil
		}
		c.metrics.WeatherRequests.WithLabelValues("stale").Inc()
	}
	c.metrics.WeatherCache.WithLabelValues("miss").Inc()

	obs, err := c.inner.Latest(ctx, stationID)
	if err != nil {
		return obs, err
	}
	c.cache.put(stationID, obs, domain.Clock.Now())
	return obs, nil
}

// lruCache is a simple thread-safe LRU cache for observations.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key       string
	value     domain.Observation
	fetchedAt time.Time
	prev      *entry
	next      *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (domain.Observation, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.Observation{}, time.Time{}, false
	}
	c.moveToFront(e)
	return e.value, e.fetchedAt, true
}

func (c *lruCache) put(key string, value domain.Observation, fetchedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.fetchedAt = fetchedAt
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, fetchedAt: fetchedAt}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
