package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultMaxEntries is the resident-entry bound used when none is configured.
const DefaultMaxEntries = 1000

// MemoryConfig configures a MemoryCache.
type MemoryConfig struct {
	// MaxEntries bounds the number of resident entries.
	// Default: 1000
	MaxEntries int

	// Now returns the current time. Default: time.Now
	Now func() time.Time

	// OnEvict is called with the key of each entry removed to make room for a
	// new one. It is not called for expiry, Delete, or Clear. It runs while the
	// cache lock is held and must not call back into the cache.
	OnEvict func(key string)
}

// MemoryCache is an in-memory cache with per-entry TTL and LRU eviction.
type MemoryCache struct {
	config MemoryConfig

	mu      sync.Mutex
	entries map[string]*cacheEntry
	// head is the most recently used entry, tail the least.
	head *cacheEntry
	tail *cacheEntry

	hits      uint64
	misses    uint64
	evictions uint64
}

type cacheEntry struct {
	key      string
	value    []byte
	storedAt time.Time
	ttl      time.Duration

	prev *cacheEntry
	next *cacheEntry
}

func (e *cacheEntry) expired(now time.Time) bool {
	return now.Sub(e.storedAt) >= e.ttl
}

// NewMemoryCache creates a new in-memory cache.
func NewMemoryCache(config MemoryConfig) *MemoryCache {
	if config.MaxEntries <= 0 {
		config.MaxEntries = DefaultMaxEntries
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &MemoryCache{
		config:  config,
		entries: make(map[string]*cacheEntry),
	}
}

// Get retrieves a value from the cache. Returns (nil, false) on miss or expiry.
// A hit marks the entry as most recently used.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}

	if entry.expired(c.config.Now()) {
		c.removeLocked(entry)
		c.misses++
		return nil, false
	}

	c.moveToFrontLocked(entry)
	c.hits++
	return entry.value, true
}

// Set stores a value with the given TTL. TTL<=0 means no caching.
//
// Inserting a new key at capacity evicts the least recently used entry first.
// Overwriting an existing key refreshes its value, TTL and recency without
// changing the resident count.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.config.Now()

	if entry, ok := c.entries[key]; ok {
		entry.value = value
		entry.storedAt = now
		entry.ttl = ttl
		c.moveToFrontLocked(entry)
		return nil
	}

	if len(c.entries) >= c.config.MaxEntries {
		c.evictLocked()
	}

	entry := &cacheEntry{
		key:      key,
		value:    value,
		storedAt: now,
		ttl:      ttl,
	}
	c.entries[key] = entry
	c.addFrontLocked(entry)

	return nil
}

// Delete removes a value from the cache. Idempotent - no error on miss.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		c.removeLocked(entry)
	}
	return nil
}

// Clear removes every entry. Counters are preserved.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.head = nil
	c.tail = nil
}

// Len returns the number of resident entries, including any that have
// expired but not yet been read.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns resident keys from most to least recently used.
func (c *MemoryCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.entries))
	for e := c.head; e != nil; e = e.next {
		keys = append(keys, e.key)
	}
	return keys
}

// Stats returns a snapshot of the cache counters.
func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Size:      len(c.entries),
		Capacity:  c.config.MaxEntries,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

func (c *MemoryCache) evictLocked() {
	victim := c.tail
	if victim == nil {
		return
	}
	c.removeLocked(victim)
	c.evictions++
	if c.config.OnEvict != nil {
		c.config.OnEvict(victim.key)
	}
}

func (c *MemoryCache) removeLocked(e *cacheEntry) {
	c.unlinkLocked(e)
	delete(c.entries, e.key)
}

func (c *MemoryCache) addFrontLocked(e *cacheEntry) {
	e.prev = nil
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *MemoryCache) unlinkLocked(e *cacheEntry) {
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
	e.prev = nil
	e.next = nil
}

func (c *MemoryCache) moveToFrontLocked(e *cacheEntry) {
	if c.head == e {
		return
	}
	c.unlinkLocked(e)
	c.addFrontLocked(e)
}

// Ensure MemoryCache implements Cache
var _ Cache = (*MemoryCache)(nil)
