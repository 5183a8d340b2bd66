package cache

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/vadim/reddit-insight/internal/domain/activity/entity"
	"github.com/vadim/reddit-insight/internal/metrics"
)

// Default limits
const (
	DefaultMaxEntries = 300
	DefaultMaxBytes   = 20 << 20
	DefaultTTL        = 30 * time.Minute
)

// Eviction reasons reported to metrics
const (
	reasonCapacity = "capacity"
	reasonSize     = "size"
	reasonTTL      = "ttl"
)

// Entry is the cached state of one username. Either result may be nil until
// it has been computed. Entries are values: the pointed-to results must not be mutated.
type Entry struct {
	Summary       *entity.Summary        `json:"summary,omitempty"`
	Activity      *entity.ActivityResult `json:"activity,omitempty"`
	LastUpdatedAt time.Time              `json:"last_updated_at"`
}

// Options configures the Cache
type Options struct {
	MaxEntries int
	MaxBytes   int64
	TTL        time.Duration
	Now        func() time.Time
	Metrics    *metrics.Metrics
}

type item struct {
	entry     Entry
	size      int64
	expiresAt time.Time
}

// Cache is an LRU cache bounded by entry count and total serialized size.
// Entries expire TTL after their last write. It is safe for concurrent use.
type Cache struct {
	mu     sync.Mutex
	lru    *simplelru.LRU[string, *item]
	bytes  int64
	reason string // eviction reason reported by onEvict

	maxBytes int64
	ttl      time.Duration
	now      func() time.Time
	metrics  *metrics.Metrics
}

// New creates a new cache
func New(opts Options) (*Cache, error) {
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	c := &Cache{
		maxBytes: opts.MaxBytes,
		ttl:      opts.TTL,
		now:      opts.Now,
		metrics:  opts.Metrics,
	}

	lru, err := simplelru.NewLRU[string, *item](opts.MaxEntries, c.onEvict)
	if err != nil {
		return nil, err
	}
	c.lru = lru

	return c, nil
}

// onEvict runs under c.mu for every entry leaving the LRU
func (c *Cache) onEvict(_ string, it *item) {
	c.bytes -= it.size
	if c.reason != "" {
		c.metrics.CacheEviction(c.reason)
	}
}

// Get returns the live entry stored under key
func (c *Cache) Get(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.lookup(key)
	if !ok {
		return Entry{}, false
	}
	return it.entry, true
}

// GetOrCreate returns the live entry stored under key, storing an empty one first if there is none
func (c *Cache) GetOrCreate(key string) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if it, ok := c.lookup(key); ok {
		return it.entry
	}
	return c.store(key, Entry{})
}

// Set stores an entry under key, replacing any previous one.
// An entry larger than the byte limit on its own is not stored.
func (c *Cache) Set(key string, e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store(key, e)
}

// Update atomically replaces the entry under key with fn's result.
// fn receives the live entry, or an empty one when there is none.
func (c *Cache) Update(key string, fn func(Entry) Entry) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	var current Entry
	if it, ok := c.peekLive(key); ok {
		current = it.entry
	}
	return c.store(key, fn(current))
}

// PurgeExpired removes every expired entry and returns how many were removed
func (c *Cache) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	purged := 0
	for _, key := range c.lru.Keys() {
		if it, ok := c.lru.Peek(key); ok && !now.Before(it.expiresAt) {
			c.remove(key, reasonTTL)
			purged++
		}
	}
	return purged
}

// Len returns the number of stored entries, expired ones included
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lru.Len()
}

// Bytes returns the total estimated size of the stored entries
func (c *Cache) Bytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.bytes
}

// lookup returns a live entry and marks it recently used. Expired entries are removed.
func (c *Cache) lookup(key string) (*item, bool) {
	it, ok := c.lru.Get(key)
	if !ok {
		c.metrics.CacheLookup("miss")
		return nil, false
	}
	if !c.now().Before(it.expiresAt) {
		c.remove(key, reasonTTL)
		c.metrics.CacheLookup("expired")
		return nil, false
	}
	c.metrics.CacheLookup("hit")
	return it, true
}

// peekLive returns a live entry without touching recency or metrics
func (c *Cache) peekLive(key string) (*item, bool) {
	it, ok := c.lru.Peek(key)
	if !ok || !c.now().Before(it.expiresAt) {
		return nil, false
	}
	return it, true
}

func (c *Cache) store(key string, e Entry) Entry {
	now := c.now()
	e.LastUpdatedAt = now
	size := entrySize(key, e)

	c.remove(key, "")
	if size > c.maxBytes {
		return e
	}

	c.reason = reasonSize
	for c.bytes+size > c.maxBytes {
		if _, _, ok := c.lru.RemoveOldest(); !ok {
			break
		}
	}

	c.reason = reasonCapacity
	c.lru.Add(key, &item{entry: e, size: size, expiresAt: now.Add(c.ttl)})
	c.bytes += size
	c.reason = ""

	return e
}

func (c *Cache) remove(key, reason string) {
	c.reason = reason
	c.lru.Remove(key)
	c.reason = ""
}

// entrySize estimates an entry's footprint as its JSON length plus the key length
func entrySize(key string, e Entry) int64 {
	b, err := json.Marshal(e)
	if err != nil {
		return int64(len(key))
	}
	return int64(len(b) + len(key))
}
