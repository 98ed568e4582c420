package qr

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheCapacity is the number of matrices kept when no capacity is given.
const DefaultCacheCapacity = 100

// Cache memoizes encoder output per (payload, level). Entries are evicted in
// insertion order once the cache is full; reads never change an entry's
// position.
type Cache struct {
	enc      Encoder
	capacity int
	logger   *slog.Logger
	hash     func(payload string, level Level) uint64

	mu      sync.Mutex
	entries map[uint64]cacheEntry
	order   []uint64 // oldest first

	flights singleflight.Group
	hits    atomic.Uint64
	misses  atomic.Uint64
}

type cacheEntry struct {
	payload string
	level   Level
	matrix  *Matrix
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithCapacity sets the maximum number of cached matrices. Values < 1 are ignored.
func WithCapacity(n int) CacheOption {
	return func(c *Cache) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithCacheLogger sets the logger used for cache diagnostics.
func WithCacheLogger(l *slog.Logger) CacheOption {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCache returns an empty cache in front of enc.
func NewCache(enc Encoder, opts ...CacheOption) *Cache {
	c := &Cache{
		enc:      enc,
		capacity: DefaultCacheCapacity,
		logger:   slog.Default(),
		hash:     Key,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.entries = make(map[uint64]cacheEntry, c.capacity)
	c.order = make([]uint64, 0, c.capacity)
	return c
}

// Key returns the cache key for payload at level.
func Key(payload string, level Level) uint64 {
	return xxhash.Sum64String(payload + ":" + level.String())
}

// Matrix returns the module matrix for payload at level, encoding it on a miss.
// Concurrent misses for the same payload and level share one encode.
func (c *Cache) Matrix(ctx context.Context, payload string, level Level) (*Matrix, error) {
	key := c.hash(payload, level)
	if m, ok := c.lookup(key, payload, level); ok {
		c.hits.Add(1)
		return m, nil
	}
	c.misses.Add(1)

	ch := c.flights.DoChan(level.String()+":"+payload, func() (any, error) {
		if m, ok := c.lookup(key, payload, level); ok {
			return m, nil
		}
		m, err := c.enc.Encode(payload, level)
		if err != nil {
			return nil, err
		}
		if m == nil || m.Size() <= 0 {
			return nil, fmt.Errorf("%w: degenerate matrix", ErrEncoding)
		}
		c.store(key, payload, level, m)
		return m, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Matrix), nil
	}
}

func (c *Cache) lookup(key uint64, payload string, level Level) (*Matrix, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || e.payload != payload || e.level != level {
		return nil, false
	}
	return e.matrix, true
}

// store inserts m, evicting the oldest entry first when the cache is full.
func (c *Cache) store(key uint64, payload string, level Level, m *Matrix) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		if e.payload != payload || e.level != level {
			// hash collision: keep the resident entry, serve m uncached
			c.logger.Warn("matrix cache key collision", slog.Uint64("key", key))
		}
		return
	}

	if len(c.entries) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = cacheEntry{payload: payload, level: level, matrix: m}
	c.order = append(c.order, key)
}

// Contains reports whether payload at level is cached.
func (c *Cache) Contains(payload string, level Level) bool {
	_, ok := c.lookup(c.hash(payload, level), payload, level)
	return ok
}

// Len returns the number of cached matrices.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Capacity returns the configured bound.
func (c *Cache) Capacity() int { return c.capacity }

// Stats returns hit and miss counts since construction.
func (c *Cache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}
