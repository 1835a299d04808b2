// Package cache memoizes expensive immutable results behind a bounded LRU.
//
// A Cache runs at most one computation per key at a time: concurrent callers
// asking for the same missing key wait for the first caller's result. An
// optional Store keeps encoded results across process restarts; it is read on
// a memory miss and written after every successful computation.
package cache

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// DefaultCapacity is used when Config.Capacity is not positive.
const DefaultCapacity = 32

// Source tells where a value returned by GetOrCompute came from.
type Source int

const (
	// FromMemory means the value was already in the LRU.
	FromMemory Source = iota
	// FromStore means the value was decoded from the backing store.
	FromStore
	// Computed means the compute function ran for this request, or for a
	// concurrent request for the same key whose result was shared.
	Computed
)

func (s Source) String() string {
	switch s {
	case FromMemory:
		return "memory"
	case FromStore:
		return "store"
	case Computed:
		return "computed"
	}
	return fmt.Sprintf("Source(%d)", int(s))
}

// Codec converts values to and from the bytes kept in a Store.
type Codec[V any] interface {
	Encode(v V) ([]byte, error)
	Decode(data []byte) (V, error)
}

// Config configures a Cache.
type Config[V any] struct {
	// Capacity is the maximum number of entries kept in memory.
	Capacity int

	// Store and Codec enable the persistent tier. Both must be set.
	Store Store
	Codec Codec[V]

	// OnEvict is called, without the cache lock held, for every key
	// dropped from memory to make room.
	OnEvict func(key string)

	Logger *slog.Logger
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	StoreHits int64 `json:"store_hits"`
	Computes  int64 `json:"computes"`
	Evictions int64 `json:"evictions"`
	Len       int   `json:"len"`
}

// ComputeFunc produces the value for a missing key.
type ComputeFunc[V any] func(ctx context.Context) (V, error)

// Cache is a bounded LRU with single-flight get-or-compute.
// It is safe for concurrent use.
type Cache[V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List // front = most recently used

	flight  singleflight.Group
	store   Store
	codec   Codec[V]
	onEvict func(string)
	logger  *slog.Logger

	hits      atomic.Int64
	misses    atomic.Int64
	storeHits atomic.Int64
	computes  atomic.Int64
	evictions atomic.Int64
}

type entry[V any] struct {
	key   string
	value V
}

type flightResult[V any] struct {
	value  V
	source Source
}

// New creates an empty cache.
func New[V any](cfg Config[V]) *Cache[V] {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Cache[V]{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
		onEvict:  cfg.OnEvict,
		logger:   logger,
	}
	if cfg.Store != nil && cfg.Codec != nil {
		c.store = cfg.Store
		c.codec = cfg.Codec
	}
	return c
}

// Get returns the value cached in memory for key.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry[V]).value, true
}

// GetOrCompute returns the value for key, computing it with fn on a miss.
//
// While fn runs, other callers for the same key wait for its result instead
// of starting their own computation. Errors are returned to every waiter and
// are not cached. A waiter whose own context is still live retries when the
// shared computation was cancelled by another caller's context.
func (c *Cache[V]) GetOrCompute(ctx context.Context, key string, fn ComputeFunc[V]) (V, Source, error) {
	var zero V
	for {
		if v, ok := c.Get(key); ok {
			c.hits.Add(1)
			return v, FromMemory, nil
		}
		if err := ctx.Err(); err != nil {
			return zero, 0, err
		}

		ch := c.flight.DoChan(key, func() (any, error) {
			return c.load(ctx, key, fn)
		})
		select {
		case <-ctx.Done():
			return zero, 0, ctx.Err()
		case r := <-ch:
			if r.Err != nil {
				if isContextErr(r.Err) && ctx.Err() == nil {
					continue
				}
				return zero, 0, r.Err
			}
			res := r.Val.(flightResult[V])
			return res.value, res.source, nil
		}
	}
}

// load runs inside the single flight for key.
func (c *Cache[V]) load(ctx context.Context, key string, fn ComputeFunc[V]) (flightResult[V], error) {
	// A previous flight may have finished between our Get and DoChan.
	if v, ok := c.Get(key); ok {
		c.hits.Add(1)
		return flightResult[V]{value: v, source: FromMemory}, nil
	}
	c.misses.Add(1)

	if v, ok := c.loadStored(key); ok {
		c.storeHits.Add(1)
		c.add(key, v)
		return flightResult[V]{value: v, source: FromStore}, nil
	}

	c.computes.Add(1)
	v, err := fn(ctx)
	if err != nil {
		return flightResult[V]{}, err
	}
	c.add(key, v)
	c.save(key, v)
	return flightResult[V]{value: v, source: Computed}, nil
}

func (c *Cache[V]) loadStored(key string) (V, bool) {
	var zero V
	if c.store == nil {
		return zero, false
	}
	data, err := c.store.Get(key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.logger.Warn("cache store read failed", slog.String("key", key), slog.Any("error", err))
		}
		return zero, false
	}
	v, err := c.codec.Decode(data)
	if err != nil {
		c.logger.Warn("cache store entry undecodable", slog.String("key", key), slog.Any("error", err))
		return zero, false
	}
	return v, true
}

func (c *Cache[V]) save(key string, v V) {
	if c.store == nil {
		return
	}
	data, err := c.codec.Encode(v)
	if err == nil {
		err = c.store.Set(key, data)
	}
	if err != nil {
		c.logger.Warn("cache store write failed", slog.String("key", key), slog.Any("error", err))
	}
}

// add inserts or refreshes key and evicts from the back while over capacity.
func (c *Cache[V]) add(key string, v V) {
	var evicted []string

	c.mu.Lock()
	if el, ok := c.items[key]; ok {
		el.Value.(*entry[V]).value = v
		c.order.MoveToFront(el)
	} else {
		c.items[key] = c.order.PushFront(&entry[V]{key: key, value: v})
	}
	for c.order.Len() > c.capacity {
		back := c.order.Back()
		e := back.Value.(*entry[V])
		c.order.Remove(back)
		delete(c.items, e.key)
		evicted = append(evicted, e.key)
	}
	c.mu.Unlock()

	for _, k := range evicted {
		c.evictions.Add(1)
		c.logger.Debug("cache evicted", slog.String("key", k))
		if c.onEvict != nil {
			c.onEvict(k)
		}
	}
}

// Remove drops key from memory. The persistent tier is left untouched.
func (c *Cache[V]) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return false
	}
	c.order.Remove(el)
	delete(c.items, key)
	return true
}

// Purge drops every entry from memory.
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.order.Init()
}

// Keys returns the cached keys from most to least recently used.
func (c *Cache[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*entry[V]).key)
	}
	return keys
}

// Len returns the number of entries in memory.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Capacity returns the maximum number of entries kept in memory.
func (c *Cache[V]) Capacity() int {
	return c.capacity
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[V]) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		StoreHits: c.storeHits.Load(),
		Computes:  c.computes.Load(),
		Evictions: c.evictions.Load(),
		Len:       c.Len(),
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
