package cache

import (
	"container/list"
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Cache is a fixed-capacity memoization cache with least-recently-used eviction.
//
// One mutex guards the map and the recency list. It is never held while a
// compute callback runs, so concurrent misses on the same key all compute and
// the last one to finish overwrites the others.
type Cache[K comparable, V any] struct {
	name     string
	capacity int
	logKeys  bool
	log      zerolog.Logger
	metrics  *metrics

	mu    sync.Mutex
	items map[K]*list.Element
	order *list.List
}

type entry[K comparable, V any] struct {
	key   K
	value V
}

type options struct {
	logKeys bool
	log     *zerolog.Logger
}

// Option configures a Cache.
type Option func(*options)

// WithLogKeys controls whether keys appear in diagnostics.
// Disable it for caches keyed by credentials.
func WithLogKeys(enabled bool) Option {
	return func(o *options) {
		o.logKeys = enabled
	}
}

// WithLogger sets the logger used for diagnostics.
// A console logger is used if none is given.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.log = &logger
	}
}

// New creates a cache that holds at most capacity entries.
// It panics if capacity is less than one.
func New[K comparable, V any](name string, capacity int, opts ...Option) *Cache[K, V] {
	if capacity < 1 {
		panic(fmt.Sprintf("cache %s: capacity must be at least 1, got %d", name, capacity))
	}
	o := options{logKeys: true}
	for _, opt := range opts {
		opt(&o)
	}
	var logger zerolog.Logger
	if o.log == nil {
		logger = zerolog.New(zerolog.NewConsoleWriter())
	} else {
		logger = *o.log
	}
	return &Cache[K, V]{
		name:     name,
		capacity: capacity,
		logKeys:  o.logKeys,
		log:      logger.With().Str("cache", name).Logger(),
		metrics:  newMetrics(name),
		items:    make(map[K]*list.Element, capacity),
		order:    list.New(),
	}
}

func (c *Cache[K, V]) Name() string {
	return c.name
}

func (c *Cache[K, V]) Capacity() int {
	return c.capacity
}

// Len returns the number of entries currently stored.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Get returns the value stored for key. On a miss it calls compute, stores the
// result and returns it. Errors from compute are returned unchanged and nothing is stored.
//
// compute receives a context that is not cancelled when ctx is.
func (c *Cache[K, V]) Get(ctx context.Context, key K, compute func(context.Context) (V, error)) (V, error) {
	if value, ok := c.lookup(key); ok {
		c.event(key, StatusHit)
		return value, nil
	}
	c.event(key, StatusMiss)

	value, err := compute(context.WithoutCancel(ctx))
	if err != nil {
		c.debug(key).Err(err).Msg(string(StatusNotStored))
		c.metrics.observe(StatusNotStored)
		var zero V
		return zero, err
	}

	c.insert(key, value)
	return value, nil
}

// Peek returns the value stored for key without touching its recency.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		return el.Value.(*entry[K, V]).value, true
	}
	var zero V
	return zero, false
}

// Delete removes key and returns the value it held, if any.
func (c *Cache[K, V]) Delete(key K) (V, bool) {
	c.mu.Lock()
	el, ok := c.items[key]
	if ok {
		c.removeElement(el)
	}
	size := c.order.Len()
	c.mu.Unlock()

	c.metrics.size(size)
	if !ok {
		c.event(key, StatusDeleteMiss)
		var zero V
		return zero, false
	}
	c.event(key, StatusDeleted)
	return el.Value.(*entry[K, V]).value, true
}

// Clear removes every entry.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	n := c.order.Len()
	c.items = make(map[K]*list.Element, c.capacity)
	c.order.Init()
	c.mu.Unlock()

	c.metrics.size(0)
	c.metrics.observe(StatusCleared)
	c.log.Debug().Int("entries", n).Msg(string(StatusCleared))
}

func (c *Cache[K, V]) lookup(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*entry[K, V]).value, true
	}
	var zero V
	return zero, false
}

func (c *Cache[K, V]) insert(key K, value V) {
	var evicted *entry[K, V]

	c.mu.Lock()
	if el, ok := c.items[key]; ok {
		// another caller stored it while we were computing: last writer wins
		el.Value.(*entry[K, V]).value = value
		c.order.MoveToFront(el)
	} else {
		c.items[key] = c.order.PushFront(&entry[K, V]{key: key, value: value})
		if c.order.Len() > c.capacity {
			oldest := c.order.Back()
			c.removeElement(oldest)
			evicted = oldest.Value.(*entry[K, V])
		}
	}
	size := c.order.Len()
	c.mu.Unlock()

	c.metrics.size(size)
	c.event(key, StatusStored)
	if evicted != nil {
		c.event(evicted.key, StatusEvicted)
	}
}

// removeElement must be called with the lock held.
func (c *Cache[K, V]) removeElement(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*entry[K, V]).key)
}

func (c *Cache[K, V]) event(key K, status Status) {
	c.metrics.observe(status)
	c.debug(key).Msg(string(status))
}

func (c *Cache[K, V]) debug(key K) *zerolog.Event {
	e := c.log.Debug()
	if c.logKeys && e.Enabled() {
		e = e.Str("key", fmt.Sprint(key))
	}
	return e
}
