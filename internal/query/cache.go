package query

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	KeyTasks        = "tasks"
	KeyAdminTasks   = "admin/tasks"
	KeyAdminUsers   = "admin/users"
	KeyDailyPlan    = "ai/daily-plan"
	KeyStatsSummary = "stats/summary"
)

// TaskKeys are the keys whose data depends on the task table.
var TaskKeys = []string{KeyTasks, KeyAdminTasks, KeyDailyPlan, KeyStatsSummary}

const (
	defaultStaleTime   = 30 * time.Second
	defaultReadRetries = 1
)

var ErrTypeMismatch = errors.New("cached value has unexpected type")

type Options struct {
	// StaleTime is how long a fetched value is served without a background
	// refetch. Defaults to 30s.
	StaleTime time.Duration

	// ReadRetries is the number of extra attempts for a failed read.
	// Zero means the default of one retry, a negative value disables retries.
	ReadRetries int
	RetryDelay  time.Duration

	// ShouldRetry filters retryable read errors. Context errors are never
	// retried.
	ShouldRetry func(err error) bool

	Logger zerolog.Logger
	Now    func() time.Time
}

type entry struct {
	data       any
	fetchedAt  time.Time
	gen        uint64
	valid      bool
	refreshing bool
}

// Cache keeps the last fetched value per key. Reads of the same key share one
// in-flight fetch, and a fetch that started before an invalidation never
// overwrites the entry.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	closed  bool

	flight singleflight.Group
	wg     sync.WaitGroup

	// base is the context of background refetches, cancelled by Close.
	base   context.Context
	cancel context.CancelFunc

	staleTime   time.Duration
	retries     int
	retryDelay  time.Duration
	shouldRetry func(error) bool
	logger      zerolog.Logger
	now         func() time.Time
}

func New(opts Options) *Cache {
	c := &Cache{
		entries:     make(map[string]*entry),
		staleTime:   opts.StaleTime,
		retries:     opts.ReadRetries,
		retryDelay:  opts.RetryDelay,
		shouldRetry: opts.ShouldRetry,
		logger:      opts.Logger,
		now:         opts.Now,
	}
	if c.staleTime <= 0 {
		c.staleTime = defaultStaleTime
	}
	switch {
	case c.retries == 0:
		c.retries = defaultReadRetries
	case c.retries < 0:
		c.retries = 0
	}
	if c.shouldRetry == nil {
		c.shouldRetry = func(error) bool { return true }
	}
	if c.now == nil {
		c.now = time.Now
	}
	c.base, c.cancel = context.WithCancel(context.Background())
	return c
}

type fetchFunc func(ctx context.Context) (any, error)

// Get returns the value under key, fetching it when missing or invalidated.
// A stale value is returned as is while a refetch runs in the background.
func Get[T any](ctx context.Context, c *Cache, key string, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	v, err := c.get(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: key %s holds %T", ErrTypeMismatch, key, v)
	}
	return typed, nil
}

// Peek returns the cached value without fetching. Invalidated entries are
// reported as missing.
func Peek[T any](c *Cache, key string) (T, bool) {
	var zero T

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || !e.valid {
		return zero, false
	}
	typed, ok := e.data.(T)
	return typed, ok
}

// Mutate runs fn once and invalidates keys when it succeeds. Mutations are
// never retried.
func Mutate[T any](ctx context.Context, c *Cache, fn func(ctx context.Context) (T, error), keys ...string) (T, error) {
	v, err := fn(ctx)
	if err != nil {
		return v, err
	}
	c.Invalidate(keys...)
	return v, nil
}

// Invalidate marks keys as needing a refetch. Fetches already in flight for
// these keys will not install their results.
func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		e := c.entryLocked(key)
		e.gen++
		e.valid = false
	}
	c.logger.Debug().Strs("keys", keys).Msg("invalidated cache keys")
}

// Reset invalidates every key.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		e.gen++
		e.valid = false
		e.data = nil
	}
}

// Wait blocks until background refetches have finished.
func (c *Cache) Wait() {
	c.wg.Wait()
}

// Close cancels background refetches and waits for them to return.
func (c *Cache) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

func (c *Cache) entryLocked(key string) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = new(entry)
		c.entries[key] = e
	}
	return e
}

func (c *Cache) get(ctx context.Context, key string, fetch fetchFunc) (any, error) {
	c.mu.Lock()
	e := c.entryLocked(key)
	gen := e.gen
	if !e.valid {
		c.mu.Unlock()
		return c.fetch(ctx, key, gen, fetch)
	}

	data := e.data
	if c.now().Sub(e.fetchedAt) >= c.staleTime && !e.refreshing && !c.closed {
		e.refreshing = true
		c.wg.Add(1)
		go c.refresh(key, gen, fetch)
	}
	c.mu.Unlock()
	return data, nil
}

func (c *Cache) refresh(key string, gen uint64, fetch fetchFunc) {
	defer c.wg.Done()

	_, err := c.fetch(c.base, key, gen, fetch)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("background refetch failed")
	}

	c.mu.Lock()
	c.entryLocked(key).refreshing = false
	c.mu.Unlock()
}

// fetch joins or starts the shared fetch for key at gen. The shared fetch
// keeps the caller's values but not its cancellation: a caller that gives up
// returns its own context error while the others keep waiting. Close cancels
// it.
func (c *Cache) fetch(ctx context.Context, key string, gen uint64, fetch fetchFunc) (any, error) {
	detached := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(fmt.Sprintf("%s#%d", key, gen), func() (any, error) {
		fetchCtx, cancel := context.WithCancel(detached)
		defer cancel()
		stop := context.AfterFunc(c.base, cancel)
		defer stop()

		data, err := c.fetchWithRetry(fetchCtx, key, fetch)
		if err != nil {
			return nil, err
		}
		c.install(key, gen, data)
		return data, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			c.logger.Trace().Str("key", key).Msg("joined in-flight fetch")
		}
		return res.Val, res.Err
	case <-ctx.Done():
		c.logger.Debug().Str("key", key).Msg("stopped waiting for fetch")
		return nil, ctx.Err()
	}
}

func (c *Cache) fetchWithRetry(ctx context.Context, key string, fetch fetchFunc) (any, error) {
	var err error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.logger.Debug().Err(err).Str("key", key).Int("attempt", attempt).Msg("retrying fetch")
			if err := sleep(ctx, c.retryDelay); err != nil {
				return nil, err
			}
		}

		var data any
		data, err = fetch(ctx)
		if err == nil {
			return data, nil
		}
		if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if !c.shouldRetry(err) {
			return nil, err
		}
	}
	return nil, err
}

func (c *Cache) install(key string, gen uint64, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entryLocked(key)
	if e.gen != gen {
		c.logger.Debug().Str("key", key).Uint64("gen", gen).Msg("dropped result of outdated fetch")
		return
	}
	e.data = data
	e.fetchedAt = c.now()
	e.valid = true
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
