// FILE: pkg/clientcache/cache.go
// TTL-expiring read cache for one entity collection.
package clientcache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"blicktrack-entitlement-be/internal/pkg/logger"

	gocache "github.com/patrickmn/go-cache"
)

type State int

const (
	StateEmpty State = iota
	StateLoading
	StateFresh
	StateStale
	StateRefreshing
	StateError
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateFresh:
		return "fresh"
	case StateStale:
		return "stale"
	case StateRefreshing:
		return "refreshing"
	case StateError:
		return "error"
	}
	return "unknown"
}

// FetchFunc loads the authoritative collection contents.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Observer is notified with the full snapshot after every local change.
type Observer[T any] func(snapshot []T)

// Collection caches one list of entities with a freshness TTL. Freshness is
// tracked as a token in a shared go-cache instance: token present means the
// snapshot is still fresh, token expired means the next read refetches.
//
// Reads never blank an already-populated cache: a failed refresh moves the
// state to StateError but keeps serving the last good snapshot.
type Collection[T any] struct {
	name      string
	fetch     FetchFunc[T]
	ttl       time.Duration
	freshness *gocache.Cache
	logger    logger.ILogger

	mu          sync.Mutex
	state       State
	snapshot    []T
	fetchedAt   time.Time
	lastErr     error
	lastApplied time.Time // fetch-start-time of the snapshot currently installed
	observers   []Observer[T]
}

func NewCollection[T any](name string, ttl time.Duration, freshness *gocache.Cache, fetch FetchFunc[T], log logger.ILogger) *Collection[T] {
	return &Collection[T]{
		name:      name,
		fetch:     fetch,
		ttl:       ttl,
		freshness: freshness,
		logger:    log,
		state:     StateEmpty,
	}
}

func (c *Collection[T]) Name() string { return c.name }

// State reports the current cache state, demoting Fresh to Stale when the
// freshness token has expired since the last check.
func (c *Collection[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.demoteIfExpired()
	return c.state
}

// Snapshot returns the cached contents without any I/O, regardless of state.
func (c *Collection[T]) Snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// LastError returns the error from the most recent failed fetch, or nil.
func (c *Collection[T]) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Degraded reports whether the collection is serving a stale snapshot because
// its most recent refresh failed.
func (c *Collection[T]) Degraded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateError && c.snapshot != nil
}

// Subscribe registers an observer invoked after every snapshot change.
func (c *Collection[T]) Subscribe(fn Observer[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// Reset drops the snapshot entirely and returns the collection to
// StateEmpty. Used when the cached contents no longer apply at all, e.g.
// after switching tenants.
func (c *Collection[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.freshness.Delete(c.name)
	c.snapshot = nil
	c.fetchedAt = time.Time{}
	c.lastApplied = time.Time{}
	c.lastErr = nil
	c.state = StateEmpty
	c.notify()
}

// Invalidate marks the collection stale so the next Get refetches. The cached
// snapshot stays readable in the meantime.
func (c *Collection[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.freshness.Delete(c.name)
	if c.state == StateFresh {
		c.state = StateStale
	}
}

// Get returns the collection, fetching only when the cache is empty or stale.
// A fresh cache hit does no I/O. When a refresh fails but an earlier snapshot
// exists, the stale snapshot is returned with a nil error and the degraded
// state is logged; the caller decides whether to retry.
func (c *Collection[T]) Get(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	c.demoteIfExpired()

	if c.state == StateFresh {
		snap := c.snapshot
		c.mu.Unlock()
		return snap, nil
	}

	if c.snapshot == nil {
		c.state = StateLoading
	} else {
		c.state = StateRefreshing
	}
	fetchStart := time.Now()
	c.mu.Unlock()

	items, err := c.fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	// A concurrent refresh that started later may already have installed a
	// newer snapshot; discard this result instead of clobbering it.
	if fetchStart.Before(c.lastApplied) {
		return c.snapshot, nil
	}

	if err != nil {
		c.state = StateError
		c.lastErr = err
		if c.snapshot != nil {
			c.logger.Warn("clientcache", "Refresh failed, serving stale snapshot", map[string]interface{}{
				"collection": c.name,
				"error":      err.Error(),
				"fetched_at": c.fetchedAt,
			})
			return c.snapshot, nil
		}
		return nil, err
	}

	c.install(items, fetchStart)
	return c.snapshot, nil
}

// Refresh forces a fetch regardless of freshness.
func (c *Collection[T]) Refresh(ctx context.Context) ([]T, error) {
	c.Invalidate()
	return c.Get(ctx)
}

// demoteIfExpired moves Fresh to Stale when the freshness token is gone.
// Caller holds c.mu.
func (c *Collection[T]) demoteIfExpired() {
	if c.state != StateFresh {
		return
	}
	if _, ok := c.freshness.Get(c.name); !ok {
		c.state = StateStale
	}
}

// install replaces the snapshot with a fetch result. Caller holds c.mu.
func (c *Collection[T]) install(items []T, fetchStart time.Time) {
	c.snapshot = items
	c.fetchedAt = time.Now()
	c.lastApplied = fetchStart
	c.lastErr = nil
	c.state = StateFresh
	c.freshness.Set(c.name, fetchStart, c.ttl)
	c.notify()
}

// applyLocal rewrites the snapshot in place (optimistic writes and
// reconciliation). Caller must not hold c.mu.
func (c *Collection[T]) applyLocal(fn func([]T) []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = fn(c.snapshot)
	c.notify()
}

// restore rolls the snapshot back to a previously cloned value.
func (c *Collection[T]) restore(snapshot []T, state State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = snapshot
	c.state = state
	c.notify()
}

// cloneSnapshot deep-copies the current snapshot via a JSON round trip so a
// rollback restores exactly the pre-write value.
func (c *Collection[T]) cloneSnapshot() ([]T, State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot == nil {
		return nil, c.state, nil
	}
	raw, err := json.Marshal(c.snapshot)
	if err != nil {
		return nil, c.state, err
	}
	var clone []T
	if err := json.Unmarshal(raw, &clone); err != nil {
		return nil, c.state, err
	}
	return clone, c.state, nil
}

// notify invokes observers with the current snapshot. Caller holds c.mu.
func (c *Collection[T]) notify() {
	for _, fn := range c.observers {
		fn(c.snapshot)
	}
}
