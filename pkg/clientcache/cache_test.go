package clientcache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"blicktrack-entitlement-be/internal/pkg/logger"

	gocache "github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
)

type item struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type countingFetcher struct {
	calls int
	items []item
	err   error
}

func (f *countingFetcher) fetch(ctx context.Context) ([]item, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]item, len(f.items))
	copy(out, f.items)
	return out, nil
}

func newTestCollection(t *testing.T, ttl time.Duration, fetcher *countingFetcher) *Collection[item] {
	t.Helper()
	log := logger.NewZapLogger(t.TempDir()+"/test.log", false)
	freshness := gocache.New(ttl, time.Minute)
	return NewCollection[item]("items", ttl, freshness, fetcher.fetch, log)
}

func TestGetFetchesOnceWhileFresh(t *testing.T) {
	fetcher := &countingFetcher{items: []item{{Id: "1", Name: "one"}}}
	c := newTestCollection(t, time.Minute, fetcher)
	ctx := context.Background()

	assert.Equal(t, StateEmpty, c.State())

	got, err := c.Get(ctx)
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, StateFresh, c.State())
	assert.Equal(t, 1, fetcher.calls)

	// Fresh reads do no I/O.
	_, err = c.Get(ctx)
	assert.NoError(t, err)
	_, err = c.Get(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)
}

func TestTTLExpiryDemotesToStale(t *testing.T) {
	fetcher := &countingFetcher{items: []item{{Id: "1", Name: "one"}}}
	c := newTestCollection(t, 20*time.Millisecond, fetcher)
	ctx := context.Background()

	_, err := c.Get(ctx)
	assert.NoError(t, err)
	assert.Equal(t, StateFresh, c.State())

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, StateStale, c.State())

	// A stale read refetches and restores freshness.
	_, err = c.Get(ctx)
	assert.NoError(t, err)
	assert.Equal(t, StateFresh, c.State())
	assert.Equal(t, 2, fetcher.calls)
}

func TestInvalidateForcesRefetch(t *testing.T) {
	fetcher := &countingFetcher{items: []item{{Id: "1", Name: "one"}}}
	c := newTestCollection(t, time.Minute, fetcher)
	ctx := context.Background()

	_, _ = c.Get(ctx)
	assert.Equal(t, 1, fetcher.calls)

	c.Invalidate()
	assert.Equal(t, StateStale, c.State())

	fetcher.items = []item{{Id: "1", Name: "renamed"}}
	got, err := c.Get(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "renamed", got[0].Name)
	assert.Equal(t, 2, fetcher.calls)
}

func TestFailedRefreshServesStaleSnapshot(t *testing.T) {
	fetcher := &countingFetcher{items: []item{{Id: "1", Name: "one"}}}
	c := newTestCollection(t, time.Minute, fetcher)
	ctx := context.Background()

	_, err := c.Get(ctx)
	assert.NoError(t, err)

	c.Invalidate()
	fetcher.err = errors.New("store unreachable")

	got, err := c.Get(ctx)
	assert.NoError(t, err) // degraded, not failed
	assert.Len(t, got, 1)
	assert.Equal(t, StateError, c.State())
	assert.True(t, c.Degraded())
	assert.Error(t, c.LastError())

	// Recovery clears the degraded flag.
	fetcher.err = nil
	_, err = c.Get(ctx)
	assert.NoError(t, err)
	assert.Equal(t, StateFresh, c.State())
	assert.False(t, c.Degraded())
	assert.NoError(t, c.LastError())
}

func TestFailedInitialFetchReturnsError(t *testing.T) {
	fetcher := &countingFetcher{err: errors.New("store unreachable")}
	c := newTestCollection(t, time.Minute, fetcher)

	got, err := c.Get(context.Background())
	assert.Error(t, err)
	assert.Nil(t, got)
	assert.Equal(t, StateError, c.State())
	assert.False(t, c.Degraded()) // nothing to serve
}

func TestResetReturnsToEmpty(t *testing.T) {
	fetcher := &countingFetcher{items: []item{{Id: "1", Name: "one"}}}
	c := newTestCollection(t, time.Minute, fetcher)

	_, _ = c.Get(context.Background())
	assert.Equal(t, StateFresh, c.State())

	c.Reset()
	assert.Equal(t, StateEmpty, c.State())
	assert.Nil(t, c.Snapshot())
	assert.NoError(t, c.LastError())
}

func TestObserversNotifiedOnInstall(t *testing.T) {
	fetcher := &countingFetcher{items: []item{{Id: "1", Name: "one"}}}
	c := newTestCollection(t, time.Minute, fetcher)

	var seen [][]item
	c.Subscribe(func(snapshot []item) {
		seen = append(seen, snapshot)
	})

	_, _ = c.Get(context.Background())
	assert.Len(t, seen, 1)
	assert.Len(t, seen[0], 1)
}

func TestSlowerOlderFetchIsDiscarded(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	gates := []chan []item{make(chan []item), make(chan []item)}
	started := make(chan int, 2)
	fetch := func(ctx context.Context) ([]item, error) {
		mu.Lock()
		n := calls
		calls++
		mu.Unlock()
		started <- n
		return <-gates[n], nil
	}

	log := logger.NewZapLogger(t.TempDir()+"/test.log", false)
	freshness := gocache.New(time.Minute, time.Minute)
	c := NewCollection[item]("items", time.Minute, freshness, fetch, log)
	ctx := context.Background()

	slowDone := make(chan []item, 1)
	go func() {
		got, err := c.Get(ctx)
		assert.NoError(t, err)
		slowDone <- got
	}()
	<-started

	// Second read starts strictly later and finishes first.
	time.Sleep(5 * time.Millisecond)
	fastDone := make(chan []item, 1)
	go func() {
		got, err := c.Get(ctx)
		assert.NoError(t, err)
		fastDone <- got
	}()
	<-started

	gates[1] <- []item{{Id: "2", Name: "newer"}}
	fast := <-fastDone
	assert.Equal(t, "2", fast[0].Id)

	// The older in-flight result arrives after the newer snapshot was
	// installed; it must be dropped, not clobber the snapshot.
	gates[0] <- []item{{Id: "1", Name: "older"}}
	slow := <-slowDone
	assert.Len(t, slow, 1)
	assert.Equal(t, "2", slow[0].Id)

	snap := c.Snapshot()
	assert.Len(t, snap, 1)
	assert.Equal(t, "2", snap[0].Id)
	assert.Equal(t, StateFresh, c.State())
}
