package clientcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"blicktrack-entitlement-be/internal/pkg/logger"

	gocache "github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
)

// fakeStore stands in for the server side of a write.
type fakeStore struct {
	mu    sync.Mutex
	items []item
	fail  bool
}

func (s *fakeStore) fetch(ctx context.Context) ([]item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]item, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *fakeStore) create(name string) (*item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, errors.New("store rejected the write")
	}
	created := item{Id: fmt.Sprintf("srv-%d", len(s.items)+1), Name: name}
	s.items = append(s.items, created)
	return &created, nil
}

func newReconcilerFixture(t *testing.T, store *fakeStore) (*Collection[item], *Reconciler[item]) {
	t.Helper()
	log := logger.NewZapLogger(t.TempDir()+"/test.log", false)
	freshness := gocache.New(time.Minute, time.Minute)
	c := NewCollection[item]("items", time.Minute, freshness, store.fetch, log)
	return c, NewReconciler(c, log)
}

func createMutation(store *fakeStore, name string) Mutation[item] {
	optimisticId := "tmp-" + name
	return Mutation[item]{
		Name: "create_item",
		Apply: func(snapshot []item) []item {
			return append(snapshot, item{Id: optimisticId, Name: name})
		},
		Execute: func(ctx context.Context) (item, error) {
			created, err := store.create(name)
			if err != nil {
				return item{}, err
			}
			return *created, nil
		},
		Reconcile: func(snapshot []item, server item) []item {
			for i := range snapshot {
				if snapshot[i].Id == optimisticId {
					snapshot[i] = server
					return snapshot
				}
			}
			return append(snapshot, server)
		},
	}
}

func TestWriteRoundTripMatchesFreshFetch(t *testing.T) {
	store := &fakeStore{items: []item{{Id: "srv-1", Name: "existing"}}}
	c, r := newReconcilerFixture(t, store)
	ctx := context.Background()

	_, err := c.Get(ctx)
	assert.NoError(t, err)

	server, err := r.Do(ctx, createMutation(store, "new-item"))
	assert.NoError(t, err)
	assert.Equal(t, "srv-2", server.Id)

	// Reconciled cache equals a fresh fetch of the same collection.
	cached := c.Snapshot()
	fresh, err := c.Refresh(ctx)
	assert.NoError(t, err)
	assert.Equal(t, fresh, cached)
}

func TestFailedWriteRollsBackByteForByte(t *testing.T) {
	store := &fakeStore{items: []item{{Id: "srv-1", Name: "existing"}}}
	c, r := newReconcilerFixture(t, store)
	ctx := context.Background()

	_, err := c.Get(ctx)
	assert.NoError(t, err)

	before, err := json.Marshal(c.Snapshot())
	assert.NoError(t, err)
	stateBefore := c.State()

	store.fail = true
	_, err = r.Do(ctx, createMutation(store, "doomed"))
	assert.Error(t, err)

	after, err := json.Marshal(c.Snapshot())
	assert.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, stateBefore, c.State())
}

func TestObserversSeeOptimisticThenRolledBackState(t *testing.T) {
	store := &fakeStore{items: []item{{Id: "srv-1", Name: "existing"}}}
	c, r := newReconcilerFixture(t, store)
	ctx := context.Background()

	_, _ = c.Get(ctx)

	var lengths []int
	c.Subscribe(func(snapshot []item) {
		lengths = append(lengths, len(snapshot))
	})

	store.fail = true
	_, err := r.Do(ctx, createMutation(store, "doomed"))
	assert.Error(t, err)

	// Optimistic append (2), then rollback (1).
	assert.Equal(t, []int{2, 1}, lengths)
}

func TestConcurrentWritesAreSerialized(t *testing.T) {
	store := &fakeStore{}
	c, r := newReconcilerFixture(t, store)
	ctx := context.Background()

	_, err := c.Get(ctx)
	assert.NoError(t, err)

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.Do(ctx, createMutation(store, fmt.Sprintf("item-%d", i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// No optimistic state was lost to interleaving.
	assert.Len(t, c.Snapshot(), writers)

	fresh, err := c.Refresh(ctx)
	assert.NoError(t, err)
	assert.Len(t, fresh, writers)
}

func TestWriteRespectsContextCancellation(t *testing.T) {
	store := &fakeStore{}
	_, r := newReconcilerFixture(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Exhaust the write slot so Do must wait on the context.
	<-r.writes
	_, err := r.Do(ctx, createMutation(store, "blocked"))
	assert.ErrorIs(t, err, context.Canceled)
	r.writes <- struct{}{}
}
