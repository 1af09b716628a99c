// FILE: pkg/clientcache/reconciler.go
// Optimistic write protocol: apply locally, execute remotely, reconcile or
// roll back.
package clientcache

import (
	"context"

	"blicktrack-entitlement-be/internal/pkg/logger"
)

// Mutation describes one optimistic write against a collection.
//
// Apply rewrites the local snapshot with the caller's best guess before the
// server responds. Execute performs the authoritative store call. Reconcile
// merges the server's returned entity into the snapshot after a successful
// Execute; server fields win over the optimistic guess (generated ids,
// timestamps). Reconcile may be nil for operations whose Apply is already
// exact (deletes).
type Mutation[T any] struct {
	Name      string
	Apply     func(snapshot []T) []T
	Execute   func(ctx context.Context) (T, error)
	Reconcile func(snapshot []T, server T) []T
}

// Reconciler serializes optimistic writes against a single collection. A
// second write queues behind the first's reconciliation, so observers never
// see interleaved optimistic states.
type Reconciler[T any] struct {
	collection *Collection[T]
	logger     logger.ILogger
	writes     chan struct{} // capacity-1 semaphore
}

func NewReconciler[T any](collection *Collection[T], log logger.ILogger) *Reconciler[T] {
	r := &Reconciler[T]{
		collection: collection,
		logger:     log,
		writes:     make(chan struct{}, 1),
	}
	r.writes <- struct{}{}
	return r
}

// Do runs one mutation through the optimistic protocol. The cache ends up in
// a determinate state no matter what: reconciled on success, rolled back to
// the exact pre-write snapshot on failure. Errors are returned to the caller
// untouched; the reconciler never retries.
func (r *Reconciler[T]) Do(ctx context.Context, m Mutation[T]) (T, error) {
	var zero T
	select {
	case <-r.writes:
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	defer func() { r.writes <- struct{}{} }()

	before, beforeState, err := r.collection.cloneSnapshot()
	if err != nil {
		return zero, err
	}

	if m.Apply != nil {
		r.collection.applyLocal(m.Apply)
	}

	server, err := m.Execute(ctx)
	if err != nil {
		r.collection.restore(before, beforeState)
		r.logger.Warn("clientcache", "Write failed, optimistic state rolled back", map[string]interface{}{
			"collection": r.collection.Name(),
			"mutation":   m.Name,
			"error":      err.Error(),
		})
		return zero, err
	}

	if m.Reconcile != nil {
		r.collection.applyLocal(func(snapshot []T) []T {
			return m.Reconcile(snapshot, server)
		})
	}

	// The server may have touched records beyond the one returned (cascades,
	// reordering); the next TTL expiry or invalidation signal trues it up.
	return server, nil
}
