// Package registry maintains the client-side cache of a user's warehouse
// connections and which one is active. It is the single source of truth for
// every view that needs "the current connection": views read immutable
// snapshots and subscribe for replacements; all mutation goes through
// Refresh and SetActive.
package registry

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/apperrors"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/models"
)

// Backend is the remote side of the registry. Implementations talk to the
// connections API; tests substitute fakes.
type Backend interface {
	// ListConnections returns all connections in stable server order.
	ListConnections(ctx context.Context) ([]models.Connection, error)

	// ActivateConnection marks one connection active and all others
	// inactive.
	ActivateConnection(ctx context.Context, id int64) error
}

// Snapshot is one immutable view of the cached state. Subscribers must not
// mutate it; every change produces a new Snapshot.
type Snapshot struct {
	// Connections in server order. Never re-sorted locally.
	Connections []models.Connection

	// Active points into Connections, or nil when no connection is active.
	// "No active connection" is a valid state, not an error.
	Active *models.Connection

	// Loading is true while any Refresh or SetActive call is in flight.
	Loading bool

	// Err holds the last failure message, cleared by the next successful
	// operation. Stable and human-readable; views display it verbatim.
	Err string
}

// Subscriber receives every new snapshot. Called outside the registry lock;
// re-entrant calls into the registry are safe.
type Subscriber func(*Snapshot)

// Registry owns the connection snapshot. One writer (the registry itself),
// arbitrarily many readers.
type Registry struct {
	backend Backend
	logger  *zap.Logger

	mu          sync.Mutex
	snapshot    *Snapshot
	inflight    int
	subscribers map[int]Subscriber
	nextSubID   int
}

// New creates a registry in its uninitialized state: empty list, loading
// set, no error. Call Start or Refresh to populate it.
func New(backend Backend, logger *zap.Logger) *Registry {
	return &Registry{
		backend:     backend,
		logger:      logger,
		snapshot:    &Snapshot{Loading: true},
		subscribers: make(map[int]Subscriber),
	}
}

// Start triggers the initial refresh in the background. The snapshot is
// readable immediately; subscribers hear about the result when it lands.
func (r *Registry) Start(ctx context.Context) {
	go r.Refresh(ctx)
}

// Snapshot returns the current cached state. Synchronous, never blocks on
// the network, and always available, including before the first fetch
// completes.
func (r *Registry) Snapshot() *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot
}

// Subscribe registers a subscriber for future snapshots and returns its
// cancel function. The subscriber is not called with the current snapshot;
// read it directly if needed.
func (r *Registry) Subscribe(fn Subscriber) (cancel func()) {
	r.mu.Lock()
	id := r.nextSubID
	r.nextSubID++
	r.subscribers[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.subscribers, id)
		r.mu.Unlock()
	}
}

// Refresh fetches the full connection list and replaces the snapshot in one
// atomic step. Failures never propagate: the previous list and active
// pointer are retained and the error lands in the snapshot's Err field.
// Concurrent refreshes are allowed; the last one to complete wins.
func (r *Registry) Refresh(ctx context.Context) {
	r.begin()

	connections, err := r.backend.ListConnections(ctx)
	if err != nil {
		r.logger.Warn("Connection refresh failed", zap.Error(err))
		r.commit(func(next *Snapshot) {
			next.Err = refreshErrorMessage(err)
		})
		return
	}

	r.commit(func(next *Snapshot) {
		next.Connections = connections
		next.Active = findActive(connections, r.logger)
		next.Err = ""
	})
}

// SetActive asks the backend to activate the given connection, then patches
// the cached list so exactly one entry is active. The patch is applied
// before SetActive returns, so a caller reading the snapshot immediately
// afterwards sees the new state. Unlike Refresh, failures are returned to
// the caller as well as recorded in the snapshot.
func (r *Registry) SetActive(ctx context.Context, id int64) error {
	if !r.contains(id) {
		err := fmt.Errorf("%w: connection %d is not in the cached list", apperrors.ErrNotFound, id)
		r.commitSync(func(next *Snapshot) {
			next.Err = err.Error()
		})
		return err
	}

	r.begin()

	if err := r.backend.ActivateConnection(ctx, id); err != nil {
		r.logger.Warn("Connection activation failed",
			zap.Int64("connection_id", id),
			zap.Error(err))
		r.commit(func(next *Snapshot) {
			next.Err = fmt.Sprintf("failed to activate connection: %v", err)
		})
		return err
	}

	r.commit(func(next *Snapshot) {
		for i := range next.Connections {
			next.Connections[i].IsActive = next.Connections[i].ID == id
		}
		next.Active = findActive(next.Connections, r.logger)
		next.Err = ""
	})
	return nil
}

// begin marks an operation in flight and publishes the loading overlay over
// the current data.
func (r *Registry) begin() {
	r.mu.Lock()
	r.inflight++
	next := r.cloneLocked()
	next.Loading = true
	r.snapshot = next
	subs := r.subscribersLocked()
	r.mu.Unlock()

	notify(subs, next)
}

// commit ends an in-flight operation and publishes a new snapshot produced
// by mutate over a clone of the current one. Snapshots are replaced whole;
// subscribers never observe a torn state.
func (r *Registry) commit(mutate func(*Snapshot)) {
	r.mu.Lock()
	r.inflight--
	next := r.cloneLocked()
	mutate(next)
	next.Loading = r.inflight > 0
	r.snapshot = next
	subs := r.subscribersLocked()
	r.mu.Unlock()

	notify(subs, next)
}

// commitSync publishes a mutation that had no in-flight network call.
func (r *Registry) commitSync(mutate func(*Snapshot)) {
	r.mu.Lock()
	next := r.cloneLocked()
	mutate(next)
	r.snapshot = next
	subs := r.subscribersLocked()
	r.mu.Unlock()

	notify(subs, next)
}

// cloneLocked deep-copies the snapshot so the previous reference stays
// immutable. The active pointer is recomputed to reference the copied
// slice, never the old one.
func (r *Registry) cloneLocked() *Snapshot {
	prev := r.snapshot
	next := &Snapshot{
		Loading: prev.Loading,
		Err:     prev.Err,
	}
	if prev.Connections != nil {
		next.Connections = make([]models.Connection, len(prev.Connections))
		copy(next.Connections, prev.Connections)
	}
	if prev.Active != nil {
		for i := range next.Connections {
			if next.Connections[i].ID == prev.Active.ID {
				next.Active = &next.Connections[i]
				break
			}
		}
	}
	return next
}

func (r *Registry) subscribersLocked() []Subscriber {
	subs := make([]Subscriber, 0, len(r.subscribers))
	for _, fn := range r.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func (r *Registry) contains(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.snapshot.Connections {
		if r.snapshot.Connections[i].ID == id {
			return true
		}
	}
	return false
}

func notify(subs []Subscriber, snapshot *Snapshot) {
	for _, fn := range subs {
		fn(snapshot)
	}
}

// findActive scans for the active entry. If the server ever reports more
// than one, the first wins and the rest are logged; the next refresh
// reflects whatever the server settles on.
func findActive(connections []models.Connection, logger *zap.Logger) *models.Connection {
	var active *models.Connection
	for i := range connections {
		if !connections[i].IsActive {
			continue
		}
		if active == nil {
			active = &connections[i]
			continue
		}
		logger.Warn("Multiple connections flagged active; using the first",
			zap.Int64("kept", active.ID),
			zap.Int64("ignored", connections[i].ID))
	}
	return active
}

func refreshErrorMessage(err error) string {
	return fmt.Sprintf("failed to load connections: %v", err)
}
