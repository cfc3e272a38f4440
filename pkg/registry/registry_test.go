package registry

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/apperrors"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/models"
)

// fakeBackend scripts list/activate responses and counts calls.
type fakeBackend struct {
	mu            sync.Mutex
	connections   []models.Connection
	listErr       error
	activateErr   error
	listCalls     int
	activateCalls int
}

func (f *fakeBackend) ListConnections(ctx context.Context) ([]models.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Connection, len(f.connections))
	copy(out, f.connections)
	return out, nil
}

func (f *fakeBackend) ActivateConnection(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activateCalls++
	if f.activateErr != nil {
		return f.activateErr
	}
	for i := range f.connections {
		f.connections[i].IsActive = f.connections[i].ID == id
	}
	return nil
}

func threeConnections() []models.Connection {
	return []models.Connection{
		{ID: 1, Name: "prod", IsActive: true},
		{ID: 2, Name: "staging"},
		{ID: 3, Name: "dev"},
	}
}

func TestSnapshotBeforeFirstRefresh(t *testing.T) {
	r := New(&fakeBackend{}, zap.NewNop())

	snap := r.Snapshot()
	if !snap.Loading {
		t.Error("expected loading before first refresh")
	}
	if len(snap.Connections) != 0 {
		t.Errorf("expected empty list, got %d entries", len(snap.Connections))
	}
	if snap.Active != nil {
		t.Error("expected no active connection before first refresh")
	}
}

func TestRefreshPopulatesSnapshot(t *testing.T) {
	backend := &fakeBackend{connections: threeConnections()}
	r := New(backend, zap.NewNop())

	r.Refresh(context.Background())

	snap := r.Snapshot()
	if snap.Loading {
		t.Error("expected loading cleared after refresh")
	}
	if snap.Err != "" {
		t.Errorf("expected no error, got %q", snap.Err)
	}
	if len(snap.Connections) != 3 {
		t.Fatalf("expected 3 connections, got %d", len(snap.Connections))
	}
	if snap.Active == nil || snap.Active.ID != 1 {
		t.Errorf("expected active connection 1, got %+v", snap.Active)
	}
}

func TestRefreshFailureKeepsStaleData(t *testing.T) {
	backend := &fakeBackend{connections: threeConnections()}
	r := New(backend, zap.NewNop())
	r.Refresh(context.Background())
	before := r.Snapshot()

	backend.mu.Lock()
	backend.listErr = errors.New("connection refused")
	backend.mu.Unlock()
	r.Refresh(context.Background())

	after := r.Snapshot()
	if !reflect.DeepEqual(before.Connections, after.Connections) {
		t.Error("expected list unchanged after failed refresh")
	}
	if after.Active == nil || after.Active.ID != before.Active.ID {
		t.Error("expected active pointer unchanged after failed refresh")
	}
	if after.Err == "" {
		t.Error("expected error recorded after failed refresh")
	}
	if after.Loading {
		t.Error("expected loading cleared after failed refresh")
	}
}

func TestSetActivePatchesExactlyOne(t *testing.T) {
	backend := &fakeBackend{connections: threeConnections()}
	r := New(backend, zap.NewNop())
	r.Refresh(context.Background())

	if err := r.SetActive(context.Background(), 2); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}

	snap := r.Snapshot()
	if snap.Active == nil || snap.Active.ID != 2 {
		t.Fatalf("expected active connection 2, got %+v", snap.Active)
	}
	for _, conn := range snap.Connections {
		if conn.IsActive != (conn.ID == 2) {
			t.Errorf("connection %d: active = %v", conn.ID, conn.IsActive)
		}
	}
	if snap.Err != "" {
		t.Errorf("expected error cleared, got %q", snap.Err)
	}
}

func TestSetActiveSequencePreservesSingleActive(t *testing.T) {
	backend := &fakeBackend{connections: threeConnections()}
	r := New(backend, zap.NewNop())
	r.Refresh(context.Background())

	for _, id := range []int64{2, 3, 1, 3} {
		if err := r.SetActive(context.Background(), id); err != nil {
			t.Fatalf("SetActive(%d) failed: %v", id, err)
		}

		snap := r.Snapshot()
		activeCount := 0
		for _, conn := range snap.Connections {
			if conn.IsActive {
				activeCount++
			}
		}
		if activeCount != 1 {
			t.Fatalf("after SetActive(%d): %d active connections", id, activeCount)
		}
		if snap.Active == nil || snap.Active.ID != id {
			t.Fatalf("after SetActive(%d): active = %+v", id, snap.Active)
		}
	}
}

func TestSetActiveUnknownIDShortCircuits(t *testing.T) {
	backend := &fakeBackend{connections: threeConnections()}
	r := New(backend, zap.NewNop())
	r.Refresh(context.Background())
	before := r.Snapshot()
	callsBefore := backend.activateCalls

	err := r.SetActive(context.Background(), 99)
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if backend.activateCalls != callsBefore {
		t.Error("expected no network call for unknown id")
	}

	after := r.Snapshot()
	if !reflect.DeepEqual(before.Connections, after.Connections) {
		t.Error("expected list unchanged")
	}
	if after.Err == "" {
		t.Error("expected error recorded in snapshot")
	}
}

func TestSetActiveBackendFailure(t *testing.T) {
	backend := &fakeBackend{connections: threeConnections()}
	r := New(backend, zap.NewNop())
	r.Refresh(context.Background())
	before := r.Snapshot()

	backend.mu.Lock()
	backend.activateErr = errors.New("boom")
	backend.mu.Unlock()

	err := r.SetActive(context.Background(), 2)
	if err == nil {
		t.Fatal("expected error from failed activation")
	}

	after := r.Snapshot()
	if !reflect.DeepEqual(before.Connections, after.Connections) {
		t.Error("expected list unchanged after failed activation")
	}
	if after.Active == nil || after.Active.ID != 1 {
		t.Error("expected active pointer unchanged after failed activation")
	}
	if after.Err == "" {
		t.Error("expected error recorded in snapshot")
	}
}

func TestSnapshotReferenceChangesOnMutation(t *testing.T) {
	backend := &fakeBackend{connections: threeConnections()}
	r := New(backend, zap.NewNop())

	first := r.Snapshot()
	r.Refresh(context.Background())
	second := r.Snapshot()
	if first == second {
		t.Error("expected new snapshot reference after refresh")
	}

	if err := r.SetActive(context.Background(), 2); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}
	third := r.Snapshot()
	if second == third {
		t.Error("expected new snapshot reference after SetActive")
	}

	// The old snapshot must not have been patched in place.
	if second.Active == nil || second.Active.ID != 1 {
		t.Error("expected previous snapshot untouched by SetActive")
	}
}

func TestRefreshIdempotent(t *testing.T) {
	backend := &fakeBackend{connections: threeConnections()}
	r := New(backend, zap.NewNop())

	r.Refresh(context.Background())
	first := r.Snapshot()
	r.Refresh(context.Background())
	second := r.Snapshot()

	if !reflect.DeepEqual(first.Connections, second.Connections) {
		t.Error("expected identical lists from repeated refresh")
	}
	if first.Active.ID != second.Active.ID {
		t.Error("expected identical active pointer from repeated refresh")
	}
	if first.Err != second.Err || first.Loading != second.Loading {
		t.Error("expected identical flags from repeated refresh")
	}
}

func TestNoActiveConnectionIsValidState(t *testing.T) {
	backend := &fakeBackend{connections: []models.Connection{
		{ID: 2, Name: "staging"},
		{ID: 3, Name: "dev"},
	}}
	r := New(backend, zap.NewNop())

	r.Refresh(context.Background())

	snap := r.Snapshot()
	if snap.Active != nil {
		t.Errorf("expected no active connection, got %+v", snap.Active)
	}
	if snap.Err != "" {
		t.Errorf("expected no error for inactive-only list, got %q", snap.Err)
	}
	if len(snap.Connections) != 2 {
		t.Errorf("expected 2 connections, got %d", len(snap.Connections))
	}
}

func TestActivePointerReferencesOwnList(t *testing.T) {
	backend := &fakeBackend{connections: threeConnections()}
	r := New(backend, zap.NewNop())
	r.Refresh(context.Background())

	snap := r.Snapshot()
	if snap.Active != &snap.Connections[0] {
		t.Error("expected active pointer to reference the snapshot's own list")
	}
}

func TestMultipleActiveFirstWins(t *testing.T) {
	backend := &fakeBackend{connections: []models.Connection{
		{ID: 1, IsActive: true},
		{ID: 2, IsActive: true},
	}}
	r := New(backend, zap.NewNop())

	r.Refresh(context.Background())

	snap := r.Snapshot()
	if snap.Active == nil || snap.Active.ID != 1 {
		t.Errorf("expected first flagged connection to win, got %+v", snap.Active)
	}
}

func TestSubscribersReceiveNewSnapshots(t *testing.T) {
	backend := &fakeBackend{connections: threeConnections()}
	r := New(backend, zap.NewNop())

	var mu sync.Mutex
	var received []*Snapshot
	cancel := r.Subscribe(func(s *Snapshot) {
		mu.Lock()
		received = append(received, s)
		mu.Unlock()
	})

	r.Refresh(context.Background())

	mu.Lock()
	count := len(received)
	last := received[count-1]
	mu.Unlock()

	// One notification for the loading overlay, one for the commit.
	if count != 2 {
		t.Fatalf("expected 2 notifications, got %d", count)
	}
	if last.Loading {
		t.Error("expected final notification with loading cleared")
	}
	if len(last.Connections) != 3 {
		t.Errorf("expected final notification with 3 connections, got %d", len(last.Connections))
	}

	cancel()
	r.Refresh(context.Background())

	mu.Lock()
	after := len(received)
	mu.Unlock()
	if after != count {
		t.Error("expected no notifications after unsubscribe")
	}
}

func TestConcurrentRefreshLastCompletedWins(t *testing.T) {
	backend := &fakeBackend{connections: threeConnections()}
	r := New(backend, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Refresh(context.Background())
		}()
	}
	wg.Wait()

	snap := r.Snapshot()
	if snap.Loading {
		t.Error("expected loading cleared once all refreshes completed")
	}
	if len(snap.Connections) != 3 {
		t.Errorf("expected 3 connections, got %d", len(snap.Connections))
	}
	if snap.Active == nil || snap.Active.ID != 1 {
		t.Errorf("expected active connection 1, got %+v", snap.Active)
	}
}

func TestLoadingOverlayDuringRefresh(t *testing.T) {
	release := make(chan struct{})
	backend := &blockingBackend{
		connections: threeConnections(),
		release:     release,
	}
	r := New(backend, zap.NewNop())
	r.Refresh(context.Background()) // not blocked: release starts closed for first call
	before := r.Snapshot()

	backend.block()
	done := make(chan struct{})
	go func() {
		r.Refresh(context.Background())
		close(done)
	}()

	<-backend.started
	snap := r.Snapshot()
	if !snap.Loading {
		t.Error("expected loading overlay while refresh in flight")
	}
	if !reflect.DeepEqual(snap.Connections, before.Connections) {
		t.Error("expected stale data visible while refresh in flight")
	}

	close(release)
	<-done
	if r.Snapshot().Loading {
		t.Error("expected loading cleared after refresh completed")
	}
}

// blockingBackend parks ListConnections until released, after the first call.
type blockingBackend struct {
	mu          sync.Mutex
	connections []models.Connection
	release     chan struct{}
	started     chan struct{}
	blocked     bool
}

func (b *blockingBackend) block() {
	b.mu.Lock()
	b.blocked = true
	b.started = make(chan struct{})
	b.mu.Unlock()
}

func (b *blockingBackend) ListConnections(ctx context.Context) ([]models.Connection, error) {
	b.mu.Lock()
	blocked := b.blocked
	started := b.started
	b.mu.Unlock()

	if blocked {
		close(started)
		<-b.release
	}

	out := make([]models.Connection, len(b.connections))
	copy(out, b.connections)
	return out, nil
}

func (b *blockingBackend) ActivateConnection(ctx context.Context, id int64) error {
	return fmt.Errorf("not supported")
}
