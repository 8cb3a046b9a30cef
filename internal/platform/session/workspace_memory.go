package session

import (
	"context"
	"sync"
	"time"

	"dental_backend/internal/feature/workspace/domain/entity"
	"dental_backend/internal/feature/workspace/usecase"
)

// WorkspaceMemory implements usecase.WorkspaceRepository in process memory.
// It is used when neither Redis nor a database is configured, and in tests.
type WorkspaceMemory struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]memoryEntry
}

type memoryEntry struct {
	snap      entity.Snapshot
	expiresAt time.Time
}

var _ usecase.WorkspaceRepository = (*WorkspaceMemory)(nil)

// NewWorkspaceMemory creates an empty in-memory store. If ttl is 0, it defaults to DefaultTTL.
func NewWorkspaceMemory(ttl time.Duration) *WorkspaceMemory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &WorkspaceMemory{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]memoryEntry),
	}
}

// Get retrieves a workspace by its ID.
func (m *WorkspaceMemory) Get(_ context.Context, id string) (*entity.Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap, ok := m.lookup(id)
	if !ok {
		return nil, usecase.ErrWorkspaceNotFound
	}
	return entity.Restore(snap)
}

// Update applies fn while holding the store lock.
func (m *WorkspaceMemory) Update(_ context.Context, id string, fn func(w *entity.Workspace) error) (*entity.Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w := entity.NewWorkspace(id)
	if snap, ok := m.lookup(id); ok {
		restored, err := entity.Restore(snap)
		if err != nil {
			return nil, err
		}
		w = restored
	}

	if err := fn(w); err != nil {
		return nil, err
	}
	m.items[id] = memoryEntry{snap: w.Snapshot(), expiresAt: m.now().Add(m.ttl)}
	return w, nil
}

// Delete removes a workspace.
func (m *WorkspaceMemory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, id)
	return nil
}

// Ping always succeeds.
func (m *WorkspaceMemory) Ping(context.Context) error {
	return nil
}

// DeleteExpired removes workspaces not updated within the TTL.
// Returns the number of removed workspaces.
func (m *WorkspaceMemory) DeleteExpired(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, e := range m.items {
		if m.expired(e) {
			delete(m.items, id)
			n++
		}
	}
	return n, nil
}

// lookup returns a live snapshot. Caller must hold mu.
func (m *WorkspaceMemory) lookup(id string) (entity.Snapshot, bool) {
	e, ok := m.items[id]
	if !ok || m.expired(e) {
		return entity.Snapshot{}, false
	}
	return e.snap, true
}

func (m *WorkspaceMemory) expired(e memoryEntry) bool {
	return !m.now().Before(e.expiresAt)
}
