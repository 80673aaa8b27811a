package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Registry tracks which users have open gateway connections. A user may
// hold several connections (multiple tabs); presence transitions happen
// only on the first registration and the last removal, so opening a second
// tab never re-announces online and closing one of two tabs never
// announces offline.
type Registry interface {
	// Register records a connection and reports whether it is the user's
	// first one.
	Register(ctx context.Context, userID uuid.UUID, connID string) (first bool, err error)
	// Unregister removes a connection and reports whether it was the
	// user's last one.
	Unregister(ctx context.Context, userID uuid.UUID, connID string) (last bool, err error)
	IsOnline(ctx context.Context, userID uuid.UUID) (bool, error)
	Connections(ctx context.Context, userID uuid.UUID) ([]string, error)
	OnlineUsers(ctx context.Context) ([]uuid.UUID, error)
	// Clear drops all entries; called at gateway shutdown.
	Clear(ctx context.Context) error
}

// MemoryRegistry is the in-process default. Entries live for the process
// lifetime only and are rebuilt from scratch as clients reconnect.
type MemoryRegistry struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]map[string]struct{}
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		entries: make(map[uuid.UUID]map[string]struct{}),
	}
}

func (r *MemoryRegistry) Register(_ context.Context, userID uuid.UUID, connID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.entries[userID]
	if !ok {
		conns = make(map[string]struct{})
		r.entries[userID] = conns
	}
	conns[connID] = struct{}{}
	return !ok, nil
}

func (r *MemoryRegistry) Unregister(_ context.Context, userID uuid.UUID, connID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.entries[userID]
	if !ok {
		return false, nil
	}
	delete(conns, connID)
	if len(conns) == 0 {
		delete(r.entries, userID)
		return true, nil
	}
	return false, nil
}

func (r *MemoryRegistry) IsOnline(_ context.Context, userID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[userID]
	return ok, nil
}

func (r *MemoryRegistry) Connections(_ context.Context, userID uuid.UUID) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]string, 0, len(r.entries[userID]))
	for id := range r.entries[userID] {
		conns = append(conns, id)
	}
	return conns, nil
}

func (r *MemoryRegistry) OnlineUsers(_ context.Context) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]uuid.UUID, 0, len(r.entries))
	for id := range r.entries {
		users = append(users, id)
	}
	return users, nil
}

func (r *MemoryRegistry) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[uuid.UUID]map[string]struct{})
	return nil
}
