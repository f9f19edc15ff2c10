package msgstore

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Registry tracks the live message stores, keyed by execution process id.
// A store is created when its subprocess is spawned, stays readable for
// late subscribers, and is torn down with the owning task.
type Registry struct {
	logger *slog.Logger

	mu     sync.Mutex
	stores map[uuid.UUID]*Store
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger: logger,
		stores: make(map[uuid.UUID]*Store),
	}
}

// GetOrCreate returns the store for the given execution process, creating
// it on first use.
func (r *Registry) GetOrCreate(id uuid.UUID) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	if store, ok := r.stores[id]; ok {
		return store
	}
	store := NewStore(r.logger.With("execution_process", id.String()))
	r.stores[id] = store
	return store
}

// Get returns the store for the given execution process, if present.
func (r *Registry) Get(id uuid.UUID) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	store, ok := r.stores[id]
	return store, ok
}

// Remove closes and forgets the store for the given execution process.
func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	store, ok := r.stores[id]
	delete(r.stores, id)
	r.mu.Unlock()
	if ok {
		store.Close()
	}
}
