package executor

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/mwhitford/stagehand/internal/config"
)

// Registry holds the executors built from configuration, selected by
// profile name. Executors are composed behind the Executor interface; no
// implementation hierarchy exists.
type Registry struct {
	mu        sync.RWMutex
	executors map[string]Executor
}

// NewRegistry builds a registry with one CLI executor per config profile.
func NewRegistry(cfg *config.Config, logger *slog.Logger) *Registry {
	r := &Registry{executors: make(map[string]Executor, len(cfg.Profiles))}
	for _, profile := range cfg.Profiles {
		r.executors[profile.Name] = NewCLIExecutor(profile, logger)
	}
	return r
}

// Register adds or replaces an executor.
func (r *Registry) Register(e Executor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executors[e.Name()] = e
}

// Get returns the executor for the profile name.
func (r *Registry) Get(name string) (Executor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.executors[name]
	if !ok {
		return nil, fmt.Errorf("no executor registered for profile %q", name)
	}
	return e, nil
}

// Names returns the registered profile names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.executors))
	for name := range r.executors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
