// Package registry provides an in-memory HandlerResolver for binding task
// resource identifiers to handler implementations.
package registry

import (
	"sort"
	"sync"

	"github.com/stepmill/stepmill/pkg/ports"
)

// Registry manages the available task handlers. It implements
// ports.HandlerResolver and is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]ports.TaskHandler
}

// New creates a new empty registry.
func New() *Registry {
	return &Registry{
		handlers: make(map[string]ports.TaskHandler),
	}
}

// Register binds a handler to a resource identifier.
// If the identifier is already bound, the handler is overwritten.
func (r *Registry) Register(resource string, fn ports.TaskHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[resource] = fn
}

// Resolve looks up the handler bound to a resource identifier.
func (r *Registry) Resolve(resource string) (ports.TaskHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.handlers[resource]
	return fn, ok
}

// Resources returns the identifiers currently bound, sorted.
func (r *Registry) Resources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
