package effect

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates one effect instance with the given registry-assigned
// instance identifier.
type Factory func(instanceID uint64) Effect

// Registry maps effect type identifiers to factories and hands out unique
// instance identifiers. Multiple instances of the same type can coexist; the
// (TypeID, InstanceID) pair distinguishes them.
type Registry struct {
	mu        sync.Mutex
	factories map[string]Factory
	nextID    uint64
}

// NewRegistry creates an empty Registry.
//
// Returns:
//   - *Registry: the registry
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under the given type identifier.
//
// Parameters:
//   - typeID: the effect type identifier
//   - f: the factory to register
//
// Returns:
//   - error: an error if the type is already registered or the factory is nil
func (r *Registry) Register(typeID string, f Factory) error {
	if f == nil {
		return fmt.Errorf("effect type %q registered with nil factory", typeID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[typeID]; exists {
		return fmt.Errorf("effect type %q already registered", typeID)
	}
	r.factories[typeID] = f
	return nil
}

// Create instantiates an effect of the given type with a fresh instance
// identifier. Identifiers are never reused, even after the instance is
// disposed.
//
// Parameters:
//   - typeID: the effect type identifier
//
// Returns:
//   - Effect: the new instance
//   - error: an error if the type is not registered
func (r *Registry) Create(typeID string) (Effect, error) {
	r.mu.Lock()
	f, exists := r.factories[typeID]
	if !exists {
		r.mu.Unlock()
		return nil, fmt.Errorf("unknown effect type %q", typeID)
	}
	id := r.nextID
	r.nextID++
	r.mu.Unlock()

	return f(id), nil
}

// Types returns the registered type identifiers in sorted order.
//
// Returns:
//   - []string: the sorted type identifiers
func (r *Registry) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
