package backends

import (
	"maps"
	"slices"
	"sync"
)

// BackendFactory creates a backend instance from a backend specific configuration value
type BackendFactory func(config any) (Backend, error)

var (
	registryMu         sync.RWMutex
	registeredBackends = make(map[string]BackendFactory)
)

// Register registers a backend factory under name, replacing any previous one.
// Backend packages call it from init.
func Register(name string, factory BackendFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registeredBackends[name] = factory
}

// Create creates a backend instance by name
func Create(name string, config any) (Backend, error) {
	registryMu.RLock()
	factory, ok := registeredBackends[name]
	registryMu.RUnlock()
	if !ok {
		return nil, NewBackendNotFoundError(name)
	}
	return factory(config)
}

// Registered returns the sorted names of all registered backends
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return slices.Sorted(maps.Keys(registeredBackends))
}
