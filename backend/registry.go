package backend

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/life/gpucore"
)

var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
	// Priority order for backend selection (first that opens wins).
	// wgpu > software (software is the fallback that always works).
	backendPriority = []string{BackendWGPU, BackendSoftware}
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns the registered backend names in sorted order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Open opens a device from the named backend.
func Open(name string) (gpucore.Device, error) {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrBackendNotAvailable, name, Available())
	}

	dev, err := factory()
	if err != nil {
		return nil, fmt.Errorf("backend %s: %w", name, err)
	}
	propagateLogger(dev)
	Logger().Debug("backend: device opened", "backend", name)
	return dev, nil
}

// Default opens the best available device based on priority.
// Priority order: wgpu > software. Backends that fail to open are skipped
// with a warning.
func Default() (gpucore.Device, error) {
	registryMu.RLock()
	order := make([]string, 0, len(backends))
	for _, name := range backendPriority {
		if _, ok := backends[name]; ok {
			order = append(order, name)
		}
	}
	for name := range backends {
		if !contains(backendPriority, name) {
			order = append(order, name)
		}
	}
	registryMu.RUnlock()

	for _, name := range order {
		dev, err := Open(name)
		if err == nil {
			return dev, nil
		}
		Logger().Warn("backend: skipping", "backend", name, "err", err)
	}
	return nil, ErrBackendNotAvailable
}

// OpenOrDefault opens the named backend, or the default one when name is
// empty or "auto".
func OpenOrDefault(name string) (gpucore.Device, error) {
	if name == "" || name == "auto" {
		return Default()
	}
	return Open(name)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
