package harpload

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var ErrUnknownAlgorithm = errors.New("harpload: unknown algorithm")

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes an algorithm available by name. Registering the same
// name twice panics.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if factory == nil {
		panic("harpload: Register factory is nil")
	}
	if _, dup := registry[name]; dup {
		panic("harpload: Register called twice for algorithm " + name)
	}
	registry[name] = factory
}

func Lookup(name string) (Algorithm, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q, registered: [%s]", ErrUnknownAlgorithm, name, strings.Join(Algorithms(), " "))
	}
	return factory(), nil
}

// Algorithms lists the registered names in sorted order.
func Algorithms() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
