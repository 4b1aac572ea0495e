package core

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[TableKind]Descriptor)
	registryMu sync.RWMutex
)

// Register adds a panel descriptor to the registry.
// Panics if a descriptor with the same kind is already registered.
func Register(desc Descriptor) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[desc.Kind]; exists {
		panic(fmt.Sprintf("table already registered: %s", desc.Kind))
	}
	if desc.Arity != ArityFlags && desc.MaxSlots <= 0 {
		panic(fmt.Sprintf("table %s: MaxSlots must be positive", desc.Kind))
	}

	// Default the audit section to the display label
	if desc.Section == "" {
		desc.Section = desc.Label
	}

	registry[desc.Kind] = desc
}

// Get returns a descriptor by kind.
// Returns false if not found.
func Get(kind TableKind) (Descriptor, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	desc, ok := registry[kind]
	return desc, ok
}

// All returns all registered descriptors sorted by kind.
func All() []Descriptor {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Descriptor, 0, len(registry))
	for _, desc := range registry {
		result = append(result, desc)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Kind < result[j].Kind
	})

	return result
}

// TableCount returns the number of registered descriptors.
func TableCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered descriptors.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[TableKind]Descriptor)
}
