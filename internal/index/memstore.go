package index

import (
	"context"
	"sort"
	"sync"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex.
// Query results are sorted so repeated scans produce identical output.
type MemStore struct {
	mu       sync.RWMutex
	packages map[string]PackageNode
	types    map[string]TypeNode       // key: canonical type ID
	caps     map[string]CapabilityNode // key: capability name
	provides map[string]map[string]bool
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{
		packages: make(map[string]PackageNode),
		types:    make(map[string]TypeNode),
		caps:     make(map[string]CapabilityNode),
		provides: make(map[string]map[string]bool),
	}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// AddPackage stores a package node keyed by its import path.
func (m *MemStore) AddPackage(_ context.Context, node PackageNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.packages[node.Path] = node
	return nil
}

// AddType stores a type node keyed by its canonical ID.
func (m *MemStore) AddType(_ context.Context, node TypeNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.types[node.ID] = node
	return nil
}

// AddCapability stores a capability node keyed by its name.
func (m *MemStore) AddCapability(_ context.Context, node CapabilityNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caps[node.Name] = node
	return nil
}

// AddProvides records that the type answered the capability probe with true.
// Recording the same pair twice is harmless.
func (m *MemStore) AddProvides(_ context.Context, typeID, capability string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.provides[typeID]
	if !ok {
		set = make(map[string]bool)
		m.provides[typeID] = set
	}
	set[capability] = true
	return nil
}

// GetType returns the type node for the given ID, or nil if not found.
func (m *MemStore) GetType(_ context.Context, id string) (*TypeNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.types[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// Packages returns all stored packages sorted by import path.
func (m *MemStore) Packages(_ context.Context) ([]PackageNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]PackageNode, 0, len(m.packages))
	for _, p := range m.packages {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Capabilities returns all stored capabilities sorted by name.
func (m *MemStore) Capabilities(_ context.Context) ([]CapabilityNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]CapabilityNode, 0, len(m.caps))
	for _, c := range m.caps {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// TypesInPackage returns the types declared in the given package, sorted by name.
func (m *MemStore) TypesInPackage(_ context.Context, pkgPath string) ([]TypeNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []TypeNode
	for _, t := range m.types {
		if t.PkgPath == pkgPath {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Providers returns every type providing the named capability, sorted by ID.
func (m *MemStore) Providers(_ context.Context, capability string) ([]TypeNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []TypeNode
	for id, set := range m.provides {
		if !set[capability] {
			continue
		}
		if t, ok := m.types[id]; ok {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CapabilitiesOf returns the sorted capability names the type provides.
func (m *MemStore) CapabilitiesOf(_ context.Context, typeID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	set, ok := m.provides[typeID]
	if !ok {
		return nil, nil
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// Stats returns counts of all node and edge kinds in the index.
func (m *MemStore) Stats(_ context.Context) (*IndexStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	provides := 0
	for _, set := range m.provides {
		provides += len(set)
	}
	return &IndexStats{
		PackageCount:    len(m.packages),
		TypeCount:       len(m.types),
		CapabilityCount: len(m.caps),
		ProvidesCount:   provides,
	}, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}
