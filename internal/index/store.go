package index

import (
	"context"
	"io"
)

// Store is the persistence interface for the capability index.
// Two implementations exist: KuzuStore (embedded graph database, cgo builds)
// and MemStore (pure Go fallback used when cgo is unavailable).
type Store interface {
	io.Closer

	// InitSchema creates node and relationship tables. Idempotent.
	InitSchema(ctx context.Context) error

	AddPackage(ctx context.Context, node PackageNode) error
	// AddType records a named type and links it to its declaring package.
	AddType(ctx context.Context, node TypeNode) error
	AddCapability(ctx context.Context, node CapabilityNode) error
	// AddProvides records that the type answered a capability probe with
	// true. Failed probes leave no trace.
	AddProvides(ctx context.Context, typeID, capability string) error

	GetType(ctx context.Context, id string) (*TypeNode, error)
	Packages(ctx context.Context) ([]PackageNode, error)
	Capabilities(ctx context.Context) ([]CapabilityNode, error)
	TypesInPackage(ctx context.Context, pkgPath string) ([]TypeNode, error)
	// Providers returns every type that provides the named capability.
	Providers(ctx context.Context, capability string) ([]TypeNode, error)
	// CapabilitiesOf returns the capability names a type provides.
	CapabilitiesOf(ctx context.Context, typeID string) ([]string, error)
	Stats(ctx context.Context) (*IndexStats, error)
}
