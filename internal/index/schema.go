// Package index stores the outcome of capability scans as a small graph:
// packages declare types, and types provide capabilities. Only positive
// probe outcomes become edges; the index never records which arity matched.
package index

// --- Enums ---

// TypeKind classifies scanned named types by their underlying type.
type TypeKind string

const (
	TypeKindStruct    TypeKind = "struct"
	TypeKindInterface TypeKind = "interface"
	TypeKindOther     TypeKind = "other"
)

// --- Models ---

// PackageNode represents a scanned Go package.
type PackageNode struct {
	Path  string `json:"path"` // import path
	Dir   string `json:"dir"`  // project-relative directory
	Files int    `json:"files"`
	LOC   int    `json:"loc"`
}

// TypeNode represents a named type that was probed.
type TypeNode struct {
	ID      string   `json:"id"` // "<import path>.<name>"
	Name    string   `json:"name"`
	PkgPath string   `json:"pkgPath"`
	Kind    TypeKind `json:"kind"`
}

// CapabilityNode represents one manifest query.
type CapabilityNode struct {
	Name   string `json:"name"`
	Method string `json:"method"`
	Shape  string `json:"shape"` // diagnostic rendering of the probed form
}

// IndexStats summarizes a stored scan.
type IndexStats struct {
	PackageCount    int `json:"packageCount"`
	TypeCount       int `json:"typeCount"`
	CapabilityCount int `json:"capabilityCount"`
	ProvidesCount   int `json:"providesCount"`
}

// TypeID builds the canonical node ID for a named type.
func TypeID(pkgPath, name string) string {
	return pkgPath + "." + name
}
