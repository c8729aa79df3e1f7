package mcptools

import (
	"github.com/dusk-indust/capform/internal/index"
	"github.com/dusk-indust/capform/internal/scan"
)

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// ScanCapabilitiesInput is the input for the scan_capabilities MCP tool.
type ScanCapabilitiesInput struct {
	ProjectRoot  string `json:"projectRoot" jsonschema:"the absolute path to the Go project to scan"`
	ManifestPath string `json:"manifestPath,omitempty" jsonschema:"explicit manifest path (default: capform.yml under the project root)"`
	Workers      int    `json:"workers,omitempty" jsonschema:"package-level probe concurrency (default: 4)"`
}

// ScanCapabilitiesOutput is the result of the scan_capabilities MCP tool.
type ScanCapabilitiesOutput struct {
	Findings []scan.Finding   `json:"findings"`
	Stats    index.IndexStats `json:"stats"`
}

// QueryCapabilityInput is the input for the query_capability MCP tool.
type QueryCapabilityInput struct {
	TypeID     string `json:"typeId" jsonschema:"canonical type ID: <import path>.<TypeName>"`
	Capability string `json:"capability" jsonschema:"capability name declared in the manifest"`
}

// QueryCapabilityOutput is the result of the query_capability MCP tool.
type QueryCapabilityOutput struct {
	Provides bool   `json:"provides"`
	Shape    string `json:"shape,omitempty"`
}

// ListProvidersInput is the input for the list_providers MCP tool.
type ListProvidersInput struct {
	Capability string `json:"capability" jsonschema:"capability name declared in the manifest"`
}

// ListProvidersOutput is the result of the list_providers MCP tool.
type ListProvidersOutput struct {
	Providers []index.TypeNode `json:"providers"`
	Total     int              `json:"total"`
}

// IndexStatsInput is the input for the index_stats MCP tool.
type IndexStatsInput struct{}

// IndexStatsOutput is the result of the index_stats MCP tool.
type IndexStatsOutput struct {
	Stats index.IndexStats `json:"stats"`
}
