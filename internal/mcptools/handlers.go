// Package mcptools exposes the capability index over the Model Context
// Protocol so that agents can trigger scans and query results.
package mcptools

import (
	"context"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/capform/internal/index"
	"github.com/dusk-indust/capform/internal/scan"
)

// CapabilityService holds the index store shared by all MCP tool handlers.
type CapabilityService struct {
	store index.Store
}

// NewCapabilityService creates a CapabilityService over the given store.
func NewCapabilityService(store index.Store) *CapabilityService {
	return &CapabilityService{store: store}
}

// ScanCapabilities runs a full capability scan and populates the index.
func (s *CapabilityService) ScanCapabilities(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ScanCapabilitiesInput,
) (*mcp.CallToolResult, ScanCapabilitiesOutput, error) {
	if input.ProjectRoot == "" {
		return nil, ScanCapabilitiesOutput{}, fmt.Errorf("projectRoot is required")
	}
	info, err := os.Stat(input.ProjectRoot)
	if err != nil {
		return nil, ScanCapabilitiesOutput{}, fmt.Errorf("cannot access projectRoot: %w", err)
	}
	if !info.IsDir() {
		return nil, ScanCapabilitiesOutput{}, fmt.Errorf("projectRoot is not a directory: %s", input.ProjectRoot)
	}

	sc := scan.NewScanner(scan.Config{
		ProjectRoot:  input.ProjectRoot,
		ManifestPath: input.ManifestPath,
		Workers:      input.Workers,
	}, s.store)
	defer sc.Close()

	res, err := sc.Run(ctx)
	if err != nil {
		return nil, ScanCapabilitiesOutput{}, fmt.Errorf("scan: %w", err)
	}

	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, ScanCapabilitiesOutput{}, fmt.Errorf("stats: %w", err)
	}
	return nil, ScanCapabilitiesOutput{Findings: res.Findings, Stats: *stats}, nil
}

// QueryCapability answers whether a single type provides a capability.
// A type or capability missing from the index is a plain false, not an error.
func (s *CapabilityService) QueryCapability(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryCapabilityInput,
) (*mcp.CallToolResult, QueryCapabilityOutput, error) {
	if input.TypeID == "" {
		return nil, QueryCapabilityOutput{}, fmt.Errorf("typeId is required")
	}
	if input.Capability == "" {
		return nil, QueryCapabilityOutput{}, fmt.Errorf("capability is required")
	}

	caps, err := s.store.CapabilitiesOf(ctx, input.TypeID)
	if err != nil {
		return nil, QueryCapabilityOutput{}, fmt.Errorf("capabilities of %s: %w", input.TypeID, err)
	}

	out := QueryCapabilityOutput{}
	for _, name := range caps {
		if name == input.Capability {
			out.Provides = true
			break
		}
	}

	all, err := s.store.Capabilities(ctx)
	if err != nil {
		return nil, QueryCapabilityOutput{}, fmt.Errorf("capabilities: %w", err)
	}
	for _, c := range all {
		if c.Name == input.Capability {
			out.Shape = c.Shape
			break
		}
	}
	return nil, out, nil
}

// ListProviders returns every type providing the named capability.
func (s *CapabilityService) ListProviders(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListProvidersInput,
) (*mcp.CallToolResult, ListProvidersOutput, error) {
	if input.Capability == "" {
		return nil, ListProvidersOutput{}, fmt.Errorf("capability is required")
	}

	providers, err := s.store.Providers(ctx, input.Capability)
	if err != nil {
		return nil, ListProvidersOutput{}, fmt.Errorf("providers of %s: %w", input.Capability, err)
	}
	return nil, ListProvidersOutput{Providers: providers, Total: len(providers)}, nil
}

// IndexStats returns node and edge counts for the current index.
func (s *CapabilityService) IndexStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ IndexStatsInput,
) (*mcp.CallToolResult, IndexStatsOutput, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, IndexStatsOutput{}, fmt.Errorf("stats: %w", err)
	}
	return nil, IndexStatsOutput{Stats: *stats}, nil
}
