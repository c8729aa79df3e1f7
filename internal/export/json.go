// Package export renders a stored capability index into the formats the CLI
// emits: a JSON report and a Mermaid capability diagram.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dusk-indust/capform/internal/index"
)

// ScanExport is the top-level JSON export structure.
type ScanExport struct {
	Project      string             `json:"project"`
	ExportedAt   string             `json:"exportedAt"`
	Capabilities []CapabilityExport `json:"capabilities"`
	Packages     []PackageExport    `json:"packages,omitempty"`
	Stats        *index.IndexStats  `json:"stats,omitempty"`
}

// CapabilityExport describes one capability and the types providing it.
type CapabilityExport struct {
	Name      string   `json:"name"`
	Method    string   `json:"method"`
	Shape     string   `json:"shape,omitempty"`
	Providers []string `json:"providers,omitempty"`
}

// PackageExport describes one scanned package.
type PackageExport struct {
	Path  string `json:"path"`
	Files int    `json:"files,omitempty"`
	LOC   int    `json:"loc,omitempty"`
	Types int    `json:"types"`
}

// BuildExport assembles a ScanExport from a populated store.
func BuildExport(ctx context.Context, store index.Store, project string) (*ScanExport, error) {
	out := &ScanExport{
		Project:    project,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
	}

	caps, err := store.Capabilities(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	for _, c := range caps {
		providers, err := store.Providers(ctx, c.Name)
		if err != nil {
			return nil, fmt.Errorf("export: %w", err)
		}
		ce := CapabilityExport{Name: c.Name, Method: c.Method, Shape: c.Shape}
		for _, p := range providers {
			ce.Providers = append(ce.Providers, p.ID)
		}
		out.Capabilities = append(out.Capabilities, ce)
	}

	pkgs, err := store.Packages(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	for _, p := range pkgs {
		types, err := store.TypesInPackage(ctx, p.Path)
		if err != nil {
			return nil, fmt.Errorf("export: %w", err)
		}
		out.Packages = append(out.Packages, PackageExport{
			Path:  p.Path,
			Files: p.Files,
			LOC:   p.LOC,
			Types: len(types),
		})
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	out.Stats = stats
	return out, nil
}

// WriteJSON writes the export as indented JSON.
func WriteJSON(w io.Writer, export *ScanExport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(export); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}
