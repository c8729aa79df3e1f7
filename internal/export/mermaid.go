package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/dusk-indust/capform/internal/index"
)

// GenerateMermaid produces a Mermaid graph TD diagram from a capability
// index. Types are grouped into one subgraph per package; PROVIDES edges
// become arrows into capability nodes.
func GenerateMermaid(ctx context.Context, store index.Store) (string, error) {
	pkgs, err := store.Packages(ctx)
	if err != nil {
		return "", fmt.Errorf("export: packages: %w", err)
	}
	caps, err := store.Capabilities(ctx)
	if err != nil {
		return "", fmt.Errorf("export: capabilities: %w", err)
	}

	// Build node -> ID mapping for Mermaid (alphanumeric only).
	nodeIDs := make(map[string]string)
	nextID := 0
	getID := func(key string) string {
		if id, ok := nodeIDs[key]; ok {
			return id
		}
		id := fmt.Sprintf("N%d", nextID)
		nextID++
		nodeIDs[key] = id
		return id
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	// Capability nodes first, double-bracketed to stand apart from types.
	for _, c := range caps {
		sb.WriteString(fmt.Sprintf("  %s([\"%s\"])\n", getID("cap:"+c.Name), c.Name))
	}

	// One subgraph per package, with its probed types.
	for _, p := range pkgs {
		types, err := store.TypesInPackage(ctx, p.Path)
		if err != nil {
			return "", fmt.Errorf("export: types in %s: %w", p.Path, err)
		}
		if len(types) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("  subgraph %s[\"%.40s\"]\n", getID("pkg:"+p.Path), p.Path))
		for _, tn := range types {
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", getID(tn.ID), tn.Name))
		}
		sb.WriteString("  end\n")
	}

	// PROVIDES edges.
	for _, c := range caps {
		providers, err := store.Providers(ctx, c.Name)
		if err != nil {
			return "", fmt.Errorf("export: providers of %s: %w", c.Name, err)
		}
		for _, p := range providers {
			sb.WriteString(fmt.Sprintf("  %s --> %s\n", getID(p.ID), getID("cap:"+c.Name)))
		}
	}

	return sb.String(), nil
}
