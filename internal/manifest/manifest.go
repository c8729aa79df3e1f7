// Package manifest loads capform.yml, the declarative list of capability
// queries to probe for, and resolves each query's type expressions into
// go/types values ready for the scanner.
package manifest

import (
	"fmt"
	"go/token"
	"go/types"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/capform/internal/form"
	"github.com/dusk-indust/capform/internal/load"
)

// manifestNames are the filenames probed, in order, under the project root.
var manifestNames = []string{"capform.yml", "capform.yaml"}

// Manifest is the top-level capform.yml structure.
type Manifest struct {
	// Packages lists go/packages patterns to scan. Defaults to ["./..."].
	Packages []string `yaml:"packages,omitempty"`

	// Exclude lists directory names the prescan skips entirely,
	// in addition to the built-in vendor/testdata/hidden set.
	Exclude []string `yaml:"exclude,omitempty"`

	// Queries declares the capabilities to probe for.
	Queries []Query `yaml:"queries"`

	// Generate controls the generated constants file.
	Generate GenerateSpec `yaml:"generate,omitempty"`
}

// Query declares a single capability.
type Query struct {
	// Capability names the resulting boolean, e.g. "HasDenseUpdate".
	Capability string `yaml:"capability"`

	// Method is the method name to look for.
	Method string `yaml:"method"`

	// Leading lists the fixed leading parameter types as Go type
	// expressions. For exact queries it is the complete parameter list.
	Leading []string `yaml:"leading,omitempty"`

	// Results lists the required result types.
	Results []string `yaml:"results,omitempty"`

	// Exact switches the query from the arity scan to the exact-signature
	// check: no trailing parameters are deduced.
	Exact bool `yaml:"exact,omitempty"`

	// Variadic marks the final parameter of an exact query as variadic.
	Variadic bool `yaml:"variadic,omitempty"`
}

// GenerateSpec controls the constants file written after a scan.
type GenerateSpec struct {
	// Package is the package name of the generated file. Defaults to "caps".
	Package string `yaml:"package,omitempty"`

	// Output is the file path, relative to the project root.
	// Defaults to "caps/capabilities_gen.go".
	Output string `yaml:"output,omitempty"`
}

// Find locates the manifest file under dir.
func Find(dir string) (string, error) {
	for _, name := range manifestNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("manifest: no capform.yml found in %s", dir)
}

// Load reads, parses, and validates the manifest at path, applying defaults.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates manifest bytes, applying defaults.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	if len(m.Packages) == 0 {
		m.Packages = []string{"./..."}
	}
	if m.Generate.Package == "" {
		m.Generate.Package = "caps"
	}
	if m.Generate.Output == "" {
		m.Generate.Output = filepath.Join("caps", "capabilities_gen.go")
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// validate rejects structurally broken manifests up front. A malformed query
// is a configuration defect and must fail the run, unlike a type that simply
// lacks a capability.
func (m *Manifest) validate() error {
	if len(m.Queries) == 0 {
		return fmt.Errorf("manifest: no queries declared")
	}
	seen := make(map[string]bool, len(m.Queries))
	for i, q := range m.Queries {
		if !token.IsIdentifier(q.Capability) {
			return fmt.Errorf("manifest: query %d: capability %q is not a valid identifier", i, q.Capability)
		}
		if !token.IsIdentifier(q.Method) {
			return fmt.Errorf("manifest: query %d (%s): method %q is not a valid identifier", i, q.Capability, q.Method)
		}
		if seen[q.Capability] {
			return fmt.Errorf("manifest: duplicate capability %q", q.Capability)
		}
		seen[q.Capability] = true
		if q.Variadic && !q.Exact {
			return fmt.Errorf("manifest: query %s: variadic only applies to exact queries", q.Capability)
		}
	}
	if !token.IsIdentifier(m.Generate.Package) {
		return fmt.Errorf("manifest: generate.package %q is not a valid identifier", m.Generate.Package)
	}
	return nil
}

// ResolvedQuery is a Query whose type expressions have been resolved against
// loaded packages.
type ResolvedQuery struct {
	Capability string
	Method     string

	// Form is set for arity-scan queries (IsExact false).
	Form form.Form

	// Sig is set for exact-signature queries (IsExact true).
	Sig     form.Exact
	IsExact bool
}

// Shape renders the probed signature shape for diagnostics and the index.
func (rq ResolvedQuery) Shape() string {
	if rq.IsExact {
		return rq.Sig.String()
	}
	return rq.Form.String()
}

// Resolve resolves every query against idx. Any unresolvable type expression
// is a hard error: it means the manifest asks about types the project cannot
// even name.
func (m *Manifest) Resolve(idx load.TypeIndex) ([]ResolvedQuery, error) {
	out := make([]ResolvedQuery, 0, len(m.Queries))
	for _, q := range m.Queries {
		rq := ResolvedQuery{
			Capability: q.Capability,
			Method:     q.Method,
			IsExact:    q.Exact,
		}

		params, err := resolveAll(q.Leading, idx)
		if err != nil {
			return nil, fmt.Errorf("manifest: query %s: %w", q.Capability, err)
		}
		results, err := resolveAll(q.Results, idx)
		if err != nil {
			return nil, fmt.Errorf("manifest: query %s: %w", q.Capability, err)
		}

		if q.Exact {
			rq.Sig = form.Exact{Params: params, Results: results, Variadic: q.Variadic}
			if err := rq.Sig.Validate(); err != nil {
				return nil, fmt.Errorf("manifest: query %s: %w", q.Capability, err)
			}
		} else {
			rq.Form = form.Form{Leading: params, Results: results}
			if err := rq.Form.Validate(); err != nil {
				return nil, fmt.Errorf("manifest: query %s: %w", q.Capability, err)
			}
		}
		out = append(out, rq)
	}
	return out, nil
}

// resolveAll maps type expressions to types in order.
func resolveAll(exprs []string, idx load.TypeIndex) ([]types.Type, error) {
	if len(exprs) == 0 {
		return nil, nil
	}
	out := make([]types.Type, len(exprs))
	for i, expr := range exprs {
		t, err := ParseTypeExpr(expr, idx)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}
