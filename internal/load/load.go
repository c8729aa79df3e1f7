// Package load wraps golang.org/x/tools/go/packages for capform's analysis
// passes. It loads fully type-checked packages from a project directory and
// exposes the named-type lookups the scanner and the manifest resolver need.
package load

import (
	"context"
	"fmt"
	"go/types"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
)

// loadMode requests type information plus syntax; the prescan works on raw
// files, but the probes need fully resolved types.
const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedSyntax |
	packages.NeedImports |
	packages.NeedDeps

// Load type-checks the packages matched by patterns under dir. Patterns
// default to "./...". Any package-level error (a package that does not
// type-check) aborts the load: a broken project is a build defect, not a
// capability non-match.
func Load(ctx context.Context, dir string, patterns []string) ([]*packages.Package, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	cfg := &packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Dir:     dir,
		Env:     append(os.Environ(), "GOWORK=off"),
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	var errs []string
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, fmt.Sprintf("%s: %s", pkg.PkgPath, e.Msg))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("load: package errors:\n  %s", strings.Join(errs, "\n  "))
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("load: no packages matched %v under %s", patterns, dir)
	}
	return pkgs, nil
}

// FindModuleRoot walks up from dir to the nearest directory containing a
// go.mod file.
func FindModuleRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("load: resolving %s: %w", dir, err)
	}
	for {
		if _, err := os.Stat(filepath.Join(abs, "go.mod")); err == nil {
			return abs, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("load: no go.mod found above %s", dir)
		}
		abs = parent
	}
}

// NamedTypes returns the exported, non-alias named types declared at package
// scope, sorted by name for deterministic scans.
func NamedTypes(pkg *packages.Package) []*types.Named {
	scope := pkg.Types.Scope()
	names := scope.Names()
	sort.Strings(names)

	var out []*types.Named
	for _, name := range names {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !tn.Exported() || tn.IsAlias() {
			continue
		}
		if named, ok := tn.Type().(*types.Named); ok {
			out = append(out, named)
		}
	}
	return out
}

// TypeIndex maps package import paths to their type-checked packages,
// including transitive dependencies. The manifest resolver uses it to look up
// qualified type names.
type TypeIndex map[string]*types.Package

// NewTypeIndex builds a TypeIndex over pkgs and everything they import.
func NewTypeIndex(pkgs []*packages.Package) TypeIndex {
	idx := make(TypeIndex)
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		if p.Types != nil {
			idx[p.PkgPath] = p.Types
		}
	})
	return idx
}

// LookupNamed resolves a package-level type by import path and name.
func (idx TypeIndex) LookupNamed(pkgPath, name string) (types.Type, error) {
	tp, ok := idx[pkgPath]
	if !ok {
		return nil, fmt.Errorf("load: package %q not loaded", pkgPath)
	}
	obj := tp.Scope().Lookup(name)
	if obj == nil {
		return nil, fmt.Errorf("load: type %q not found in package %q", name, pkgPath)
	}
	tn, ok := obj.(*types.TypeName)
	if !ok {
		return nil, fmt.Errorf("load: %q in package %q is not a type", name, pkgPath)
	}
	return tn.Type(), nil
}
