// Package gen renders the capability constants file: one boolean constant
// per (type, capability) pair probed during a scan. The generated file bakes
// the scan's answers into plain consts, so consuming code branches on them
// with zero runtime cost and no reflection.
package gen

import (
	"bytes"
	"context"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"text/template"

	"github.com/dusk-indust/capform/internal/index"
)

// constEntry is one generated constant.
type constEntry struct {
	Name   string // e.g. "NesterovUpdateHasDenseUpdate"
	TypeID string // doc comment: the canonical type ID
	Value  bool
}

// fileContext is the template input.
type fileContext struct {
	Package string
	Consts  []constEntry
}

var fileTemplate = template.Must(template.New("caps").Parse(`// Code generated by capform; DO NOT EDIT.

// Package {{.Package}} holds the capability values produced by a capform scan.
package {{.Package}}
{{if .Consts}}
const (
{{- range .Consts}}
	// {{.TypeID}}
	{{.Name}} = {{.Value}}
{{- end}}
)
{{end}}`))

// Build renders the constants file for every (type, capability) pair in the
// store. Constant names are <TypeName><Capability>; a name collision (two
// packages declaring the same type name) is an error, because the generated
// file could not compile.
func Build(ctx context.Context, store index.Store, pkgName string) ([]byte, error) {
	caps, err := store.Capabilities(ctx)
	if err != nil {
		return nil, fmt.Errorf("gen: %w", err)
	}
	pkgs, err := store.Packages(ctx)
	if err != nil {
		return nil, fmt.Errorf("gen: %w", err)
	}

	fc := fileContext{Package: pkgName}
	seen := make(map[string]string) // constant name -> type ID

	for _, pkg := range pkgs {
		types, err := store.TypesInPackage(ctx, pkg.Path)
		if err != nil {
			return nil, fmt.Errorf("gen: %w", err)
		}
		for _, tn := range types {
			provided, err := store.CapabilitiesOf(ctx, tn.ID)
			if err != nil {
				return nil, fmt.Errorf("gen: %w", err)
			}
			set := make(map[string]bool, len(provided))
			for _, name := range provided {
				set[name] = true
			}

			for _, c := range caps {
				name := tn.Name + c.Name
				if prev, dup := seen[name]; dup {
					return nil, fmt.Errorf("gen: constant %s generated for both %s and %s; narrow the scanned packages", name, prev, tn.ID)
				}
				seen[name] = tn.ID
				fc.Consts = append(fc.Consts, constEntry{
					Name:   name,
					TypeID: tn.ID,
					Value:  set[c.Name],
				})
			}
		}
	}

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, fc); err != nil {
		return nil, fmt.Errorf("gen: %w", err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("gen: formatting output: %w", err)
	}
	return src, nil
}

// WriteFile writes the generated source to path, creating parent directories.
func WriteFile(path string, src []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("gen: %w", err)
	}
	if err := os.WriteFile(path, src, 0o644); err != nil {
		return fmt.Errorf("gen: %w", err)
	}
	return nil
}
