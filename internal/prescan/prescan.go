// Package prescan builds a cheap syntactic index of a Go project before any
// type checking: which method names each package directory declares, and
// whether anything in it embeds another type. The scanner consults the index
// to skip packages that cannot possibly provide a queried capability, since
// full type checking is far more expensive than parsing.
package prescan

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
)

// PackageFacts summarizes the syntactic facts for one package directory.
type PackageFacts struct {
	// Dir is the project-relative package directory ("." for the root).
	Dir string

	// Files and LOC count the parsed (non-test) Go files.
	Files int
	LOC   int

	// MethodNames holds every method name declared in the package, on
	// concrete receivers and in interface types alike.
	MethodNames map[string]bool

	// HasEmbedding is true when any struct or interface in the package
	// embeds another type. Embedded types can promote methods declared in
	// other packages, so such a package is never skipped.
	HasEmbedding bool
}

// Index holds per-directory facts for a project tree.
type Index struct {
	packages map[string]*PackageFacts
}

// alwaysSkipped are directory names never scanned regardless of config.
var alwaysSkipped = map[string]bool{
	"vendor":   true,
	"testdata": true,
}

// Build walks root, parses every non-test .go file with the tree-sitter Go
// grammar, and aggregates facts per package directory. Directories named in
// exclude are skipped, as are hidden, vendor, and testdata directories.
func Build(root string, exclude []string) (*Index, error) {
	excluded := make(map[string]bool, len(exclude))
	for _, d := range exclude {
		excluded[d] = true
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(tree_sitter.NewLanguage(tree_sitter_go.Language())); err != nil {
		return nil, fmt.Errorf("prescan: set language: %w", err)
	}

	ix := &Index{packages: make(map[string]*PackageFacts)}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path == root {
				return nil
			}
			if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
				alwaysSkipped[name] || excluded[name] {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			return nil
		}

		source, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("prescan: read %s: %w", path, err)
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		facts := ix.factsFor(filepath.ToSlash(filepath.Dir(rel)))
		if err := parseFile(parser, source, facts); err != nil {
			return fmt.Errorf("prescan: parse %s: %w", rel, err)
		}
		facts.Files++
		facts.LOC += countLOC(source)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ix, nil
}

// factsFor returns the facts record for dir, creating it on first use.
func (ix *Index) factsFor(dir string) *PackageFacts {
	f, ok := ix.packages[dir]
	if !ok {
		f = &PackageFacts{Dir: dir, MethodNames: make(map[string]bool)}
		ix.packages[dir] = f
	}
	return f
}

// Facts returns the facts for a project-relative directory, or nil when the
// directory holds no parsed Go files.
func (ix *Index) Facts(dir string) *PackageFacts {
	return ix.packages[filepath.ToSlash(dir)]
}

// CanSkip reports whether a package directory can be skipped for a method
// name. Skipping is sound only when the name is declared nowhere in the
// package and nothing in it embeds another type.
func (ix *Index) CanSkip(dir, method string) bool {
	f := ix.Facts(dir)
	if f == nil {
		return false
	}
	return !f.HasEmbedding && !f.MethodNames[method]
}

// Stats returns the total parsed file and line counts across the project.
func (ix *Index) Stats() (files, loc int) {
	for _, f := range ix.packages {
		files += f.Files
		loc += f.LOC
	}
	return files, loc
}

// parseFile parses one source file and folds its facts into facts.
func parseFile(parser *tree_sitter.Parser, source []byte, facts *PackageFacts) error {
	tree := parser.Parse(source, nil)
	if tree == nil {
		return fmt.Errorf("tree-sitter returned nil tree")
	}
	defer tree.Close()

	cursor := tree.RootNode().Walk()
	defer cursor.Close()

	walk(cursor, source, facts)
	return nil
}

// walk visits every node, recording method declarations and embeddings.
func walk(cursor *tree_sitter.TreeCursor, source []byte, facts *PackageFacts) {
	node := cursor.Node()

	switch node.Kind() {
	case "method_declaration", "method_elem":
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			facts.MethodNames[nameNode.Utf8Text(source)] = true
		}

	case "field_declaration":
		// An embedded struct field has a type but no name.
		if node.ChildByFieldName("name") == nil {
			facts.HasEmbedding = true
		}

	case "type_elem":
		// Embedded interface or constraint element inside an interface.
		facts.HasEmbedding = true
	}

	if cursor.GotoFirstChild() {
		walk(cursor, source, facts)
		for cursor.GotoNextSibling() {
			walk(cursor, source, facts)
		}
		cursor.GotoParent()
	}
}

// countLOC counts lines by counting newline bytes, plus one for a final
// unterminated line.
func countLOC(source []byte) int {
	if len(source) == 0 {
		return 0
	}
	return bytes.Count(source, []byte{'\n'}) + 1
}
