//go:build cgo

package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore implements the Store interface using KuzuDB as the graph backend.
// It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(":memory:", cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given directory path. KuzuDB creates the directory itself for new databases;
// for existing databases the directory must contain valid KuzuDB files. This
// lets a capability index survive across tool invocations.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	// Ensure parent directory exists (KuzuDB creates the leaf directory).
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(dbPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open file database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Order matters: node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Package(
		path STRING,
		dir STRING,
		files INT64,
		loc INT64,
		PRIMARY KEY(path)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Type(
		id STRING,
		name STRING,
		pkg_path STRING,
		kind STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Capability(
		name STRING,
		method STRING,
		shape STRING,
		PRIMARY KEY(name)
	)`,
	`CREATE REL TABLE IF NOT EXISTS DECLARES(FROM Package TO Type)`,
	`CREATE REL TABLE IF NOT EXISTS PROVIDES(FROM Type TO Capability)`,
}

// InitSchema creates all node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Write operations ----------

// AddPackage upserts a Package node. MERGE keys on the primary key so a
// re-scan against a file-backed database refreshes rather than duplicates.
func (s *KuzuStore) AddPackage(_ context.Context, node PackageNode) error {
	return s.exec(
		`MERGE (p:Package {path: $path})
		 ON CREATE SET p.dir = $dir, p.files = $files, p.loc = $loc
		 ON MATCH SET p.dir = $dir, p.files = $files, p.loc = $loc`,
		map[string]any{
			"path":  node.Path,
			"dir":   node.Dir,
			"files": int64(node.Files),
			"loc":   int64(node.LOC),
		},
	)
}

// AddType upserts a Type node and a DECLARES edge from its package.
// The edge is skipped silently if the package node was never recorded.
func (s *KuzuStore) AddType(_ context.Context, node TypeNode) error {
	err := s.exec(
		`MERGE (t:Type {id: $id})
		 ON CREATE SET t.name = $name, t.pkg_path = $pp, t.kind = $kind
		 ON MATCH SET t.name = $name, t.pkg_path = $pp, t.kind = $kind`,
		map[string]any{
			"id":   node.ID,
			"name": node.Name,
			"pp":   node.PkgPath,
			"kind": string(node.Kind),
		},
	)
	if err != nil {
		return err
	}
	return s.exec(
		`MATCH (p:Package {path: $pp}), (t:Type {id: $id})
		 MERGE (p)-[:DECLARES]->(t)`,
		map[string]any{"pp": node.PkgPath, "id": node.ID},
	)
}

// AddCapability upserts a Capability node.
func (s *KuzuStore) AddCapability(_ context.Context, node CapabilityNode) error {
	return s.exec(
		`MERGE (c:Capability {name: $name})
		 ON CREATE SET c.method = $method, c.shape = $shape
		 ON MATCH SET c.method = $method, c.shape = $shape`,
		map[string]any{
			"name":   node.Name,
			"method": node.Method,
			"shape":  node.Shape,
		},
	)
}

// AddProvides upserts a PROVIDES edge between an existing type and capability.
func (s *KuzuStore) AddProvides(_ context.Context, typeID, capability string) error {
	return s.exec(
		`MATCH (t:Type {id: $id}), (c:Capability {name: $name})
		 MERGE (t)-[:PROVIDES]->(c)`,
		map[string]any{"id": typeID, "name": capability},
	)
}

// ---------- Read operations ----------

// GetType retrieves a single Type node by ID, or returns nil if not found.
func (s *KuzuStore) GetType(_ context.Context, id string) (*TypeNode, error) {
	rows, err := s.query(
		"MATCH (t:Type {id: $id}) RETURN t.id, t.name, t.pkg_path, t.kind",
		map[string]any{"id": id},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rowToType(rows[0]), nil
}

// Packages returns all Package nodes sorted by import path.
func (s *KuzuStore) Packages(_ context.Context) ([]PackageNode, error) {
	rows, err := s.query(
		"MATCH (p:Package) RETURN p.path, p.dir, p.files, p.loc",
		nil,
	)
	if err != nil {
		return nil, err
	}
	out := make([]PackageNode, 0, len(rows))
	for _, r := range rows {
		out = append(out, PackageNode{
			Path:  toString(r[0]),
			Dir:   toString(r[1]),
			Files: toInt(r[2]),
			LOC:   toInt(r[3]),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Capabilities returns all Capability nodes sorted by name.
func (s *KuzuStore) Capabilities(_ context.Context) ([]CapabilityNode, error) {
	rows, err := s.query(
		"MATCH (c:Capability) RETURN c.name, c.method, c.shape",
		nil,
	)
	if err != nil {
		return nil, err
	}
	out := make([]CapabilityNode, 0, len(rows))
	for _, r := range rows {
		out = append(out, CapabilityNode{
			Name:   toString(r[0]),
			Method: toString(r[1]),
			Shape:  toString(r[2]),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// TypesInPackage returns the types declared in the given package, sorted by name.
func (s *KuzuStore) TypesInPackage(_ context.Context, pkgPath string) ([]TypeNode, error) {
	rows, err := s.query(
		`MATCH (p:Package {path: $pp})-[:DECLARES]->(t:Type)
		 RETURN t.id, t.name, t.pkg_path, t.kind`,
		map[string]any{"pp": pkgPath},
	)
	if err != nil {
		return nil, err
	}
	out := make([]TypeNode, 0, len(rows))
	for _, r := range rows {
		out = append(out, *rowToType(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Providers returns every type providing the named capability, sorted by ID.
func (s *KuzuStore) Providers(_ context.Context, capability string) ([]TypeNode, error) {
	rows, err := s.query(
		`MATCH (t:Type)-[:PROVIDES]->(c:Capability {name: $name})
		 RETURN t.id, t.name, t.pkg_path, t.kind`,
		map[string]any{"name": capability},
	)
	if err != nil {
		return nil, err
	}
	out := make([]TypeNode, 0, len(rows))
	for _, r := range rows {
		out = append(out, *rowToType(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CapabilitiesOf returns the sorted capability names the type provides.
func (s *KuzuStore) CapabilitiesOf(_ context.Context, typeID string) ([]string, error) {
	rows, err := s.query(
		"MATCH (t:Type {id: $id})-[:PROVIDES]->(c:Capability) RETURN c.name",
		map[string]any{"id": typeID},
	)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, toString(r[0]))
	}
	sort.Strings(out)
	return out, nil
}

// ---------- Stats ----------

// Stats returns counts of all node tables and the PROVIDES edge table.
func (s *KuzuStore) Stats(_ context.Context) (*IndexStats, error) {
	packages, err := s.countTable("Package")
	if err != nil {
		return nil, err
	}
	types, err := s.countTable("Type")
	if err != nil {
		return nil, err
	}
	caps, err := s.countTable("Capability")
	if err != nil {
		return nil, err
	}
	provides, err := s.countRel("PROVIDES")
	if err != nil {
		return nil, err
	}
	return &IndexStats{
		PackageCount:    packages,
		TypeCount:       types,
		CapabilityCount: caps,
		ProvidesCount:   provides,
	}, nil
}

// ---------- Internal helpers ----------

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// countTable returns the number of rows in a node table.
func (s *KuzuStore) countTable(table string) (int, error) {
	// Table name is a fixed internal constant, not user input.
	cypher := fmt.Sprintf("MATCH (n:%s) RETURN count(n)", table)
	rows, err := s.query(cypher, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// countRel returns the number of edges in a relationship table.
func (s *KuzuStore) countRel(table string) (int, error) {
	cypher := fmt.Sprintf("MATCH ()-[r:%s]->() RETURN count(r)", table)
	rows, err := s.query(cypher, nil)
	if err != nil {
		// Table may not exist yet; treat as zero.
		return 0, nil
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// rowToType converts a 4-column result row into a TypeNode.
// Column order: id, name, pkg_path, kind.
func rowToType(r []any) *TypeNode {
	return &TypeNode{
		ID:      toString(r[0]),
		Name:    toString(r[1]),
		PkgPath: toString(r[2]),
		Kind:    TypeKind(toString(r[3])),
	}
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, bool, string).
// These helpers safely coerce any -> concrete type.

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
