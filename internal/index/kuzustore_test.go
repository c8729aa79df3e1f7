//go:build cgo

package index

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore creates a fresh in-memory KuzuStore with an initialized schema.
// It registers a cleanup function to close the store when the test finishes.
func newTestStore(t *testing.T) *KuzuStore {
	t.Helper()
	s, err := NewKuzuStore()
	require.NoError(t, err, "NewKuzuStore should not fail")
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	require.NoError(t, s.InitSchema(ctx), "InitSchema should not fail")
	return s
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestKuzuStore_InitSchema(t *testing.T) {
	s, err := NewKuzuStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()

	// First call creates the tables.
	require.NoError(t, s.InitSchema(ctx))

	// Second call should be idempotent (IF NOT EXISTS).
	require.NoError(t, s.InitSchema(ctx))
}

func TestKuzuStore_TypeRoundTrip(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s)
	ctx := context.Background()

	got, err := s.GetType(ctx, "example.com/optim.VanillaUpdate")
	require.NoError(t, err)
	require.NotNil(t, got, "GetType should return a non-nil result")

	assert.Equal(t, "VanillaUpdate", got.Name)
	assert.Equal(t, "example.com/optim", got.PkgPath)
	assert.Equal(t, TypeKindStruct, got.Kind)
}

func TestKuzuStore_GetType_NotFound(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s)

	got, err := s.GetType(context.Background(), "example.com/optim.NoSuchType")
	require.NoError(t, err)
	assert.Nil(t, got, "GetType should return nil for a missing type")
}

func TestKuzuStore_Packages(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s)

	pkgs, err := s.Packages(context.Background())
	require.NoError(t, err)
	require.Len(t, pkgs, 2)
	assert.Equal(t, "example.com/optim", pkgs[0].Path)
	assert.Equal(t, 2, pkgs[0].Files)
	assert.Equal(t, 120, pkgs[0].LOC)
}

func TestKuzuStore_TypesInPackage(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s)

	types, err := s.TypesInPackage(context.Background(), "example.com/optim")
	require.NoError(t, err)
	require.Len(t, types, 2)
	assert.Equal(t, "NesterovUpdate", types[0].Name)
	assert.Equal(t, "VanillaUpdate", types[1].Name)
}

func TestKuzuStore_Providers(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s)
	ctx := context.Background()

	dense, err := s.Providers(ctx, "HasDenseUpdate")
	require.NoError(t, err)
	require.Len(t, dense, 2)
	assert.Equal(t, "example.com/optim.NesterovUpdate", dense[0].ID)
	assert.Equal(t, "example.com/optim.VanillaUpdate", dense[1].ID)

	none, err := s.Providers(ctx, "HasNothing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestKuzuStore_CapabilitiesOf(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s)
	ctx := context.Background()

	caps, err := s.CapabilitiesOf(ctx, "example.com/optim.NesterovUpdate")
	require.NoError(t, err)
	assert.Equal(t, []string{"HasDenseUpdate", "HasInitialize"}, caps)

	caps, err = s.CapabilitiesOf(ctx, "example.com/optim/inner.Widget")
	require.NoError(t, err)
	assert.Empty(t, caps)
}

func TestKuzuStore_Stats(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s)

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.PackageCount)
	assert.Equal(t, 3, stats.TypeCount)
	assert.Equal(t, 2, stats.CapabilityCount)
	assert.Equal(t, 3, stats.ProvidesCount)
}

func TestKuzuStore_Rescan(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s)
	// A second scan re-inserts every node and edge; MERGE must absorb the
	// duplicates instead of tripping the primary keys.
	seedStore(t, s)

	ctx := context.Background()
	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.PackageCount)
	assert.Equal(t, 3, stats.TypeCount)
	assert.Equal(t, 2, stats.CapabilityCount)
	assert.Equal(t, 3, stats.ProvidesCount)

	types, err := s.TypesInPackage(ctx, "example.com/optim")
	require.NoError(t, err)
	assert.Len(t, types, 2, "DECLARES edges should not duplicate on re-scan")

	dense, err := s.Providers(ctx, "HasDenseUpdate")
	require.NoError(t, err)
	assert.Len(t, dense, 2, "PROVIDES edges should not duplicate on re-scan")
}

func TestKuzuStore_FileBacked(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "capform.kuzu")

	s, err := NewKuzuFileStore(dbPath)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.InitSchema(ctx))
	require.NoError(t, s.AddCapability(ctx, CapabilityNode{
		Name: "HasEvaluate", Method: "Evaluate", Shape: "([]float64, ...) (float64)",
	}))
	require.NoError(t, s.Close())

	// Reopen and verify the capability survived.
	s2, err := NewKuzuFileStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s2.Close() })
	require.NoError(t, s2.InitSchema(ctx))

	caps, err := s2.Capabilities(ctx)
	require.NoError(t, err)
	require.Len(t, caps, 1)
	assert.Equal(t, "HasEvaluate", caps[0].Name)
	assert.Equal(t, "Evaluate", caps[0].Method)

	// A repeat invocation writes the same capability into the reopened
	// database; it must upsert, not collide with the persisted node.
	require.NoError(t, s2.AddCapability(ctx, CapabilityNode{
		Name: "HasEvaluate", Method: "Evaluate", Shape: "([]float64, ...) (float64)",
	}))
	caps, err = s2.Capabilities(ctx)
	require.NoError(t, err)
	assert.Len(t, caps, 1)
}
