package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedStore loads a small two-package index into the given store.
func seedStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.InitSchema(ctx))

	require.NoError(t, s.AddPackage(ctx, PackageNode{
		Path: "example.com/optim", Dir: ".", Files: 2, LOC: 120,
	}))
	require.NoError(t, s.AddPackage(ctx, PackageNode{
		Path: "example.com/optim/inner", Dir: "inner", Files: 1, LOC: 30,
	}))

	require.NoError(t, s.AddType(ctx, TypeNode{
		ID: "example.com/optim.VanillaUpdate", Name: "VanillaUpdate",
		PkgPath: "example.com/optim", Kind: TypeKindStruct,
	}))
	require.NoError(t, s.AddType(ctx, TypeNode{
		ID: "example.com/optim.NesterovUpdate", Name: "NesterovUpdate",
		PkgPath: "example.com/optim", Kind: TypeKindStruct,
	}))
	require.NoError(t, s.AddType(ctx, TypeNode{
		ID: "example.com/optim/inner.Widget", Name: "Widget",
		PkgPath: "example.com/optim/inner", Kind: TypeKindInterface,
	}))

	require.NoError(t, s.AddCapability(ctx, CapabilityNode{
		Name: "HasDenseUpdate", Method: "Update",
		Shape: "([]float64, float64, []float64, ...) ()",
	}))
	require.NoError(t, s.AddCapability(ctx, CapabilityNode{
		Name: "HasInitialize", Method: "Initialize",
		Shape: "(int, ...) ()",
	}))

	require.NoError(t, s.AddProvides(ctx, "example.com/optim.VanillaUpdate", "HasDenseUpdate"))
	require.NoError(t, s.AddProvides(ctx, "example.com/optim.NesterovUpdate", "HasDenseUpdate"))
	require.NoError(t, s.AddProvides(ctx, "example.com/optim.NesterovUpdate", "HasInitialize"))
}

func TestMemStore_TypeRoundTrip(t *testing.T) {
	s := NewMemStore()
	seedStore(t, s)
	ctx := context.Background()

	got, err := s.GetType(ctx, "example.com/optim.NesterovUpdate")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "NesterovUpdate", got.Name)
	assert.Equal(t, "example.com/optim", got.PkgPath)
	assert.Equal(t, TypeKindStruct, got.Kind)
}

func TestMemStore_GetType_NotFound(t *testing.T) {
	s := NewMemStore()
	seedStore(t, s)

	got, err := s.GetType(context.Background(), "example.com/optim.NoSuchType")
	require.NoError(t, err)
	assert.Nil(t, got, "GetType should return nil for a missing type")
}

func TestMemStore_Packages_Sorted(t *testing.T) {
	s := NewMemStore()
	seedStore(t, s)

	pkgs, err := s.Packages(context.Background())
	require.NoError(t, err)
	require.Len(t, pkgs, 2)
	assert.Equal(t, "example.com/optim", pkgs[0].Path)
	assert.Equal(t, "example.com/optim/inner", pkgs[1].Path)
	assert.Equal(t, 120, pkgs[0].LOC)
}

func TestMemStore_TypesInPackage(t *testing.T) {
	s := NewMemStore()
	seedStore(t, s)

	types, err := s.TypesInPackage(context.Background(), "example.com/optim")
	require.NoError(t, err)
	require.Len(t, types, 2)
	assert.Equal(t, "NesterovUpdate", types[0].Name)
	assert.Equal(t, "VanillaUpdate", types[1].Name)
}

func TestMemStore_Providers(t *testing.T) {
	s := NewMemStore()
	seedStore(t, s)
	ctx := context.Background()

	dense, err := s.Providers(ctx, "HasDenseUpdate")
	require.NoError(t, err)
	require.Len(t, dense, 2)
	assert.Equal(t, "example.com/optim.NesterovUpdate", dense[0].ID)
	assert.Equal(t, "example.com/optim.VanillaUpdate", dense[1].ID)

	init, err := s.Providers(ctx, "HasInitialize")
	require.NoError(t, err)
	require.Len(t, init, 1)
	assert.Equal(t, "NesterovUpdate", init[0].Name)

	none, err := s.Providers(ctx, "HasNothing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemStore_CapabilitiesOf(t *testing.T) {
	s := NewMemStore()
	seedStore(t, s)
	ctx := context.Background()

	caps, err := s.CapabilitiesOf(ctx, "example.com/optim.NesterovUpdate")
	require.NoError(t, err)
	assert.Equal(t, []string{"HasDenseUpdate", "HasInitialize"}, caps)

	caps, err = s.CapabilitiesOf(ctx, "example.com/optim/inner.Widget")
	require.NoError(t, err)
	assert.Empty(t, caps, "a type with no recorded probes provides nothing")
}

func TestMemStore_AddProvides_Idempotent(t *testing.T) {
	s := NewMemStore()
	seedStore(t, s)
	ctx := context.Background()

	require.NoError(t, s.AddProvides(ctx, "example.com/optim.VanillaUpdate", "HasDenseUpdate"))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.ProvidesCount, "re-recording a pair must not inflate counts")
}

func TestMemStore_Stats(t *testing.T) {
	s := NewMemStore()
	seedStore(t, s)

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.PackageCount)
	assert.Equal(t, 3, stats.TypeCount)
	assert.Equal(t, 2, stats.CapabilityCount)
	assert.Equal(t, 3, stats.ProvidesCount)
}

func TestMemStore_Rescan(t *testing.T) {
	s := NewMemStore()
	seedStore(t, s)
	seedStore(t, s)

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.PackageCount, "re-scanning must not duplicate packages")
	assert.Equal(t, 3, stats.TypeCount)
	assert.Equal(t, 2, stats.CapabilityCount)
	assert.Equal(t, 3, stats.ProvidesCount)
}

func TestMemStore_Empty(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	require.NoError(t, s.InitSchema(ctx))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.PackageCount)
	assert.Zero(t, stats.TypeCount)
	assert.Zero(t, stats.CapabilityCount)
	assert.Zero(t, stats.ProvidesCount)

	require.NoError(t, s.Close())
}

func TestTypeID(t *testing.T) {
	assert.Equal(t, "example.com/optim.VanillaUpdate", TypeID("example.com/optim", "VanillaUpdate"))
}
