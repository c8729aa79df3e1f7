//go:build e2e

package e2e

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/capform/internal/export"
	"github.com/dusk-indust/capform/internal/gen"
	"github.com/dusk-indust/capform/internal/index"
	"github.com/dusk-indust/capform/internal/scan"
)

// fixtureRoot returns the path to the optim_project fixture.
func fixtureRoot(t *testing.T) string {
	t.Helper()
	abs, err := filepath.Abs(filepath.Join("..", "..", "testdata", "fixtures", "optim_project"))
	require.NoError(t, err)
	return abs
}

// TestScanPipeline_EndToEnd exercises the whole flow against the fixture
// project: scan, index, constants generation, and both export formats.
func TestScanPipeline_EndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store := index.NewMemStore()
	sc := scan.NewScanner(scan.Config{ProjectRoot: fixtureRoot(t)}, store)
	defer sc.Close()

	res, err := sc.Run(ctx)
	require.NoError(t, err)

	// The fixture's update rules cover the interesting shapes: trailing
	// arities 0 and 2 match, nine trailing knobs, a wrong leading type and
	// an ambiguous equal-depth embedding do not, and a missing method is a
	// plain non-match.
	byCap := scan.ProvidersByCapability(res.Findings)
	assert.Len(t, byCap["HasDenseUpdate"], 3)
	assert.Len(t, byCap["HasInitialize"], 1)
	assert.Len(t, byCap["HasEvaluate"], 2)

	// Constants generation bakes each answer into a boolean const.
	src, err := gen.Build(ctx, store, res.Manifest.Generate.Package)
	require.NoError(t, err)
	out := string(src)
	assert.Regexp(t, `ClippedUpdateHasDenseUpdate\s+= true`, out)
	assert.Regexp(t, `ConstantStepHasDenseUpdate\s+= false`, out)
	assert.Regexp(t, `BlendedUpdateHasDenseUpdate\s+= false`, out)

	outDir := t.TempDir()
	outPath := filepath.Join(outDir, res.Manifest.Generate.Output)
	require.NoError(t, gen.WriteFile(outPath, src))
	_, err = os.Stat(outPath)
	require.NoError(t, err)

	// JSON export reflects the index.
	report, err := export.BuildExport(ctx, store, "optim")
	require.NoError(t, err)
	require.Len(t, report.Capabilities, 3)
	assert.Equal(t, 6, report.Stats.ProvidesCount)

	// Mermaid diagram has one arrow per finding.
	mermaid, err := export.GenerateMermaid(ctx, store)
	require.NoError(t, err)
	assert.Contains(t, mermaid, "graph TD")
}

// TestScanPipeline_Repeatable runs the scan twice and requires identical
// findings, independent of worker scheduling.
func TestScanPipeline_Repeatable(t *testing.T) {
	ctx := context.Background()
	root := fixtureRoot(t)

	runOnce := func() []scan.Finding {
		store := index.NewMemStore()
		sc := scan.NewScanner(scan.Config{ProjectRoot: root, Workers: 8}, store)
		defer sc.Close()
		res, err := sc.Run(ctx)
		require.NoError(t, err)
		return res.Findings
	}

	assert.Equal(t, runOnce(), runOnce())
}
