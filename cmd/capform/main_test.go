package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// copyFixture copies the optim_project fixture into a temp dir so the scan
// can write its generated file without touching testdata.
func copyFixture(t *testing.T) string {
	t.Helper()
	src, err := filepath.Abs("../../testdata/fixtures/optim_project")
	require.NoError(t, err)

	dst := t.TempDir()
	entries, err := os.ReadDir(src)
	require.NoError(t, err)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(src, e.Name()))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dst, e.Name()), data, 0o644))
	}
	return dst
}

func TestRun_Version(t *testing.T) {
	assert.NoError(t, run([]string{"-version"}))
}

func TestRun_UnknownFlag(t *testing.T) {
	assert.Error(t, run([]string{"-definitely-not-a-flag"}))
}

func TestRun_ScanWritesConstants(t *testing.T) {
	root := copyFixture(t)

	require.NoError(t, run([]string{"-project-root", root}))

	data, err := os.ReadFile(filepath.Join(root, "caps", "capabilities_gen.go"))
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "// Code generated by capform; DO NOT EDIT.")
	assert.Contains(t, out, "package caps")
	assert.Regexp(t, `VanillaUpdateHasDenseUpdate\s+= true`, out)
	assert.Regexp(t, `TracedUpdateHasDenseUpdate\s+= false`, out)
	assert.Regexp(t, `ExhaustiveUpdateHasDenseUpdate\s+= false`, out)
	assert.Regexp(t, `BlendedUpdateHasDenseUpdate\s+= false`, out)
	assert.Regexp(t, `NesterovUpdateHasInitialize\s+= true`, out)
}

func TestRun_NoGen(t *testing.T) {
	root := copyFixture(t)

	require.NoError(t, run([]string{"-project-root", root, "-no-gen"}))

	_, err := os.Stat(filepath.Join(root, "caps"))
	assert.True(t, os.IsNotExist(err))
}
