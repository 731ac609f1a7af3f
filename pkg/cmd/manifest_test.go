package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifestFound(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "adder"
sources = ["lib.spin", "main.spin"]
`)
	//
	manifest, ok, err := LoadManifest(dir)
	require.NoError(t, err)
	require.True(t, ok)
	//
	assert.Equal(t, "adder", manifest.Project.Name)
	assert.Equal(t, []string{
		filepath.Join(dir, "lib.spin"),
		filepath.Join(dir, "main.spin"),
	}, manifest.SourcePaths())
}

func TestManifestFoundFromSubdirectory(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "adder"
`)
	//
	sub := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0755))
	// Walks up from the subdirectory
	path, ok, err := FindManifest(sub)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, ManifestFilename), path)
}

func TestManifestNearestWins(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "outer"
`)
	//
	sub := filepath.Join(dir, "inner")
	require.NoError(t, os.MkdirAll(sub, 0755))
	writeManifest(t, sub, `
[project]
name = "inner"
`)
	//
	manifest, ok, err := LoadManifest(sub)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "inner", manifest.Project.Name)
}

func TestManifestMissing(t *testing.T) {
	dir := t.TempDir()
	//
	_, ok, err := FindManifest(dir)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManifestGenerateDefaults(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "adder"
sources = ["main.spin"]

[generate]
backend = "vhdl"
output = "adder.vhdl"
`)
	//
	manifest, ok, err := LoadManifest(dir)
	require.NoError(t, err)
	require.True(t, ok)
	//
	assert.Equal(t, "vhdl", manifest.Generate.Backend)
	assert.Equal(t, "adder.vhdl", manifest.Generate.Output)
}

func TestManifestMissingName(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
sources = ["main.spin"]
`)
	//
	_, ok, err := LoadManifest(dir)
	require.True(t, ok)
	assert.ErrorContains(t, err, "missing [project].name")
}

func TestManifestMalformed(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `[project`)
	//
	_, ok, err := LoadManifest(dir)
	require.True(t, ok)
	assert.Error(t, err)
}

func writeManifest(t *testing.T, dir string, contents string) {
	t.Helper()
	//
	err := os.WriteFile(filepath.Join(dir, ManifestFilename), []byte(contents), 0644)
	require.NoError(t, err)
}
