package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	planetgen "github.com/gekko3d/planetgen"
)

const tableJSON = `{
  "Moon": {"Name": "Moon", "DefaultMaterial": {"R": 1, "G": 2, "B": 3, "Material": ""},
           "SimpleMaterials": {"1": {"R": 9, "G": 9, "B": 9, "Material": ""}, "rock": {"R": 0, "G": 0, "B": 0, "Material": ""}}},
  "Mars": {"Name": "Mars", "DefaultMaterial": {"R": 4, "G": 5, "B": 6, "Material": ""}}
}`

func TestApplyFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "bake"}
	fv := &flagValues{}
	bindFlags(cmd, fv)
	require.NoError(t, cmd.ParseFlags([]string{
		"--planet", "Moon", "--radius", "3", "--heightmaps", "hm", "--no-gpu", "--debug",
	}))

	cfg := planetgen.DefaultConfig()
	applyFlags(cmd, fv, cfg)

	assert.Equal(t, "Moon", cfg.Planet.Name)
	assert.Equal(t, float32(3), cfg.Planet.Radius)
	assert.Equal(t, "hm", cfg.Paths.HeightmapDir)
	assert.Equal(t, "hm", cfg.Paths.MaterialMapDir, "material maps follow heightmaps")
	assert.False(t, cfg.GPU.Enabled)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 64, cfg.Planet.Subdivisions, "unset flags keep config values")
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestMaterialsCommand(t *testing.T) {
	dir := t.TempDir()
	table := filepath.Join(dir, "matcolormap.json")
	require.NoError(t, os.WriteFile(table, []byte(tableJSON), 0o644))
	cfgPath := filepath.Join(dir, "planetgen.yaml")
	require.NoError(t, planetgen.DefaultConfig().SaveTo(cfgPath))

	out, err := runCLI(t, "materials", "--config", cfgPath, "--table", table)
	require.NoError(t, err)
	assert.Contains(t, out, "Mars: 0 simple, 0 complex rules, 0 ores")
	assert.Contains(t, out, "Moon: 1 simple, 0 complex rules, 0 ores")

	out, err = runCLI(t, "materials", "--config", cfgPath, "--table", table, "--planet", "Moon", "--dump")
	require.NoError(t, err)
	assert.Contains(t, out, "Moon")

	_, err = runCLI(t, "materials", "--config", cfgPath, "--table", table, "--dump")
	assert.Error(t, err, "two planets and no name")
}

func TestMeshCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "planetgen.yaml")
	require.NoError(t, planetgen.DefaultConfig().SaveTo(cfgPath))

	out := filepath.Join(dir, "out")
	_, err := runCLI(t, "mesh", "--config", cfgPath, "--out", out, "--subdivisions", "2", "--heightmaps", dir)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, "planet.glb"))
	assert.NoError(t, err)
}
