package planetgen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, float32(1), cfg.Planet.Radius)
	assert.Equal(t, 64, cfg.Planet.Subdivisions)
	assert.True(t, cfg.GPU.Enabled)
	assert.Equal(t, "high", cfg.GPU.PowerPreference)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "matcolormap.json", cfg.Paths.MaterialTable)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planetgen.yaml")
	body := `
planet:
  name: Earthlike
  radius: 6.5
gpu:
  enabled: false
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Earthlike", cfg.Planet.Name)
	assert.Equal(t, float32(6.5), cfg.Planet.Radius)
	assert.Equal(t, 64, cfg.Planet.Subdivisions, "missing keys keep defaults")
	assert.False(t, cfg.GPU.Enabled)
	assert.Equal(t, 1024, cfg.GPU.LutSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("planet: [1, 2"), 0o644))
	_, err = LoadConfig(bad)
	assert.Error(t, err)
}

func TestLoadConfig_SearchFindsNothing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("APPDATA", t.TempDir())
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Planet.Name = "Moon"
	cfg.Planet.HillMax = 0.25
	cfg.Paths.OutputDir = "baked"

	path := filepath.Join(t.TempDir(), "nested", "planetgen.yaml")
	require.NoError(t, cfg.SaveTo(path))

	back, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero radius", func(c *Config) { c.Planet.Radius = 0 }},
		{"negative subdivisions", func(c *Config) { c.Planet.Subdivisions = -1 }},
		{"zero lut size", func(c *Config) { c.GPU.LutSize = 0 }},
		{"power preference", func(c *Config) { c.GPU.PowerPreference = "turbo" }},
		{"output dir", func(c *Config) { c.Paths.OutputDir = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_MeshPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Paths.OutputDir = "out"
	assert.Equal(t, filepath.Join("out", "planet.glb"), cfg.MeshPath())

	abs := filepath.Join(t.TempDir(), "p.gltf")
	cfg.Paths.MeshFile = abs
	assert.Equal(t, abs, cfg.MeshPath())
}
