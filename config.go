package planetgen

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds every setting of a bake.
type Config struct {
	Planet  PlanetConfig  `yaml:"planet"`
	Paths   PathsConfig   `yaml:"paths"`
	GPU     GPUConfig     `yaml:"gpu"`
	Logging LoggingConfig `yaml:"logging"`
}

// PlanetConfig selects the rule set and shapes the mesh.
type PlanetConfig struct {
	// Name is the key of the planet in the material table.
	Name         string  `yaml:"name"`
	Radius       float32 `yaml:"radius"`
	Subdivisions int     `yaml:"subdivisions"`
	HillMin      float32 `yaml:"hill_min"`
	HillMax      float32 `yaml:"hill_max"`
}

type PathsConfig struct {
	HeightmapDir   string `yaml:"heightmap_dir"`
	MaterialMapDir string `yaml:"material_map_dir"`
	MaterialTable  string `yaml:"material_table"`
	MatFiles       string `yaml:"mat_files"`
	MatColorAvg    string `yaml:"mat_color_avg"`
	OutputDir      string `yaml:"output_dir"`
	// MeshFile is relative to OutputDir unless absolute. ".glb" writes binary glTF.
	MeshFile string `yaml:"mesh_file"`
}

type GPUConfig struct {
	Enabled         bool   `yaml:"enabled"`
	PowerPreference string `yaml:"power_preference"`
	// ShaderDir overrides the embedded kernels when set.
	ShaderDir string `yaml:"shader_dir"`
	// LutSize is the edge length of standalone latitude tables.
	LutSize int `yaml:"lut_size"`
}

type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// DefaultConfig returns the settings used when no file or flag overrides them.
func DefaultConfig() *Config {
	return &Config{
		Planet: PlanetConfig{
			Radius:       1,
			Subdivisions: 64,
			HillMin:      0.03,
			HillMax:      0.09,
		},
		Paths: PathsConfig{
			HeightmapDir:   ".",
			MaterialMapDir: ".",
			MaterialTable:  "matcolormap.json",
			MatFiles:       "matfiles.json",
			MatColorAvg:    "matcoloravg.json",
			OutputDir:      "out",
			MeshFile:       "planet.glb",
		},
		GPU: GPUConfig{
			Enabled:         true,
			PowerPreference: "high",
			LutSize:         1024,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate rejects settings a bake cannot run with.
func (c *Config) Validate() error {
	if c.Planet.Radius <= 0 {
		return errors.Errorf("planet.radius must be positive, got %g", c.Planet.Radius)
	}
	if c.Planet.Subdivisions <= 0 {
		return errors.Errorf("planet.subdivisions must be positive, got %d", c.Planet.Subdivisions)
	}
	if c.GPU.LutSize <= 0 {
		return errors.Errorf("gpu.lut_size must be positive, got %d", c.GPU.LutSize)
	}
	switch strings.ToLower(c.GPU.PowerPreference) {
	case "", "high", "low":
	default:
		return errors.Errorf("gpu.power_preference must be high or low, got %q", c.GPU.PowerPreference)
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir is empty")
	}
	return nil
}

// MeshPath resolves Paths.MeshFile against the output directory.
func (c *Config) MeshPath() string {
	if c.Paths.MeshFile == "" || filepath.IsAbs(c.Paths.MeshFile) {
		return c.Paths.MeshFile
	}
	return filepath.Join(c.Paths.OutputDir, c.Paths.MeshFile)
}

// LoadConfig loads configuration with priority defaults < file. An empty path
// searches the standard locations; finding nothing keeps the defaults.
// Flags are applied on top by the caller.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadConfigFile(cfg, path); err != nil {
			return nil, errors.Wrapf(err, "loading config from %s", path)
		}
	}
	return cfg, nil
}

func findConfigFile() string {
	candidates := []string{
		"./planetgen.yaml",
		filepath.Join(ConfigDir(), "planetgen.yaml"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "planetgen")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "planetgen")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "planetgen")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "planetgen")
	}
}

// loadConfigFile merges a YAML file into cfg; keys missing from the file keep their value.
func loadConfigFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// SaveTo writes the config as YAML, creating parent directories.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create config dir")
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	return errors.Wrap(os.WriteFile(path, data, 0o644), path)
}
