package planetgen

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/planetgen/planetrt/rt/assets"
	"github.com/gekko3d/planetgen/planetrt/rt/core"
	"github.com/gekko3d/planetgen/planetrt/rt/material"
)

const bakeTableJSON = `{
  "Earthlike": {
    "Name": "Earthlike",
    "DefaultMaterial": {"R": 1, "G": 1, "B": 1, "Material": "Rock"},
    "SimpleMaterials": {"2": {"R": 0, "G": 200, "B": 0, "Material": ""}},
    "ComplexMaterials": {},
    "Ores": {},
    "BaseFolder": "Earthlike"
  }
}`

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func greyImage(w, h int, f func(x, y int) uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: f(x, y)})
		}
	}
	return img
}

// bakeFixture lays out a planet whose down face has no inputs and whose right
// face heightmap is paletted.
func bakeFixture(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		return p
	}

	for _, face := range core.Faces() {
		switch face {
		case core.FaceNegY:
			continue
		case core.FaceNegZ:
			pal := image.NewPaletted(image.Rect(0, 0, 4, 4), color.Palette{color.Black, color.White})
			writePNG(t, assets.HeightmapPath(dir, face), pal)
		default:
			writePNG(t, assets.HeightmapPath(dir, face), greyImage(4, 4, func(x, y int) uint8 { return 100 }))
		}
		writePNG(t, assets.MaterialMapPath(dir, face), greyImage(4, 4, func(x, y int) uint8 {
			if x < 2 {
				return 2
			}
			return 0
		}))
	}

	cfg := DefaultConfig()
	cfg.GPU.Enabled = false
	cfg.GPU.LutSize = 8
	cfg.Planet.Subdivisions = 2
	cfg.Planet.HillMin = 0
	cfg.Planet.HillMax = 0.1
	cfg.Paths.HeightmapDir = dir
	cfg.Paths.MaterialMapDir = dir
	cfg.Paths.MaterialTable = write("matcolormap.json", bakeTableJSON)
	cfg.Paths.MatFiles = write("matfiles.json", `{"Rock": {"path": "planets/earth", "file": "rock.dds"}}`)
	cfg.Paths.MatColorAvg = write("matcoloravg.json", `{"default": {"rock.dds": [40, 50, 60]}}`)
	cfg.Paths.OutputDir = filepath.Join(dir, "out")
	cfg.Paths.MeshFile = "planet.gltf"
	return cfg
}

func TestBaker_Run(t *testing.T) {
	cfg := bakeFixture(t)
	b, err := NewBaker(cfg, nil)
	require.NoError(t, err)
	defer b.Close()

	rep, err := b.Run()
	require.NoError(t, err)
	assert.Equal(t, b.RunID(), rep.RunID)
	assert.Equal(t, "cpu", rep.Backend)
	require.Len(t, rep.Faces, core.FaceCount)
	assert.Equal(t, 4, rep.Count(FaceBaked))
	assert.Equal(t, 2, rep.Count(FaceSkipped))

	down := rep.Faces[core.FaceNegY]
	assert.Equal(t, FaceSkipped, down.Status)
	assert.True(t, errors.Is(down.Err, os.ErrNotExist))
	right := rep.Faces[core.FaceNegZ]
	assert.Equal(t, FaceSkipped, right.Status)
	assert.True(t, errors.Is(right.Err, core.ErrUnsupportedImageEncoding))

	require.NotNil(t, rep.Cache)
	assert.Equal(t, 1, rep.Cache.Resolved)
	require.Len(t, rep.Cache.Unresolved, 1, "simple material without a name")
	assert.Equal(t, "simple/2", rep.Cache.Unresolved[0].Owner)

	front := rep.Faces[core.FacePosZ]
	require.Len(t, front.Outputs, 3)
	img, err := assets.LoadImage(assets.OutputPath(cfg.Paths.OutputDir, core.FacePosZ, "material"))
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{0, 200, 0, 255}, img.RGBA(0, 0), "simple material 2")
	assert.Equal(t, [4]uint8{40, 50, 60, 255}, img.RGBA(3, 3), "cached default color")

	slope, err := assets.LoadImage(assets.OutputPath(cfg.Paths.OutputDir, core.FacePosZ, "slope"))
	require.NoError(t, err)
	assert.Equal(t, uint32(0), slope.First(1, 1))

	assert.Equal(t, filepath.Join(cfg.Paths.OutputDir, "planet.gltf"), rep.MeshPath)
	assert.Equal(t, core.FaceCount*9, rep.Vertices)
	assert.Equal(t, core.FaceCount*8, rep.Triangles)
	doc, err := gltf.Open(rep.MeshPath)
	require.NoError(t, err)
	assert.Len(t, doc.Meshes, core.FaceCount)

	assert.Contains(t, b.Profiler().Order, "cpu")
	assert.Equal(t, 4*16, b.Profiler().Counts["pixels"])
	assert.Contains(t, rep.Summary(), "4 baked, 2 skipped")
}

func TestBaker_DimensionMismatchStopsBake(t *testing.T) {
	cfg := bakeFixture(t)
	writePNG(t, assets.MaterialMapPath(cfg.Paths.MaterialMapDir, core.FacePosX), greyImage(2, 2, func(x, y int) uint8 { return 0 }))

	b, err := NewBaker(cfg, nil)
	require.NoError(t, err)
	defer b.Close()

	_, err = b.Run()
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDimensionMismatch))
}

func TestBaker_MissingColorTablesSkipCache(t *testing.T) {
	cfg := bakeFixture(t)
	cfg.Paths.MatFiles = filepath.Join(t.TempDir(), "none.json")

	b, err := NewBaker(cfg, nil)
	require.NoError(t, err)
	p, err := b.LoadMaterials()
	require.NoError(t, err)
	rep, err := b.CacheColors(p)
	require.NoError(t, err)
	assert.Nil(t, rep)
	assert.Equal(t, [3]uint8{1, 1, 1}, p.DefaultMaterial.Color())
}

func TestBaker_BakeLatitudeTables(t *testing.T) {
	cfg := bakeFixture(t)
	b, err := NewBaker(cfg, nil)
	require.NoError(t, err)
	defer b.Close()

	paths, err := b.BakeLatitudeTables()
	require.NoError(t, err)
	require.Len(t, paths, core.FaceCount)

	img, err := assets.LoadImage(paths[core.FacePosY])
	require.NoError(t, err)
	assert.Equal(t, 8, img.Width)
	assert.Greater(t, img.RGBA(4, 4)[0], uint8(70), "up face centre is near the pole")
}

func TestSelectPlanet(t *testing.T) {
	all := material.PlanetMaterials{
		"A": {Name: "A"},
		"B": {Name: "B"},
	}
	p, err := SelectPlanet(all, "B")
	require.NoError(t, err)
	assert.Equal(t, "B", p.Name)

	_, err = SelectPlanet(all, "")
	assert.Error(t, err)
	_, err = SelectPlanet(all, "C")
	assert.Error(t, err)

	p, err = SelectPlanet(material.PlanetMaterials{"only": {Name: "only"}}, "")
	require.NoError(t, err)
	assert.Equal(t, "only", p.Name)
}

func TestNewBaker_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Planet.Radius = -1
	_, err := NewBaker(cfg, nil)
	assert.Error(t, err)
}
