// Package planetgen bakes the surface images and the cube-sphere mesh of a
// planet from its heightmap set and material rule table.
package planetgen

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/gekko3d/planetgen/planetrt/rt/assets"
	"github.com/gekko3d/planetgen/planetrt/rt/core"
	"github.com/gekko3d/planetgen/planetrt/rt/geom"
	"github.com/gekko3d/planetgen/planetrt/rt/material"
)

// Face outcomes recorded in a BakeReport.
const (
	FaceBaked   = "baked"
	FaceSkipped = "skipped"
)

type FaceResult struct {
	Face    core.Face
	Status  string
	Backend string
	// Err is why a skipped face was skipped.
	Err     error
	Outputs []string
}

// BakeReport is the collective outcome of a bake.
type BakeReport struct {
	RunID     uuid.UUID
	Backend   string
	Faces     []FaceResult
	Cache     *material.CacheReport
	MeshPath  string
	Vertices  int
	Triangles int
}

func (r *BakeReport) Count(status string) int {
	n := 0
	for _, f := range r.Faces {
		if f.Status == status {
			n++
		}
	}
	return n
}

func (r *BakeReport) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "run %s (%s): %d baked, %d skipped", r.RunID, r.Backend, r.Count(FaceBaked), r.Count(FaceSkipped))
	if r.Cache != nil {
		fmt.Fprintf(&sb, ", %d colors resolved, %d unresolved", r.Cache.Resolved, len(r.Cache.Unresolved))
	}
	if r.MeshPath != "" {
		fmt.Fprintf(&sb, ", mesh %s (%d vertices, %d triangles)", r.MeshPath, r.Vertices, r.Triangles)
	}
	for _, f := range r.Faces {
		if f.Status == FaceSkipped {
			fmt.Fprintf(&sb, "\n  %s (%s): %v", f.Face, f.Face.AssetName(), f.Err)
		}
	}
	return sb.String()
}

// Baker runs the bake stages with one configuration. Not safe for concurrent use.
type Baker struct {
	cfg      *Config
	log      Logger
	prof     *Profiler
	runID    uuid.UUID
	oreTable *material.OreColorTable
	backend  surfaceBackend
}

func NewBaker(cfg *Config, log Logger) (*Baker, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = NewNopLogger()
	}
	return &Baker{
		cfg:      cfg,
		log:      log,
		prof:     NewProfiler(),
		runID:    uuid.New(),
		oreTable: material.DefaultOreColors(),
	}, nil
}

func (b *Baker) RunID() uuid.UUID    { return b.runID }
func (b *Baker) Profiler() *Profiler { return b.prof }

// SetOreColors replaces the ore colour table used for classification.
func (b *Baker) SetOreColors(t *material.OreColorTable) {
	if t != nil {
		b.oreTable = t
	}
}

// surfaceBackend opens the GPU on first use and falls back to the CPU
// reference kernels when GPU baking is disabled or no adapter is available.
func (b *Baker) surfaceBackend() surfaceBackend {
	if b.backend != nil {
		return b.backend
	}
	if b.cfg.GPU.Enabled {
		g, err := openGPUBackend(b.cfg.GPU, "Planet Bake "+b.runID.String()[:8], b.log)
		if err == nil {
			b.backend = g
			return g
		}
		b.log.Warnf("gpu unavailable, using cpu kernels: %v", err)
	}
	b.backend = cpuBackend{}
	return b.backend
}

func (b *Baker) Close() {
	if b.backend != nil {
		b.backend.Release()
		b.backend = nil
	}
}

// LoadMaterials reads the rule table and selects the configured planet. An
// empty planet name is accepted when the table holds exactly one planet.
func (b *Baker) LoadMaterials() (*material.PlanetMaterial, error) {
	all, err := material.LoadPlanetMaterials(b.cfg.Paths.MaterialTable)
	if err != nil {
		return nil, err
	}
	return SelectPlanet(all, b.cfg.Planet.Name)
}

func SelectPlanet(all material.PlanetMaterials, name string) (*material.PlanetMaterial, error) {
	if name == "" {
		names := all.Names()
		if len(names) != 1 {
			return nil, errors.Errorf("planet name required, table has %d planets: %s", len(names), strings.Join(names, ", "))
		}
		name = names[0]
	}
	p, ok := all[name]
	if !ok {
		return nil, errors.Errorf("planet %q not in material table (have %s)", name, strings.Join(all.Names(), ", "))
	}
	return p, nil
}

// CacheColors resolves layer colours from the material file tables. Missing
// table files skip the pass with a warning; unresolved layers are logged
// together and keep their placeholder colour.
func (b *Baker) CacheColors(p *material.PlanetMaterial) (*material.CacheReport, error) {
	files, err := material.LoadMatFile(b.cfg.Paths.MatFiles)
	if err == nil {
		var avg material.MatColorAverage
		avg, err = material.LoadMatColorAverage(b.cfg.Paths.MatColorAvg)
		if err == nil {
			rep := p.Cache(files, avg)
			for _, u := range rep.Unresolved {
				b.log.Warnf("material color: %v", u)
			}
			b.log.Infof("material colors: %d resolved, %d unresolved", rep.Resolved, len(rep.Unresolved))
			return rep, nil
		}
	}
	if errors.Is(err, os.ErrNotExist) {
		b.log.Warnf("skipping material color cache: %v", err)
		return nil, nil
	}
	return nil, err
}

// skippable reports errors that cost one face but not the bake.
func skippable(err error) bool {
	return errors.Is(err, core.ErrUnsupportedImageEncoding) || errors.Is(err, os.ErrNotExist)
}

// BakeSurfaces writes the latitude, slope and material images of every face.
// A face whose inputs are missing or in an unsupported encoding is skipped;
// dimension mismatches and invalid faces stop the bake.
func (b *Baker) BakeSurfaces(p *material.PlanetMaterial, rep *BakeReport) error {
	if _, unknown := p.OreColors(b.oreTable); len(unknown) > 0 {
		b.log.Warnf("ore types without a color are ignored: %s", strings.Join(unknown, ", "))
	}
	cls := material.NewClassifier(p, b.oreTable)

	backend := b.surfaceBackend()
	rep.Backend = backend.Name()

	for _, face := range core.Faces() {
		res, err := b.bakeFace(backend, face, cls)
		if err != nil {
			if core.IsFatal(err) || !skippable(err) {
				return errors.Wrapf(err, "face %s", face)
			}
			b.log.Warnf("face %s skipped: %v", face, err)
			rep.Faces = append(rep.Faces, FaceResult{Face: face, Status: FaceSkipped, Backend: backend.Name(), Err: err})
			continue
		}
		rep.Faces = append(rep.Faces, *res)
	}
	return nil
}

func (b *Baker) bakeFace(backend surfaceBackend, face core.Face, cls *material.Classifier) (*FaceResult, error) {
	info, err := face.Info()
	if err != nil {
		return nil, err
	}

	var hm, mat *core.Image
	err = b.prof.Time("load", func() error {
		var err error
		if hm, err = assets.LoadImage(assets.HeightmapPath(b.cfg.Paths.HeightmapDir, face)); err != nil {
			return err
		}
		mat, err = assets.LoadImage(assets.MaterialMapPath(b.cfg.Paths.MaterialMapDir, face))
		return err
	})
	if err != nil {
		return nil, err
	}
	b.log.Debugf("face %s: heightmap %dx%d %s, material map %s", face, hm.Width, hm.Height, hm.Encoding, mat.Encoding)

	var maps *SurfaceMaps
	err = b.prof.Time(backend.Name(), func() error {
		var err error
		maps, err = backend.Surface(info.Cubemap, hm, mat, cls)
		return err
	})
	if err != nil {
		return nil, err
	}

	res := &FaceResult{Face: face, Status: FaceBaked, Backend: backend.Name()}
	err = b.prof.Time("save", func() error {
		for _, out := range []struct {
			kind string
			img  *core.Image
		}{
			{"latlut", maps.Latitude},
			{"slope", maps.Slope},
			{"material", maps.Material},
		} {
			path := assets.OutputPath(b.cfg.Paths.OutputDir, face, out.kind)
			if err := assets.SavePNG(path, out.img); err != nil {
				return err
			}
			res.Outputs = append(res.Outputs, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	b.prof.AddCount("pixels", hm.Width*hm.Height)
	b.log.Infof("face %s (%s) baked on %s", face, info.AssetName, backend.Name())
	return res, nil
}

// BakeLatitudeTables writes a square latitude table per face at gpu.lut_size.
func (b *Baker) BakeLatitudeTables() ([]string, error) {
	backend := b.surfaceBackend()
	size := b.cfg.GPU.LutSize
	var paths []string
	for _, face := range core.Faces() {
		info, err := face.Info()
		if err != nil {
			return nil, err
		}
		var img *core.Image
		err = b.prof.Time("latlut", func() error {
			var err error
			img, err = backend.LatitudeLUT(info.Cubemap, size, size)
			return err
		})
		if err != nil {
			return nil, errors.Wrapf(err, "latitude table %s", face)
		}
		path := assets.OutputPath(b.cfg.Paths.OutputDir, face, "latlut")
		if err := assets.SavePNG(path, img); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	b.log.Infof("wrote %d latitude tables (%dx%d) on %s", len(paths), size, size, backend.Name())
	return paths, nil
}

// BuildMesh builds the displaced cube-sphere. Faces without a readable
// heightmap keep the plain radius.
func (b *Baker) BuildMesh() ([]*geom.Mesh, error) {
	pc := b.cfg.Planet
	sphere := geom.NewCubeSphere(pc.Radius, pc.Subdivisions, pc.HillMin, pc.HillMax)
	if pc.HillMax != pc.HillMin {
		for _, face := range core.Faces() {
			hm, err := assets.LoadImage(assets.HeightmapPath(b.cfg.Paths.HeightmapDir, face))
			if err != nil {
				if !skippable(err) {
					return nil, err
				}
				b.log.Warnf("face %s: no displacement: %v", face, err)
				continue
			}
			if err := sphere.SetHeightmap(face, hm); err != nil {
				return nil, err
			}
		}
	}

	var meshes []*geom.Mesh
	err := b.prof.Time("mesh", func() error {
		var err error
		meshes, err = sphere.BuildParallel()
		return err
	})
	return meshes, err
}

// ExportMesh writes meshes to the configured mesh file and records it in rep.
func (b *Baker) ExportMesh(meshes []*geom.Mesh, rep *BakeReport) error {
	path := b.cfg.MeshPath()
	extras := map[string]string{
		"run_id": b.runID.String(),
		"planet": b.cfg.Planet.Name,
		"radius": fmt.Sprintf("%g", b.cfg.Planet.Radius),
	}
	err := b.prof.Time("export", func() error {
		return assets.ExportGLTF(path, meshes, extras)
	})
	if err != nil {
		return err
	}
	rep.MeshPath = path
	for _, m := range meshes {
		rep.Vertices += len(m.Vertices)
		rep.Triangles += m.TriangleCount()
	}
	b.prof.SetCount("vertices", rep.Vertices)
	b.prof.SetCount("triangles", rep.Triangles)
	b.log.Infof("mesh written to %s (%d vertices)", path, rep.Vertices)
	return nil
}

// Run performs the full bake: colour cache, surface images and mesh.
func (b *Baker) Run() (*BakeReport, error) {
	rep := &BakeReport{RunID: b.runID}
	b.log.Infof("bake %s started", b.runID)

	p, err := b.LoadMaterials()
	if err != nil {
		return rep, err
	}
	if rep.Cache, err = b.CacheColors(p); err != nil {
		return rep, err
	}
	if err := b.BakeSurfaces(p, rep); err != nil {
		return rep, err
	}

	meshes, err := b.BuildMesh()
	if err != nil {
		return rep, err
	}
	if err := b.ExportMesh(meshes, rep); err != nil {
		return rep, err
	}

	b.log.Infof("%s", rep.Summary())
	b.log.Infof("bake finished in %s\n%s", b.prof.Total(), b.prof.GetStatsString())
	return rep, nil
}
