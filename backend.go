package planetgen

import (
	"fmt"

	"github.com/gekko3d/planetgen/planetrt/rt/core"
	"github.com/gekko3d/planetgen/planetrt/rt/gpu"
	"github.com/gekko3d/planetgen/planetrt/rt/material"
	"github.com/gekko3d/planetgen/planetrt/rt/shaders"
	"github.com/gekko3d/planetgen/planetrt/rt/surface"
)

// SurfaceMaps are the three generated images of one face.
type SurfaceMaps struct {
	Latitude *core.Image
	Slope    *core.Image
	Material *core.Image
}

// surfaceBackend evaluates the latitude, slope and material passes of a face.
type surfaceBackend interface {
	Name() string
	LatitudeLUT(face core.CubemapFace, w, h int) (*core.Image, error)
	Surface(face core.CubemapFace, hm, mat *core.Image, cls *material.Classifier) (*SurfaceMaps, error)
	Release()
}

type cpuBackend struct{}

func (cpuBackend) Name() string { return "cpu" }

func (cpuBackend) LatitudeLUT(face core.CubemapFace, w, h int) (*core.Image, error) {
	return surface.LatitudeLUT(face, w, h)
}

func (cpuBackend) Surface(face core.CubemapFace, hm, mat *core.Image, cls *material.Classifier) (*SurfaceMaps, error) {
	lat, err := surface.LatitudeLUT(face, hm.Width, hm.Height)
	if err != nil {
		return nil, err
	}
	slope, err := surface.Slope(hm)
	if err != nil {
		return nil, err
	}
	out, err := surface.Classify(cls, mat, hm, lat, slope)
	if err != nil {
		return nil, err
	}
	return &SurfaceMaps{Latitude: lat, Slope: slope, Material: out}, nil
}

func (cpuBackend) Release() {}

type gpuBackend struct {
	ctx *gpu.Context
	gen *gpu.Generator
	log Logger
}

func openGPUBackend(cfg GPUConfig, label string, log Logger) (*gpuBackend, error) {
	kernels := shaders.Embedded()
	if cfg.ShaderDir != "" {
		var err error
		kernels, err = shaders.Load(cfg.ShaderDir)
		if err != nil {
			return nil, err
		}
	}
	ctx, err := gpu.Open(gpu.Options{PowerPreference: cfg.PowerPreference, Label: label})
	if err != nil {
		return nil, err
	}
	gen, err := gpu.NewGenerator(ctx, kernels, log)
	if err != nil {
		ctx.Release()
		return nil, err
	}
	return &gpuBackend{ctx: ctx, gen: gen, log: log}, nil
}

func (b *gpuBackend) Name() string { return "gpu" }

func (b *gpuBackend) LatitudeLUT(face core.CubemapFace, w, h int) (*core.Image, error) {
	t, err := b.gen.LatitudeLUT(face, uint32(w), uint32(h))
	if err != nil {
		return nil, err
	}
	defer t.Release()
	return t.Readback()
}

func (b *gpuBackend) Surface(face core.CubemapFace, hm, mat *core.Image, cls *material.Classifier) (*SurfaceMaps, error) {
	if !hm.SameSize(mat) {
		return nil, fmt.Errorf("heightmap %dx%d, material map %dx%d: %w",
			hm.Width, hm.Height, mat.Width, mat.Height, core.ErrDimensionMismatch)
	}

	hmTex, err := b.ctx.UploadImage(fmt.Sprintf("Heightmap %s", face), hm, b.log)
	if err != nil {
		return nil, err
	}
	defer hmTex.Release()
	matTex, err := b.ctx.UploadImage(fmt.Sprintf("Material Map %s", face), mat, b.log)
	if err != nil {
		return nil, err
	}
	defer matTex.Release()

	latTex, err := b.gen.LatitudeLUT(face, hmTex.Width, hmTex.Height)
	if err != nil {
		return nil, err
	}
	defer latTex.Release()
	slopeTex, err := b.gen.Slope(hmTex)
	if err != nil {
		return nil, err
	}
	defer slopeTex.Release()
	outTex, err := b.gen.Material(matTex, hmTex, latTex, slopeTex, gpu.NewMaterialTables(cls))
	if err != nil {
		return nil, err
	}
	defer outTex.Release()

	maps := &SurfaceMaps{}
	if maps.Latitude, err = latTex.Readback(); err != nil {
		return nil, err
	}
	if maps.Slope, err = slopeTex.Readback(); err != nil {
		return nil, err
	}
	if maps.Material, err = outTex.Readback(); err != nil {
		return nil, err
	}
	return maps, nil
}

func (b *gpuBackend) Release() {
	if b.gen != nil {
		b.gen.Release()
		b.gen = nil
	}
	if b.ctx != nil {
		b.ctx.Release()
		b.ctx = nil
	}
}
