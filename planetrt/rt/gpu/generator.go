package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/planetgen/planetrt/rt/core"
	"github.com/gekko3d/planetgen/planetrt/rt/shaders"
)

const workgroupSize = 8

type kernel struct {
	name     string
	layout   *wgpu.BindGroupLayout
	pipeline *wgpu.ComputePipeline
}

func (k *kernel) release() {
	if k == nil {
		return
	}
	if k.pipeline != nil {
		k.pipeline.Release()
	}
	if k.layout != nil {
		k.layout.Release()
	}
}

// Generator runs the latitude, slope and material kernels on a shared device.
// Every call creates and releases its own buffers; input textures are only read.
type Generator struct {
	ctx      *Context
	log      Logger
	latlut   *kernel
	slope    *kernel
	material *kernel
}

func sampledEntry(binding uint32) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageCompute,
		Texture: wgpu.TextureBindingLayout{
			SampleType:    wgpu.TextureSampleTypeUnfilterableFloat,
			ViewDimension: wgpu.TextureViewDimension2D,
		},
	}
}

func outputEntry(binding uint32) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageCompute,
		StorageTexture: wgpu.StorageTextureBindingLayout{
			Access:        wgpu.StorageTextureAccessWriteOnly,
			Format:        wgpu.TextureFormatRGBA8Unorm,
			ViewDimension: wgpu.TextureViewDimension2D,
		},
	}
}

func bufferEntry(binding uint32, typ wgpu.BufferBindingType, minSize uint64) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageCompute,
		Buffer: wgpu.BufferBindingLayout{
			Type:             typ,
			MinBindingSize:   minSize,
			HasDynamicOffset: false,
		},
	}
}

func (c *Context) newKernel(name, code string, entries []wgpu.BindGroupLayoutEntry) (*kernel, error) {
	module, err := c.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          name + " CS",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: code},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s kernel: %w", name, err)
	}
	defer module.Release()

	bgl, err := c.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   name + " BGL",
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s bind group layout: %w", name, err)
	}

	pl, err := c.Device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            name + " Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{bgl},
	})
	if err != nil {
		bgl.Release()
		return nil, fmt.Errorf("failed to create %s pipeline layout: %w", name, err)
	}
	defer pl.Release()

	pipeline, err := c.Device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  name + " Pipeline",
		Layout: pl,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: "main",
		},
	})
	if err != nil {
		bgl.Release()
		return nil, fmt.Errorf("failed to create %s pipeline: %w", name, err)
	}
	return &kernel{name: name, layout: bgl, pipeline: pipeline}, nil
}

// NewGenerator compiles the three kernels once.
func NewGenerator(ctx *Context, k shaders.Kernels, log Logger) (*Generator, error) {
	if log == nil {
		log = nopLogger{}
	}
	g := &Generator{ctx: ctx, log: log}

	var err error
	g.latlut, err = ctx.newKernel("LatLut", k.LatLut, []wgpu.BindGroupLayoutEntry{
		bufferEntry(0, wgpu.BufferBindingTypeUniform, 16),
		outputEntry(1),
	})
	if err != nil {
		return nil, err
	}

	g.slope, err = ctx.newKernel("Slope", k.Slope, []wgpu.BindGroupLayoutEntry{
		sampledEntry(0),
		outputEntry(1),
	})
	if err != nil {
		g.Release()
		return nil, err
	}

	g.material, err = ctx.newKernel("Material", k.Material, []wgpu.BindGroupLayoutEntry{
		bufferEntry(0, wgpu.BufferBindingTypeReadOnlyStorage, RuleRecordSize),
		bufferEntry(1, wgpu.BufferBindingTypeReadOnlyStorage, RuleRecordSize),
		bufferEntry(2, wgpu.BufferBindingTypeReadOnlyStorage, RuleRecordSize),
		bufferEntry(3, wgpu.BufferBindingTypeReadOnlyStorage, OreRecordSize),
		sampledEntry(4),
		sampledEntry(5),
		sampledEntry(6),
		sampledEntry(7),
		outputEntry(8),
	})
	if err != nil {
		g.Release()
		return nil, err
	}

	log.Debugf("gpu: compiled latlut, slope and material kernels")
	return g, nil
}

func (g *Generator) Context() *Context {
	return g.ctx
}

func (g *Generator) Release() {
	g.latlut.release()
	g.slope.release()
	g.material.release()
	g.latlut, g.slope, g.material = nil, nil, nil
}

// dispatch records one compute pass over a w x h image and submits it.
func (g *Generator) dispatch(k *kernel, entries []wgpu.BindGroupEntry, w, h uint32) error {
	bg, err := g.ctx.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   k.name + " BG",
		Layout:  k.layout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("failed to create %s bind group: %w", k.name, err)
	}
	defer bg.Release()

	encoder, err := g.ctx.Device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("failed to create %s encoder: %w", k.name, err)
	}
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(k.pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.DispatchWorkgroups((w+workgroupSize-1)/workgroupSize, (h+workgroupSize-1)/workgroupSize, 1)
	pass.End()

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("failed to finish %s encoder: %w", k.name, err)
	}
	g.ctx.Queue.Submit(cmd)
	g.log.Debugf("gpu: dispatched %s %dx%d", k.name, w, h)
	return nil
}

// LatitudeLUT renders the latitude table of a cubemap face.
func (g *Generator) LatitudeLUT(face core.CubemapFace, w, h uint32) (*Texture, error) {
	if !face.Valid() {
		return nil, fmt.Errorf("latitude lut face %d: %w", uint32(face), core.ErrInvalidFaceIndex)
	}
	out, err := g.ctx.NewStorageTexture(fmt.Sprintf("LatLut %s", face), w, h)
	if err != nil {
		return nil, err
	}

	params, err := g.ctx.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "LatLut Params",
		Contents: uint32ToBytesPadded(uint32(face)),
		Usage:    wgpu.BufferUsageUniform,
	})
	if err != nil {
		out.Release()
		return nil, fmt.Errorf("failed to create latlut params: %w", err)
	}
	defer params.Release()

	err = g.dispatch(g.latlut, []wgpu.BindGroupEntry{
		{Binding: 0, Buffer: params, Size: wgpu.WholeSize},
		{Binding: 1, TextureView: out.View},
	}, w, h)
	if err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}

// Slope renders the slope map of an uploaded heightmap.
func (g *Generator) Slope(hm *Texture) (*Texture, error) {
	out, err := g.ctx.NewStorageTexture("Slope", hm.Width, hm.Height)
	if err != nil {
		return nil, err
	}
	err = g.dispatch(g.slope, []wgpu.BindGroupEntry{
		{Binding: 0, TextureView: hm.View},
		{Binding: 1, TextureView: out.View},
	}, hm.Width, hm.Height)
	if err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}

func (g *Generator) storageBuffer(label string, data []byte) (*wgpu.Buffer, error) {
	buf, err := g.ctx.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: data,
		Usage:    wgpu.BufferUsageStorage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s buffer: %w", label, err)
	}
	return buf, nil
}

// Material renders the material colour map. All four inputs must share one size;
// a mismatch is reported before anything is dispatched.
func (g *Generator) Material(mat, hm, lat, slope *Texture, tables *MaterialTables) (*Texture, error) {
	w, h := hm.Width, hm.Height
	for _, t := range []*Texture{mat, lat, slope} {
		if t.Width != w || t.Height != h {
			return nil, fmt.Errorf("material kernel: %s is %dx%d, heightmap is %dx%d: %w",
				t.Label, t.Width, t.Height, w, h, core.ErrDimensionMismatch)
		}
	}

	bufs := make([]*wgpu.Buffer, 0, 4)
	defer func() {
		for _, b := range bufs {
			b.Release()
		}
	}()
	for _, src := range []struct {
		label string
		data  []byte
	}{
		{"DefaultMaterials", packRules(tables.Default)},
		{"SimpleMaterials", packRules(tables.Simple)},
		{"ComplexMaterials", packRules(tables.Complex)},
		{"Ores", packOres(tables.Ores)},
	} {
		b, err := g.storageBuffer(src.label, src.data)
		if err != nil {
			return nil, err
		}
		bufs = append(bufs, b)
	}

	out, err := g.ctx.NewStorageTexture("Material", w, h)
	if err != nil {
		return nil, err
	}
	err = g.dispatch(g.material, []wgpu.BindGroupEntry{
		{Binding: 0, Buffer: bufs[0], Size: wgpu.WholeSize},
		{Binding: 1, Buffer: bufs[1], Size: wgpu.WholeSize},
		{Binding: 2, Buffer: bufs[2], Size: wgpu.WholeSize},
		{Binding: 3, Buffer: bufs[3], Size: wgpu.WholeSize},
		{Binding: 4, TextureView: mat.View},
		{Binding: 5, TextureView: hm.View},
		{Binding: 6, TextureView: lat.View},
		{Binding: 7, TextureView: slope.View},
		{Binding: 8, TextureView: out.View},
	}, w, h)
	if err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}
