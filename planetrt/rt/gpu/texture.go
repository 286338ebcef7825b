package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/planetgen/planetrt/rt/core"
)

// Texture is a 2D device texture with its default view.
type Texture struct {
	ctx     *Context
	Texture *wgpu.Texture
	View    *wgpu.TextureView
	Width   uint32
	Height  uint32
	Format  wgpu.TextureFormat
	Label   string
}

func (c *Context) newTexture(label string, w, h uint32, format wgpu.TextureFormat, usage wgpu.TextureUsage) (*Texture, error) {
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("texture %s %dx%d: %w", label, w, h, core.ErrDimensionMismatch)
	}
	tex, err := c.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create texture %s: %w", label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to create view of %s: %w", label, err)
	}
	return &Texture{ctx: c, Texture: tex, View: view, Width: w, Height: h, Format: format, Label: label}, nil
}

// NewStorageTexture creates an RGBA8 kernel output that can also be sampled by
// later kernels and read back.
func (c *Context) NewStorageTexture(label string, w, h uint32) (*Texture, error) {
	return c.newTexture(label, w, h, wgpu.TextureFormatRGBA8Unorm,
		wgpu.TextureUsageStorageBinding|wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopySrc)
}

// uploadData converts img to the texel layout of its device format. Grey images
// become normalised R32Float, colour images RGBA8Unorm.
func uploadData(img *core.Image) (wgpu.TextureFormat, []byte, uint32, error) {
	n := img.Width * img.Height
	switch img.Encoding {
	case core.EncodingRGBA8:
		return wgpu.TextureFormatRGBA8Unorm, img.Pix, 4, nil
	case core.EncodingRGB8:
		data := make([]byte, n*4)
		for i := 0; i < n; i++ {
			copy(data[i*4:i*4+3], img.Pix[i*3:i*3+3])
			data[i*4+3] = 255
		}
		return wgpu.TextureFormatRGBA8Unorm, data, 4, nil
	case core.EncodingLuma8:
		data := make([]byte, n*4)
		for i, v := range img.Pix {
			binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(float32(v)/255.0))
		}
		return wgpu.TextureFormatR32Float, data, 4, nil
	case core.EncodingLuma16:
		data := make([]byte, n*4)
		for i, v := range img.Pix16 {
			binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(float32(v)/65535.0))
		}
		return wgpu.TextureFormatR32Float, data, 4, nil
	}
	return wgpu.TextureFormat(0), nil, 0, fmt.Errorf("upload %s: %w", img.Encoding, core.ErrUnsupportedImageEncoding)
}

// Luma16Range returns the smallest and largest value of a 16-bit image.
func Luma16Range(img *core.Image) (min, max uint16) {
	if len(img.Pix16) == 0 {
		return 0, 0
	}
	min, max = img.Pix16[0], img.Pix16[0]
	for _, v := range img.Pix16[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// UploadImage copies img into a sampled texture.
func (c *Context) UploadImage(label string, img *core.Image, log Logger) (*Texture, error) {
	if log == nil {
		log = nopLogger{}
	}
	format, data, bpp, err := uploadData(img)
	if err != nil {
		return nil, err
	}
	if img.Encoding == core.EncodingLuma16 {
		lo, hi := Luma16Range(img)
		log.Debugf("%s: 16-bit heightmap range min=%d max=%d", label, lo, hi)
	}

	w, h := uint32(img.Width), uint32(img.Height)
	t, err := c.newTexture(label, w, h, format, wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopyDst)
	if err != nil {
		return nil, err
	}

	extent := wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1}
	err = c.Queue.WriteTexture(t.Texture.AsImageCopy(), data, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  w * bpp,
		RowsPerImage: h,
	}, &extent)
	if err != nil {
		t.Release()
		return nil, fmt.Errorf("failed to upload %s: %w", label, err)
	}
	return t, nil
}

func alignedBytesPerRow(w uint32) uint32 {
	return (w*4 + 255) & ^uint32(255)
}

// unpackRows strips the row padding of a readback buffer.
func unpackRows(data []byte, w, h, bytesPerRow uint32) []uint8 {
	out := make([]uint8, w*h*4)
	for y := uint32(0); y < h; y++ {
		row := data[y*bytesPerRow : y*bytesPerRow+w*4]
		copy(out[y*w*4:], row)
	}
	return out
}

// Readback copies an RGBA8 texture to the host. It blocks until the device has
// finished all submitted work that writes the texture.
func (t *Texture) Readback() (*core.Image, error) {
	if t.Format != wgpu.TextureFormatRGBA8Unorm {
		return nil, fmt.Errorf("readback %s: %w", t.Label, core.ErrUnsupportedImageEncoding)
	}
	c := t.ctx
	w, h := t.Width, t.Height
	bytesPerRow := alignedBytesPerRow(w)
	size := uint64(bytesPerRow * h)

	buf, err := c.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: t.Label + " Readback",
		Size:  size,
		Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readback buffer: %w", err)
	}
	defer buf.Release()

	encoder, err := c.Device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create encoder: %w", err)
	}
	encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Texture:  t.Texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{X: 0, Y: 0, Z: 0},
		},
		&wgpu.ImageCopyBuffer{
			Buffer: buf,
			Layout: wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  bytesPerRow,
				RowsPerImage: h,
			},
		},
		&wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	cmd, err := encoder.Finish(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to finish readback encoder: %w", err)
	}
	c.Queue.Submit(cmd)

	done := false
	status := wgpu.BufferMapAsyncStatusSuccess
	buf.MapAsync(wgpu.MapModeRead, 0, size, func(s wgpu.BufferMapAsyncStatus) {
		status = s
		done = true
	})
	for !done {
		c.Device.Poll(true, nil)
	}
	if status != wgpu.BufferMapAsyncStatusSuccess {
		return nil, fmt.Errorf("failed to map readback of %s: status %d", t.Label, status)
	}

	data := buf.GetMappedRange(0, uint(size))
	img := &core.Image{
		Encoding: core.EncodingRGBA8,
		Width:    int(w),
		Height:   int(h),
		Pix:      unpackRows(data, w, h, bytesPerRow),
	}
	buf.Unmap()
	return img, nil
}

func (t *Texture) Release() {
	if t == nil {
		return
	}
	if t.View != nil {
		t.View.Release()
		t.View = nil
	}
	if t.Texture != nil {
		t.Texture.Release()
		t.Texture = nil
	}
}
