package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/planetgen/planetrt/rt/core"
)

func uniform(t *testing.T, enc core.Encoding, w, h int, k uint16) *core.Image {
	t.Helper()
	img, err := core.NewImage(enc, w, h)
	require.NoError(t, err)
	if enc == core.EncodingLuma16 {
		for i := range img.Pix16 {
			img.Pix16[i] = k
		}
		return img
	}
	for i := range img.Pix {
		img.Pix[i] = uint8(k)
	}
	return img
}

func TestSample_OutOfRange(t *testing.T) {
	encodings := []core.Encoding{core.EncodingLuma8, core.EncodingLuma16, core.EncodingRGB8, core.EncodingRGBA8}
	for _, enc := range encodings {
		img := uniform(t, enc, 4, 4, 200)
		assert.Equal(t, float32(0), Sample(img, -0.01, 0.5), enc.String())
		assert.Equal(t, float32(0), Sample(img, 1.01, 0.5), enc.String())
		assert.Equal(t, float32(0), Sample(img, 0.5, -0.01), enc.String())
		assert.Equal(t, float32(0), Sample(img, 0.5, 1.01), enc.String())
	}
}

func TestSample_UniformImage(t *testing.T) {
	tests := []struct {
		enc core.Encoding
		k   uint16
		max float32
	}{
		{core.EncodingLuma8, 200, 255},
		{core.EncodingRGB8, 17, 255},
		{core.EncodingRGBA8, 255, 255},
		{core.EncodingLuma16, 40000, 65535},
	}
	coords := []float32{0, 0.1, 0.25, 0.5, 0.73, 0.999, 1}

	for _, tc := range tests {
		img := uniform(t, tc.enc, 2, 2, tc.k)
		want := float32(tc.k) / tc.max
		for _, u := range coords {
			for _, v := range coords {
				assert.InDelta(t, want, Sample(img, u, v), 1e-5, "%s at (%v,%v)", tc.enc, u, v)
			}
		}
	}
}

func TestSample_Bilinear8(t *testing.T) {
	img, err := core.NewImage(core.EncodingLuma8, 4, 4)
	require.NoError(t, err)
	// Horizontal ramp: column c has value c*10.
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetLuma(x, y, uint8(x*10))
		}
	}

	// x = 0.375*4 = 1.5, halfway between 10 and 20.
	assert.InDelta(t, 15.0/255.0, Sample(img, 0.375, 0.25), 1e-6)
	// x = 3 exactly hits the last column and is returned without interpolation.
	assert.InDelta(t, 30.0/255.0, Sample(img, 0.75, 0.1), 1e-6)
	// u = 1 lands on the width and is clamped to the last column.
	assert.InDelta(t, 30.0/255.0, Sample(img, 1, 0.1), 1e-6)
}

func TestSample_RGBReadsFirstChannel(t *testing.T) {
	img, err := core.NewImage(core.EncodingRGBA8, 2, 2)
	require.NoError(t, err)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetRGBA(x, y, [4]uint8{51, 255, 255, 255})
		}
	}
	assert.InDelta(t, 0.2, Sample(img, 0.3, 0.3), 1e-6)
}

func TestSample_Luma16HalfResolution(t *testing.T) {
	img, err := core.NewImage(core.EncodingLuma16, 8, 8)
	require.NoError(t, err)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Pix16[y*8+x] = uint16(x * 1000)
		}
	}

	// u = 1 maps to x = 4 on the 16-bit path, not to the last column.
	assert.InDelta(t, 4000.0/65535.0, Sample(img, 1, 0.5), 1e-6)
	// u = 0.25 maps to x = 1.
	assert.InDelta(t, 1000.0/65535.0, Sample(img, 0.25, 0.5), 1e-6)
}

func TestSample_UnsupportedEncoding(t *testing.T) {
	img := &core.Image{Encoding: core.EncodingUnknown, Width: 2, Height: 2}
	assert.Equal(t, float32(0), Sample(img, 0.5, 0.5))
	assert.Equal(t, float32(0), Sample(nil, 0.5, 0.5))
}
