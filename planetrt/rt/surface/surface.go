// Package surface evaluates the latitude, slope and material kernels on the
// host. Results match the GPU kernels pixel for pixel and are used when no
// adapter is available.
package surface

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/gekko3d/planetgen/planetrt/rt/core"
	"github.com/gekko3d/planetgen/planetrt/rt/material"
)

const rad2deg = 180 / math32.Pi

// Latitude returns the absolute latitude in degrees of pixel (x, y) on a
// width x height cubemap face, sampled at the pixel centre.
func Latitude(face core.CubemapFace, x, y, width, height int) (float32, error) {
	u := (float32(x)+0.5)/float32(width)*2 - 1
	v := (float32(y)+0.5)/float32(height)*2 - 1
	dir, err := face.Direction(u, v)
	if err != nil {
		return 0, err
	}
	p := dir.Normalize()
	return math32.Abs(math32.Asin(p.Y()) * rad2deg), nil
}

// LatitudeLUT renders the latitude lookup table of a cubemap face as an RGBA8
// grey image.
func LatitudeLUT(face core.CubemapFace, width, height int) (*core.Image, error) {
	if !face.Valid() {
		return nil, fmt.Errorf("latitude lut %d: %w", uint32(face), core.ErrInvalidFaceIndex)
	}
	out, err := core.NewImage(core.EncodingRGBA8, width, height)
	if err != nil {
		return nil, err
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			lat, _ := Latitude(face, x, y, width, height)
			g := uint8(lat)
			out.SetRGBA(x, y, [4]uint8{g, g, g, 255})
		}
	}
	return out, nil
}

// SlopeAt returns the absolute slope in degrees between (x, y) and its diagonal
// neighbour, wrapping at the image edges. Heights are on the 8-bit scale for
// every encoding.
func SlopeAt(hm *core.Image, x, y int) float32 {
	x1 := (x + 1) % hm.Width
	y1 := (y + 1) % hm.Height
	scale := 255 / hm.Encoding.MaxValue()

	dh := (float32(hm.First(x1, y1)) - float32(hm.First(x, y))) * scale
	dx := float32(x1 - x)
	dy := float32(y1 - y)
	s := math32.Asin(dh/math32.Sqrt(dx*dx+dy*dy+dh*dh)) * rad2deg
	return math32.Abs(s)
}

// Slope renders the slope map of a heightmap as an RGBA8 grey image.
func Slope(hm *core.Image) (*core.Image, error) {
	if hm == nil || hm.Encoding.Channels() == 0 {
		return nil, fmt.Errorf("slope: %w", core.ErrUnsupportedImageEncoding)
	}
	out, err := core.NewImage(core.EncodingRGBA8, hm.Width, hm.Height)
	if err != nil {
		return nil, err
	}
	for y := 0; y < hm.Height; y++ {
		for x := 0; x < hm.Width; x++ {
			g := uint8(SlopeAt(hm, x, y))
			out.SetRGBA(x, y, [4]uint8{g, g, g, 255})
		}
	}
	return out, nil
}

// Unit returns the first channel of (x, y) scaled to [0, 1].
func Unit(img *core.Image, x, y int) float32 {
	return float32(img.First(x, y)) / img.Encoding.MaxValue()
}

// Byte returns the first channel of (x, y) on the 0..255 scale, rounded.
func Byte(img *core.Image, x, y int) uint32 {
	return uint32(math32.Round(Unit(img, x, y) * 255))
}

// Classify renders the material colour map. All four inputs must share one size.
func Classify(cls *material.Classifier, mat, hm, lat, slope *core.Image) (*core.Image, error) {
	for _, img := range []*core.Image{mat, hm, lat, slope} {
		if img == nil || img.Encoding.Channels() == 0 {
			return nil, fmt.Errorf("classify: %w", core.ErrUnsupportedImageEncoding)
		}
	}
	if !hm.SameSize(mat) || !hm.SameSize(lat) || !hm.SameSize(slope) {
		return nil, fmt.Errorf("classify: heightmap %dx%d, material %dx%d, latitude %dx%d, slope %dx%d: %w",
			hm.Width, hm.Height, mat.Width, mat.Height, lat.Width, lat.Height, slope.Width, slope.Height,
			core.ErrDimensionMismatch)
	}

	out, err := core.NewImage(core.EncodingRGBA8, hm.Width, hm.Height)
	if err != nil {
		return nil, err
	}
	for y := 0; y < hm.Height; y++ {
		for x := 0; x < hm.Width; x++ {
			c := cls.Classify(
				Byte(mat, x, y),
				Unit(hm, x, y),
				float32(Byte(lat, x, y)),
				float32(Byte(slope, x, y)),
			)
			out.SetRGBA(x, y, [4]uint8{c[0], c[1], c[2], 255})
		}
	}
	return out, nil
}
