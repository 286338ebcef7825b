// Package sampler fetches displacement values from heightmap images.
package sampler

import (
	"github.com/chewxy/math32"

	"github.com/gekko3d/planetgen/planetrt/rt/core"
)

// Sample returns the first channel of img at normalised coordinates (u, v),
// bilinearly interpolated and scaled to [0, 1]. Coordinates outside [0, 1] sample
// as 0, as do unsupported encodings.
func Sample(img *core.Image, u, v float32) float32 {
	if img == nil {
		return 0
	}
	switch img.Encoding {
	case core.EncodingLuma8, core.EncodingRGB8, core.EncodingRGBA8:
		return sample8(img, u, v)
	case core.EncodingLuma16:
		return sampleLuma16(img, u, v)
	}
	return 0
}

func outside(u, v float32) bool {
	return u < 0 || u > 1 || v < 0 || v > 1
}

// sample8 covers every 8-bit encoding; only the first channel is read.
func sample8(img *core.Image, u, v float32) float32 {
	if outside(u, v) {
		return 0
	}
	w, h := float32(img.Width), float32(img.Height)
	x := u * w
	y := v * h

	if x == w-1 || y == h-1 {
		return float32(pixel(img, x, y)) / 255
	}
	if x == w || y == h {
		if x == w {
			x = w - 1
		}
		if y == h {
			y = h - 1
		}
		return float32(pixel(img, x, y)) / 255
	}
	return bilinear(img, x, y) / 255
}

// sampleLuma16 maps coordinates at half resolution and has no clamp branch for
// coordinates landing exactly on the image size. Both differ from sample8 on purpose.
func sampleLuma16(img *core.Image, u, v float32) float32 {
	if outside(u, v) {
		return 0
	}
	w, h := float32(img.Width), float32(img.Height)
	x := u * (w / 2)
	y := v * (h / 2)

	if x == w-1 || y == h-1 {
		return float32(pixel(img, x, y)) / 65535
	}
	return bilinear(img, x, y) / 65535
}

// pixel reads the nearest pixel, truncating and clamping the coordinates.
func pixel(img *core.Image, x, y float32) uint32 {
	return img.First(clamp(int(x), img.Width), clamp(int(y), img.Height))
}

func bilinear(img *core.Image, x, y float32) float32 {
	x0 := clamp(int(math32.Floor(x)), img.Width)
	y0 := clamp(int(math32.Floor(y)), img.Height)
	x1 := clamp(x0+1, img.Width)
	y1 := clamp(y0+1, img.Height)

	p00 := float32(img.First(x0, y0))
	p01 := float32(img.First(x0, y1))
	p10 := float32(img.First(x1, y0))
	p11 := float32(img.First(x1, y1))

	fx := x - float32(x0)
	fy := y - float32(y0)

	top := p00*(1-fx) + p10*fx
	bottom := p01*(1-fx) + p11*fx
	return top*(1-fy) + bottom*fy
}

func clamp(i, size int) int {
	if i < 0 {
		return 0
	}
	if i > size-1 {
		return size - 1
	}
	return i
}
