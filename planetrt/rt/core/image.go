package core

import (
	"fmt"
	"image"
	"image/color"
)

// Encoding is the pixel layout of an Image.
type Encoding int

const (
	EncodingUnknown Encoding = iota
	EncodingLuma8
	EncodingLuma16
	EncodingRGB8
	EncodingRGBA8
)

func (e Encoding) String() string {
	switch e {
	case EncodingLuma8:
		return "luma8"
	case EncodingLuma16:
		return "luma16"
	case EncodingRGB8:
		return "rgb8"
	case EncodingRGBA8:
		return "rgba8"
	}
	return fmt.Sprintf("Encoding(%d)", int(e))
}

// Channels returns the number of interleaved channels, 0 for unknown encodings.
func (e Encoding) Channels() int {
	switch e {
	case EncodingLuma8, EncodingLuma16:
		return 1
	case EncodingRGB8:
		return 3
	case EncodingRGBA8:
		return 4
	}
	return 0
}

// MaxValue is the largest raw channel value of the encoding.
func (e Encoding) MaxValue() float32 {
	if e == EncodingLuma16 {
		return 65535
	}
	return 255
}

// Image is a row-major 2D pixel buffer. 8-bit encodings store their channels in
// Pix, Luma16 stores one value per pixel in Pix16.
type Image struct {
	Encoding Encoding
	Width    int
	Height   int
	Pix      []uint8
	Pix16    []uint16
}

// NewImage allocates a zeroed image.
func NewImage(enc Encoding, width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("image size %dx%d: %w", width, height, ErrDimensionMismatch)
	}
	img := &Image{Encoding: enc, Width: width, Height: height}
	switch enc {
	case EncodingLuma16:
		img.Pix16 = make([]uint16, width*height)
	case EncodingLuma8, EncodingRGB8, EncodingRGBA8:
		img.Pix = make([]uint8, width*height*enc.Channels())
	default:
		return nil, fmt.Errorf("new image: %s: %w", enc, ErrUnsupportedImageEncoding)
	}
	return img, nil
}

// SameSize reports whether both images have identical dimensions.
func (img *Image) SameSize(o *Image) bool {
	return img != nil && o != nil && img.Width == o.Width && img.Height == o.Height
}

// First returns the raw first channel at (x, y).
func (img *Image) First(x, y int) uint32 {
	if img.Encoding == EncodingLuma16 {
		return uint32(img.Pix16[y*img.Width+x])
	}
	return uint32(img.Pix[(y*img.Width+x)*img.Encoding.Channels()])
}

// RGBA returns the pixel at (x, y) widened to four 8-bit channels. Luma16 is
// reduced to its high byte.
func (img *Image) RGBA(x, y int) [4]uint8 {
	switch img.Encoding {
	case EncodingLuma8:
		v := img.Pix[y*img.Width+x]
		return [4]uint8{v, v, v, 255}
	case EncodingLuma16:
		v := uint8(img.Pix16[y*img.Width+x] >> 8)
		return [4]uint8{v, v, v, 255}
	case EncodingRGB8:
		i := (y*img.Width + x) * 3
		return [4]uint8{img.Pix[i], img.Pix[i+1], img.Pix[i+2], 255}
	case EncodingRGBA8:
		i := (y*img.Width + x) * 4
		return [4]uint8{img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]}
	}
	return [4]uint8{}
}

// SetRGBA writes c to an RGBA8 image.
func (img *Image) SetRGBA(x, y int, c [4]uint8) {
	i := (y*img.Width + x) * 4
	copy(img.Pix[i:i+4], c[:])
}

// SetLuma writes v to a Luma8 image.
func (img *Image) SetLuma(x, y int, v uint8) {
	img.Pix[y*img.Width+x] = v
}

// FromImage converts a decoded standard library image. Gray, Gray16, RGBA, NRGBA
// and YCbCr sources are supported.
func FromImage(src image.Image) (*Image, error) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	switch s := src.(type) {
	case *image.Gray:
		img, err := NewImage(EncodingLuma8, w, h)
		if err != nil {
			return nil, err
		}
		for y := 0; y < h; y++ {
			copy(img.Pix[y*w:(y+1)*w], s.Pix[y*s.Stride:y*s.Stride+w])
		}
		return img, nil
	case *image.Gray16:
		img, err := NewImage(EncodingLuma16, w, h)
		if err != nil {
			return nil, err
		}
		for y := 0; y < h; y++ {
			row := s.Pix[y*s.Stride:]
			for x := 0; x < w; x++ {
				img.Pix16[y*w+x] = uint16(row[2*x])<<8 | uint16(row[2*x+1])
			}
		}
		return img, nil
	case *image.RGBA:
		return copyRGBA(s.Pix, s.Stride, w, h)
	case *image.NRGBA:
		return copyRGBA(s.Pix, s.Stride, w, h)
	case *image.YCbCr:
		img, err := NewImage(EncodingRGB8, w, h)
		if err != nil {
			return nil, err
		}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				yi := s.YOffset(b.Min.X+x, b.Min.Y+y)
				ci := s.COffset(b.Min.X+x, b.Min.Y+y)
				r, g, bl := color.YCbCrToRGB(s.Y[yi], s.Cb[ci], s.Cr[ci])
				i := (y*w + x) * 3
				img.Pix[i], img.Pix[i+1], img.Pix[i+2] = r, g, bl
			}
		}
		return img, nil
	}
	return nil, fmt.Errorf("convert %T: %w", src, ErrUnsupportedImageEncoding)
}

func copyRGBA(pix []uint8, stride, w, h int) (*Image, error) {
	img, err := NewImage(EncodingRGBA8, w, h)
	if err != nil {
		return nil, err
	}
	for y := 0; y < h; y++ {
		copy(img.Pix[y*w*4:(y+1)*w*4], pix[y*stride:y*stride+w*4])
	}
	return img, nil
}

// ToImage converts back to a standard library image for encoding.
func (img *Image) ToImage() (image.Image, error) {
	r := image.Rect(0, 0, img.Width, img.Height)
	switch img.Encoding {
	case EncodingLuma8:
		out := image.NewGray(r)
		copy(out.Pix, img.Pix)
		return out, nil
	case EncodingLuma16:
		out := image.NewGray16(r)
		for i, v := range img.Pix16 {
			out.Pix[2*i] = uint8(v >> 8)
			out.Pix[2*i+1] = uint8(v)
		}
		return out, nil
	case EncodingRGB8, EncodingRGBA8:
		out := image.NewNRGBA(r)
		for y := 0; y < img.Height; y++ {
			for x := 0; x < img.Width; x++ {
				c := img.RGBA(x, y)
				copy(out.Pix[y*out.Stride+x*4:], c[:])
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("to image: %s: %w", img.Encoding, ErrUnsupportedImageEncoding)
}
