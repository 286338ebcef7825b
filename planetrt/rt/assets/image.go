// Package assets reads and writes the files of a bake: heightmaps, material
// maps, generated surface images and mesh exports.
package assets

import (
	"bufio"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/gekko3d/planetgen/planetrt/rt/core"
)

// HeightmapPath is the heightmap file of a face, e.g. "left.png".
func HeightmapPath(dir string, face core.Face) string {
	return filepath.Join(dir, face.AssetName()+".png")
}

// MaterialMapPath is the material id map of a face, e.g. "left_mat.png".
func MaterialMapPath(dir string, face core.Face) string {
	return filepath.Join(dir, face.AssetName()+"_mat.png")
}

// OutputPath names a generated image, e.g. "left_slope.png".
func OutputPath(dir string, face core.Face, kind string) string {
	return filepath.Join(dir, face.AssetName()+"_"+kind+".png")
}

// DecodeImage decodes png, jpeg, bmp or tiff data into an image buffer.
// Decoded layouts without a matching encoding fail with
// core.ErrUnsupportedImageEncoding.
func DecodeImage(r io.Reader) (*core.Image, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, "decode image")
	}
	img, err := core.FromImage(src)
	if err != nil {
		return nil, errors.Wrapf(err, "%s image", format)
	}
	return img, nil
}

func LoadImage(path string) (*core.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open image")
	}
	defer f.Close()

	img, err := DecodeImage(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return img, nil
}

func EncodePNG(w io.Writer, img *core.Image) error {
	out, err := img.ToImage()
	if err != nil {
		return err
	}
	return errors.Wrap(png.Encode(w, out), "encode png")
}

// SavePNG writes img to path, creating parent directories.
func SavePNG(path string, img *core.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create output dir")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create image")
	}
	if err := EncodePNG(f, img); err != nil {
		f.Close()
		return errors.Wrap(err, path)
	}
	return errors.Wrap(f.Close(), path)
}
