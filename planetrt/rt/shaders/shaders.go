package shaders

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

//go:embed latlut.wgsl
var LatLutWGSL string

//go:embed slope.wgsl
var SlopeWGSL string

//go:embed materialgen.wgsl
var MaterialWGSL string

// File names looked up by Load.
const (
	LatLutFile   = "latlut.wgsl"
	SlopeFile    = "slope.wgsl"
	MaterialFile = "materialgen.wgsl"
)

// Kernels holds the WGSL source of the three compute kernels.
type Kernels struct {
	LatLut   string
	Slope    string
	Material string
}

func Embedded() Kernels {
	return Kernels{LatLut: LatLutWGSL, Slope: SlopeWGSL, Material: MaterialWGSL}
}

// Load returns the embedded kernels with any file present in dir taking its
// place. An empty dir returns the embedded set.
func Load(dir string) (Kernels, error) {
	k := Embedded()
	if dir == "" {
		return k, nil
	}
	for name, dst := range map[string]*string{
		LatLutFile:   &k.LatLut,
		SlopeFile:    &k.Slope,
		MaterialFile: &k.Material,
	} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return Kernels{}, errors.Wrapf(err, "read kernel %s", name)
		}
		*dst = string(b)
	}
	return k, nil
}
