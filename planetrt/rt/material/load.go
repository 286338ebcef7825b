package material

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
)

// MatEntry locates the texture of a named material.
type MatEntry struct {
	Path string `json:"path"`
	File string `json:"file"`
}

// MatFile maps a material name to its texture location.
type MatFile map[string]MatEntry

// MatColorAverage maps a texture path bucket to per-file average colours. The
// "default" bucket is consulted when the material's own path has no entry.
type MatColorAverage map[string]map[string][]int

// DefaultBucket is the fallback path bucket of MatColorAverage.
const DefaultBucket = "default"

func decodeJSON(r io.Reader, v interface{}, what string) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return errors.Wrapf(err, "decode %s", what)
	}
	return nil
}

func loadJSONFile(path string, v interface{}, what string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", what)
	}
	defer f.Close()
	return errors.Wrap(decodeJSON(f, v, what), path)
}

// DecodePlanetMaterials reads a material rule table.
func DecodePlanetMaterials(r io.Reader) (PlanetMaterials, error) {
	var pm PlanetMaterials
	if err := decodeJSON(r, &pm, "planet materials"); err != nil {
		return nil, err
	}
	for name, m := range pm {
		if m == nil {
			return nil, errors.Errorf("planet %q has no material definition", name)
		}
	}
	return pm, nil
}

func LoadPlanetMaterials(path string) (PlanetMaterials, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open planet materials")
	}
	defer f.Close()
	pm, err := DecodePlanetMaterials(f)
	return pm, errors.Wrap(err, path)
}

func LoadMatFile(path string) (MatFile, error) {
	var mf MatFile
	if err := loadJSONFile(path, &mf, "material files"); err != nil {
		return nil, err
	}
	return mf, nil
}

func LoadMatColorAverage(path string) (MatColorAverage, error) {
	var avg MatColorAverage
	if err := loadJSONFile(path, &avg, "material colour averages"); err != nil {
		return nil, err
	}
	return avg, nil
}

// Lookup returns the average colour of file under path, falling back to the
// default bucket. found is false when neither bucket lists the file.
func (a MatColorAverage) Lookup(path, file string) (color []int, found bool) {
	if bucket, ok := a[path]; ok {
		if c, ok := bucket[file]; ok {
			return c, true
		}
	}
	if bucket, ok := a[DefaultBucket]; ok {
		if c, ok := bucket[file]; ok {
			return c, true
		}
	}
	return nil, false
}
