// Package material holds the planet material definitions and the range rules
// that pick a surface colour from height, latitude and slope.
package material

import (
	"sort"
	"strconv"
)

// Unset marks a query axis that takes no part in rule matching.
const Unset float32 = -999

// Layer is one coloured material layer. R, G and B start as placeholder values and
// are replaced by the cache pass with the material's average texture colour.
type Layer struct {
	R        uint8  `json:"R"`
	G        uint8  `json:"G"`
	B        uint8  `json:"B"`
	Material string `json:"Material"`
	Depth    *uint8 `json:"Depth,omitempty"`
}

func (l Layer) Color() [3]uint8 {
	return [3]uint8{l.R, l.G, l.B}
}

// Rule selects its layers when every queried value lies inside the matching range.
type Rule struct {
	Layers      []Layer `json:"Layers"`
	MinHeight   float32 `json:"MinHeight"`
	MaxHeight   float32 `json:"MaxHeight"`
	LatitudeMin float32 `json:"LatitudeMin"`
	LatitudeMax float32 `json:"LatitudeMax"`
	SlopeMin    float32 `json:"SlopeMin"`
	SlopeMax    float32 `json:"SlopeMax"`
}

// Matches reports whether height, lat and slope fall inside the rule's inclusive
// ranges. A query value equal to Unset matches any range on its axis. A range
// with min > max never matches a set value.
func (r *Rule) Matches(height, lat, slope float32) bool {
	if height != Unset && (height < r.MinHeight || height > r.MaxHeight) {
		return false
	}
	if lat != Unset && (lat < r.LatitudeMin || lat > r.LatitudeMax) {
		return false
	}
	if slope != Unset && (slope < r.SlopeMin || slope > r.SlopeMax) {
		return false
	}
	return true
}

// FirstLayerColor returns the primary colour of the rule.
func (r *Rule) FirstLayerColor() ([3]uint8, bool) {
	if len(r.Layers) == 0 {
		return [3]uint8{}, false
	}
	return r.Layers[0].Color(), true
}

// LowestDepthColor returns the colour of the layer with the smallest depth. A
// layer without depth sorts before any layer with one; ties keep the earlier layer.
func (r *Rule) LowestDepthColor() ([3]uint8, bool) {
	var lowest *Layer
	for i := range r.Layers {
		l := &r.Layers[i]
		if lowest == nil || depthLess(l.Depth, lowest.Depth) {
			lowest = l
		}
	}
	if lowest == nil {
		return [3]uint8{}, false
	}
	return lowest.Color(), true
}

func depthLess(a, b *uint8) bool {
	if a == nil {
		return b != nil
	}
	return b != nil && *a < *b
}

// VoxelMaterial is a complex material: an id with rules in priority order.
type VoxelMaterial struct {
	ID    int32  `json:"id"`
	Name  string `json:"name"`
	Rules []Rule `json:"rules"`
}

// Layer returns the first rule matching the query and its primary colour.
func (m *VoxelMaterial) Layer(height, lat, slope float32) (*Rule, [3]uint8, bool) {
	for i := range m.Rules {
		r := &m.Rules[i]
		if r.Matches(height, lat, slope) {
			c, ok := r.FirstLayerColor()
			return r, c, ok
		}
	}
	return nil, [3]uint8{}, false
}

type OreMapping struct {
	Value          *uint32    `json:"Value,omitempty"`
	Type           *string    `json:"Type,omitempty"`
	Start          *uint32    `json:"Start,omitempty"`
	Depth          *uint32    `json:"Depth,omitempty"`
	TargetColor    *[3]uint32 `json:"TargetColor,omitempty"`
	ColorInfluence *uint32    `json:"ColorInfluence,omitempty"`
}

// PlanetMaterial bundles every material definition of one planet.
type PlanetMaterial struct {
	Name             string                   `json:"Name"`
	DefaultMaterial  Layer                    `json:"DefaultMaterial"`
	SimpleMaterials  map[string]Layer         `json:"SimpleMaterials"`
	ComplexMaterials map[string]VoxelMaterial `json:"ComplexMaterials"`
	Ores             map[string]OreMapping    `json:"Ores"`
	BaseFolder       string                   `json:"BaseFolder"`
}

// PlanetMaterials is the rule table file: planet name to its materials.
type PlanetMaterials map[string]*PlanetMaterial

// Names returns the planet names in sorted order.
func (p PlanetMaterials) Names() []string {
	names := make([]string, 0, len(p))
	for n := range p {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// TaggedRule is a complex rule carrying the id of the material it belongs to.
type TaggedRule struct {
	MaterialID uint32
	Rule       *Rule
}

// ComplexRules flattens all complex materials into one ordered list. Materials
// are ordered by id (then key), rules keep their source order within a material.
func (p *PlanetMaterial) ComplexRules() []TaggedRule {
	keys := make([]string, 0, len(p.ComplexMaterials))
	for k := range p.ComplexMaterials {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := p.ComplexMaterials[keys[i]], p.ComplexMaterials[keys[j]]
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return keys[i] < keys[j]
	})

	var out []TaggedRule
	for _, k := range keys {
		m := p.ComplexMaterials[k]
		for i := range m.Rules {
			out = append(out, TaggedRule{MaterialID: uint32(m.ID), Rule: &m.Rules[i]})
		}
	}
	return out
}

// SimpleEntry is a simple material with its parsed numeric id.
type SimpleEntry struct {
	ID    uint32
	Layer Layer
}

// SimpleMaterialList returns the simple materials ordered by id. Keys that are
// not unsigned integers are returned separately and skipped.
func (p *PlanetMaterial) SimpleMaterialList() ([]SimpleEntry, []string) {
	var out []SimpleEntry
	var bad []string
	for k, l := range p.SimpleMaterials {
		id, err := strconv.ParseUint(k, 10, 32)
		if err != nil {
			bad = append(bad, k)
			continue
		}
		out = append(out, SimpleEntry{ID: uint32(id), Layer: l})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	sort.Strings(bad)
	return out, bad
}

// OreEntry is an ore mapping resolved to its id and type name.
type OreEntry struct {
	ID   uint32
	Type string
}

// OreList returns ores that carry both a value and a type, ordered by id.
func (p *PlanetMaterial) OreList() []OreEntry {
	var out []OreEntry
	for _, o := range p.Ores {
		if o.Value == nil || o.Type == nil {
			continue
		}
		out = append(out, OreEntry{ID: *o.Value, Type: *o.Type})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ID != out[j].ID {
			return out[i].ID < out[j].ID
		}
		return out[i].Type < out[j].Type
	})
	return out
}
