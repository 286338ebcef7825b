package material

// Classifier picks a surface colour per sample with the same precedence as the
// material kernel: ore, then the first matching complex rule, then the simple
// material, then the default material.
type Classifier struct {
	Default [3]uint8
	Simple  []SimpleEntry
	Complex []TaggedRule
	Ores    []OreColor
}

// NewClassifier flattens p into lookup tables. Unknown ore types and simple
// material keys that are not numeric are dropped.
func NewClassifier(p *PlanetMaterial, ores *OreColorTable) *Classifier {
	simple, _ := p.SimpleMaterialList()
	oreColors, _ := p.OreColors(ores)
	return &Classifier{
		Default: p.DefaultMaterial.Color(),
		Simple:  simple,
		Complex: p.ComplexRules(),
		Ores:    oreColors,
	}
}

// Classify returns the colour for material id at the given height (0..1),
// latitude and slope (degrees).
func (c *Classifier) Classify(id uint32, height, lat, slope float32) [3]uint8 {
	for _, o := range c.Ores {
		if o.ID == id {
			return o.Color
		}
	}
	for _, r := range c.Complex {
		if r.MaterialID != id || !r.Rule.Matches(height, lat, slope) {
			continue
		}
		col, _ := r.Rule.FirstLayerColor()
		return col
	}
	for _, s := range c.Simple {
		if s.ID == id {
			return s.Layer.Color()
		}
	}
	return c.Default
}
