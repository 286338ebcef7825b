package material

import "sort"

// OreColorTable maps an ore type name to its display colour. It is immutable once
// built; use WithColor to derive a modified copy.
type OreColorTable struct {
	colors map[string][3]uint8
}

func NewOreColorTable(colors map[string][3]uint8) *OreColorTable {
	t := &OreColorTable{colors: make(map[string][3]uint8, len(colors))}
	for k, v := range colors {
		t.colors[k] = v
	}
	return t
}

// DefaultOreColors returns the stock ore palette.
func DefaultOreColors() *OreColorTable {
	return NewOreColorTable(map[string][3]uint8{
		"Iron_01":      {255, 216, 0},
		"Iron_02":      {255, 216, 0},
		"Nickel_01":    {239, 166, 117},
		"Silicon_01":   {216, 107, 128},
		"Magnesium_01": {0, 255, 255},
		"Cobalt_01":    {181, 254, 0},
		"Silver_01":    {145, 145, 145},
		"Gold_01":      {255, 0, 220},
		"Platinum_01":  {219, 249, 255},
		"Uraninite_01": {155, 114, 241},
		"Copper":       {184, 115, 51},
		"Bauxite":      {249, 166, 64},
		"Coal":         {145, 145, 145},
		"Titanium":     {81, 127, 84},
		"OilSand":      {183, 0, 3},
		"Sulfur":       {190, 167, 151},
		"Lithium":      {172, 80, 141},
		"Tantalum":     {255, 0, 0},
		"Cronyx":       {184, 115, 51},
		"Dorium":       {181, 254, 0},
	})
}

func (t *OreColorTable) Color(oreType string) ([3]uint8, bool) {
	if t == nil {
		return [3]uint8{}, false
	}
	c, ok := t.colors[oreType]
	return c, ok
}

func (t *OreColorTable) WithColor(oreType string, c [3]uint8) *OreColorTable {
	n := NewOreColorTable(t.colors)
	n.colors[oreType] = c
	return n
}

func (t *OreColorTable) Len() int {
	return len(t.colors)
}

func (t *OreColorTable) Types() []string {
	out := make([]string, 0, len(t.colors))
	for k := range t.colors {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// OreColor is an ore id with its resolved colour.
type OreColor struct {
	ID    uint32
	Color [3]uint8
}

// OreColors resolves the planet's ores against table. Ores whose type has no
// colour are returned by type name in unknown.
func (p *PlanetMaterial) OreColors(table *OreColorTable) (out []OreColor, unknown []string) {
	for _, o := range p.OreList() {
		c, ok := table.Color(o.Type)
		if !ok {
			unknown = append(unknown, o.Type)
			continue
		}
		out = append(out, OreColor{ID: o.ID, Color: c})
	}
	return out, unknown
}
