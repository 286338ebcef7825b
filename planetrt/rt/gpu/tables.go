package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gekko3d/planetgen/planetrt/rt/material"
)

// Record sizes of the material kernel storage buffers. Both are multiples of 16
// so every element starts on a vec4 boundary.
const (
	RuleRecordSize = 64
	OreRecordSize  = 32
	// SentinelID fills a table that would otherwise be empty. Material ids read
	// from the map never exceed 255.
	SentinelID = 999
)

// RuleRecord is the host view of one 64 byte rule record:
// id u32 @0, pad @4, color vec4 @16, height vec2 @32, latitude vec2 @40,
// slope vec2 @48, pad @56.
type RuleRecord struct {
	ID       uint32
	Color    [4]float32
	Height   [2]float32
	Latitude [2]float32
	Slope    [2]float32
}

func (r RuleRecord) Bytes() []byte {
	buf := make([]byte, RuleRecordSize)
	binary.LittleEndian.PutUint32(buf[0:4], r.ID)
	copy(buf[16:32], vec4ToBytes(r.Color))
	copy(buf[32:40], vec2ToBytes(r.Height))
	copy(buf[40:48], vec2ToBytes(r.Latitude))
	copy(buf[48:56], vec2ToBytes(r.Slope))
	return buf
}

// OreRecord is one 32 byte ore record: id u32 @0, pad @4, color vec4 @16.
type OreRecord struct {
	ID    uint32
	Color [4]float32
}

func (o OreRecord) Bytes() []byte {
	buf := make([]byte, OreRecordSize)
	binary.LittleEndian.PutUint32(buf[0:4], o.ID)
	copy(buf[16:32], vec4ToBytes(o.Color))
	return buf
}

// MaterialTables is the packed input of the material kernel.
type MaterialTables struct {
	Default []RuleRecord
	Simple  []RuleRecord
	Complex []RuleRecord
	Ores    []OreRecord
}

// NewMaterialTables packs a classifier. Table order follows the classifier, so
// the first match on the device is the first match on the host.
func NewMaterialTables(cls *material.Classifier) *MaterialTables {
	t := &MaterialTables{
		Default: []RuleRecord{{ID: 0, Color: rgbToVec4(cls.Default)}},
	}

	for _, s := range cls.Simple {
		t.Simple = append(t.Simple, RuleRecord{ID: s.ID, Color: rgbToVec4(s.Layer.Color())})
	}
	if len(t.Simple) == 0 {
		t.Simple = []RuleRecord{{ID: SentinelID, Slope: [2]float32{1, 1}}}
	}

	for _, r := range cls.Complex {
		c, _ := r.Rule.FirstLayerColor()
		t.Complex = append(t.Complex, RuleRecord{
			ID:       r.MaterialID,
			Color:    rgbToVec4(c),
			Height:   [2]float32{r.Rule.MinHeight, r.Rule.MaxHeight},
			Latitude: [2]float32{r.Rule.LatitudeMin, r.Rule.LatitudeMax},
			Slope:    [2]float32{r.Rule.SlopeMin, r.Rule.SlopeMax},
		})
	}
	if len(t.Complex) == 0 {
		t.Complex = []RuleRecord{{ID: SentinelID}}
	}

	for _, o := range cls.Ores {
		t.Ores = append(t.Ores, OreRecord{ID: o.ID, Color: rgbToVec4(o.Color)})
	}
	if len(t.Ores) == 0 {
		t.Ores = []OreRecord{{ID: SentinelID}}
	}
	return t
}

func packRules(rules []RuleRecord) []byte {
	buf := make([]byte, 0, len(rules)*RuleRecordSize)
	for _, r := range rules {
		buf = append(buf, r.Bytes()...)
	}
	return buf
}

func packOres(ores []OreRecord) []byte {
	buf := make([]byte, 0, len(ores)*OreRecordSize)
	for _, o := range ores {
		buf = append(buf, o.Bytes()...)
	}
	return buf
}

// Helpers

func rgbToVec4(c [3]uint8) [4]float32 {
	return [4]float32{float32(c[0]) / 255.0, float32(c[1]) / 255.0, float32(c[2]) / 255.0, 1}
}

func vec2ToBytes(v [2]float32) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(v[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(v[1]))
	return buf
}

func vec4ToBytes(v [4]float32) []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(v[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(v[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(v[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(v[3]))
	return buf
}

func uint32ToBytesPadded(v uint32) []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], v)
	return buf
}
