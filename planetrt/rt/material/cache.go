package material

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gekko3d/planetgen/planetrt/rt/core"
)

// Reasons a layer colour could not be resolved.
const (
	ReasonUnknownMaterial = "unknown material"
	ReasonNoAverageColor  = "no average color"
	ReasonInvalidColor    = "invalid color format"
)

// UnresolvedColor describes a layer that kept its placeholder colour.
type UnresolvedColor struct {
	// Owner names where the layer lives, e.g. "complex/3/rule 1" or "default".
	Owner    string
	Material string
	Path     string
	File     string
	Reason   string
}

func (u UnresolvedColor) Error() string {
	if u.Reason == ReasonUnknownMaterial {
		return fmt.Sprintf("%s: %s %q", u.Owner, u.Reason, u.Material)
	}
	return fmt.Sprintf("%s: %s for %q (%s | %s)", u.Owner, u.Reason, u.Material, u.Path, u.File)
}

func (u UnresolvedColor) Unwrap() error {
	return core.ErrUnresolvedMaterialColor
}

// CacheReport collects the outcome of a cache pass.
type CacheReport struct {
	Resolved   int
	Unresolved []UnresolvedColor
}

// Err returns nil when every layer resolved, otherwise one error listing all
// unresolved layers. It matches core.ErrUnresolvedMaterialColor.
func (r *CacheReport) Err() error {
	if r == nil || len(r.Unresolved) == 0 {
		return nil
	}
	return &UnresolvedColorError{Entries: r.Unresolved}
}

type UnresolvedColorError struct {
	Entries []UnresolvedColor
}

func (e *UnresolvedColorError) Error() string {
	parts := make([]string, len(e.Entries))
	for i, u := range e.Entries {
		parts[i] = u.Error()
	}
	return fmt.Sprintf("%d unresolved material colors: %s", len(e.Entries), strings.Join(parts, "; "))
}

func (e *UnresolvedColorError) Unwrap() error {
	return core.ErrUnresolvedMaterialColor
}

// Cache replaces every layer colour with the average texture colour of its
// material. Layers that cannot be resolved keep their colour and are listed in
// the report; the pass never stops early.
func (p *PlanetMaterial) Cache(files MatFile, avg MatColorAverage) *CacheReport {
	rep := &CacheReport{}

	keys := make([]string, 0, len(p.ComplexMaterials))
	for k := range p.ComplexMaterials {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		m := p.ComplexMaterials[k]
		for ri := range m.Rules {
			for li := range m.Rules[ri].Layers {
				owner := fmt.Sprintf("complex/%s/rule %d", k, ri)
				resolveLayer(&m.Rules[ri].Layers[li], owner, files, avg, rep)
			}
		}
	}

	keys = keys[:0]
	for k := range p.SimpleMaterials {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		l := p.SimpleMaterials[k]
		resolveLayer(&l, "simple/"+k, files, avg, rep)
		p.SimpleMaterials[k] = l
	}

	resolveLayer(&p.DefaultMaterial, "default", files, avg, rep)
	return rep
}

func resolveLayer(l *Layer, owner string, files MatFile, avg MatColorAverage, rep *CacheReport) {
	entry, ok := files[l.Material]
	if !ok {
		rep.Unresolved = append(rep.Unresolved, UnresolvedColor{
			Owner: owner, Material: l.Material, Reason: ReasonUnknownMaterial,
		})
		return
	}
	u := UnresolvedColor{Owner: owner, Material: l.Material, Path: entry.Path, File: entry.File}

	c, found := avg.Lookup(entry.Path, entry.File)
	if !found {
		u.Reason = ReasonNoAverageColor
		rep.Unresolved = append(rep.Unresolved, u)
		return
	}
	if len(c) != 3 || !byteRange(c) {
		u.Reason = ReasonInvalidColor
		rep.Unresolved = append(rep.Unresolved, u)
		return
	}
	l.R, l.G, l.B = uint8(c[0]), uint8(c[1]), uint8(c[2])
	rep.Resolved++
}

func byteRange(c []int) bool {
	for _, v := range c {
		if v < 0 || v > 255 {
			return false
		}
	}
	return true
}

// CacheAll runs the cache pass over every planet and merges the reports.
func (p PlanetMaterials) CacheAll(files MatFile, avg MatColorAverage) *CacheReport {
	total := &CacheReport{}
	for _, name := range p.Names() {
		rep := p[name].Cache(files, avg)
		total.Resolved += rep.Resolved
		for _, u := range rep.Unresolved {
			u.Owner = name + "/" + u.Owner
			total.Unresolved = append(total.Unresolved, u)
		}
	}
	return total
}
