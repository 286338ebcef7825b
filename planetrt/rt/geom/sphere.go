package geom

import (
	"fmt"
	"sync"

	"github.com/gekko3d/planetgen/planetrt/rt/core"
	"github.com/gekko3d/planetgen/planetrt/rt/sampler"
)

// CubeSphere projects a subdivided cube onto a sphere and displaces every vertex
// radially by the heightmap of its face.
type CubeSphere struct {
	Radius       float32
	Subdivisions int
	HillMin      float32
	HillMax      float32
	// Heightmaps is indexed by core.Face. A nil entry leaves the face undisplaced.
	Heightmaps [core.FaceCount]*core.Image
}

func NewCubeSphere(radius float32, subdivisions int, hillMin, hillMax float32) *CubeSphere {
	return &CubeSphere{
		Radius:       radius,
		Subdivisions: subdivisions,
		HillMin:      hillMin,
		HillMax:      hillMax,
	}
}

// SetHeightmap assigns the displacement source for face.
func (s *CubeSphere) SetHeightmap(face core.Face, img *core.Image) error {
	if !face.Valid() {
		return fmt.Errorf("heightmap face %d: %w", int(face), core.ErrInvalidFaceIndex)
	}
	s.Heightmaps[face] = img
	return nil
}

// Displacement returns the radial scale for a normalised height h.
func (s *CubeSphere) Displacement(h float32) float32 {
	return s.Radius * (1 - s.HillMin + h*(s.HillMax-s.HillMin))
}

// FaceMesh builds one face of the sphere.
func (s *CubeSphere) FaceMesh(face core.Face) (*Mesh, error) {
	if s.Subdivisions <= 0 {
		return nil, fmt.Errorf("cube sphere: subdivisions %d must be positive", s.Subdivisions)
	}
	size := s.Radius / 2
	box := NewBox(size, size, size, s.Subdivisions, s.Subdivisions, s.Subdivisions)
	m, err := box.FaceMesh(face)
	if err != nil {
		return nil, err
	}

	hm := s.Heightmaps[face]
	displace := hm != nil && s.HillMax-s.HillMin != 0

	for i := range m.Vertices {
		v := &m.Vertices[i]
		p := v.Position.Normalize()
		v.Normal = p

		scale := s.Radius
		if displace {
			scale = s.Displacement(sampler.Sample(hm, v.UV.X(), v.UV.Y()))
		}
		v.Position = p.Mul(scale)
	}
	return m, nil
}

// Meshes builds the six faces one after another in face order.
func (s *CubeSphere) Meshes() ([]*Mesh, error) {
	meshes := make([]*Mesh, 0, core.FaceCount)
	for _, f := range core.Faces() {
		m, err := s.FaceMesh(f)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, m)
	}
	return meshes, nil
}

// BuildParallel builds the six faces concurrently. The result is in face order;
// the first error in face order is returned.
func (s *CubeSphere) BuildParallel() ([]*Mesh, error) {
	meshes := make([]*Mesh, core.FaceCount)
	errs := make([]error, core.FaceCount)

	var wg sync.WaitGroup
	for _, f := range core.Faces() {
		wg.Add(1)
		go func(f core.Face) {
			defer wg.Done()
			meshes[f], errs[f] = s.FaceMesh(f)
		}(f)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return meshes, nil
}
