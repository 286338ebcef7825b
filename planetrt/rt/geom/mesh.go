package geom

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/planetgen/planetrt/rt/core"
)

type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// Mesh is a triangle list for one cube face. Vertices are stored in grid scan
// order, indices reference them three per triangle.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Face     core.Face
}

func NewMesh(face core.Face, vertexCap, indexCap int) *Mesh {
	return &Mesh{
		Vertices: make([]Vertex, 0, vertexCap),
		Indices:  make([]uint32, 0, indexCap),
		Face:     face,
	}
}

func (m *Mesh) AddVertex(v Vertex) {
	m.Vertices = append(m.Vertices, v)
}

func (m *Mesh) AddTriangle(a, b, c uint32) {
	m.Indices = append(m.Indices, a, b, c)
}

func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Bounds returns the axis aligned bounds of all vertex positions.
func (m *Mesh) Bounds() (min, max mgl32.Vec3) {
	if len(m.Vertices) == 0 {
		return
	}
	min, max = m.Vertices[0].Position, m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			if v.Position[i] < min[i] {
				min[i] = v.Position[i]
			}
			if v.Position[i] > max[i] {
				max[i] = v.Position[i]
			}
		}
	}
	return
}
