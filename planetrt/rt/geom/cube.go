package geom

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/planetgen/planetrt/rt/core"
)

// BuildFace builds a (segmentsX+1)x(segmentsY+1) vertex grid on the plane of face.
// depth places the plane at depth/2 on the face axis; its sign also selects the
// normal direction, so a negative depth yields an inward facing plane.
func BuildFace(face core.Face, width, height, depth float32, segmentsX, segmentsY int) (*Mesh, error) {
	info, err := face.Info()
	if err != nil {
		return nil, err
	}
	if segmentsX <= 0 || segmentsY <= 0 {
		return nil, fmt.Errorf("face %s: segments %dx%d must be positive", face, segmentsX, segmentsY)
	}

	gridX1 := segmentsX + 1
	gridY1 := segmentsY + 1
	m := NewMesh(face, gridX1*gridY1, segmentsX*segmentsY*6)

	segW := width / float32(segmentsX)
	segH := height / float32(segmentsY)
	halfW := width / 2
	halfH := height / 2
	halfD := depth / 2

	var n float32 = -1
	if depth > 0 {
		n = 1
	}
	var normal mgl32.Vec3
	normal[info.NormalAxis] = n

	for iy := 0; iy < gridY1; iy++ {
		gy := float32(iy)*segH - halfH
		for ix := 0; ix < gridX1; ix++ {
			gx := float32(ix)*segW - halfW
			m.AddVertex(Vertex{
				Position: info.Plane(gx, gy, halfD),
				Normal:   normal,
				UV:       mgl32.Vec2{float32(ix) / float32(segmentsX), float32(iy) / float32(segmentsY)},
			})

			if iy == segmentsY || ix == segmentsX {
				continue
			}
			a := uint32(ix + gridX1*iy)
			b := uint32(ix + gridX1*(iy+1))
			c := uint32((ix + 1) + gridX1*(iy+1))
			d := uint32((ix + 1) + gridX1*iy)
			m.AddTriangle(a, b, d)
			m.AddTriangle(b, c, d)
		}
	}
	return m, nil
}

// Box describes a subdivided cube whose faces are built by BuildFace.
type Box struct {
	SizeX, SizeY, SizeZ float32
	SegmentsWidth       int
	SegmentsHeight      int
	SegmentsDepth       int
}

func NewBox(sizeX, sizeY, sizeZ float32, segW, segH, segD int) Box {
	return Box{
		SizeX: sizeX, SizeY: sizeY, SizeZ: sizeZ,
		SegmentsWidth: segW, SegmentsHeight: segH, SegmentsDepth: segD,
	}
}

// FaceMesh builds one face of the box. Odd faces get a negative depth and face
// inwards on their axis.
func (b Box) FaceMesh(face core.Face) (*Mesh, error) {
	if !face.Valid() {
		return nil, fmt.Errorf("box face %d: %w", int(face), core.ErrInvalidFaceIndex)
	}

	var w, h, d float32
	var sx, sy int
	switch face {
	case core.FacePosX, core.FaceNegX:
		w, h, d = b.SizeZ, b.SizeY, b.SizeX
		sx, sy = b.SegmentsDepth, b.SegmentsHeight
	case core.FacePosY, core.FaceNegY:
		w, h, d = b.SizeX, b.SizeZ, b.SizeY
		sx, sy = b.SegmentsWidth, b.SegmentsDepth
	default:
		w, h, d = b.SizeX, b.SizeY, b.SizeZ
		sx, sy = b.SegmentsWidth, b.SegmentsHeight
	}
	if face%2 == 1 {
		d = -d
	}
	return BuildFace(face, w, h, d, sx, sy)
}

// Meshes builds all six faces in face order.
func (b Box) Meshes() ([]*Mesh, error) {
	meshes := make([]*Mesh, 0, core.FaceCount)
	for _, f := range core.Faces() {
		m, err := b.FaceMesh(f)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, m)
	}
	return meshes, nil
}
