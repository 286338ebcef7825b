package geom

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/planetgen/planetrt/rt/core"
)

func TestBuildFace_SingleSegment(t *testing.T) {
	for _, f := range core.Faces() {
		m, err := BuildFace(f, 2, 2, 2, 1, 1)
		require.NoError(t, err, f.String())
		assert.Len(t, m.Vertices, 4, f.String())
		assert.Len(t, m.Indices, 6, f.String())
		assert.Equal(t, []uint32{0, 2, 1, 2, 3, 1}, m.Indices, f.String())
		assert.Equal(t, f, m.Face)
	}
}

func TestBuildFace_GridCounts(t *testing.T) {
	m, err := BuildFace(core.FacePosZ, 4, 2, 1, 4, 3)
	require.NoError(t, err)
	assert.Len(t, m.Vertices, 5*4)
	assert.Equal(t, 4*3*2, m.TriangleCount())
	for _, idx := range m.Indices {
		assert.Less(t, int(idx), len(m.Vertices))
	}
}

func TestBuildFace_PlaneMapping(t *testing.T) {
	tests := []struct {
		face core.Face
		// position of the first vertex, grid (-1,-1) with depth 2
		first  mgl32.Vec3
		normal mgl32.Vec3
	}{
		{core.FacePosX, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{1, 0, 0}},
		{core.FaceNegX, mgl32.Vec3{1, 1, -1}, mgl32.Vec3{1, 0, 0}},
		{core.FacePosY, mgl32.Vec3{-1, 1, -1}, mgl32.Vec3{0, 1, 0}},
		{core.FaceNegY, mgl32.Vec3{-1, 1, 1}, mgl32.Vec3{0, 1, 0}},
		{core.FacePosZ, mgl32.Vec3{-1, 1, 1}, mgl32.Vec3{0, 0, 1}},
		{core.FaceNegZ, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0, 0, 1}},
	}
	for _, tc := range tests {
		m, err := BuildFace(tc.face, 2, 2, 2, 2, 2)
		require.NoError(t, err)
		assert.Equal(t, tc.first, m.Vertices[0].Position, tc.face.String())
		assert.Equal(t, tc.normal, m.Vertices[0].Normal, tc.face.String())
		assert.Equal(t, mgl32.Vec2{0, 0}, m.Vertices[0].UV)
		assert.Equal(t, mgl32.Vec2{1, 1}, m.Vertices[len(m.Vertices)-1].UV)
	}
}

func TestBuildFace_NegativeDepthFlipsNormal(t *testing.T) {
	m, err := BuildFace(core.FaceNegY, 2, 2, -2, 1, 1)
	require.NoError(t, err)
	for _, v := range m.Vertices {
		assert.Equal(t, mgl32.Vec3{0, -1, 0}, v.Normal)
		assert.Equal(t, float32(-1), v.Position.Y())
	}
}

func TestBuildFace_InvalidArguments(t *testing.T) {
	_, err := BuildFace(core.Face(6), 1, 1, 1, 1, 1)
	assert.True(t, errors.Is(err, core.ErrInvalidFaceIndex))

	_, err = BuildFace(core.Face(-1), 1, 1, 1, 1, 1)
	assert.True(t, errors.Is(err, core.ErrInvalidFaceIndex))

	_, err = BuildFace(core.FacePosX, 1, 1, 1, 0, 1)
	assert.Error(t, err)
}

func TestBox_FacesCoverCube(t *testing.T) {
	box := NewBox(2, 4, 6, 1, 2, 3)
	meshes, err := box.Meshes()
	require.NoError(t, err)
	require.Len(t, meshes, core.FaceCount)

	wantAxis := []float32{1, -1, 2, -2, 3, -3}
	for i, m := range meshes {
		info, err := m.Face.Info()
		require.NoError(t, err)
		for _, v := range m.Vertices {
			assert.InDelta(t, wantAxis[i], v.Position[info.NormalAxis], 1e-6, m.Face.String())
		}
	}

	// x faces: depth x height segments, y faces: width x depth, z faces: width x height
	assert.Len(t, meshes[core.FacePosX].Vertices, 4*3)
	assert.Len(t, meshes[core.FacePosY].Vertices, 2*4)
	assert.Len(t, meshes[core.FacePosZ].Vertices, 2*3)

	min, max := meshes[core.FacePosZ].Bounds()
	assert.Equal(t, mgl32.Vec3{-1, -2, 3}, min)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, max)
}

func TestBox_InvalidFace(t *testing.T) {
	_, err := NewBox(1, 1, 1, 1, 1, 1).FaceMesh(core.Face(9))
	assert.True(t, errors.Is(err, core.ErrInvalidFaceIndex))
}

func TestCubeSphere_UnitSphereWithoutHills(t *testing.T) {
	s := NewCubeSphere(1, 4, 0, 0)
	meshes, err := s.Meshes()
	require.NoError(t, err)
	for _, m := range meshes {
		for _, v := range m.Vertices {
			assert.InDelta(t, 1.0, v.Position.Len(), 1e-5)
			assert.InDelta(t, 1.0, v.Normal.Len(), 1e-5)
		}
	}
}

func TestCubeSphere_RadiusAppliedWithoutHeightmap(t *testing.T) {
	s := NewCubeSphere(3, 2, 0.97, 1.03)
	m, err := s.FaceMesh(core.FacePosY)
	require.NoError(t, err)
	for _, v := range m.Vertices {
		assert.InDelta(t, 3.0, v.Position.Len(), 1e-5)
	}
}

func TestCubeSphere_Displacement(t *testing.T) {
	hm, err := core.NewImage(core.EncodingLuma8, 4, 4)
	require.NoError(t, err)
	for i := range hm.Pix {
		hm.Pix[i] = 128
	}

	s := NewCubeSphere(1, 2, -0.03, 0.03)
	for _, f := range core.Faces() {
		require.NoError(t, s.SetHeightmap(f, hm))
	}

	want := 1.03 + (128.0/255.0)*0.06
	meshes, err := s.BuildParallel()
	require.NoError(t, err)
	require.Len(t, meshes, core.FaceCount)
	for i, m := range meshes {
		assert.Equal(t, core.Face(i), m.Face)
		for _, v := range m.Vertices {
			assert.InDelta(t, want, v.Position.Len(), 1e-4)
			assert.InDelta(t, 1.0, v.Normal.Len(), 1e-5)
		}
	}
}

func TestCubeSphere_SeamsShareSpherePositions(t *testing.T) {
	s := NewCubeSphere(1, 3, 0, 0)
	meshes, err := s.BuildParallel()
	require.NoError(t, err)

	// Every cube corner lies on three faces; each projected corner must be found
	// on exactly three meshes.
	corners := 0
	for _, x := range []float32{-1, 1} {
		for _, y := range []float32{-1, 1} {
			for _, z := range []float32{-1, 1} {
				c := mgl32.Vec3{x, y, z}.Normalize()
				found := 0
				for _, m := range meshes {
					for _, v := range m.Vertices {
						if v.Position.ApproxEqualThreshold(c, 1e-5) {
							found++
							break
						}
					}
				}
				assert.Equal(t, 3, found, "corner %v", c)
				corners++
			}
		}
	}
	assert.Equal(t, 8, corners)
}

func TestCubeSphere_SetHeightmapInvalidFace(t *testing.T) {
	s := NewCubeSphere(1, 1, 0, 0)
	assert.True(t, errors.Is(s.SetHeightmap(core.Face(7), nil), core.ErrInvalidFaceIndex))
}
