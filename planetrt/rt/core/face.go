package core

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Face identifies one of the six cube faces in mesher order.
type Face int

const (
	FacePosX Face = iota
	FaceNegX
	FacePosY
	FaceNegY
	FacePosZ
	FaceNegZ
)

const FaceCount = 6

// CubemapFace is the face numbering used by the latitude kernel. It follows the
// cubemap asset naming and differs in order from Face.
type CubemapFace uint32

const (
	CubemapFront CubemapFace = iota
	CubemapBack
	CubemapDown
	CubemapUp
	CubemapLeft
	CubemapRight
)

var cubemapNames = [FaceCount]string{"front", "back", "down", "up", "left", "right"}

// FaceInfo is one row of the face table.
type FaceInfo struct {
	Face       Face
	MesherName string
	// AssetName selects the heightmap, material map and output files of the face.
	AssetName string
	Cubemap   CubemapFace
	// NormalAxis is the axis held at ±depth/2 by the plane mapping.
	NormalAxis int
	// Plane maps grid coordinates and half depth to a position on the face plane.
	Plane func(gx, gy, halfDepth float32) mgl32.Vec3
}

// The asset column comes from the viewer's heightmap naming and the cubemap column
// from the latitude generator. The two do not agree on orientation (FacePosX reads
// the "left" maps, whose latitude direction points to -X). Both are kept as-is.
var faceTable = [FaceCount]FaceInfo{
	{
		Face: FacePosX, MesherName: "px", AssetName: "left", Cubemap: CubemapLeft, NormalAxis: 0,
		Plane: func(gx, gy, d float32) mgl32.Vec3 { return mgl32.Vec3{d, -gy, -gx} },
	},
	{
		Face: FaceNegX, MesherName: "nx", AssetName: "back", Cubemap: CubemapBack, NormalAxis: 0,
		Plane: func(gx, gy, d float32) mgl32.Vec3 { return mgl32.Vec3{d, -gy, gx} },
	},
	{
		Face: FacePosY, MesherName: "py", AssetName: "up", Cubemap: CubemapUp, NormalAxis: 1,
		Plane: func(gx, gy, d float32) mgl32.Vec3 { return mgl32.Vec3{gx, d, gy} },
	},
	{
		Face: FaceNegY, MesherName: "ny", AssetName: "down", Cubemap: CubemapDown, NormalAxis: 1,
		Plane: func(gx, gy, d float32) mgl32.Vec3 { return mgl32.Vec3{gx, d, -gy} },
	},
	{
		Face: FacePosZ, MesherName: "pz", AssetName: "front", Cubemap: CubemapFront, NormalAxis: 2,
		Plane: func(gx, gy, d float32) mgl32.Vec3 { return mgl32.Vec3{gx, -gy, d} },
	},
	{
		Face: FaceNegZ, MesherName: "nz", AssetName: "right", Cubemap: CubemapRight, NormalAxis: 2,
		Plane: func(gx, gy, d float32) mgl32.Vec3 { return mgl32.Vec3{-gx, -gy, d} },
	},
}

// Faces returns all faces in mesher order.
func Faces() []Face {
	return []Face{FacePosX, FaceNegX, FacePosY, FaceNegY, FacePosZ, FaceNegZ}
}

func (f Face) Valid() bool {
	return f >= 0 && f < FaceCount
}

// Info returns the face table row for f.
func (f Face) Info() (FaceInfo, error) {
	if !f.Valid() {
		return FaceInfo{}, fmt.Errorf("face %d: %w", int(f), ErrInvalidFaceIndex)
	}
	return faceTable[f], nil
}

func (f Face) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Face(%d)", int(f))
	}
	return faceTable[f].MesherName
}

// AssetName returns the per-face asset name, or "" for an invalid face.
func (f Face) AssetName() string {
	if !f.Valid() {
		return ""
	}
	return faceTable[f].AssetName
}

// ParseFace accepts a mesher name (px..nz) or an asset name (left, back, ...).
func ParseFace(name string) (Face, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, info := range faceTable {
		if info.MesherName == name || info.AssetName == name {
			return info.Face, nil
		}
	}
	return 0, fmt.Errorf("face %q: %w", name, ErrInvalidFaceIndex)
}

func (c CubemapFace) Valid() bool {
	return c < FaceCount
}

func (c CubemapFace) String() string {
	if !c.Valid() {
		return fmt.Sprintf("CubemapFace(%d)", uint32(c))
	}
	return cubemapNames[c]
}

// ParseCubemapFace maps a cubemap face name to its kernel number.
func ParseCubemapFace(name string) (CubemapFace, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range cubemapNames {
		if n == name {
			return CubemapFace(i), nil
		}
	}
	return 0, fmt.Errorf("cubemap face %q: %w", name, ErrInvalidFaceIndex)
}

// Direction returns the unnormalised cube direction for face-local coordinates
// u, v in [-1, 1]. The latitude shader carries the same table.
func (c CubemapFace) Direction(u, v float32) (mgl32.Vec3, error) {
	switch c {
	case CubemapUp:
		return mgl32.Vec3{u, 1, -v}, nil
	case CubemapDown:
		return mgl32.Vec3{u, -1, v}, nil
	case CubemapLeft:
		return mgl32.Vec3{-1, v, -u}, nil
	case CubemapRight:
		return mgl32.Vec3{1, v, u}, nil
	case CubemapBack:
		return mgl32.Vec3{-u, v, 1}, nil
	case CubemapFront:
		return mgl32.Vec3{u, v, -1}, nil
	}
	return mgl32.Vec3{}, fmt.Errorf("cubemap face %d: %w", uint32(c), ErrInvalidFaceIndex)
}
