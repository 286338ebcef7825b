package assets

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/gekko3d/planetgen/planetrt/rt/geom"
)

// MeshDocument builds a glTF document with one node and mesh per face mesh.
// extras is stored on the asset, e.g. the bake run id.
func MeshDocument(meshes []*geom.Mesh, extras map[string]string) *gltf.Document {
	doc := gltf.NewDocument()
	doc.Asset.Generator = "planetgen"
	if len(extras) > 0 {
		doc.Asset.Extras = extras
	}

	doc.Materials = append(doc.Materials, &gltf.Material{
		Name:        "planet",
		DoubleSided: false,
	})

	for _, m := range meshes {
		if m == nil {
			continue
		}
		positions := make([][3]float32, len(m.Vertices))
		normals := make([][3]float32, len(m.Vertices))
		uvs := make([][2]float32, len(m.Vertices))
		for i, v := range m.Vertices {
			positions[i] = v.Position
			normals[i] = v.Normal
			uvs[i] = v.UV
		}

		indices := modeler.WriteIndices(doc, m.Indices)
		attributes := map[string]uint32{
			gltf.POSITION:   modeler.WritePosition(doc, positions),
			gltf.NORMAL:     modeler.WriteNormal(doc, normals),
			gltf.TEXCOORD_0: modeler.WriteTextureCoord(doc, uvs),
		}

		name := "face_" + m.Face.String()
		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name: name,
			Primitives: []*gltf.Primitive{
				{
					Indices:    gltf.Index(indices),
					Attributes: attributes,
					Material:   gltf.Index(0),
				},
			},
		})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)))
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name: name,
			Mesh: gltf.Index(uint32(len(doc.Meshes) - 1)),
		})
	}
	return doc
}

// ExportGLTF writes meshes to path. A ".glb" extension selects the binary
// container, anything else writes JSON glTF with embedded buffers.
func ExportGLTF(path string, meshes []*geom.Mesh, extras map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create output dir")
	}
	doc := MeshDocument(meshes, extras)

	var err error
	if strings.EqualFold(filepath.Ext(path), ".glb") {
		err = gltf.SaveBinary(doc, path)
	} else {
		err = gltf.Save(doc, path)
	}
	return errors.Wrapf(err, "export %s", path)
}
