package village3d

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
)

const dracoExtension = "KHR_draco_mesh_compression"

// GLTFLoader reads the node hierarchy of a .glb or .gltf file. Only names and
// transforms are read; meshes, Draco compressed or not, are left undecoded, so
// auxPath is informational.
type GLTFLoader struct{}

func (l *GLTFLoader) Load(ctx context.Context, path, auxPath string) (*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open glTF file %s: %w", path, err)
	}
	for _, ext := range doc.ExtensionsRequired {
		if ext == dracoExtension {
			slog.Debug("Asset meshes are Draco compressed, reading node transforms only", "path", path, "decoder", auxPath)
		}
	}
	return nodesFromDocument(doc, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}

// nodesFromDocument converts the default scene of doc into a Node tree rooted at
// a node named after the scene.
func nodesFromDocument(doc *gltf.Document, fallbackName string) (*Node, error) {
	root := NewNode(fallbackName, Vector3{})

	var top []int
	switch {
	case len(doc.Scenes) > 0:
		sceneIdx := 0
		if doc.Scene != nil {
			sceneIdx = int(*doc.Scene)
		}
		if sceneIdx < 0 || sceneIdx >= len(doc.Scenes) {
			return nil, fmt.Errorf("default scene %d out of range", sceneIdx)
		}
		scene := doc.Scenes[sceneIdx]
		if scene.Name != "" {
			root.Name = scene.Name
		}
		for _, ni := range scene.Nodes {
			top = append(top, int(ni))
		}
	default:
		top = rootNodeIndices(doc)
	}

	visited := make(map[int]bool)
	for _, ni := range top {
		child, err := convertNode(doc, ni, visited)
		if err != nil {
			return nil, err
		}
		root.AddChild(child)
	}
	return root, nil
}

// rootNodeIndices returns nodes that are nobody's child, for documents without
// scenes.
func rootNodeIndices(doc *gltf.Document) []int {
	isChild := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, ci := range n.Children {
			isChild[int(ci)] = true
		}
	}
	var out []int
	for i := range doc.Nodes {
		if !isChild[i] {
			out = append(out, i)
		}
	}
	return out
}

func convertNode(doc *gltf.Document, idx int, visited map[int]bool) (*Node, error) {
	if idx < 0 || idx >= len(doc.Nodes) {
		return nil, fmt.Errorf("node index %d out of range", idx)
	}
	if visited[idx] {
		return nil, fmt.Errorf("node %d appears more than once in the hierarchy", idx)
	}
	visited[idx] = true

	gn := doc.Nodes[idx]
	n := NewNode(gn.Name, Vector3{})
	n.Position, n.Scale = nodeTransform(gn)

	for _, ci := range gn.Children {
		child, err := convertNode(doc, int(ci), visited)
		if err != nil {
			return nil, err
		}
		n.AddChild(child)
	}
	return n, nil
}

// nodeTransform extracts translation and scale from either the TRS properties or
// the matrix of a glTF node.
func nodeTransform(gn *gltf.Node) (Vector3, Vector3) {
	var m mgl64.Mat4
	for i := range gn.Matrix {
		m[i] = float64(gn.Matrix[i])
	}
	if m != (mgl64.Mat4{}) && m != mgl64.Ident4() {
		// glTF matrices are column-major like mathgl's.
		t := m.Col(3).Vec3()
		s := NewVector3(m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len())
		return vecFromMgl(t), s
	}

	pos := NewVector3(float64(gn.Translation[0]), float64(gn.Translation[1]), float64(gn.Translation[2]))
	scale := NewVector3(float64(gn.Scale[0]), float64(gn.Scale[1]), float64(gn.Scale[2]))
	if scale.IsZero() {
		scale = NewVector3(1, 1, 1)
	}
	return pos, scale
}
