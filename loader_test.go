package village3d

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func childNames(n *Node) []string {
	var names []string
	for _, c := range n.Children {
		names = append(names, c.Name)
	}
	return names
}

func TestLoadLayout(t *testing.T) {
	root, err := LoadLayout(strings.NewReader(`
name: demo
nodes:
  - name: POI_01_ANCHOR
    position: {x: 1, y: 2, z: 3}
  - name: Tree
    scale: {x: 2, y: 2, z: 2}
    children:
      - name: POI_02_ANCHOR
`))
	require.NoError(t, err)

	assert.Equal(t, "demo", root.Name)
	assert.Equal(t, []string{"POI_01_ANCHOR", "Tree"}, childNames(root))
	assert.Equal(t, NewVector3(1, 2, 3), root.Children[0].Position)
	assert.Equal(t, NewVector3(1, 1, 1), root.Children[0].Scale)
	assert.Equal(t, NewVector3(2, 2, 2), root.Children[1].Scale)
	assert.Equal(t, []string{"POI_02_ANCHOR"}, childNames(root.Children[1]))
}

func TestLoadLayoutErrors(t *testing.T) {
	_, err := LoadLayout(strings.NewReader("nodes:\n  - name: a\n    rotation: 3\n"))
	assert.ErrorContains(t, err, "unmarshal layout")

	root, err := LoadLayout(strings.NewReader(""))
	require.NoError(t, err, "an empty layout is an empty asset")
	assert.Empty(t, root.Children)
}

func TestYAMLLoader(t *testing.T) {
	root, err := (&YAMLLoader{}).Load(context.Background(), filepath.Join("testdata", "village.yaml"), "")
	require.NoError(t, err)

	idx := BuildSpatialIndex(root, MarkerAnchor, MarkerCamPos, MarkerGlow)
	assert.Equal(t, 7, idx.Len())

	_, err = (&YAMLLoader{}).Load(context.Background(), filepath.Join("testdata", "missing.yaml"), "")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestGLTFLoaderReadsHierarchy(t *testing.T) {
	root, err := (&GLTFLoader{}).Load(context.Background(), filepath.Join("testdata", "village.gltf"), "models/draco/")
	require.NoError(t, err)

	assert.Equal(t, "Village", root.Name)
	assert.Equal(t, []string{"House_01", "POI_01_ANCHOR", "POI_01_CAMPOS", "POI_02_ANCHOR"}, childNames(root))
	assert.Equal(t, []string{"Chimney"}, childNames(root.Children[0]))

	assertVecInDelta(t, NewVector3(100, 10, -50), root.Children[1].Position)
	assertVecInDelta(t, NewVector3(1, 1, 1), root.Children[1].Scale)
	assertVecInDelta(t, NewVector3(2, 2, 2), root.Children[2].Scale)

	// matrix transform
	assertVecInDelta(t, NewVector3(5, 6, 7), root.Children[3].Position)
	assertVecInDelta(t, NewVector3(2, 2, 2), root.Children[3].Scale)
}

func TestGLTFLoaderBinary(t *testing.T) {
	doc := gltf.NewDocument()
	doc.Scenes[0].Name = "Binary"
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: "POI_07_ANCHOR"}, &gltf.Node{Name: "POI_07_CAMPOS"})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0, 1)

	path := filepath.Join(t.TempDir(), "village.glb")
	require.NoError(t, gltf.SaveBinary(doc, path))

	root, err := NewExtensionLoader().Load(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, "Binary", root.Name)
	assert.Equal(t, []string{"POI_07_ANCHOR", "POI_07_CAMPOS"}, childNames(root))
}

func TestNodesFromDocument(t *testing.T) {
	t.Run("no scenes uses parentless nodes", func(t *testing.T) {
		doc := &gltf.Document{Nodes: []*gltf.Node{
			{Name: "a", Children: []int{2}},
			{Name: "b"},
			{Name: "c"},
		}}
		root, err := nodesFromDocument(doc, "fallback")
		require.NoError(t, err)
		assert.Equal(t, "fallback", root.Name)
		assert.Equal(t, []string{"a", "b"}, childNames(root))
	})

	t.Run("node reused", func(t *testing.T) {
		doc := &gltf.Document{
			Scenes: []*gltf.Scene{{Nodes: []int{0, 1}}},
			Nodes: []*gltf.Node{
				{Name: "a", Children: []int{1}},
				{Name: "b"},
			},
		}
		_, err := nodesFromDocument(doc, "x")
		assert.ErrorContains(t, err, "more than once")
	})

	t.Run("scene out of range", func(t *testing.T) {
		doc := &gltf.Document{Scene: gltf.Index(4), Scenes: []*gltf.Scene{{}}}
		_, err := nodesFromDocument(doc, "x")
		assert.ErrorContains(t, err, "out of range")
	})

	t.Run("node out of range", func(t *testing.T) {
		doc := &gltf.Document{Scenes: []*gltf.Scene{{Nodes: []int{3}}}}
		_, err := nodesFromDocument(doc, "x")
		assert.ErrorContains(t, err, "node index 3")
	})
}

func TestExtensionLoader(t *testing.T) {
	el := NewExtensionLoader()

	_, err := el.LoaderForPath("village.GLB")
	assert.NoError(t, err)

	_, err = el.Load(context.Background(), "village.fbx", "")
	assert.ErrorIs(t, err, ErrUnsupportedAsset)

	called := false
	el.Register(".fbx", AssetLoaderFunc(func(ctx context.Context, path, auxPath string) (*Node, error) {
		called = true
		return NewNode(path, Vector3{}), nil
	}))
	root, err := el.Load(context.Background(), "village.fbx", "")
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "village.fbx", root.Name)
}

func TestLoadAsync(t *testing.T) {
	t.Run("delivers one result then closes", func(t *testing.T) {
		ch := LoadAsync(context.Background(), &YAMLLoader{}, filepath.Join("testdata", "village.yaml"), "")

		var res LoadResult
		select {
		case res = <-ch:
		case <-time.After(5 * time.Second):
			t.Fatal("load did not finish")
		}
		require.NoError(t, res.Err)
		assert.Equal(t, "village", res.Root.Name)

		_, ok := <-ch
		assert.False(t, ok)
	})

	t.Run("wraps loader errors", func(t *testing.T) {
		boom := errors.New("boom")
		ch := LoadAsync(context.Background(), AssetLoaderFunc(func(context.Context, string, string) (*Node, error) {
			return nil, boom
		}), "broken.glb", "")

		res := <-ch
		assert.ErrorIs(t, res.Err, boom)
		assert.ErrorContains(t, res.Err, "broken.glb")
		assert.Nil(t, res.Root)
	})

	t.Run("nil root without error", func(t *testing.T) {
		res := <-LoadAsync(context.Background(), AssetLoaderFunc(func(context.Context, string, string) (*Node, error) {
			return nil, nil
		}), "empty.glb", "")
		assert.ErrorIs(t, res.Err, ErrEmptyAsset)
		assert.ErrorContains(t, res.Err, "empty.glb")
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res := <-LoadAsync(ctx, NewExtensionLoader(), filepath.Join("testdata", "village.gltf"), "")
		assert.ErrorIs(t, res.Err, context.Canceled)
	})
}

func TestLoadersAgreeOnMarkers(t *testing.T) {
	el := NewExtensionLoader()
	fromYAML, err := el.Load(context.Background(), filepath.Join("testdata", "village.yaml"), "")
	require.NoError(t, err)
	fromGLTF, err := el.Load(context.Background(), filepath.Join("testdata", "village.gltf"), "")
	require.NoError(t, err)

	r := NewResolver(ResolverConfig{Mode: ModeDirect, Scale: 0.03})
	want, err := r.Resolve(1, BuildSpatialIndex(fromYAML, MarkerAnchor, MarkerCamPos))
	require.NoError(t, err)
	got, err := r.Resolve(1, BuildSpatialIndex(fromGLTF, MarkerAnchor, MarkerCamPos))
	require.NoError(t, err)

	assertVecInDelta(t, want.Position, got.Position)
	assertVecInDelta(t, want.LookAt, got.LookAt)
}
