package village3d

// Node is a named spatial node in the scene graph. Position and Scale are local
// to the parent.
type Node struct {
	Name     string
	Position Vector3
	Scale    Vector3
	Children []*Node
}

func NewNode(name string, position Vector3) *Node {
	return &Node{
		Name:     name,
		Position: position,
		Scale:    NewVector3(1, 1, 1),
	}
}

func (n *Node) AddChild(child *Node) {
	n.Children = append(n.Children, child)
}

// SetUniformScale sets the same scale factor on all three axes.
func (n *Node) SetUniformScale(s float64) {
	n.Scale = NewVector3(s, s, s)
}

// Scene is the root of the live scene graph. Loaded assets are merged into it as
// direct children.
type Scene struct {
	root *Node
}

func NewScene() *Scene {
	return &Scene{root: NewNode("scene", Vector3{})}
}

func (s *Scene) Root() *Node {
	return s.root
}

// Add merges an asset hierarchy into the scene and returns the index it was
// stored at.
func (s *Scene) Add(n *Node) int {
	s.root.AddChild(n)
	return len(s.root.Children) - 1
}

// Replace swaps the child at index i, or adds n when there is no such child. It
// is used when an asset is reloaded.
func (s *Scene) Replace(i int, n *Node) int {
	if i < 0 || i >= len(s.root.Children) {
		return s.Add(n)
	}
	s.root.Children[i] = n
	return i
}

func (s *Scene) Child(i int) *Node {
	if i < 0 || i >= len(s.root.Children) {
		return nil
	}
	return s.root.Children[i]
}
