package village3d

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LayoutSpec is a hand-authored marker layout, used in place of a glTF asset
// when prototyping point of interest placement.
type LayoutSpec struct {
	Name  string     `yaml:"name"`
	Nodes []NodeSpec `yaml:"nodes"`
}

type NodeSpec struct {
	Name     string     `yaml:"name"`
	Position Vector3    `yaml:"position"`
	Scale    *Vector3   `yaml:"scale"`
	Children []NodeSpec `yaml:"children"`
}

// YAMLLoader reads LayoutSpec files. auxPath is ignored.
type YAMLLoader struct{}

func (l *YAMLLoader) Load(ctx context.Context, path, auxPath string) (*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open layout file %s: %w", path, err)
	}
	defer f.Close()

	root, err := LoadLayout(f)
	if err != nil {
		return nil, fmt.Errorf("error parsing layout file %s: %w", path, err)
	}
	return root, nil
}

// LoadLayout decodes a LayoutSpec from r and converts it into a node tree.
func LoadLayout(r io.Reader) (*Node, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var spec LayoutSpec
	if err := dec.Decode(&spec); err != nil && err != io.EOF {
		return nil, fmt.Errorf("unmarshal layout: %w", err)
	}
	root := NewNode(spec.Name, Vector3{})
	for _, ns := range spec.Nodes {
		root.AddChild(ns.build())
	}
	return root, nil
}

func (ns NodeSpec) build() *Node {
	n := NewNode(ns.Name, ns.Position)
	if ns.Scale != nil {
		n.Scale = *ns.Scale
	}
	for _, c := range ns.Children {
		n.AddChild(c.build())
	}
	return n
}
