package village3d

import "strings"

// Marker is a substring embedded in authored node names that tags the node as a
// point of interest component.
type Marker string

const (
	MarkerAnchor Marker = "ANCHOR" // look-at point
	MarkerCamPos Marker = "CAMPOS" // explicit camera position
	MarkerGlow   Marker = "GLOW"   // highlight location
)

// DefaultMarkers are the markers indexed when none are given.
var DefaultMarkers = []Marker{MarkerAnchor}

// NamedPosition is the coordinate snapshot of a labeled node, in asset units.
type NamedPosition struct {
	Label    string
	Position Vector3
}

// SpatialIndex maps free-text labels to coordinates. Entries keep scene
// traversal order and labels may repeat.
type SpatialIndex struct {
	entries []NamedPosition
}

// BuildSpatialIndex scans the immediate children of an asset root and records
// every child whose name contains one of the markers. Positions are captured as
// local coordinates without any scaling.
func BuildSpatialIndex(root *Node, markers ...Marker) *SpatialIndex {
	if len(markers) == 0 {
		markers = DefaultMarkers
	}
	idx := &SpatialIndex{}
	if root == nil {
		return idx
	}
	for _, child := range root.Children {
		if child == nil || !hasAnyMarker(child.Name, markers) {
			continue
		}
		idx.entries = append(idx.entries, NamedPosition{
			Label:    child.Name,
			Position: child.Position,
		})
	}
	return idx
}

func hasAnyMarker(name string, markers []Marker) bool {
	for _, m := range markers {
		if strings.Contains(name, string(m)) {
			return true
		}
	}
	return false
}

// Query returns, in index order, every entry whose label contains all of the
// given substrings. A nil index behaves as an empty one.
func (idx *SpatialIndex) Query(substrings ...string) []NamedPosition {
	if idx == nil {
		return nil
	}
	var out []NamedPosition
	for _, e := range idx.entries {
		if containsAll(e.Label, substrings) {
			out = append(out, e)
		}
	}
	return out
}

// Last returns the last entry matching all substrings. Later entries win over
// earlier ones.
func (idx *SpatialIndex) Last(substrings ...string) (NamedPosition, bool) {
	if idx == nil {
		return NamedPosition{}, false
	}
	for i := len(idx.entries) - 1; i >= 0; i-- {
		if containsAll(idx.entries[i].Label, substrings) {
			return idx.entries[i], true
		}
	}
	return NamedPosition{}, false
}

func containsAll(label string, substrings []string) bool {
	for _, s := range substrings {
		if !strings.Contains(label, s) {
			return false
		}
	}
	return true
}

func (idx *SpatialIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// Entries returns a copy of all entries.
func (idx *SpatialIndex) Entries() []NamedPosition {
	if idx == nil {
		return nil
	}
	out := make([]NamedPosition, len(idx.entries))
	copy(out, idx.entries)
	return out
}
