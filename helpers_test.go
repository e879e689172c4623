package village3d

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const float64EqualityThreshold = 1e-9

func assertVecInDelta(t *testing.T, want, got Vector3, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, float64EqualityThreshold, msgAndArgs...)
	assert.InDelta(t, want.Y, got.Y, float64EqualityThreshold, msgAndArgs...)
	assert.InDelta(t, want.Z, got.Z, float64EqualityThreshold, msgAndArgs...)
}

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

// villageRoot mimics a loaded asset: flat marker children plus scenery.
func villageRoot() *Node {
	root := NewNode("village", Vector3{})
	root.AddChild(NewNode("House_01", NewVector3(5, 0, 5)))
	root.AddChild(NewNode("POI_01_ANCHOR", NewVector3(100, 10, -50)))
	root.AddChild(NewNode("POI_01_CAMPOS", NewVector3(150, 60, 0)))
	root.AddChild(NewNode("POI_03_ANCHOR", NewVector3(-30, 0, 20)))
	root.AddChild(NewNode("POI_03_CAMPOS", NewVector3(-60, 40, 80)))
	root.AddChild(NewNode("POI_03_GLOW", NewVector3(-30, 0, 21)))
	return root
}
