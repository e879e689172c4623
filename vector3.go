package village3d

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Vector3 is a point or direction in scene space.
type Vector3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func NewVector3(x, y, z float64) Vector3 {
	return Vector3{X: x, Y: y, Z: z}
}

func vecFromMgl(v mgl64.Vec3) Vector3 {
	return Vector3{X: v[0], Y: v[1], Z: v[2]}
}

// Vec returns the mathgl representation of v.
func (v Vector3) Vec() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func (v Vector3) Add(o Vector3) Vector3 {
	return vecFromMgl(v.Vec().Add(o.Vec()))
}

func (v Vector3) Sub(o Vector3) Vector3 {
	return vecFromMgl(v.Vec().Sub(o.Vec()))
}

func (v Vector3) Scale(s float64) Vector3 {
	return vecFromMgl(v.Vec().Mul(s))
}

// Lerp returns v + t*(o - v).
func (v Vector3) Lerp(o Vector3, t float64) Vector3 {
	return v.Add(o.Sub(v).Scale(t))
}

func (v Vector3) DistanceTo(o Vector3) float64 {
	return o.Sub(v).Vec().Len()
}

func (v Vector3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// ApproxEqual compares component-wise with the given tolerance.
func (v Vector3) ApproxEqual(o Vector3, epsilon float64) bool {
	return v.Vec().ApproxEqualThreshold(o.Vec(), epsilon)
}

func (v Vector3) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}
