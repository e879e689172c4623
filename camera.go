package village3d

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera is a perspective camera. Position is mutated in place by the position
// tween; the view matrix is refreshed by LookAt.
type Camera struct {
	Position Vector3
	Up       Vector3
	FOV      float64 // vertical, degrees
	Aspect   float64
	Near     float64
	Far      float64

	target     Vector3
	viewMatrix mgl64.Mat4
}

func NewCamera(xp, yp, zp float64) *Camera {
	c := &Camera{
		Position: NewVector3(xp, yp, zp),
		Up:       NewVector3(0, 1, 0),
		FOV:      75,
		Aspect:   640.0 / 480.0,
		Near:     0.1,
		Far:      1000,
	}
	c.LookAt(Vector3{})
	return c
}

func (c *Camera) SetCameraPosition(x, y, z float64) {
	c.Position = NewVector3(x, y, z)
}

func (c *Camera) GetPosition() Vector3 {
	return c.Position
}

// LookAt points the camera at target from its current position.
func (c *Camera) LookAt(target Vector3) {
	c.target = target
	up := c.Up
	if up.IsZero() {
		up = NewVector3(0, 1, 0)
	}
	// LookAtV is undefined when the eye sits on the target.
	if c.Position.DistanceTo(target) < 1e-9 {
		target = c.Position.Add(NewVector3(0, 0, -1))
	}
	c.viewMatrix = mgl64.LookAtV(c.Position.Vec(), target.Vec(), up.Vec())
}

// Target is the point passed to the last LookAt call.
func (c *Camera) Target() Vector3 {
	return c.target
}

func (c *Camera) GetMatrix() mgl64.Mat4 {
	return c.viewMatrix
}

func (c *Camera) ProjectionMatrix() mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
}

func (c *Camera) ViewProjection() mgl64.Mat4 {
	return c.ProjectionMatrix().Mul4(c.viewMatrix)
}

// Project maps a world-space point to screen pixels with the origin at the top
// left. ok is false when the point is behind the camera or outside the depth
// range.
func (c *Camera) Project(p Vector3, width, height int) (x, y float64, ok bool) {
	clip := c.ViewProjection().Mul4x1(p.Vec().Vec4(1))
	if clip[3] <= 0 {
		return 0, 0, false
	}
	ndcZ := clip[2] / clip[3]
	if ndcZ < -1 || ndcZ > 1 {
		return 0, 0, false
	}
	win := mgl64.Project(p.Vec(), c.viewMatrix, c.ProjectionMatrix(), 0, 0, width, height)
	return win[0], float64(height) - win[1], true
}

// Distance is the distance from the camera to its current target.
func (c *Camera) Distance() float64 {
	return c.Position.DistanceTo(c.target)
}

func degreesToRadians(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}
