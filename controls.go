package village3d

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// OrbitControls keeps the camera pointed at Target and applies user orbit and
// zoom input as spherical offsets around it. Target is mutated in place by the
// look-at tween.
type OrbitControls struct {
	Target  Vector3
	Enabled bool

	MinDistance float64
	MaxDistance float64
	// MinPolar and MaxPolar bound the angle from the up axis, in radians.
	MinPolar float64
	MaxPolar float64

	camera     *Camera
	dAzimuth   float64
	dPolar     float64
	zoomFactor float64
	pending    bool
}

func NewOrbitControls(camera *Camera) *OrbitControls {
	return &OrbitControls{
		Enabled:     true,
		MinDistance: 0,
		MaxDistance: math.Inf(1),
		MinPolar:    0,
		MaxPolar:    math.Pi,
		camera:      camera,
		zoomFactor:  1,
	}
}

func (oc *OrbitControls) Camera() *Camera {
	return oc.camera
}

// Rotate queues an orbit by the given angles in radians. It takes effect on the
// next Update.
func (oc *OrbitControls) Rotate(dAzimuth, dPolar float64) {
	if !oc.Enabled {
		return
	}
	oc.dAzimuth += dAzimuth
	oc.dPolar += dPolar
	oc.pending = true
}

// Zoom queues a distance multiplier; values below 1 move closer.
func (oc *OrbitControls) Zoom(factor float64) {
	if !oc.Enabled || factor <= 0 {
		return
	}
	oc.zoomFactor *= factor
	oc.pending = true
}

// Update applies queued input, clamps the camera distance and polar angle, and
// points the camera at Target. Without queued input the position is left alone,
// so a finished transition stays on its target even inside the limits.
func (oc *OrbitControls) Update() {
	if !oc.pending {
		oc.camera.LookAt(oc.Target)
		return
	}
	offset := oc.camera.Position.Sub(oc.Target)
	// mathgl's spherical helpers are z-up; swap y and z for a y-up world.
	r, polar, azimuth := toSpherical(mgl64.Vec3{offset.X, offset.Z, offset.Y})

	if r > 0 {
		newAzimuth := azimuth + oc.dAzimuth
		newPolar := clampFloat(polar+oc.dPolar, math.Max(oc.MinPolar, 1e-6), math.Min(oc.MaxPolar, math.Pi-1e-6))
		newR := clampFloat(r*oc.zoomFactor, oc.MinDistance, oc.MaxDistance)

		if newAzimuth != azimuth || newPolar != polar || newR != r {
			v := mgl64.SphericalToCartesian(newR, newPolar, newAzimuth)
			oc.camera.Position = oc.Target.Add(NewVector3(v[0], v[2], v[1]))
		}
	}

	oc.dAzimuth, oc.dPolar, oc.zoomFactor, oc.pending = 0, 0, 1, false
	oc.camera.LookAt(oc.Target)
}

// SetPolarLimitsDegrees is a convenience for configuring MinPolar and MaxPolar.
func (oc *OrbitControls) SetPolarLimitsDegrees(minDeg, maxDeg float64) {
	oc.MinPolar = degreesToRadians(minDeg)
	oc.MaxPolar = degreesToRadians(maxDeg)
}

// toSpherical is the inverse of mgl64.SphericalToCartesian. It uses Atan2 so the
// azimuth keeps its quadrant, which mgl64.CartesianToSpherical does not.
func toSpherical(v mgl64.Vec3) (r, polar, azimuth float64) {
	r = v.Len()
	if r == 0 {
		return 0, 0, 0
	}
	return r, math.Acos(clampFloat(v[2]/r, -1, 1)), math.Atan2(v[1], v[0])
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
