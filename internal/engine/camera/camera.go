// Package camera provides the orbit camera used by the mesh viewer.
package camera

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/progmesh/pkg/math"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	Center mgl32.Vec3

	// Spherical coordinates
	Distance float32
	Pitch    float32 // radians, positive looks down
	Yaw      float32 // radians

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32

	// Projection
	FOV  float32 // degrees
	Near float32
	Far  float32
}

// NewOrbitCamera creates a new orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        3.0,
		Pitch:           0.4,
		MinDistance:     0.01,
		MaxDistance:     1000.0,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		FOV:             45,
		Near:            0.01,
		Far:             100,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() mgl32.Vec3 {
	cp := float32(gomath.Cos(float64(c.Pitch)))
	offset := mgl32.Vec3{
		cp * float32(gomath.Sin(float64(c.Yaw))),
		float32(gomath.Sin(float64(c.Pitch))),
		cp * float32(gomath.Cos(float64(c.Yaw))),
	}
	return c.Center.Add(offset.Mul(c.Distance))
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Center, mgl32.Vec3{0, 1, 0})
}

// ProjectionMatrix returns a perspective projection for the given aspect ratio.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, c.Near, c.Far)
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch = mgl32.Clamp(c.Pitch+deltaY*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance = mgl32.Clamp(c.Distance-delta*c.Distance*c.ZoomSensitivity, c.MinDistance, c.MaxDistance)
}

// FitToBounds centers the camera on a bounding box and backs off until the
// whole box fits in the vertical field of view. Near and far planes follow
// the box size.
func (c *OrbitCamera) FitToBounds(lo, hi math.Vec3) {
	center := lo.Add(hi).Scale(0.5)
	c.Center = mgl32.Vec3{center.X, center.Y, center.Z}

	radius := hi.Sub(lo).Length() / 2
	if radius <= 0 {
		radius = 1
	}

	half := mgl32.DegToRad(c.FOV) / 2
	c.Distance = radius / float32(gomath.Sin(float64(half)))
	c.MinDistance = radius * 0.05
	c.MaxDistance = c.Distance * 20
	c.Near = radius * 0.01
	c.Far = c.MaxDistance + radius*2

	c.Pitch = 0.4
	c.Yaw = 0
}
