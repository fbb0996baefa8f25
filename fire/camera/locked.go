// Package camera derives the fire's view and projection matrices from an
// externally driven orbit controller, keeping the view locked to yaw.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Controller is an orbit/eye-target controller owned outside the camera.
// Tick advances its internal state; the vectors are read once per frame.
type Controller interface {
	Tick()
	Eye() mgl32.Vec3
	Center() mgl32.Vec3
	Up() mgl32.Vec3
}

const (
	DefaultNear float32 = 0.1
	DefaultFar  float32 = 1000

	// horizontalEpsilon is the smallest horizontal eye length treated as a
	// direction. Below it the last valid heading is kept.
	horizontalEpsilon = 1e-6
)

// DefaultFovY is a 45 degree vertical field of view.
var DefaultFovY = mgl32.DegToRad(45)

// OrbitScale is multiplied component-wise into the unit horizontal heading.
var OrbitScale = mgl32.Vec3{5, 5, 5}

var worldUp = mgl32.Vec3{0, 1, 0}

// Locked is a camera that orbits freely in azimuth but never pitches or
// rolls: its view matrix always has world +Y as the up vector.
type Locked struct {
	controls Controller

	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3

	View       mgl32.Mat4
	Projection mgl32.Mat4

	FovY   float32
	Aspect float32
	Near   float32
	Far    float32

	// heading is the last valid unit horizontal direction of the eye.
	heading mgl32.Vec3
}

// NewLocked builds the camera around ctrl. eye and target describe the
// startup view; the controller is expected to have been placed there.
func NewLocked(ctrl Controller, eye, target mgl32.Vec3) *Locked {
	c := &Locked{
		controls: ctrl,
		Target:   target,
		Up:       worldUp,
		FovY:     DefaultFovY,
		Aspect:   1,
		Near:     DefaultNear,
		Far:      DefaultFar,
		heading:  mgl32.Vec3{0, 0, 1},
	}
	c.lock(eye)
	c.UpdateProjectionMatrix()
	return c
}

// Update ticks the controller and recomputes the view matrix from its eye,
// discarding the vertical component.
func (c *Locked) Update() {
	if c.controls == nil {
		return
	}
	c.controls.Tick()
	c.lock(c.controls.Eye())
}

// SetAspectRatio stores a new aspect ratio. The projection matrix is not
// touched until UpdateProjectionMatrix.
func (c *Locked) SetAspectRatio(aspect float32) {
	c.Aspect = aspect
}

// UpdateProjectionMatrix recomputes the perspective projection.
func (c *Locked) UpdateProjectionMatrix() {
	aspect := c.Aspect
	if aspect == 0 {
		aspect = 1
	}
	c.Projection = mgl32.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// ViewProj returns Projection * View.
func (c *Locked) ViewProj() mgl32.Mat4 {
	return c.Projection.Mul4(c.View)
}

// Eye returns the locked eye position.
func (c *Locked) Eye() mgl32.Vec3 { return c.Position }

// Heading returns the unit horizontal direction the eye sits on.
func (c *Locked) Heading() mgl32.Vec3 { return c.heading }

func (c *Locked) lock(eye mgl32.Vec3) {
	h := mgl32.Vec3{eye.X(), 0, eye.Z()}
	l := h.Len()
	if l >= horizontalEpsilon && !math.IsInf(float64(l), 0) {
		c.heading = h.Mul(1 / l)
	}

	c.Position = mgl32.Vec3{
		c.heading.X() * OrbitScale.X(),
		c.heading.Y() * OrbitScale.Y(),
		c.heading.Z() * OrbitScale.Z(),
	}
	c.Target = mgl32.Vec3{}
	c.Up = worldUp
	c.View = lookAtYaw(c.Position, c.heading)
}

// lookAtYaw is a look-at toward the origin for an eye on the horizontal
// plane. The camera basis is built directly so the up row is exactly +Y.
func lookAtYaw(eye, heading mgl32.Vec3) mgl32.Mat4 {
	f := heading.Mul(-1)
	s := mgl32.Vec3{-f.Z(), 0, f.X()}
	u := worldUp

	// Column-major.
	return mgl32.Mat4{
		s.X(), u.X(), -f.X(), 0,
		s.Y(), u.Y(), -f.Y(), 0,
		s.Z(), u.Z(), -f.Z(), 0,
		-s.Dot(eye), -u.Dot(eye), f.Dot(eye), 1,
	}
}
