package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// OrbitController provides orbit/zoom interactions around a center point.
//
// It does not depend on any input system: callers feed drag and wheel deltas
// through Rotate and Zoom, and Tick eases the pending motion in.
type OrbitController struct {
	center mgl32.Vec3

	yaw    float32
	pitch  float32
	radius float32

	MinRadius float32
	MaxRadius float32

	// Damping is the fraction of pending motion applied per Tick. Values
	// outside (0,1) apply everything at once.
	Damping float32

	pendingYaw   float32
	pendingPitch float32
	pendingZoom  float32
}

const settleEpsilon = 1e-5

// NewOrbitController places the controller so that Eye() == eye.
func NewOrbitController(eye, center mgl32.Vec3) *OrbitController {
	c := &OrbitController{
		center:    center,
		MinRadius: 1,
		MaxRadius: 50,
		Damping:   0.35,
	}
	off := eye.Sub(center)
	c.radius = off.Len()
	if c.radius == 0 {
		c.radius = 5
		return c
	}
	c.yaw = float32(math.Atan2(float64(off.X()), float64(off.Z())))
	c.pitch = float32(math.Asin(float64(clamp(off.Y()/c.radius, -1, 1))))
	return c
}

// Rotate queues a yaw/pitch change in radians.
func (c *OrbitController) Rotate(deltaYaw, deltaPitch float32) {
	c.pendingYaw += deltaYaw
	c.pendingPitch += deltaPitch
}

// Zoom queues a radius change.
func (c *OrbitController) Zoom(delta float32) {
	c.pendingZoom += delta
}

// Tick integrates a share of the pending motion.
func (c *OrbitController) Tick() {
	k := c.Damping
	if k <= 0 || k >= 1 {
		k = 1
	}

	c.yaw += c.pendingYaw * k
	c.pitch += c.pendingPitch * k
	c.radius += c.pendingZoom * k
	c.pendingYaw = settle(c.pendingYaw * (1 - k))
	c.pendingPitch = settle(c.pendingPitch * (1 - k))
	c.pendingZoom = settle(c.pendingZoom * (1 - k))

	c.yaw = float32(math.Remainder(float64(c.yaw), 2*math.Pi))
	c.pitch = clamp(c.pitch, -math.Pi/2, math.Pi/2)
	if c.MinRadius != 0 && c.radius < c.MinRadius {
		c.radius = c.MinRadius
	}
	if c.MaxRadius != 0 && c.radius > c.MaxRadius {
		c.radius = c.MaxRadius
	}
}

// Eye returns the current eye position.
func (c *OrbitController) Eye() mgl32.Vec3 {
	sy, cy := math.Sincos(float64(c.yaw))
	sp, cp := math.Sincos(float64(c.pitch))
	r := float64(c.radius)
	return c.center.Add(mgl32.Vec3{
		float32(r * sy * cp),
		float32(r * sp),
		float32(r * cy * cp),
	})
}

func (c *OrbitController) Center() mgl32.Vec3 { return c.center }
func (c *OrbitController) Up() mgl32.Vec3     { return mgl32.Vec3{0, 1, 0} }

// Yaw and Pitch report the integrated orientation in radians.
func (c *OrbitController) Yaw() float32   { return c.yaw }
func (c *OrbitController) Pitch() float32 { return c.pitch }

func settle(v float32) float32 {
	if v > -settleEpsilon && v < settleEpsilon {
		return 0
	}
	return v
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
