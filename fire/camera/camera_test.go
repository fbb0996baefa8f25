package camera

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedController replays a fixed list of eye positions, one per Tick.
type scriptedController struct {
	eyes  []mgl32.Vec3
	i     int
	ticks int
}

func (s *scriptedController) Tick() {
	s.ticks++
	if s.ticks > 1 && s.i < len(s.eyes)-1 {
		s.i++
	}
}
func (s *scriptedController) Eye() mgl32.Vec3    { return s.eyes[s.i] }
func (s *scriptedController) Center() mgl32.Vec3 { return mgl32.Vec3{} }
func (s *scriptedController) Up() mgl32.Vec3     { return mgl32.Vec3{0, 1, 0} }

// assertNear compares component-wise with an absolute tolerance. mgl32's
// ApproxEqual is relative and fails on float residue next to an exact zero.
func assertNear[V mgl32.Vec3 | mgl32.Mat4](t *testing.T, want, got V, msgAndArgs ...any) {
	t.Helper()
	for i := 0; i < len(want); i++ {
		if !assert.InDelta(t, want[i], got[i], 1e-5, msgAndArgs...) {
			t.Logf("component %d: got %v want %v", i, got, want)
			return
		}
	}
}

func upRow(m mgl32.Mat4) [4]float32 {
	return [4]float32{m.At(1, 0), m.At(1, 1), m.At(1, 2), m.At(1, 3)}
}

func TestLockedUpRowIsExactlyWorldY(t *testing.T) {
	eyes := []mgl32.Vec3{
		{0, 0, 5},
		{3, 4, 0},
		{-1, -7, 2},
		{0.25, 100, -0.5},
		{1e-3, 0, 0},
		{-8, 2, -8},
	}
	for _, eye := range eyes {
		ctrl := &scriptedController{eyes: []mgl32.Vec3{eye}}
		cam := NewLocked(ctrl, eye, mgl32.Vec3{})
		cam.Update()

		assert.Equal(t, [4]float32{0, 1, 0, 0}, upRow(cam.View), "eye %v", eye)
		assert.Zero(t, cam.Position.Y(), "eye %v", eye)
		// Forward row carries no vertical component.
		assert.Zero(t, cam.View.At(2, 1), "eye %v", eye)

		want := mgl32.LookAtV(cam.Position, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
		assertNear(t, want, cam.View, "eye %v", eye)
	}
}

func TestLockedViewStaysFiniteForAnyEye(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	eyes := []mgl32.Vec3{
		{0, 9, 0},
		{float32(math.NaN()), 1, 2},
		{float32(math.Inf(1)), 0, 1},
		{math.MaxFloat32, 0, math.MaxFloat32},
		{-math.MaxFloat32 / 2, 1, 3e19},
	}
	for range 100000 {
		eyes = append(eyes, mgl32.Vec3{
			float32(rng.NormFloat64() * 50),
			float32(rng.NormFloat64() * 50),
			float32(rng.NormFloat64() * 50),
		})
	}

	ctrl := &scriptedController{eyes: eyes}
	cam := NewLocked(ctrl, mgl32.Vec3{0, 0, 5}, mgl32.Vec3{})
	for i := range eyes {
		cam.Update()
		require.Equal(t, [4]float32{0, 1, 0, 0}, upRow(cam.View), "eye %d %v", i, eyes[i])
		for _, v := range cam.View {
			f := float64(v)
			require.False(t, math.IsNaN(f) || math.IsInf(f, 0), "eye %d %v: %v", i, eyes[i], cam.View)
		}
		require.InDelta(t, 5, cam.Position.Len(), 1e-4)
	}
}

func TestLockedScalesHeadingComponentWise(t *testing.T) {
	ctrl := &scriptedController{eyes: []mgl32.Vec3{{3, 9, 4}}}
	cam := NewLocked(ctrl, mgl32.Vec3{0, 0, 5}, mgl32.Vec3{})
	cam.Update()

	assert.InDelta(t, 3, cam.Position.X(), 1e-5)
	assert.InDelta(t, 0, cam.Position.Y(), 0)
	assert.InDelta(t, 4, cam.Position.Z(), 1e-5)
	assert.Equal(t, mgl32.Vec3{}, cam.Target)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, cam.Up)
}

func TestLockedOverheadFallsBackToLastHeading(t *testing.T) {
	ctrl := &scriptedController{eyes: []mgl32.Vec3{
		{0, 5, 0},
		{4, 1, 0},
		{0, -5, 0},
		{1e-8, 3, -1e-8},
		{float32(math.NaN()), 0, 0},
	}}
	cam := NewLocked(ctrl, mgl32.Vec3{0, 5, 0}, mgl32.Vec3{})

	cam.Update()
	assert.Equal(t, mgl32.Vec3{0, 0, 5}, cam.Position, "no valid heading yet: +Z")

	cam.Update()
	assert.Equal(t, mgl32.Vec3{5, 0, 0}, cam.Position)

	for i := 0; i < 3; i++ {
		cam.Update()
		assert.Equal(t, mgl32.Vec3{5, 0, 0}, cam.Position, "step %d", i)
		for _, v := range cam.View {
			require.False(t, math.IsNaN(float64(v)))
		}
		assert.Equal(t, [4]float32{0, 1, 0, 0}, upRow(cam.View))
	}
}

func TestProjectionIsDecoupledFromAspect(t *testing.T) {
	cam := NewLocked(nil, mgl32.Vec3{0, 0, 5}, mgl32.Vec3{})
	before := cam.Projection

	cam.SetAspectRatio(16.0 / 9.0)
	assert.Equal(t, before, cam.Projection, "SetAspectRatio must not recompute")

	cam.UpdateProjectionMatrix()
	first := cam.Projection
	cam.UpdateProjectionMatrix()
	assert.Equal(t, first, cam.Projection)
	assert.NotEqual(t, before, first)

	want := mgl32.Perspective(mgl32.DegToRad(45), 16.0/9.0, 0.1, 1000)
	assert.Equal(t, want, first)
}

func TestViewProjOrder(t *testing.T) {
	cam := NewLocked(nil, mgl32.Vec3{2, 0, 2}, mgl32.Vec3{})
	cam.SetAspectRatio(2)
	cam.UpdateProjectionMatrix()
	assert.Equal(t, cam.Projection.Mul4(cam.View), cam.ViewProj())
}

func TestOrbitControllerStartsAtEye(t *testing.T) {
	c := NewOrbitController(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{})
	eye := c.Eye()
	assertNear(t, mgl32.Vec3{0, 0, 5}, eye)

	c = NewOrbitController(mgl32.Vec3{3, 4, 0}, mgl32.Vec3{})
	eye = c.Eye()
	assertNear(t, mgl32.Vec3{3, 4, 0}, eye)
}

func TestOrbitControllerRotateAndClamp(t *testing.T) {
	c := NewOrbitController(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{})
	c.Damping = 1

	c.Rotate(math.Pi/2, 0)
	c.Tick()
	eye := c.Eye()
	assertNear(t, mgl32.Vec3{5, 0, 0}, eye)

	c.Rotate(0, 10)
	c.Tick()
	assert.InDelta(t, math.Pi/2, c.Pitch(), 1e-6)

	c.Zoom(-100)
	c.Tick()
	assert.InDelta(t, c.MinRadius, c.Eye().Len(), 1e-4)
}

func TestOrbitControllerDampingSettles(t *testing.T) {
	c := NewOrbitController(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{})
	c.Rotate(1, 0)
	c.Tick()
	assert.InDelta(t, 0.35, c.Yaw(), 1e-6)

	for i := 0; i < 100; i++ {
		c.Tick()
	}
	assert.InDelta(t, 1, c.Yaw(), 1e-4)
}

func TestLockedFollowsOrbitDrag(t *testing.T) {
	ctrl := NewOrbitController(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{})
	ctrl.Damping = 1
	cam := NewLocked(ctrl, mgl32.Vec3{0, 0, 5}, mgl32.Vec3{})

	ctrl.Rotate(-math.Pi/2, 0.7)
	cam.Update()

	assert.InDelta(t, -5, cam.Position.X(), 1e-4)
	assert.InDelta(t, 0, cam.Position.Z(), 1e-4)
	assert.Equal(t, [4]float32{0, 1, 0, 0}, upRow(cam.View))
}
