// Package frame drives one visualization frame: camera, time, audio,
// parameters, then the draw call, always in that order.
package frame

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"blaze/fire/geometry"
	"blaze/fire/params"
	"blaze/fire/spectrum"
	"blaze/fire/uniform"
)

// ErrTargetNotReady is returned when a frame is attempted before the
// render target can accept uniforms. The frame is skipped.
var ErrTargetNotReady = errors.New("frame: render target not ready")

// Camera is the view the loop advances each frame.
type Camera interface {
	Update()
	ViewProj() mgl32.Mat4
	Eye() mgl32.Vec3
}

// Target is the render target: a uniform sink that can draw meshes.
type Target interface {
	uniform.Sink
	Ready() error
	Draw(meshes []*geometry.Mesh) error
}

// Meshes supplies the active geometry set.
type Meshes interface {
	Meshes() []*geometry.Mesh
}

// Controls supplies the current parameter snapshot.
type Controls interface {
	Snapshot() params.Snapshot
}

// Syncer pushes changed parameters.
type Syncer interface {
	SyncFrame(cur params.Snapshot) params.FieldSet
}

// Observer receives per-frame results. Implementations must not block.
type Observer interface {
	FrameDone(elapsed time.Duration, changed params.FieldSet, low, high float64)
	FrameSkipped(err error)
}

// Loop owns the time counter and sequences one frame per Tick.
type Loop struct {
	Camera   Camera
	Smoother *spectrum.Smoother
	Audio    spectrum.Source
	Sync     Syncer
	Controls Controls
	Geometry Meshes
	Target   Target
	Observer Observer

	// Model is the object transform; zero means identity.
	Model mgl32.Mat4

	time int64
	low  float64
	high float64
}

// Time returns the frame counter pushed as u_TimeVs/u_TimeFs.
func (l *Loop) Time() int64 { return l.time }

// Levels returns the smoothed audio values of the last frame.
func (l *Loop) Levels() (low, high float64) { return l.low, l.high }

// Tick runs one frame. When the target is not ready nothing advances and
// an error wrapping ErrTargetNotReady is returned.
func (l *Loop) Tick() error {
	if err := l.Target.Ready(); err != nil {
		err = fmt.Errorf("%w: %w", ErrTargetNotReady, err)
		if l.Observer != nil {
			l.Observer.FrameSkipped(err)
		}
		return err
	}
	start := time.Now()

	l.Camera.Update()

	l.time++

	l.low, l.high = l.Smoother.Sample(l.Audio)
	l.Target.SetFloat(uniform.AudioLowFreq, float32(l.low))
	l.Target.SetFloat(uniform.AudioHighFreq, float32(l.high))

	changed := l.Sync.SyncFrame(l.Controls.Snapshot())

	err := l.render()

	if l.Observer != nil {
		l.Observer.FrameDone(time.Since(start), changed, l.low, l.high)
	}
	return err
}

func (l *Loop) render() error {
	model := l.Model
	if model == (mgl32.Mat4{}) {
		model = mgl32.Ident4()
	}

	l.Target.SetMat4(uniform.Model, model)
	l.Target.SetMat4(uniform.ModelInvTr, model.Inv().Transpose())
	l.Target.SetMat4(uniform.ViewProj, l.Camera.ViewProj())
	l.Target.SetInt(uniform.TimeVs, l.time)
	l.Target.SetInt(uniform.TimeFs, l.time)
	l.Target.SetVec3(uniform.CameraPos, l.Camera.Eye())

	if err := l.Target.Draw(l.Geometry.Meshes()); err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	return nil
}
