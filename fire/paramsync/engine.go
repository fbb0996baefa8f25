// Package paramsync pushes user parameters to the shader only when they
// change. The engine owns the snapshot of what was last pushed and compares
// each frame's snapshot against it field by field.
package paramsync

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"blaze/fire/params"
	"blaze/fire/uniform"
)

// Geometry is the mesh collaborator rebuilt on tessellation changes.
type Geometry interface {
	Regenerate(level int)
	Level() int
}

// colorBinding maps a color field to its uniform and fixed alpha.
type colorBinding struct {
	field params.Field
	name  uniform.Name
	alpha float32
}

var colorBindings = [...]colorBinding{
	{params.SmokeInner, uniform.SmokeInnerColor, 0.5},
	{params.SmokeMiddle, uniform.SmokeMiddleColor, 0.2},
	{params.SmokeOuter, uniform.SmokeOuterColor, 0.8},
	{params.FireInner, uniform.FireInnerColor, 0.8},
	{params.FireMiddle, uniform.FireMiddleColor, 0.4},
	{params.FireOuter, uniform.FireOuterColor, 0.1},
}

// ColorAlpha returns the alpha baked into the uniform for a color field.
func ColorAlpha(f params.Field) (float32, bool) {
	for _, b := range colorBindings {
		if b.field == f {
			return b.alpha, true
		}
	}
	return 0, false
}

// Engine diffs parameter snapshots against the last pushed values.
type Engine struct {
	sink     uniform.Sink
	geometry Geometry
	logger   *zap.Logger

	prev   params.Snapshot
	primed bool

	// OnRegenerate, when set, is called after each mesh rebuild.
	OnRegenerate func(level int)
}

// New returns an engine that has pushed nothing yet. The first SyncFrame
// pushes every uniform-backed field; tessellation is considered in sync
// with the geometry's current level.
func New(sink uniform.Sink, geometry Geometry, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		sink:     sink,
		geometry: geometry,
		logger:   logger.Named("paramsync"),
	}
	if geometry != nil {
		e.prev.Tessellation = geometry.Level()
	}
	return e
}

// Previous returns the values last pushed.
func (e *Engine) Previous() params.Snapshot { return e.prev }

// SyncFrame pushes every field of cur that differs from the last pushed
// value and returns the set of fields it synced.
func (e *Engine) SyncFrame(cur params.Snapshot) params.FieldSet {
	var changed params.FieldSet

	for _, b := range colorBindings {
		want := *cur.Color(b.field)
		have := e.prev.Color(b.field)
		if e.primed && want == *have {
			continue
		}
		e.sink.SetVec4(b.name, ColorUniform(want, b.alpha))
		*have = want
		changed = changed.With(b.field)
	}

	if !e.primed || cur.BurnSpeed != e.prev.BurnSpeed {
		e.sink.SetFloat(uniform.BurnSpeed, float32(cur.BurnSpeed))
		e.prev.BurnSpeed = cur.BurnSpeed
		changed = changed.With(params.BurnSpeed)
	}

	if !e.primed || cur.FireDensity != e.prev.FireDensity {
		e.sink.SetFloat(uniform.FireDensity, float32(cur.FireDensity))
		e.prev.FireDensity = cur.FireDensity
		changed = changed.With(params.FireDensity)
	}

	if cur.Tessellation != e.prev.Tessellation {
		e.regenerate(cur.Tessellation)
		e.prev.Tessellation = cur.Tessellation
		changed = changed.With(params.Tessellation)
	}

	if !e.primed || cur.AudioPlaying != e.prev.AudioPlaying {
		e.sink.SetInt(uniform.IsMusicPlaying, boolInt(cur.AudioPlaying))
		e.prev.AudioPlaying = cur.AudioPlaying
		changed = changed.With(params.AudioPlaying)
	}

	e.primed = true
	if !changed.Empty() {
		e.logger.Debug("parameters synced", zap.Stringer("fields", changed))
	}
	return changed
}

// Regenerate rebuilds the mesh at the last synced tessellation level.
func (e *Engine) Regenerate() {
	e.regenerate(e.prev.Tessellation)
}

func (e *Engine) regenerate(level int) {
	if e.geometry == nil {
		return
	}
	e.geometry.Regenerate(level)
	e.logger.Info("geometry regenerated", zap.Int("level", level))
	if e.OnRegenerate != nil {
		e.OnRegenerate(level)
	}
}

// ColorUniform normalizes 0..255 channels and appends alpha.
func ColorUniform(c params.RGB, alpha float32) mgl32.Vec4 {
	return mgl32.Vec4{
		float32(c[0] / 255),
		float32(c[1] / 255),
		float32(c[2] / 255),
		alpha,
	}
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
