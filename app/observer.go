package app

import (
	"time"

	"go.uber.org/zap"

	"blaze/fire/frame"
	"blaze/fire/geometry"
	"blaze/fire/params"
	"blaze/internal/metrics"
)

// countedTarget counts uniform pushes on the way to the render target.
type countedTarget struct {
	metrics.CountingSink
	target frame.Target
}

func (c countedTarget) Ready() error                       { return c.target.Ready() }
func (c countedTarget) Draw(meshes []*geometry.Mesh) error { return c.target.Draw(meshes) }

// observer feeds metrics and keeps the frame rate for the overlay.
type observer struct {
	metrics.FrameObserver
	log *zap.Logger

	last    time.Time
	fps     float64
	skipped int
}

func (o *observer) FrameDone(elapsed time.Duration, changed params.FieldSet, low, high float64) {
	o.FrameObserver.FrameDone(elapsed, changed, low, high)

	now := time.Now()
	if !o.last.IsZero() {
		if dt := now.Sub(o.last).Seconds(); dt > 0 {
			inst := 1 / dt
			if o.fps == 0 {
				o.fps = inst
			} else {
				o.fps += (inst - o.fps) * 0.1
			}
		}
	}
	o.last = now
}

func (o *observer) FrameSkipped(err error) {
	o.FrameObserver.FrameSkipped(err)
	o.skipped++
	if o.skipped == 1 {
		o.log.Warn("frame skipped", zap.Error(err))
		return
	}
	o.log.Debug("frame skipped", zap.Error(err), zap.Int("skipped", o.skipped))
}

// stats is what the overlay shows.
type stats struct {
	FPS          float64
	Frame        int64
	Low, High    float64
	Tessellation int
	Playing      bool
	Selected     string
}

func (a *App) stats() stats {
	low, high := a.loop.Levels()
	cur := a.controls.Snapshot()
	return stats{
		FPS:          a.observer.fps,
		Frame:        a.loop.Time(),
		Low:          low,
		High:         high,
		Tessellation: a.sphere.Level(),
		Playing:      cur.AudioPlaying,
		Selected:     a.input.selected(),
	}
}
