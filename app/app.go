// Package app wires the fire visualization to a host: it owns the frame
// loop, routes input to the controls and camera, applies presets and
// script keyframes between frames, and draws the statistics overlay.
//
// Keys:
//
//	space      play or pause the soundtrack
//	r          reset colors, burn speed and density
//	l          load scene (rebuild the icosphere)
//	b / B      burn speed down / up
//	d / D      fire density down / up
//	t / T      tessellation down / up
//	1..6       select smoke inner..fire outer
//	tab        select the next color channel
//	up / down  nudge the selected channel
//	c, ctrl+c  copy the current preset to the clipboard
//	s          save the current preset to the preset file
//	h, F1      toggle the overlay
//	q, esc     quit
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"blaze/fire/analyser"
	"blaze/fire/camera"
	"blaze/fire/frame"
	"blaze/fire/geometry"
	"blaze/fire/params"
	"blaze/fire/paramsync"
	"blaze/fire/raster"
	"blaze/fire/script"
	"blaze/fire/shader"
	"blaze/fire/spectrum"
	"blaze/hal"
	"blaze/internal/config"
	"blaze/internal/metrics"
)

var (
	startEye    = mgl32.Vec3{0, 0, 5}
	startTarget = mgl32.Vec3{}
)

const sphereRadius = 1

// App is one running visualization.
type App struct {
	h   hal.HAL
	cfg config.Config
	log *zap.Logger

	analyser *analyser.Analyser
	smoother *spectrum.Smoother
	orbit    *camera.OrbitController
	camera   *camera.Locked
	sphere   *geometry.Icosphere
	controls *params.Controls
	sync     *paramsync.Engine
	loop     *frame.Loop
	observer *observer

	program *shader.Program
	raster  *raster.Target

	watcher *params.Watcher
	script  *script.Script
	cancel  context.CancelFunc

	input inputState
	hud   *hud
}

// New builds the app on h. Setup failures are returned and are fatal.
func New(ctx context.Context, h hal.HAL, cfg config.Config) (*App, error) {
	log := h.Logger()
	a := &App{
		h:        h,
		cfg:      cfg,
		log:      log,
		smoother: spectrum.NewSmoother(),
		orbit:    camera.NewOrbitController(startEye, startTarget),
		controls: params.NewControls(),
	}

	an, err := analyser.New(cfg.FFTSize)
	if err != nil {
		return nil, err
	}
	if err := a.smoother.Validate(an); err != nil {
		return nil, fmt.Errorf("analyser fft size %d: %w", cfg.FFTSize, err)
	}
	a.analyser = an
	h.Audio().SetTap(an.Write)

	if cfg.Preset != "" {
		s, err := params.LoadPreset(cfg.Preset)
		if err != nil {
			return nil, err
		}
		a.controls.Replace(s)
		log.Info("preset loaded", zap.String("path", cfg.Preset))
	}

	if cfg.Script != "" {
		s, err := script.LoadFile(cfg.Script)
		if err != nil {
			return nil, err
		}
		a.script = s
		log.Info("script loaded", zap.String("path", cfg.Script), zap.Int("keyframes", len(s.Keyframes)))
	}

	a.camera = camera.NewLocked(a.orbit, startEye, startTarget)
	a.sphere = geometry.NewIcosphere(startTarget, sphereRadius, a.controls.Snapshot().Tessellation)

	var target frame.Target
	if cfg.Headless {
		a.raster = raster.New(h.Display().Framebuffer())
		target = a.raster
	} else {
		a.program = shader.New(log)
		target = a.program
	}
	counted := countedTarget{CountingSink: metrics.CountingSink{Next: target}, target: target}

	a.sync = paramsync.New(counted, a.sphere, log)
	a.sync.OnRegenerate = func(int) { metrics.MeshRegenerations.Inc() }

	a.observer = &observer{log: log.Named("frame")}
	a.loop = &frame.Loop{
		Camera:   a.camera,
		Smoother: a.smoother,
		Audio:    an,
		Sync:     a.sync,
		Controls: a.controls,
		Geometry: a.sphere,
		Target:   counted,
		Observer: a.observer,
	}

	ctx, a.cancel = context.WithCancel(ctx)
	if cfg.Preset != "" && cfg.WatchPreset {
		w, err := params.NewWatcher(log, cfg.Preset, cfg.PresetDebounce)
		if err != nil {
			a.cancel()
			return nil, err
		}
		a.watcher = w
		go w.Run(ctx)
	}

	a.hud = newHUD(h.Display().Framebuffer(), a.program != nil)
	a.input.hud = true

	log.Info("app ready",
		zap.Bool("headless", a.raster != nil),
		zap.Int("fftSize", an.FFTSize()),
		zap.Int("tessellation", a.sphere.Level()),
	)
	return a, nil
}

// Step runs everything that happens once per host frame.
func (a *App) Step() error {
	a.drainResize()
	if err := a.drainInput(); err != nil {
		return err
	}
	a.applyPresetUpdates()
	a.applyScript()
	a.reconcilePlayback()

	if a.program != nil {
		if err := a.prepareProgram(); err != nil {
			return err
		}
	}

	err := a.loop.Tick()
	switch {
	case errors.Is(err, frame.ErrTargetNotReady):
		// Skipped; the observer has logged it.
	case err != nil:
		return err
	}

	if a.input.hud {
		a.hud.draw(a.stats())
	} else if a.program != nil {
		a.hud.clear()
	}
	return nil
}

func (a *App) prepareProgram() error {
	if errors.Is(a.program.Ready(), shader.ErrNotCompiled) {
		if err := a.program.Compile(); err != nil {
			return err
		}
	}
	a.program.SetScreen(a.h.Display().Screen())
	return nil
}

func (a *App) drainResize() {
	for {
		select {
		case s := <-a.h.Display().Resize():
			if s.Width <= 0 || s.Height <= 0 {
				continue
			}
			a.camera.SetAspectRatio(float32(s.Width) / float32(s.Height))
			a.camera.UpdateProjectionMatrix()
			a.log.Debug("viewport resized", zap.Int("width", s.Width), zap.Int("height", s.Height))
		default:
			return
		}
	}
}

func (a *App) applyPresetUpdates() {
	if a.watcher == nil {
		return
	}
	select {
	case s := <-a.watcher.Updates():
		a.controls.Replace(s)
		metrics.PresetReloads.Inc()
		a.log.Info("preset reloaded", zap.String("path", a.cfg.Preset))
	default:
	}
}

func (a *App) applyScript() {
	if a.script == nil {
		return
	}
	for _, k := range a.script.Due(a.loop.Time() + 1) {
		if k.Apply(a.controls) {
			a.sync.Regenerate()
		}
	}
}

// Close stops background work and writes the snapshot, if configured.
func (a *App) Close() error {
	a.cancel()
	var errs []error
	if a.watcher != nil {
		errs = append(errs, a.watcher.Close())
	}
	if a.program != nil {
		a.program.Dispose()
	}
	if a.cfg.Snapshot != "" && a.raster != nil {
		errs = append(errs, a.writeSnapshot(a.cfg.Snapshot))
	}
	return errors.Join(errs...)
}

func (a *App) writeSnapshot(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := a.raster.WritePNG(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	a.log.Info("snapshot written", zap.String("path", path), zap.Int64("frame", a.loop.Time()))
	return nil
}

// Controls exposes the live parameters.
func (a *App) Controls() *params.Controls { return a.controls }

// Loop exposes the frame loop.
func (a *App) Loop() *frame.Loop { return a.loop }
