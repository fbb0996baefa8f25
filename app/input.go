package app

import (
	"fmt"

	"go.uber.org/zap"

	"blaze/fire/params"
	"blaze/hal"
)

const (
	// Radians of orbit per dragged pixel.
	dragSpeed = 0.005
	// Radius change per wheel notch.
	zoomSpeed = 0.5
	// Channel steps per arrow press.
	channelNudge = 5
)

type inputState struct {
	hud     bool
	field   params.Field
	channel int
}

var channelNames = [3]string{"r", "g", "b"}

func (s inputState) selected() string {
	return fmt.Sprintf("%s.%s", s.field, channelNames[s.channel])
}

func (a *App) drainInput() error {
	keys := a.h.Input().Keyboard().Events()
	ptr := a.h.Input().Pointer().Events()
	for {
		select {
		case ev := <-keys:
			if err := a.handleKey(ev); err != nil {
				return err
			}
		case ev := <-ptr:
			a.handlePointer(ev)
		default:
			return nil
		}
	}
}

func (a *App) handlePointer(ev hal.PointerEvent) {
	if ev.DX != 0 || ev.DY != 0 {
		a.orbit.Rotate(float32(-ev.DX*dragSpeed), float32(ev.DY*dragSpeed))
	}
	if ev.Wheel != 0 {
		a.orbit.Zoom(float32(-ev.Wheel * zoomSpeed))
	}
}

// handleKey applies one key binding. It returns hal.ErrQuit to stop.
func (a *App) handleKey(ev hal.KeyEvent) error {
	if !ev.Press {
		return nil
	}
	c := a.controls

	switch ev.Code {
	case hal.KeyEscape:
		return hal.ErrQuit
	case hal.KeyUp:
		c.NudgeChannel(a.input.field, a.input.channel, channelNudge)
		return nil
	case hal.KeyDown:
		c.NudgeChannel(a.input.field, a.input.channel, -channelNudge)
		return nil
	case hal.KeyTab:
		a.input.channel = (a.input.channel + 1) % 3
		return nil
	case hal.KeyF1:
		a.input.hud = !a.input.hud
		return nil
	}

	switch r := ev.Rune; {
	case r == 'q':
		return hal.ErrQuit
	case r == ' ':
		on := c.TogglePlaying()
		a.log.Info("playback toggled", zap.Bool("playing", on))
	case r == 'r':
		c.Reset()
	case r == 'l':
		a.sync.Regenerate()
	case r == 'b':
		c.NudgeBurnSpeed(-1)
	case r == 'B':
		c.NudgeBurnSpeed(1)
	case r == 'd':
		c.NudgeFireDensity(-1)
	case r == 'D':
		c.NudgeFireDensity(1)
	case r == 't':
		c.NudgeTessellation(-1)
	case r == 'T':
		c.NudgeTessellation(1)
	case r >= '1' && r <= '6':
		a.input.field = params.ColorFields[r-'1']
	case r == 'c' || r == 0x03:
		a.copyPreset()
	case r == 's':
		a.savePreset()
	case r == 'h':
		a.input.hud = !a.input.hud
	}
	return nil
}

func (a *App) copyPreset() {
	data, err := params.MarshalPreset(a.controls.Snapshot())
	if err != nil {
		a.log.Error("marshal preset", zap.Error(err))
		return
	}
	if err := a.h.Clipboard().WriteText(string(data)); err != nil {
		a.log.Warn("copy preset", zap.Error(err))
		return
	}
	a.log.Info("preset copied to clipboard")
}

func (a *App) savePreset() {
	if a.cfg.Preset == "" {
		a.log.Warn("no preset file configured")
		return
	}
	if err := params.SavePreset(a.cfg.Preset, a.controls.Snapshot()); err != nil {
		a.log.Error("save preset", zap.Error(err))
		return
	}
	a.log.Info("preset saved", zap.String("path", a.cfg.Preset))
}
