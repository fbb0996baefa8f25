package hal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Config
	Hz    int
	Ticks uint64
	// Terminal reads keys from a raw stdin terminal.
	Terminal bool
	// Realtime paces ticks with a wall clock ticker. Otherwise ticks run
	// back to back, which keeps runs reproducible.
	Realtime bool
}

// RunHeadless runs the app without opening a window. Audio is advanced by
// SampleRate/Hz frames per tick instead of playing on a device.
func RunHeadless(ctx context.Context, cfg HeadlessConfig, log *zap.Logger, newApp func(HAL) (func() error, error)) error {
	cfg.defaults()
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}

	h := newHost(cfg.Config, log, cfg.Height)
	h.aud.stepped = true
	h.disp.notify(Size{Width: cfg.Width, Height: cfg.Height})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if cfg.Terminal {
		stop, err := startTerminal(ctx, h.kbd, log.Named("terminal"))
		if err != nil {
			return err
		}
		defer stop()
	}

	step, err := newApp(h)
	if err != nil {
		return err
	}
	framesPerTick := cfg.SampleRate / cfg.Hz

	var tickC <-chan time.Time
	if cfg.Realtime {
		t := time.NewTicker(d)
		defer t.Stop()
		tickC = t.C
	}

	var tick uint64
	for {
		if tickC != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tickC:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		if err := h.aud.advance(framesPerTick); err != nil {
			return err
		}
		if step != nil {
			if err := step(); err != nil {
				if errors.Is(err, ErrQuit) {
					return nil
				}
				return err
			}
		}
		tick++
		if cfg.Ticks > 0 && tick >= cfg.Ticks {
			return nil
		}
	}
}
