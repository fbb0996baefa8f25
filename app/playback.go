package app

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"blaze/hal"
)

// reconcilePlayback makes the audio device follow the playing control. The
// soundtrack is loaded on first play and loops from then on. When it cannot
// be played the control is switched back off, so the shader never reacts to
// music that is not there.
func (a *App) reconcilePlayback() {
	want := a.controls.Snapshot().AudioPlaying
	au := a.h.Audio()
	if want == au.Playing() {
		return
	}
	if !want {
		au.Pause()
		// A paused track stops feeding the analyser; drop what it holds.
		a.analyser.Reset()
		return
	}
	if err := a.play(au); err != nil {
		a.log.Warn("playback unavailable", zap.Error(err))
		a.controls.SetPlaying(false)
	}
}

func (a *App) play(au hal.Audio) error {
	if !au.Loaded() {
		if a.cfg.Music == "" {
			return hal.ErrNoTrack
		}
		if err := loadTrack(au, a.cfg.Music); err != nil {
			return err
		}
	}
	if err := au.Play(); err != nil {
		return fmt.Errorf("play: %w", err)
	}
	return nil
}

func loadTrack(au hal.Audio, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open track: %w", err)
	}
	// The decoders read lazily, so the file stays open with the track.
	if err := au.Load(path, f); err != nil {
		return errors.Join(err, f.Close())
	}
	return nil
}
