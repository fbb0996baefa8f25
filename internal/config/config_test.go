package config

import (
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Headless)
	assert.Equal(t, 60, cfg.Hz)
	assert.Equal(t, 48000, cfg.SampleRate)
	assert.Equal(t, 128, cfg.FFTSize)
	assert.True(t, cfg.WatchPreset)
	assert.Equal(t, 250*time.Millisecond, cfg.PresetDebounce)
	assert.Equal(t, "json", cfg.LogFormat)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BLAZE_HEADLESS", "true")
	t.Setenv("BLAZE_TICKS", "10")
	t.Setenv("BLAZE_MUSIC", "music/track.mp3")
	t.Setenv("BLAZE_PRESET_DEBOUNCE", "1s")
	t.Setenv("BLAZE_LOG_FORMAT", "console")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Headless)
	assert.Equal(t, uint64(10), cfg.Ticks)
	assert.Equal(t, "music/track.mp3", cfg.Music)
	assert.Equal(t, time.Second, cfg.PresetDebounce)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv("BLAZE_HZ", "fast")
	_, err := Load()
	assert.ErrorContains(t, err, "parse env")
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("BLAZE_HZ", "30")
	cfg, err := Load()
	require.NoError(t, err)

	fs := flag.NewFlagSet("blaze", flag.ContinueOnError)
	cfg.RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"-headless", "-ticks", "5", "-script", "demo.lua"}))

	assert.Equal(t, 30, cfg.Hz, "env value survives as flag default")
	assert.True(t, cfg.Headless)
	assert.Equal(t, uint64(5), cfg.Ticks)
	assert.Equal(t, "demo.lua", cfg.Script)
}

func TestValidate(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Hz = 0
	cfg.FFTSize = 100
	cfg.Snapshot = "out.png"
	err = cfg.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	assert.ErrorContains(t, err, "hz must be positive")
	assert.ErrorContains(t, err, "fft size")
	assert.ErrorContains(t, err, "snapshot needs headless")
}
