package params

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestSnapshotEqualityIsDeep(t *testing.T) {
	a := Defaults()
	b := Defaults()
	assert.True(t, a == b)

	b.FireInner[1]++
	assert.False(t, a == b, "in-place channel edit must be visible")
}

func TestClamp(t *testing.T) {
	s := Defaults()
	s.FireInner = RGB{-4, 300, 12}
	s.BurnSpeed = 9
	s.FireDensity = 0.1
	s.Tessellation = 12

	got := s.Clamp()
	assert.Equal(t, RGB{0, 255, 12}, got.FireInner)
	assert.Equal(t, 3.0, got.BurnSpeed)
	assert.Equal(t, 0.8, got.FireDensity)
	assert.Equal(t, 8, got.Tessellation)
	assert.Equal(t, 9.0, s.BurnSpeed, "Clamp works on a copy")
}

func TestControlsResetKeepsTessellationAndPlayback(t *testing.T) {
	c := NewControls()
	c.SetColor(SmokeOuter, RGB{1, 2, 3})
	c.NudgeBurnSpeed(5)
	c.NudgeFireDensity(-3)
	c.SetTessellation(2)
	c.SetPlaying(true)

	c.Reset()
	s := c.Snapshot()
	d := Defaults()
	assert.Equal(t, d.SmokeOuter, s.SmokeOuter)
	assert.Equal(t, d.BurnSpeed, s.BurnSpeed)
	assert.Equal(t, d.FireDensity, s.FireDensity)
	assert.Equal(t, 2, s.Tessellation)
	assert.True(t, s.AudioPlaying)
}

func TestControlsStepGrid(t *testing.T) {
	c := NewControls()
	for i := 0; i < 3; i++ {
		c.NudgeBurnSpeed(1)
	}
	assert.Equal(t, 1.8, c.Snapshot().BurnSpeed)

	c.NudgeBurnSpeed(100)
	assert.Equal(t, 3.0, c.Snapshot().BurnSpeed)

	c.NudgeFireDensity(-7)
	assert.Equal(t, 0.93, c.Snapshot().FireDensity)

	c.NudgeTessellation(10)
	assert.Equal(t, 8, c.Snapshot().Tessellation)

	c.NudgeChannel(FireOuter, 2, 500)
	assert.Equal(t, 255.0, c.Snapshot().FireOuter[2])
	c.NudgeChannel(BurnSpeed, 0, 1)

	assert.True(t, c.TogglePlaying())
	assert.False(t, c.TogglePlaying())
}

func TestReplaceKeepsPlayback(t *testing.T) {
	c := NewControls()
	c.SetPlaying(true)

	p := Defaults()
	p.BurnSpeed = 2
	p.AudioPlaying = false
	c.Replace(p)
	assert.Equal(t, 2.0, c.Snapshot().BurnSpeed)
	assert.True(t, c.Snapshot().AudioPlaying)
}

func TestFieldNames(t *testing.T) {
	f, ok := FieldByName("fireMiddle")
	require.True(t, ok)
	assert.Equal(t, FireMiddle, f)
	_, ok = FieldByName("nope")
	assert.False(t, ok)

	var set FieldSet
	assert.Equal(t, "none", set.String())
	set = set.With(BurnSpeed).With(SmokeInner)
	assert.Equal(t, "smokeInner,burnSpeed", set.String())
	assert.True(t, AllFields.Has(AudioPlaying))
	assert.Nil(t, (&Snapshot{}).Color(Tessellation))
}

func TestParsePresetOverlaysDefaults(t *testing.T) {
	s, err := ParsePreset([]byte("burnSpeed: 2.5\nfireInner: [10, 20, 30]\n"))
	require.NoError(t, err)

	want := Defaults()
	want.BurnSpeed = 2.5
	want.FireInner = RGB{10, 20, 30}
	assert.Equal(t, want, s)

	s, err = ParsePreset([]byte("# nothing here\n"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), s)

	_, err = ParsePreset([]byte("burnSpeeed: 2\n"))
	require.ErrorIs(t, err, ErrPreset)
}

func TestPresetFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fire.yaml")
	s := Defaults()
	s.SmokeMiddle = RGB{1, 2, 3}
	s.Tessellation = 3
	s.AudioPlaying = true

	require.NoError(t, SavePreset(path, s))
	got, err := LoadPreset(path)
	require.NoError(t, err)

	s.AudioPlaying = false
	assert.Equal(t, s, got)

	_, err = LoadPreset(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWatcherPublishesReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fire.yaml")
	require.NoError(t, os.WriteFile(path, []byte("burnSpeed: 1\n"), 0o644))

	w, err := NewWatcher(zaptest.NewLogger(t), path, 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("burnSpeed: 2.2\n"), 0o644))

	select {
	case s := <-w.Updates():
		assert.Equal(t, 2.2, s.BurnSpeed)
	case <-time.After(5 * time.Second):
		t.Fatal("no preset update")
	}
}
