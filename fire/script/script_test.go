package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blaze/fire/params"
)

const demo = `
local hot = rgb(255, 40, 0)
return {
  loop = 10,
  { frame = 6, reset = true, tessellation = 6, loadScene = true },
  { frame = 2, burnSpeed = 2.0, fireInner = hot },
  { frame = 4, playing = true, smokeOuter = {1, 2, 3}, fireDensity = 1.1 },
}
`

func TestLoadSortsKeyframes(t *testing.T) {
	s, err := LoadString("demo", demo)
	require.NoError(t, err)
	assert.Equal(t, "demo", s.Name)
	assert.Equal(t, int64(10), s.Loop)
	require.Len(t, s.Keyframes, 3)

	assert.Equal(t, []int64{2, 4, 6}, []int64{s.Keyframes[0].Frame, s.Keyframes[1].Frame, s.Keyframes[2].Frame})
	assert.Equal(t, params.RGB{255, 40, 0}, s.Keyframes[0].Colors[params.FireInner])
	require.NotNil(t, s.Keyframes[1].Playing)
	assert.True(t, *s.Keyframes[1].Playing)
	assert.True(t, s.Keyframes[2].LoadScene)
}

func TestKeyframesApplyExactlyAtTheirFrame(t *testing.T) {
	s, err := LoadString("demo", demo)
	require.NoError(t, err)

	due := map[int64]int{}
	for f := int64(1); f <= 20; f++ {
		due[f] = len(s.Due(f))
	}
	assert.Equal(t, map[int64]int{
		1: 0, 2: 1, 3: 0, 4: 1, 5: 0, 6: 1, 7: 0, 8: 0, 9: 0, 10: 0,
		11: 0, 12: 1, 13: 0, 14: 1, 15: 0, 16: 1, 17: 0, 18: 0, 19: 0, 20: 0,
	}, due)
}

func TestApply(t *testing.T) {
	s, err := LoadString("demo", demo)
	require.NoError(t, err)
	c := params.NewControls()

	var reload bool
	for f := int64(1); f <= 6; f++ {
		for _, k := range s.Due(f) {
			if k.Apply(c) {
				reload = true
			}
		}
	}
	got := c.Snapshot()
	d := params.Defaults()

	assert.True(t, reload)
	assert.Equal(t, d.FireInner, got.FireInner, "reset at frame 6")
	assert.Equal(t, d.BurnSpeed, got.BurnSpeed)
	assert.Equal(t, 6, got.Tessellation)
	assert.True(t, got.AudioPlaying, "reset keeps playback")
}

func TestSkippedFramesCatchUp(t *testing.T) {
	s, err := LoadString("demo", demo)
	require.NoError(t, err)
	assert.Len(t, s.Due(5), 2)
	s.Rewind()
	assert.Len(t, s.Due(9), 3)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pulse.lua")
	require.NoError(t, os.WriteFile(path, []byte(`return { { frame = 1, burnSpeed = 3 } }`), 0o644))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "pulse", s.Name)
	assert.Zero(t, s.Loop)
	require.Len(t, s.Keyframes, 1)
	assert.Equal(t, 3.0, *s.Keyframes[0].BurnSpeed)
}

func TestRejectsBadScripts(t *testing.T) {
	for name, src := range map[string]string{
		"not a table":   `return 3`,
		"missing frame": `return { { burnSpeed = 1 } }`,
		"unknown key":   `return { { frame = 1, heat = 9 } }`,
		"bad color":     `return { { frame = 1, fireOuter = {1, 2} } }`,
		"bad type":      `return { { frame = 1, playing = "yes" } }`,
		"zero frame":    `return { { frame = 0 } }`,
		"bad loop":      `return { loop = "x" }`,
	} {
		_, err := LoadString(name, src)
		assert.ErrorIs(t, err, ErrScript, name)
	}

	_, err := LoadString("syntax", `return {`)
	assert.Error(t, err)
	_, err = LoadString("runtime", `error("boom")`)
	assert.Error(t, err)
}
