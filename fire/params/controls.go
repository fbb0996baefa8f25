package params

import "math"

// Controls is the live, mutable parameter object that input handlers,
// presets and scripts write to. The frame loop reads it by value once per
// frame through Snapshot.
type Controls struct {
	cur Snapshot
}

// NewControls starts from Defaults.
func NewControls() *Controls {
	return &Controls{cur: Defaults()}
}

// Snapshot returns a copy of the current values.
func (c *Controls) Snapshot() Snapshot { return c.cur }

// Replace overwrites every preset field with s, clamped. Playback state is
// kept.
func (c *Controls) Replace(s Snapshot) {
	playing := c.cur.AudioPlaying
	c.cur = s.Clamp()
	c.cur.AudioPlaying = playing
}

// Reset restores the default colors, burn speed and density. Tessellation
// and playback state are left alone.
func (c *Controls) Reset() {
	d := Defaults()
	for _, f := range ColorFields {
		*c.cur.Color(f) = *d.Color(f)
	}
	c.cur.BurnSpeed = d.BurnSpeed
	c.cur.FireDensity = d.FireDensity
}

// SetColor sets a color field. Non-color fields are ignored.
func (c *Controls) SetColor(f Field, v RGB) {
	dst := c.cur.Color(f)
	if dst == nil {
		return
	}
	for i := range v {
		v[i] = ChannelRange.Clamp(v[i])
	}
	*dst = v
}

// NudgeChannel moves one channel of a color field by steps.
func (c *Controls) NudgeChannel(f Field, channel int, steps float64) {
	dst := c.cur.Color(f)
	if dst == nil || channel < 0 || channel > 2 {
		return
	}
	dst[channel] = ChannelRange.Clamp(dst[channel] + steps*ChannelRange.Step)
}

func (c *Controls) SetBurnSpeed(v float64)   { c.cur.BurnSpeed = snap(BurnSpeedRange, v) }
func (c *Controls) SetFireDensity(v float64) { c.cur.FireDensity = snap(FireDensityRange, v) }
func (c *Controls) SetTessellation(v int) {
	c.cur.Tessellation = int(TessellationRange.Clamp(float64(v)))
}

// NudgeBurnSpeed, NudgeFireDensity and NudgeTessellation move a control
// by whole steps.
func (c *Controls) NudgeBurnSpeed(steps int) {
	c.SetBurnSpeed(c.cur.BurnSpeed + float64(steps)*BurnSpeedRange.Step)
}

func (c *Controls) NudgeFireDensity(steps int) {
	c.SetFireDensity(c.cur.FireDensity + float64(steps)*FireDensityRange.Step)
}

func (c *Controls) NudgeTessellation(steps int) {
	c.SetTessellation(c.cur.Tessellation + steps)
}

// SetPlaying records the playback state the host should reconcile to.
func (c *Controls) SetPlaying(on bool) { c.cur.AudioPlaying = on }

// TogglePlaying flips the playback state and returns the new value.
func (c *Controls) TogglePlaying() bool {
	c.cur.AudioPlaying = !c.cur.AudioPlaying
	return c.cur.AudioPlaying
}

// snap clamps v and rounds it to the range's step grid.
func snap(r Range, v float64) float64 {
	v = r.Clamp(v)
	if r.Step <= 0 {
		return v
	}
	n := math.Round((v - r.Min) / r.Step)
	out := r.Min + n*r.Step
	// Round off the float noise of repeated step additions.
	out = math.Round(out*1e6) / 1e6
	return r.Clamp(out)
}
