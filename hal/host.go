package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// Config selects host devices.
type Config struct {
	Width      int
	Height     int
	SampleRate int
	// HUDHeight is the overlay framebuffer height in window mode.
	HUDHeight int
}

func (c *Config) defaults() {
	if c.Width <= 0 {
		c.Width = 960
	}
	if c.Height <= 0 {
		c.Height = 540
	}
	if c.SampleRate <= 0 {
		c.SampleRate = 48000
	}
	if c.HUDHeight <= 0 {
		c.HUDHeight = 40
	}
}

type hostHAL struct {
	log   *zap.Logger
	disp  *hostDisplay
	kbd   *hostKeyboard
	ptr   *hostPointer
	aud   *hostAudio
	clip  *hostClipboard
	input hostInput
}

// New returns a host HAL with a framebuffer of the configured size.
func New(cfg Config, log *zap.Logger) HAL {
	return newHost(cfg, log, cfg.Height)
}

func newHost(cfg Config, log *zap.Logger, fbHeight int) *hostHAL {
	cfg.defaults()
	if fbHeight <= 0 {
		fbHeight = cfg.Height
	}
	h := &hostHAL{
		log: log,
		disp: &hostDisplay{
			fb:     newHostFramebuffer(cfg.Width, fbHeight),
			resize: make(chan Size, 1),
		},
		kbd:  newHostKeyboard(),
		ptr:  newHostPointer(),
		aud:  newHostAudio(cfg.SampleRate, log.Named("audio")),
		clip: &hostClipboard{},
	}
	h.input = hostInput{kbd: h.kbd, ptr: h.ptr}
	return h
}

func (h *hostHAL) Logger() *zap.Logger  { return h.log }
func (h *hostHAL) Display() Display     { return h.disp }
func (h *hostHAL) Input() Input         { return h.input }
func (h *hostHAL) Audio() Audio         { return h.aud }
func (h *hostHAL) Clipboard() Clipboard { return h.clip }

type hostDisplay struct {
	fb     *hostFramebuffer
	screen *ebiten.Image
	resize chan Size
	last   Size
}

func (d *hostDisplay) Framebuffer() Framebuffer { return d.fb }
func (d *hostDisplay) Screen() *ebiten.Image    { return d.screen }
func (d *hostDisplay) Resize() <-chan Size      { return d.resize }

// notify publishes s if it differs from the last size, replacing any
// undelivered one.
func (d *hostDisplay) notify(s Size) {
	if s == d.last {
		return
	}
	d.last = s
	select {
	case <-d.resize:
	default:
	}
	d.resize <- s
}

type hostInput struct {
	kbd *hostKeyboard
	ptr *hostPointer
}

func (in hostInput) Keyboard() Keyboard { return in.kbd }
func (in hostInput) Pointer() Pointer   { return in.ptr }
