package app

import (
	"fmt"
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"blaze/hal"
)

var (
	hudFont   = &proggy.TinySZ8pt7b
	hudColor  = color.RGBA{R: 255, G: 220, B: 120, A: 255}
	hudMargin = int16(4)
)

// hud draws frame statistics into a framebuffer through tinyfont.
type hud struct {
	d fbDisplay
	// overlay is set when the buffer holds nothing but the overlay, as in
	// window mode. Headless, the buffer is the rendered frame.
	overlay bool
}

func newHUD(fb hal.Framebuffer, overlay bool) *hud {
	return &hud{d: fbDisplay{fb: fb}, overlay: overlay}
}

func (h *hud) lines(s stats) []string {
	play := "paused"
	if s.Playing {
		play = "playing"
	}
	return []string{
		fmt.Sprintf("%.1f fps  frame %d  tess %d", s.FPS, s.Frame, s.Tessellation),
		fmt.Sprintf("low %.1f  high %.1f  %s  [%s]", s.Low, s.High, play, s.Selected),
	}
}

// clear blanks the overlay. Black is transparent in window mode.
func (h *hud) clear() {
	if h.d.fb != nil {
		h.d.fb.ClearRGB(0, 0, 0)
	}
}

func (h *hud) draw(s stats) {
	if h.d.fb == nil {
		return
	}
	if h.overlay {
		h.clear()
	}
	y := hudMargin + int16(hudFont.GetYAdvance())
	for _, line := range h.lines(s) {
		tinyfont.WriteLine(h.d, hudFont, hudMargin, y, line, hudColor)
		y += int16(hudFont.GetYAdvance())
	}
}

// fbDisplay adapts a framebuffer to tinyfont's display interface.
type fbDisplay struct {
	fb hal.Framebuffer
}

var _ drivers.Displayer = fbDisplay{}

func (d fbDisplay) Size() (x, y int16) {
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d fbDisplay) SetPixel(x, y int16, c color.RGBA) {
	if d.fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= d.fb.Width() || iy < 0 || iy >= d.fb.Height() {
		return
	}
	buf := d.fb.Buffer()
	off := iy*d.fb.StrideBytes() + ix*2
	if off+1 >= len(buf) {
		return
	}
	p := uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
	buf[off] = byte(p)
	buf[off+1] = byte(p >> 8)
}

func (d fbDisplay) Display() error { return d.fb.Present() }
