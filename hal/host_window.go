package hal

import (
	"errors"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// WindowConfig controls the desktop window.
type WindowConfig struct {
	Config
	Title string
	TPS   int
}

// RunWindow opens a resizable window and runs the app step inside Draw, so
// the step sees the screen image. The framebuffer is a HUD strip drawn over
// the top of the screen. It blocks until the window closes.
func RunWindow(cfg WindowConfig, log *zap.Logger, newApp func(HAL) (func() error, error)) error {
	cfg.defaults()
	if cfg.TPS <= 0 {
		cfg.TPS = 60
	}
	h := newHost(cfg.Config, log, cfg.HUDHeight)
	step, err := newApp(h)
	if err != nil {
		return err
	}

	g := &hostGame{h: h, step: step}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.TPS)

	err = ebiten.RunGame(g)
	if errors.Is(err, ErrQuit) || errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

type hostGame struct {
	h       *hostHAL
	step    func() error
	err     error
	img     *image.RGBA
	hudImg  *ebiten.Image
	scratch []byte
}

func (g *hostGame) Update() error {
	if g.err != nil {
		return g.err
	}
	g.h.kbd.poll()
	g.h.ptr.poll()
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	if g.err != nil {
		return
	}
	g.h.disp.screen = screen
	if g.step != nil {
		if err := g.step(); err != nil {
			// Draw cannot fail; the next Update reports it.
			g.err = err
			return
		}
	}
	g.drawHUD(screen)
}

func (g *hostGame) drawHUD(screen *ebiten.Image) {
	fb := g.h.disp.fb
	if g.img == nil || g.img.Bounds().Dx() != fb.width || g.img.Bounds().Dy() != fb.height {
		g.img = image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
		g.scratch = make([]byte, len(fb.buf))
		if g.hudImg != nil {
			g.hudImg.Deallocate()
		}
		g.hudImg = ebiten.NewImage(fb.width, fb.height)
	}

	fb.snapshotRGB565(g.scratch)
	toRGBA(g.img.Pix, g.scratch, true)
	g.hudImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.hudImg, nil)
}

// Layout follows the window size so the viewport matches it.
func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := max(outsideWidth, 1), max(outsideHeight, 1)
	g.h.disp.notify(Size{Width: w, Height: h})
	if fb := g.h.disp.fb; fb.width != w {
		fb.resize(w, fb.height)
	}
	return w, h
}
