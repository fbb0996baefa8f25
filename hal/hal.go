package hal

import (
	"errors"
	"io"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

var (
	// ErrQuit ends a runner without error.
	ErrQuit = errors.New("hal: quit")

	ErrUnsupported = errors.New("hal: unsupported audio format")
	ErrNoTrack     = errors.New("hal: no track loaded")
	ErrNoClipboard = errors.New("hal: clipboard unavailable")
)

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// Size is a viewport size in pixels.
type Size struct {
	Width, Height int
}

// Display provides the framebuffer and, in window mode, the screen image
// the GPU program draws into.
type Display interface {
	Framebuffer() Framebuffer
	// Screen is nil when running headless.
	Screen() *ebiten.Image
	// Resize delivers the latest viewport size. Older sizes are dropped.
	Resize() <-chan Size
}

// KeyCode is a minimal key identifier.
type KeyCode uint16

const (
	KeyUnknown KeyCode = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEnter
	KeyEscape
	KeyBackspace
	KeyTab
	KeyF1
)

// KeyEvent is a keyboard event.
type KeyEvent struct {
	Code  KeyCode
	Press bool
	Rune  rune
}

// Keyboard provides key events (best-effort on each platform).
type Keyboard interface {
	Events() <-chan KeyEvent
}

// PointerEvent is a drag or wheel step. Drag deltas are in pixels.
type PointerEvent struct {
	DX, DY float64
	Wheel  float64
}

// Pointer provides mouse drag and wheel events.
type Pointer interface {
	Events() <-chan PointerEvent
}

// Input provides access to input devices (if available).
type Input interface {
	Keyboard() Keyboard
	Pointer() Pointer
}

// Audio plays one looping track and taps the decoded PCM as mono samples.
type Audio interface {
	SampleRate() int
	// Load decodes r as mp3 or wav, chosen by the name's extension.
	Load(name string, r io.ReadSeeker) error
	Loaded() bool
	Play() error
	Pause()
	Playing() bool
	// SetTap registers fn to receive every decoded block as it is played.
	SetTap(fn func(mono []float32))
}

// Clipboard exports text.
type Clipboard interface {
	WriteText(s string) error
}

// HAL provides the only contact point between the app and the outside world.
type HAL interface {
	Logger() *zap.Logger
	Display() Display
	Input() Input
	Audio() Audio
	Clipboard() Clipboard
}
