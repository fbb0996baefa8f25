package hal

import "github.com/hajimehoshi/ebiten/v2"

type hostPointer struct {
	ch chan PointerEvent

	dragging bool
	lastX    int
	lastY    int
}

func newHostPointer() *hostPointer {
	return &hostPointer{ch: make(chan PointerEvent, 64)}
}

func (p *hostPointer) Events() <-chan PointerEvent { return p.ch }

func (p *hostPointer) emit(ev PointerEvent) {
	select {
	case p.ch <- ev:
	default:
	}
}

// drag tracks the left button and emits movement while it is held.
func (p *hostPointer) drag(down bool, x, y int) {
	if !down {
		p.dragging = false
		return
	}
	if !p.dragging {
		p.dragging = true
		p.lastX, p.lastY = x, y
		return
	}
	dx, dy := x-p.lastX, y-p.lastY
	p.lastX, p.lastY = x, y
	if dx != 0 || dy != 0 {
		p.emit(PointerEvent{DX: float64(dx), DY: float64(dy)})
	}
}

func (p *hostPointer) poll() {
	x, y := ebiten.CursorPosition()
	p.drag(ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft), x, y)
	if _, wy := ebiten.Wheel(); wy != 0 {
		p.emit(PointerEvent{Wheel: wy})
	}
}
