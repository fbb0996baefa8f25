package hal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"
)

// terminalKeys reads a raw stdin terminal into keyboard events.
type terminalKeys struct {
	fd    int
	state *term.State
	log   *zap.Logger
}

// startTerminal puts stdin into raw mode. The returned stop func restores
// it. When stdin is not a terminal nothing happens.
func startTerminal(ctx context.Context, kbd *hostKeyboard, log *zap.Logger) (stop func(), err error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		log.Info("stdin is not a terminal, keyboard disabled")
		return func() {}, nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("raw terminal: %w", err)
	}
	t := &terminalKeys{fd: fd, state: state, log: log}

	go func() {
		err := readKeys(ctx, os.Stdin, kbd)
		if err != nil && !errors.Is(err, io.EOF) && ctx.Err() == nil {
			log.Warn("terminal read failed", zap.Error(err))
		}
	}()
	return t.restore, nil
}

func (t *terminalKeys) restore() {
	if err := term.Restore(t.fd, t.state); err != nil {
		t.log.Warn("restore terminal", zap.Error(err))
	}
}

// readKeys decodes bytes from r until it fails or ctx ends. Arrow keys
// arrive as ESC [ A..D.
func readKeys(ctx context.Context, r io.Reader, kbd *hostKeyboard) error {
	buf := make([]byte, 64)
	var esc []byte
	for {
		if ctx.Err() != nil {
			return nil
		}
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			if len(esc) > 0 || b == 0x1b {
				esc = append(esc, b)
				if ev, done := decodeEscape(esc); done {
					if ev.Code != KeyUnknown {
						kbd.emit(ev)
					}
					esc = esc[:0]
				}
				continue
			}
			switch b {
			case '\r', '\n':
				kbd.emit(KeyEvent{Code: KeyEnter, Press: true})
			case '\t':
				kbd.emit(KeyEvent{Code: KeyTab, Press: true})
			case 0x7f, 0x08:
				kbd.emit(KeyEvent{Code: KeyBackspace, Press: true})
			default:
				kbd.emit(KeyEvent{Press: true, Rune: rune(b)})
			}
		}
		if err != nil {
			return err
		}
	}
}

func decodeEscape(seq []byte) (KeyEvent, bool) {
	switch {
	case len(seq) == 1:
		return KeyEvent{}, false
	case seq[1] != '[':
		// Lone escape followed by another key.
		return KeyEvent{Code: KeyEscape, Press: true}, true
	case len(seq) == 2:
		return KeyEvent{}, false
	}
	codes := map[byte]KeyCode{'A': KeyUp, 'B': KeyDown, 'C': KeyRight, 'D': KeyLeft}
	return KeyEvent{Code: codes[seq[2]], Press: true}, true
}
