package hal

import (
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

type hostClipboard struct {
	once sync.Once
	err  error
}

func (c *hostClipboard) WriteText(s string) error {
	c.once.Do(func() {
		if err := clipboard.Init(); err != nil {
			c.err = fmt.Errorf("%w: %w", ErrNoClipboard, err)
		}
	})
	if c.err != nil {
		return c.err
	}
	clipboard.Write(clipboard.FmtText, []byte(s))
	return nil
}
