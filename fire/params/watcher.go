package params

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce coalesces the burst of events editors emit on save.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads a preset file when it changes and publishes the parsed
// snapshot on Updates. The frame loop drains Updates without blocking.
type Watcher struct {
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	updates  chan Snapshot
}

// NewWatcher watches the directory holding path, so editors that replace
// the file on save are still seen.
func NewWatcher(logger *zap.Logger, path string, debounce time.Duration) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("preset path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{
		logger:   logger.Named("preset-watcher"),
		watcher:  fw,
		path:     abs,
		debounce: debounce,
		updates:  make(chan Snapshot, 1),
	}, nil
}

// Updates delivers freshly parsed presets. Only the newest is kept.
func (w *Watcher) Updates() <-chan Snapshot { return w.updates }

// Run processes file events until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	w.logger.Info("watching preset", zap.String("path", w.path))
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.relevant(ev) {
				w.logger.Debug("preset change detected",
					zap.String("file", ev.Name),
					zap.String("op", ev.Op.String()))
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", zap.Error(err))

		case <-timer.C:
			w.reload()

		case <-ctx.Done():
			w.logger.Info("stopping preset watcher")
			return
		}
	}
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name, err := filepath.Abs(ev.Name)
	return err == nil && name == w.path
}

func (w *Watcher) reload() {
	s, err := LoadPreset(w.path)
	if err != nil {
		w.logger.Warn("preset reload failed", zap.Error(err))
		return
	}
	// Replace a pending, unconsumed update.
	select {
	case <-w.updates:
	default:
	}
	w.updates <- s
	w.logger.Info("preset reloaded", zap.String("path", w.path))
}
