// Package watch re-runs a callback when knowledge-base files change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher observes a directory tree. Bursts of events are collapsed into a
// single callback once the tree has been quiet for the debounce interval.
type Watcher struct {
	fw       *fsnotify.Watcher
	dir      string
	debounce time.Duration
	accept   func(path string) bool
	logger   *zap.Logger
}

// New starts watching dir and every directory below it. accept filters the
// files whose changes matter; nil accepts everything.
func New(dir string, debounce time.Duration, accept func(string) bool, logger *zap.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	if accept == nil {
		accept = func(string) bool { return true }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{fw: fw, dir: dir, debounce: debounce, accept: accept, logger: logger}
	if err := w.addTree(dir); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return w.accept(ev.Name)
}

// Run delivers debounced changes to onChange until ctx is cancelled, then
// closes the watcher. Callback errors are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context) error) error {
	defer w.fw.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						w.logger.Warn("watch new directory", zap.String("path", ev.Name), zap.Error(err))
					}
					continue
				}
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("knowledge base changed", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			timer.Reset(w.debounce)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))

		case <-timer.C:
			if err := onChange(ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.logger.Warn("reload after change failed", zap.Error(err))
			}
		}
	}
}
