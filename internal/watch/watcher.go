// Package watch re-runs a bulk upload whenever the source tree changes.
package watch

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultDelay is the quiet period after the last change before a re-run.
const DefaultDelay = 2 * time.Second

// Watcher observes a directory tree recursively. Dot files and dot folders are
// ignored.
type Watcher struct {
	root    string
	delay   time.Duration
	watcher *fsnotify.Watcher
	logger  *zap.Logger
}

// New creates a Watcher on root and every folder below it.
func New(root string, delay time.Duration, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create watcher")
	}
	w := &Watcher{root: root, delay: delay, watcher: fw, logger: logger}
	if err := w.addTree(root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

func hidden(p string) bool {
	return strings.HasPrefix(filepath.Base(p), ".")
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && hidden(p) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			return errors.Wrapf(err, "watch %s", p)
		}
		return nil
	})
}

// Run calls onChange after every burst of changes until ctx is done. Calls never
// overlap; changes made while onChange runs schedule one more call.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context)) error {
	defer w.watcher.Close()

	pending := make(chan struct{}, 1)
	debouncer := NewDebouncer(w.delay, func() {
		select {
		case pending <- struct{}{}:
		default:
		}
	})
	defer debouncer.Stop()

	w.logger.Info("Watching for changes", zap.String("root", w.root), zap.Duration("debounce", w.delay))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if hidden(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				// new folders need their own watch
				if err := w.addTree(ev.Name); err != nil {
					w.logger.Debug("Could not watch new path", zap.String("path", ev.Name), zap.Error(err))
				}
			}
			w.logger.Debug("Change detected", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			debouncer.Trigger()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", zap.Error(err))
		case <-pending:
			w.logger.Info("Changes settled, re-running")
			onChange(ctx)
		}
	}
}
