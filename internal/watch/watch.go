// Package watch rebuilds the knowledge base when its source files change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 500 * time.Millisecond

// Rebuilder replaces the index with one built from paths.
type Rebuilder interface {
	Rebuild(ctx context.Context, paths ...string) error
}

type Watcher struct {
	rebuilder Rebuilder
	sources   map[string]struct{}
	paths     []string
	debounce  time.Duration
	onRebuild func(error)
}

type Option func(*Watcher)

func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// OnRebuild is called after every rebuild attempt with its result.
func OnRebuild(fn func(error)) Option {
	return func(w *Watcher) { w.onRebuild = fn }
}

func New(rebuilder Rebuilder, paths []string, opts ...Option) *Watcher {
	w := &Watcher{
		rebuilder: rebuilder,
		sources:   make(map[string]struct{}, len(paths)),
		paths:     paths,
		debounce:  DefaultDebounce,
	}
	for _, p := range paths {
		w.sources[clean(p)] = struct{}{}
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Run watches the source files until ctx is done. The parent directories are
// watched rather than the files so editors that replace files on save are seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	dirs := make(map[string]struct{})
	for p := range w.sources {
		dirs[filepath.Dir(p)] = struct{}{}
	}
	for d := range dirs {
		if err := fw.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}
	slog.Info("watching knowledge sources", "files", len(w.sources))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if _, watched := w.sources[clean(event.Name)]; !watched {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			slog.Debug("knowledge source changed", "path", event.Name, "op", event.Op.String())
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "error", err)
		case <-timer.C:
			err := w.rebuilder.Rebuild(ctx, w.paths...)
			if err != nil {
				slog.Error("knowledge base rebuild failed, keeping previous index", "error", err)
			} else {
				slog.Info("knowledge base rebuilt")
			}
			if w.onRebuild != nil {
				w.onRebuild(err)
			}
		}
	}
}

func clean(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
