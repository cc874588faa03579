// Package reload rebuilds the analyzer when its table files change on disk.
package reload

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cognicore/textkit/internal/logger"
	"github.com/cognicore/textkit/pkg/textkit"
	"github.com/cognicore/textkit/pkg/textkit/config"
	"github.com/cognicore/textkit/pkg/textkit/internalerr"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reloads the tables named by Loader after each burst of changes.
// A failed load is logged and the previous analyzer stays in service.
type Watcher struct {
	Loader   *config.Loader
	Debounce time.Duration
	OnLoad   func(*textkit.Analyzer)
	Log      *slog.Logger
}

// Watch blocks until ctx is done, calling onLoad with a freshly built
// analyzer whenever the lexicon or intents file changes.
func Watch(ctx context.Context, loader *config.Loader, onLoad func(*textkit.Analyzer)) error {
	w := &Watcher{Loader: loader, OnLoad: onLoad}
	return w.Run(ctx)
}

func (w *Watcher) Run(ctx context.Context) error {
	if w.Loader == nil || w.OnLoad == nil {
		return fmt.Errorf("reload: loader and callback required: %w", internalerr.ErrInvalidConfig)
	}
	paths := w.Loader.Paths()
	if len(paths) == 0 {
		return fmt.Errorf("reload: no table files configured: %w", internalerr.ErrInvalidConfig)
	}
	log := w.Log
	if log == nil {
		log = logger.ForComponent("reload")
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	// Watch the parent directories: editors often replace files by rename,
	// which drops a watch placed on the file itself.
	targets := make(map[string]struct{}, len(paths))
	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		targets[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		log.Debug("watching directory", "path", dir)
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if _, hit := targets[filepath.Clean(ev.Name)]; !hit {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			log.Debug("table file event", "path", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "error", err)

		case <-fire:
			fire = nil
			a, err := w.Loader.NewAnalyzer()
			if err != nil {
				log.Warn("reload failed, keeping current analyzer", "error", err)
				continue
			}
			log.Info("tables reloaded", "files", paths)
			w.OnLoad(a)
		}
	}
}
