// Package watch re-runs a build when its input files change.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce coalesces bursts of writes from editors and copy tools.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors a fixed set of files via fsnotify. The parent
// directories are watched so files replaced by rename are still seen.
type Watcher struct {
	paths    []string
	debounce time.Duration
	logger   zerolog.Logger
}

// New creates a watcher for paths. Empty paths are ignored.
func New(paths []string, debounce time.Duration, logger zerolog.Logger) *Watcher {
	var keep []string
	for _, p := range paths {
		if p != "" {
			keep = append(keep, p)
		}
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{paths: keep, debounce: debounce, logger: logger}
}

// Run blocks until ctx is canceled, calling rebuild once per burst of
// changes. Rebuilds never overlap; changes seen while one is running
// schedule exactly one more.
func (w *Watcher) Run(ctx context.Context, rebuild func(context.Context)) error {
	if len(w.paths) == 0 {
		return fmt.Errorf("nothing to watch")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	watched := make(map[string]bool, len(w.paths))
	dirs := make(map[string]bool)
	for _, p := range w.paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for d := range dirs {
		if err := fw.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}
	w.logger.Info().Strs("paths", w.paths).Msg("watching for changes")

	fire := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !watched[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("watcher error")

		case <-fire:
			w.logger.Info().Msg("change detected, rebuilding")
			rebuild(ctx)
		}
	}
}
