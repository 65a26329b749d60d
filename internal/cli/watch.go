package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// watchFiles calls onChange after any of paths is written, created or
// replaced, coalescing bursts of events. It blocks until ctx is done.
// Parent directories are watched and events filtered by file name. Errors
// from onChange are logged.
func watchFiles(ctx context.Context, paths []string, logger *slog.Logger, onChange func() error) error {
	if len(paths) == 0 {
		return errors.New("cli: nothing to watch")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cli: create watcher: %w", err)
	}
	defer w.Close()

	files := make(map[string]struct{}, len(paths))
	dirs := make(map[string]struct{})
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("cli: watch %s: %w", path, err)
		}
		files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("cli: watch %s: %w", dir, err)
		}
		logger.Debug("cli: watching directory", "dir", dir)
	}

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			if _, ok := files[abs]; !ok {
				continue
			}
			logger.Debug("cli: file changed", "file", abs, "op", event.Op.String())
			timer.Reset(watchDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("cli: watcher error", "error", err)
		case <-timer.C:
			if err := onChange(); err != nil {
				logger.Error("cli: re-render failed", "error", err)
			}
		}
	}
}
