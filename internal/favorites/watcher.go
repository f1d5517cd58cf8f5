package favorites

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch observes the favorites file backing the fs storage provider and
// reloads the store when the file changes on disk, so external edits are
// picked up while the service runs. Runs until ctx is cancelled.
//
// Reloads are debounced because editors and our own atomic writes emit
// bursts of events. Reload itself suppresses no-op changes, so our own
// persist calls do not produce spurious reload notifications.
func Watch(ctx context.Context, store *Store, file string, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the directory, not the file: atomic rename replaces the inode.
	dir := filepath.Dir(file)
	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("favorites watcher started", slog.String("file", file))

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(200 * time.Millisecond)
			timerCh = timer.C
		} else {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != file {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				schedule()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("favorites watcher error", slog.String("error", err.Error()))

		case <-timerCh:
			changed, err := store.Reload()
			if err != nil {
				logger.Warn("favorites reload failed", slog.String("error", err.Error()))
				continue
			}
			if changed {
				logger.Info("favorites reloaded from disk")
			}
		}
	}
}
