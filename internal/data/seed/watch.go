package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/angelo-odois/postangelo-sub000/internal/platform/logger"
)

const defaultDebounce = 300 * time.Millisecond

// Watch calls apply after every burst of changes to seed files in dir until ctx is done. Editors
// write a file in several steps, so events are debounced. apply errors are logged and the watch
// continues.
func Watch(ctx context.Context, log *logger.Logger, dir string, debounce time.Duration, apply func(ctx context.Context) error) error {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	log = log.With("service", "SeedWatcher", "dir", dir)
	log.Info("Watching seed templates")

	// fire is nil while no change is pending
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !isSeedFile(ev.Name) || ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			fire = time.After(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("Seed watcher error", "error", err)
		case <-fire:
			fire = nil
			if err := apply(ctx); err != nil {
				log.Warn("Reseeding failed", "error", err)
				continue
			}
			log.Info("Reseeded templates")
		}
	}
}
