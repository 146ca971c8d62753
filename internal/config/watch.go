package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/utakatalp/season-predictor/internal/telemetry"
)

// WatchTuning reloads the tuning file whenever it is written and passes each
// valid version to apply. Invalid files are logged and ignored. It blocks
// until ctx is done.
func WatchTuning(ctx context.Context, path string, apply func(Tuning)) (err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create tuning watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	// Editors often replace the file, so watch its directory.
	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch tuning dir: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			t, err := LoadTuning(target)
			if err != nil {
				telemetry.Warnf("tuning: keeping previous model, reload of %s failed: %v", target, err)
				continue
			}
			telemetry.Infof("tuning: reloaded %s", target)
			apply(t)
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			telemetry.Warnf("tuning: watcher error: %v", werr)
		}
	}
}
