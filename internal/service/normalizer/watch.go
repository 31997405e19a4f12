package normalizer

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/oshokin/bell-scheduler/internal/logger"
)

// watchDebounce coalesces bursts of writes into one pass.
const watchDebounce = 200 * time.Millisecond

// watchIntake calls onWrite after the intake log in dir changes.
// The directory is watched because the log is replaced by rename.
func watchIntake(ctx context.Context, dir, intakeFile string, onWrite func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	defer func() {
		_ = watcher.Close()
	}()

	if err = watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)

	debounce := func() {
		mu.Lock()
		defer mu.Unlock()

		if timer != nil {
			timer.Stop()
		}

		timer = time.AfterFunc(watchDebounce, onWrite)
	}

	defer func() {
		mu.Lock()
		defer mu.Unlock()

		if timer != nil {
			timer.Stop()
		}
	}()

	name := filepath.Base(intakeFile)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Base(event.Name) != name {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				debounce()
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			// Missed events only delay the next pass until the cadence catches up.
			logger.WarnKV(ctx, "Intake watcher error", "error", watchErr)
		}
	}
}
