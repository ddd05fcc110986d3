// Where: internal/commands/watch.go
// What: Debounced configuration file watcher.
// Why: Rebuild once per burst of editor writes instead of once per event.
package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const defaultDebounce = 300 * time.Millisecond

type configWatcher struct {
	watcher  *fsnotify.Watcher
	target   string
	debounce time.Duration
	logger   zerolog.Logger
}

// newConfigWatcher watches the directory holding path so renames and atomic
// saves are still observed.
func newConfigWatcher(path string, debounce time.Duration, logger zerolog.Logger) (*configWatcher, error) {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		_ = watcher.Close()
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &configWatcher{
		watcher:  watcher,
		target:   abs,
		debounce: debounce,
		logger:   logger,
	}, nil
}

// Run calls onChange after each quiet period following a change to the
// target file. It returns when ctx is done or the watcher is closed.
func (w *configWatcher) Run(ctx context.Context, onChange func()) {
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	resetTimer := func() {
		if timer == nil {
			timer = time.NewTimer(w.debounce)
			timerC = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(w.debounce)
		timerC = timer.C
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timerC:
			timerC = nil
			onChange()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("config watcher error")
		case evt, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.shouldTrigger(evt) {
				w.logger.Debug().Str("event", evt.Op.String()).Str("path", evt.Name).Msg("config changed")
				resetTimer()
			}
		}
	}
}

func (w *configWatcher) shouldTrigger(evt fsnotify.Event) bool {
	if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return false
	}
	name, err := filepath.Abs(evt.Name)
	if err != nil {
		return false
	}
	return name == w.target
}

func (w *configWatcher) Close() error {
	return w.watcher.Close()
}
