package cliconfig

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mailbuf/mailbuf/internal/ports"
)

// watchDebounce is how long the watcher waits after a file change
// before reloading, so editors that write in several steps trigger one
// reload, not many.
const watchDebounce = 100 * time.Millisecond

// Intervals carries the timing knobs a running handler can pick up
// from a changed config file. Address, host and credential changes are
// deliberately ignored: those are fixed for the handler lifetime.
type Intervals struct {
	Poll            time.Duration
	Send            time.Duration
	PollDurationMax time.Duration
}

// Watcher monitors a TOML config file and calls apply with the parsed
// intervals whenever the file changes.
type Watcher struct {
	path   string
	apply  func(Intervals)
	logger ports.Logger
}

// NewWatcher creates a watcher for the given config path.
func NewWatcher(path string, apply func(Intervals), logger ports.Logger) *Watcher {
	return &Watcher{path: path, apply: apply, logger: logger}
}

// Run watches until ctx is canceled. The parent directory is watched
// rather than the file itself so atomic rename-style rewrites are seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	var debounce *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watch error", ports.Err(err))

		case <-reload:
			w.reload()
		}
	}
}

// reload re-reads the file and applies any parseable intervals.
func (w *Watcher) reload() {
	fc, err := LoadFileConfig(w.path)
	if err != nil {
		w.logger.Warn("config reload failed", ports.Err(err))
		return
	}

	var iv Intervals
	if fc.PollInterval != "" {
		if d, err := time.ParseDuration(fc.PollInterval); err == nil {
			iv.Poll = d
		}
	}
	if fc.SendInterval != "" {
		if d, err := time.ParseDuration(fc.SendInterval); err == nil {
			iv.Send = d
		}
	}
	if fc.PollDurationMax != "" {
		if d, err := time.ParseDuration(fc.PollDurationMax); err == nil {
			iv.PollDurationMax = d
		}
	}
	if iv == (Intervals{}) {
		return
	}

	w.logger.Info("applying config file intervals",
		ports.Duration("poll", iv.Poll),
		ports.Duration("send", iv.Send),
	)
	w.apply(iv)
}
