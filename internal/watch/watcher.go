// Package watch monitors the cards directory and fires a debounced callback
// when card files change.
//
// Events arriving within the debounce window are coalesced so the callback
// runs once with the deduplicated set of changed file names.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/vcf"
)

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Dir is the cards directory. It is watched non-recursively.
		Dir string

		// Debounce is the quiet period after the last event. Zero or negative
		// values fall back to config.DebounceWindow.
		Debounce time.Duration

		// OnChange receives the base names of the changed card files.
		OnChange func(ctx context.Context, changed []string) error
	}

	// Watcher fires OnChange after card files in Dir are created, written,
	// removed or renamed. Run must be called exactly once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		debounce time.Duration
		started  atomic.Bool
	}
)

// New registers cfg.Dir with a fresh fsnotify watcher.
func New(cfg Config) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, errors.New(config.ErrLocalPathEmpty)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrWatcher, err)
	}
	if err := fsw.Add(cfg.Dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("%s: %w", config.ErrWatcher, err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = config.DebounceWindow
	}
	return &Watcher{cfg: cfg, fsw: fsw, debounce: debounce}, nil
}

// Run processes events until ctx is cancelled. It returns nil on cancellation
// and an error when the underlying watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New(config.ErrWatcherRunning)
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	// fire may run after cancellation since it is scheduled by AfterFunc.
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		slog.Info(config.MsgWatchEvent,
			config.LogKeyComponent, config.CompWatcher,
			config.LogKeyCount, len(changed),
		)
		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				slog.Error(config.ErrWatchCallback,
					config.LogKeyComponent, config.CompWatcher,
					config.LogKeyError, err,
				)
			}
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		_ = w.fsw.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New(config.ErrWatcherClosed)
			}
			if !relevant(evt) {
				continue
			}
			slog.Debug(config.MsgWatchEvent,
				config.LogKeyComponent, config.CompWatcher,
				config.LogKeyFile, evt.Name,
				config.LogKeyOp, evt.Op.String(),
			)

			mu.Lock()
			pending[filepath.Base(evt.Name)] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New(config.ErrWatcherClosed)
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				slog.Warn(config.ErrWatcher,
					config.LogKeyComponent, config.CompWatcher,
					config.LogKeyError, err,
				)
				continue
			}
			return fmt.Errorf("%s: %w", config.ErrWatcher, err)
		}
	}
}

// relevant reports whether evt touches a card file in a way that changes the
// library. Chmod-only events are ignored.
func relevant(evt fsnotify.Event) bool {
	if evt.Op == fsnotify.Chmod {
		return false
	}
	return vcf.HasCardExtension(evt.Name)
}
