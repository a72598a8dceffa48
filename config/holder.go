// Package config provides configuration loading and hot reload.
package config

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce collapses the burst of events an editor save produces
// into one reload.
const DefaultDebounce = 100 * time.Millisecond

// Holder provides thread-safe access to configuration with hot reload support.
//
// Reloads are serialized: listeners registered with OnChange never run
// concurrently, whether the reload came from the file watcher, SIGHUP or a
// direct Reload call.
type Holder struct {
	mu       sync.RWMutex
	config   *Config
	onChange []func(Change)

	reloadMu sync.Mutex

	path     string
	logger   zerolog.Logger
	debounce time.Duration
	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewHolder creates a new config holder and loads the initial configuration.
func NewHolder(path string, logger zerolog.Logger) (*Holder, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}

	return &Holder{
		config:   cfg,
		path:     absPath,
		logger:   logger,
		debounce: DefaultDebounce,
		stopCh:   make(chan struct{}),
	}, nil
}

// Get returns the current configuration.
func (h *Holder) Get() *Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.config
}

// Path returns the absolute path of the watched file.
func (h *Holder) Path() string {
	return h.path
}

// SetDebounce sets how long the file watcher waits for further events
// before reloading. Zero reloads on every event.
func (h *Holder) SetDebounce(d time.Duration) {
	h.debounce = d
}

// OnChange registers a callback run after each successful reload that
// changed at least one setting.
func (h *Holder) OnChange(fn func(Change)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = append(h.onChange, fn)
}

// Reload reads the file again and swaps it in. An invalid file keeps the
// current configuration and returns the error.
func (h *Holder) Reload() error {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()

	next, err := Load(h.path)
	if err != nil {
		h.logger.Error().Err(err).Str("path", h.path).Msg("config reload failed, keeping current config")
		return fmt.Errorf("reload config: %w", err)
	}

	h.mu.Lock()
	change := Diff(h.config, next)
	h.config = next
	listeners := append([]func(Change){}, h.onChange...)
	h.mu.Unlock()

	if change.Empty() {
		h.logger.Debug().Str("path", h.path).Msg("config reloaded, nothing changed")
		return nil
	}

	for _, f := range change.Fields {
		h.logger.Info().
			Str("field", f.Name).
			Str("old", f.Old).
			Str("new", f.New).
			Bool("restart_required", !f.Reloadable).
			Msg("config changed")
	}

	for _, fn := range listeners {
		fn(change)
	}
	return nil
}

// WatchFile reloads whenever the config file is written or replaced.
// The directory is watched so editors that save by rename are seen.
func (h *Holder) WatchFile() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(h.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}
	h.watcher = watcher

	go h.watchLoop(watcher)

	h.logger.Info().Str("path", h.path).Msg("watching config file for changes")
	return nil
}

// WatchSignals reloads on SIGHUP until Stop.
func (h *Holder) WatchSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)

	go func() {
		defer signal.Stop(sigCh)
		for {
			select {
			case <-sigCh:
				h.logger.Info().Msg("received SIGHUP")
				_ = h.Reload()
			case <-h.stopCh:
				return
			}
		}
	}()
}

// Stop ends file and signal watching. It is safe to call more than once.
func (h *Holder) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)
		if h.watcher != nil {
			h.watcher.Close()
		}
	})
}

func (h *Holder) watchLoop(watcher *fsnotify.Watcher) {
	name := filepath.Base(h.path)

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
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			h.logger.Debug().Str("event", event.Op.String()).Msg("config file changed")

			if h.debounce <= 0 {
				_ = h.Reload()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(h.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(h.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			_ = h.Reload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().Err(err).Msg("config watcher error")

		case <-h.stopCh:
			return
		}
	}
}
