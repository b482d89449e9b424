// Package config loads the termsheet driver's YAML configuration file
// and hot-reloads it on change.
package config

import (
	"os"
	"strconv"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Loader reads the driver config file and watches it for changes.
type Loader struct {
	path     string
	mu       sync.RWMutex
	current  *Driver
	onChange []func(*Driver)
	watcher  *fsnotify.Watcher
}

// NewLoader creates a Loader and performs the initial load, applying
// environment-variable overrides afterward.
func NewLoader(path string) (*Loader, error) {
	l := &Loader{path: path}
	cfg, err := l.load()
	if err != nil {
		return nil, err
	}
	l.current = cfg
	return l, nil
}

// Config returns the current (latest) configuration.
func (l *Loader) Config() *Driver {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// OnChange registers a callback invoked whenever the config reloads.
func (l *Loader) OnChange(fn func(*Driver)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Watch starts a background goroutine that hot-reloads the config on
// file changes. Call the returned stop function to clean up. It never
// touches anything the engine owns; only viewport/metrics/color settings
// reload live.
func (l *Loader) Watch() (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "config: create watcher")
	}
	if err := w.Add(l.path); err != nil {
		w.Close()
		return nil, errors.Wrapf(err, "config: watch %s", l.path)
	}
	l.watcher = w

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					cfg, err := l.load()
					if err != nil {
						continue
					}
					l.mu.Lock()
					l.current = cfg
					callbacks := make([]func(*Driver), len(l.onChange))
					copy(callbacks, l.onChange)
					l.mu.Unlock()
					for _, fn := range callbacks {
						fn(cfg)
					}
				}
			case <-w.Errors:
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }, nil
}

func (l *Loader) load() (*Driver, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: read %s", l.path)
	}
	var cfg Driver
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "config: parse %s", l.path)
	}
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Driver) {
	if cfg.Viewport.Rows == 0 {
		cfg.Viewport.Rows = 20
	}
	if cfg.Viewport.Cols == 0 {
		cfg.Viewport.Cols = 10
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9090"
	}
	if cfg.HistoryPath == "" {
		cfg.HistoryPath = "termsheet_history.db"
	}
}

// applyEnvOverrides lets TERMSHEET_ROWS / TERMSHEET_COLS / TERMSHEET_NO_COLOR
// take precedence over the file, for quick overrides without editing it.
func applyEnvOverrides(cfg *Driver) {
	if v := os.Getenv("TERMSHEET_ROWS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Viewport.Rows = n
		}
	}
	if v := os.Getenv("TERMSHEET_COLS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Viewport.Cols = n
		}
	}
	if v := os.Getenv("TERMSHEET_NO_COLOR"); v != "" {
		cfg.NoColor = v == "1" || v == "true"
	}
}
