package acrylic

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// ErrConfigInvalid wraps JSON decode failures from LoadConfig.
var ErrConfigInvalid = errors.New("acrylic: invalid config")

// LoadConfig reads a JSON config from path. Out-of-range layer
// parameters are clamped, not rejected, so a loaded config is always
// usable as-is.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("acrylic: read config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", ErrConfigInvalid, path, err)
	}
	return cfg.normalized(), nil
}

// ConfigWatcher reloads a config file when it changes on disk.
type ConfigWatcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// WatchConfig watches path and calls onChange with the freshly loaded
// config after every write. The callback runs on the watcher goroutine;
// callers that feed the config into a live Scheduler must hand it over
// to the render thread themselves. Files that fail to parse are logged
// and skipped, keeping the last good config in effect.
func WatchConfig(path string, onChange func(Config)) (*ConfigWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("acrylic: watch config: %w", err)
	}
	// Watch the directory, not the file: editors and atomic writers
	// replace the file, which drops a direct watch.
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("acrylic: watch config: %w", err)
	}

	cw := &ConfigWatcher{watcher: w, done: make(chan struct{})}
	base := filepath.Base(path)
	go func() {
		defer close(cw.done)
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != base {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				cfg, err := LoadConfig(path)
				if err != nil {
					Logger().Warn("config reload failed",
						slog.String("path", path),
						slog.Any("error", err))
					continue
				}
				Logger().Info("config reloaded", slog.String("path", path))
				onChange(cfg)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				Logger().Warn("config watch error", slog.Any("error", err))
			}
		}
	}()
	return cw, nil
}

// Close stops watching. It is safe to call once.
func (cw *ConfigWatcher) Close() error {
	err := cw.watcher.Close()
	<-cw.done
	return err
}
