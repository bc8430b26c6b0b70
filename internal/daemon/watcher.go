package daemon

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/jmylchreest/pimirror/internal/config"
)

// ConfigWatcher watches the config file for changes and validates new
// configs before handing them to the reload callback. A change that
// fails validation is logged and dropped, the previous config stays
// in effect.
type ConfigWatcher struct {
	mu     sync.RWMutex
	logger *slog.Logger

	// Path to watch
	configPath string

	watcher *fsnotify.Watcher

	// Current valid config
	currentConfig *config.Config

	// Callback for validated reloads
	onReloadCallback func(newConfig *config.Config)

	done chan struct{}

	running bool
}

// NewConfigWatcher creates a new ConfigWatcher for the config file at
// path, falling back to the default location when path is empty.
func NewConfigWatcher(path string, logger *slog.Logger) (*ConfigWatcher, error) {
	if path == "" {
		path = config.ConfigPath()
	}
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &ConfigWatcher{
		logger:     logger,
		configPath: path,
		watcher:    watcher,
		done:       make(chan struct{}),
	}, nil
}

// SetReloadCallback sets the callback to invoke when config is successfully reloaded.
func (w *ConfigWatcher) SetReloadCallback(callback func(newConfig *config.Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReloadCallback = callback
}

// Start begins watching the config file for changes.
func (w *ConfigWatcher) Start(ctx context.Context, initialConfig *config.Config) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.currentConfig = initialConfig
	w.done = make(chan struct{})
	w.mu.Unlock()

	// Watch the directory containing the file (more reliable for writes)
	dir := filepath.Dir(w.configPath)
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	go w.watch(ctx)

	w.logger.Debug("config watcher started", "path", w.configPath)
	return nil
}

// watch is the main watch loop.
func (w *ConfigWatcher) watch(ctx context.Context) {
	filename := filepath.Base(w.configPath)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			// Only care about our file
			if filepath.Base(event.Name) != filename {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.logger.Debug("config file changed", "file", w.configPath)
				w.reload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)

		case <-ctx.Done():
			return

		case <-w.done:
			return
		}
	}
}

// reload loads and validates the config file, updating the current
// config and notifying the callback when it parses cleanly.
func (w *ConfigWatcher) reload() {
	w.mu.RLock()
	callback := w.onReloadCallback
	w.mu.RUnlock()

	newConfig, err := config.LoadConfig(w.configPath)
	if err != nil {
		w.logger.Warn("config file changed but validation failed", "error", err)
		return
	}

	w.mu.Lock()
	w.currentConfig = newConfig
	w.mu.Unlock()

	w.logger.Info("config reloaded successfully")
	if callback != nil {
		callback(newConfig)
	}
}

// GetCurrentConfig returns the current valid configuration.
func (w *ConfigWatcher) GetCurrentConfig() *config.Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.currentConfig
}

// Stop stops watching the config file.
func (w *ConfigWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	w.running = false
	close(w.done)
	err := w.watcher.Close()
	w.logger.Debug("config watcher stopped")
	return err
}
