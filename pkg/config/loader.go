package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

const debounceDuration = 100 * time.Millisecond

// Loader handles loading and watching the configuration file.
type Loader struct {
	path     string
	watcher  *fsnotify.Watcher
	current  *Config
	mu       sync.RWMutex
	onChange func(*Config)
	close    chan struct{}
	once     sync.Once

	// OnReloadError, when set, is called for reload attempts that fail to
	// parse or validate. The previous configuration stays active.
	OnReloadError func(error)
}

// NewLoader creates a Loader for the given path.
func NewLoader(path string) (*Loader, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	return &Loader{
		path:  absPath,
		close: make(chan struct{}),
	}, nil
}

// Load reads the configuration file, expands environment variables, parses
// YAML, applies environment overrides, and validates. A missing file is not
// an error: the service then runs on defaults plus environment, the way the
// containerized deployment configures it.
func (l *Loader) Load() (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(l.path)
	switch {
	case os.IsNotExist(err):
		// Defaults + env only.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		expanded := []byte(os.ExpandEnv(string(data)))
		if err := yaml.Unmarshal(expanded, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	ApplyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	l.mu.Lock()
	l.current = cfg
	l.mu.Unlock()

	return cfg, nil
}

// Current returns the most recently loaded configuration, or nil before the
// first Load.
func (l *Loader) Current() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// Watch starts monitoring the config file for changes and calls onChange
// with each successfully reloaded configuration. Invalid intermediate
// states are skipped so a half-written file never reaches the service.
func (l *Loader) Watch(onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	l.watcher = watcher
	l.onChange = onChange

	go l.watchLoop()

	// Watch the directory: editors often replace the file atomically via
	// rename, which a file-level watch would miss.
	dir := filepath.Dir(l.path)
	if err := l.watcher.Add(dir); err != nil {
		_ = l.watcher.Close()
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	return nil
}

func (l *Loader) watchLoop() {
	var debounce *time.Timer

	for {
		select {
		case <-l.close:
			return
		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != l.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(debounceDuration, l.reload)
			}
		case _, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (l *Loader) reload() {
	cfg, err := l.Load()
	if err != nil {
		if l.OnReloadError != nil {
			l.OnReloadError(err)
		}
		return
	}
	if l.onChange != nil {
		l.onChange(cfg)
	}
}

// Close stops the watcher.
func (l *Loader) Close() error {
	l.once.Do(func() { close(l.close) })
	if l.watcher != nil {
		return l.watcher.Close()
	}
	return nil
}
