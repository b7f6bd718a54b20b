package config

import (
	"context"
	"fmt"
	"hash/fnv"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	yaml "go.yaml.in/yaml/v3"

	"github.com/julianstephens/versecue/internal/logger"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher reloads the config file when it changes and publishes every
// valid, changed result to its subscribers.
type Watcher struct {
	path     string
	debounce time.Duration

	mu       sync.Mutex
	lastHash uint64

	subsMu sync.Mutex
	subs   []chan *Config
}

type WatcherOption func(*Watcher)

func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// NewWatcher watches path. initial, when non-nil, is the config already in
// use; an identical reload is not published.
func NewWatcher(path string, initial *Config, opts ...WatcherOption) *Watcher {
	w := &Watcher{path: path, debounce: defaultDebounce, lastHash: hashConfig(initial)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Subscribe returns a channel receiving reloaded configs. A slow subscriber
// loses the oldest queued config, never the newest.
func (w *Watcher) Subscribe(buffer int) <-chan *Config {
	ch := make(chan *Config, buffer)
	w.subsMu.Lock()
	w.subs = append(w.subs, ch)
	w.subsMu.Unlock()
	return ch
}

func (w *Watcher) publish(cfg *Config) {
	w.subsMu.Lock()
	defer w.subsMu.Unlock()
	for _, ch := range w.subs {
		select {
		case ch <- cfg:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- cfg:
		default:
			logger.Debug("Config update dropped", "path", w.path)
		}
	}
}

func hashConfig(cfg *Config) uint64 {
	if cfg == nil {
		return 0
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return 0
	}
	h := fnv.New64a()
	_, _ = h.Write(b)
	return h.Sum64()
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		logger.Warn("Config reload rejected", "path", w.path, "error", err)
		return
	}

	h := hashConfig(cfg)
	w.mu.Lock()
	unchanged := h != 0 && h == w.lastHash
	if !unchanged {
		w.lastHash = h
	}
	w.mu.Unlock()
	if unchanged {
		logger.Debug("Config unchanged, skipping publish", "path", w.path)
		return
	}

	w.publish(cfg)
	logger.Info("Config reloaded", "path", w.path)
}

// Watch blocks until ctx is done. The parent directory is watched so
// editors that replace the file by rename are handled.
func (w *Watcher) Watch(ctx context.Context) error {
	path, err := ExpandPath(w.path)
	if err != nil {
		return err
	}
	dir, file := filepath.Dir(path), filepath.Base(path)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	logger.Debug("Config watcher started", "dir", dir, "file", file)

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !strings.EqualFold(filepath.Base(ev.Name), file) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timerMu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.reload)
			timerMu.Unlock()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Config watcher error", "error", err)
		}
	}
}
