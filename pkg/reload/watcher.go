// Package reload watches the Pod Doctor configuration file and applies
// changes to a running server.
package reload

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/supporttools/pod-doctor/pkg/logger"
	"github.com/supporttools/pod-doctor/pkg/types"
)

// ConfigWatcher watches a configuration file for changes and emits reload events.
type ConfigWatcher struct {
	configPath       string
	debounceInterval time.Duration
	watcher          *fsnotify.Watcher
	log              *logrus.Entry
	changeCh         chan struct{}
	mu               sync.Mutex
	running          bool
	stopCh           chan struct{}
}

// NewConfigWatcher creates a new configuration file watcher. A non-positive
// debounceInterval falls back to the configured default.
func NewConfigWatcher(configPath string, debounceInterval time.Duration) (*ConfigWatcher, error) {
	if configPath == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}

	if debounceInterval <= 0 {
		d, err := time.ParseDuration(types.DefaultDebounceInterval)
		if err != nil {
			return nil, fmt.Errorf("invalid default debounce interval: %w", err)
		}
		debounceInterval = d
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &ConfigWatcher{
		configPath:       configPath,
		debounceInterval: debounceInterval,
		watcher:          watcher,
		log:              logger.WithComponent("reload").WithField("path", configPath),
		changeCh:         make(chan struct{}, 1),
		stopCh:           make(chan struct{}),
	}, nil
}

// Start begins watching the configuration file. The returned channel receives
// one value per debounced burst of changes and is closed by Stop.
func (cw *ConfigWatcher) Start(ctx context.Context) (<-chan struct{}, error) {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.running {
		return nil, fmt.Errorf("watcher already running")
	}

	// Watch the directory so ConfigMap symlink swaps are seen.
	dir := filepath.Dir(cw.configPath)
	if err := cw.watcher.Add(dir); err != nil {
		return nil, fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	cw.running = true
	go cw.processEvents(ctx)

	cw.log.WithField("debounce", cw.debounceInterval.String()).Info("Watching configuration file")

	return cw.changeCh, nil
}

// Stop stops watching the configuration file. It is safe to call more than once.
func (cw *ConfigWatcher) Stop() {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if !cw.running {
		cw.watcher.Close()
		return
	}

	close(cw.stopCh)
	cw.watcher.Close()
	close(cw.changeCh)
	cw.running = false
}

func (cw *ConfigWatcher) processEvents(ctx context.Context) {
	var debounceTimer *time.Timer
	var timerCh <-chan time.Time

	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case <-cw.stopCh:
			return

		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if !cw.isConfigFileEvent(event) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cw.log.WithField("op", event.Op.String()).Debug("Configuration file changed")

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.NewTimer(cw.debounceInterval)
			timerCh = debounceTimer.C

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.log.WithError(err).Warn("File watcher error")

		case <-timerCh:
			cw.mu.Lock()
			if cw.running {
				select {
				case cw.changeCh <- struct{}{}:
				default:
					// a change is already pending
				}
			}
			cw.mu.Unlock()
			timerCh = nil
		}
	}
}

// isConfigFileEvent reports whether event concerns the watched file, either
// directly or through a ConfigMap "..data" symlink swap.
func (cw *ConfigWatcher) isConfigFileEvent(event fsnotify.Event) bool {
	eventPath := filepath.Clean(event.Name)
	configPath := filepath.Clean(cw.configPath)

	if eventPath == configPath {
		return true
	}

	return filepath.Base(eventPath) == "..data" && filepath.Dir(eventPath) == filepath.Dir(configPath)
}
