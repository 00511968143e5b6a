package reload

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/supporttools/pod-doctor/pkg/logger"
	"github.com/supporttools/pod-doctor/pkg/types"
	"github.com/supporttools/pod-doctor/pkg/util"
)

// ReloadCallback applies a newly loaded configuration.
type ReloadCallback func(ctx context.Context, newConfig *types.PodDoctorConfig, diff *ConfigDiff) error

// ReloadCoordinator loads the configuration file on demand, compares it with
// the active configuration and hands changes to a callback.
type ReloadCoordinator struct {
	configPath       string
	currentConfig    *types.PodDoctorConfig
	reloadCallback   ReloadCallback
	log              *logrus.Entry
	mu               sync.Mutex
	reloadInProgress bool
}

// NewReloadCoordinator creates a new reload coordinator.
func NewReloadCoordinator(configPath string, initialConfig *types.PodDoctorConfig, reloadCallback ReloadCallback) *ReloadCoordinator {
	return &ReloadCoordinator{
		configPath:     configPath,
		currentConfig:  initialConfig,
		reloadCallback: reloadCallback,
		log:            logger.WithComponent("reload"),
	}
}

// TriggerReload reloads the configuration from disk. Only one reload runs at a
// time; a concurrent call returns an error. An invalid file leaves the active
// configuration unchanged.
func (rc *ReloadCoordinator) TriggerReload(ctx context.Context) error {
	rc.mu.Lock()
	if rc.reloadInProgress {
		rc.mu.Unlock()
		return fmt.Errorf("reload already in progress")
	}
	rc.reloadInProgress = true
	rc.mu.Unlock()

	defer func() {
		rc.mu.Lock()
		rc.reloadInProgress = false
		rc.mu.Unlock()
	}()

	return rc.performReload(ctx)
}

func (rc *ReloadCoordinator) performReload(ctx context.Context) error {
	startTime := time.Now()

	newConfig, err := util.LoadConfig(rc.configPath)
	if err != nil {
		rc.log.WithError(err).Warn("Configuration reload failed, keeping current configuration")
		return fmt.Errorf("failed to load config: %w", err)
	}

	rc.mu.Lock()
	diff := ComputeConfigDiff(rc.currentConfig, newConfig)
	rc.mu.Unlock()

	if !diff.HasChanges() {
		rc.log.Info("Configuration reload completed with no changes")
		return nil
	}

	if rc.reloadCallback != nil {
		if err := rc.reloadCallback(ctx, newConfig, diff); err != nil {
			rc.log.WithError(err).Warn("Failed to apply configuration changes")
			return fmt.Errorf("failed to apply changes: %w", err)
		}
	}

	rc.mu.Lock()
	rc.currentConfig = newConfig
	rc.mu.Unlock()

	entry := rc.log.WithFields(logrus.Fields{
		"changed":  diff.String(),
		"duration": time.Since(startTime).Round(time.Millisecond).String(),
	})
	if diff.RequiresRestart() {
		entry.Warn("Configuration reloaded; changes to startup-only sections take effect after restart")
	} else {
		entry.Info("Configuration reloaded")
	}

	return nil
}

// GetCurrentConfig returns the active configuration.
func (rc *ReloadCoordinator) GetCurrentConfig() *types.PodDoctorConfig {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.currentConfig
}

// Run triggers a reload for every event on changes until ctx is done or
// changes is closed.
func (rc *ReloadCoordinator) Run(ctx context.Context, changes <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			if err := rc.TriggerReload(ctx); err != nil {
				rc.log.WithError(err).Debug("Reload attempt did not apply")
			}
		}
	}
}
