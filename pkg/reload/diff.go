package reload

import (
	"reflect"
	"strings"

	"github.com/supporttools/pod-doctor/pkg/types"
)

// ConfigDiff records which configuration sections changed between two loads.
type ConfigDiff struct {
	SettingsChanged bool
	ServerChanged   bool
	MetricsChanged  bool
	ReloadChanged   bool
}

// ComputeConfigDiff compares two configurations section by section.
func ComputeConfigDiff(oldConfig, newConfig *types.PodDoctorConfig) *ConfigDiff {
	return &ConfigDiff{
		SettingsChanged: !reflect.DeepEqual(oldConfig.Settings, newConfig.Settings),
		ServerChanged:   !reflect.DeepEqual(oldConfig.Server, newConfig.Server),
		MetricsChanged:  !reflect.DeepEqual(oldConfig.Metrics, newConfig.Metrics),
		ReloadChanged:   !reflect.DeepEqual(oldConfig.Reload, newConfig.Reload),
	}
}

// HasChanges returns true if any section changed.
func (d *ConfigDiff) HasChanges() bool {
	return d.SettingsChanged || d.ServerChanged || d.MetricsChanged || d.ReloadChanged
}

// RequiresRestart reports whether the diff touches sections that are only
// read at startup.
func (d *ConfigDiff) RequiresRestart() bool {
	return d.ServerChanged || d.MetricsChanged || d.ReloadChanged
}

// String lists the changed sections, e.g. "settings, server".
func (d *ConfigDiff) String() string {
	changes := make([]string, 0, 4)
	if d.SettingsChanged {
		changes = append(changes, "settings")
	}
	if d.ServerChanged {
		changes = append(changes, "server")
	}
	if d.MetricsChanged {
		changes = append(changes, "metrics")
	}
	if d.ReloadChanged {
		changes = append(changes, "reload")
	}
	if len(changes) == 0 {
		return "none"
	}
	return strings.Join(changes, ", ")
}
