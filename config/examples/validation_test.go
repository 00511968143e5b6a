package examples_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/supporttools/pod-doctor/pkg/types"
	"github.com/supporttools/pod-doctor/pkg/util"
)

// TestExampleConfigs loads every example configuration and checks the values
// that differ from the defaults.
func TestExampleConfigs(t *testing.T) {
	t.Setenv("POD_DOCTOR_PORT", "8443")
	t.Setenv("METRICS_NAMESPACE", "poddoctor_prod")

	testCases := []struct {
		name     string
		filename string
		validate func(t *testing.T, c *types.PodDoctorConfig)
	}{
		{
			name:     "Minimal",
			filename: "minimal.yaml",
			validate: func(t *testing.T, c *types.PodDoctorConfig) {
				if c.Server.Port != types.DefaultHTTPPort {
					t.Errorf("port = %d, want default %d", c.Server.Port, types.DefaultHTTPPort)
				}
				if c.Server.MaxInputBytes != types.DefaultMaxInputBytes {
					t.Errorf("maxInputBytes = %d, want default", c.Server.MaxInputBytes)
				}
				if !c.Metrics.IsEnabled() {
					t.Error("metrics should be enabled by default")
				}
				if c.Reload.Enabled {
					t.Error("reload should be disabled by default")
				}
			},
		},
		{
			name:     "Development",
			filename: "development.yaml",
			validate: func(t *testing.T, c *types.PodDoctorConfig) {
				if c.Settings.LogLevel != "debug" || c.Settings.LogFormat != "text" {
					t.Errorf("settings = %+v", c.Settings)
				}
				if c.Server.BindAddress != "127.0.0.1" {
					t.Errorf("bindAddress = %q", c.Server.BindAddress)
				}
				if !c.Reload.Enabled || c.Reload.DebounceInterval != 250*time.Millisecond {
					t.Errorf("reload = %+v", c.Reload)
				}
			},
		},
		{
			name:     "Production",
			filename: "production.yaml",
			validate: func(t *testing.T, c *types.PodDoctorConfig) {
				if c.Server.Port != 8443 {
					t.Errorf("port = %d, want 8443 from environment", c.Server.Port)
				}
				if c.Server.ReadTimeout != 10*time.Second || c.Server.WriteTimeout != 30*time.Second {
					t.Errorf("timeouts = %v/%v", c.Server.ReadTimeout, c.Server.WriteTimeout)
				}
				if c.Server.MaxInputBytes != 4<<20 {
					t.Errorf("maxInputBytes = %d, want 4MiB", c.Server.MaxInputBytes)
				}
				if c.Metrics.Namespace != "poddoctor_prod" {
					t.Errorf("metrics namespace = %q, want value from environment", c.Metrics.Namespace)
				}
			},
		},
		{
			name:     "ProductionJSON",
			filename: "production.json",
			validate: func(t *testing.T, c *types.PodDoctorConfig) {
				if c.Settings.LogLevel != "warn" {
					t.Errorf("logLevel = %q, want warn", c.Settings.LogLevel)
				}
				if c.Metrics.IsEnabled() {
					t.Error("metrics should be disabled")
				}
				if c.Server.Port != 9000 {
					t.Errorf("port = %d, want 9000", c.Server.Port)
				}
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config, err := util.LoadConfig(filepath.Join(".", tc.filename))
			if err != nil {
				t.Fatalf("Failed to load %s: %v", tc.filename, err)
			}
			if config.Kind != types.DefaultKind {
				t.Errorf("kind = %q, want %q", config.Kind, types.DefaultKind)
			}
			tc.validate(t, config)
		})
	}
}

// TestExampleConfigsRoundTrip saves each example and loads it back.
func TestExampleConfigsRoundTrip(t *testing.T) {
	t.Setenv("POD_DOCTOR_PORT", "8443")
	t.Setenv("METRICS_NAMESPACE", "poddoctor_prod")

	for _, name := range []string{"minimal.yaml", "development.yaml", "production.yaml", "production.json"} {
		t.Run(name, func(t *testing.T) {
			loaded, err := util.LoadConfig(name)
			if err != nil {
				t.Fatalf("Failed to load %s: %v", name, err)
			}

			out := filepath.Join(t.TempDir(), "config"+filepath.Ext(name))
			if err := util.SaveConfig(loaded, out); err != nil {
				t.Fatalf("SaveConfig() error = %v", err)
			}

			reloaded, err := util.LoadConfig(out)
			if err != nil {
				t.Fatalf("Failed to reload saved config: %v", err)
			}
			if reloaded.Server != loaded.Server || reloaded.Settings != loaded.Settings {
				t.Errorf("round trip changed the config:\n got %+v\nwant %+v", reloaded, loaded)
			}
		})
	}
}
