// Package types defines configuration types for Pod Doctor.
package types

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Package-level defaults
const (
	DefaultAPIVersion       = "pod-doctor.io/v1alpha1"
	DefaultKind             = "PodDoctorConfig"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultLogOutput        = "stdout"
	DefaultHTTPPort         = 8080
	DefaultHTTPBindAddress  = "0.0.0.0"
	DefaultReadTimeout      = "5s"
	DefaultWriteTimeout     = "10s"
	DefaultMaxInputBytes    = 1 << 20 // 1MiB
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "pod_doctor"
	DefaultDebounceInterval = "500ms"
	MaxInputBytesLimit      = 64 << 20
)

var (
	// Prometheus namespace validation regex
	prometheusNamespaceRegex = regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_:]*$`)

	validLogLevels = map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	validLogFormats = map[string]bool{
		"json": true,
		"text": true,
	}

	validLogOutputs = map[string]bool{
		"stdout": true,
		"stderr": true,
		"file":   true,
	}
)

// PodDoctorConfig is the top-level configuration structure.
type PodDoctorConfig struct {
	// APIVersion of the configuration schema
	APIVersion string `json:"apiVersion" yaml:"apiVersion"`

	// Kind of resource (always "PodDoctorConfig")
	Kind string `json:"kind" yaml:"kind"`

	// Settings contains logging configuration
	Settings GlobalSettings `json:"settings" yaml:"settings"`

	// Server contains the HTTP adapter configuration
	Server ServerConfig `json:"server" yaml:"server"`

	// Metrics contains Prometheus metrics configuration
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// Reload contains configuration hot reload settings
	Reload ReloadConfig `json:"reload,omitempty" yaml:"reload,omitempty"`
}

// GlobalSettings contains global configuration settings.
type GlobalSettings struct {
	LogLevel  string `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`
	LogFormat string `json:"logFormat,omitempty" yaml:"logFormat,omitempty"`
	LogOutput string `json:"logOutput,omitempty" yaml:"logOutput,omitempty"`
	LogFile   string `json:"logFile,omitempty" yaml:"logFile,omitempty"`
}

// ServerConfig configures the HTTP adapter.
type ServerConfig struct {
	BindAddress string `json:"bindAddress,omitempty" yaml:"bindAddress,omitempty"`
	Port        int    `json:"port,omitempty" yaml:"port,omitempty"`

	// Timeouts (stored as strings, parsed to time.Duration)
	ReadTimeoutString  string `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty"`
	WriteTimeoutString string `json:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty"`

	ReadTimeout  time.Duration `json:"-" yaml:"-"`
	WriteTimeout time.Duration `json:"-" yaml:"-"`

	// MaxInputBytes caps the size of a submitted log body.
	MaxInputBytes int64 `json:"maxInputBytes,omitempty" yaml:"maxInputBytes,omitempty"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled is a pointer so that an absent field defaults to true.
	Enabled   *bool  `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Path      string `json:"path,omitempty" yaml:"path,omitempty"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// IsEnabled reports whether metrics should be collected and served.
func (m *MetricsConfig) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

// ReloadConfig contains configuration hot reload settings.
type ReloadConfig struct {
	// Enabled indicates whether hot reload is enabled
	Enabled bool `json:"enabled" yaml:"enabled"`

	// DebounceIntervalString is the debounce interval as a string (e.g., "500ms")
	DebounceIntervalString string `json:"debounceInterval,omitempty" yaml:"debounceInterval,omitempty"`

	// DebounceInterval is the parsed debounce duration
	DebounceInterval time.Duration `json:"-" yaml:"-"`
}

// ApplyDefaults applies default values to the configuration.
func (c *PodDoctorConfig) ApplyDefaults() error {
	if c.APIVersion == "" {
		c.APIVersion = DefaultAPIVersion
	}
	if c.Kind == "" {
		c.Kind = DefaultKind
	}

	c.Settings.ApplyDefaults()

	if err := c.Server.ApplyDefaults(); err != nil {
		return fmt.Errorf("failed to apply defaults to server: %w", err)
	}

	c.Metrics.ApplyDefaults()

	if err := c.Reload.ApplyDefaults(); err != nil {
		return fmt.Errorf("failed to apply defaults to reload: %w", err)
	}

	return nil
}

// ApplyDefaults applies default values to GlobalSettings.
func (s *GlobalSettings) ApplyDefaults() {
	if s.LogLevel == "" {
		s.LogLevel = DefaultLogLevel
	}
	if s.LogFormat == "" {
		s.LogFormat = DefaultLogFormat
	}
	if s.LogOutput == "" {
		s.LogOutput = DefaultLogOutput
	}
}

// ApplyDefaults applies default values to ServerConfig and parses its durations.
func (s *ServerConfig) ApplyDefaults() error {
	if s.BindAddress == "" {
		s.BindAddress = DefaultHTTPBindAddress
	}
	if s.Port == 0 {
		s.Port = DefaultHTTPPort
	}
	if s.ReadTimeoutString == "" {
		s.ReadTimeoutString = DefaultReadTimeout
	}
	if s.WriteTimeoutString == "" {
		s.WriteTimeoutString = DefaultWriteTimeout
	}
	if s.MaxInputBytes == 0 {
		s.MaxInputBytes = DefaultMaxInputBytes
	}

	var err error
	s.ReadTimeout, err = time.ParseDuration(s.ReadTimeoutString)
	if err != nil {
		return fmt.Errorf("invalid readTimeout %q: %w", s.ReadTimeoutString, err)
	}
	s.WriteTimeout, err = time.ParseDuration(s.WriteTimeoutString)
	if err != nil {
		return fmt.Errorf("invalid writeTimeout %q: %w", s.WriteTimeoutString, err)
	}

	return nil
}

// ApplyDefaults applies default values to MetricsConfig.
func (m *MetricsConfig) ApplyDefaults() {
	if m.Path == "" {
		m.Path = DefaultMetricsPath
	}
	if m.Namespace == "" {
		m.Namespace = DefaultMetricsNamespace
	}
}

// ApplyDefaults applies default values to reload configuration.
func (r *ReloadConfig) ApplyDefaults() error {
	if r.DebounceIntervalString == "" {
		r.DebounceIntervalString = DefaultDebounceInterval
	}

	duration, err := time.ParseDuration(r.DebounceIntervalString)
	if err != nil {
		return fmt.Errorf("invalid debounceInterval %q: %w", r.DebounceIntervalString, err)
	}
	r.DebounceInterval = duration

	return nil
}

// Validate validates the configuration. ApplyDefaults must be called first.
func (c *PodDoctorConfig) Validate() error {
	if c.APIVersion == "" {
		return fmt.Errorf("apiVersion is required")
	}
	if c.Kind != DefaultKind {
		return fmt.Errorf("kind must be %q, got %q", DefaultKind, c.Kind)
	}

	if err := c.Settings.Validate(); err != nil {
		return fmt.Errorf("settings validation failed: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server validation failed: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics validation failed: %w", err)
	}
	if c.Reload.Enabled && c.Reload.DebounceInterval <= 0 {
		return fmt.Errorf("reload validation failed: debounceInterval must be positive, got %v", c.Reload.DebounceInterval)
	}

	return nil
}

// Validate validates the GlobalSettings configuration.
func (s *GlobalSettings) Validate() error {
	if !validLogLevels[s.LogLevel] {
		return fmt.Errorf("invalid logLevel %q, must be one of: debug, info, warn, error, fatal", s.LogLevel)
	}
	if !validLogFormats[s.LogFormat] {
		return fmt.Errorf("invalid logFormat %q, must be one of: json, text", s.LogFormat)
	}
	if !validLogOutputs[s.LogOutput] {
		return fmt.Errorf("invalid logOutput %q, must be one of: stdout, stderr, file", s.LogOutput)
	}
	if s.LogOutput == "file" && s.LogFile == "" {
		return fmt.Errorf("logFile is required when logOutput is 'file'")
	}
	return nil
}

// Validate validates the ServerConfig configuration.
func (s *ServerConfig) Validate() error {
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("port must be in range 1-65535, got %d", s.Port)
	}
	if s.ReadTimeout <= 0 {
		return fmt.Errorf("readTimeout must be positive, got %v", s.ReadTimeout)
	}
	if s.WriteTimeout <= 0 {
		return fmt.Errorf("writeTimeout must be positive, got %v", s.WriteTimeout)
	}
	if s.MaxInputBytes <= 0 || s.MaxInputBytes > MaxInputBytesLimit {
		return fmt.Errorf("maxInputBytes must be in range 1-%d, got %d", MaxInputBytesLimit, s.MaxInputBytes)
	}
	return nil
}

// Validate validates the MetricsConfig configuration.
func (m *MetricsConfig) Validate() error {
	if !m.IsEnabled() {
		return nil
	}
	if !strings.HasPrefix(m.Path, "/") {
		return fmt.Errorf("path must start with '/', got %q", m.Path)
	}
	if m.Path == "/" || strings.HasPrefix(m.Path, "/api/") {
		return fmt.Errorf("path %q collides with an application route", m.Path)
	}
	if !prometheusNamespaceRegex.MatchString(m.Namespace) {
		return fmt.Errorf("namespace %q is invalid, must match pattern ^[a-zA-Z_:][a-zA-Z0-9_:]*$", m.Namespace)
	}
	return nil
}
