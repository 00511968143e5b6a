// Package util provides configuration loading helpers for Pod Doctor.
package util

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/supporttools/pod-doctor/pkg/types"
)

const (
	formatYAML = "yaml"
	formatJSON = "json"
)

// configFormat maps a file extension to a config format. Files without a
// known extension are read as YAML, which also accepts JSON documents.
func configFormat(path string, strict bool) (string, error) {
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		return formatYAML, nil
	case ".json":
		return formatJSON, nil
	default:
		if strict {
			return "", fmt.Errorf("unsupported file extension: %q (use .yaml, .yml, or .json)", ext)
		}
		return formatYAML, nil
	}
}

// LoadConfig reads a PodDoctorConfig from path.
//
// ${VAR} references are expanded once over the raw file, so they work in any
// field including numbers (port: ${PORT}). Unknown keys are rejected. Defaults
// are applied and the result is validated.
func LoadConfig(path string) (*types.PodDoctorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	format, _ := configFormat(path, false)
	config, err := decodeConfig(os.ExpandEnv(string(data)), format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func decodeConfig(data, format string) (*types.PodDoctorConfig, error) {
	var config types.PodDoctorConfig

	if format == formatJSON {
		dec := json.NewDecoder(bytes.NewBufferString(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&config); err != nil {
			return nil, err
		}
		return &config, nil
	}

	dec := yaml.NewDecoder(bytes.NewBufferString(data))
	dec.KnownFields(true)
	// An empty document leaves every field to the defaults.
	if err := dec.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &config, nil
}

// LoadConfigOrDefault loads path, or returns DefaultConfig when it does not exist.
func LoadConfigOrDefault(path string) (*types.PodDoctorConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig()
	}
	return LoadConfig(path)
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() (*types.PodDoctorConfig, error) {
	config := &types.PodDoctorConfig{}
	if err := config.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("default config validation failed: %w", err)
	}
	return config, nil
}

// SaveConfig writes config to path as YAML or JSON, chosen by extension.
func SaveConfig(config *types.PodDoctorConfig, path string) error {
	format, err := configFormat(path, true)
	if err != nil {
		return err
	}

	var data []byte
	if format == formatJSON {
		data, err = json.MarshalIndent(config, "", "  ")
	} else {
		data, err = yaml.Marshal(config)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
