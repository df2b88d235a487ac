//go:build !tinygo

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a device profile from disk. Files ending in .yaml or .yml
// are parsed as YAML, anything else as JSON.
func LoadFile(path string) (*DeviceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read device profile: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(data)
	default:
		cfg, err := LoadConfig(data)
		if err != nil {
			return nil, fmt.Errorf("parse device profile %s: %w", path, err)
		}
		return cfg, nil
	}
}

// LoadYAML parses a YAML device profile on top of the default profile
func LoadYAML(data []byte) (*DeviceConfig, error) {
	cfg := *DefaultPostureConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse device profile: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid device profile: %w", err)
	}
	return &cfg, nil
}
