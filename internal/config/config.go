package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// configDir returns the platform-appropriate config directory
func configDir() (string, error) {
	configHome, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configHome, "gopher-bridge"), nil
}

// DefaultDevicePath returns the default location of the devices file
func DefaultDevicePath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "devices.json"), nil
}

// DefaultMapPath returns the default location of the mapping file
func DefaultMapPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "map.json"), nil
}

// LoadDeviceConfig reads and validates the device table from a JSON file
func LoadDeviceConfig(path string) (*DeviceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read device config %s: %w", path, err)
	}

	var cfg DeviceConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse device config: %w", err)
	}
	if cfg.Devices == nil {
		cfg.Devices = map[string]Device{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid device config: %w", err)
	}
	return &cfg, nil
}

// LoadMapConfig reads and validates the mapping configuration from a JSON file
func LoadMapConfig(path string) (*MapConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read map config %s: %w", path, err)
	}

	var cfg MapConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse map config: %w", err)
	}
	if cfg.OscDestinations == nil {
		cfg.OscDestinations = map[string]OscDestination{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid map config: %w", err)
	}
	return &cfg, nil
}

// Save writes a device config to disk, creating the directory if needed
func (c *DeviceConfig) Save(path string) error {
	return saveJSON(path, c)
}

// Save writes a map config to disk, creating the directory if needed
func (c *MapConfig) Save(path string) error {
	return saveJSON(path, c)
}

func saveJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
