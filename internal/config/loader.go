package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file name looked up in the
// current directory.
const DefaultConfigFile = "gosolve.yaml"

// XDGConfigFile is the configuration file name looked up in ConfigDir.
const XDGConfigFile = "config.yaml"

// ErrConfigNotFound is returned when an explicitly named configuration
// file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// Load returns the configuration in path applied over the defaults. An
// empty path searches with FindConfigFile; if nothing is found the
// defaults are returned. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	found := FindConfigFile(path)
	if found == "" {
		if path != "" {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(found) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", found, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", found, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", found, err)
	}
	return cfg, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for gosolve.yaml in the current directory
// 3. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	xdgConfig := filepath.Join(ConfigDir(), XDGConfigFile)
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}
	return ""
}
