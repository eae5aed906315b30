// Package config handles loading and providing scry's configuration
// from .scry.yaml files with sensible defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration loaded from .scry.yaml.
type Config struct {
	// RegistryPath points at the curated stdlib whitelist description
	// (§6.2, §6.4). A missing file at this path yields an empty
	// registry, not an error.
	RegistryPath string `yaml:"registry_path"`

	// MaxIterations bounds fixed-point iteration over a cyclic SCC
	// (§4.7).
	MaxIterations int `yaml:"max_iterations"`

	// Permissive controls whether unresolved application modules are
	// reported as project-level errors or silently treated as Unknown
	// (§6.3).
	Permissive bool `yaml:"permissive"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		RegistryPath:  ".scry/registry.yaml",
		MaxIterations: 10,
		Permissive:    false,
	}
}

// Load reads a .scry.yaml configuration file from path. If the file
// does not exist, it returns Default without error. If the file exists
// but is invalid, it returns an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %q: %w", path, err)
	}
	return cfg, nil
}
