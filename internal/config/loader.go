package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadResult carries the effective config plus non-fatal warnings gathered
// while defaulting malformed optional fields.
type LoadResult struct {
	Config   *Config
	Path     string
	Warnings []string
}

// DefaultConfigPath returns ~/.config/aerospacebar/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "aerospacebar", "config.yaml"), nil
}

// Load reads the configuration from the standard location. A missing file is
// not an error: built-in defaults apply.
func Load() (*Config, error) {
	res, err := LoadWithWarnings()
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// LoadWithWarnings is Load with the warning list preserved for callers that
// surface it (daemon startup, config validate).
func LoadWithWarnings() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads, defaults and validates the config at path.
func LoadFromPath(path string) (*LoadResult, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Fall through to defaults.
	case err != nil:
		return nil, fmt.Errorf("%s: failed to read: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%s: failed to parse: %w", path, err)
		}
	}

	warnings := applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &LoadResult{Config: cfg, Path: path, Warnings: warnings}, nil
}

// applyDefaults fills unset optional fields and repairs malformed ones,
// returning human-readable warnings for the repairs.
func applyDefaults(cfg *Config) []string {
	var warnings []string

	if cfg.AerospacePath == "" {
		cfg.AerospacePath = DefaultAerospacePath
	}
	if cfg.Bar.Position == "" {
		cfg.Bar.Position = PositionTop
	}
	if cfg.Bar.Size == 0 {
		cfg.Bar.Size = DefaultBarSize
	}
	if cfg.DebounceMS == 0 {
		cfg.DebounceMS = DefaultDebounceMS
	}
	if len(cfg.Widgets) == 0 {
		cfg.Widgets = DefaultWidgets()
	}
	warnings = append(warnings, cfg.normalizeColors()...)
	return warnings
}
