package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Defaults for tuning values left at zero. The city center is downtown
// Toronto, the registry's service area.
const (
	DefaultCityCenterLat    = 43.6532
	DefaultCityCenterLon    = -79.3832
	DefaultPartialThreshold = 0.5
	DefaultCellTolerance    = 0.01
	DefaultWorkers          = 4
)

// defaultSearchPaths are tried in order by LoadDefault.
var defaultSearchPaths = []string{"config.yml", "./config/config.yml"}

// Default returns the configuration used when no config file exists.
func Default() AppConfig {
	var cfg AppConfig
	applyDefaults(&cfg)
	return cfg
}

// Load reads, validates and defaults a configuration file.
func Load(path string) (AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return AppConfig{}, fmt.Errorf("read config: %w", err)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return AppConfig{}, fmt.Errorf("validate config %s: %w", path, err)
	}
	applyDefaults(&cfg)
	return cfg, nil
}

// LoadDefault tries the standard config locations and falls back to the
// built-in defaults when none exists.
func LoadDefault() (AppConfig, error) {
	for _, p := range defaultSearchPaths {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}
	return Default(), nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Engine.CityCenterLat == 0 && cfg.Engine.CityCenterLon == 0 {
		cfg.Engine.CityCenterLat = DefaultCityCenterLat
		cfg.Engine.CityCenterLon = DefaultCityCenterLon
	}
	if cfg.Engine.PartialThreshold == 0 {
		cfg.Engine.PartialThreshold = DefaultPartialThreshold
	}
	if cfg.Engine.CellToleranceDeg == 0 {
		cfg.Engine.CellToleranceDeg = DefaultCellTolerance
	}
	if cfg.Engine.Workers == 0 {
		cfg.Engine.Workers = DefaultWorkers
	}
}
