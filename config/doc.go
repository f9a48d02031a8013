// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml and validated using struct tags;
// defaults are applied after validation so a minimal file (or none at all)
// still yields a working engine.
package config
