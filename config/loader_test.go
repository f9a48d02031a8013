package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
engine:
  cityCenterLat: 45.5019
  cityCenterLon: -73.5674
  partialThreshold: 0.4
  workers: 8
paths:
  stops: data/stops.txt
  history: data/incidents.csv
  database: data/incidents.db
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Engine.CityCenterLat != 45.5019 || cfg.Engine.CityCenterLon != -73.5674 {
		t.Errorf("city center = (%v, %v), want Montreal", cfg.Engine.CityCenterLat, cfg.Engine.CityCenterLon)
	}
	if cfg.Engine.PartialThreshold != 0.4 {
		t.Errorf("partialThreshold = %v, want 0.4", cfg.Engine.PartialThreshold)
	}
	if cfg.Engine.Workers != 8 {
		t.Errorf("workers = %d, want 8", cfg.Engine.Workers)
	}
	// Unset tuning values pick up defaults.
	if cfg.Engine.CellToleranceDeg != DefaultCellTolerance {
		t.Errorf("cellToleranceDeg = %v, want default %v", cfg.Engine.CellToleranceDeg, DefaultCellTolerance)
	}
	if cfg.Paths.Stops != "data/stops.txt" {
		t.Errorf("stops path = %q", cfg.Paths.Stops)
	}
	if cfg.Paths.Artifact != "" {
		t.Errorf("artifact path = %q, want empty", cfg.Paths.Artifact)
	}
}

func TestLoadAppliesAllDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "paths:\n  stops: stops.txt\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.CityCenterLat != DefaultCityCenterLat || cfg.Engine.CityCenterLon != DefaultCityCenterLon {
		t.Errorf("city center = (%v, %v), want defaults", cfg.Engine.CityCenterLat, cfg.Engine.CityCenterLon)
	}
	if cfg.Engine.PartialThreshold != DefaultPartialThreshold {
		t.Errorf("partialThreshold = %v, want %v", cfg.Engine.PartialThreshold, DefaultPartialThreshold)
	}
	if cfg.Engine.Workers != DefaultWorkers {
		t.Errorf("workers = %d, want %d", cfg.Engine.Workers, DefaultWorkers)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"threshold above one", "engine:\n  partialThreshold: 1.5\n"},
		{"negative workers", "engine:\n  workers: -2\n"},
		{"latitude out of range", "engine:\n  cityCenterLat: 123\n"},
		{"not yaml", "engine: ["},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.body)); err == nil {
				t.Errorf("Load(%q) succeeded, want error", tc.body)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("Load on missing file succeeded, want error")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Engine.PartialThreshold != DefaultPartialThreshold {
		t.Errorf("partialThreshold = %v, want %v", cfg.Engine.PartialThreshold, DefaultPartialThreshold)
	}
	if cfg.Paths.Stops != "" {
		t.Errorf("stops path = %q, want empty", cfg.Paths.Stops)
	}
}
