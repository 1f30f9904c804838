package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Arena.Width != 800 || cfg.Arena.Height != 600 {
		t.Errorf("Expected default arena 800x600, got %vx%v", cfg.Arena.Width, cfg.Arena.Height)
	}
	if cfg.Population.Count != 100 {
		t.Errorf("Expected default count 100, got %d", cfg.Population.Count)
	}
	if cfg.Population.TargetFraction != 0.25 {
		t.Errorf("Expected default target fraction 0.25, got %v", cfg.Population.TargetFraction)
	}
	if err := cfg.validate(); err != nil {
		t.Errorf("Default config must validate, got %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Expected defaults for a missing file, got error %v", err)
	}
	if cfg.Audio.CacheCapacity != 50 {
		t.Errorf("Expected default cache capacity 50, got %d", cfg.Audio.CacheCapacity)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dotpop.toml")
	data := `
[arena]
width = 1024
height = 768

[population]
count = 60
target_fraction = 0.2

[effects.explosion]
capacity = 5
ttl = 0.4

[audio]
cache_capacity = 2
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Arena.Width != 1024 {
		t.Errorf("Expected arena width 1024, got %v", cfg.Arena.Width)
	}
	if cfg.Population.Count != 60 || cfg.Population.TargetFraction != 0.2 {
		t.Errorf("Expected population 60/0.2, got %d/%v", cfg.Population.Count, cfg.Population.TargetFraction)
	}
	if cfg.Effects.Explosion.Capacity != 5 {
		t.Errorf("Expected explosion capacity 5, got %d", cfg.Effects.Explosion.Capacity)
	}
	if cfg.Audio.CacheCapacity != 2 {
		t.Errorf("Expected cache capacity 2, got %d", cfg.Audio.CacheCapacity)
	}
	// Untouched sections keep their defaults.
	if cfg.Grid.CellSize != 48 {
		t.Errorf("Expected default cell size 48, got %v", cfg.Grid.CellSize)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	data := `
[grid]
cell_size = 4
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected validation error for cell_size below entity diameter")
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("DOTPOP_TEST_KEY", "value")
	if got := GetEnv("DOTPOP_TEST_KEY", "fallback"); got != "value" {
		t.Errorf("Expected env value, got %q", got)
	}
	if got := GetEnv("DOTPOP_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("Expected fallback, got %q", got)
	}
}
