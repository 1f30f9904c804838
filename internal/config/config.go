// Package config provides the session configuration surface: a TOML file
// with defaults for every tunable, plus environment helpers for host
// settings like addresses and paths.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is everything a session consumes at creation time. All ceilings,
// counts and fractions live here; the engine hard-codes none of them.
type Config struct {
	Arena      ArenaConfig      `toml:"arena"`
	Grid       GridConfig       `toml:"grid"`
	Population PopulationConfig `toml:"population"`
	Effects    EffectsConfig    `toml:"effects"`
	Audio      AudioConfig      `toml:"audio"`
}

type ArenaConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

type GridConfig struct {
	// CellSize should be roughly 1.5-2x the largest entity diameter: small
	// enough to keep per-cell density low, large enough that point queries
	// stay within a 3x3 neighborhood.
	CellSize float64 `toml:"cell_size"`
}

type PopulationConfig struct {
	Count          int      `toml:"count"`
	TargetFraction float64  `toml:"target_fraction"`
	Categories     []string `toml:"categories"`
	Radius         float64  `toml:"radius"`
	MinSpeed       float64  `toml:"min_speed"`
	MaxSpeed       float64  `toml:"max_speed"`
	// ResolveCollisions enables entity-entity bouncing. Cosmetic: target
	// gameplay is correct either way.
	ResolveCollisions bool `toml:"resolve_collisions"`
}

type PoolConfig struct {
	Capacity int     `toml:"capacity"`
	TTL      float64 `toml:"ttl"`
}

type EffectsConfig struct {
	Explosion      PoolConfig `toml:"explosion"`
	Particle       PoolConfig `toml:"particle"`
	Trail          PoolConfig `toml:"trail"`
	ParticleBurst  int        `toml:"particle_burst"`
	ParticleSpread float64    `toml:"particle_spread"`
}

type AudioConfig struct {
	Enabled       bool `toml:"enabled"`
	CacheCapacity int  `toml:"cache_capacity"`
}

// Default returns the baseline configuration. Values follow the original
// game's tuning: a 100-dot wave with a quarter tagged as targets.
func Default() *Config {
	return &Config{
		Arena: ArenaConfig{Width: 800, Height: 600},
		Grid:  GridConfig{CellSize: 48},
		Population: PopulationConfig{
			Count:             100,
			TargetFraction:    0.25,
			Categories:        []string{"red", "blue", "green", "yellow", "purple"},
			Radius:            12,
			MinSpeed:          40,
			MaxSpeed:          140,
			ResolveCollisions: true,
		},
		Effects: EffectsConfig{
			Explosion:      PoolConfig{Capacity: 20, TTL: 0.5},
			Particle:       PoolConfig{Capacity: 100, TTL: 0.8},
			Trail:          PoolConfig{Capacity: 30, TTL: 0.35},
			ParticleBurst:  6,
			ParticleSpread: 8,
		},
		Audio: AudioConfig{Enabled: true, CacheCapacity: 50},
	}
}

// Load reads a TOML config file over the defaults. A missing path returns
// the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// validate rejects settings the engine cannot run with.
func (c *Config) validate() error {
	if c.Arena.Width <= 0 || c.Arena.Height <= 0 {
		return fmt.Errorf("arena dimensions must be positive, got %vx%v", c.Arena.Width, c.Arena.Height)
	}
	if c.Grid.CellSize <= 0 {
		return fmt.Errorf("grid cell_size must be positive, got %v", c.Grid.CellSize)
	}
	if c.Grid.CellSize < 2*c.Population.Radius {
		return fmt.Errorf("grid cell_size %v must be >= entity diameter %v", c.Grid.CellSize, 2*c.Population.Radius)
	}
	if c.Population.Count < 0 {
		return fmt.Errorf("population count must be >= 0, got %d", c.Population.Count)
	}
	if c.Population.TargetFraction < 0 || c.Population.TargetFraction > 1 {
		return fmt.Errorf("target_fraction must be in [0,1], got %v", c.Population.TargetFraction)
	}
	if len(c.Population.Categories) == 0 {
		return fmt.Errorf("population needs at least one category")
	}
	return nil
}
