package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the server's runtime configuration. Zero values are filled with
// defaults, so an empty file is a valid config.
type Config struct {
	Listen    string  `yaml:"listen"`
	TickRate  int     `yaml:"tick_rate"`
	Gravity   float64 `yaml:"gravity"`
	Physics   *bool   `yaml:"physics"`
	PrefabDir string  `yaml:"prefab_dir"`

	Snapshot SnapshotConfig `yaml:"snapshot"`
}

// SnapshotConfig controls world state broadcasting.
type SnapshotConfig struct {
	// EveryTicks is how many simulation ticks pass between snapshots.
	EveryTicks int  `yaml:"every_ticks"`
	Compress   bool `yaml:"compress"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	physics := true
	return Config{
		Listen:    ":8080",
		TickRate:  60,
		Gravity:   -9.81,
		Physics:   &physics,
		PrefabDir: "prefabs",
		Snapshot: SnapshotConfig{
			EveryTicks: 3,
			Compress:   true,
		},
	}
}

// Load reads a yaml config file and fills unset fields with defaults. An
// empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	// Unmarshal over the defaults: fields absent from the file keep them.
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("config: parse %s: %w", path, err)
	}

	if cfg.TickRate <= 0 {
		return cfg, fmt.Errorf("config: tick_rate must be positive, got %d", cfg.TickRate)
	}
	if cfg.Snapshot.EveryTicks <= 0 {
		return cfg, fmt.Errorf("config: snapshot.every_ticks must be positive, got %d", cfg.Snapshot.EveryTicks)
	}
	return cfg, nil
}

// PhysicsEnabled reports whether this role runs a physics backend.
func (c Config) PhysicsEnabled() bool {
	return c.Physics == nil || *c.Physics
}

// FixedDelta returns the fixed simulation step in seconds.
func (c Config) FixedDelta() float64 {
	if c.TickRate <= 0 {
		return 1.0 / 60
	}
	return 1.0 / float64(c.TickRate)
}
