package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != ":8080" || cfg.TickRate != 60 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if !cfg.PhysicsEnabled() {
		t.Fatalf("physics should default to enabled")
	}
	if !cfg.Snapshot.Compress {
		t.Fatalf("snapshot compression should default to enabled")
	}
}

func TestLoadOverridesKeepUnsetDefaults(t *testing.T) {
	path := writeConfig(t, "tick_rate: 30\nphysics: false\nsnapshot:\n  compress: false\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TickRate != 30 {
		t.Fatalf("tick_rate = %d, want 30", cfg.TickRate)
	}
	if cfg.PhysicsEnabled() {
		t.Fatalf("physics: false should disable the backend")
	}
	if cfg.Snapshot.Compress {
		t.Fatalf("snapshot compression should be off")
	}
	if cfg.Listen != ":8080" {
		t.Fatalf("unset listen should keep the default, got %q", cfg.Listen)
	}
	if cfg.Snapshot.EveryTicks != 3 {
		t.Fatalf("unset every_ticks should keep the default, got %d", cfg.Snapshot.EveryTicks)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name     string
		contents string
	}{
		{"zero_tick_rate", "tick_rate: -1\n"},
		{"zero_snapshot_interval", "snapshot:\n  every_ticks: -2\n"},
		{"not_yaml", "{{{{"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, c.contents)); err == nil {
				t.Fatalf("expected error for %q", c.contents)
			}
		})
	}
}

func TestFixedDelta(t *testing.T) {
	cfg := Config{TickRate: 20}
	if got := cfg.FixedDelta(); got != 0.05 {
		t.Fatalf("fixed delta = %v, want 0.05", got)
	}
}
