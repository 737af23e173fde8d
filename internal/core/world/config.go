package world

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/ecsworld/internal/core/batch"
)

// Config is the world-level configuration of spec §6 "Configuration": the
// only knobs external to the schedule itself.
type Config struct {
	// FPSLimit caps how often a frame may begin, in frames per second. Zero
	// means unlimited (spec's fps_limit ∈ ℕ⁺ ∪ {unlimited}).
	FPSLimit int `yaml:"fps_limit"`

	// DebugEnabled gates World.DebugSnapshot (spec §6 "Debug surface").
	DebugEnabled bool `yaml:"debug_enabled"`

	// StartupEvents is batched into the first frame's frame_data before any
	// startup system runs (spec §6 "Startup events").
	StartupEvents []batch.Event `yaml:"-"`
}

// Validate rejects a negative FPSLimit (spec §7 BadConfig). StartupEvents
// carries no constraint of its own: an empty or nil slice is valid.
func (c Config) Validate() error {
	if c.FPSLimit < 0 {
		return fmt.Errorf("%w: fps_limit must be >= 0, got %d", ErrBadConfig, c.FPSLimit)
	}
	return nil
}

// LoadConfig reads a Config from a YAML file, the way the teacher's
// internal/core/npc/loader.go loads its own YAML-sourced configuration.
// StartupEvents is never sourced from YAML; callers set it in code after
// loading.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, nil
}
