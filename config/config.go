// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World      WorldConfig      `yaml:"world"`
	Tick       TickConfig       `yaml:"tick"`
	Population PopulationConfig `yaml:"population"`
	Energy     EnergyConfig     `yaml:"energy"`
	Mating     MatingConfig     `yaml:"mating"`
	Combat     CombatConfig     `yaml:"combat"`
	Mutation   MutationConfig   `yaml:"mutation"`
	Fractal    FractalConfig    `yaml:"fractal"`
	Mesh       MeshConfig       `yaml:"mesh"`
	Export     ExportConfig     `yaml:"export"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

// WorldConfig holds world dimensions. The world is a Size x Size plane;
// creatures are clamped to a margin inside it and to a thin band above z=0.
type WorldConfig struct {
	Size float64 `yaml:"size"`
}

// TickConfig holds pacing parameters for the host scheduler.
// The simulator itself has no timing logic; the interval is consumed by main.
type TickConfig struct {
	Interval float64 `yaml:"interval"` // Seconds between ticks
}

// PopulationConfig holds population targets. Both counts are topped up
// every tick, which is what keeps the simulation running indefinitely.
type PopulationConfig struct {
	MaxCreatures int `yaml:"max_creatures"`
	MaxPlants    int `yaml:"max_plants"`
}

// EnergyConfig holds the energy economy constants.
type EnergyConfig struct {
	Start             float64 `yaml:"start"`              // Energy at birth
	MovementCost      float64 `yaml:"movement_cost"`      // Cost of a directed move
	IdleCost          float64 `yaml:"idle_cost"`          // Cost of existing, every tick
	PlantEnergy       float64 `yaml:"plant_energy"`       // Base yield of a fresh plant
	EatRange          float64 `yaml:"eat_range"`          // Distance within which a plant can be eaten
	DeathThreshold    float64 `yaml:"death_threshold"`    // Energy at or below this = dead
	SatiatedThreshold float64 `yaml:"satiated_threshold"` // At or above this, seek a mate instead of food
}

// MatingConfig holds reproduction parameters.
type MatingConfig struct {
	Range     float64 `yaml:"range"`      // Distance within which mating happens
	MinEnergy float64 `yaml:"min_energy"` // Minimum energy to be a candidate
	Cost      float64 `yaml:"cost"`       // Paid by each parent
	Cooldown  int     `yaml:"cooldown"`   // Ticks before mating again
	MinAge    int     `yaml:"min_age"`    // Newborns cannot mate
}

// CombatConfig holds combat parameters.
type CombatConfig struct {
	AttackCost float64 `yaml:"attack_cost"` // Paid by the attacker, win or lose
	Gain       float64 `yaml:"gain"`        // Fraction of the victim's energy gained
	Range      float64 `yaml:"range"`       // Distance within which an attack happens
}

// MutationConfig holds mutation parameters.
type MutationConfig struct {
	Rate     float64 `yaml:"rate"`     // Per-field mutation probability
	Strength float64 `yaml:"strength"` // Relative perturbation magnitude
}

// FractalConfig bounds the recursive outgrowth geometry. The hard level cap
// exists because uncontrolled depth explodes the triangle count.
type FractalConfig struct {
	MinLevels   int `yaml:"min_levels"`
	MaxLevels   int `yaml:"max_levels"`
	MinChildren int `yaml:"min_children"`
	MaxChildren int `yaml:"max_children"`
}

// MeshConfig holds body mesh sampling parameters.
type MeshConfig struct {
	Resolution int `yaml:"resolution"` // Longitude steps; latitude uses half
}

// ExportConfig holds champion export parameters.
type ExportConfig struct {
	Interval float64 `yaml:"interval"` // Seconds between STL exports
	Dir      string  `yaml:"dir"`      // Output directory; empty disables export
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow int `yaml:"stats_window"` // Ticks per stats window
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if
// path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects malformed configuration before any tick runs. Once a
// config passes here the simulator must never fail on a reachable state.
func (c *Config) Validate() error {
	if c.World.Size <= 0 {
		return fmt.Errorf("config: world.size must be positive, got %g", c.World.Size)
	}
	if c.Tick.Interval <= 0 {
		return fmt.Errorf("config: tick.interval must be positive, got %g", c.Tick.Interval)
	}
	if c.Population.MaxCreatures <= 0 {
		return fmt.Errorf("config: population.max_creatures must be positive, got %d", c.Population.MaxCreatures)
	}
	if c.Population.MaxPlants < 0 {
		return fmt.Errorf("config: population.max_plants must not be negative, got %d", c.Population.MaxPlants)
	}
	if c.Energy.EatRange <= 0 {
		return fmt.Errorf("config: energy.eat_range must be positive, got %g", c.Energy.EatRange)
	}
	if c.Mating.Range <= 0 {
		return fmt.Errorf("config: mating.range must be positive, got %g", c.Mating.Range)
	}
	if c.Mating.Cooldown < 0 {
		return fmt.Errorf("config: mating.cooldown must not be negative, got %d", c.Mating.Cooldown)
	}
	if c.Combat.Range <= 0 {
		return fmt.Errorf("config: combat.range must be positive, got %g", c.Combat.Range)
	}
	if c.Combat.Gain < 0 || c.Combat.Gain > 1 {
		return fmt.Errorf("config: combat.gain must be in [0,1], got %g", c.Combat.Gain)
	}
	if c.Mutation.Rate < 0 || c.Mutation.Rate > 1 {
		return fmt.Errorf("config: mutation.rate must be in [0,1], got %g", c.Mutation.Rate)
	}
	if c.Mutation.Strength < 0 {
		return fmt.Errorf("config: mutation.strength must not be negative, got %g", c.Mutation.Strength)
	}
	if c.Fractal.MinLevels < 0 || c.Fractal.MaxLevels < c.Fractal.MinLevels {
		return fmt.Errorf("config: fractal levels bounds invalid: [%d, %d]", c.Fractal.MinLevels, c.Fractal.MaxLevels)
	}
	if c.Fractal.MinChildren < 0 || c.Fractal.MaxChildren < c.Fractal.MinChildren {
		return fmt.Errorf("config: fractal children bounds invalid: [%d, %d]", c.Fractal.MinChildren, c.Fractal.MaxChildren)
	}
	if c.Mesh.Resolution < 4 {
		return fmt.Errorf("config: mesh.resolution must be at least 4, got %d", c.Mesh.Resolution)
	}
	if c.Export.Interval <= 0 {
		return fmt.Errorf("config: export.interval must be positive, got %g", c.Export.Interval)
	}
	if c.Telemetry.StatsWindow <= 0 {
		return fmt.Errorf("config: telemetry.stats_window must be positive, got %d", c.Telemetry.StatsWindow)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
