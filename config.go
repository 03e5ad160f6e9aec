package narrowphase

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/akmonengine/narrowphase/contact"
	"github.com/akmonengine/narrowphase/epa"
	"github.com/akmonengine/narrowphase/gjk"
	"github.com/akmonengine/narrowphase/metrics"
	"github.com/akmonengine/narrowphase/mpr"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a Config fails validation
var ErrInvalidConfig = errors.New("invalid config")

// SolverConfig bounds an iterative solver
type SolverConfig struct {
	MaxIterations int     `yaml:"max_iterations"`
	Tolerance     float64 `yaml:"tolerance"`
}

// SweepConfig bounds the portal refinement sweep
type SweepConfig struct {
	MaxIterations int     `yaml:"max_iterations"`
	MaxAdvances   int     `yaml:"max_advances"`
	Tolerance     float64 `yaml:"tolerance"`
}

// ContactConfig tunes manifold generation
type ContactConfig struct {
	Slop      float64 `yaml:"slop"`
	MaxPoints int     `yaml:"max_points"`
}

// LogConfig limits how many diagnostics reach the logger. A zero rate
// disables the limit.
type LogConfig struct {
	WarningsPerSecond float64 `yaml:"warnings_per_second"`
	Burst             int     `yaml:"burst"`
}

// Config holds the engine tolerances and budgets
type Config struct {
	GJK     SolverConfig  `yaml:"gjk"`
	EPA     SolverConfig  `yaml:"epa"`
	MPR     SweepConfig   `yaml:"mpr"`
	Contact ContactConfig `yaml:"contact"`
	Log     LogConfig     `yaml:"log"`

	// Logger receives diagnostics, slog.Default() when nil
	Logger *slog.Logger `yaml:"-"`
	// Metrics is optional
	Metrics *metrics.Recorder `yaml:"-"`
}

// DefaultConfig returns the package defaults of every solver
func DefaultConfig() Config {
	return Config{
		GJK: SolverConfig{MaxIterations: gjk.DefaultMaxIterations, Tolerance: gjk.DefaultTolerance},
		EPA: SolverConfig{MaxIterations: epa.DefaultMaxIterations, Tolerance: epa.DefaultTolerance},
		MPR: SweepConfig{
			MaxIterations: mpr.DefaultMaxIterations,
			MaxAdvances:   mpr.DefaultMaxAdvances,
			Tolerance:     mpr.DefaultTolerance,
		},
		Contact: ContactConfig{Slop: contact.DefaultSlop, MaxPoints: contact.MaxPoints},
		Log:     LogConfig{WarningsPerSecond: 1, Burst: 10},
	}
}

// LoadConfig reads a YAML file over the defaults and validates the result
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every out-of-range field
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
		}
	}

	check(c.GJK.MaxIterations > 0, "gjk.max_iterations must be positive, got %d", c.GJK.MaxIterations)
	check(c.GJK.Tolerance > 0 && c.GJK.Tolerance < 1, "gjk.tolerance must be in (0, 1), got %g", c.GJK.Tolerance)
	check(c.EPA.MaxIterations > 0, "epa.max_iterations must be positive, got %d", c.EPA.MaxIterations)
	check(c.EPA.Tolerance > 0 && c.EPA.Tolerance < 1, "epa.tolerance must be in (0, 1), got %g", c.EPA.Tolerance)
	check(c.MPR.MaxIterations > 0, "mpr.max_iterations must be positive, got %d", c.MPR.MaxIterations)
	check(c.MPR.MaxAdvances > 0, "mpr.max_advances must be positive, got %d", c.MPR.MaxAdvances)
	check(c.MPR.Tolerance > 0, "mpr.tolerance must be positive, got %g", c.MPR.Tolerance)
	check(c.Contact.Slop >= 0, "contact.slop must not be negative, got %g", c.Contact.Slop)
	check(c.Contact.MaxPoints >= 1 && c.Contact.MaxPoints <= contact.MaxPoints,
		"contact.max_points must be in [1, %d], got %d", contact.MaxPoints, c.Contact.MaxPoints)
	check(c.Log.WarningsPerSecond >= 0, "log.warnings_per_second must not be negative, got %g", c.Log.WarningsPerSecond)
	check(c.Log.WarningsPerSecond == 0 || c.Log.Burst > 0, "log.burst must be positive when rate limited, got %d", c.Log.Burst)

	return errors.Join(errs...)
}

func (c Config) gjkSettings() gjk.Settings {
	return gjk.Settings{MaxIterations: c.GJK.MaxIterations, Tolerance: c.GJK.Tolerance}
}

func (c Config) epaSettings() epa.Settings {
	return epa.Settings{MaxIterations: c.EPA.MaxIterations, Tolerance: c.EPA.Tolerance}
}

func (c Config) mprSettings() mpr.Settings {
	return mpr.Settings{MaxIterations: c.MPR.MaxIterations, MaxAdvances: c.MPR.MaxAdvances, Tolerance: c.MPR.Tolerance}
}

func (c Config) contactOptions() contact.Options {
	return contact.Options{Slop: c.Contact.Slop, MaxPoints: c.Contact.MaxPoints}
}
