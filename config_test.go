package narrowphase

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/akmonengine/narrowphase/contact"
	"github.com/akmonengine/narrowphase/gjk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"gjk iterations", func(c *Config) { c.GJK.MaxIterations = 0 }},
		{"gjk tolerance", func(c *Config) { c.GJK.Tolerance = 0 }},
		{"gjk tolerance too large", func(c *Config) { c.GJK.Tolerance = 1 }},
		{"epa iterations", func(c *Config) { c.EPA.MaxIterations = -1 }},
		{"epa tolerance", func(c *Config) { c.EPA.Tolerance = -1e-6 }},
		{"mpr iterations", func(c *Config) { c.MPR.MaxIterations = 0 }},
		{"mpr advances", func(c *Config) { c.MPR.MaxAdvances = 0 }},
		{"mpr tolerance", func(c *Config) { c.MPR.Tolerance = 0 }},
		{"negative slop", func(c *Config) { c.Contact.Slop = -0.1 }},
		{"no contact points", func(c *Config) { c.Contact.MaxPoints = 0 }},
		{"too many contact points", func(c *Config) { c.Contact.MaxPoints = contact.MaxPoints + 1 }},
		{"negative log rate", func(c *Config) { c.Log.WarningsPerSecond = -1 }},
		{"rate without burst", func(c *Config) { c.Log.Burst = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

			e, err := New(cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Nil(t, e)
		})
	}

	t.Run("every field is reported", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.GJK.MaxIterations = 0
		cfg.Contact.Slop = -1
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "gjk.max_iterations")
		assert.Contains(t, err.Error(), "contact.slop")
	})

	t.Run("unlimited logging needs no burst", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Log = LogConfig{}
		assert.NoError(t, cfg.Validate())
	})
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "narrowphase.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("partial override", func(t *testing.T) {
		path := writeConfig(t, `
gjk:
  max_iterations: 32
contact:
  slop: 0.01
  max_points: 3
log:
  warnings_per_second: 5
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 32, cfg.GJK.MaxIterations)
		assert.Equal(t, gjk.DefaultTolerance, cfg.GJK.Tolerance)
		assert.Equal(t, 0.01, cfg.Contact.Slop)
		assert.Equal(t, 3, cfg.Contact.MaxPoints)
		assert.Equal(t, 5.0, cfg.Log.WarningsPerSecond)
		assert.Equal(t, DefaultConfig().Log.Burst, cfg.Log.Burst)
		assert.Equal(t, DefaultConfig().MPR, cfg.MPR)

		e, err := New(cfg)
		require.NoError(t, err)
		assert.Equal(t, 32, e.Config().GJK.MaxIterations)
	})

	t.Run("empty file keeps the defaults", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfig(t, ""))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("invalid value", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "epa:\n  tolerance: 2\n"))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "gjk: [unterminated\n"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidConfig)
		assert.Contains(t, err.Error(), "parsing config")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
