package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	utils "github.com/minaorangina/flip7/internal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		utils.AssertNoError(t, err)
		assert.Equal(t, Default(), cfg)

		seed, err := cfg.SeedValue()
		require.NoError(t, err)
		assert.Nil(t, seed)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("FLIP7_BOT_TIMEOUT", "250ms")
		t.Setenv("FLIP7_SEED", "42")
		t.Setenv("FLIP7_BEST_OF", "5")
		t.Setenv("FLIP7_LOG_LEVEL", "debug")

		cfg, err := Load()
		utils.AssertNoError(t, err)
		utils.AssertEqual(t, cfg.BotTimeout, 250*time.Millisecond)
		utils.AssertEqual(t, cfg.BestOf, 5)
		utils.AssertEqual(t, cfg.TargetScore, 200)
		utils.AssertEqual(t, cfg.Logger().GetLevel(), logrus.DebugLevel)

		opts := cfg.MatchOpts()
		require.NotNil(t, opts.Seed)
		utils.AssertEqual(t, *opts.Seed, int64(42))
		utils.AssertEqual(t, opts.Timeout, 250*time.Millisecond)
	})

	t.Run("env file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "flip7.env")
		require.NoError(t, os.WriteFile(path, []byte("FLIP7_WORKERS=9\n"), 0o600))
		t.Cleanup(func() { os.Unsetenv("FLIP7_WORKERS") })

		cfg, err := Load(path)
		utils.AssertNoError(t, err)
		utils.AssertEqual(t, cfg.Workers, 9)
	})

	t.Run("missing env file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.env"))
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		t.Setenv("FLIP7_BEST_OF", "4")
		_, err := Load()
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		change func(*Config)
	}{
		{"zero timeout", func(c *Config) { c.BotTimeout = 0 }},
		{"negative target", func(c *Config) { c.TargetScore = -1 }},
		{"negative max rounds", func(c *Config) { c.MaxRounds = -3 }},
		{"even best of", func(c *Config) { c.BestOf = 2 }},
		{"one player per game", func(c *Config) { c.PlayersPerGame = 1 }},
		{"five players per game", func(c *Config) { c.PlayersPerGame = 5 }},
		{"no workers", func(c *Config) { c.Workers = 0 }},
		{"bad seed", func(c *Config) { c.Seed = "lucky" }},
		{"bad log level", func(c *Config) { c.LogLevel = "chatty" }},
	}

	utils.AssertNoError(t, Default().Validate())

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := Default()
			c.change(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
