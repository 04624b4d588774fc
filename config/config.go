package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/minaorangina/flip7/game"
	"github.com/minaorangina/flip7/match"
	"github.com/sirupsen/logrus"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is read from the environment, after loading any .env file
type Config struct {
	BotTimeout     time.Duration `env:"FLIP7_BOT_TIMEOUT"`
	Seed           string        `env:"FLIP7_SEED"`
	TargetScore    int           `env:"FLIP7_TARGET_SCORE"`
	MaxRounds      int           `env:"FLIP7_MAX_ROUNDS"`
	BestOf         int           `env:"FLIP7_BEST_OF"`
	PlayersPerGame int           `env:"FLIP7_PLAYERS_PER_GAME"`
	Workers        int           `env:"FLIP7_WORKERS"`
	ReplayDir      string        `env:"FLIP7_REPLAY_DIR"`
	Addr           string        `env:"FLIP7_ADDR"`
	LogLevel       string        `env:"FLIP7_LOG_LEVEL"`
}

func Default() Config {
	return Config{
		BotTimeout:     game.DefaultTimeout,
		TargetScore:    game.WinningScore,
		BestOf:         3,
		PlayersPerGame: 2,
		Workers:        4,
		Addr:           ":8000",
		LogLevel:       "info",
	}
}

// Load reads .env files if present, then overlays the environment on the defaults
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && len(envFiles) > 0 {
		return Config{}, fmt.Errorf("loading env files: %w", err)
	}

	cfg := Default()
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.BotTimeout <= 0:
		return fmt.Errorf("%w: bot timeout must be positive, got %s", ErrInvalidConfig, c.BotTimeout)
	case c.TargetScore <= 0:
		return fmt.Errorf("%w: target score must be positive, got %d", ErrInvalidConfig, c.TargetScore)
	case c.MaxRounds < 0:
		return fmt.Errorf("%w: max rounds must not be negative, got %d", ErrInvalidConfig, c.MaxRounds)
	case c.BestOf < 1 || c.BestOf%2 == 0:
		return fmt.Errorf("%w: best of must be a positive odd number, got %d", ErrInvalidConfig, c.BestOf)
	case c.PlayersPerGame < 2 || c.PlayersPerGame > 4:
		return fmt.Errorf("%w: players per game must be 2, 3 or 4, got %d", ErrInvalidConfig, c.PlayersPerGame)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	}

	if _, err := c.SeedValue(); err != nil {
		return err
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}
	return nil
}

// SeedValue returns nil when no seed is configured
func (c Config) SeedValue() (*int64, error) {
	if strings.TrimSpace(c.Seed) == "" {
		return nil, nil
	}
	seed, err := strconv.ParseInt(strings.TrimSpace(c.Seed), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: seed %q is not an integer", ErrInvalidConfig, c.Seed)
	}
	return &seed, nil
}

// Logger builds a logrus logger at the configured level
func (c Config) Logger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(c.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	return logger
}

// MatchOpts fills the match settings shared by every match in a run
func (c Config) MatchOpts() match.Opts {
	seed, _ := c.SeedValue()
	return match.Opts{
		BestOf:      c.BestOf,
		Seed:        seed,
		Timeout:     c.BotTimeout,
		TargetScore: c.TargetScore,
		MaxRounds:   c.MaxRounds,
		ReplayDir:   c.ReplayDir,
	}
}
