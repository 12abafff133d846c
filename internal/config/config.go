// Package config loads the service configuration from environment
// variables. envconfig maps the variables onto the Config struct.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds ALL application settings.
type Config struct {
	// --- HTTP ---
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// --- Database ---
	// Inside Docker "localhost" is almost always wrong, so the default is
	// the compose service name. Override DB_HOST=localhost for local runs.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"greenledger"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"greenledger"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`

	// --- Leaderboard ---
	LeaderboardLimit int `envconfig:"LEADERBOARD_LIMIT" default:"10"`

	// --- Streak ---
	// Window length and the distinct-day count both default to 7: a bonus
	// requires activity on seven distinct UTC days inside the trailing week.
	StreakWindowDays   int `envconfig:"STREAK_WINDOW_DAYS" default:"7"`
	StreakRequiredDays int `envconfig:"STREAK_REQUIRED_DAYS" default:"7"`

	// --- Background jobs ---
	JobsEnabled bool `envconfig:"JOBS_ENABLED" default:"true"`
	// Cron expressions, evaluated in UTC.
	StreakSweepSchedule   string `envconfig:"STREAK_SWEEP_SCHEDULE" default:"30 0 * * *"`
	ParticipationSchedule string `envconfig:"PARTICIPATION_SCHEDULE" default:"0 1 * * 1"`
}

// DatabaseDSN returns the PostgreSQL connection string.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) Validate() error {
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("invalid DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.LeaderboardLimit <= 0 {
		return fmt.Errorf("LEADERBOARD_LIMIT must be > 0")
	}
	if c.StreakWindowDays <= 0 || c.StreakRequiredDays <= 0 {
		return fmt.Errorf("streak window and required days must be > 0")
	}
	return nil
}

// Load reads the environment and fills the Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
