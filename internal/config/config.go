// Package config handles loading and validating runtime configuration for the domino
// tournament engine. Values are read from environment variables so the same binary can run
// on the scoring desk laptop and on a second machine pointed at the same shared store.
// An optional YAML file (CONFIG_FILE) can provide defaults that the environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	// godotenv reads a .env file and loads its key=value pairs into the process environment.
	// Missing .env is fine: the venue machines usually set real environment variables.
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultDBPath is the SQLite file used when neither TORNEO_DB_PATH nor DATABASE_URL is set.
const DefaultDBPath = "torneo_domino.db"

// DefaultTournamentTitle is printed on exported sheets.
const DefaultTournamentTitle = "Torneo de Dominó"

// Config holds all runtime configuration values for the application.
type Config struct {
	Port string `yaml:"port"` // TCP port the HTTP server listens on
	Env  string `yaml:"env"`  // "development" or "production"

	// DBPath is the SQLite file location. Pointing two machines at the same file on a
	// shared folder is the supported way to run two scoring desks.
	DBPath string `yaml:"db_path"`
	// DatabaseURL selects a Postgres store instead of SQLite when non-empty.
	DatabaseURL string `yaml:"database_url"`
	// BusyTimeout bounds how long a write waits for another writer before failing.
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	MaxPlayers int `yaml:"max_players"` // roster capacity
	MaxRounds  int `yaml:"max_rounds"`  // highest round number that can be generated
	WinWeight  int `yaml:"win_weight"`  // E = G*WinWeight + P

	JWTSecret string `yaml:"jwt_secret"` // HS256 secret for write routes; empty disables auth

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	TournamentTitle string `yaml:"tournament_title"`
}

// Defaults returns a Config populated with the built-in defaults.
func Defaults() *Config {
	return &Config{
		Port:            "8080",
		Env:             "development",
		DBPath:          DefaultDBPath,
		BusyTimeout:     8 * time.Second,
		MaxPlayers:      100,
		MaxRounds:       5,
		WinWeight:       100,
		LogLevel:        "info",
		LogFormat:       "console",
		TournamentTitle: DefaultTournamentTitle,
	}
}

// Load reads configuration from an optional .env file, an optional YAML file named by
// CONFIG_FILE, and finally the process environment, in increasing order of precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to unmarshal config file %q: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.Env, "ENV")
	setString(&c.DBPath, "TORNEO_DB_PATH")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.JWTSecret, "JWT_SECRET")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFormat, "LOG_FORMAT")
	setString(&c.TournamentTitle, "TOURNAMENT_TITLE")

	if err := setInt(&c.MaxPlayers, "MAX_PLAYERS"); err != nil {
		return err
	}
	if err := setInt(&c.MaxRounds, "MAX_ROUNDS"); err != nil {
		return err
	}
	if err := setInt(&c.WinWeight, "WIN_WEIGHT"); err != nil {
		return err
	}

	if v := os.Getenv("DB_BUSY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid DB_BUSY_TIMEOUT: %w", err)
		}
		c.BusyTimeout = d
	}
	return nil
}

// Validate checks the invariants the engine relies on.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("PORT must be a number between 1 and 65535, got %q", c.Port)
	}
	if c.DatabaseURL == "" && c.DBPath == "" {
		return fmt.Errorf("TORNEO_DB_PATH must not be empty when DATABASE_URL is not set")
	}
	if c.MaxPlayers < 4 {
		return fmt.Errorf("MAX_PLAYERS must be at least 4, got %d", c.MaxPlayers)
	}
	if c.MaxRounds < 1 {
		return fmt.Errorf("MAX_ROUNDS must be positive, got %d", c.MaxRounds)
	}
	if c.WinWeight < 1 {
		return fmt.Errorf("WIN_WEIGHT must be positive, got %d", c.WinWeight)
	}
	if c.BusyTimeout < 0 {
		return fmt.Errorf("DB_BUSY_TIMEOUT must not be negative, got %s", c.BusyTimeout)
	}
	return nil
}

// UsesPostgres reports whether the shared Postgres store is configured.
func (c *Config) UsesPostgres() bool {
	return c.DatabaseURL != ""
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}
