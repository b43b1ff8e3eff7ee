// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/julianstephens/dailycal/internal/constants"
)

// Config is the environment-derived configuration. CLI flags default to these values.
type Config struct {
	Database      string        `env:"DAILYCAL_DATABASE" envDefault:"~/.config/dailycal/dailycal.db"`
	Debug         bool          `env:"DAILYCAL_DEBUG"`
	CatalogPath   string        `env:"DAILYCAL_CATALOG"`
	Seed          int64         `env:"DAILYCAL_SEED"`
	StarterURL    string        `env:"DAILYCAL_STARTER_URL"`
	StarterSecret string        `env:"DAILYCAL_STARTER_SECRET"`
	TickInterval  time.Duration `env:"DAILYCAL_TICK" envDefault:"1s"`
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses Config from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = constants.DefaultTickInterval
	}
	return cfg, nil
}

// IsPostgres reports whether a database setting is a PostgreSQL connection string.
func IsPostgres(database string) bool {
	return strings.HasPrefix(database, "postgres://") || strings.HasPrefix(database, "postgresql://")
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Dir returns the directory that holds logs, backups and the host lockfile for
// a database setting. PostgreSQL setups fall back to the user config directory.
func Dir(database string) (string, error) {
	if IsPostgres(database) {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("resolve config directory: %w", err)
		}
		return filepath.Join(base, constants.AppName), nil
	}
	path, err := ExpandPath(database)
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}

// Exitf writes a formatted error message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
