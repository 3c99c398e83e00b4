// Package config loads the server configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is read once at startup and never mutated afterwards.
type Config struct {
	Port     int        `env:"PORT"      envDefault:"8080"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	DBDriver       string        `env:"DB_DRIVER"             envDefault:"sqlite"`
	DBDSN          string        `env:"DB_DSN"                envDefault:"data/taskflow.db"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS"     envDefault:"10"`
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS"     envDefault:"5"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME"  envDefault:"30m"`
	DBConnIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"5m"`

	// Generate with: openssl rand -hex 32
	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	AvatarMaxBytes  int64 `env:"AVATAR_MAX_BYTES"  envDefault:"5242880"`
	AvatarMaxPixels int64 `env:"AVATAR_MAX_PIXELS" envDefault:"16777216"`
	AvatarSide      int   `env:"AVATAR_SIDE"       envDefault:"256"`

	// GitHub sign-in is enabled only when both id and secret are set.
	GitHubClientID     string `env:"GITHUB_CLIENT_ID"`
	GitHubClientSecret string `env:"GITHUB_CLIENT_SECRET"`
	GitHubCallbackURL  string `env:"GITHUB_CALLBACK_URL"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.GitHubEnabled() && cfg.GitHubCallbackURL == "" {
		cfg.GitHubCallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Port)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// GitHubEnabled reports whether the OAuth routes should be mounted.
func (c Config) GitHubEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

// Validate rejects values that parse but make no sense together.
func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	if c.DBDriver != "sqlite" && c.DBDriver != "pgx" {
		errs = append(errs, fmt.Errorf("DB_DRIVER must be sqlite or pgx, got %q", c.DBDriver))
	}
	if c.DBDSN == "" {
		errs = append(errs, errors.New("DB_DSN must not be empty"))
	}
	if len(c.JWTSecret) < 16 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 16 characters"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL))
	}
	if c.AvatarMaxBytes <= 0 {
		errs = append(errs, fmt.Errorf("AVATAR_MAX_BYTES must be positive, got %d", c.AvatarMaxBytes))
	}
	if c.AvatarMaxPixels <= 0 {
		errs = append(errs, fmt.Errorf("AVATAR_MAX_PIXELS must be positive, got %d", c.AvatarMaxPixels))
	}
	if c.AvatarSide <= 0 || c.AvatarSide > 4096 {
		errs = append(errs, fmt.Errorf("AVATAR_SIDE must be between 1 and 4096, got %d", c.AvatarSide))
	}
	if (c.GitHubClientID == "") != (c.GitHubClientSecret == "") {
		errs = append(errs, errors.New("GITHUB_CLIENT_ID and GITHUB_CLIENT_SECRET must be set together"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
