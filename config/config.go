// Package config loads runtime configuration from the environment. A
// .env file is honored when present; explicit environment variables win.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every runtime knob of the server. Defaults are tuned for
// local development; production overrides come from the environment.
type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	// GracePeriod is how long a lone creator's seat survives an abrupt
	// disconnect before the room is deleted.
	GracePeriod time.Duration `env:"GRACE_PERIOD" envDefault:"60s"`

	// IdleTimeout and SweepInterval drive the idle reaper.
	IdleTimeout   time.Duration `env:"IDLE_TIMEOUT" envDefault:"30m"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`

	// ProposalTTL bounds how long an undo/reset proposal waits for an
	// answer before it is auto-rejected.
	ProposalTTL time.Duration `env:"PROPOSAL_TTL" envDefault:"30s"`

	// DefaultUndoLimit applies to rooms created without explicit
	// settings.
	DefaultUndoLimit int `env:"DEFAULT_UNDO_LIMIT" envDefault:"3"`

	// JWTSecret enables identity-token verification on the websocket
	// handshake when non-empty; otherwise the client-sent nickname is
	// taken as the opaque participant identity.
	JWTSecret string `env:"JWT_SECRET"`
}

// Load reads .env (if present) and parses the environment.
func Load() (Config, error) {
	// Missing .env is fine; explicit env vars are the normal path.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	if c.GracePeriod <= 0 {
		return fmt.Errorf("GRACE_PERIOD must be positive, got %s", c.GracePeriod)
	}
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("IDLE_TIMEOUT must be positive, got %s", c.IdleTimeout)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", c.SweepInterval)
	}
	if c.ProposalTTL <= 0 {
		return fmt.Errorf("PROPOSAL_TTL must be positive, got %s", c.ProposalTTL)
	}
	if c.DefaultUndoLimit < 0 {
		return fmt.Errorf("DEFAULT_UNDO_LIMIT must not be negative, got %d", c.DefaultUndoLimit)
	}
	return nil
}
