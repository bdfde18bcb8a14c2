package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ListenAddr != ":8080" {
		t.Errorf("Expected default listen addr ':8080', got %q", cfg.ListenAddr)
	}
	if cfg.GracePeriod != 60*time.Second {
		t.Errorf("Expected default grace period 60s, got %s", cfg.GracePeriod)
	}
	if cfg.IdleTimeout != 30*time.Minute {
		t.Errorf("Expected default idle timeout 30m, got %s", cfg.IdleTimeout)
	}
	if cfg.SweepInterval != time.Minute {
		t.Errorf("Expected default sweep interval 1m, got %s", cfg.SweepInterval)
	}
	if cfg.ProposalTTL != 30*time.Second {
		t.Errorf("Expected default proposal TTL 30s, got %s", cfg.ProposalTTL)
	}
	if cfg.DefaultUndoLimit != 3 {
		t.Errorf("Expected default undo limit 3, got %d", cfg.DefaultUndoLimit)
	}
	if cfg.JWTSecret != "" {
		t.Errorf("JWT secret should default to empty, got %q", cfg.JWTSecret)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("GRACE_PERIOD", "10s")
	t.Setenv("DEFAULT_UNDO_LIMIT", "0")
	t.Setenv("JWT_SECRET", "sekrit")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ListenAddr != ":9090" {
		t.Errorf("Expected listen addr ':9090', got %q", cfg.ListenAddr)
	}
	if cfg.GracePeriod != 10*time.Second {
		t.Errorf("Expected grace period 10s, got %s", cfg.GracePeriod)
	}
	if cfg.DefaultUndoLimit != 0 {
		t.Errorf("Expected undo limit 0, got %d", cfg.DefaultUndoLimit)
	}
	if cfg.JWTSecret != "sekrit" {
		t.Errorf("Expected JWT secret to load, got %q", cfg.JWTSecret)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("GRACE_PERIOD", "not-a-duration")
	if _, err := Load(); err == nil {
		t.Error("Expected error for malformed duration")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		ListenAddr:       ":8080",
		GracePeriod:      time.Minute,
		IdleTimeout:      time.Hour,
		SweepInterval:    time.Minute,
		ProposalTTL:      30 * time.Second,
		DefaultUndoLimit: 3,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero grace period", func(c *Config) { c.GracePeriod = 0 }},
		{"negative idle timeout", func(c *Config) { c.IdleTimeout = -time.Minute }},
		{"zero sweep interval", func(c *Config) { c.SweepInterval = 0 }},
		{"zero proposal ttl", func(c *Config) { c.ProposalTTL = 0 }},
		{"negative undo limit", func(c *Config) { c.DefaultUndoLimit = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}
