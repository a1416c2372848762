package dineauth

import (
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	cfg := defaultConfig()
	cfg.API.BaseURL = "https://api.hostline.test"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing base url", func(c *Config) { c.API.BaseURL = "" }},
		{"relative base url", func(c *Config) { c.API.BaseURL = "/api" }},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }},
		{"non-4xx auth failure status", func(c *Config) { c.Refresh.AuthFailureStatus = 500 }},
		{"negative audit buffer", func(c *Config) { c.Audit.BufferSize = -1 }},
		{"empty profile", func(c *Config) { c.Storage.ProfileID = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bad := defaultConfig()
			bad.API.BaseURL = "https://api.hostline.test"
			tc.mutate(&bad)
			if err := bad.Validate(); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("DINEAUTH_API_URL", "https://env.hostline.test")
	t.Setenv("DINEAUTH_API_TIMEOUT", "3s")
	t.Setenv("DINEAUTH_PROFILE", "terminal-7")
	t.Setenv("DINEAUTH_METRICS_ENABLED", "false")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv failed: %v", err)
	}
	if cfg.API.BaseURL != "https://env.hostline.test" {
		t.Fatalf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 3*time.Second {
		t.Fatalf("Timeout = %v", cfg.API.Timeout)
	}
	if cfg.Storage.ProfileID != "terminal-7" {
		t.Fatalf("ProfileID = %q", cfg.Storage.ProfileID)
	}
	if cfg.Metrics.Enabled {
		t.Fatal("Metrics.Enabled should be overridden to false")
	}
	// Untouched fields keep their defaults.
	if cfg.Audit.BufferSize != 256 {
		t.Fatalf("Audit.BufferSize = %d", cfg.Audit.BufferSize)
	}
}
