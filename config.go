package dineauth

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config carries all tunables for a [Core]. Populate it once, pass it to
// [Builder.WithConfig], and treat it as immutable afterwards.
type Config struct {
	API     APIConfig
	Storage StorageConfig
	Refresh RefreshConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig describes how the core reaches the authentication backend.
type APIConfig struct {
	// BaseURL is the root of the REST API, e.g. "https://api.hostline.app".
	BaseURL string `env:"DINEAUTH_API_URL"`
	// Timeout applies to the default HTTP client built by [Builder.Build].
	// A caller-supplied client keeps its own timeout.
	Timeout time.Duration `env:"DINEAUTH_API_TIMEOUT"`
	// UserAgent is sent on every outbound request.
	UserAgent string `env:"DINEAUTH_USER_AGENT"`
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageConfig controls the default token store when none is injected.
type StorageConfig struct {
	// Path is the bbolt database file used when no store is injected via
	// [Builder.WithTokenStore]. Empty means a store must be injected.
	Path string `env:"DINEAUTH_STORE_PATH"`
	// ProfileID scopes the persisted record on shared devices. Defaults to
	// "default".
	ProfileID string `env:"DINEAUTH_PROFILE"`
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig controls the transparent refresh-and-retry behavior of
// [Transport].
type RefreshConfig struct {
	// AuthFailureStatus is the response status that signals an expired
	// access token, as opposed to a role-based denial. Defaults to 401;
	// 403 always passes through untouched.
	AuthFailureStatus int `env:"DINEAUTH_AUTH_FAILURE_STATUS"`
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool `env:"DINEAUTH_AUDIT_ENABLED"`
	BufferSize int  `env:"DINEAUTH_AUDIT_BUFFER"`
	// DropIfFull drops events instead of blocking when the buffer is full.
	// Dropped events are counted and visible via [Core.AuditDropped].
	DropIfFull bool `env:"DINEAUTH_AUDIT_DROP_IF_FULL"`
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls the in-process metrics system.
type MetricsConfig struct {
	Enabled                 bool `env:"DINEAUTH_METRICS_ENABLED"`
	EnableLatencyHistograms bool `env:"DINEAUTH_METRICS_LATENCY"`
}

func defaultConfig() Config {
	return Config{
		API: APIConfig{
			Timeout:   15 * time.Second,
			UserAgent: "dineauth/1",
		},
		Storage: StorageConfig{
			ProfileID: "default",
		},
		Refresh: RefreshConfig{
			AuthFailureStatus: http.StatusUnauthorized,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// DefaultConfig returns the baseline configuration. The API base URL is the
// only field without a usable default.
func DefaultConfig() Config {
	return defaultConfig()
}

// ConfigFromEnv builds a Config from defaults overridden by DINEAUTH_*
// environment variables.
func ConfigFromEnv() (Config, error) {
	cfg := defaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func cloneConfig(cfg Config) Config {
	// All fields are value types today; the indirection keeps call sites
	// stable if reference fields are added.
	return cfg
}

// Validate reports the first configuration problem found, or nil.
func (c Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("API BaseURL is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("API BaseURL must be an absolute URL")
	}
	if c.API.Timeout <= 0 {
		return errors.New("API Timeout must be positive")
	}
	if c.Refresh.AuthFailureStatus < 400 || c.Refresh.AuthFailureStatus > 499 {
		return errors.New("Refresh AuthFailureStatus must be a 4xx status")
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("Audit BufferSize must not be negative")
	}
	if c.Storage.ProfileID == "" {
		return errors.New("Storage ProfileID is required")
	}
	return nil
}
