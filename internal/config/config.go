// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the application configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string        `env:"OPPS_DB_PATH" envDefault:"./data/opps.db"`
	SessionSecret string        `env:"OPPS_SESSION_SECRET,required"`
	TokenTTL      time.Duration `env:"OPPS_TOKEN_TTL" envDefault:"24h"`
	ServerHost    string        `env:"OPPS_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int           `env:"OPPS_SERVER_PORT" envDefault:"8080"`
	Env           string        `env:"OPPS_ENV" envDefault:"development"`
	LogLevel      string        `env:"OPPS_LOG_LEVEL" envDefault:"info"`

	// Site that owns rows created through the API, and the domain of the
	// site created by the seeder.
	SiteID     int64  `env:"OPPS_SITE_ID" envDefault:"1"`
	SiteDomain string `env:"OPPS_SITE_DOMAIN" envDefault:"localhost:8080"`

	// URL shortener; an empty URL selects the built-in shortener.
	ShortenerURL   string `env:"OPPS_SHORTENER_URL"`
	ShortenerToken string `env:"OPPS_SHORTENER_TOKEN"`

	// Media storage
	UploadsDir string `env:"OPPS_UPLOADS_DIR" envDefault:"./uploads"`
	MediaURL   string `env:"OPPS_MEDIA_URL" envDefault:"/media/"`

	// Box cache configuration
	RedisURL     string `env:"OPPS_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix  string `env:"OPPS_CACHE_PREFIX" envDefault:"opps:"`   // Redis key prefix
	CacheTTL     int    `env:"OPPS_CACHE_TTL" envDefault:"60"`         // Box cache TTL in seconds
	CacheMaxSize int    `env:"OPPS_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// Optional YAML file overriding admin layouts
	AdminRulesPath string `env:"OPPS_ADMIN_RULES_PATH"`

	DoSeed bool `env:"OPPS_DO_SEED" envDefault:"false"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// UseRemoteShortener returns true if an external shortener is configured.
func (c Config) UseRemoteShortener() bool {
	return c.ShortenerURL != ""
}

// CacheTTLDuration returns CacheTTL as a duration.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// MinSessionSecretLength is the minimum required length for the session secret.
// The same secret signs bearer tokens with HS256.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("OPPS_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("OPPS_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(c.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if c.SessionSecret == weak {
			return fmt.Errorf("OPPS_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if c.Env != "development" && c.Env != "production" {
		return fmt.Errorf("OPPS_ENV must be development or production, got %q", c.Env)
	}

	if c.SiteID <= 0 {
		return fmt.Errorf("OPPS_SITE_ID must be positive, got %d", c.SiteID)
	}

	if c.TokenTTL <= 0 {
		return fmt.Errorf("OPPS_TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}

	if c.ShortenerURL != "" {
		u, err := url.Parse(c.ShortenerURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("OPPS_SHORTENER_URL must be an absolute http(s) URL, got %q", c.ShortenerURL)
		}
	}

	if !strings.HasSuffix(c.MediaURL, "/") {
		c.MediaURL += "/"
	}

	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
