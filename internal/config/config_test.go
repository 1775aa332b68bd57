// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"testing"
	"time"
)

const testSecret = "test-secret-key-32-bytes-long!!!"

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	setEnv(t, "OPPS_SESSION_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "./data/opps.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/opps.db")
	}
	if cfg.ServerAddr() != "localhost:8080" {
		t.Errorf("ServerAddr() = %q, want %q", cfg.ServerAddr(), "localhost:8080")
	}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() = false, want true")
	}
	if cfg.SiteID != 1 {
		t.Errorf("SiteID = %d, want 1", cfg.SiteID)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %s, want 24h", cfg.TokenTTL)
	}
	if cfg.MediaURL != "/media/" {
		t.Errorf("MediaURL = %q, want /media/", cfg.MediaURL)
	}
	if cfg.CacheTTLDuration() != time.Minute {
		t.Errorf("CacheTTLDuration() = %s, want 1m", cfg.CacheTTLDuration())
	}
	if cfg.UseRemoteShortener() || cfg.UseRedisCache() {
		t.Error("remote shortener and redis should be disabled by default")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	setEnv(t, "OPPS_SESSION_SECRET", testSecret)
	setEnv(t, "OPPS_DB_PATH", "/custom/path.db")
	setEnv(t, "OPPS_ENV", "production")
	setEnv(t, "OPPS_SITE_ID", "3")
	setEnv(t, "OPPS_SITE_DOMAIN", "news.example.com")
	setEnv(t, "OPPS_SHORTENER_URL", "https://sho.rt")
	setEnv(t, "OPPS_MEDIA_URL", "https://cdn.example.com/media")
	setEnv(t, "OPPS_TOKEN_TTL", "90m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "/custom/path.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true, want false")
	}
	if cfg.SiteID != 3 || cfg.SiteDomain != "news.example.com" {
		t.Errorf("site = %d/%q", cfg.SiteID, cfg.SiteDomain)
	}
	if !cfg.UseRemoteShortener() {
		t.Error("UseRemoteShortener() = false, want true")
	}
	if cfg.MediaURL != "https://cdn.example.com/media/" {
		t.Errorf("MediaURL = %q, want trailing slash added", cfg.MediaURL)
	}
	if cfg.TokenTTL != 90*time.Minute {
		t.Errorf("TokenTTL = %s, want 90m", cfg.TokenTTL)
	}
}

func TestLoad_RequiredSessionSecret(t *testing.T) {
	os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail when OPPS_SESSION_SECRET is not set")
	}
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"short secret", map[string]string{"OPPS_SESSION_SECRET": "short"}},
		{"31 byte secret", map[string]string{"OPPS_SESSION_SECRET": "1234567890123456789012345678901"}},
		{"weak secret", map[string]string{"OPPS_SESSION_SECRET": "change-me-to-32-byte-secret-key!"}},
		{"unknown env", map[string]string{"OPPS_SESSION_SECRET": testSecret, "OPPS_ENV": "staging"}},
		{"zero site", map[string]string{"OPPS_SESSION_SECRET": testSecret, "OPPS_SITE_ID": "0"}},
		{"relative shortener", map[string]string{"OPPS_SESSION_SECRET": testSecret, "OPPS_SHORTENER_URL": "sho.rt/api"}},
		{"ftp shortener", map[string]string{"OPPS_SESSION_SECRET": testSecret, "OPPS_SHORTENER_URL": "ftp://sho.rt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.env {
				setEnv(t, k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("Load() should fail")
			}
		})
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	if hasMinimumEntropy("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa") {
		t.Error("single class secret reported as diverse")
	}
	if !hasMinimumEntropy("Abc123!Abc123!Abc123!Abc123!Abc1") {
		t.Error("four class secret reported as weak")
	}
}
