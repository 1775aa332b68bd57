// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"fmt"
	"net/url"
	"time"
)

// Backend names reported by NewCacheWithInfo.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// CacheConfig holds configuration for cache creation.
type CacheConfig struct {
	// Type is "memory" or "redis".
	Type string

	// RedisURL is used when Type is "redis", e.g. redis://localhost:6379/0.
	RedisURL string

	// Prefix is prepended to Redis keys.
	Prefix string

	// FallbackToMemory selects the memory backend when Redis is unreachable.
	FallbackToMemory bool

	DefaultTTL      time.Duration
	MaxSize         int // memory backend entries; 0 = unlimited
	CleanupInterval time.Duration
}

// DefaultCacheConfig returns the configuration of an in-memory cache.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Type:             CacheBackendMemory,
		Prefix:           "opps:",
		FallbackToMemory: true,
		DefaultTTL:       time.Minute,
		MaxSize:          10000,
		CleanupInterval:  time.Minute,
	}
}

// Result describes the cache NewCacheWithInfo created.
type Result struct {
	Cache       Cacher
	BackendType string
	IsFallback  bool
	// FallbackErr is the Redis error that triggered the fallback.
	FallbackErr error
}

// NewCache creates the cache described by cfg.
func NewCache(cfg CacheConfig) (Cacher, error) {
	res, err := NewCacheWithInfo(cfg)
	if err != nil {
		return nil, err
	}
	return res.Cache, nil
}

// NewCacheWithInfo creates the cache described by cfg and reports which
// backend was selected.
func NewCacheWithInfo(cfg CacheConfig) (Result, error) {
	if cfg.Type == CacheBackendRedis && cfg.RedisURL != "" {
		rc, err := NewRedisCacheFromURL(cfg.RedisURL, cfg.Prefix, cfg.DefaultTTL)
		if err == nil {
			return Result{Cache: rc, BackendType: CacheBackendRedis}, nil
		}
		if !cfg.FallbackToMemory {
			return Result{}, fmt.Errorf("connecting to redis at %s: %w", SanitizeRedisURL(cfg.RedisURL), err)
		}
		return Result{Cache: newMemoryFromConfig(cfg), BackendType: CacheBackendMemory, IsFallback: true, FallbackErr: err}, nil
	}
	return Result{Cache: newMemoryFromConfig(cfg), BackendType: CacheBackendMemory}, nil
}

func newMemoryFromConfig(cfg CacheConfig) *MemoryCache {
	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      cfg.DefaultTTL,
		MaxSize:         cfg.MaxSize,
		CleanupInterval: cfg.CleanupInterval,
	})
}

// SanitizeRedisURL masks the password of a Redis URL for logging.
func SanitizeRedisURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "[invalid URL]"
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}
