// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

// skipIfNoRedis skips the test unless OPPS_TEST_REDIS_URL points at a server.
func skipIfNoRedis(t *testing.T) *RedisCache {
	t.Helper()
	url := os.Getenv("OPPS_TEST_REDIS_URL")
	if url == "" {
		t.Skip("Skipping Redis tests: OPPS_TEST_REDIS_URL not set")
	}
	c, err := NewRedisCacheFromURL(url, "opps-test:", time.Minute)
	if err != nil {
		t.Fatalf("failed to create Redis cache: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Clear(context.Background())
		_ = c.Close()
	})
	_ = c.Clear(context.Background())
	return c
}

func TestRedisCache_Basic(t *testing.T) {
	cache := skipIfNoRedis(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "box:1:home", []byte("members"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := cache.Get(ctx, "box:1:home")
	if err != nil || string(got) != "members" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if has, err := cache.Has(ctx, "box:1:home"); err != nil || !has {
		t.Errorf("Has = %v, %v", has, err)
	}
	if err := cache.Delete(ctx, "box:1:home"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := cache.Get(ctx, "box:1:home"); err != ErrCacheMiss {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestRedisCache_DeleteByPrefix(t *testing.T) {
	cache := skipIfNoRedis(t)
	ctx := context.Background()

	for _, k := range []string{"box:1:a", "box:1:b", "dynamic:1:a"} {
		if err := cache.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatalf("Set(%s) failed: %v", k, err)
		}
	}
	if err := cache.DeleteByPrefix(ctx, "box:"); err != nil {
		t.Fatalf("DeleteByPrefix failed: %v", err)
	}
	if has, _ := cache.Has(ctx, "box:1:b"); has {
		t.Error("box:1:b should be gone")
	}
	if has, _ := cache.Has(ctx, "dynamic:1:a"); !has {
		t.Error("dynamic:1:a should survive")
	}
}

func TestRedisCache_StatsAndPing(t *testing.T) {
	cache := skipIfNoRedis(t)
	ctx := context.Background()

	if err := cache.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	_ = cache.Set(ctx, "k", []byte("v"), 0)
	_, _ = cache.Get(ctx, "k")
	_, _ = cache.Get(ctx, "missing")

	s := cache.Stats()
	if s.Hits != 1 || s.Misses != 1 || s.Sets != 1 || s.Items != 1 {
		t.Errorf("unexpected stats %+v", s)
	}
}

func TestRedisCache_InvalidURL(t *testing.T) {
	if _, err := NewRedisCacheFromURL("invalid-url", "test:", time.Minute); err == nil {
		t.Error("expected error with invalid URL, got nil")
	}
	if _, err := NewRedisCacheFromURL("", "test:", time.Minute); err == nil {
		t.Error("expected error with empty URL, got nil")
	}
}
