// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func newTestMemoryCache(t *testing.T, maxSize int) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour, MaxSize: maxSize})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMemoryCache_BasicOperations(t *testing.T) {
	cache := newTestMemoryCache(t, 100)
	ctx := context.Background()

	if err := cache.Set(ctx, "box:1:home", []byte("members"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, err := cache.Get(ctx, "box:1:home")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(val) != "members" {
		t.Errorf("expected members, got %s", val)
	}

	has, err := cache.Has(ctx, "box:1:home")
	if err != nil || !has {
		t.Errorf("Has = %v, %v", has, err)
	}

	if err := cache.Delete(ctx, "box:1:home"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := cache.Get(ctx, "box:1:home"); err != ErrCacheMiss {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	cache := newTestMemoryCache(t, 0)
	ctx := context.Background()

	if err := cache.Set(ctx, "short", []byte("v"), 30*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := cache.Set(ctx, "long", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	time.Sleep(50 * time.Millisecond)

	if _, err := cache.Get(ctx, "short"); err != ErrCacheMiss {
		t.Errorf("expected ErrCacheMiss after expiration, got %v", err)
	}
	if _, err := cache.Get(ctx, "long"); err != nil {
		t.Errorf("default TTL entry expired early: %v", err)
	}
}

func TestMemoryCache_EvictsWhenFull(t *testing.T) {
	cache := newTestMemoryCache(t, 2)
	ctx := context.Background()

	_ = cache.Set(ctx, "first", []byte("1"), time.Minute)
	_ = cache.Set(ctx, "second", []byte("2"), time.Hour)
	_ = cache.Set(ctx, "third", []byte("3"), time.Hour)

	if cache.Stats().Items != 2 {
		t.Fatalf("Items = %d, want 2", cache.Stats().Items)
	}
	if has, _ := cache.Has(ctx, "first"); has {
		t.Error("entry closest to expiry should have been evicted")
	}

	// Overwriting an existing key never evicts.
	_ = cache.Set(ctx, "second", []byte("22"), time.Hour)
	if has, _ := cache.Has(ctx, "third"); !has {
		t.Error("overwrite evicted another entry")
	}
}

func TestMemoryCache_DeleteByPrefixAndClear(t *testing.T) {
	cache := newTestMemoryCache(t, 0)
	ctx := context.Background()

	for _, k := range []string{"box:1:a", "box:1:b", "dynamic:1:a"} {
		_ = cache.Set(ctx, k, []byte(k), 0)
	}

	if err := cache.DeleteByPrefix(ctx, "box:"); err != nil {
		t.Fatalf("DeleteByPrefix failed: %v", err)
	}
	if has, _ := cache.Has(ctx, "box:1:a"); has {
		t.Error("box:1:a should be gone")
	}
	if has, _ := cache.Has(ctx, "dynamic:1:a"); !has {
		t.Error("dynamic:1:a should survive")
	}

	if err := cache.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if s := cache.Stats(); s.Items != 0 || s.Size != 0 {
		t.Errorf("after Clear: %+v", s)
	}
}

func TestMemoryCache_Stats(t *testing.T) {
	cache := newTestMemoryCache(t, 0)
	ctx := context.Background()

	_ = cache.Set(ctx, "k", []byte("abcd"), 0)
	_, _ = cache.Get(ctx, "k")
	_, _ = cache.Get(ctx, "k")
	_, _ = cache.Get(ctx, "missing")

	s := cache.Stats()
	if s.Hits != 2 || s.Misses != 1 || s.Sets != 1 || s.Items != 1 || s.Size != 4 {
		t.Errorf("unexpected stats %+v", s)
	}
	if s.HitRate < 66 || s.HitRate > 67 {
		t.Errorf("HitRate = %f", s.HitRate)
	}

	cache.ResetStats()
	if s := cache.Stats(); s.Hits != 0 || s.Misses != 0 || s.Sets != 0 {
		t.Errorf("after reset: %+v", s)
	}
}

func TestMemoryCache_ValueCopy(t *testing.T) {
	cache := newTestMemoryCache(t, 0)
	ctx := context.Background()

	value := []byte("original")
	_ = cache.Set(ctx, "k", value, 0)
	value[0] = 'X'

	got, _ := cache.Get(ctx, "k")
	if string(got) != "original" {
		t.Errorf("stored value mutated: %s", got)
	}
	got[0] = 'Y'
	again, _ := cache.Get(ctx, "k")
	if string(again) != "original" {
		t.Errorf("returned value aliases storage: %s", again)
	}
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	cache := newTestMemoryCache(t, 50)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", (n*100+j)%80)
				_ = cache.Set(ctx, key, []byte("v"), 0)
				_, _ = cache.Get(ctx, key)
				_ = cache.DeleteByPrefix(ctx, "k7")
			}
		}(i)
	}
	wg.Wait()

	if items := cache.Stats().Items; items > 50 {
		t.Errorf("Items = %d exceeds MaxSize", items)
	}
}

func TestMemoryCache_Close(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour, CleanupInterval: time.Millisecond})
	ctx := context.Background()

	if err := cache.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if err := cache.Set(ctx, "k", []byte("v"), 0); err != ErrCacheClosed {
		t.Errorf("Set after Close returned %v, want ErrCacheClosed", err)
	}
	if _, err := cache.Get(ctx, "k"); err != ErrCacheClosed {
		t.Errorf("Get after Close returned %v, want ErrCacheClosed", err)
	}
}
