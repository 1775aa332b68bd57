// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"errors"
	"testing"
	"time"
)

func TestLocalSetAndGet(t *testing.T) {
	c := NewLocal[map[string]string](time.Minute)
	c.Set("site:1", map[string]string{"/old": "/new"})

	got, ok := c.Get("site:1")
	if !ok || got["/old"] != "/new" {
		t.Fatalf("Get = %v, %v", got, ok)
	}
	if _, ok := c.Get("site:2"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestLocalExpiration(t *testing.T) {
	c := NewLocal[int](time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }
	c.Set("k", 1)

	c.now = func() time.Time { return now.Add(2 * time.Minute) }
	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestLocalGetOrLoad(t *testing.T) {
	c := NewLocal[int](time.Minute)
	calls := 0
	load := func() (int, error) {
		calls++
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrLoad("answer", load)
		if err != nil || v != 42 {
			t.Fatalf("GetOrLoad = %d, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("load called %d times, want 1", calls)
	}

	boom := errors.New("boom")
	if _, err := c.GetOrLoad("bad", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
	if _, ok := c.Get("bad"); ok {
		t.Error("failed load must not be cached")
	}
}

func TestLocalClear(t *testing.T) {
	c := NewLocal[string](time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d", c.Len())
	}
}
