// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

// JSON stores values of type T as JSON in a Cacher, so the same caller
// code serves the memory and Redis backends.
type JSON[T any] struct {
	backend Cacher
	ttl     time.Duration
	group   singleflight.Group
	stale   func(*T) bool
}

// NewJSON returns a JSON cache over backend. Entries live for ttl; zero
// selects the backend default.
func NewJSON[T any](backend Cacher, ttl time.Duration) *JSON[T] {
	return &JSON[T]{backend: backend, ttl: ttl}
}

// StaleWhen makes Get treat entries for which fn reports true as missing.
// It returns c and must be called before the cache is shared.
func (c *JSON[T]) StaleWhen(fn func(*T) bool) *JSON[T] {
	c.stale = fn
	return c
}

// Get returns the value under key. A missing key, an undecodable entry and
// a stale entry all report ErrCacheMiss.
func (c *JSON[T]) Get(ctx context.Context, key string) (*T, error) {
	data, err := c.backend.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, ErrCacheMiss
	}
	if c.stale != nil && c.stale(&v) {
		return nil, ErrCacheMiss
	}
	return &v, nil
}

// Set stores v under key.
func (c *JSON[T]) Set(ctx context.Context, key string, v *T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return c.backend.Set(ctx, key, data, c.ttl)
}

// Delete removes key.
func (c *JSON[T]) Delete(ctx context.Context, key string) error {
	return c.backend.Delete(ctx, key)
}

// GetOrLoad returns the cached value under key or calls load and caches
// its result. Concurrent misses on one key share a single load. Errors from
// load are returned and not cached; a failed cache write is ignored.
func (c *JSON[T]) GetOrLoad(ctx context.Context, key string, load func() (*T, error)) (*T, error) {
	v, err := c.Get(ctx, key)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, ErrCacheMiss) && !errors.Is(err, ErrCacheClosed) {
		// Backend trouble: serve from the source of truth.
		return load()
	}

	res, err, _ := c.group.Do(key, func() (any, error) {
		v, err := load()
		if err != nil {
			return nil, err
		}
		_ = c.Set(ctx, key, v)
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*T), nil
}
