// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"sync"
	"time"
)

// Local is a process-local TTL map holding values of type V without
// serialisation. Use it for data that must not leave the process, such as
// per-site lookup tables.
type Local[V any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]localEntry[V]
	now     func() time.Time
}

type localEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// NewLocal creates a Local map whose entries expire after ttl.
func NewLocal[V any](ttl time.Duration) *Local[V] {
	return &Local[V]{
		ttl:     ttl,
		entries: make(map[string]localEntry[V]),
		now:     time.Now,
	}
}

// Get returns the live value stored under key.
func (c *Local[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().After(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key.
func (c *Local[V]) Set(key string, value V) {
	c.mu.Lock()
	c.entries[key] = localEntry[V]{value: value, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// GetOrLoad returns the cached value for key or stores the result of load.
// Errors from load are returned and nothing is cached.
func (c *Local[V]) GetOrLoad(key string, load func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	c.Set(key, v)
	return v, nil
}

// Clear drops every entry.
func (c *Local[V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]localEntry[V])
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included.
func (c *Local[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
