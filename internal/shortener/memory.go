// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package shortener

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process Shortener that remembers every call. Err, when
// set, is returned instead of a short URL.
type Memory struct {
	mu    sync.Mutex
	calls []string
	Err   error
}

// Shorten implements Shortener.
func (m *Memory) Shorten(_ context.Context, longURL string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, longURL)
	if m.Err != nil {
		return "", fmt.Errorf("%w: %v", ErrShorten, m.Err)
	}
	return fmt.Sprintf("http://sho.rt/%d", len(m.calls)), nil
}

// Calls returns the long URLs passed to Shorten, in order.
func (m *Memory) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
