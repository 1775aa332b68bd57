// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package shortener

import (
	"context"
	"fmt"
)

// PathPrefix is the redirect namespace used by Local.
const PathPrefix = "/s/"

const maxCodeAttempts = 5

// RedirectStore is the part of the redirect service Local needs.
type RedirectStore interface {
	Exists(ctx context.Context, siteID int64, oldPath string) (bool, error)
	Record(ctx context.Context, siteID int64, oldPath, newPath string) error
}

// Local shortens URLs by creating "/s/{code}" redirects on the site itself.
type Local struct {
	redirects RedirectStore
	siteID    int64
	domain    string
}

// NewLocal creates a Local shortener for the site at domain.
func NewLocal(redirects RedirectStore, siteID int64, domain string) *Local {
	return &Local{redirects: redirects, siteID: siteID, domain: domain}
}

// Shorten implements Shortener.
func (l *Local) Shorten(ctx context.Context, longURL string) (string, error) {
	for range maxCodeAttempts {
		code, err := GenerateCode(CodeLength)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrShorten, err)
		}
		path := PathPrefix + code

		taken, err := l.redirects.Exists(ctx, l.siteID, path)
		if err != nil {
			return "", fmt.Errorf("%w: checking code: %v", ErrShorten, err)
		}
		if taken {
			continue
		}

		if err := l.redirects.Record(ctx, l.siteID, path, longURL); err != nil {
			return "", fmt.Errorf("%w: recording redirect: %v", ErrShorten, err)
		}
		return "http://" + l.domain + path, nil
	}
	return "", fmt.Errorf("%w: no free code after %d attempts", ErrShorten, maxCodeAttempts)
}
