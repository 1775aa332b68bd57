// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	lru "github.com/hashicorp/golang-lru"

	"github.com/olegiv/opps-go/internal/store"
)

// DefaultRedirectCacheSize is the number of (site, path) lookups kept.
const DefaultRedirectCacheSize = 4096

// RedirectResolver looks up the redirect stored for a path.
type RedirectResolver interface {
	Resolve(ctx context.Context, siteID int64, path string) (store.Redirect, bool, error)
}

// redirectLookup is a cached resolution, misses included.
type redirectLookup struct {
	newPath string
	found   bool
}

// RedirectsMiddleware answers requests whose path is a recorded redirect
// source: 301 to the new path, or 410 when the new path is empty.
type RedirectsMiddleware struct {
	resolver RedirectResolver
	siteID   int64
	cache    *lru.Cache
	skip     []string
}

// NewRedirectsMiddleware creates the middleware for siteID. Lookups are
// kept in a bounded LRU until InvalidateCache is called.
func NewRedirectsMiddleware(resolver RedirectResolver, siteID int64, cacheSize int) (*RedirectsMiddleware, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultRedirectCacheSize
	}
	c, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating redirect cache: %w", err)
	}
	return &RedirectsMiddleware{
		resolver: resolver,
		siteID:   siteID,
		cache:    c,
		skip:     []string{"/api/", "/media/", "/health"},
	}, nil
}

// InvalidateCache drops every cached lookup.
func (rm *RedirectsMiddleware) InvalidateCache() {
	rm.cache.Purge()
}

func (rm *RedirectsMiddleware) lookup(ctx context.Context, path string) (redirectLookup, error) {
	if v, ok := rm.cache.Get(path); ok {
		return v.(redirectLookup), nil
	}
	rd, found, err := rm.resolver.Resolve(ctx, rm.siteID, path)
	if err != nil {
		return redirectLookup{}, err
	}
	res := redirectLookup{newPath: rd.NewPath, found: found}
	rm.cache.Add(path, res)
	return res, nil
}

// Handler returns the middleware handler function.
func (rm *RedirectsMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}
		for _, prefix := range rm.skip {
			if strings.HasPrefix(path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
		}

		res, err := rm.lookup(r.Context(), path)
		if err != nil {
			slog.Error("failed to resolve redirect", "path", path, "error", err)
			next.ServeHTTP(w, r)
			return
		}
		if !res.found {
			next.ServeHTTP(w, r)
			return
		}
		if res.newPath == "" {
			slog.Debug("redirect gone", "source", path)
			WriteAPIError(w, http.StatusGone, "gone", "This content has been removed", nil)
			return
		}

		target := res.newPath
		if r.URL.RawQuery != "" {
			if strings.Contains(target, "?") {
				target += "&" + r.URL.RawQuery
			} else {
				target += "?" + r.URL.RawQuery
			}
		}

		slog.Debug("redirect matched", "source", path, "target", target)
		http.Redirect(w, r, target, http.StatusMovedPermanently)
	})
}
