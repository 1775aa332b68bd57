// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/olegiv/opps-go/internal/store"
)

// RedirectService records and resolves (site, old path) -> new path redirects.
type RedirectService struct {
	queries *store.Queries
	logger  *slog.Logger

	mu        sync.RWMutex
	listeners []func()
}

// NewRedirectService creates a RedirectService.
func NewRedirectService(db store.DBTX, logger *slog.Logger) *RedirectService {
	return &RedirectService{queries: store.New(db), logger: logger}
}

// OnChange registers fn to run after every recorded redirect.
func (s *RedirectService) OnChange(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *RedirectService) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, fn := range s.listeners {
		fn()
	}
}

// Record creates the redirect for (siteID, oldPath) or repoints it at newPath.
func (s *RedirectService) Record(ctx context.Context, siteID int64, oldPath, newPath string) error {
	rd, err := s.queries.UpsertRedirect(ctx, store.UpsertRedirectParams{
		SiteID:  siteID,
		OldPath: oldPath,
		NewPath: newPath,
		Now:     time.Now(),
	})
	if err != nil {
		return fmt.Errorf("recording redirect %s: %w", oldPath, err)
	}
	s.logger.Info("redirect recorded", "id", rd.ID, "site_id", siteID, "old_path", oldPath, "new_path", newPath)
	s.notify()
	return nil
}

// Exists reports whether oldPath is already a redirect source on the site.
func (s *RedirectService) Exists(ctx context.Context, siteID int64, oldPath string) (bool, error) {
	ok, err := s.queries.RedirectExists(ctx, siteID, oldPath)
	if err != nil {
		return false, fmt.Errorf("checking redirect %s: %w", oldPath, err)
	}
	return ok, nil
}

// Resolve returns the redirect stored for path. ok is false when none exists.
func (s *RedirectService) Resolve(ctx context.Context, siteID int64, path string) (rd store.Redirect, ok bool, err error) {
	rd, err = s.queries.GetRedirectByPath(ctx, siteID, path)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Redirect{}, false, nil
	}
	if err != nil {
		return store.Redirect{}, false, fmt.Errorf("resolving redirect %s: %w", path, err)
	}
	return rd, true, nil
}

// All returns every redirect of a site.
func (s *RedirectService) All(ctx context.Context, siteID int64) ([]store.Redirect, error) {
	return s.queries.ListSiteRedirects(ctx, siteID)
}

// List returns a page of redirects and the total count.
func (s *RedirectService) List(ctx context.Context, siteID, limit, offset int64) ([]store.Redirect, int64, error) {
	items, err := s.queries.ListRedirects(ctx, siteID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing redirects: %w", err)
	}
	total, err := s.queries.CountRedirects(ctx, siteID)
	if err != nil {
		return nil, 0, fmt.Errorf("counting redirects: %w", err)
	}
	return items, total, nil
}
