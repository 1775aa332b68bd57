// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const redirectColumns = `id, site_id, old_path, new_path, created_at, updated_at`

func scanRedirect(row rowScanner) (Redirect, error) {
	var i Redirect
	err := row.Scan(
		&i.ID,
		&i.SiteID,
		&i.OldPath,
		&i.NewPath,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertRedirect = `
INSERT INTO redirects (site_id, old_path, new_path, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (site_id, old_path) DO UPDATE SET
    new_path = excluded.new_path,
    updated_at = excluded.updated_at
RETURNING ` + redirectColumns

type UpsertRedirectParams struct {
	SiteID  int64
	OldPath string
	NewPath string
	Now     time.Time
}

// UpsertRedirect creates the (site, old_path) redirect or points the existing
// one at the new path.
func (q *Queries) UpsertRedirect(ctx context.Context, arg UpsertRedirectParams) (Redirect, error) {
	row := q.db.QueryRowContext(ctx, upsertRedirect,
		arg.SiteID,
		arg.OldPath,
		arg.NewPath,
		utc(arg.Now),
		utc(arg.Now),
	)
	return scanRedirect(row)
}

const getRedirectByPath = `SELECT ` + redirectColumns + ` FROM redirects WHERE site_id = ? AND old_path = ?`

func (q *Queries) GetRedirectByPath(ctx context.Context, siteID int64, oldPath string) (Redirect, error) {
	return scanRedirect(q.db.QueryRowContext(ctx, getRedirectByPath, siteID, oldPath))
}

const redirectExists = `SELECT EXISTS (SELECT 1 FROM redirects WHERE site_id = ? AND old_path = ?)`

func (q *Queries) RedirectExists(ctx context.Context, siteID int64, oldPath string) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, redirectExists, siteID, oldPath).Scan(&exists)
	return exists, err
}

const countRedirects = `SELECT COUNT(*) FROM redirects WHERE site_id = ?`

func (q *Queries) CountRedirects(ctx context.Context, siteID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countRedirects, siteID).Scan(&count)
	return count, err
}

const listRedirects = `SELECT ` + redirectColumns + ` FROM redirects WHERE site_id = ? ORDER BY id LIMIT ? OFFSET ?`

func (q *Queries) ListRedirects(ctx context.Context, siteID, limit, offset int64) ([]Redirect, error) {
	rows, err := q.db.QueryContext(ctx, listRedirects, siteID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []Redirect
	for rows.Next() {
		i, err := scanRedirect(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const listSiteRedirects = `SELECT ` + redirectColumns + ` FROM redirects WHERE site_id = ? ORDER BY id`

// ListSiteRedirects returns every redirect of a site, gone entries included.
func (q *Queries) ListSiteRedirects(ctx context.Context, siteID int64) ([]Redirect, error) {
	rows, err := q.db.QueryContext(ctx, listSiteRedirects, siteID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []Redirect
	for rows.Next() {
		i, err := scanRedirect(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
