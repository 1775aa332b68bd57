// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const sourceColumns = `id, user_id, site_id, date_available, published, date_insert, date_update, name, slug, url, feed`

func scanSource(row rowScanner) (Source, error) {
	var i Source
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.SiteID,
		&i.DateAvailable,
		&i.Published,
		&i.DateInsert,
		&i.DateUpdate,
		&i.Name,
		&i.Slug,
		&i.Url,
		&i.Feed,
	)
	return i, err
}

const createSource = `
INSERT INTO sources (user_id, site_id, date_available, published, date_insert, date_update, name, slug, url, feed)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + sourceColumns

type CreateSourceParams struct {
	UserID        int64
	SiteID        int64
	DateAvailable time.Time
	Published     bool
	DateInsert    time.Time
	DateUpdate    time.Time
	Name          string
	Slug          string
	Url           string
	Feed          string
}

func (q *Queries) CreateSource(ctx context.Context, arg CreateSourceParams) (Source, error) {
	row := q.db.QueryRowContext(ctx, createSource,
		arg.UserID,
		arg.SiteID,
		utc(arg.DateAvailable),
		arg.Published,
		utc(arg.DateInsert),
		utc(arg.DateUpdate),
		arg.Name,
		arg.Slug,
		arg.Url,
		arg.Feed,
	)
	return scanSource(row)
}

const updateSource = `
UPDATE sources SET date_available = ?, published = ?, date_update = ?, name = ?, slug = ?, url = ?, feed = ?
WHERE id = ?
RETURNING ` + sourceColumns

type UpdateSourceParams struct {
	ID            int64
	DateAvailable time.Time
	Published     bool
	DateUpdate    time.Time
	Name          string
	Slug          string
	Url           string
	Feed          string
}

func (q *Queries) UpdateSource(ctx context.Context, arg UpdateSourceParams) (Source, error) {
	row := q.db.QueryRowContext(ctx, updateSource,
		utc(arg.DateAvailable),
		arg.Published,
		utc(arg.DateUpdate),
		arg.Name,
		arg.Slug,
		arg.Url,
		arg.Feed,
		arg.ID,
	)
	return scanSource(row)
}

const getSourceByID = `SELECT ` + sourceColumns + ` FROM sources WHERE id = ?`

func (q *Queries) GetSourceByID(ctx context.Context, id int64) (Source, error) {
	return scanSource(q.db.QueryRowContext(ctx, getSourceByID, id))
}

const getSourceBySlug = `SELECT ` + sourceColumns + ` FROM sources WHERE slug = ?`

func (q *Queries) GetSourceBySlug(ctx context.Context, slug string) (Source, error) {
	return scanSource(q.db.QueryRowContext(ctx, getSourceBySlug, slug))
}

const listSources = `SELECT ` + sourceColumns + ` FROM sources ORDER BY id DESC LIMIT ? OFFSET ?`

func (q *Queries) ListSources(ctx context.Context, limit, offset int64) ([]Source, error) {
	return q.querySources(ctx, listSources, limit, offset)
}

const countSources = `SELECT COUNT(*) FROM sources`

func (q *Queries) CountSources(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countSources).Scan(&count)
	return count, err
}

const listContainerSources = `
SELECT s.id, s.user_id, s.site_id, s.date_available, s.published, s.date_insert, s.date_update, s.name, s.slug, s.url, s.feed
FROM sources s
JOIN container_sources cs ON cs.source_id = s.id
WHERE cs.container_id = ?
ORDER BY cs.position, cs.id`

// ListContainerSources returns the sources attached to a container in stored order.
func (q *Queries) ListContainerSources(ctx context.Context, containerID int64) ([]Source, error) {
	return q.querySources(ctx, listContainerSources, containerID)
}

const deleteContainerSources = `DELETE FROM container_sources WHERE container_id = ?`

func (q *Queries) DeleteContainerSources(ctx context.Context, containerID int64) error {
	_, err := q.db.ExecContext(ctx, deleteContainerSources, containerID)
	return err
}

const addContainerSource = `INSERT INTO container_sources (container_id, source_id, position) VALUES (?, ?, ?)`

func (q *Queries) AddContainerSource(ctx context.Context, arg ContainerSource) error {
	_, err := q.db.ExecContext(ctx, addContainerSource, arg.ContainerID, arg.SourceID, arg.Position)
	return err
}

func (q *Queries) querySources(ctx context.Context, query string, args ...any) ([]Source, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []Source
	for rows.Next() {
		i, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
