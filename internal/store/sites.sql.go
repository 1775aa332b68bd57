// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const createSite = `INSERT INTO sites (domain, name) VALUES (?, ?) RETURNING id, domain, name`

type CreateSiteParams struct {
	Domain string
	Name   string
}

func (q *Queries) CreateSite(ctx context.Context, arg CreateSiteParams) (Site, error) {
	var i Site
	err := q.db.QueryRowContext(ctx, createSite, arg.Domain, arg.Name).Scan(&i.ID, &i.Domain, &i.Name)
	return i, err
}

const getSiteByID = `SELECT id, domain, name FROM sites WHERE id = ?`

func (q *Queries) GetSiteByID(ctx context.Context, id int64) (Site, error) {
	var i Site
	err := q.db.QueryRowContext(ctx, getSiteByID, id).Scan(&i.ID, &i.Domain, &i.Name)
	return i, err
}

const getSiteByDomain = `SELECT id, domain, name FROM sites WHERE domain = ?`

func (q *Queries) GetSiteByDomain(ctx context.Context, domain string) (Site, error) {
	var i Site
	err := q.db.QueryRowContext(ctx, getSiteByDomain, domain).Scan(&i.ID, &i.Domain, &i.Name)
	return i, err
}

const channelColumns = `id, site_id, parent_id, name, slug, long_slug, created_at, updated_at`

func scanChannel(row rowScanner) (Channel, error) {
	var i Channel
	err := row.Scan(
		&i.ID,
		&i.SiteID,
		&i.ParentID,
		&i.Name,
		&i.Slug,
		&i.LongSlug,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createChannel = `
INSERT INTO channels (site_id, parent_id, name, slug, long_slug, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + channelColumns

type CreateChannelParams struct {
	SiteID    int64
	ParentID  sql.NullInt64
	Name      string
	Slug      string
	LongSlug  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (q *Queries) CreateChannel(ctx context.Context, arg CreateChannelParams) (Channel, error) {
	row := q.db.QueryRowContext(ctx, createChannel,
		arg.SiteID,
		arg.ParentID,
		arg.Name,
		arg.Slug,
		arg.LongSlug,
		utc(arg.CreatedAt),
		utc(arg.UpdatedAt),
	)
	return scanChannel(row)
}

const updateChannel = `
UPDATE channels SET parent_id = ?, name = ?, slug = ?, long_slug = ?, updated_at = ?
WHERE id = ?
RETURNING ` + channelColumns

type UpdateChannelParams struct {
	ID        int64
	ParentID  sql.NullInt64
	Name      string
	Slug      string
	LongSlug  string
	UpdatedAt time.Time
}

func (q *Queries) UpdateChannel(ctx context.Context, arg UpdateChannelParams) (Channel, error) {
	row := q.db.QueryRowContext(ctx, updateChannel,
		arg.ParentID,
		arg.Name,
		arg.Slug,
		arg.LongSlug,
		utc(arg.UpdatedAt),
		arg.ID,
	)
	return scanChannel(row)
}

const getChannelByID = `SELECT ` + channelColumns + ` FROM channels WHERE id = ?`

func (q *Queries) GetChannelByID(ctx context.Context, id int64) (Channel, error) {
	return scanChannel(q.db.QueryRowContext(ctx, getChannelByID, id))
}

const getChannelByLongSlug = `SELECT ` + channelColumns + ` FROM channels WHERE site_id = ? AND long_slug = ?`

func (q *Queries) GetChannelByLongSlug(ctx context.Context, siteID int64, longSlug string) (Channel, error) {
	return scanChannel(q.db.QueryRowContext(ctx, getChannelByLongSlug, siteID, longSlug))
}

const listChannels = `SELECT ` + channelColumns + ` FROM channels WHERE site_id = ? ORDER BY long_slug`

func (q *Queries) ListChannels(ctx context.Context, siteID int64) ([]Channel, error) {
	rows, err := q.db.QueryContext(ctx, listChannels, siteID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []Channel
	for rows.Next() {
		i, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const listChildChannels = `SELECT ` + channelColumns + ` FROM channels WHERE parent_id = ? ORDER BY id`

func (q *Queries) ListChildChannels(ctx context.Context, parentID int64) ([]Channel, error) {
	rows, err := q.db.QueryContext(ctx, listChildChannels, parentID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []Channel
	for rows.Next() {
		i, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const resyncContainerChannels = `
UPDATE containers
SET channel_name = (SELECT ch.name FROM channels ch WHERE ch.id = containers.channel_id),
    channel_long_slug = (SELECT ch.long_slug FROM channels ch WHERE ch.id = containers.channel_id)
WHERE EXISTS (
    SELECT 1 FROM channels ch
    WHERE ch.id = containers.channel_id
      AND (ch.name != containers.channel_name OR ch.long_slug != containers.channel_long_slug)
)`

// ResyncContainerChannels copies channel name and long slug into containers
// whose denormalised copies drifted. It returns the number of rows fixed.
func (q *Queries) ResyncContainerChannels(ctx context.Context) (int64, error) {
	res, err := q.db.ExecContext(ctx, resyncContainerChannels)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
