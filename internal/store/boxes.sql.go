// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const querySetColumns = `id, user_id, site_id, date_available, published, date_insert, date_update, name, slug, model, ordering, row_limit, channel_id`

func scanQuerySet(row rowScanner) (QuerySet, error) {
	var i QuerySet
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
		&i.Model,
		&i.Ordering,
		&i.RowLimit,
		&i.ChannelID,
	)
	return i, err
}

const createQuerySet = `
INSERT INTO querysets (user_id, site_id, date_available, published, date_insert, date_update, name, slug, model, ordering, row_limit, channel_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + querySetColumns

type CreateQuerySetParams struct {
	UserID        int64
	SiteID        int64
	DateAvailable time.Time
	Published     bool
	DateInsert    time.Time
	DateUpdate    time.Time
	Name          string
	Slug          string
	Model         string
	Ordering      string
	RowLimit      int64
	ChannelID     sql.NullInt64
}

func (q *Queries) CreateQuerySet(ctx context.Context, arg CreateQuerySetParams) (QuerySet, error) {
	row := q.db.QueryRowContext(ctx, createQuerySet,
		arg.UserID,
		arg.SiteID,
		utc(arg.DateAvailable),
		arg.Published,
		utc(arg.DateInsert),
		utc(arg.DateUpdate),
		arg.Name,
		arg.Slug,
		arg.Model,
		arg.Ordering,
		arg.RowLimit,
		arg.ChannelID,
	)
	return scanQuerySet(row)
}

const updateQuerySet = `
UPDATE querysets SET date_available = ?, published = ?, date_update = ?, name = ?, slug = ?, model = ?, ordering = ?, row_limit = ?, channel_id = ?
WHERE id = ?
RETURNING ` + querySetColumns

type UpdateQuerySetParams struct {
	ID            int64
	DateAvailable time.Time
	Published     bool
	DateUpdate    time.Time
	Name          string
	Slug          string
	Model         string
	Ordering      string
	RowLimit      int64
	ChannelID     sql.NullInt64
}

func (q *Queries) UpdateQuerySet(ctx context.Context, arg UpdateQuerySetParams) (QuerySet, error) {
	row := q.db.QueryRowContext(ctx, updateQuerySet,
		utc(arg.DateAvailable),
		arg.Published,
		utc(arg.DateUpdate),
		arg.Name,
		arg.Slug,
		arg.Model,
		arg.Ordering,
		arg.RowLimit,
		arg.ChannelID,
		arg.ID,
	)
	return scanQuerySet(row)
}

const getQuerySetByID = `SELECT ` + querySetColumns + ` FROM querysets WHERE id = ?`

func (q *Queries) GetQuerySetByID(ctx context.Context, id int64) (QuerySet, error) {
	return scanQuerySet(q.db.QueryRowContext(ctx, getQuerySetByID, id))
}

const listQuerySets = `SELECT ` + querySetColumns + ` FROM querysets ORDER BY id DESC LIMIT ? OFFSET ?`

func (q *Queries) ListQuerySets(ctx context.Context, limit, offset int64) ([]QuerySet, error) {
	rows, err := q.db.QueryContext(ctx, listQuerySets, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []QuerySet
	for rows.Next() {
		i, err := scanQuerySet(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const containerBoxColumns = `id, user_id, site_id, date_available, published, date_insert, date_update, name, slug, container_id, channel_id, mode, queryset_id`

const containerBoxColumnsB = `b.id, b.user_id, b.site_id, b.date_available, b.published, b.date_insert, b.date_update, b.name, b.slug, b.container_id, b.channel_id, b.mode, b.queryset_id`

func scanContainerBox(row rowScanner) (ContainerBox, error) {
	var i ContainerBox
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
		&i.ContainerID,
		&i.ChannelID,
		&i.Mode,
		&i.QuerysetID,
	)
	return i, err
}

const createContainerBox = `
INSERT INTO container_boxes (user_id, site_id, date_available, published, date_insert, date_update, name, slug, container_id, channel_id, mode, queryset_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + containerBoxColumns

type CreateContainerBoxParams struct {
	UserID        int64
	SiteID        int64
	DateAvailable time.Time
	Published     bool
	DateInsert    time.Time
	DateUpdate    time.Time
	Name          string
	Slug          string
	ContainerID   sql.NullInt64
	ChannelID     sql.NullInt64
	Mode          string
	QuerysetID    sql.NullInt64
}

func (q *Queries) CreateContainerBox(ctx context.Context, arg CreateContainerBoxParams) (ContainerBox, error) {
	row := q.db.QueryRowContext(ctx, createContainerBox,
		arg.UserID,
		arg.SiteID,
		utc(arg.DateAvailable),
		arg.Published,
		utc(arg.DateInsert),
		utc(arg.DateUpdate),
		arg.Name,
		arg.Slug,
		arg.ContainerID,
		arg.ChannelID,
		arg.Mode,
		arg.QuerysetID,
	)
	return scanContainerBox(row)
}

const updateContainerBox = `
UPDATE container_boxes SET date_available = ?, published = ?, date_update = ?, name = ?, slug = ?, container_id = ?, channel_id = ?, mode = ?, queryset_id = ?
WHERE id = ?
RETURNING ` + containerBoxColumns

type UpdateContainerBoxParams struct {
	ID            int64
	DateAvailable time.Time
	Published     bool
	DateUpdate    time.Time
	Name          string
	Slug          string
	ContainerID   sql.NullInt64
	ChannelID     sql.NullInt64
	Mode          string
	QuerysetID    sql.NullInt64
}

func (q *Queries) UpdateContainerBox(ctx context.Context, arg UpdateContainerBoxParams) (ContainerBox, error) {
	row := q.db.QueryRowContext(ctx, updateContainerBox,
		utc(arg.DateAvailable),
		arg.Published,
		utc(arg.DateUpdate),
		arg.Name,
		arg.Slug,
		arg.ContainerID,
		arg.ChannelID,
		arg.Mode,
		arg.QuerysetID,
		arg.ID,
	)
	return scanContainerBox(row)
}

const getContainerBoxByID = `SELECT ` + containerBoxColumns + ` FROM container_boxes WHERE id = ?`

func (q *Queries) GetContainerBoxByID(ctx context.Context, id int64) (ContainerBox, error) {
	return scanContainerBox(q.db.QueryRowContext(ctx, getContainerBoxByID, id))
}

const getContainerBoxBySlug = `SELECT ` + containerBoxColumns + ` FROM container_boxes WHERE slug = ?`

func (q *Queries) GetContainerBoxBySlug(ctx context.Context, slug string) (ContainerBox, error) {
	return scanContainerBox(q.db.QueryRowContext(ctx, getContainerBoxBySlug, slug))
}

const listContainerBoxes = `SELECT ` + containerBoxColumns + ` FROM container_boxes ORDER BY id DESC LIMIT ? OFFSET ?`

func (q *Queries) ListContainerBoxes(ctx context.Context, limit, offset int64) ([]ContainerBox, error) {
	return q.queryContainerBoxes(ctx, listContainerBoxes, limit, offset)
}

const listChannelContainerBoxes = `
SELECT ` + containerBoxColumnsB + `
FROM container_boxes b
JOIN channels ch ON ch.id = b.channel_id
WHERE ch.site_id = ? AND ch.long_slug = ?
ORDER BY b.id`

// ListChannelContainerBoxes returns the boxes attached to a channel.
func (q *Queries) ListChannelContainerBoxes(ctx context.Context, siteID int64, longSlug string) ([]ContainerBox, error) {
	return q.queryContainerBoxes(ctx, listChannelContainerBoxes, siteID, longSlug)
}

const listChannelContainerBoxesForContainer = `
SELECT ` + containerBoxColumnsB + `
FROM container_boxes b
JOIN channels ch ON ch.id = b.channel_id
JOIN containers c ON c.id = b.container_id
WHERE ch.site_id = ? AND ch.long_slug = ? AND c.slug = ?
ORDER BY b.id`

// ListChannelContainerBoxesForContainer narrows ListChannelContainerBoxes to
// boxes attached to the container with the given slug.
func (q *Queries) ListChannelContainerBoxesForContainer(ctx context.Context, siteID int64, longSlug, containerSlug string) ([]ContainerBox, error) {
	return q.queryContainerBoxes(ctx, listChannelContainerBoxesForContainer, siteID, longSlug, containerSlug)
}

func (q *Queries) queryContainerBoxes(ctx context.Context, query string, args ...any) ([]ContainerBox, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []ContainerBox
	for rows.Next() {
		i, err := scanContainerBox(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const deleteBoxContainers = `DELETE FROM container_box_containers WHERE box_id = ?`

func (q *Queries) DeleteBoxContainers(ctx context.Context, boxID int64) error {
	_, err := q.db.ExecContext(ctx, deleteBoxContainers, boxID)
	return err
}

const addBoxContainer = `INSERT INTO container_box_containers (box_id, container_id, position) VALUES (?, ?, ?)`

func (q *Queries) AddBoxContainer(ctx context.Context, arg ContainerBoxContainer) error {
	_, err := q.db.ExecContext(ctx, addBoxContainer, arg.BoxID, arg.ContainerID, arg.Position)
	return err
}

const listBoxContainers = `
SELECT ` + containerColumnsC + `
FROM containers c
JOIN container_box_containers bc ON bc.container_id = c.id
WHERE bc.box_id = ?
ORDER BY bc.position, bc.id`

// ListBoxContainers returns every curated member of a box in stored order.
func (q *Queries) ListBoxContainers(ctx context.Context, boxID int64) ([]Container, error) {
	return q.queryContainers(ctx, listBoxContainers, boxID)
}

const listLiveBoxContainers = `
SELECT ` + containerColumnsC + `
FROM containers c
JOIN container_box_containers bc ON bc.container_id = c.id
WHERE bc.box_id = ?
  AND c.published = 1 AND c.date_available <= ?
ORDER BY bc.position, bc.id`

// ListLiveBoxContainers returns the live curated members of a box in stored order.
func (q *Queries) ListLiveBoxContainers(ctx context.Context, boxID int64, now time.Time) ([]Container, error) {
	return q.queryContainers(ctx, listLiveBoxContainers, boxID, utc(now))
}

const nextScheduledBoxContainer = `
SELECT c.date_available
FROM containers c
JOIN container_box_containers bc ON bc.container_id = c.id
WHERE bc.box_id = ?
  AND c.published = 1 AND c.date_available > ?
ORDER BY c.date_available ASC
LIMIT 1`

// NextScheduledBoxContainer returns the earliest future date_available among
// the published curated members of a box.
func (q *Queries) NextScheduledBoxContainer(ctx context.Context, boxID int64, now time.Time) (sql.NullTime, error) {
	return q.scanNextTime(ctx, nextScheduledBoxContainer, boxID, utc(now))
}

const dynamicBoxColumns = `id, user_id, site_id, date_available, published, date_insert, date_update, name, slug, container_id, channel_id, queryset_id`

func scanDynamicBox(row rowScanner) (DynamicBox, error) {
	var i DynamicBox
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
		&i.ContainerID,
		&i.ChannelID,
		&i.QuerysetID,
	)
	return i, err
}

const createDynamicBox = `
INSERT INTO dynamic_boxes (user_id, site_id, date_available, published, date_insert, date_update, name, slug, container_id, channel_id, queryset_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + dynamicBoxColumns

type CreateDynamicBoxParams struct {
	UserID        int64
	SiteID        int64
	DateAvailable time.Time
	Published     bool
	DateInsert    time.Time
	DateUpdate    time.Time
	Name          string
	Slug          string
	ContainerID   sql.NullInt64
	ChannelID     sql.NullInt64
	QuerysetID    int64
}

func (q *Queries) CreateDynamicBox(ctx context.Context, arg CreateDynamicBoxParams) (DynamicBox, error) {
	row := q.db.QueryRowContext(ctx, createDynamicBox,
		arg.UserID,
		arg.SiteID,
		utc(arg.DateAvailable),
		arg.Published,
		utc(arg.DateInsert),
		utc(arg.DateUpdate),
		arg.Name,
		arg.Slug,
		arg.ContainerID,
		arg.ChannelID,
		arg.QuerysetID,
	)
	return scanDynamicBox(row)
}

const updateDynamicBox = `
UPDATE dynamic_boxes SET date_available = ?, published = ?, date_update = ?, name = ?, slug = ?, container_id = ?, channel_id = ?, queryset_id = ?
WHERE id = ?
RETURNING ` + dynamicBoxColumns

type UpdateDynamicBoxParams struct {
	ID            int64
	DateAvailable time.Time
	Published     bool
	DateUpdate    time.Time
	Name          string
	Slug          string
	ContainerID   sql.NullInt64
	ChannelID     sql.NullInt64
	QuerysetID    int64
}

func (q *Queries) UpdateDynamicBox(ctx context.Context, arg UpdateDynamicBoxParams) (DynamicBox, error) {
	row := q.db.QueryRowContext(ctx, updateDynamicBox,
		utc(arg.DateAvailable),
		arg.Published,
		utc(arg.DateUpdate),
		arg.Name,
		arg.Slug,
		arg.ContainerID,
		arg.ChannelID,
		arg.QuerysetID,
		arg.ID,
	)
	return scanDynamicBox(row)
}

const getDynamicBoxByID = `SELECT ` + dynamicBoxColumns + ` FROM dynamic_boxes WHERE id = ?`

func (q *Queries) GetDynamicBoxByID(ctx context.Context, id int64) (DynamicBox, error) {
	return scanDynamicBox(q.db.QueryRowContext(ctx, getDynamicBoxByID, id))
}

const getDynamicBoxBySlug = `SELECT ` + dynamicBoxColumns + ` FROM dynamic_boxes WHERE slug = ?`

func (q *Queries) GetDynamicBoxBySlug(ctx context.Context, slug string) (DynamicBox, error) {
	return scanDynamicBox(q.db.QueryRowContext(ctx, getDynamicBoxBySlug, slug))
}

const listDynamicBoxes = `SELECT ` + dynamicBoxColumns + ` FROM dynamic_boxes ORDER BY id DESC LIMIT ? OFFSET ?`

func (q *Queries) ListDynamicBoxes(ctx context.Context, limit, offset int64) ([]DynamicBox, error) {
	rows, err := q.db.QueryContext(ctx, listDynamicBoxes, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []DynamicBox
	for rows.Next() {
		i, err := scanDynamicBox(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func (q *Queries) countRows(ctx context.Context, query string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, query).Scan(&n)
	return n, err
}

func (q *Queries) CountQuerySets(ctx context.Context) (int64, error) {
	return q.countRows(ctx, `SELECT COUNT(*) FROM querysets`)
}

func (q *Queries) CountContainerBoxes(ctx context.Context) (int64, error) {
	return q.countRows(ctx, `SELECT COUNT(*) FROM container_boxes`)
}

func (q *Queries) CountDynamicBoxes(ctx context.Context) (int64, error) {
	return q.countRows(ctx, `SELECT COUNT(*) FROM dynamic_boxes`)
}
