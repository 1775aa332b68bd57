// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

const containerColumns = `id, user_id, site_id, date_available, published, date_insert, date_update, title, slug, channel_id, channel_name, channel_long_slug, child_class, short_url, main_image_id, headline, short_title, content, url, link_container_id`

// containerColumnsC is containerColumns qualified with the "c" alias.
const containerColumnsC = `c.id, c.user_id, c.site_id, c.date_available, c.published, c.date_insert, c.date_update, c.title, c.slug, c.channel_id, c.channel_name, c.channel_long_slug, c.child_class, c.short_url, c.main_image_id, c.headline, c.short_title, c.content, c.url, c.link_container_id`

func scanContainer(row rowScanner) (Container, error) {
	var i Container
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.SiteID,
		&i.DateAvailable,
		&i.Published,
		&i.DateInsert,
		&i.DateUpdate,
		&i.Title,
		&i.Slug,
		&i.ChannelID,
		&i.ChannelName,
		&i.ChannelLongSlug,
		&i.ChildClass,
		&i.ShortUrl,
		&i.MainImageID,
		&i.Headline,
		&i.ShortTitle,
		&i.Content,
		&i.Url,
		&i.LinkContainerID,
	)
	return i, err
}

const createContainer = `
INSERT INTO containers (user_id, site_id, date_available, published, date_insert, date_update, title, slug, channel_id, channel_name, channel_long_slug, child_class, short_url, main_image_id, headline, short_title, content, url, link_container_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + containerColumns

type CreateContainerParams struct {
	UserID          int64
	SiteID          int64
	DateAvailable   time.Time
	Published       bool
	DateInsert      time.Time
	DateUpdate      time.Time
	Title           string
	Slug            string
	ChannelID       int64
	ChannelName     string
	ChannelLongSlug string
	ChildClass      string
	ShortUrl        string
	MainImageID     sql.NullInt64
	Headline        string
	ShortTitle      string
	Content         sql.NullString
	Url             sql.NullString
	LinkContainerID sql.NullInt64
}

func (q *Queries) CreateContainer(ctx context.Context, arg CreateContainerParams) (Container, error) {
	row := q.db.QueryRowContext(ctx, createContainer,
		arg.UserID,
		arg.SiteID,
		utc(arg.DateAvailable),
		arg.Published,
		utc(arg.DateInsert),
		utc(arg.DateUpdate),
		arg.Title,
		arg.Slug,
		arg.ChannelID,
		arg.ChannelName,
		arg.ChannelLongSlug,
		arg.ChildClass,
		arg.ShortUrl,
		arg.MainImageID,
		arg.Headline,
		arg.ShortTitle,
		arg.Content,
		arg.Url,
		arg.LinkContainerID,
	)
	return scanContainer(row)
}

const updateContainer = `
UPDATE containers SET
    date_available = ?, published = ?, date_update = ?, title = ?, slug = ?,
    channel_id = ?, channel_name = ?, channel_long_slug = ?, child_class = ?, short_url = ?,
    main_image_id = ?, headline = ?, short_title = ?, content = ?, url = ?, link_container_id = ?
WHERE id = ?
RETURNING ` + containerColumns

type UpdateContainerParams struct {
	ID              int64
	DateAvailable   time.Time
	Published       bool
	DateUpdate      time.Time
	Title           string
	Slug            string
	ChannelID       int64
	ChannelName     string
	ChannelLongSlug string
	ChildClass      string
	ShortUrl        string
	MainImageID     sql.NullInt64
	Headline        string
	ShortTitle      string
	Content         sql.NullString
	Url             sql.NullString
	LinkContainerID sql.NullInt64
}

func (q *Queries) UpdateContainer(ctx context.Context, arg UpdateContainerParams) (Container, error) {
	row := q.db.QueryRowContext(ctx, updateContainer,
		utc(arg.DateAvailable),
		arg.Published,
		utc(arg.DateUpdate),
		arg.Title,
		arg.Slug,
		arg.ChannelID,
		arg.ChannelName,
		arg.ChannelLongSlug,
		arg.ChildClass,
		arg.ShortUrl,
		arg.MainImageID,
		arg.Headline,
		arg.ShortTitle,
		arg.Content,
		arg.Url,
		arg.LinkContainerID,
		arg.ID,
	)
	return scanContainer(row)
}

const getContainerByID = `SELECT ` + containerColumns + ` FROM containers WHERE id = ?`

func (q *Queries) GetContainerByID(ctx context.Context, id int64) (Container, error) {
	return scanContainer(q.db.QueryRowContext(ctx, getContainerByID, id))
}

const getContainerBySlug = `SELECT ` + containerColumns + ` FROM containers WHERE slug = ?`

func (q *Queries) GetContainerBySlug(ctx context.Context, slug string) (Container, error) {
	return scanContainer(q.db.QueryRowContext(ctx, getContainerBySlug, slug))
}

const getContainerBySiteChannel = `SELECT ` + containerColumns + ` FROM containers WHERE site_id = ? AND channel_id = ?`

func (q *Queries) GetContainerBySiteChannel(ctx context.Context, siteID, channelID int64) (Container, error) {
	return scanContainer(q.db.QueryRowContext(ctx, getContainerBySiteChannel, siteID, channelID))
}

const listRecommendations = `
SELECT ` + containerColumnsC + `
FROM containers c
WHERE c.id != ?
  AND c.published = 1 AND c.date_available <= ?
  AND EXISTS (
      SELECT 1 FROM container_tags ct
      JOIN container_tags own ON own.tag_id = ct.tag_id AND own.container_id = ?
      WHERE ct.container_id = c.id
  )
ORDER BY c.date_available DESC, c.id DESC
LIMIT ?`

// ListRecommendations returns live containers sharing at least one tag with
// the given container, excluding the container itself.
func (q *Queries) ListRecommendations(ctx context.Context, containerID int64, now time.Time, limit int64) ([]Container, error) {
	return q.queryContainers(ctx, listRecommendations, containerID, utc(now), containerID, limit)
}

const listLiveChannelContainers = `
SELECT ` + containerColumns + `
FROM containers
WHERE site_id = ? AND channel_long_slug = ? AND child_class = ?
  AND published = 1 AND date_available <= ?
ORDER BY date_available DESC, id DESC
LIMIT ?`

type ListLiveChannelContainersParams struct {
	SiteID          int64
	ChannelLongSlug string
	ChildClass      string
	Now             time.Time
	Limit           int64
}

func (q *Queries) ListLiveChannelContainers(ctx context.Context, arg ListLiveChannelContainersParams) ([]Container, error) {
	return q.queryContainers(ctx, listLiveChannelContainers,
		arg.SiteID, arg.ChannelLongSlug, arg.ChildClass, utc(arg.Now), arg.Limit)
}

// ResolveLiveContainersParams describes a box query replay. Empty ChildClass
// matches every kind.
type ResolveLiveContainersParams struct {
	ChildClass string
	ChannelID  sql.NullInt64
	Ascending  bool
	Now        time.Time
	Limit      int64
}

// ResolveLiveContainers returns live containers matching the kind and channel
// filters, ordered by id in the requested direction.
func (q *Queries) ResolveLiveContainers(ctx context.Context, arg ResolveLiveContainersParams) ([]Container, error) {
	var sb strings.Builder
	args := []any{utc(arg.Now)}
	sb.WriteString(`SELECT ` + containerColumns + ` FROM containers WHERE published = 1 AND date_available <= ?`)
	if arg.ChildClass != "" {
		sb.WriteString(` AND child_class = ?`)
		args = append(args, arg.ChildClass)
	}
	if arg.ChannelID.Valid {
		sb.WriteString(` AND channel_id = ?`)
		args = append(args, arg.ChannelID.Int64)
	}
	if arg.Ascending {
		sb.WriteString(` ORDER BY id ASC`)
	} else {
		sb.WriteString(` ORDER BY id DESC`)
	}
	sb.WriteString(` LIMIT ?`)
	args = append(args, arg.Limit)
	return q.queryContainers(ctx, sb.String(), args...)
}

// NextScheduledContainer returns the earliest future date_available among
// published containers matching the kind and channel filters of arg. Limit
// and Ascending are ignored. An invalid result means nothing is scheduled.
func (q *Queries) NextScheduledContainer(ctx context.Context, arg ResolveLiveContainersParams) (sql.NullTime, error) {
	var sb strings.Builder
	args := []any{utc(arg.Now)}
	sb.WriteString(`SELECT date_available FROM containers WHERE published = 1 AND date_available > ?`)
	if arg.ChildClass != "" {
		sb.WriteString(` AND child_class = ?`)
		args = append(args, arg.ChildClass)
	}
	if arg.ChannelID.Valid {
		sb.WriteString(` AND channel_id = ?`)
		args = append(args, arg.ChannelID.Int64)
	}
	sb.WriteString(` ORDER BY date_available ASC LIMIT 1`)
	return q.scanNextTime(ctx, sb.String(), args...)
}

func (q *Queries) scanNextTime(ctx context.Context, query string, args ...any) (sql.NullTime, error) {
	var t time.Time
	err := q.db.QueryRowContext(ctx, query, args...).Scan(&t)
	if errors.Is(err, sql.ErrNoRows) {
		return sql.NullTime{}, nil
	}
	if err != nil {
		return sql.NullTime{}, err
	}
	return sql.NullTime{Time: t, Valid: true}, nil
}

// ContainerFilter narrows the admin listing. Zero values do not filter.
type ContainerFilter struct {
	Published     sql.NullBool
	ChannelName   string
	ChildClass    string
	AvailableFrom sql.NullTime
	AvailableTo   sql.NullTime
	Search        string
	// SearchFields lists the columns Search matches. Unknown names are
	// ignored; an empty list selects DefaultSearchFields.
	SearchFields []string
}

// DefaultSearchFields are the columns searched by the admin listing.
var DefaultSearchFields = []string{"title", "slug", "headline", "channel_name"}

var searchableColumns = map[string]bool{
	"title":             true,
	"slug":              true,
	"headline":          true,
	"short_title":       true,
	"channel_name":      true,
	"channel_long_slug": true,
	"short_url":         true,
}

func (f ContainerFilter) where() (string, []any) {
	var conds []string
	var args []any
	if f.Published.Valid {
		conds = append(conds, "published = ?")
		args = append(args, f.Published.Bool)
	}
	if f.ChannelName != "" {
		conds = append(conds, "channel_name = ?")
		args = append(args, f.ChannelName)
	}
	if f.ChildClass != "" {
		conds = append(conds, "child_class = ?")
		args = append(args, f.ChildClass)
	}
	if f.AvailableFrom.Valid {
		conds = append(conds, "date_available >= ?")
		args = append(args, nullUTC(f.AvailableFrom).Time)
	}
	if f.AvailableTo.Valid {
		conds = append(conds, "date_available <= ?")
		args = append(args, nullUTC(f.AvailableTo).Time)
	}
	if f.Search != "" {
		fields := f.SearchFields
		if len(fields) == 0 {
			fields = DefaultSearchFields
		}
		like := "%" + f.Search + "%"
		var ors []string
		for _, field := range fields {
			if !searchableColumns[field] {
				continue
			}
			ors = append(ors, field+" LIKE ?")
			args = append(args, like)
		}
		if len(ors) > 0 {
			conds = append(conds, "("+strings.Join(ors, " OR ")+")")
		}
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListContainers lists containers of every kind, newest availability first.
func (q *Queries) ListContainers(ctx context.Context, f ContainerFilter, limit, offset int64) ([]Container, error) {
	where, args := f.where()
	query := `SELECT ` + containerColumns + ` FROM containers` + where + ` ORDER BY date_available DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)
	return q.queryContainers(ctx, query, args...)
}

func (q *Queries) CountContainers(ctx context.Context, f ContainerFilter) (int64, error) {
	where, args := f.where()
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM containers`+where, args...).Scan(&count)
	return count, err
}

const deletePostAlbums = `DELETE FROM post_albums WHERE post_id = ?`

func (q *Queries) DeletePostAlbums(ctx context.Context, postID int64) error {
	_, err := q.db.ExecContext(ctx, deletePostAlbums, postID)
	return err
}

const addPostAlbum = `INSERT OR IGNORE INTO post_albums (post_id, album_id) VALUES (?, ?)`

func (q *Queries) AddPostAlbum(ctx context.Context, postID, albumID int64) error {
	_, err := q.db.ExecContext(ctx, addPostAlbum, postID, albumID)
	return err
}

const listPostAlbumIDs = `SELECT album_id FROM post_albums WHERE post_id = ? ORDER BY album_id`

func (q *Queries) ListPostAlbumIDs(ctx context.Context, postID int64) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listPostAlbumIDs, postID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		items = append(items, id)
	}
	return items, rows.Err()
}

func (q *Queries) queryContainers(ctx context.Context, query string, args ...any) ([]Container, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []Container
	for rows.Next() {
		i, err := scanContainer(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
