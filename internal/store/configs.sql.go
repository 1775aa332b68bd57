// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

const articleConfigColumns = `id, user_id, site_id, date_available, published, date_insert, date_update, key_group, key, format, value, description, container_id, channel_id`

func scanArticleConfig(row rowScanner) (ArticleConfig, error) {
	var i ArticleConfig
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.SiteID,
		&i.DateAvailable,
		&i.Published,
		&i.DateInsert,
		&i.DateUpdate,
		&i.KeyGroup,
		&i.Key,
		&i.Format,
		&i.Value,
		&i.Description,
		&i.ContainerID,
		&i.ChannelID,
	)
	return i, err
}

const createArticleConfig = `
INSERT INTO article_configs (user_id, site_id, date_available, published, date_insert, date_update, key_group, key, format, value, description, container_id, channel_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + articleConfigColumns

type CreateArticleConfigParams struct {
	UserID        int64
	SiteID        int64
	DateAvailable time.Time
	Published     bool
	DateInsert    time.Time
	DateUpdate    time.Time
	KeyGroup      sql.NullString
	Key           string
	Format        string
	Value         string
	Description   string
	ContainerID   sql.NullInt64
	ChannelID     sql.NullInt64
}

func (q *Queries) CreateArticleConfig(ctx context.Context, arg CreateArticleConfigParams) (ArticleConfig, error) {
	row := q.db.QueryRowContext(ctx, createArticleConfig,
		arg.UserID,
		arg.SiteID,
		utc(arg.DateAvailable),
		arg.Published,
		utc(arg.DateInsert),
		utc(arg.DateUpdate),
		arg.KeyGroup,
		arg.Key,
		arg.Format,
		arg.Value,
		arg.Description,
		arg.ContainerID,
		arg.ChannelID,
	)
	return scanArticleConfig(row)
}

const updateArticleConfig = `
UPDATE article_configs SET date_available = ?, published = ?, date_update = ?, key_group = ?, key = ?, format = ?, value = ?, description = ?, container_id = ?, channel_id = ?
WHERE id = ?
RETURNING ` + articleConfigColumns

type UpdateArticleConfigParams struct {
	ID            int64
	DateAvailable time.Time
	Published     bool
	DateUpdate    time.Time
	KeyGroup      sql.NullString
	Key           string
	Format        string
	Value         string
	Description   string
	ContainerID   sql.NullInt64
	ChannelID     sql.NullInt64
}

func (q *Queries) UpdateArticleConfig(ctx context.Context, arg UpdateArticleConfigParams) (ArticleConfig, error) {
	row := q.db.QueryRowContext(ctx, updateArticleConfig,
		utc(arg.DateAvailable),
		arg.Published,
		utc(arg.DateUpdate),
		arg.KeyGroup,
		arg.Key,
		arg.Format,
		arg.Value,
		arg.Description,
		arg.ContainerID,
		arg.ChannelID,
		arg.ID,
	)
	return scanArticleConfig(row)
}

const getArticleConfigByID = `SELECT ` + articleConfigColumns + ` FROM article_configs WHERE id = ?`

func (q *Queries) GetArticleConfigByID(ctx context.Context, id int64) (ArticleConfig, error) {
	return scanArticleConfig(q.db.QueryRowContext(ctx, getArticleConfigByID, id))
}

const listArticleConfigs = `SELECT ` + articleConfigColumns + ` FROM article_configs ORDER BY id DESC LIMIT ? OFFSET ?`

func (q *Queries) ListArticleConfigs(ctx context.Context, limit, offset int64) ([]ArticleConfig, error) {
	return q.queryArticleConfigs(ctx, listArticleConfigs, limit, offset)
}

const countArticleConfigs = `SELECT COUNT(*) FROM article_configs`

func (q *Queries) CountArticleConfigs(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countArticleConfigs).Scan(&n)
	return n, err
}

// ConfigScope holds the optional equality filters of a configuration lookup.
// Nil fields do not filter.
type ConfigScope struct {
	SiteID      *int64
	ChannelID   *int64
	ContainerID *int64
	Format      *string
	Description *string
}

func (s ConfigScope) conds() ([]string, []any) {
	var conds []string
	var args []any
	if s.SiteID != nil {
		conds = append(conds, "site_id = ?")
		args = append(args, *s.SiteID)
	}
	if s.ChannelID != nil {
		conds = append(conds, "channel_id = ?")
		args = append(args, *s.ChannelID)
	}
	if s.ContainerID != nil {
		conds = append(conds, "container_id = ?")
		args = append(args, *s.ContainerID)
	}
	if s.Format != nil {
		conds = append(conds, "format = ?")
		args = append(args, *s.Format)
	}
	if s.Description != nil {
		conds = append(conds, "description = ?")
		args = append(args, *s.Description)
	}
	return conds, args
}

// GetLatestLiveConfig returns the most recently inserted live entry for key
// within scope. It returns sql.ErrNoRows when nothing matches.
func (q *Queries) GetLatestLiveConfig(ctx context.Context, key string, scope ConfigScope, now time.Time) (ArticleConfig, error) {
	conds := []string{"key = ?", "published = 1", "date_available <= ?"}
	args := []any{key, utc(now)}
	extra, extraArgs := scope.conds()
	conds = append(conds, extra...)
	args = append(args, extraArgs...)

	query := `SELECT ` + articleConfigColumns + ` FROM article_configs WHERE ` +
		strings.Join(conds, " AND ") + ` ORDER BY date_insert DESC, id DESC LIMIT 1`
	return scanArticleConfig(q.db.QueryRowContext(ctx, query, args...))
}

// ListLiveConfigsByGroup returns the live entries of a key group within scope,
// oldest insert first.
func (q *Queries) ListLiveConfigsByGroup(ctx context.Context, keyGroup string, scope ConfigScope, now time.Time) ([]ArticleConfig, error) {
	conds := []string{"key_group = ?", "published = 1", "date_available <= ?"}
	args := []any{keyGroup, utc(now)}
	extra, extraArgs := scope.conds()
	conds = append(conds, extra...)
	args = append(args, extraArgs...)

	query := `SELECT ` + articleConfigColumns + ` FROM article_configs WHERE ` +
		strings.Join(conds, " AND ") + ` ORDER BY date_insert ASC, id ASC`
	return q.queryArticleConfigs(ctx, query, args...)
}

func (q *Queries) queryArticleConfigs(ctx context.Context, query string, args ...any) ([]ArticleConfig, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []ArticleConfig
	for rows.Next() {
		i, err := scanArticleConfig(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
