// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import "context"

const upsertTag = `
INSERT INTO tags (name, slug) VALUES (?, ?)
ON CONFLICT (slug) DO UPDATE SET slug = excluded.slug
RETURNING id, name, slug`

// UpsertTag returns the tag with slug, creating it when missing.
func (q *Queries) UpsertTag(ctx context.Context, name, slug string) (Tag, error) {
	var i Tag
	err := q.db.QueryRowContext(ctx, upsertTag, name, slug).Scan(&i.ID, &i.Name, &i.Slug)
	return i, err
}

const deleteContainerTags = `DELETE FROM container_tags WHERE container_id = ?`

func (q *Queries) DeleteContainerTags(ctx context.Context, containerID int64) error {
	_, err := q.db.ExecContext(ctx, deleteContainerTags, containerID)
	return err
}

const addContainerTag = `INSERT OR IGNORE INTO container_tags (container_id, tag_id) VALUES (?, ?)`

func (q *Queries) AddContainerTag(ctx context.Context, containerID, tagID int64) error {
	_, err := q.db.ExecContext(ctx, addContainerTag, containerID, tagID)
	return err
}

const listContainerTags = `
SELECT t.id, t.name, t.slug FROM tags t
JOIN container_tags ct ON ct.tag_id = t.id
WHERE ct.container_id = ?
ORDER BY t.name`

func (q *Queries) ListContainerTags(ctx context.Context, containerID int64) ([]Tag, error) {
	return q.listTags(ctx, listContainerTags, containerID)
}

const deleteImageTags = `DELETE FROM image_tags WHERE image_id = ?`

func (q *Queries) DeleteImageTags(ctx context.Context, imageID int64) error {
	_, err := q.db.ExecContext(ctx, deleteImageTags, imageID)
	return err
}

const addImageTag = `INSERT OR IGNORE INTO image_tags (image_id, tag_id) VALUES (?, ?)`

func (q *Queries) AddImageTag(ctx context.Context, imageID, tagID int64) error {
	_, err := q.db.ExecContext(ctx, addImageTag, imageID, tagID)
	return err
}

const listImageTags = `
SELECT t.id, t.name, t.slug FROM tags t
JOIN image_tags it ON it.tag_id = t.id
WHERE it.image_id = ?
ORDER BY t.name`

func (q *Queries) ListImageTags(ctx context.Context, imageID int64) ([]Tag, error) {
	return q.listTags(ctx, listImageTags, imageID)
}

func (q *Queries) listTags(ctx context.Context, query string, id int64) ([]Tag, error) {
	rows, err := q.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []Tag
	for rows.Next() {
		var i Tag
		if err := rows.Scan(&i.ID, &i.Name, &i.Slug); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
