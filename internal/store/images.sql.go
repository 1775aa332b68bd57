// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const imageColumns = `id, user_id, site_id, date_available, published, date_insert, date_update, title, slug, file_path, mime_type, width, height, size, description, source_id`

// imageColumnsI is imageColumns qualified with the "i" alias.
const imageColumnsI = `i.id, i.user_id, i.site_id, i.date_available, i.published, i.date_insert, i.date_update, i.title, i.slug, i.file_path, i.mime_type, i.width, i.height, i.size, i.description, i.source_id`

func scanImage(row rowScanner) (Image, error) {
	var i Image
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
		&i.FilePath,
		&i.MimeType,
		&i.Width,
		&i.Height,
		&i.Size,
		&i.Description,
		&i.SourceID,
	)
	return i, err
}

const createImage = `
INSERT INTO images (user_id, site_id, date_available, published, date_insert, date_update, title, slug, file_path, mime_type, width, height, size, description, source_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + imageColumns

type CreateImageParams struct {
	UserID        int64
	SiteID        int64
	DateAvailable time.Time
	Published     bool
	DateInsert    time.Time
	DateUpdate    time.Time
	Title         string
	Slug          string
	FilePath      string
	MimeType      string
	Width         int64
	Height        int64
	Size          int64
	Description   string
	SourceID      sql.NullInt64
}

func (q *Queries) CreateImage(ctx context.Context, arg CreateImageParams) (Image, error) {
	row := q.db.QueryRowContext(ctx, createImage,
		arg.UserID,
		arg.SiteID,
		utc(arg.DateAvailable),
		arg.Published,
		utc(arg.DateInsert),
		utc(arg.DateUpdate),
		arg.Title,
		arg.Slug,
		arg.FilePath,
		arg.MimeType,
		arg.Width,
		arg.Height,
		arg.Size,
		arg.Description,
		arg.SourceID,
	)
	return scanImage(row)
}

const updateImage = `
UPDATE images SET date_available = ?, published = ?, date_update = ?, title = ?, slug = ?, description = ?, source_id = ?
WHERE id = ?
RETURNING ` + imageColumns

type UpdateImageParams struct {
	ID            int64
	DateAvailable time.Time
	Published     bool
	DateUpdate    time.Time
	Title         string
	Slug          string
	Description   string
	SourceID      sql.NullInt64
}

func (q *Queries) UpdateImage(ctx context.Context, arg UpdateImageParams) (Image, error) {
	row := q.db.QueryRowContext(ctx, updateImage,
		utc(arg.DateAvailable),
		arg.Published,
		utc(arg.DateUpdate),
		arg.Title,
		arg.Slug,
		arg.Description,
		arg.SourceID,
		arg.ID,
	)
	return scanImage(row)
}

const getImageByID = `SELECT ` + imageColumns + ` FROM images WHERE id = ?`

func (q *Queries) GetImageByID(ctx context.Context, id int64) (Image, error) {
	return scanImage(q.db.QueryRowContext(ctx, getImageByID, id))
}

const listImages = `SELECT ` + imageColumns + ` FROM images ORDER BY id DESC LIMIT ? OFFSET ?`

func (q *Queries) ListImages(ctx context.Context, limit, offset int64) ([]Image, error) {
	return q.queryImages(ctx, listImages, limit, offset)
}

const countImages = `SELECT COUNT(*) FROM images`

func (q *Queries) CountImages(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countImages).Scan(&count)
	return count, err
}

const listContainerImages = `
SELECT ` + imageColumnsI + `
FROM images i
JOIN container_images ci ON ci.image_id = i.id
WHERE ci.container_id = ?
ORDER BY ci.position, ci.id`

// ListContainerImages returns every image attached to a container in stored order.
func (q *Queries) ListContainerImages(ctx context.Context, containerID int64) ([]Image, error) {
	return q.queryImages(ctx, listContainerImages, containerID)
}

const listLiveContainerImages = `
SELECT ` + imageColumnsI + `
FROM images i
JOIN container_images ci ON ci.image_id = i.id
WHERE ci.container_id = ?
  AND i.published = 1 AND i.date_available <= ?
ORDER BY ci.position, ci.id`

// ListLiveContainerImages returns the live images of a container in stored order.
func (q *Queries) ListLiveContainerImages(ctx context.Context, containerID int64, now time.Time) ([]Image, error) {
	return q.queryImages(ctx, listLiveContainerImages, containerID, utc(now))
}

const listLiveAlbumImagesForPost = `
SELECT ` + imageColumnsI + `
FROM post_albums pa
JOIN containers a ON a.id = pa.album_id
JOIN container_images ci ON ci.container_id = a.id
JOIN images i ON i.id = ci.image_id
WHERE pa.post_id = ?
  AND a.published = 1 AND a.date_available <= ?
  AND i.published = 1 AND i.date_available <= ?
ORDER BY a.id, ci.position, ci.id`

// ListLiveAlbumImagesForPost returns the live images of the live albums linked to a post.
func (q *Queries) ListLiveAlbumImagesForPost(ctx context.Context, postID int64, now time.Time) ([]Image, error) {
	return q.queryImages(ctx, listLiveAlbumImagesForPost, postID, utc(now), utc(now))
}

const deleteContainerImages = `DELETE FROM container_images WHERE container_id = ?`

func (q *Queries) DeleteContainerImages(ctx context.Context, containerID int64) error {
	_, err := q.db.ExecContext(ctx, deleteContainerImages, containerID)
	return err
}

const addContainerImage = `INSERT INTO container_images (container_id, image_id, position) VALUES (?, ?, ?)`

func (q *Queries) AddContainerImage(ctx context.Context, arg ContainerImage) error {
	_, err := q.db.ExecContext(ctx, addContainerImage, arg.ContainerID, arg.ImageID, arg.Position)
	return err
}

func (q *Queries) queryImages(ctx context.Context, query string, args ...any) ([]Image, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []Image
	for rows.Next() {
		i, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
