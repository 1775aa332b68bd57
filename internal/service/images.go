// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/olegiv/opps-go/internal/content"
	"github.com/olegiv/opps-go/internal/imaging"
	"github.com/olegiv/opps-go/internal/model"
	"github.com/olegiv/opps-go/internal/store"
	"github.com/olegiv/opps-go/internal/util"
)

// ImageInput is the editable part of an image.
type ImageInput struct {
	Title         string
	Slug          string
	Published     bool
	DateAvailable time.Time
	Description   string
	SourceID      *int64
	Tags          []string
}

// ImageService stores uploaded images and their metadata.
type ImageService struct {
	db        *sql.DB
	queries   *store.Queries
	processor *imaging.Processor
	mediaURL  string
	logger    *slog.Logger
	now       func() time.Time
}

// NewImageService creates an ImageService writing files below uploadDir.
// mediaURL is the public prefix the files are served under.
func NewImageService(db *sql.DB, uploadDir, mediaURL string, logger *slog.Logger) *ImageService {
	return &ImageService{
		db:        db,
		queries:   store.New(db),
		processor: imaging.NewProcessor(uploadDir),
		mediaURL:  mediaURL,
		logger:    logger,
		now:       time.Now,
	}
}

// MediaURL returns the public prefix of image files.
func (s *ImageService) MediaURL() string {
	return s.mediaURL
}

// Upload processes the image read from r and stores it with its metadata.
// The stored file is removed again when the row cannot be written.
func (s *ImageService) Upload(ctx context.Context, userID, siteID int64, r io.Reader, in ImageInput) (model.Image, error) {
	in = normalizeImageInput(in)
	if err := s.validate(ctx, in); err != nil {
		return model.Image{}, err
	}

	res, err := s.processor.Process(r, in.Slug)
	if errors.Is(err, imaging.ErrUnsupportedFormat) {
		return model.Image{}, content.NewValidationError("file", err.Error())
	}
	if err != nil {
		return model.Image{}, fmt.Errorf("processing upload: %w", err)
	}

	now := s.now()
	var row store.Image
	err = store.InTx(ctx, s.db, func(q *store.Queries) error {
		var err error
		row, err = q.CreateImage(ctx, store.CreateImageParams{
			UserID:        userID,
			SiteID:        siteID,
			DateAvailable: availableAt(in.DateAvailable, now),
			Published:     in.Published,
			DateInsert:    now,
			DateUpdate:    now,
			Title:         in.Title,
			Slug:          in.Slug,
			FilePath:      res.RelPath,
			MimeType:      res.MimeType,
			Width:         int64(res.Width),
			Height:        int64(res.Height),
			Size:          res.Size,
			Description:   in.Description,
			SourceID:      util.NullInt64FromPtr(in.SourceID),
		})
		if err != nil {
			return err
		}
		return setImageTags(ctx, q, row.ID, in.Tags)
	})
	if err != nil {
		if rmErr := s.processor.Remove(res.RelPath); rmErr != nil {
			s.logger.Warn("failed to remove orphaned upload", "path", res.RelPath, "error", rmErr)
		}
		if store.IsUniqueViolation(err) {
			return model.Image{}, content.NewValidationError("slug", content.MsgSlugExists)
		}
		return model.Image{}, fmt.Errorf("saving image: %w", err)
	}

	s.logger.Info("image uploaded", "image_id", row.ID, "path", row.FilePath, "size", row.Size)
	img := content.ImageFromRow(row)
	img.Tags = in.Tags
	return img, nil
}

// Update changes the metadata of image id. The stored file is kept.
func (s *ImageService) Update(ctx context.Context, id int64, in ImageInput) (model.Image, error) {
	prev, err := s.Get(ctx, id)
	if err != nil {
		return model.Image{}, err
	}
	in = normalizeImageInput(in)
	if err := s.validate(ctx, in); err != nil {
		return model.Image{}, err
	}

	var row store.Image
	err = store.InTx(ctx, s.db, func(q *store.Queries) error {
		var err error
		row, err = q.UpdateImage(ctx, store.UpdateImageParams{
			ID:            id,
			DateAvailable: availableAt(in.DateAvailable, prev.DateAvailable),
			Published:     in.Published,
			DateUpdate:    s.now(),
			Title:         in.Title,
			Slug:          in.Slug,
			Description:   in.Description,
			SourceID:      util.NullInt64FromPtr(in.SourceID),
		})
		if err != nil {
			return err
		}
		return setImageTags(ctx, q, id, in.Tags)
	})
	if store.IsUniqueViolation(err) {
		return model.Image{}, content.NewValidationError("slug", content.MsgSlugExists)
	}
	if err != nil {
		return model.Image{}, fmt.Errorf("updating image %d: %w", id, err)
	}

	img := content.ImageFromRow(row)
	img.Tags = in.Tags
	return img, nil
}

// Get loads an image with its tags.
func (s *ImageService) Get(ctx context.Context, id int64) (model.Image, error) {
	row, err := s.queries.GetImageByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Image{}, ErrNotFound
	}
	if err != nil {
		return model.Image{}, fmt.Errorf("loading image %d: %w", id, err)
	}

	tags, err := s.queries.ListImageTags(ctx, id)
	if err != nil {
		return model.Image{}, fmt.Errorf("loading image tags: %w", err)
	}
	img := content.ImageFromRow(row)
	img.Tags = make([]string, 0, len(tags))
	for _, t := range tags {
		img.Tags = append(img.Tags, t.Name)
	}
	return img, nil
}

// List returns a page of images, newest first, and the total count.
func (s *ImageService) List(ctx context.Context, limit, offset int64) ([]model.Image, int64, error) {
	rows, err := s.queries.ListImages(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing images: %w", err)
	}
	total, err := s.queries.CountImages(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("counting images: %w", err)
	}
	items := make([]model.Image, 0, len(rows))
	for _, row := range rows {
		items = append(items, content.ImageFromRow(row))
	}
	return items, total, nil
}

// AbsoluteURL returns the public URL of img, or "" while it is not live.
func (s *ImageService) AbsoluteURL(img model.Image) string {
	return img.AbsoluteURL(s.mediaURL, s.now())
}

func (s *ImageService) validate(ctx context.Context, in ImageInput) error {
	v := &content.ValidationError{}
	if in.Title == "" {
		v.Add("title", content.MsgTitleRequired)
	}
	if !util.IsValidSlug(in.Slug) {
		v.Add("slug", content.MsgSlugInvalid)
	}
	if in.SourceID != nil {
		if _, err := s.queries.GetSourceByID(ctx, *in.SourceID); errors.Is(err, sql.ErrNoRows) {
			v.Add("source_id", MsgSourceMissing)
		} else if err != nil {
			return fmt.Errorf("loading source %d: %w", *in.SourceID, err)
		}
	}
	if !v.Empty() {
		return v
	}
	return nil
}

func normalizeImageInput(in ImageInput) ImageInput {
	if in.Slug == "" {
		in.Slug = util.Slugify(in.Title)
	}
	seen := make(map[string]bool, len(in.Tags))
	tags := make([]string, 0, len(in.Tags))
	for _, t := range in.Tags {
		slug := util.Slugify(t)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		tags = append(tags, t)
	}
	in.Tags = tags
	return in
}

func setImageTags(ctx context.Context, q *store.Queries, imageID int64, tags []string) error {
	if err := q.DeleteImageTags(ctx, imageID); err != nil {
		return fmt.Errorf("clearing image tags: %w", err)
	}
	for _, name := range tags {
		tag, err := q.UpsertTag(ctx, name, util.Slugify(name))
		if err != nil {
			return fmt.Errorf("saving tag %q: %w", name, err)
		}
		if err := q.AddImageTag(ctx, imageID, tag.ID); err != nil {
			return fmt.Errorf("tagging image: %w", err)
		}
	}
	return nil
}

// availableAt returns t, or fallback when t is zero.
func availableAt(t, fallback time.Time) time.Time {
	if t.IsZero() {
		return fallback
	}
	return t
}
