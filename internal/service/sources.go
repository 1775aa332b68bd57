// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/opps-go/internal/content"
	"github.com/olegiv/opps-go/internal/model"
	"github.com/olegiv/opps-go/internal/store"
	"github.com/olegiv/opps-go/internal/util"
)

// MsgSourceMissing is reported for a reference to an unknown source.
const MsgSourceMissing = "Source does not exist"

// MsgNameRequired is reported when a name is empty.
const MsgNameRequired = "Name is required"

// SourceInput is the editable part of a source.
type SourceInput struct {
	Name          string
	Slug          string
	Published     bool
	DateAvailable time.Time
	URL           string
	Feed          string
}

// SourceService manages editorial sources.
type SourceService struct {
	queries *store.Queries
	logger  *slog.Logger
	now     func() time.Time
}

// NewSourceService creates a SourceService.
func NewSourceService(db store.DBTX, logger *slog.Logger) *SourceService {
	return &SourceService{queries: store.New(db), logger: logger, now: time.Now}
}

// Create stores a new source owned by userID on siteID.
func (s *SourceService) Create(ctx context.Context, userID, siteID int64, in SourceInput) (model.Source, error) {
	in = normalizeSourceInput(in)
	if err := validateSource(in); err != nil {
		return model.Source{}, err
	}

	now := s.now()
	row, err := s.queries.CreateSource(ctx, store.CreateSourceParams{
		UserID:        userID,
		SiteID:        siteID,
		DateAvailable: availableAt(in.DateAvailable, now),
		Published:     in.Published,
		DateInsert:    now,
		DateUpdate:    now,
		Name:          in.Name,
		Slug:          in.Slug,
		Url:           in.URL,
		Feed:          in.Feed,
	})
	if store.IsUniqueViolation(err) {
		return model.Source{}, content.NewValidationError("slug", content.MsgSlugExists)
	}
	if err != nil {
		return model.Source{}, fmt.Errorf("creating source: %w", err)
	}
	s.logger.Info("source created", "source_id", row.ID, "slug", row.Slug)
	return content.SourceFromRow(row), nil
}

// Update changes source id.
func (s *SourceService) Update(ctx context.Context, id int64, in SourceInput) (model.Source, error) {
	prev, err := s.Get(ctx, id)
	if err != nil {
		return model.Source{}, err
	}
	in = normalizeSourceInput(in)
	if err := validateSource(in); err != nil {
		return model.Source{}, err
	}

	row, err := s.queries.UpdateSource(ctx, store.UpdateSourceParams{
		ID:            id,
		DateAvailable: availableAt(in.DateAvailable, prev.DateAvailable),
		Published:     in.Published,
		DateUpdate:    s.now(),
		Name:          in.Name,
		Slug:          in.Slug,
		Url:           in.URL,
		Feed:          in.Feed,
	})
	if store.IsUniqueViolation(err) {
		return model.Source{}, content.NewValidationError("slug", content.MsgSlugExists)
	}
	if err != nil {
		return model.Source{}, fmt.Errorf("updating source %d: %w", id, err)
	}
	return content.SourceFromRow(row), nil
}

// Get loads source id.
func (s *SourceService) Get(ctx context.Context, id int64) (model.Source, error) {
	row, err := s.queries.GetSourceByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Source{}, ErrNotFound
	}
	if err != nil {
		return model.Source{}, fmt.Errorf("loading source %d: %w", id, err)
	}
	return content.SourceFromRow(row), nil
}

// GetBySlug loads the source with slug.
func (s *SourceService) GetBySlug(ctx context.Context, slug string) (model.Source, error) {
	row, err := s.queries.GetSourceBySlug(ctx, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Source{}, ErrNotFound
	}
	if err != nil {
		return model.Source{}, fmt.Errorf("loading source %q: %w", slug, err)
	}
	return content.SourceFromRow(row), nil
}

// List returns a page of sources, newest first, and the total count.
func (s *SourceService) List(ctx context.Context, limit, offset int64) ([]model.Source, int64, error) {
	rows, err := s.queries.ListSources(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing sources: %w", err)
	}
	total, err := s.queries.CountSources(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("counting sources: %w", err)
	}
	items := make([]model.Source, 0, len(rows))
	for _, row := range rows {
		items = append(items, content.SourceFromRow(row))
	}
	return items, total, nil
}

func normalizeSourceInput(in SourceInput) SourceInput {
	if in.Slug == "" {
		in.Slug = util.Slugify(in.Name)
	}
	return in
}

func validateSource(in SourceInput) error {
	v := &content.ValidationError{}
	if in.Name == "" {
		v.Add("name", MsgNameRequired)
	}
	if !util.IsValidSlug(in.Slug) {
		v.Add("slug", content.MsgSlugInvalid)
	}
	if !v.Empty() {
		return v
	}
	return nil
}
