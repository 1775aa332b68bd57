// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package boxes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/opps-go/internal/content"
	"github.com/olegiv/opps-go/internal/model"
	"github.com/olegiv/opps-go/internal/store"
	"github.com/olegiv/opps-go/internal/util"
)

// QuerySetInput is the editable part of a queryset. A nil Limit selects
// model.DefaultQuerySetLimit and an empty Order selects descending.
type QuerySetInput struct {
	Name          string
	Slug          string
	Published     bool
	DateAvailable time.Time
	Model         string
	Order         model.BoxOrder
	Limit         *int
	ChannelID     *int64
}

// CreateQuerySet stores a new queryset owned by userID on siteID.
func (s *Service) CreateQuerySet(ctx context.Context, userID, siteID int64, in QuerySetInput) (model.QuerySet, error) {
	in = normalizeQuerySetInput(in)
	if err := s.validateQuerySet(ctx, siteID, in); err != nil {
		return model.QuerySet{}, err
	}

	now := s.now()
	row, err := s.queries.CreateQuerySet(ctx, store.CreateQuerySetParams{
		UserID:        userID,
		SiteID:        siteID,
		DateAvailable: availableAt(in.DateAvailable, now),
		Published:     in.Published,
		DateInsert:    now,
		DateUpdate:    now,
		Name:          in.Name,
		Slug:          in.Slug,
		Model:         in.Model,
		Ordering:      string(in.Order),
		RowLimit:      int64(*in.Limit),
		ChannelID:     util.NullInt64FromPtr(in.ChannelID),
	})
	if store.IsUniqueViolation(err) {
		return model.QuerySet{}, content.NewValidationError("slug", content.MsgSlugExists)
	}
	if err != nil {
		return model.QuerySet{}, fmt.Errorf("creating queryset: %w", err)
	}
	s.logger.Info("queryset created", "queryset_id", row.ID, "slug", row.Slug, "model", row.Model)
	return querySetFromRow(row), nil
}

// UpdateQuerySet changes queryset id. Boxes replaying it see the change on
// their next resolution.
func (s *Service) UpdateQuerySet(ctx context.Context, id int64, in QuerySetInput) (model.QuerySet, error) {
	prev, err := s.GetQuerySet(ctx, id)
	if err != nil {
		return model.QuerySet{}, err
	}
	in = normalizeQuerySetInput(in)
	if err := s.validateQuerySet(ctx, prev.SiteID, in); err != nil {
		return model.QuerySet{}, err
	}

	row, err := s.queries.UpdateQuerySet(ctx, store.UpdateQuerySetParams{
		ID:            id,
		DateAvailable: availableAt(in.DateAvailable, prev.DateAvailable),
		Published:     in.Published,
		DateUpdate:    s.now(),
		Name:          in.Name,
		Slug:          in.Slug,
		Model:         in.Model,
		Ordering:      string(in.Order),
		RowLimit:      int64(*in.Limit),
		ChannelID:     util.NullInt64FromPtr(in.ChannelID),
	})
	if store.IsUniqueViolation(err) {
		return model.QuerySet{}, content.NewValidationError("slug", content.MsgSlugExists)
	}
	if err != nil {
		return model.QuerySet{}, fmt.Errorf("updating queryset %d: %w", id, err)
	}
	s.Invalidate(ctx)
	return querySetFromRow(row), nil
}

// GetQuerySet loads queryset id.
func (s *Service) GetQuerySet(ctx context.Context, id int64) (model.QuerySet, error) {
	row, err := s.queries.GetQuerySetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.QuerySet{}, ErrNotFound
	}
	if err != nil {
		return model.QuerySet{}, fmt.Errorf("loading queryset %d: %w", id, err)
	}
	return querySetFromRow(row), nil
}

// ListQuerySets returns a page of querysets, newest first, and the total.
func (s *Service) ListQuerySets(ctx context.Context, limit, offset int64) ([]model.QuerySet, int64, error) {
	rows, err := s.queries.ListQuerySets(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing querysets: %w", err)
	}
	total, err := s.queries.CountQuerySets(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("counting querysets: %w", err)
	}
	items := make([]model.QuerySet, 0, len(rows))
	for _, row := range rows {
		items = append(items, querySetFromRow(row))
	}
	return items, total, nil
}

func normalizeQuerySetInput(in QuerySetInput) QuerySetInput {
	if in.Slug == "" {
		in.Slug = util.Slugify(in.Name)
	}
	if in.Order == "" {
		in.Order = model.BoxOrderDesc
	}
	if in.Limit == nil {
		limit := model.DefaultQuerySetLimit
		in.Limit = &limit
	}
	return in
}

func (s *Service) validateQuerySet(ctx context.Context, siteID int64, in QuerySetInput) error {
	v := &content.ValidationError{}
	if in.Name == "" {
		v.Add("name", MsgNameRequired)
	}
	if err := s.checkSlug(ctx, v, siteID, in.Slug); err != nil {
		return err
	}
	if _, ok := s.registry.Lookup(in.Model); !ok {
		v.Add("model", MsgModelUnknown)
	}
	if !in.Order.IsValid() {
		v.Add("order", MsgOrderInvalid)
	}
	if *in.Limit < 0 {
		v.Add("limit", MsgLimitInvalid)
	}
	if err := s.checkChannel(ctx, v, siteID, in.ChannelID); err != nil {
		return err
	}
	return validationOrNil(v)
}

func querySetFromRow(row store.QuerySet) model.QuerySet {
	return model.QuerySet{
		ID:          row.ID,
		Publishable: publishable(row.UserID, row.SiteID, row.DateAvailable, row.Published, row.DateInsert, row.DateUpdate),
		Name:        row.Name,
		Slug:        row.Slug,
		Model:       row.Model,
		Order:       model.BoxOrder(row.Ordering),
		Limit:       int(row.RowLimit),
		ChannelID:   util.PtrFromNullInt64(row.ChannelID),
	}
}
