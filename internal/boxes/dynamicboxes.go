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

// DynamicBoxInput is the editable part of a dynamic box.
type DynamicBoxInput struct {
	Name          string
	Slug          string
	Published     bool
	DateAvailable time.Time
	ContainerID   *int64
	ChannelID     *int64
	QuerySetID    int64
}

// CreateDynamicBox stores a new dynamic box.
func (s *Service) CreateDynamicBox(ctx context.Context, userID, siteID int64, in DynamicBoxInput) (model.DynamicBox, error) {
	in = normalizeDynamicBoxInput(in)
	if err := s.validateDynamicBox(ctx, siteID, in); err != nil {
		return model.DynamicBox{}, err
	}

	now := s.now()
	row, err := s.queries.CreateDynamicBox(ctx, store.CreateDynamicBoxParams{
		UserID:        userID,
		SiteID:        siteID,
		DateAvailable: availableAt(in.DateAvailable, now),
		Published:     in.Published,
		DateInsert:    now,
		DateUpdate:    now,
		Name:          in.Name,
		Slug:          in.Slug,
		ContainerID:   util.NullInt64FromPtr(in.ContainerID),
		ChannelID:     util.NullInt64FromPtr(in.ChannelID),
		QuerysetID:    in.QuerySetID,
	})
	if store.IsUniqueViolation(err) {
		return model.DynamicBox{}, content.NewValidationError("slug", content.MsgSlugExists)
	}
	if err != nil {
		return model.DynamicBox{}, fmt.Errorf("creating dynamic box: %w", err)
	}
	s.logger.Info("dynamic box created", "box_id", row.ID, "slug", row.Slug, "queryset_id", row.QuerysetID)
	s.Invalidate(ctx)
	return dynamicBoxFromRow(row), nil
}

// UpdateDynamicBox changes dynamic box id.
func (s *Service) UpdateDynamicBox(ctx context.Context, id int64, in DynamicBoxInput) (model.DynamicBox, error) {
	prev, err := s.GetDynamicBox(ctx, id)
	if err != nil {
		return model.DynamicBox{}, err
	}
	in = normalizeDynamicBoxInput(in)
	if err := s.validateDynamicBox(ctx, prev.SiteID, in); err != nil {
		return model.DynamicBox{}, err
	}

	row, err := s.queries.UpdateDynamicBox(ctx, store.UpdateDynamicBoxParams{
		ID:            id,
		DateAvailable: availableAt(in.DateAvailable, prev.DateAvailable),
		Published:     in.Published,
		DateUpdate:    s.now(),
		Name:          in.Name,
		Slug:          in.Slug,
		ContainerID:   util.NullInt64FromPtr(in.ContainerID),
		ChannelID:     util.NullInt64FromPtr(in.ChannelID),
		QuerysetID:    in.QuerySetID,
	})
	if store.IsUniqueViolation(err) {
		return model.DynamicBox{}, content.NewValidationError("slug", content.MsgSlugExists)
	}
	if err != nil {
		return model.DynamicBox{}, fmt.Errorf("updating dynamic box %d: %w", id, err)
	}
	s.Invalidate(ctx)
	return dynamicBoxFromRow(row), nil
}

// GetDynamicBox loads dynamic box id.
func (s *Service) GetDynamicBox(ctx context.Context, id int64) (model.DynamicBox, error) {
	row, err := s.queries.GetDynamicBoxByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DynamicBox{}, ErrNotFound
	}
	if err != nil {
		return model.DynamicBox{}, fmt.Errorf("loading dynamic box %d: %w", id, err)
	}
	return dynamicBoxFromRow(row), nil
}

// ListDynamicBoxes returns a page of dynamic boxes, newest first, and the total.
func (s *Service) ListDynamicBoxes(ctx context.Context, limit, offset int64) ([]model.DynamicBox, int64, error) {
	rows, err := s.queries.ListDynamicBoxes(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing dynamic boxes: %w", err)
	}
	total, err := s.queries.CountDynamicBoxes(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("counting dynamic boxes: %w", err)
	}
	items := make([]model.DynamicBox, 0, len(rows))
	for _, row := range rows {
		items = append(items, dynamicBoxFromRow(row))
	}
	return items, total, nil
}

func normalizeDynamicBoxInput(in DynamicBoxInput) DynamicBoxInput {
	if in.Slug == "" {
		in.Slug = util.Slugify(in.Name)
	}
	return in
}

func (s *Service) validateDynamicBox(ctx context.Context, siteID int64, in DynamicBoxInput) error {
	v := &content.ValidationError{}
	if in.Name == "" {
		v.Add("name", MsgNameRequired)
	}
	if err := s.checkSlug(ctx, v, siteID, in.Slug); err != nil {
		return err
	}
	if err := s.checkContainer(ctx, v, in.ContainerID); err != nil {
		return err
	}
	if err := s.checkChannel(ctx, v, siteID, in.ChannelID); err != nil {
		return err
	}
	if in.QuerySetID == 0 {
		v.Add("queryset_id", MsgQuerySetRequired)
	} else if err := s.checkQuerySet(ctx, v, in.QuerySetID); err != nil {
		return err
	}
	return validationOrNil(v)
}

func dynamicBoxFromRow(row store.DynamicBox) model.DynamicBox {
	return model.DynamicBox{
		ID:          row.ID,
		Publishable: publishable(row.UserID, row.SiteID, row.DateAvailable, row.Published, row.DateInsert, row.DateUpdate),
		Name:        row.Name,
		Slug:        row.Slug,
		ContainerID: util.PtrFromNullInt64(row.ContainerID),
		ChannelID:   util.PtrFromNullInt64(row.ChannelID),
		QuerySetID:  row.QuerysetID,
	}
}
