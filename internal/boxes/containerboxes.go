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

// ContainerBoxInput is the editable part of a container box. A box with a
// QuerySetID is in queryset mode and must not carry MemberIDs. On update a
// nil MemberIDs keeps the stored curated list.
type ContainerBoxInput struct {
	Name          string
	Slug          string
	Published     bool
	DateAvailable time.Time
	ContainerID   *int64
	ChannelID     *int64
	QuerySetID    *int64
	MemberIDs     []int64
}

// Mode returns the membership mode selected by in.
func (in ContainerBoxInput) Mode() model.BoxMode {
	if in.QuerySetID != nil {
		return model.BoxModeQuerySet
	}
	return model.BoxModeCurated
}

// CreateContainerBox stores a new container box and its curated members.
func (s *Service) CreateContainerBox(ctx context.Context, userID, siteID int64, in ContainerBoxInput) (model.ContainerBox, error) {
	in = normalizeContainerBoxInput(in)
	members, err := s.validateContainerBox(ctx, siteID, in)
	if err != nil {
		return model.ContainerBox{}, err
	}

	now := s.now()
	var row store.ContainerBox
	err = store.InTx(ctx, s.db, func(q *store.Queries) error {
		var err error
		row, err = q.CreateContainerBox(ctx, store.CreateContainerBoxParams{
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
			Mode:          string(in.Mode()),
			QuerysetID:    util.NullInt64FromPtr(in.QuerySetID),
		})
		if err != nil {
			return err
		}
		return replaceMembers(ctx, q, row.ID, members)
	})
	if store.IsUniqueViolation(err) {
		return model.ContainerBox{}, content.NewValidationError("slug", content.MsgSlugExists)
	}
	if err != nil {
		return model.ContainerBox{}, fmt.Errorf("creating container box: %w", err)
	}

	s.logger.Info("container box created", "box_id", row.ID, "slug", row.Slug, "mode", row.Mode)
	s.Invalidate(ctx)
	box := containerBoxFromRow(row)
	box.MemberIDs = members
	return box, nil
}

// UpdateContainerBox changes box id. Switching to queryset mode drops the
// curated members.
func (s *Service) UpdateContainerBox(ctx context.Context, id int64, in ContainerBoxInput) (model.ContainerBox, error) {
	prev, err := s.GetContainerBox(ctx, id)
	if err != nil {
		return model.ContainerBox{}, err
	}
	in = normalizeContainerBoxInput(in)
	members, err := s.validateContainerBox(ctx, prev.SiteID, in)
	if err != nil {
		return model.ContainerBox{}, err
	}
	if in.MemberIDs == nil && in.Mode() == model.BoxModeCurated {
		members = prev.MemberIDs
	}

	var row store.ContainerBox
	err = store.InTx(ctx, s.db, func(q *store.Queries) error {
		var err error
		row, err = q.UpdateContainerBox(ctx, store.UpdateContainerBoxParams{
			ID:            id,
			DateAvailable: availableAt(in.DateAvailable, prev.DateAvailable),
			Published:     in.Published,
			DateUpdate:    s.now(),
			Name:          in.Name,
			Slug:          in.Slug,
			ContainerID:   util.NullInt64FromPtr(in.ContainerID),
			ChannelID:     util.NullInt64FromPtr(in.ChannelID),
			Mode:          string(in.Mode()),
			QuerysetID:    util.NullInt64FromPtr(in.QuerySetID),
		})
		if err != nil {
			return err
		}
		if in.MemberIDs == nil && in.Mode() == model.BoxModeCurated {
			return nil
		}
		return replaceMembers(ctx, q, id, members)
	})
	if store.IsUniqueViolation(err) {
		return model.ContainerBox{}, content.NewValidationError("slug", content.MsgSlugExists)
	}
	if err != nil {
		return model.ContainerBox{}, fmt.Errorf("updating container box %d: %w", id, err)
	}

	s.Invalidate(ctx)
	box := containerBoxFromRow(row)
	box.MemberIDs = members
	return box, nil
}

// SetMembers replaces the curated members of box id, in the given order.
// Every member must be live when attached.
func (s *Service) SetMembers(ctx context.Context, id int64, memberIDs []int64) (model.ContainerBox, error) {
	box, err := s.GetContainerBox(ctx, id)
	if err != nil {
		return model.ContainerBox{}, err
	}
	v := &content.ValidationError{}
	if box.Mode == model.BoxModeQuerySet && len(memberIDs) > 0 {
		v.Add("containers", MsgBothModes)
		return model.ContainerBox{}, v
	}
	members, err := s.checkMembers(ctx, v, memberIDs)
	if err != nil {
		return model.ContainerBox{}, err
	}
	if !v.Empty() {
		return model.ContainerBox{}, v
	}

	err = store.InTx(ctx, s.db, func(q *store.Queries) error {
		return replaceMembers(ctx, q, id, members)
	})
	if err != nil {
		return model.ContainerBox{}, fmt.Errorf("setting members of box %d: %w", id, err)
	}

	s.Invalidate(ctx)
	box.MemberIDs = members
	return box, nil
}

// GetContainerBox loads box id with its curated member ids.
func (s *Service) GetContainerBox(ctx context.Context, id int64) (model.ContainerBox, error) {
	row, err := s.queries.GetContainerBoxByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ContainerBox{}, ErrNotFound
	}
	if err != nil {
		return model.ContainerBox{}, fmt.Errorf("loading container box %d: %w", id, err)
	}
	return s.withMembers(ctx, row)
}

// GetContainerBoxBySlug loads the box with slug and its curated member ids.
func (s *Service) GetContainerBoxBySlug(ctx context.Context, slug string) (model.ContainerBox, error) {
	row, err := s.queries.GetContainerBoxBySlug(ctx, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ContainerBox{}, ErrNotFound
	}
	if err != nil {
		return model.ContainerBox{}, fmt.Errorf("loading container box %q: %w", slug, err)
	}
	return s.withMembers(ctx, row)
}

// ListContainerBoxes returns a page of boxes, newest first, and the total.
// Member ids are not loaded.
func (s *Service) ListContainerBoxes(ctx context.Context, limit, offset int64) ([]model.ContainerBox, int64, error) {
	rows, err := s.queries.ListContainerBoxes(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing container boxes: %w", err)
	}
	total, err := s.queries.CountContainerBoxes(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("counting container boxes: %w", err)
	}
	items := make([]model.ContainerBox, 0, len(rows))
	for _, row := range rows {
		items = append(items, containerBoxFromRow(row))
	}
	return items, total, nil
}

func (s *Service) withMembers(ctx context.Context, row store.ContainerBox) (model.ContainerBox, error) {
	box := containerBoxFromRow(row)
	members, err := s.queries.ListBoxContainers(ctx, row.ID)
	if err != nil {
		return model.ContainerBox{}, fmt.Errorf("loading members of box %d: %w", row.ID, err)
	}
	for _, m := range members {
		box.MemberIDs = append(box.MemberIDs, m.ID)
	}
	return box, nil
}

func normalizeContainerBoxInput(in ContainerBoxInput) ContainerBoxInput {
	if in.Slug == "" {
		in.Slug = util.Slugify(in.Name)
	}
	return in
}

// validateContainerBox returns the de-duplicated curated member ids.
func (s *Service) validateContainerBox(ctx context.Context, siteID int64, in ContainerBoxInput) ([]int64, error) {
	v := &content.ValidationError{}
	if in.Name == "" {
		v.Add("name", MsgNameRequired)
	}
	if err := s.checkSlug(ctx, v, siteID, in.Slug); err != nil {
		return nil, err
	}
	if err := s.checkContainer(ctx, v, in.ContainerID); err != nil {
		return nil, err
	}
	if err := s.checkChannel(ctx, v, siteID, in.ChannelID); err != nil {
		return nil, err
	}

	var members []int64
	if in.QuerySetID != nil {
		if len(in.MemberIDs) > 0 {
			v.Add("queryset_id", MsgBothModes)
		}
		if err := s.checkQuerySet(ctx, v, *in.QuerySetID); err != nil {
			return nil, err
		}
	} else {
		var err error
		members, err = s.checkMembers(ctx, v, in.MemberIDs)
		if err != nil {
			return nil, err
		}
	}
	return members, validationOrNil(v)
}

// checkMembers requires every id to name a live container and returns the
// ids without duplicates, first occurrence first.
func (s *Service) checkMembers(ctx context.Context, v *content.ValidationError, ids []int64) ([]int64, error) {
	now := s.now()
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		c, err := s.queries.GetContainerByID(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			v.Add("containers", MsgContainerMissing)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("loading container %d: %w", id, err)
		}
		if !c.Published {
			v.Add("containers", MsgContainerNotPublished)
			continue
		}
		if !c.DateAvailable.Before(now) {
			v.Add("containers", MsgContainerNotAvailable)
			continue
		}
		out = append(out, id)
	}
	return out, nil
}

func replaceMembers(ctx context.Context, q *store.Queries, boxID int64, ids []int64) error {
	if err := q.DeleteBoxContainers(ctx, boxID); err != nil {
		return err
	}
	for i, id := range ids {
		if err := q.AddBoxContainer(ctx, store.ContainerBoxContainer{BoxID: boxID, ContainerID: id, Position: int64(i)}); err != nil {
			return err
		}
	}
	return nil
}

func containerBoxFromRow(row store.ContainerBox) model.ContainerBox {
	return model.ContainerBox{
		ID:          row.ID,
		Publishable: publishable(row.UserID, row.SiteID, row.DateAvailable, row.Published, row.DateInsert, row.DateUpdate),
		Name:        row.Name,
		Slug:        row.Slug,
		ContainerID: util.PtrFromNullInt64(row.ContainerID),
		ChannelID:   util.PtrFromNullInt64(row.ChannelID),
		Mode:        model.BoxMode(row.Mode),
		QuerySetID:  util.PtrFromNullInt64(row.QuerysetID),
	}
}
