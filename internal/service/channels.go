// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/olegiv/opps-go/internal/content"
	"github.com/olegiv/opps-go/internal/model"
	"github.com/olegiv/opps-go/internal/store"
	"github.com/olegiv/opps-go/internal/util"
)

// Channel field messages.
const (
	MsgParentMissing  = "Parent channel does not exist"
	MsgParentCycle    = "A channel cannot be nested below itself"
	MsgLongSlugExists = "A channel with this path already exists"
)

// ChannelInput is the editable part of a channel.
type ChannelInput struct {
	Name     string
	Slug     string
	ParentID *int64
}

// ChannelService manages the channel tree of a site. A channel's long slug
// is its parent's long slug joined with its own slug.
type ChannelService struct {
	db      *sql.DB
	queries *store.Queries
	logger  *slog.Logger
	now     func() time.Time

	mu        sync.RWMutex
	listeners []func(context.Context)
}

// NewChannelService creates a ChannelService.
func NewChannelService(db *sql.DB, logger *slog.Logger) *ChannelService {
	return &ChannelService{db: db, queries: store.New(db), logger: logger, now: time.Now}
}

// Create adds a channel to siteID.
func (s *ChannelService) Create(ctx context.Context, siteID int64, in ChannelInput) (model.Channel, error) {
	if in.Slug == "" {
		in.Slug = util.Slugify(in.Name)
	}
	parentPath, err := s.validate(ctx, siteID, 0, in)
	if err != nil {
		return model.Channel{}, err
	}

	now := s.now()
	row, err := s.queries.CreateChannel(ctx, store.CreateChannelParams{
		SiteID:    siteID,
		ParentID:  util.NullInt64FromPtr(in.ParentID),
		Name:      in.Name,
		Slug:      in.Slug,
		LongSlug:  util.JoinLongSlug(parentPath, in.Slug),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if store.IsUniqueViolation(err) {
		return model.Channel{}, content.NewValidationError("slug", MsgLongSlugExists)
	}
	if err != nil {
		return model.Channel{}, fmt.Errorf("creating channel: %w", err)
	}
	s.logger.Info("channel created", "channel_id", row.ID, "long_slug", row.LongSlug)
	return content.ChannelFromRow(row), nil
}

// OnChange registers fn to run after every committed channel update, once
// the denormalised copies on containers have been refreshed.
func (s *ChannelService) OnChange(fn func(context.Context)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *ChannelService) notify(ctx context.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, fn := range s.listeners {
		fn(ctx)
	}
}

// Update changes channel id. When its long slug changes, the long slugs of
// all descendants are rebuilt and the denormalised copies on containers are
// refreshed in the same transaction.
func (s *ChannelService) Update(ctx context.Context, id int64, in ChannelInput) (model.Channel, error) {
	prev, err := s.Get(ctx, id)
	if err != nil {
		return model.Channel{}, err
	}
	if in.Slug == "" {
		in.Slug = util.Slugify(in.Name)
	}
	parentPath, err := s.validate(ctx, prev.SiteID, id, in)
	if err != nil {
		return model.Channel{}, err
	}

	var row store.Channel
	err = store.InTx(ctx, s.db, func(q *store.Queries) error {
		now := s.now()
		var err error
		row, err = q.UpdateChannel(ctx, store.UpdateChannelParams{
			ID:        id,
			ParentID:  util.NullInt64FromPtr(in.ParentID),
			Name:      in.Name,
			Slug:      in.Slug,
			LongSlug:  util.JoinLongSlug(parentPath, in.Slug),
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}
		if row.LongSlug != prev.LongSlug {
			if err := rebuildDescendants(ctx, q, row, now); err != nil {
				return err
			}
		}
		n, err := q.ResyncContainerChannels(ctx)
		if err != nil {
			return fmt.Errorf("refreshing containers: %w", err)
		}
		if n > 0 {
			s.logger.Info("container channel copies refreshed", "channel_id", id, "containers", n)
		}
		return nil
	})
	if store.IsUniqueViolation(err) {
		return model.Channel{}, content.NewValidationError("slug", MsgLongSlugExists)
	}
	if err != nil {
		return model.Channel{}, fmt.Errorf("updating channel %d: %w", id, err)
	}
	s.notify(ctx)
	return content.ChannelFromRow(row), nil
}

func rebuildDescendants(ctx context.Context, q *store.Queries, parent store.Channel, now time.Time) error {
	children, err := q.ListChildChannels(ctx, parent.ID)
	if err != nil {
		return fmt.Errorf("listing children of %d: %w", parent.ID, err)
	}
	for _, child := range children {
		updated, err := q.UpdateChannel(ctx, store.UpdateChannelParams{
			ID:        child.ID,
			ParentID:  child.ParentID,
			Name:      child.Name,
			Slug:      child.Slug,
			LongSlug:  util.JoinLongSlug(parent.LongSlug, child.Slug),
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}
		if err := rebuildDescendants(ctx, q, updated, now); err != nil {
			return err
		}
	}
	return nil
}

// validate checks in for channel id (0 on create) and returns the parent's
// long slug.
func (s *ChannelService) validate(ctx context.Context, siteID, id int64, in ChannelInput) (string, error) {
	v := &content.ValidationError{}
	if in.Name == "" {
		v.Add("name", MsgNameRequired)
	}
	if !util.IsValidSlug(in.Slug) {
		v.Add("slug", content.MsgSlugInvalid)
	}

	var parentPath string
	if in.ParentID != nil {
		parent, err := s.queries.GetChannelByID(ctx, *in.ParentID)
		switch {
		case errors.Is(err, sql.ErrNoRows) || (err == nil && parent.SiteID != siteID):
			v.Add("parent_id", MsgParentMissing)
		case err != nil:
			return "", fmt.Errorf("loading parent channel: %w", err)
		default:
			parentPath = parent.LongSlug
			cycle, err := s.isDescendant(ctx, parent, id)
			if err != nil {
				return "", err
			}
			if cycle {
				v.Add("parent_id", MsgParentCycle)
			}
		}
	}

	if !v.Empty() {
		return "", v
	}
	return parentPath, nil
}

// isDescendant reports whether ch is channel id or lies below it.
func (s *ChannelService) isDescendant(ctx context.Context, ch store.Channel, id int64) (bool, error) {
	if id == 0 {
		return false, nil
	}
	for {
		if ch.ID == id {
			return true, nil
		}
		if !ch.ParentID.Valid {
			return false, nil
		}
		next, err := s.queries.GetChannelByID(ctx, ch.ParentID.Int64)
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("walking channel tree: %w", err)
		}
		ch = next
	}
}

// Get loads channel id.
func (s *ChannelService) Get(ctx context.Context, id int64) (model.Channel, error) {
	row, err := s.queries.GetChannelByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Channel{}, ErrNotFound
	}
	if err != nil {
		return model.Channel{}, fmt.Errorf("loading channel %d: %w", id, err)
	}
	return content.ChannelFromRow(row), nil
}

// GetByLongSlug loads the channel of siteID at longSlug.
func (s *ChannelService) GetByLongSlug(ctx context.Context, siteID int64, longSlug string) (model.Channel, error) {
	if !util.IsValidLongSlug(longSlug) {
		return model.Channel{}, ErrNotFound
	}
	row, err := s.queries.GetChannelByLongSlug(ctx, siteID, longSlug)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Channel{}, ErrNotFound
	}
	if err != nil {
		return model.Channel{}, fmt.Errorf("loading channel %q: %w", longSlug, err)
	}
	return content.ChannelFromRow(row), nil
}

// List returns all channels of siteID ordered by long slug.
func (s *ChannelService) List(ctx context.Context, siteID int64) ([]model.Channel, error) {
	rows, err := s.queries.ListChannels(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("listing channels: %w", err)
	}
	items := make([]model.Channel, 0, len(rows))
	for _, row := range rows {
		items = append(items, content.ChannelFromRow(row))
	}
	return items, nil
}
