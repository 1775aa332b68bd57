// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content implements containers (posts, albums and links): the save
// pipeline with its redirect and short URL side effects, image and source
// inlines, recommendations and channel listings.
package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/opps-go/internal/model"
	"github.com/olegiv/opps-go/internal/shortener"
	"github.com/olegiv/opps-go/internal/store"
	"github.com/olegiv/opps-go/internal/util"
)

// MsgChannelMissing is reported when the requested channel does not exist
// on the container's site.
const MsgChannelMissing = "Channel does not exist"

// EventLogger records audit events.
type EventLogger interface {
	LogContentEvent(ctx context.Context, level, message string, userID *int64, ipAddress, requestURL string, metadata map[string]any) error
}

// Input is the editable part of a container.
type Input struct {
	Title         string
	Slug          string
	ChannelID     int64
	Published     bool
	DateAvailable time.Time
	MainImageID   *int64
	Headline      string
	ShortTitle    string
	Tags          []string
	Body          model.Body
}

// ContainerService creates, updates and reads containers.
type ContainerService struct {
	db       *sql.DB
	queries  *store.Queries
	pipeline *Pipeline
	events   EventLogger
	logger   *slog.Logger
	onSave   []func(ctx context.Context, c *model.Container)
	now      func() time.Time
}

// NewContainerService creates a ContainerService running DefaultPipeline.
// events may be nil.
func NewContainerService(db *sql.DB, redirects RedirectStore, sh shortener.Shortener, events EventLogger, logger *slog.Logger) *ContainerService {
	q := store.New(db)
	p := DefaultPipeline(q, redirects, sh, bluemonday.UGCPolicy())
	p.Logger = logger
	return &ContainerService{
		db:       db,
		queries:  q,
		pipeline: p,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

// Pipeline returns the save pipeline.
func (s *ContainerService) Pipeline() *Pipeline {
	return s.pipeline
}

// OnSave registers fn to run after every successful save.
func (s *ContainerService) OnSave(fn func(ctx context.Context, c *model.Container)) {
	s.onSave = append(s.onSave, fn)
}

// Create saves a new container owned by userID on siteID.
func (s *ContainerService) Create(ctx context.Context, userID, siteID int64, in Input) (*model.Container, error) {
	if in.Body == nil || !in.Body.Kind().IsValid() {
		return nil, errors.New("container body is required")
	}

	site, err := s.queries.GetSiteByID(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("loading site %d: %w", siteID, err)
	}
	channel, err := s.channel(ctx, siteID, in.ChannelID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	c := &model.Container{
		Publishable: model.Publishable{
			UserID:     userID,
			SiteID:     siteID,
			DateInsert: now,
			DateUpdate: now,
		},
	}
	apply(c, in, now)

	save := &Save{Container: c, Site: siteModel(site), Channel: channel}
	if err := s.pipeline.Run(ctx, save, s.persist); err != nil {
		return nil, err
	}

	s.saved(ctx, save)
	return c, nil
}

// Update saves changes to the container id. The kind of in.Body must match
// the stored kind.
func (s *ContainerService) Update(ctx context.Context, id int64, in Input) (*model.Container, error) {
	prev, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Body == nil || in.Body.Kind() != prev.Kind() {
		return nil, ErrKindMismatch
	}

	site, err := s.queries.GetSiteByID(ctx, prev.SiteID)
	if err != nil {
		return nil, fmt.Errorf("loading site %d: %w", prev.SiteID, err)
	}
	channel, err := s.channel(ctx, prev.SiteID, in.ChannelID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	next := *prev
	next.Tags = nil
	next.DateUpdate = now
	apply(&next, in, now)

	save := &Save{Container: &next, Previous: prev, Site: siteModel(site), Channel: channel}
	if err := s.pipeline.Run(ctx, save, s.persist); err != nil {
		return nil, err
	}

	s.saved(ctx, save)
	return &next, nil
}

// apply copies the editable fields of in onto c. An empty slug is derived
// from the title and a zero availability date defaults to now.
func apply(c *model.Container, in Input, now time.Time) {
	c.Title = in.Title
	c.Slug = in.Slug
	if c.Slug == "" {
		c.Slug = util.Slugify(in.Title)
	}
	c.ChannelID = in.ChannelID
	c.Published = in.Published
	c.DateAvailable = in.DateAvailable
	if c.DateAvailable.IsZero() {
		c.DateAvailable = now
	}
	c.MainImageID = in.MainImageID
	c.Headline = in.Headline
	c.ShortTitle = in.ShortTitle
	c.Tags = normalizeTags(in.Tags)
	c.Body = in.Body
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		slug := util.Slugify(t)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		out = append(out, t)
	}
	return out
}

func (s *ContainerService) channel(ctx context.Context, siteID, channelID int64) (model.Channel, error) {
	row, err := s.queries.GetChannelByID(ctx, channelID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && row.SiteID != siteID) {
		return model.Channel{}, NewValidationError("channel_id", MsgChannelMissing)
	}
	if err != nil {
		return model.Channel{}, fmt.Errorf("loading channel %d: %w", channelID, err)
	}
	return ChannelFromRow(row), nil
}

// persist writes the container row, its tags and its albums in one transaction.
func (s *ContainerService) persist(ctx context.Context, save *Save) error {
	c := save.Container
	err := store.InTx(ctx, s.db, func(q *store.Queries) error {
		var row store.Container
		var err error
		if save.IsCreate() {
			row, err = q.CreateContainer(ctx, createParams(save))
		} else {
			row, err = q.UpdateContainer(ctx, updateParams(save))
		}
		if err != nil {
			return err
		}
		c.ID = row.ID

		if err := q.DeleteContainerTags(ctx, c.ID); err != nil {
			return fmt.Errorf("clearing tags: %w", err)
		}
		for _, name := range c.Tags {
			tag, err := q.UpsertTag(ctx, name, util.Slugify(name))
			if err != nil {
				return fmt.Errorf("saving tag %q: %w", name, err)
			}
			if err := q.AddContainerTag(ctx, c.ID, tag.ID); err != nil {
				return fmt.Errorf("tagging container: %w", err)
			}
		}

		if body, ok := c.Body.(model.PostBody); ok {
			if err := q.DeletePostAlbums(ctx, c.ID); err != nil {
				return fmt.Errorf("clearing albums: %w", err)
			}
			for _, albumID := range body.AlbumIDs {
				if err := q.AddPostAlbum(ctx, c.ID, albumID); err != nil {
					return fmt.Errorf("linking album %d: %w", albumID, err)
				}
			}
		}
		return nil
	})
	if store.IsUniqueViolation(err) {
		return NewValidationError("slug", MsgSlugExists)
	}
	if err != nil {
		return fmt.Errorf("saving container: %w", err)
	}
	return nil
}

func (s *ContainerService) saved(ctx context.Context, save *Save) {
	c := save.Container
	action := "updated"
	if save.IsCreate() {
		action = "created"
	}
	s.logger.Info("container saved", "container_id", c.ID, "kind", c.Kind().String(), "slug", c.Slug, "action", action)

	if s.events != nil {
		userID := c.UserID
		_ = s.events.LogContentEvent(ctx, model.EventLevelInfo, fmt.Sprintf("%s %s", c.Kind(), action), &userID, "", "", map[string]any{
			"container_id": c.ID,
			"slug":         c.Slug,
			"short_url":    c.ShortURL,
		})
	}
	for _, fn := range s.onSave {
		fn(ctx, c)
	}
}

// Get loads a container with its tags and, for posts, its albums.
func (s *ContainerService) Get(ctx context.Context, id int64) (*model.Container, error) {
	row, err := s.queries.GetContainerByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading container %d: %w", id, err)
	}
	return s.hydrate(ctx, row)
}

// GetKind loads a container and requires it to be of kind.
func (s *ContainerService) GetKind(ctx context.Context, kind model.Kind, id int64) (*model.Container, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Kind() != kind {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *ContainerService) hydrate(ctx context.Context, row store.Container) (*model.Container, error) {
	c, err := FromRow(row)
	if err != nil {
		return nil, err
	}

	tags, err := s.queries.ListContainerTags(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("loading tags: %w", err)
	}
	c.Tags = make([]string, 0, len(tags))
	for _, t := range tags {
		c.Tags = append(c.Tags, t.Name)
	}

	if body, ok := c.Body.(model.PostBody); ok {
		body.AlbumIDs, err = s.queries.ListPostAlbumIDs(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("loading albums: %w", err)
		}
		c.Body = body
	}
	return c, nil
}

// List returns a page of containers of every kind and the total match count.
func (s *ContainerService) List(ctx context.Context, f store.ContainerFilter, limit, offset int64) ([]*model.Container, int64, error) {
	rows, err := s.queries.ListContainers(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing containers: %w", err)
	}
	total, err := s.queries.CountContainers(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("counting containers: %w", err)
	}
	items, err := FromRows(rows)
	return items, total, err
}

// ChannelFromRow converts a channels row.
func ChannelFromRow(row store.Channel) model.Channel {
	return model.Channel{
		ID:       row.ID,
		SiteID:   row.SiteID,
		ParentID: util.PtrFromNullInt64(row.ParentID),
		Name:     row.Name,
		Slug:     row.Slug,
		LongSlug: row.LongSlug,
	}
}

func siteModel(row store.Site) model.Site {
	return model.Site{ID: row.ID, Domain: row.Domain, Name: row.Name}
}
