// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package boxes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/opps-go/internal/cache"
	"github.com/olegiv/opps-go/internal/content"
	"github.com/olegiv/opps-go/internal/model"
	"github.com/olegiv/opps-go/internal/store"
	"github.com/olegiv/opps-go/internal/util"
)

// cachePrefix namespaces every resolved-box entry.
const cachePrefix = "boxes:"

// Service manages querysets, container boxes and dynamic boxes, and
// resolves boxes into their live members.
type Service struct {
	db        *sql.DB
	queries   *store.Queries
	registry  *Registry
	redirects content.RedirectStore
	cache     cache.Cacher
	resolved  *cache.JSON[Resolved]
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a Service. redirects may be nil, which disables the
// slug/redirect collision check. c holds resolved boxes for ttl.
func NewService(db *sql.DB, registry *Registry, redirects content.RedirectStore, c cache.Cacher, ttl time.Duration, logger *slog.Logger) *Service {
	s := &Service{
		db:        db,
		queries:   store.New(db),
		registry:  registry,
		redirects: redirects,
		cache:     c,
		logger:    logger,
		now:       time.Now,
	}
	s.resolved = cache.NewJSON[Resolved](c, ttl).StaleWhen(func(r *Resolved) bool {
		return r.expired(s.now())
	})
	return s
}

// Registry returns the model registry querysets are validated against.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Invalidate drops every cached resolution.
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.cache.DeleteByPrefix(ctx, cachePrefix); err != nil {
		s.logger.Warn("failed to invalidate box cache", "error", err)
	}
}

// ContainerSaved invalidates cached resolutions. It has the signature of a
// content.ContainerService save hook.
func (s *Service) ContainerSaved(ctx context.Context, _ *model.Container) {
	s.Invalidate(ctx)
}

// checkSlug validates the slug format and rejects a slug that is already a
// redirect source on the site. Boxes have no canonical path, so the raw
// slug is the path checked.
func (s *Service) checkSlug(ctx context.Context, v *content.ValidationError, siteID int64, slug string) error {
	if !util.IsValidSlug(slug) {
		v.Add("slug", content.MsgSlugInvalid)
		return nil
	}
	if s.redirects == nil {
		return nil
	}
	taken, err := s.redirects.Exists(ctx, siteID, slug)
	if err != nil {
		return fmt.Errorf("checking redirects: %w", err)
	}
	if taken {
		v.Add("slug", content.MsgSlugIsRedirect)
	}
	return nil
}

// checkChannel requires channelID, when set, to name a channel on siteID.
func (s *Service) checkChannel(ctx context.Context, v *content.ValidationError, siteID int64, channelID *int64) error {
	if channelID == nil {
		return nil
	}
	ch, err := s.queries.GetChannelByID(ctx, *channelID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && ch.SiteID != siteID) {
		v.Add("channel_id", content.MsgChannelMissing)
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading channel %d: %w", *channelID, err)
	}
	return nil
}

// checkContainer requires containerID, when set, to name a container.
func (s *Service) checkContainer(ctx context.Context, v *content.ValidationError, containerID *int64) error {
	if containerID == nil {
		return nil
	}
	_, err := s.queries.GetContainerByID(ctx, *containerID)
	if errors.Is(err, sql.ErrNoRows) {
		v.Add("container_id", MsgContainerMissing)
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading container %d: %w", *containerID, err)
	}
	return nil
}

// checkQuerySet requires id to name a queryset.
func (s *Service) checkQuerySet(ctx context.Context, v *content.ValidationError, id int64) error {
	_, err := s.queries.GetQuerySetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		v.Add("queryset_id", MsgQuerySetMissing)
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading queryset %d: %w", id, err)
	}
	return nil
}

func publishable(userID, siteID int64, available time.Time, published bool, inserted, updated time.Time) model.Publishable {
	return model.Publishable{
		UserID:        userID,
		SiteID:        siteID,
		DateAvailable: available,
		Published:     published,
		DateInsert:    inserted,
		DateUpdate:    updated,
	}
}

func availableAt(t, fallback time.Time) time.Time {
	if t.IsZero() {
		return fallback
	}
	return t
}

func validationOrNil(v *content.ValidationError) error {
	if v.Empty() {
		return nil
	}
	return v
}
