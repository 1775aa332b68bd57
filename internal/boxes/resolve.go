// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package boxes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/opps-go/internal/model"
	"github.com/olegiv/opps-go/internal/store"
	"github.com/olegiv/opps-go/internal/util"
)

// Member is a live container as rendered inside a box.
type Member struct {
	ID              int64     `json:"id"`
	ChildClass      string    `json:"child_class"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	Headline        string    `json:"headline,omitempty"`
	ShortTitle      string    `json:"short_title,omitempty"`
	ChannelName     string    `json:"channel_name"`
	ChannelLongSlug string    `json:"channel_long_slug"`
	Path            string    `json:"path"`
	ShortURL        string    `json:"short_url,omitempty"`
	URL             string    `json:"url,omitempty"`
	MainImageID     *int64    `json:"main_image_id,omitempty"`
	DateAvailable   time.Time `json:"date_available"`
}

// Resolved is a box with its members at resolution time. ValidUntil is set
// when a scheduled container will join the box, and a cached resolution is
// discarded once it passes.
type Resolved struct {
	ID         int64         `json:"id"`
	Slug       string        `json:"slug"`
	Name       string        `json:"name"`
	Mode       model.BoxMode `json:"mode"`
	Members    []Member      `json:"members"`
	ValidUntil *time.Time    `json:"valid_until,omitempty"`
}

// expired reports whether a scheduled member has become live since r was
// resolved.
func (r *Resolved) expired(now time.Time) bool {
	return r.ValidUntil != nil && !now.Before(*r.ValidUntil)
}

// ResolveContainerBox returns the live members of the live container box
// with slug: curated members in stored order, or the queryset replay.
func (s *Service) ResolveContainerBox(ctx context.Context, slug string) (*Resolved, error) {
	return s.resolved.GetOrLoad(ctx, cachePrefix+"container:"+slug, func() (*Resolved, error) {
		row, err := s.queries.GetContainerBoxBySlug(ctx, slug)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("loading container box %q: %w", slug, err)
		}
		return s.resolveContainerBox(ctx, row)
	})
}

// ResolveDynamicBox returns the queryset replay of the live dynamic box with
// slug.
func (s *Service) ResolveDynamicBox(ctx context.Context, slug string) (*Resolved, error) {
	return s.resolved.GetOrLoad(ctx, cachePrefix+"dynamic:"+slug, func() (*Resolved, error) {
		row, err := s.queries.GetDynamicBoxBySlug(ctx, slug)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("loading dynamic box %q: %w", slug, err)
		}
		if !row.Published || row.DateAvailable.After(s.now()) {
			return nil, ErrNotFound
		}
		members, next, err := s.replayQuerySet(ctx, row.QuerysetID)
		if err != nil {
			return nil, err
		}
		return &Resolved{ID: row.ID, Slug: row.Slug, Name: row.Name, Mode: model.BoxModeQuerySet, Members: members, ValidUntil: next}, nil
	})
}

// ChannelBoxes resolves the live container boxes attached to the channel
// with longSlug. A non-empty containerSlug narrows the result to boxes also
// attached to that container.
func (s *Service) ChannelBoxes(ctx context.Context, siteID int64, longSlug, containerSlug string) ([]Resolved, error) {
	var (
		rows []store.ContainerBox
		err  error
	)
	if containerSlug == "" {
		rows, err = s.queries.ListChannelContainerBoxes(ctx, siteID, longSlug)
	} else {
		rows, err = s.queries.ListChannelContainerBoxesForContainer(ctx, siteID, longSlug, containerSlug)
	}
	if err != nil {
		return nil, fmt.Errorf("listing boxes of channel %q: %w", longSlug, err)
	}

	out := make([]Resolved, 0, len(rows))
	for _, row := range rows {
		r, err := s.resolved.GetOrLoad(ctx, cachePrefix+"container:"+row.Slug, func() (*Resolved, error) {
			return s.resolveContainerBox(ctx, row)
		})
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, nil
}

// ResolveQuerySet replays qs: live containers of the registered model,
// filtered by the queryset channel, ordered by id in the queryset direction
// and cut at the queryset limit.
func (s *Service) ResolveQuerySet(ctx context.Context, qs model.QuerySet) ([]Member, error) {
	members, _, err := s.resolveQuerySet(ctx, qs)
	return members, err
}

// resolveQuerySet is ResolveQuerySet that also returns when the next
// scheduled container in the queryset scope goes live.
func (s *Service) resolveQuerySet(ctx context.Context, qs model.QuerySet) ([]Member, *time.Time, error) {
	childClass, ok := s.registry.Lookup(qs.Model)
	if !ok {
		s.logger.Warn("queryset targets an unregistered model", "queryset_id", qs.ID, "model", qs.Model)
		return []Member{}, nil, nil
	}
	arg := store.ResolveLiveContainersParams{
		ChildClass: childClass,
		ChannelID:  util.NullInt64FromPtr(qs.ChannelID),
		Ascending:  qs.Order == model.BoxOrderAsc,
		Now:        s.now(),
		Limit:      int64(qs.Limit),
	}
	rows, err := s.queries.ResolveLiveContainers(ctx, arg)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving queryset %d: %w", qs.ID, err)
	}
	next, err := s.queries.NextScheduledContainer(ctx, arg)
	if err != nil {
		return nil, nil, fmt.Errorf("scheduling of queryset %d: %w", qs.ID, err)
	}
	return membersFromRows(rows), util.PtrFromNullTime(next), nil
}

func (s *Service) resolveContainerBox(ctx context.Context, row store.ContainerBox) (*Resolved, error) {
	now := s.now()
	if !row.Published || row.DateAvailable.After(now) {
		return nil, ErrNotFound
	}

	r := &Resolved{ID: row.ID, Slug: row.Slug, Name: row.Name, Mode: model.BoxMode(row.Mode)}
	if r.Mode == model.BoxModeQuerySet {
		members, next, err := s.replayQuerySet(ctx, row.QuerysetID.Int64)
		if err != nil {
			return nil, err
		}
		r.Members = members
		r.ValidUntil = next
		return r, nil
	}

	rows, err := s.queries.ListLiveBoxContainers(ctx, row.ID, now)
	if err != nil {
		return nil, fmt.Errorf("loading members of box %d: %w", row.ID, err)
	}
	next, err := s.queries.NextScheduledBoxContainer(ctx, row.ID, now)
	if err != nil {
		return nil, fmt.Errorf("scheduling of box %d: %w", row.ID, err)
	}
	r.Members = membersFromRows(rows)
	r.ValidUntil = util.PtrFromNullTime(next)
	return r, nil
}

func (s *Service) replayQuerySet(ctx context.Context, id int64) ([]Member, *time.Time, error) {
	qs, err := s.GetQuerySet(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return s.resolveQuerySet(ctx, qs)
}

func membersFromRows(rows []store.Container) []Member {
	out := make([]Member, 0, len(rows))
	for _, row := range rows {
		out = append(out, memberFromRow(row))
	}
	return out
}

func memberFromRow(row store.Container) Member {
	m := Member{
		ID:              row.ID,
		ChildClass:      row.ChildClass,
		Title:           row.Title,
		Slug:            row.Slug,
		Headline:        row.Headline,
		ShortTitle:      row.ShortTitle,
		ChannelName:     row.ChannelName,
		ChannelLongSlug: row.ChannelLongSlug,
		ShortURL:        row.ShortUrl,
		URL:             row.Url.String,
		MainImageID:     util.PtrFromNullInt64(row.MainImageID),
		DateAvailable:   row.DateAvailable,
	}
	if kind, err := model.ParseKind(row.ChildClass); err == nil {
		m.Path, _ = model.CanonicalPath(kind, row.ChannelLongSlug, row.Slug)
	}
	return m
}
