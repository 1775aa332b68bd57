// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/opps-go/internal/model"
	"github.com/olegiv/opps-go/internal/shortener"
	"github.com/olegiv/opps-go/internal/store"
	"github.com/olegiv/opps-go/internal/util"
)

// Step names, in default pipeline order.
const (
	StepSlugFormat            = "slug-format"
	StepSlugUnique            = "slug-unique"
	StepSlugRedirectCollision = "slug-redirect-collision"
	StepLinkTarget            = "link-target"
	StepChannelUnique         = "channel-unique"
	StepPostAlbums            = "post-albums"
	StepMainImage             = "main-image"
	StepDenormalizeChannel    = "denormalize-channel"
	StepTagKind               = "tag-kind"
	StepSanitizeHTML          = "sanitize-html"
	StepAssignShortURL        = "assign-short-url"
	StepSlugChangeRedirect    = "slug-change-redirect"
	StepLinkRedirect          = "link-redirect"
)

// Field messages.
const (
	MsgTitleRequired     = "Title is required"
	MsgSlugRequired      = "Slug is required"
	MsgSlugInvalid       = "Invalid slug format (use lowercase letters, numbers, and hyphens)"
	MsgSlugExists        = "Slug already exists"
	MsgSlugIsRedirect    = "The URL already exists as a redirect"
	MsgLinkURLRequired   = "URL field is required."
	MsgLinkTargetMissing = "Linked container does not exist"
	MsgLinkSelf          = "A link cannot point to itself"
	MsgChannelTaken      = "A container already exists in this channel"
	MsgAlbumInvalid      = "Only albums can be linked to a post"
	MsgMainImageMissing  = "Image does not exist"
)

// RedirectStore records and checks site redirects.
type RedirectStore interface {
	Exists(ctx context.Context, siteID int64, oldPath string) (bool, error)
	Record(ctx context.Context, siteID int64, oldPath, newPath string) error
}

// SlugFormat requires a title and a well-formed slug.
func SlugFormat() Step {
	return Step{Name: StepSlugFormat, Run: func(_ context.Context, s *Save) error {
		c := s.Container
		if c.Title == "" {
			s.Invalid("title", MsgTitleRequired)
		}
		switch {
		case c.Slug == "":
			s.Invalid("slug", MsgSlugRequired)
		case !util.IsValidSlug(c.Slug):
			s.Invalid("slug", MsgSlugInvalid)
		}
		return nil
	}}
}

// SlugUnique rejects a slug held by another container.
func SlugUnique(q *store.Queries) Step {
	return Step{Name: StepSlugUnique, Run: func(ctx context.Context, s *Save) error {
		other, err := q.GetContainerBySlug(ctx, s.Container.Slug)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("looking up slug: %w", err)
		}
		if s.IsCreate() || other.ID != s.Previous.ID {
			s.Invalid("slug", MsgSlugExists)
		}
		return nil
	}}
}

// SlugRedirectCollision rejects a container whose canonical path is already
// a redirect source on its site. When the path cannot be built the raw slug
// is checked instead. Links are exempt: their own path is a redirect source.
func SlugRedirectCollision(redirects RedirectStore) Step {
	return Step{Name: StepSlugRedirectCollision, Run: func(ctx context.Context, s *Save) error {
		c := s.Container
		if c.Kind() == model.KindLink {
			return nil
		}
		path, err := model.CanonicalPath(c.Kind(), s.Channel.LongSlug, c.Slug)
		if err != nil {
			path = c.Slug
		}
		taken, err := redirects.Exists(ctx, s.Site.ID, path)
		if err != nil {
			return err
		}
		if taken {
			s.Invalid("slug", MsgSlugIsRedirect)
		}
		return nil
	}}
}

// LinkTarget requires a link to carry a URL or a container reference and,
// when it references a container, replaces the URL with that container's
// HTTP absolute URL.
func LinkTarget(q *store.Queries) Step {
	return Step{Name: StepLinkTarget, Run: func(ctx context.Context, s *Save) error {
		body, ok := s.Container.Body.(model.LinkBody)
		if !ok {
			return nil
		}
		if body.ContainerID == nil {
			if body.URL == "" {
				s.Invalid("url", MsgLinkURLRequired)
			}
			return nil
		}
		if !s.IsCreate() && *body.ContainerID == s.Previous.ID {
			s.Invalid("container_id", MsgLinkSelf)
			return nil
		}

		url, err := absoluteURL(ctx, q, *body.ContainerID)
		if errors.Is(err, sql.ErrNoRows) {
			s.Invalid("container_id", MsgLinkTargetMissing)
			return nil
		}
		if err != nil {
			return err
		}
		body.URL = url
		s.Container.Body = body
		return nil
	}}
}

func absoluteURL(ctx context.Context, q *store.Queries, containerID int64) (string, error) {
	target, err := q.GetContainerByID(ctx, containerID)
	if err != nil {
		return "", err
	}
	site, err := q.GetSiteByID(ctx, target.SiteID)
	if err != nil {
		return "", fmt.Errorf("loading site of container %d: %w", containerID, err)
	}
	kind, err := model.ParseKind(target.ChildClass)
	if err != nil {
		return "", err
	}
	path, err := model.CanonicalPath(kind, target.ChannelLongSlug, target.Slug)
	if err != nil {
		return "", fmt.Errorf("container %d: %w", containerID, err)
	}
	return model.HTTPAbsoluteURL(site.Domain, path), nil
}

// ChannelUnique allows one container per (site, channel).
func ChannelUnique(q *store.Queries) Step {
	return Step{Name: StepChannelUnique, Run: func(ctx context.Context, s *Save) error {
		other, err := q.GetContainerBySiteChannel(ctx, s.Site.ID, s.Channel.ID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("checking channel: %w", err)
		}
		if s.IsCreate() || other.ID != s.Previous.ID {
			s.Invalid("channel_id", MsgChannelTaken)
		}
		return nil
	}}
}

// PostAlbums requires every album linked to a post to be an album.
func PostAlbums(q *store.Queries) Step {
	return Step{Name: StepPostAlbums, Run: func(ctx context.Context, s *Save) error {
		body, ok := s.Container.Body.(model.PostBody)
		if !ok {
			return nil
		}
		for _, id := range body.AlbumIDs {
			album, err := q.GetContainerByID(ctx, id)
			if errors.Is(err, sql.ErrNoRows) || (err == nil && album.ChildClass != model.KindAlbum.String()) {
				s.Invalid("album_ids", MsgAlbumInvalid)
				return nil
			}
			if err != nil {
				return fmt.Errorf("loading album %d: %w", id, err)
			}
		}
		return nil
	}}
}

// MainImage requires the primary image to exist.
func MainImage(q *store.Queries) Step {
	return Step{Name: StepMainImage, Run: func(ctx context.Context, s *Save) error {
		id := s.Container.MainImageID
		if id == nil {
			return nil
		}
		_, err := q.GetImageByID(ctx, *id)
		if errors.Is(err, sql.ErrNoRows) {
			s.Invalid("main_image_id", MsgMainImageMissing)
			return nil
		}
		return err
	}}
}

// DenormalizeChannel copies the channel name and long slug onto the container.
func DenormalizeChannel() Step {
	return Step{Name: StepDenormalizeChannel, Run: func(_ context.Context, s *Save) error {
		s.Container.ChannelID = s.Channel.ID
		s.Container.ChannelName = s.Channel.Name
		s.Container.ChannelLongSlug = s.Channel.LongSlug
		return nil
	}}
}

// TagKind stores the container kind name for the child_class column.
func TagKind() Step {
	return Step{Name: StepTagKind, Run: func(_ context.Context, s *Save) error {
		kind := s.Container.Kind()
		if !kind.IsValid() {
			return errors.New("container has no kind")
		}
		s.ChildClass = kind.String()
		return nil
	}}
}

// SanitizeHTML cleans the headline and post content with policy.
func SanitizeHTML(policy *bluemonday.Policy) Step {
	return Step{Name: StepSanitizeHTML, Run: func(_ context.Context, s *Save) error {
		s.Container.Headline = policy.Sanitize(s.Container.Headline)
		if body, ok := s.Container.Body.(model.PostBody); ok {
			body.Content = policy.Sanitize(body.Content)
			s.Container.Body = body
		}
		return nil
	}}
}

// AssignShortURL shortens the container's HTTP absolute URL once, on the
// first save that lacks a short URL. A shortener failure aborts the save.
func AssignShortURL(sh shortener.Shortener) Step {
	return Step{Name: StepAssignShortURL, Run: func(ctx context.Context, s *Save) error {
		c := s.Container
		if c.ShortURL != "" {
			return nil
		}
		path, err := c.CanonicalPath()
		if err != nil {
			return err
		}
		short, err := sh.Shorten(ctx, model.HTTPAbsoluteURL(s.Site.Domain, path))
		if err != nil {
			return err
		}
		c.ShortURL = short
		return nil
	}}
}

// SlugChangeRedirect records old path -> new path when an existing
// container's slug changed.
func SlugChangeRedirect(redirects RedirectStore) Step {
	return Step{Name: StepSlugChangeRedirect, Run: func(ctx context.Context, s *Save) error {
		if s.IsCreate() || s.Previous.Slug == s.Container.Slug {
			return nil
		}
		oldPath, err := s.Previous.CanonicalPath()
		if err != nil {
			return nil
		}
		newPath, err := s.Container.CanonicalPath()
		if err != nil || oldPath == newPath {
			return nil
		}
		return redirects.Record(ctx, s.Site.ID, oldPath, newPath)
	}}
}

// LinkRedirect points the link's canonical path at its target URL.
func LinkRedirect(redirects RedirectStore) Step {
	return Step{Name: StepLinkRedirect, Run: func(ctx context.Context, s *Save) error {
		body, ok := s.Container.Body.(model.LinkBody)
		if !ok {
			return nil
		}
		path, err := s.Container.CanonicalPath()
		if err != nil {
			return err
		}
		return redirects.Record(ctx, s.Site.ID, path, body.URL)
	}}
}

// DefaultPipeline returns the container save pipeline.
func DefaultPipeline(q *store.Queries, redirects RedirectStore, sh shortener.Shortener, policy *bluemonday.Policy) *Pipeline {
	return &Pipeline{
		Validate: []Step{
			SlugFormat(),
			SlugUnique(q),
			SlugRedirectCollision(redirects),
			LinkTarget(q),
			ChannelUnique(q),
			PostAlbums(q),
			MainImage(q),
		},
		Prepare: []Step{
			DenormalizeChannel(),
			TagKind(),
			SanitizeHTML(policy),
			AssignShortURL(sh),
		},
		After: []Step{
			SlugChangeRedirect(redirects),
			LinkRedirect(redirects),
		},
	}
}
