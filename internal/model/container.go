// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"errors"
	"strings"
)

// ErrNoCanonicalPath is returned when a canonical path cannot be built.
var ErrNoCanonicalPath = errors.New("canonical path unavailable")

// Site is a hosting site. Every publishable row belongs to one.
type Site struct {
	ID     int64  `json:"id"`
	Domain string `json:"domain"`
	Name   string `json:"name"`
}

// Channel is an editorial section. LongSlug is the full path of the channel
// in its tree, e.g. "sports/football".
type Channel struct {
	ID       int64  `json:"id"`
	SiteID   int64  `json:"site_id"`
	ParentID *int64 `json:"parent_id,omitempty"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	LongSlug string `json:"long_slug"`
}

// Redirect maps an old path to a new one within a site.
type Redirect struct {
	ID      int64  `json:"id"`
	SiteID  int64  `json:"site_id"`
	OldPath string `json:"old_path"`
	NewPath string `json:"new_path"`
}

// Body holds the fields specific to one container kind.
type Body interface {
	Kind() Kind
}

// PostBody is the body of a post.
type PostBody struct {
	Content  string
	AlbumIDs []int64
}

func (PostBody) Kind() Kind { return KindPost }

// AlbumBody is the body of an album. Albums carry only the shared fields.
type AlbumBody struct{}

func (AlbumBody) Kind() Kind { return KindAlbum }

// LinkBody is the body of a link: an external URL or another container.
type LinkBody struct {
	URL         string
	ContainerID *int64
}

func (LinkBody) Kind() Kind { return KindLink }

// Container is a publishable, slugged, imaged content item. Its kind is
// carried by Body.
type Container struct {
	ID int64
	Publishable
	Title           string
	Slug            string
	ChannelID       int64
	ChannelName     string
	ChannelLongSlug string
	ShortURL        string
	MainImageID     *int64
	Headline        string
	ShortTitle      string
	Tags            []string
	Body            Body
}

// Kind returns the container kind, or zero when Body is unset.
func (c *Container) Kind() Kind {
	if c.Body == nil {
		return 0
	}
	return c.Body.Kind()
}

// CanonicalPath returns the container path, e.g. "/album/news/my-slug".
func (c *Container) CanonicalPath() (string, error) {
	return CanonicalPath(c.Kind(), c.ChannelLongSlug, c.Slug)
}

// SearchCategory is the label used for the container in search results.
func (c *Container) SearchCategory() string {
	return c.Kind().String()
}

// CanonicalPath builds "{prefix}/{channel_long_slug}/{slug}" for kind.
func CanonicalPath(kind Kind, channelLongSlug, slug string) (string, error) {
	if !kind.IsValid() || channelLongSlug == "" || slug == "" {
		return "", ErrNoCanonicalPath
	}
	return kind.URLPrefix() + "/" + strings.Trim(channelLongSlug, "/") + "/" + slug, nil
}

// HTTPAbsoluteURL returns the plain-HTTP URL of path on domain.
func HTTPAbsoluteURL(domain, path string) string {
	return "http://" + domain + path
}
