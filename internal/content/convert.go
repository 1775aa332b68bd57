// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"database/sql"

	"github.com/olegiv/opps-go/internal/model"
	"github.com/olegiv/opps-go/internal/store"
	"github.com/olegiv/opps-go/internal/util"
)

// FromRow converts a containers row. Tags and post albums are not loaded.
func FromRow(row store.Container) (*model.Container, error) {
	kind, err := model.ParseKind(row.ChildClass)
	if err != nil {
		return nil, err
	}

	c := &model.Container{
		ID: row.ID,
		Publishable: model.Publishable{
			UserID:        row.UserID,
			SiteID:        row.SiteID,
			DateAvailable: row.DateAvailable,
			Published:     row.Published,
			DateInsert:    row.DateInsert,
			DateUpdate:    row.DateUpdate,
		},
		Title:           row.Title,
		Slug:            row.Slug,
		ChannelID:       row.ChannelID,
		ChannelName:     row.ChannelName,
		ChannelLongSlug: row.ChannelLongSlug,
		ShortURL:        row.ShortUrl,
		MainImageID:     util.PtrFromNullInt64(row.MainImageID),
		Headline:        row.Headline,
		ShortTitle:      row.ShortTitle,
	}

	switch kind {
	case model.KindPost:
		c.Body = model.PostBody{Content: row.Content.String}
	case model.KindAlbum:
		c.Body = model.AlbumBody{}
	case model.KindLink:
		c.Body = model.LinkBody{
			URL:         row.Url.String,
			ContainerID: util.PtrFromNullInt64(row.LinkContainerID),
		}
	}
	return c, nil
}

// FromRows converts a slice of rows.
func FromRows(rows []store.Container) ([]*model.Container, error) {
	out := make([]*model.Container, 0, len(rows))
	for _, row := range rows {
		c, err := FromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// bodyColumns returns the kind-specific column values of c.
func bodyColumns(c *model.Container) (content, url sql.NullString, linkContainerID sql.NullInt64) {
	switch b := c.Body.(type) {
	case model.PostBody:
		content = sql.NullString{String: b.Content, Valid: true}
	case model.LinkBody:
		url = sql.NullString{String: b.URL, Valid: true}
		linkContainerID = util.NullInt64FromPtr(b.ContainerID)
	}
	return content, url, linkContainerID
}

func createParams(s *Save) store.CreateContainerParams {
	c := s.Container
	content, url, linkID := bodyColumns(c)
	return store.CreateContainerParams{
		UserID:          c.UserID,
		SiteID:          c.SiteID,
		DateAvailable:   c.DateAvailable,
		Published:       c.Published,
		DateInsert:      c.DateInsert,
		DateUpdate:      c.DateUpdate,
		Title:           c.Title,
		Slug:            c.Slug,
		ChannelID:       c.ChannelID,
		ChannelName:     c.ChannelName,
		ChannelLongSlug: c.ChannelLongSlug,
		ChildClass:      s.ChildClass,
		ShortUrl:        c.ShortURL,
		MainImageID:     util.NullInt64FromPtr(c.MainImageID),
		Headline:        c.Headline,
		ShortTitle:      c.ShortTitle,
		Content:         content,
		Url:             url,
		LinkContainerID: linkID,
	}
}

func updateParams(s *Save) store.UpdateContainerParams {
	c := s.Container
	content, url, linkID := bodyColumns(c)
	return store.UpdateContainerParams{
		ID:              c.ID,
		DateAvailable:   c.DateAvailable,
		Published:       c.Published,
		DateUpdate:      c.DateUpdate,
		Title:           c.Title,
		Slug:            c.Slug,
		ChannelID:       c.ChannelID,
		ChannelName:     c.ChannelName,
		ChannelLongSlug: c.ChannelLongSlug,
		ChildClass:      s.ChildClass,
		ShortUrl:        c.ShortURL,
		MainImageID:     util.NullInt64FromPtr(c.MainImageID),
		Headline:        c.Headline,
		ShortTitle:      c.ShortTitle,
		Content:         content,
		Url:             url,
		LinkContainerID: linkID,
	}
}

// ImageFromRow converts an images row.
func ImageFromRow(row store.Image) model.Image {
	return model.Image{
		ID: row.ID,
		Publishable: model.Publishable{
			UserID:        row.UserID,
			SiteID:        row.SiteID,
			DateAvailable: row.DateAvailable,
			Published:     row.Published,
			DateInsert:    row.DateInsert,
			DateUpdate:    row.DateUpdate,
		},
		Title:       row.Title,
		Slug:        row.Slug,
		FilePath:    row.FilePath,
		MimeType:    row.MimeType,
		Width:       row.Width,
		Height:      row.Height,
		Size:        row.Size,
		Description: row.Description,
		SourceID:    util.PtrFromNullInt64(row.SourceID),
	}
}

// SourceFromRow converts a sources row.
func SourceFromRow(row store.Source) model.Source {
	return model.Source{
		ID: row.ID,
		Publishable: model.Publishable{
			UserID:        row.UserID,
			SiteID:        row.SiteID,
			DateAvailable: row.DateAvailable,
			Published:     row.Published,
			DateInsert:    row.DateInsert,
			DateUpdate:    row.DateUpdate,
		},
		Name: row.Name,
		Slug: row.Slug,
		URL:  row.Url,
		Feed: row.Feed,
	}
}

// UserFromRow converts a users row.
func UserFromRow(row store.User) model.User {
	return model.User{
		ID:           row.ID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Role:         row.Role,
		Name:         row.Name,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		LastLoginAt:  util.PtrFromNullTime(row.LastLoginAt),
	}
}
