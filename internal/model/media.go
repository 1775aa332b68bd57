// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strings"
	"time"
)

// Image is an uploaded picture.
type Image struct {
	ID int64 `json:"id"`
	Publishable
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	FilePath    string   `json:"file_path"`
	MimeType    string   `json:"mime_type"`
	Width       int64    `json:"width"`
	Height      int64    `json:"height"`
	Size        int64    `json:"size"`
	Description string   `json:"description"`
	SourceID    *int64   `json:"source_id,omitempty"`
	Tags        []string `json:"tags"`
}

// AbsoluteURL returns the public URL of the image file, or "" while the
// image is not live.
func (i *Image) AbsoluteURL(mediaURL string, now time.Time) string {
	if !i.IsLive(now) || i.FilePath == "" {
		return ""
	}
	return strings.TrimRight(mediaURL, "/") + "/" + strings.TrimLeft(i.FilePath, "/")
}

// Source is an editorial source attributed by containers.
type Source struct {
	ID int64 `json:"id"`
	Publishable
	Name string `json:"name"`
	Slug string `json:"slug"`
	URL  string `json:"url"`
	Feed string `json:"feed"`
}
