// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"errors"
	"testing"
	"time"
)

func TestPublishableIsLive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		published bool
		available time.Time
		want      bool
	}{
		{"published and past", true, now.Add(-time.Minute), true},
		{"published at now", true, now, true},
		{"published in future", true, now.Add(time.Minute), false},
		{"unpublished and past", false, now.Add(-time.Minute), false},
		{"unpublished in future", false, now.Add(time.Minute), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Publishable{Published: tt.published, DateAvailable: tt.available}
			if got := p.IsLive(now); got != tt.want {
				t.Errorf("IsLive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKindRoundTrip(t *testing.T) {
	for _, k := range Kinds {
		parsed, err := ParseKind(k.String())
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", k.String(), err)
		}
		if parsed != k {
			t.Errorf("ParseKind(%q) = %v, want %v", k.String(), parsed, k)
		}
	}

	if _, err := ParseKind("Article"); err == nil {
		t.Error("ParseKind(Article) should fail")
	}
	if Kind(0).IsValid() {
		t.Error("zero Kind should be invalid")
	}
}

func TestKindModelName(t *testing.T) {
	if got := KindAlbum.ModelName(); got != "articles.Album" {
		t.Errorf("ModelName() = %q, want articles.Album", got)
	}
}

func TestCanonicalPath(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		longSlug string
		slug     string
		want     string
	}{
		{"post", KindPost, "news", "hello", "/news/hello"},
		{"nested channel", KindPost, "sports/football", "final", "/sports/football/final"},
		{"album", KindAlbum, "news", "gallery", "/album/news/gallery"},
		{"link", KindLink, "news", "elsewhere", "/link/news/elsewhere"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalPath(tt.kind, tt.longSlug, tt.slug)
			if err != nil {
				t.Fatalf("CanonicalPath: %v", err)
			}
			if got != tt.want {
				t.Errorf("CanonicalPath() = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := CanonicalPath(KindPost, "", "hello"); !errors.Is(err, ErrNoCanonicalPath) {
		t.Errorf("missing channel error = %v, want ErrNoCanonicalPath", err)
	}
}

func TestContainerKindFromBody(t *testing.T) {
	c := Container{Slug: "x", ChannelLongSlug: "news", Body: LinkBody{URL: "http://example.org"}}
	if c.Kind() != KindLink {
		t.Errorf("Kind() = %v, want Link", c.Kind())
	}
	if c.SearchCategory() != "Link" {
		t.Errorf("SearchCategory() = %q, want Link", c.SearchCategory())
	}
	path, err := c.CanonicalPath()
	if err != nil {
		t.Fatalf("CanonicalPath: %v", err)
	}
	if got := HTTPAbsoluteURL("example.com", path); got != "http://example.com/link/news/x" {
		t.Errorf("HTTPAbsoluteURL() = %q", got)
	}
}

func TestDecodeConfigValue(t *testing.T) {
	got, err := DecodeConfigValue("plain", ConfigFormatText)
	if err != nil || got != "plain" {
		t.Errorf("text: got %v, %v", got, err)
	}

	got, err = DecodeConfigValue(`{"a": [1, 2]}`, ConfigFormatJSON)
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("json decoded to %T, want map", got)
	}
	if arr, ok := m["a"].([]any); !ok || len(arr) != 2 {
		t.Errorf("json a = %v", m["a"])
	}

	got, err = DecodeConfigValue("a: 1", ConfigFormatYAML)
	if err != nil || got != YAMLPlaceholder {
		t.Errorf("yaml: got %v, %v", got, err)
	}

	if _, err := DecodeConfigValue("{", ConfigFormatJSON); err == nil {
		t.Error("invalid json should fail")
	}
}

func TestImageAbsoluteURL(t *testing.T) {
	now := time.Now()
	img := Image{FilePath: "images/2026/01/02/a.jpg"}
	img.Published = true
	img.DateAvailable = now.Add(-time.Hour)

	if got := img.AbsoluteURL("/media/", now); got != "/media/images/2026/01/02/a.jpg" {
		t.Errorf("AbsoluteURL() = %q", got)
	}

	img.Published = false
	if got := img.AbsoluteURL("/media/", now); got != "" {
		t.Errorf("AbsoluteURL() for unpublished image = %q, want empty", got)
	}
}
