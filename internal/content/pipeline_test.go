// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/opps-go/internal/model"
	"github.com/olegiv/opps-go/internal/shortener"
)

type recordedRedirect struct {
	siteID  int64
	oldPath string
	newPath string
}

// memoryRedirects is an in-memory RedirectStore.
type memoryRedirects struct {
	sources  map[string]bool
	recorded []recordedRedirect
}

func newMemoryRedirects(sources ...string) *memoryRedirects {
	m := &memoryRedirects{sources: map[string]bool{}}
	for _, s := range sources {
		m.sources[s] = true
	}
	return m
}

func (m *memoryRedirects) Exists(_ context.Context, _ int64, oldPath string) (bool, error) {
	return m.sources[oldPath], nil
}

func (m *memoryRedirects) Record(_ context.Context, siteID int64, oldPath, newPath string) error {
	m.sources[oldPath] = true
	m.recorded = append(m.recorded, recordedRedirect{siteID, oldPath, newPath})
	return nil
}

func newSave(kind model.Kind, slug string) *Save {
	var body model.Body
	switch kind {
	case model.KindPost:
		body = model.PostBody{}
	case model.KindAlbum:
		body = model.AlbumBody{}
	case model.KindLink:
		body = model.LinkBody{URL: "http://elsewhere.example/x"}
	}
	return &Save{
		Container: &model.Container{
			Publishable: model.Publishable{SiteID: 1, Published: true, DateAvailable: time.Now()},
			Title:       "Title",
			Slug:        slug,
			Body:        body,
		},
		Site:    model.Site{ID: 1, Domain: "example.com"},
		Channel: model.Channel{ID: 7, SiteID: 1, Name: "Sports", LongSlug: "sports/football"},
	}
}

func TestPipelineRunOrder(t *testing.T) {
	var order []string
	step := func(name string) Step {
		return Step{Name: name, Run: func(context.Context, *Save) error {
			order = append(order, name)
			return nil
		}}
	}

	p := &Pipeline{
		Validate: []Step{step("v1"), step("v2")},
		Prepare:  []Step{step("p1")},
		After:    []Step{step("a1")},
	}
	err := p.Run(context.Background(), newSave(model.KindPost, "x"), func(context.Context, *Save) error {
		order = append(order, "persist")
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"v1", "v2", "p1", "persist", "a1"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
	if got := p.StepNames(); !reflect.DeepEqual(got, []string{"v1", "v2", "p1", "a1"}) {
		t.Errorf("StepNames() = %v", got)
	}
}

func TestPipelineStopsOnValidationErrors(t *testing.T) {
	persisted := false
	prepared := false
	p := &Pipeline{
		Validate: []Step{
			{Name: "a", Run: func(_ context.Context, s *Save) error { s.Invalid("slug", "bad"); return nil }},
			{Name: "b", Run: func(_ context.Context, s *Save) error { s.Invalid("url", "missing"); return nil }},
		},
		Prepare: []Step{{Name: "p", Run: func(context.Context, *Save) error { prepared = true; return nil }}},
	}

	err := p.Run(context.Background(), newSave(model.KindPost, "x"), func(context.Context, *Save) error {
		persisted = true
		return nil
	})

	v, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if v.Fields["slug"] != "bad" || v.Fields["url"] != "missing" {
		t.Errorf("fields = %v", v.Fields)
	}
	if prepared || persisted {
		t.Error("prepare and persist must not run after validation failures")
	}
}

func TestPipelineStepErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	persisted := false
	p := &Pipeline{
		Prepare: []Step{{Name: "explode", Run: func(context.Context, *Save) error { return boom }}},
	}

	err := p.Run(context.Background(), newSave(model.KindPost, "x"), func(context.Context, *Save) error {
		persisted = true
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if persisted {
		t.Error("persist ran after a failing prepare step")
	}
}

func TestSlugFormat(t *testing.T) {
	tests := []struct {
		title, slug string
		wantFields  []string
	}{
		{"Hello", "hello", nil},
		{"", "hello", []string{"title"}},
		{"Hello", "", []string{"slug"}},
		{"Hello", "Not A Slug", []string{"slug"}},
	}

	for _, tt := range tests {
		s := newSave(model.KindPost, tt.slug)
		s.Container.Title = tt.title
		if err := SlugFormat().Run(context.Background(), s); err != nil {
			t.Fatalf("Run: %v", err)
		}
		var got []string
		for f := range s.errs.Fields {
			got = append(got, f)
		}
		if len(got) != len(tt.wantFields) || (len(got) == 1 && got[0] != tt.wantFields[0]) {
			t.Errorf("title=%q slug=%q fields = %v, want %v", tt.title, tt.slug, got, tt.wantFields)
		}
	}
}

func TestSlugRedirectCollision(t *testing.T) {
	tests := []struct {
		name      string
		kind      model.Kind
		longSlug  string
		sources   []string
		wantError bool
	}{
		{"post path is a redirect source", model.KindPost, "sports/football", []string{"/sports/football/goal"}, true},
		{"album path is a redirect source", model.KindAlbum, "sports/football", []string{"/album/sports/football/goal"}, true},
		{"post path is free", model.KindPost, "sports/football", []string{"/album/sports/football/goal"}, false},
		{"no channel falls back to raw slug", model.KindPost, "", []string{"goal"}, true},
		{"links are exempt", model.KindLink, "sports/football", []string{"/link/sports/football/goal"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSave(tt.kind, "goal")
			s.Channel.LongSlug = tt.longSlug
			if err := SlugRedirectCollision(newMemoryRedirects(tt.sources...)).Run(context.Background(), s); err != nil {
				t.Fatalf("Run: %v", err)
			}
			_, failed := s.errs.Fields["slug"]
			if failed != tt.wantError {
				t.Errorf("slug error = %v, want %v (%v)", failed, tt.wantError, s.errs.Fields)
			}
		})
	}
}

func TestDenormalizeChannelAndTagKind(t *testing.T) {
	for _, kind := range model.Kinds {
		s := newSave(kind, "goal")
		if err := DenormalizeChannel().Run(context.Background(), s); err != nil {
			t.Fatalf("DenormalizeChannel: %v", err)
		}
		if err := TagKind().Run(context.Background(), s); err != nil {
			t.Fatalf("TagKind: %v", err)
		}
		c := s.Container
		if c.ChannelID != 7 || c.ChannelName != "Sports" || c.ChannelLongSlug != "sports/football" {
			t.Errorf("%s: channel columns = %d/%q/%q", kind, c.ChannelID, c.ChannelName, c.ChannelLongSlug)
		}
		if s.ChildClass != kind.String() {
			t.Errorf("%s: ChildClass = %q", kind, s.ChildClass)
		}
	}

	s := newSave(model.KindPost, "goal")
	s.Container.Body = nil
	if err := TagKind().Run(context.Background(), s); err == nil {
		t.Error("TagKind accepted a container without body")
	}
}

func TestSanitizeHTML(t *testing.T) {
	s := newSave(model.KindPost, "goal")
	s.Container.Headline = `<b>Bold</b><script>alert(1)</script>`
	s.Container.Body = model.PostBody{Content: `<p onclick="x()">Hi</p>`}

	if err := SanitizeHTML(bluemonday.UGCPolicy()).Run(context.Background(), s); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.Container.Headline != "<b>Bold</b>" {
		t.Errorf("Headline = %q", s.Container.Headline)
	}
	if got := s.Container.Body.(model.PostBody).Content; got != "<p>Hi</p>" {
		t.Errorf("Content = %q", got)
	}
}

func TestAssignShortURL(t *testing.T) {
	sh := &shortener.Memory{}
	s := newSave(model.KindAlbum, "goal")
	_ = DenormalizeChannel().Run(context.Background(), s)

	if err := AssignShortURL(sh).Run(context.Background(), s); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.Container.ShortURL == "" {
		t.Fatal("ShortURL not assigned")
	}
	if calls := sh.Calls(); len(calls) != 1 || calls[0] != "http://example.com/album/sports/football/goal" {
		t.Errorf("shortener calls = %v", calls)
	}

	// A container with a short URL keeps it, even when its path changed.
	s.Container.Slug = "other"
	if err := AssignShortURL(sh).Run(context.Background(), s); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(sh.Calls()) != 1 {
		t.Errorf("shortener called again: %v", sh.Calls())
	}

	failing := &shortener.Memory{Err: errors.New("down")}
	s = newSave(model.KindPost, "goal")
	_ = DenormalizeChannel().Run(context.Background(), s)
	if err := AssignShortURL(failing).Run(context.Background(), s); !errors.Is(err, shortener.ErrShorten) {
		t.Errorf("err = %v, want ErrShorten", err)
	}
}

func TestSlugChangeRedirect(t *testing.T) {
	prev := newSave(model.KindPost, "a").Container
	prev.ChannelLongSlug = "sports/football"

	t.Run("slug changed", func(t *testing.T) {
		redirects := newMemoryRedirects()
		s := newSave(model.KindPost, "b")
		s.Previous = prev
		_ = DenormalizeChannel().Run(context.Background(), s)

		if err := SlugChangeRedirect(redirects).Run(context.Background(), s); err != nil {
			t.Fatalf("Run: %v", err)
		}
		want := []recordedRedirect{{1, "/sports/football/a", "/sports/football/b"}}
		if !reflect.DeepEqual(redirects.recorded, want) {
			t.Errorf("recorded = %v, want %v", redirects.recorded, want)
		}
	})

	t.Run("slug unchanged", func(t *testing.T) {
		redirects := newMemoryRedirects()
		s := newSave(model.KindPost, "a")
		s.Previous = prev
		_ = DenormalizeChannel().Run(context.Background(), s)

		_ = SlugChangeRedirect(redirects).Run(context.Background(), s)
		if len(redirects.recorded) != 0 {
			t.Errorf("recorded = %v, want none", redirects.recorded)
		}
	})

	t.Run("create", func(t *testing.T) {
		redirects := newMemoryRedirects()
		s := newSave(model.KindPost, "b")
		_ = DenormalizeChannel().Run(context.Background(), s)

		_ = SlugChangeRedirect(redirects).Run(context.Background(), s)
		if len(redirects.recorded) != 0 {
			t.Errorf("recorded = %v, want none", redirects.recorded)
		}
	})
}

func TestLinkRedirect(t *testing.T) {
	redirects := newMemoryRedirects()
	s := newSave(model.KindLink, "go")
	_ = DenormalizeChannel().Run(context.Background(), s)

	if err := LinkRedirect(redirects).Run(context.Background(), s); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []recordedRedirect{{1, "/link/sports/football/go", "http://elsewhere.example/x"}}
	if !reflect.DeepEqual(redirects.recorded, want) {
		t.Errorf("recorded = %v, want %v", redirects.recorded, want)
	}

	post := newSave(model.KindPost, "go")
	_ = DenormalizeChannel().Run(context.Background(), post)
	_ = LinkRedirect(redirects).Run(context.Background(), post)
	if len(redirects.recorded) != 1 {
		t.Errorf("posts must not record link redirects: %v", redirects.recorded)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	v := &ValidationError{}
	v.Add("url", "missing")
	v.Add("slug", "bad")
	v.Add("slug", "ignored")

	if got, want := v.Error(), "validation failed: slug: bad; url: missing"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
