// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package admin

import "log/slog"

// Fieldset headings.
const (
	Identification = "Identification"
	Content        = "Content"
	Relationships  = "Relationships"
	Publication    = "Publication"
	RulesHeading   = "Rules"
)

// Layout names of the hidden container listing.
const (
	ContainerAdmin = "core.HideContainerAdmin"
	ContainerModel = "core.Container"
)

func publication() Fieldset {
	return Fieldset{Name: Publication, Classes: []string{"extrapretty"}, Fields: []string{"published", "date_available"}}
}

func publishable(name, model string) ModelAdmin {
	return ModelAdmin{
		Name:         name,
		Model:        model,
		ListDisplay:  []string{"title", "channel_name", "date_available", "published"},
		ListFilter:   []string{"date_available", "published", "channel_name", "child_class"},
		SearchFields: []string{"title", "slug", "headline", "channel_name"},
		Exclude:      []string{"user_id"},
	}
}

func article(name, model string) ModelAdmin {
	a := publishable(name, model)
	a.PrepopulatedFields = map[string][]string{"slug": {"title"}}
	a.ReadonlyFields = []string{"http_absolute_url", "short_url"}
	a.RawIDFields = []string{"main_image_id", "channel_id"}
	return a
}

func box(name, model string) ModelAdmin {
	a := publishable(name, model)
	a.PrepopulatedFields = map[string][]string{"slug": {"name"}}
	a.ListDisplay = []string{"name", "date_available", "published"}
	a.ListFilter = []string{"date_available", "published"}
	a.SearchFields = []string{"name", "slug"}
	return a
}

var containerImageInline = Inline{
	Model:       "images.ContainerImage",
	FKName:      "container",
	Fields:      []string{"image_id", "order"},
	RawIDFields: []string{"image_id"},
	Extra:       1,
}

var containerSourceInline = Inline{
	Model:       "sources.ContainerSource",
	FKName:      "container",
	Fields:      []string{"source_id", "order"},
	RawIDFields: []string{"source_id"},
	Extra:       1,
}

var containerBoxContainersInline = Inline{
	Model:       "boxes.ContainerBoxContainers",
	FKName:      "containerbox",
	Fields:      []string{"container_id", "order"},
	RawIDFields: []string{"container_id"},
	Extra:       1,
}

// Defaults returns the built-in layouts of every editable model.
func Defaults() []ModelAdmin {
	hidden := publishable(ContainerAdmin, ContainerModel)
	hidden.ListDisplay = []string{"image_thumb", "title", "channel_name", "date_available", "published"}
	hidden.ReadonlyFields = []string{"image_thumb"}
	hidden.Hidden = true

	post := article("articles.PostAdmin", "articles.Post")
	post.RawIDFields = []string{"main_image_id", "channel_id", "album_ids"}
	post.Inlines = []Inline{containerImageInline, containerSourceInline}
	post.Fieldsets = []Fieldset{
		{Name: Identification, Fields: []string{"site_id", "title", "slug", "http_absolute_url", "short_url"}},
		{Name: Content, Fields: []string{"short_title", "headline", "content", "main_image_id", "tags"}},
		{Name: Relationships, Fields: []string{"channel_id", "album_ids"}},
		publication(),
	}

	album := article("articles.AlbumAdmin", "articles.Album")
	album.Inlines = []Inline{containerImageInline}
	album.Fieldsets = []Fieldset{
		{Name: Identification, Fields: []string{"title", "slug", "http_absolute_url", "short_url"}},
		{Name: Content, Fields: []string{"short_title", "headline", "main_image_id", "tags"}},
		{Name: Relationships, Fields: []string{"channel_id"}},
		publication(),
	}

	link := article("articles.LinkAdmin", "articles.Link")
	link.RawIDFields = []string{"container_id", "channel_id", "main_image_id"}
	link.Fieldsets = []Fieldset{
		{Name: Identification, Fields: []string{"title", "slug", "http_absolute_url", "short_url"}},
		{Name: Content, Fields: []string{"short_title", "headline", "url", "container_id", "main_image_id", "tags"}},
		{Name: Relationships, Fields: []string{"channel_id"}},
		publication(),
	}

	config := publishable("articles.ArticleConfigAdmin", "articles.ArticleConfig")
	config.ListDisplay = []string{"key", "key_group", "channel_id", "date_insert", "date_available", "published"}
	config.ListFilter = []string{"key", "key_group", "channel_id", "published"}
	config.SearchFields = []string{"key", "key_group", "value"}

	querySet := box("boxes.QuerySetAdmin", "boxes.QuerySet")
	querySet.SearchFields = nil
	querySet.RawIDFields = []string{"channel_id"}
	querySet.Fieldsets = []Fieldset{
		{Name: Identification, Fields: []string{"site_id", "name", "slug"}},
		{Name: RulesHeading, Fields: []string{"model", "order", "limit", "channel_id"}},
		publication(),
	}

	dynamicBox := box("boxes.DynamicBoxAdmin", "boxes.DynamicBox")
	dynamicBox.RawIDFields = []string{"channel_id", "container_id", "queryset_id"}
	dynamicBox.Fieldsets = []Fieldset{
		{Name: Identification, Fields: []string{"site_id", "name", "slug"}},
		{Name: Relationships, Fields: []string{"channel_id", "container_id", "queryset_id"}},
		publication(),
	}

	containerBox := box("boxes.ContainerBoxAdmin", "boxes.ContainerBox")
	containerBox.RawIDFields = []string{"channel_id", "container_id", "queryset_id"}
	containerBox.Inlines = []Inline{containerBoxContainersInline}
	containerBox.Fieldsets = []Fieldset{
		{Name: Identification, Fields: []string{"site_id", "name", "slug"}},
		{Name: Relationships, Fields: []string{"channel_id", "container_id", "queryset_id"}},
		publication(),
	}

	source := publishable("sources.SourceAdmin", "sources.Source")
	source.PrepopulatedFields = map[string][]string{"slug": {"name"}}
	source.ListDisplay = []string{"name"}
	source.ListFilter = []string{"date_available", "published"}
	source.SearchFields = []string{"name", "slug", "url"}
	source.Fieldsets = []Fieldset{
		{Name: Identification, Fields: []string{"site_id", "name", "slug"}},
		{Name: Content, Fields: []string{"url", "feed"}},
		publication(),
	}

	image := publishable("images.ImageAdmin", "images.Image")
	image.PrepopulatedFields = map[string][]string{"slug": {"title"}}
	image.ListDisplay = []string{"title", "date_available", "published"}
	image.ListFilter = []string{"date_available", "published"}
	image.SearchFields = []string{"title", "slug"}
	image.RawIDFields = []string{"source_id"}
	image.Fieldsets = []Fieldset{
		{Name: Identification, Fields: []string{"site_id", "title", "slug"}},
		{Name: Content, Fields: []string{"file", "description", "tags", "source_id"}},
		publication(),
	}

	return []ModelAdmin{hidden, post, album, link, config, querySet, dynamicBox, containerBox, source, image}
}

// NewDefaultRegistry registers Defaults with rules applied.
func NewDefaultRegistry(rules RuleSet, logger *slog.Logger) (*Registry, error) {
	r := NewRegistry(rules, logger)
	for _, a := range Defaults() {
		if err := r.Register(a); err != nil {
			return nil, err
		}
	}
	return r, nil
}
