// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package admin

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/olegiv/opps-go/internal/testutil"
)

const yamlRules = `
articles.PostAdmin:
  fieldsets:
    - name: Identification
      fields: [site_id, title, slug]
    - name: Publication
      classes: [extrapretty]
      fields: [published]
  list_display: [title, published]
  raw_id_fields: [channel_id]
core.HideContainerAdmin:
  search_fields: [title, short_title]
  list_filter: [published]
promos.PromoAdmin:
  exclude: [site_id]
`

const tomlRules = `
["articles.AlbumAdmin"]
list_display = ["title"]
exclude = ["short_url"]

[["articles.AlbumAdmin".fieldsets]]
name = "Identification"
fields = ["title", "slug"]
`

func TestDefaultsLayout(t *testing.T) {
	r, err := NewDefaultRegistry(nil, testutil.TestLoggerSilent())
	if err != nil {
		t.Fatalf("NewDefaultRegistry: %v", err)
	}

	post, ok := r.Get("articles.PostAdmin")
	if !ok {
		t.Fatal("articles.PostAdmin not registered")
	}
	var headings []string
	for _, fs := range post.Fieldsets {
		headings = append(headings, fs.Name)
	}
	if want := []string{Identification, Content, Relationships, Publication}; !reflect.DeepEqual(headings, want) {
		t.Errorf("post fieldsets = %v, want %v", headings, want)
	}
	if len(post.Inlines) != 2 {
		t.Errorf("post inlines = %d, want 2", len(post.Inlines))
	}

	qs, ok := r.Get("boxes.QuerySet")
	if !ok {
		t.Fatal("lookup by model name failed")
	}
	if qs.Fieldsets[1].Name != RulesHeading {
		t.Errorf("queryset second fieldset = %q, want %q", qs.Fieldsets[1].Name, RulesHeading)
	}

	hidden, _ := r.Get(ContainerAdmin)
	if !hidden.Hidden || !hidden.HasFilter("child_class") {
		t.Errorf("hidden container layout = %+v", hidden)
	}
	if len(r.All()) != len(Defaults()) {
		t.Errorf("All() = %d layouts, want %d", len(r.All()), len(Defaults()))
	}
}

func TestParseRulesYAML(t *testing.T) {
	rules, err := ParseRules([]byte(yamlRules), FormatYAML)
	if err != nil {
		t.Fatalf("ParseRules: %v", err)
	}
	post := rules["articles.PostAdmin"]
	if len(post.Fieldsets) != 2 || post.Fieldsets[1].Classes[0] != "extrapretty" {
		t.Errorf("fieldsets = %+v", post.Fieldsets)
	}
	if !reflect.DeepEqual(post.ListDisplay, []string{"title", "published"}) {
		t.Errorf("list_display = %v", post.ListDisplay)
	}
}

func TestParseRulesRejectsUnknownKeys(t *testing.T) {
	if _, err := ParseRules([]byte("articles.PostAdmin:\n  list_displays: [title]\n"), FormatYAML); err == nil {
		t.Error("expected error for unknown YAML key")
	}
	if _, err := ParseRules([]byte("[\"articles.PostAdmin\"]\nlist_displays = [\"title\"]\n"), FormatTOML); err == nil {
		t.Error("expected error for unknown TOML key")
	}
	if _, err := ParseRules(nil, "ini"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestParseRulesEmpty(t *testing.T) {
	rules, err := ParseRules(nil, FormatYAML)
	if err != nil {
		t.Fatalf("ParseRules: %v", err)
	}
	if len(rules) != 0 {
		t.Errorf("rules = %v, want empty", rules)
	}
}

func TestApplyRules(t *testing.T) {
	base := Defaults()[1]
	orig := base.Clone()

	got := ApplyRules(base, Rules{
		Fieldsets:    []Fieldset{{Name: Identification, Fields: []string{"title"}}},
		ListDisplay:  []string{"title"},
		ListFilter:   []string{"published"},
		SearchFields: []string{"slug"},
		Exclude:      []string{"site_id"},
		RawIDFields:  []string{"channel_id"},
	})

	if len(got.Fieldsets) != 1 || got.Fieldsets[0].Fields[0] != "title" {
		t.Errorf("fieldsets = %+v", got.Fieldsets)
	}
	if !reflect.DeepEqual(got.ListFilter, []string{"published"}) || !reflect.DeepEqual(got.SearchFields, []string{"slug"}) {
		t.Errorf("filters = %v, search = %v", got.ListFilter, got.SearchFields)
	}
	if !reflect.DeepEqual(got.Exclude, []string{"site_id"}) || !reflect.DeepEqual(got.RawIDFields, []string{"channel_id"}) {
		t.Errorf("exclude = %v, raw = %v", got.Exclude, got.RawIDFields)
	}
	if !reflect.DeepEqual(got.Inlines, orig.Inlines) {
		t.Error("inlines must not change")
	}
	if !reflect.DeepEqual(base, orig) {
		t.Error("ApplyRules modified its input")
	}

	same := ApplyRules(base, Rules{})
	if !reflect.DeepEqual(same, orig) {
		t.Error("empty rules must leave the layout unchanged")
	}
}

func TestRegistryAppliesRulesOnce(t *testing.T) {
	rules, err := ParseRules([]byte(yamlRules), FormatYAML)
	if err != nil {
		t.Fatalf("ParseRules: %v", err)
	}
	r, err := NewDefaultRegistry(rules, testutil.TestLoggerSilent())
	if err != nil {
		t.Fatalf("NewDefaultRegistry: %v", err)
	}

	post, _ := r.Get("articles.PostAdmin")
	if want := []string{"site_id", "title", "slug", "published"}; !reflect.DeepEqual(post.Fields(), want) {
		t.Errorf("Fields() = %v, want %v", post.Fields(), want)
	}

	hidden, _ := r.Get(ContainerAdmin)
	if hidden.HasFilter("child_class") || !hidden.HasFilter("published") {
		t.Errorf("list_filter = %v", hidden.ListFilter)
	}

	// Mutating a returned layout does not leak into the registry.
	post.ListDisplay[0] = "changed"
	again, _ := r.Get("articles.PostAdmin")
	if again.ListDisplay[0] != "title" {
		t.Errorf("registry layout changed through a copy: %v", again.ListDisplay)
	}

	if got := r.UnusedRules(); !reflect.DeepEqual(got, []string{"promos.PromoAdmin"}) {
		t.Errorf("UnusedRules() = %v", got)
	}
	if err := r.Register(Defaults()[1]); err == nil {
		t.Error("expected duplicate registration error")
	}
}

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "rules.toml")
	if err := os.WriteFile(tomlPath, []byte(tomlRules), 0o600); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadRules(tomlPath)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	album := rules["articles.AlbumAdmin"]
	if len(album.Fieldsets) != 1 || !reflect.DeepEqual(album.Exclude, []string{"short_url"}) {
		t.Errorf("album rules = %+v", album)
	}

	yamlPath := filepath.Join(dir, "rules.yml")
	if err := os.WriteFile(yamlPath, []byte(yamlRules), 0o600); err != nil {
		t.Fatal(err)
	}
	rules, err = LoadRules(yamlPath)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if len(rules) != 3 {
		t.Errorf("rules = %d entries, want 3", len(rules))
	}

	rules, err = LoadRules("")
	if err != nil || len(rules) != 0 {
		t.Errorf("LoadRules(\"\") = %v, %v", rules, err)
	}
	if _, err := LoadRules(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSuggest(t *testing.T) {
	r, err := NewDefaultRegistry(nil, testutil.TestLoggerSilent())
	if err != nil {
		t.Fatal(err)
	}
	got := r.Suggest("PostAdm")
	if len(got) == 0 || got[0] != "articles.PostAdmin" {
		t.Errorf("Suggest(PostAdm) = %v", got)
	}
	if got := r.Suggest("zzzz"); len(got) != 0 {
		t.Errorf("Suggest(zzzz) = %v, want none", got)
	}
}
