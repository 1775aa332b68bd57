// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package admin describes how each editable model is laid out in the
// editorial back office: fieldsets, list columns, filters, search fields and
// inline editors. Layouts can be overridden from a rules file.
package admin

import "slices"

// Fieldset groups form fields under a heading.
type Fieldset struct {
	Name    string   `json:"name" yaml:"name" toml:"name"`
	Classes []string `json:"classes,omitempty" yaml:"classes,omitempty" toml:"classes,omitempty"`
	Fields  []string `json:"fields" yaml:"fields" toml:"fields"`
}

// Inline is an ordered child collection edited with its parent.
type Inline struct {
	Model       string   `json:"model"`
	FKName      string   `json:"fk_name"`
	Fields      []string `json:"fields"`
	RawIDFields []string `json:"raw_id_fields,omitempty"`
	Extra       int      `json:"extra"`
}

// ModelAdmin is the back-office layout of one model.
type ModelAdmin struct {
	// Name is the rules key, "app.AdminClassName".
	Name               string              `json:"name"`
	Model              string              `json:"model"`
	Fieldsets          []Fieldset          `json:"fieldsets,omitempty"`
	ListDisplay        []string            `json:"list_display"`
	ListFilter         []string            `json:"list_filter,omitempty"`
	SearchFields       []string            `json:"search_fields,omitempty"`
	Exclude            []string            `json:"exclude,omitempty"`
	RawIDFields        []string            `json:"raw_id_fields,omitempty"`
	ReadonlyFields     []string            `json:"readonly_fields,omitempty"`
	PrepopulatedFields map[string][]string `json:"prepopulated_fields,omitempty"`
	Inlines            []Inline            `json:"inlines,omitempty"`
	// Hidden layouts are listed but cannot add rows.
	Hidden bool `json:"hidden,omitempty"`
}

// Clone returns a deep copy of a.
func (a ModelAdmin) Clone() ModelAdmin {
	out := a
	out.Fieldsets = cloneFieldsets(a.Fieldsets)
	out.ListDisplay = slices.Clone(a.ListDisplay)
	out.ListFilter = slices.Clone(a.ListFilter)
	out.SearchFields = slices.Clone(a.SearchFields)
	out.Exclude = slices.Clone(a.Exclude)
	out.RawIDFields = slices.Clone(a.RawIDFields)
	out.ReadonlyFields = slices.Clone(a.ReadonlyFields)
	if a.PrepopulatedFields != nil {
		out.PrepopulatedFields = make(map[string][]string, len(a.PrepopulatedFields))
		for k, v := range a.PrepopulatedFields {
			out.PrepopulatedFields[k] = slices.Clone(v)
		}
	}
	out.Inlines = slices.Clone(a.Inlines)
	return out
}

func cloneFieldsets(in []Fieldset) []Fieldset {
	if in == nil {
		return nil
	}
	out := make([]Fieldset, len(in))
	for i, fs := range in {
		out[i] = Fieldset{Name: fs.Name, Classes: slices.Clone(fs.Classes), Fields: slices.Clone(fs.Fields)}
	}
	return out
}

// HasFilter reports whether name is one of the list filters.
func (a ModelAdmin) HasFilter(name string) bool {
	return slices.Contains(a.ListFilter, name)
}

// Fields returns every field named in the fieldsets, in order, minus the
// excluded ones.
func (a ModelAdmin) Fields() []string {
	var out []string
	for _, fs := range a.Fieldsets {
		for _, f := range fs.Fields {
			if !slices.Contains(a.Exclude, f) {
				out = append(out, f)
			}
		}
	}
	return out
}
