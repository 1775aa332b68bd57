// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package admin

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Rules overrides parts of a layout. Empty entries leave the layout alone.
type Rules struct {
	Fieldsets    []Fieldset `yaml:"fieldsets" toml:"fieldsets"`
	ListDisplay  []string   `yaml:"list_display" toml:"list_display"`
	ListFilter   []string   `yaml:"list_filter" toml:"list_filter"`
	SearchFields []string   `yaml:"search_fields" toml:"search_fields"`
	Exclude      []string   `yaml:"exclude" toml:"exclude"`
	RawIDFields  []string   `yaml:"raw_id_fields" toml:"raw_id_fields"`
}

// RuleSet maps "app.AdminClassName" keys to their overrides.
type RuleSet map[string]Rules

// Format of a rules file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// LoadRules reads a rules file. The format follows the extension: .toml is
// TOML, anything else YAML. An empty path yields no rules.
func LoadRules(path string) (RuleSet, error) {
	if path == "" {
		return RuleSet{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading admin rules: %w", err)
	}
	format := FormatYAML
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		format = FormatTOML
	}
	rules, err := ParseRules(data, format)
	if err != nil {
		return nil, fmt.Errorf("parsing admin rules %s: %w", path, err)
	}
	return rules, nil
}

// ParseRules decodes a rule set. Unknown keys inside a rule are errors.
func ParseRules(data []byte, format Format) (RuleSet, error) {
	rules := RuleSet{}
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&rules); err != nil {
			return nil, err
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&rules); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown rules format %q", format)
	}
	return rules, nil
}

// ApplyRules returns a copy of a with every non-empty entry of r replacing
// the matching attribute.
func ApplyRules(a ModelAdmin, r Rules) ModelAdmin {
	out := a.Clone()
	if len(r.Fieldsets) > 0 {
		out.Fieldsets = cloneFieldsets(r.Fieldsets)
	}
	if len(r.ListDisplay) > 0 {
		out.ListDisplay = slices.Clone(r.ListDisplay)
	}
	if len(r.ListFilter) > 0 {
		out.ListFilter = slices.Clone(r.ListFilter)
	}
	if len(r.SearchFields) > 0 {
		out.SearchFields = slices.Clone(r.SearchFields)
	}
	if len(r.Exclude) > 0 {
		out.Exclude = slices.Clone(r.Exclude)
	}
	if len(r.RawIDFields) > 0 {
		out.RawIDFields = slices.Clone(r.RawIDFields)
	}
	return out
}
