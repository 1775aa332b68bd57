// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"fmt"
)

// ConfigFormat declares how a configuration value is decoded.
type ConfigFormat string

const (
	ConfigFormatText ConfigFormat = "text"
	ConfigFormatJSON ConfigFormat = "json"
	ConfigFormatYAML ConfigFormat = "yaml"
)

// YAMLPlaceholder is returned for YAML values, which are not decoded.
const YAMLPlaceholder = "TODO"

// IsValid reports whether f is a declared format.
func (f ConfigFormat) IsValid() bool {
	switch f {
	case ConfigFormatText, ConfigFormatJSON, ConfigFormatYAML:
		return true
	}
	return false
}

// DecodeConfigValue decodes value according to format.
func DecodeConfigValue(value string, format ConfigFormat) (any, error) {
	switch format {
	case ConfigFormatText:
		return value, nil
	case ConfigFormatJSON:
		var v any
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			return nil, fmt.Errorf("decoding json config value: %w", err)
		}
		return v, nil
	case ConfigFormatYAML:
		return YAMLPlaceholder, nil
	default:
		return nil, fmt.Errorf("unknown config format %q", format)
	}
}

// ConfigEntry is a typed key/value configuration row scoped by site,
// channel and container.
type ConfigEntry struct {
	ID int64 `json:"id"`
	Publishable
	KeyGroup    *string      `json:"key_group"`
	Key         string       `json:"key"`
	Format      ConfigFormat `json:"format"`
	Value       string       `json:"value"`
	Description string       `json:"description"`
	ContainerID *int64       `json:"container_id"`
	ChannelID   *int64       `json:"channel_id"`
}
