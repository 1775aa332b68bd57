// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// BoxOrder is the primary-key direction of a queryset.
type BoxOrder string

const (
	BoxOrderDesc BoxOrder = "-"
	BoxOrderAsc  BoxOrder = "+"
)

// IsValid reports whether o is a declared direction.
func (o BoxOrder) IsValid() bool {
	return o == BoxOrderDesc || o == BoxOrderAsc
}

// DefaultQuerySetLimit is the row limit of a queryset created without one.
const DefaultQuerySetLimit = 7

// BoxMode selects how a container box resolves its members.
type BoxMode string

const (
	// BoxModeCurated boxes hold an explicit ordered member list.
	BoxModeCurated BoxMode = "curated"
	// BoxModeQuerySet boxes replay a queryset at render time.
	BoxModeQuerySet BoxMode = "queryset"
)

// IsValid reports whether m is a declared mode.
func (m BoxMode) IsValid() bool {
	return m == BoxModeCurated || m == BoxModeQuerySet
}

// QuerySet declares a filter over a registered model.
type QuerySet struct {
	ID int64 `json:"id"`
	Publishable
	Name      string   `json:"name"`
	Slug      string   `json:"slug"`
	Model     string   `json:"model"`
	Order     BoxOrder `json:"order"`
	Limit     int      `json:"limit"`
	ChannelID *int64   `json:"channel_id,omitempty"`
}

// ContainerBox aggregates containers, either curated or through a queryset.
type ContainerBox struct {
	ID int64 `json:"id"`
	Publishable
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	ContainerID *int64  `json:"container_id,omitempty"`
	ChannelID   *int64  `json:"channel_id,omitempty"`
	Mode        BoxMode `json:"mode"`
	QuerySetID  *int64  `json:"queryset_id,omitempty"`
	MemberIDs   []int64 `json:"member_ids,omitempty"`
}

// DynamicBox always resolves through a queryset.
type DynamicBox struct {
	ID int64 `json:"id"`
	Publishable
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	ContainerID *int64 `json:"container_id,omitempty"`
	ChannelID   *int64 `json:"channel_id,omitempty"`
	QuerySetID  int64  `json:"queryset_id"`
}
