// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Publishable carries ownership and the publishing window shared by every
// editorial row.
type Publishable struct {
	UserID        int64     `json:"user_id"`
	SiteID        int64     `json:"site_id"`
	DateAvailable time.Time `json:"date_available"`
	Published     bool      `json:"published"`
	DateInsert    time.Time `json:"date_insert"`
	DateUpdate    time.Time `json:"date_update"`
}

// IsLive reports whether the row is published and available at now.
// Queries apply the same gate as "published = 1 AND date_available <= now".
func (p Publishable) IsLive(now time.Time) bool {
	return p.Published && !p.DateAvailable.After(now)
}
