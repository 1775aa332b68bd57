// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the editor sessions started by the login
// endpoint.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// Defaults applied by New.
const (
	DefaultLifetime    = 24 * time.Hour
	DefaultIdleTimeout = 2 * time.Hour
)

// Cookie names. Secure sessions use the __Host- prefix, which browsers only
// accept on secure cookies with Path=/ and no Domain.
const (
	CookieName       = "opps_session"
	SecureCookieName = "__Host-opps_session"
)

// Options configure a session manager. Zero durations select the defaults.
type Options struct {
	// Secure marks the cookie Secure and switches to the __Host- name.
	Secure      bool
	Lifetime    time.Duration
	IdleTimeout time.Duration
}

// New creates a session manager whose sessions live in the sessions table
// of db.
func New(db *sql.DB, opts Options) *scs.SessionManager {
	if opts.Lifetime <= 0 {
		opts.Lifetime = DefaultLifetime
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}

	sm := scs.New()
	sm.Store = sqlite3store.New(db)
	sm.Lifetime = opts.Lifetime
	sm.IdleTimeout = min(opts.IdleTimeout, opts.Lifetime)

	sm.Cookie.Name = CookieName
	sm.Cookie.Path = "/"
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	if opts.Secure {
		sm.Cookie.Name = SecureCookieName
		sm.Cookie.Secure = true
	}
	return sm
}
