// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/opps-go/internal/testutil"
)

func TestNewCookie(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	tests := []struct {
		name       string
		secure     bool
		wantName   string
		wantSecure bool
	}{
		{"development", false, CookieName, false},
		{"production", true, SecureCookieName, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := New(db, Options{Secure: tt.secure})

			assert.Equal(t, tt.wantName, sm.Cookie.Name)
			assert.Equal(t, tt.wantSecure, sm.Cookie.Secure)
			assert.Equal(t, "/", sm.Cookie.Path)
			assert.True(t, sm.Cookie.HttpOnly)
			assert.Equal(t, http.SameSiteLaxMode, sm.Cookie.SameSite)
			assert.NotNil(t, sm.Store)
		})
	}
}

func TestNewLifetimes(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	sm := New(db, Options{})
	assert.Equal(t, DefaultLifetime, sm.Lifetime)
	assert.Equal(t, DefaultIdleTimeout, sm.IdleTimeout)

	sm = New(db, Options{Lifetime: time.Hour, IdleTimeout: 3 * time.Hour})
	assert.Equal(t, time.Hour, sm.Lifetime)
	assert.Equal(t, time.Hour, sm.IdleTimeout, "idle timeout is capped by the lifetime")
}

func TestSessionPersistsAcrossRequests(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	sm := New(db, Options{})

	h := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			sm.Put(r.Context(), "user_id", int64(7))
			return
		}
		_, _ = w.Write([]byte{byte('0' + sm.GetInt64(r.Context(), "user_id"))})
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "7", rec.Body.String())

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&count))
	assert.Equal(t, 1, count)
}
