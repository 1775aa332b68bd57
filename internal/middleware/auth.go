// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/opps-go/internal/auth"
	"github.com/olegiv/opps-go/internal/content"
	"github.com/olegiv/opps-go/internal/model"
	"github.com/olegiv/opps-go/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for request data.
const (
	ContextKeyUser        ContextKey = "user"
	ContextKeyRequestPath ContextKey = "request_path"
)

// SessionKeyUserID is the session key holding the signed-in user id.
const SessionKeyUserID = "user_id"

// Authenticator resolves the current user from a Bearer token or the
// session cookie.
type Authenticator struct {
	sessions *scs.SessionManager
	tokens   *auth.TokenIssuer
	queries  *store.Queries
}

// NewAuthenticator creates an Authenticator. sessions may be nil for
// token-only setups.
func NewAuthenticator(db *sql.DB, sessions *scs.SessionManager, tokens *auth.TokenIssuer) *Authenticator {
	return &Authenticator{sessions: sessions, tokens: tokens, queries: store.New(db)}
}

// userID returns the id carried by the request, 0 when anonymous. A
// malformed or expired bearer token is an error; it never falls back to the
// session.
func (a *Authenticator) userID(r *http.Request) (int64, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
			return 0, auth.ErrInvalidToken
		}
		return a.tokens.Parse(strings.TrimSpace(token))
	}
	if a.sessions != nil {
		return a.sessions.GetInt64(r.Context(), SessionKeyUserID), nil
	}
	return 0, nil
}

// Require creates middleware that rejects anonymous requests with 401 and
// stores the user in the request context.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := a.userID(r)
		if err != nil {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token", nil)
			return
		}
		if id == 0 {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
			return
		}

		user, err := a.queries.GetUserByID(r.Context(), id)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				slog.Error("failed to load user", "user_id", id, "error", err)
				WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to load user", nil)
				return
			}
			if a.sessions != nil {
				_ = a.sessions.Destroy(r.Context())
			}
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUser retrieves the current user from the request context.
// Returns nil if no user is in context.
func GetUser(r *http.Request) *store.User {
	user, ok := r.Context().Value(ContextKeyUser).(store.User)
	if !ok {
		return nil
	}
	return &user
}

// GetUserID returns the current user's ID from context, or 0 if not found.
func GetUserID(r *http.Request) int64 {
	if user := GetUser(r); user != nil {
		return user.ID
	}
	return 0
}

// GetUserIDPtr returns a pointer to the current user's ID from context, or nil if not found.
// Useful for optional user ID parameters in event logging.
func GetUserIDPtr(r *http.Request) *int64 {
	if user := GetUser(r); user != nil {
		id := user.ID
		return &id
	}
	return nil
}

// WithUser returns ctx carrying user. Handlers under test use it in place of
// the authentication middleware.
func WithUser(ctx context.Context, user store.User) context.Context {
	return context.WithValue(ctx, ContextKeyUser, user)
}

// RequireAdmin rejects users without the admin role with 403. It must run
// after Require.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		row := GetUser(r)
		if row == nil {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
			return
		}
		user := content.UserFromRow(*row)
		if !user.IsAdmin() {
			slog.Warn("access denied",
				"status", http.StatusForbidden,
				"method", r.Method,
				"path", r.URL.Path,
				"user_id", user.ID,
				"user_role", user.Role,
				"required_role", model.RoleAdmin,
				"remote_addr", r.RemoteAddr,
			)
			WriteAPIError(w, http.StatusForbidden, "forbidden", "Insufficient permissions", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestPath creates middleware that stores the request path in the context.
// This is used by the logging handler to include the URL in error logs.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyRequestPath, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestPath retrieves the request path from the context.
func GetRequestPath(ctx context.Context) string {
	path, ok := ctx.Value(ContextKeyRequestPath).(string)
	if !ok {
		return ""
	}
	return path
}
