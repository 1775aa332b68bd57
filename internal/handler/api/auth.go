// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/olegiv/opps-go/internal/auth"
	"github.com/olegiv/opps-go/internal/content"
	"github.com/olegiv/opps-go/internal/middleware"
	"github.com/olegiv/opps-go/internal/model"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token issued at login.
type LoginResponse struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      model.User `json:"user"`
}

// Login handles POST /api/v1/auth/login. It answers with a bearer token and
// also starts a session when sessions are enabled.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		WriteValidationError(w, map[string]string{"email": "Email and password are required"})
		return
	}

	ctx := r.Context()
	ip := middleware.ClientIP(r)
	lp := h.deps.Login

	if lp != nil {
		if locked, remaining := lp.IsAccountLocked(email); locked {
			h.logAuth(r, model.EventLevelWarning, "Login attempt on locked account", nil, map[string]any{"email": email})
			WriteError(w, http.StatusTooManyRequests, "account_locked",
				"Account locked, try again "+humanize.RelTime(time.Now(), time.Now().Add(remaining), "ago", "from now"), nil)
			return
		}
	}

	user, err := h.queries.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		h.logger.Error("database error during login", "error", err)
		WriteInternalError(w, "Login failed")
		return
	}

	valid := false
	if err == nil {
		valid, err = auth.CheckPassword(req.Password, user.PasswordHash)
		if err != nil {
			h.logger.Error("password check error", "user_id", user.ID, "error", err)
			valid = false
		}
	}

	if !valid {
		var userID *int64
		if user.ID != 0 {
			userID = &user.ID
		}
		h.logAuth(r, model.EventLevelWarning, "Login failed", userID, map[string]any{"email": email})
		// Unknown emails count too, so the response does not reveal which accounts exist.
		if lp != nil {
			if locked, d := lp.RecordFailedAttempt(email); locked {
				WriteError(w, http.StatusTooManyRequests, "account_locked",
					"Too many failed attempts, account locked for "+d.String(), nil)
				return
			}
		}
		WriteUnauthorized(w, "Invalid email or password")
		return
	}

	if lp != nil {
		lp.RecordSuccessfulLogin(email)
	}

	now := time.Now()
	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(req.Password); err == nil {
			if err := h.queries.UpdateUserPassword(ctx, user.ID, newHash, now); err != nil {
				h.logger.Error("failed to re-hash password", "user_id", user.ID, "error", err)
			}
		}
	}
	if err := h.queries.UpdateUserLastLogin(ctx, user.ID, now); err != nil {
		h.logger.Error("failed to update last login time", "user_id", user.ID, "error", err)
	}

	token, expires, err := h.deps.Tokens.Issue(user.ID)
	if err != nil {
		h.logger.Error("failed to issue token", "user_id", user.ID, "error", err)
		WriteInternalError(w, "Login failed")
		return
	}

	if sm := h.deps.Sessions; sm != nil {
		if err := sm.RenewToken(ctx); err != nil {
			h.logger.Error("session renewal error", "error", err)
			WriteInternalError(w, "Login failed")
			return
		}
		sm.Put(ctx, middleware.SessionKeyUserID, user.ID)
	}

	h.logger.Info("user logged in", "user_id", user.ID, "ip", ip)
	h.logAuth(r, model.EventLevelInfo, "User logged in", &user.ID, map[string]any{"email": user.Email})

	WriteSuccess(w, LoginResponse{Token: token, ExpiresAt: expires, User: content.UserFromRow(user)}, nil)
}

// Logout handles POST /api/v1/auth/logout. Bearer tokens stay valid until
// they expire; only the session is destroyed.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if sm := h.deps.Sessions; sm != nil {
		if userID := sm.GetInt64(r.Context(), middleware.SessionKeyUserID); userID > 0 {
			h.logAuth(r, model.EventLevelInfo, "User logged out", &userID, nil)
		}
		if err := sm.Destroy(r.Context()); err != nil {
			h.logger.Error("session destroy error", "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/v1/auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Not authenticated")
		return
	}
	WriteSuccess(w, content.UserFromRow(*user), nil)
}

func (h *Handler) logAuth(r *http.Request, level, message string, userID *int64, metadata map[string]any) {
	if h.deps.Events == nil {
		return
	}
	if err := h.deps.Events.LogAuthEvent(r.Context(), level, message, userID, middleware.ClientIP(r), r.URL.Path, metadata); err != nil {
		h.logger.Warn("failed to log auth event", "error", err)
	}
}
