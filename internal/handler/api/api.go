// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON REST API of the CMS.
package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/opps-go/internal/admin"
	"github.com/olegiv/opps-go/internal/auth"
	"github.com/olegiv/opps-go/internal/boxes"
	"github.com/olegiv/opps-go/internal/content"
	"github.com/olegiv/opps-go/internal/middleware"
	"github.com/olegiv/opps-go/internal/scheduler"
	"github.com/olegiv/opps-go/internal/service"
	"github.com/olegiv/opps-go/internal/shortener"
	"github.com/olegiv/opps-go/internal/store"
)

// Pagination defaults.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// maxBodySize caps JSON request bodies.
const maxBodySize = 1 << 20

// JobRunner exposes the scheduled jobs.
type JobRunner interface {
	Jobs() []scheduler.JobInfo
	Trigger(ctx context.Context, name string) error
}

// Deps are the collaborators of the API handlers. Scheduler, Sessions and
// Login may be nil.
type Deps struct {
	Containers *content.ContainerService
	Channels   *service.ChannelService
	Configs    *service.ConfigService
	Images     *service.ImageService
	Sources    *service.SourceService
	Redirects  *service.RedirectService
	Events     *service.EventService
	Boxes      *boxes.Service
	Admin      *admin.Registry
	Scheduler  JobRunner

	Auth     *middleware.Authenticator
	Tokens   *auth.TokenIssuer
	Sessions *scs.SessionManager
	Login    *middleware.LoginProtection

	// SiteID is the site assigned to rows created through the API.
	SiteID int64
	// MaxUploadSize caps image uploads in bytes.
	MaxUploadSize int64
	// UploadsDir is checked by the health endpoint.
	UploadsDir string
	Version    string
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db        *sql.DB
	queries   *store.Queries
	deps      Deps
	logger    *slog.Logger
	startTime time.Time
}

// NewHandler creates a new API handler.
func NewHandler(db *sql.DB, deps Deps, logger *slog.Logger) *Handler {
	if deps.MaxUploadSize <= 0 {
		deps.MaxUploadSize = 20 << 20
	}
	return &Handler{
		db:        db,
		queries:   store.New(db),
		deps:      deps,
		logger:    logger,
		startTime: time.Now(),
	}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains pagination metadata.
type Meta struct {
	Total   int64 `json:"total"`
	Page    int   `json:"page,omitempty"`
	PerPage int   `json:"per_page,omitempty"`
	Pages   int   `json:"pages,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	middleware.WriteAPIError(w, statusCode, code, message, details)
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response with field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", fieldErrors)
}

// writeServiceError maps an error returned by a service to a response.
// entity names the resource in the 404 message.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, entity string, err error) {
	if v, ok := content.AsValidationError(err); ok {
		WriteValidationError(w, v.Fields)
		return
	}
	switch {
	case errors.Is(err, content.ErrNotFound),
		errors.Is(err, service.ErrNotFound),
		errors.Is(err, boxes.ErrNotFound),
		errors.Is(err, sql.ErrNoRows):
		WriteNotFound(w, capitalizeFirst(entity)+" not found")
	case errors.Is(err, content.ErrKindMismatch):
		WriteBadRequest(w, err.Error(), nil)
	case errors.Is(err, shortener.ErrShorten):
		h.logger.Error("short url service failed", "path", r.URL.Path, "error", err)
		WriteError(w, http.StatusBadGateway, "shortener_unavailable", "The URL shortener is unavailable", nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		WriteError(w, http.StatusServiceUnavailable, "timeout", "Request timeout", nil)
	default:
		h.logger.Error("api request failed", "method", r.Method, "path", r.URL.Path, "entity", entity, "error", err)
		WriteInternalError(w, "Failed to process "+entity)
	}
}

// decodeJSON reads the request body into dst. Unknown fields are rejected.
// On failure the 400 response has already been written.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		WriteBadRequest(w, "Invalid JSON body: "+err.Error(), nil)
		return false
	}
	return true
}

// parseIDParam returns the {id} URL parameter.
func parseIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", chi.URLParam(r, "id"))
	}
	return id, nil
}

// requireID parses {id} or writes a 400 naming entity.
func requireID(w http.ResponseWriter, r *http.Request, entity string) (int64, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid "+entity+" ID", nil)
		return 0, false
	}
	return id, true
}

// page is the pagination window of a list request.
type page struct {
	Page    int
	PerPage int
}

func (p page) limit() int64  { return int64(p.PerPage) }
func (p page) offset() int64 { return int64((p.Page - 1) * p.PerPage) }

func (p page) meta(total int64) *Meta {
	pages := int(total) / p.PerPage
	if int(total)%p.PerPage != 0 {
		pages++
	}
	return &Meta{Total: total, Page: p.Page, PerPage: p.PerPage, Pages: pages}
}

// parsePage reads page and per_page. Out of range values are clamped.
func parsePage(r *http.Request) page {
	q := r.URL.Query()
	p := page{Page: 1, PerPage: DefaultPerPage}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(q.Get("per_page")); err == nil && n > 0 {
		p.PerPage = min(n, MaxPerPage)
	}
	return p
}

// optionalInt64 parses an optional positive integer query parameter.
func optionalInt64(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("invalid %s %q", name, raw)
	}
	return &n, nil
}

// capitalizeFirst returns s with the first letter capitalized.
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// dateOrZero dereferences an optional availability date.
func dateOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
