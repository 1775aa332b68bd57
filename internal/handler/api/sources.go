// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/olegiv/opps-go/internal/middleware"
	"github.com/olegiv/opps-go/internal/service"
)

// SourceRequest is the body of source create and update requests.
type SourceRequest struct {
	Name          string     `json:"name"`
	Slug          string     `json:"slug"`
	Published     bool       `json:"published"`
	DateAvailable *time.Time `json:"date_available"`
	URL           string     `json:"url"`
	Feed          string     `json:"feed"`
}

func (req SourceRequest) input() service.SourceInput {
	return service.SourceInput{
		Name:          req.Name,
		Slug:          req.Slug,
		Published:     req.Published,
		DateAvailable: dateOrZero(req.DateAvailable),
		URL:           req.URL,
		Feed:          req.Feed,
	}
}

// ListSources handles GET /api/v1/sources.
func (h *Handler) ListSources(w http.ResponseWriter, r *http.Request) {
	p := parsePage(r)
	sources, total, err := h.deps.Sources.List(r.Context(), p.limit(), p.offset())
	if err != nil {
		h.writeServiceError(w, r, "sources", err)
		return
	}
	WriteSuccess(w, sources, p.meta(total))
}

// CreateSource handles POST /api/v1/sources.
func (h *Handler) CreateSource(w http.ResponseWriter, r *http.Request) {
	var req SourceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	src, err := h.deps.Sources.Create(r.Context(), middleware.GetUserID(r), h.deps.SiteID, req.input())
	if err != nil {
		h.writeServiceError(w, r, "source", err)
		return
	}
	WriteCreated(w, src)
}

// GetSource handles GET /api/v1/sources/{id}.
func (h *Handler) GetSource(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "source")
	if !ok {
		return
	}
	src, err := h.deps.Sources.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, "source", err)
		return
	}
	WriteSuccess(w, src, nil)
}

// UpdateSource handles PUT /api/v1/sources/{id}.
func (h *Handler) UpdateSource(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "source")
	if !ok {
		return
	}
	var req SourceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	src, err := h.deps.Sources.Update(r.Context(), id, req.input())
	if err != nil {
		h.writeServiceError(w, r, "source", err)
		return
	}
	WriteSuccess(w, src, nil)
}
