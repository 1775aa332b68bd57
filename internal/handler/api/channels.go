// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/opps-go/internal/service"
)

// ChannelRequest is the body of channel create and update requests.
type ChannelRequest struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	ParentID *int64 `json:"parent_id"`
}

func (req ChannelRequest) input() service.ChannelInput {
	return service.ChannelInput{Name: req.Name, Slug: req.Slug, ParentID: req.ParentID}
}

// ListChannels handles GET /api/v1/channels.
func (h *Handler) ListChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := h.deps.Channels.List(r.Context(), h.deps.SiteID)
	if err != nil {
		h.writeServiceError(w, r, "channels", err)
		return
	}
	WriteSuccess(w, channels, &Meta{Total: int64(len(channels))})
}

// CreateChannel handles POST /api/v1/channels.
func (h *Handler) CreateChannel(w http.ResponseWriter, r *http.Request) {
	var req ChannelRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ch, err := h.deps.Channels.Create(r.Context(), h.deps.SiteID, req.input())
	if err != nil {
		h.writeServiceError(w, r, "channel", err)
		return
	}
	WriteCreated(w, ch)
}

// GetChannel handles GET /api/v1/channels/{id}.
func (h *Handler) GetChannel(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "channel")
	if !ok {
		return
	}
	ch, err := h.deps.Channels.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, "channel", err)
		return
	}
	WriteSuccess(w, ch, nil)
}

// UpdateChannel handles PUT /api/v1/channels/{id}. Changing the slug or
// parent rewrites the long slugs of the whole subtree.
func (h *Handler) UpdateChannel(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "channel")
	if !ok {
		return
	}
	var req ChannelRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ch, err := h.deps.Channels.Update(r.Context(), id, req.input())
	if err != nil {
		h.writeServiceError(w, r, "channel", err)
		return
	}
	WriteSuccess(w, ch, nil)
}
