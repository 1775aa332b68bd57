// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/opps-go/internal/boxes"
	"github.com/olegiv/opps-go/internal/model"
)

// DefaultChannelLimit is the number of posts and albums on a channel page.
const DefaultChannelLimit = 10

// ChannelPage is the context of a channel page: its newest live posts and
// albums plus the boxes attached to the channel.
type ChannelPage struct {
	Channel model.Channel       `json:"channel"`
	Posts   []ContainerResponse `json:"posts"`
	Albums  []ContainerResponse `json:"albums"`
	Boxes   []boxes.Resolved    `json:"boxes"`
}

// PublicContainerBox handles GET /api/v1/public/boxes/{slug}.
func (h *Handler) PublicContainerBox(w http.ResponseWriter, r *http.Request) {
	box, err := h.deps.Boxes.ResolveContainerBox(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeServiceError(w, r, "box", err)
		return
	}
	WriteSuccess(w, box, nil)
}

// PublicDynamicBox handles GET /api/v1/public/dynamic-boxes/{slug}.
func (h *Handler) PublicDynamicBox(w http.ResponseWriter, r *http.Request) {
	box, err := h.deps.Boxes.ResolveDynamicBox(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeServiceError(w, r, "dynamic box", err)
		return
	}
	WriteSuccess(w, box, nil)
}

// PublicChannel handles GET /api/v1/public/channels/{long_slug...}. The
// optional container query parameter narrows the boxes to those attached to
// that container slug, and limit caps the posts and albums.
func (h *Handler) PublicChannel(w http.ResponseWriter, r *http.Request) {
	longSlug := strings.Trim(chi.URLParam(r, "*"), "/")
	if longSlug == "" {
		WriteNotFound(w, "Channel not found")
		return
	}

	limit := int64(DefaultChannelLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			WriteBadRequest(w, "Invalid limit", nil)
			return
		}
		limit = min(n, MaxPerPage)
	}

	ctx := r.Context()
	ch, err := h.deps.Channels.GetByLongSlug(ctx, h.deps.SiteID, longSlug)
	if err != nil {
		h.writeServiceError(w, r, "channel", err)
		return
	}

	posts, err := h.deps.Containers.ChannelContainers(ctx, h.deps.SiteID, longSlug, model.KindPost, limit)
	if err != nil {
		h.writeServiceError(w, r, "channel", err)
		return
	}
	albums, err := h.deps.Containers.ChannelContainers(ctx, h.deps.SiteID, longSlug, model.KindAlbum, limit)
	if err != nil {
		h.writeServiceError(w, r, "channel", err)
		return
	}
	resolved, err := h.deps.Boxes.ChannelBoxes(ctx, h.deps.SiteID, longSlug, r.URL.Query().Get("container"))
	if err != nil {
		h.writeServiceError(w, r, "channel", err)
		return
	}

	WriteSuccess(w, ChannelPage{
		Channel: ch,
		Posts:   containerResponses(posts),
		Albums:  containerResponses(albums),
		Boxes:   resolved,
	}, nil)
}
