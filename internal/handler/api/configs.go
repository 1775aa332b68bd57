// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/opps-go/internal/middleware"
	"github.com/olegiv/opps-go/internal/model"
	"github.com/olegiv/opps-go/internal/service"
	"github.com/olegiv/opps-go/internal/store"
)

// ConfigRequest is the body of config create and update requests.
type ConfigRequest struct {
	KeyGroup      *string            `json:"key_group"`
	Key           string             `json:"key"`
	Format        model.ConfigFormat `json:"format"`
	Value         string             `json:"value"`
	Description   string             `json:"description"`
	Published     bool               `json:"published"`
	DateAvailable *time.Time         `json:"date_available"`
	ContainerID   *int64             `json:"container_id"`
	ChannelID     *int64             `json:"channel_id"`
}

func (req ConfigRequest) input() service.ConfigInput {
	return service.ConfigInput{
		KeyGroup:      req.KeyGroup,
		Key:           req.Key,
		Format:        req.Format,
		Value:         req.Value,
		Description:   req.Description,
		Published:     req.Published,
		DateAvailable: dateOrZero(req.DateAvailable),
		ContainerID:   req.ContainerID,
		ChannelID:     req.ChannelID,
	}
}

// ConfigValueResponse is the answer of a single key lookup. A missing key
// is not an error: Found is false and Value is null.
type ConfigValueResponse struct {
	Key   string `json:"key"`
	Found bool   `json:"found"`
	Value any    `json:"value"`
}

// ConfigGroupResponse maps the keys of a group to their decoded values.
type ConfigGroupResponse struct {
	KeyGroup string         `json:"key_group"`
	Values   map[string]any `json:"values"`
}

// ListConfigs handles GET /api/v1/configs.
func (h *Handler) ListConfigs(w http.ResponseWriter, r *http.Request) {
	p := parsePage(r)
	items, err := h.deps.Configs.List(r.Context(), p.limit(), p.offset())
	if err != nil {
		h.writeServiceError(w, r, "configs", err)
		return
	}
	total, err := h.deps.Configs.Count(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "configs", err)
		return
	}
	WriteSuccess(w, items, p.meta(total))
}

// CreateConfig handles POST /api/v1/configs.
func (h *Handler) CreateConfig(w http.ResponseWriter, r *http.Request) {
	var req ConfigRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	entry, err := h.deps.Configs.Create(r.Context(), middleware.GetUserID(r), h.deps.SiteID, req.input())
	if err != nil {
		h.writeServiceError(w, r, "config", err)
		return
	}
	WriteCreated(w, entry)
}

// GetConfig handles GET /api/v1/configs/{id}.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "config")
	if !ok {
		return
	}
	entry, err := h.deps.Configs.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, "config", err)
		return
	}
	WriteSuccess(w, entry, nil)
}

// UpdateConfig handles PUT /api/v1/configs/{id}.
func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "config")
	if !ok {
		return
	}
	var req ConfigRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	entry, err := h.deps.Configs.Update(r.Context(), id, req.input())
	if err != nil {
		h.writeServiceError(w, r, "config", err)
		return
	}
	WriteSuccess(w, entry, nil)
}

// ConfigValue handles GET /api/v1/configs/value/{key}. The optional query
// parameters site_id, channel_id, container_id, format and description
// narrow the lookup.
func (h *Handler) ConfigValue(w http.ResponseWriter, r *http.Request) {
	scope, ok := configScope(w, r)
	if !ok {
		return
	}
	key := chi.URLParam(r, "key")
	value, found := h.deps.Configs.GetValue(r.Context(), key, scope)
	WriteSuccess(w, ConfigValueResponse{Key: key, Found: found, Value: value}, nil)
}

// ConfigGroup handles GET /api/v1/configs/group/{keyGroup} with the same
// scope parameters as ConfigValue.
func (h *Handler) ConfigGroup(w http.ResponseWriter, r *http.Request) {
	scope, ok := configScope(w, r)
	if !ok {
		return
	}
	group := chi.URLParam(r, "keyGroup")
	values := h.deps.Configs.GetValues(r.Context(), group, scope)
	WriteSuccess(w, ConfigGroupResponse{KeyGroup: group, Values: values}, nil)
}

func configScope(w http.ResponseWriter, r *http.Request) (store.ConfigScope, bool) {
	var scope store.ConfigScope
	errs := map[string]string{}
	for name, dst := range map[string]**int64{
		"site_id":      &scope.SiteID,
		"channel_id":   &scope.ChannelID,
		"container_id": &scope.ContainerID,
	} {
		v, err := optionalInt64(r, name)
		if err != nil {
			errs[name] = err.Error()
			continue
		}
		*dst = v
	}
	if len(errs) > 0 {
		WriteBadRequest(w, "Invalid lookup scope", errs)
		return scope, false
	}

	q := r.URL.Query()
	if q.Has("format") {
		f := q.Get("format")
		scope.Format = &f
	}
	if q.Has("description") {
		d := q.Get("description")
		scope.Description = &d
	}
	return scope, true
}
