// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/olegiv/opps-go/internal/boxes"
	"github.com/olegiv/opps-go/internal/middleware"
	"github.com/olegiv/opps-go/internal/model"
)

// QuerySetRequest is the body of queryset create and update requests.
type QuerySetRequest struct {
	Name          string         `json:"name"`
	Slug          string         `json:"slug"`
	Published     bool           `json:"published"`
	DateAvailable *time.Time     `json:"date_available"`
	Model         string         `json:"model"`
	Order         model.BoxOrder `json:"order"`
	Limit         *int           `json:"limit"`
	ChannelID     *int64         `json:"channel_id"`
}

func (req QuerySetRequest) input() boxes.QuerySetInput {
	return boxes.QuerySetInput{
		Name:          req.Name,
		Slug:          req.Slug,
		Published:     req.Published,
		DateAvailable: dateOrZero(req.DateAvailable),
		Model:         req.Model,
		Order:         req.Order,
		Limit:         req.Limit,
		ChannelID:     req.ChannelID,
	}
}

// ContainerBoxRequest is the body of container box create and update
// requests. Setting queryset_id selects queryset mode; omitting member_ids
// on update keeps the stored members.
type ContainerBoxRequest struct {
	Name          string     `json:"name"`
	Slug          string     `json:"slug"`
	Published     bool       `json:"published"`
	DateAvailable *time.Time `json:"date_available"`
	ContainerID   *int64     `json:"container_id"`
	ChannelID     *int64     `json:"channel_id"`
	QuerySetID    *int64     `json:"queryset_id"`
	MemberIDs     []int64    `json:"member_ids"`
}

func (req ContainerBoxRequest) input() boxes.ContainerBoxInput {
	return boxes.ContainerBoxInput{
		Name:          req.Name,
		Slug:          req.Slug,
		Published:     req.Published,
		DateAvailable: dateOrZero(req.DateAvailable),
		ContainerID:   req.ContainerID,
		ChannelID:     req.ChannelID,
		QuerySetID:    req.QuerySetID,
		MemberIDs:     req.MemberIDs,
	}
}

// DynamicBoxRequest is the body of dynamic box create and update requests.
type DynamicBoxRequest struct {
	Name          string     `json:"name"`
	Slug          string     `json:"slug"`
	Published     bool       `json:"published"`
	DateAvailable *time.Time `json:"date_available"`
	ContainerID   *int64     `json:"container_id"`
	ChannelID     *int64     `json:"channel_id"`
	QuerySetID    int64      `json:"queryset_id"`
}

func (req DynamicBoxRequest) input() boxes.DynamicBoxInput {
	return boxes.DynamicBoxInput{
		Name:          req.Name,
		Slug:          req.Slug,
		Published:     req.Published,
		DateAvailable: dateOrZero(req.DateAvailable),
		ContainerID:   req.ContainerID,
		ChannelID:     req.ChannelID,
		QuerySetID:    req.QuerySetID,
	}
}

// SetMembersRequest is the body of PUT /api/v1/boxes/{id}/containers.
type SetMembersRequest struct {
	ContainerIDs []int64 `json:"container_ids"`
}

// ListQuerySets handles GET /api/v1/querysets.
func (h *Handler) ListQuerySets(w http.ResponseWriter, r *http.Request) {
	p := parsePage(r)
	items, total, err := h.deps.Boxes.ListQuerySets(r.Context(), p.limit(), p.offset())
	if err != nil {
		h.writeServiceError(w, r, "querysets", err)
		return
	}
	WriteSuccess(w, items, p.meta(total))
}

// CreateQuerySet handles POST /api/v1/querysets.
func (h *Handler) CreateQuerySet(w http.ResponseWriter, r *http.Request) {
	var req QuerySetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	qs, err := h.deps.Boxes.CreateQuerySet(r.Context(), middleware.GetUserID(r), h.deps.SiteID, req.input())
	if err != nil {
		h.writeServiceError(w, r, "queryset", err)
		return
	}
	WriteCreated(w, qs)
}

// GetQuerySet handles GET /api/v1/querysets/{id}.
func (h *Handler) GetQuerySet(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "queryset")
	if !ok {
		return
	}
	qs, err := h.deps.Boxes.GetQuerySet(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, "queryset", err)
		return
	}
	WriteSuccess(w, qs, nil)
}

// UpdateQuerySet handles PUT /api/v1/querysets/{id}.
func (h *Handler) UpdateQuerySet(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "queryset")
	if !ok {
		return
	}
	var req QuerySetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	qs, err := h.deps.Boxes.UpdateQuerySet(r.Context(), id, req.input())
	if err != nil {
		h.writeServiceError(w, r, "queryset", err)
		return
	}
	WriteSuccess(w, qs, nil)
}

// ListContainerBoxes handles GET /api/v1/boxes.
func (h *Handler) ListContainerBoxes(w http.ResponseWriter, r *http.Request) {
	p := parsePage(r)
	items, total, err := h.deps.Boxes.ListContainerBoxes(r.Context(), p.limit(), p.offset())
	if err != nil {
		h.writeServiceError(w, r, "boxes", err)
		return
	}
	WriteSuccess(w, items, p.meta(total))
}

// CreateContainerBox handles POST /api/v1/boxes.
func (h *Handler) CreateContainerBox(w http.ResponseWriter, r *http.Request) {
	var req ContainerBoxRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	box, err := h.deps.Boxes.CreateContainerBox(r.Context(), middleware.GetUserID(r), h.deps.SiteID, req.input())
	if err != nil {
		h.writeServiceError(w, r, "box", err)
		return
	}
	WriteCreated(w, box)
}

// GetContainerBox handles GET /api/v1/boxes/{id}.
func (h *Handler) GetContainerBox(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "box")
	if !ok {
		return
	}
	box, err := h.deps.Boxes.GetContainerBox(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, "box", err)
		return
	}
	WriteSuccess(w, box, nil)
}

// UpdateContainerBox handles PUT /api/v1/boxes/{id}.
func (h *Handler) UpdateContainerBox(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "box")
	if !ok {
		return
	}
	var req ContainerBoxRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	box, err := h.deps.Boxes.UpdateContainerBox(r.Context(), id, req.input())
	if err != nil {
		h.writeServiceError(w, r, "box", err)
		return
	}
	WriteSuccess(w, box, nil)
}

// SetBoxMembers handles PUT /api/v1/boxes/{id}/containers, replacing the
// ordered curated members of a box.
func (h *Handler) SetBoxMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "box")
	if !ok {
		return
	}
	var req SetMembersRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	box, err := h.deps.Boxes.SetMembers(r.Context(), id, req.ContainerIDs)
	if err != nil {
		h.writeServiceError(w, r, "box", err)
		return
	}
	WriteSuccess(w, box, nil)
}

// ListDynamicBoxes handles GET /api/v1/dynamic-boxes.
func (h *Handler) ListDynamicBoxes(w http.ResponseWriter, r *http.Request) {
	p := parsePage(r)
	items, total, err := h.deps.Boxes.ListDynamicBoxes(r.Context(), p.limit(), p.offset())
	if err != nil {
		h.writeServiceError(w, r, "dynamic boxes", err)
		return
	}
	WriteSuccess(w, items, p.meta(total))
}

// CreateDynamicBox handles POST /api/v1/dynamic-boxes.
func (h *Handler) CreateDynamicBox(w http.ResponseWriter, r *http.Request) {
	var req DynamicBoxRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	box, err := h.deps.Boxes.CreateDynamicBox(r.Context(), middleware.GetUserID(r), h.deps.SiteID, req.input())
	if err != nil {
		h.writeServiceError(w, r, "dynamic box", err)
		return
	}
	WriteCreated(w, box)
}

// GetDynamicBox handles GET /api/v1/dynamic-boxes/{id}.
func (h *Handler) GetDynamicBox(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "dynamic box")
	if !ok {
		return
	}
	box, err := h.deps.Boxes.GetDynamicBox(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, "dynamic box", err)
		return
	}
	WriteSuccess(w, box, nil)
}

// UpdateDynamicBox handles PUT /api/v1/dynamic-boxes/{id}.
func (h *Handler) UpdateDynamicBox(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "dynamic box")
	if !ok {
		return
	}
	var req DynamicBoxRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	box, err := h.deps.Boxes.UpdateDynamicBox(r.Context(), id, req.input())
	if err != nil {
		h.writeServiceError(w, r, "dynamic box", err)
		return
	}
	WriteSuccess(w, box, nil)
}
