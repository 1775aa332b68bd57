// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/opps-go/internal/admin"
	"github.com/olegiv/opps-go/internal/content"
	"github.com/olegiv/opps-go/internal/middleware"
	"github.com/olegiv/opps-go/internal/model"
	"github.com/olegiv/opps-go/internal/store"
)

// ContainerResponse represents a post, album or link in API responses.
type ContainerResponse struct {
	ID         int64  `json:"id"`
	ChildClass string `json:"child_class"`
	model.Publishable
	Title           string   `json:"title"`
	Slug            string   `json:"slug"`
	Path            string   `json:"path,omitempty"`
	ChannelID       int64    `json:"channel_id"`
	ChannelName     string   `json:"channel_name"`
	ChannelLongSlug string   `json:"channel_long_slug"`
	ShortURL        string   `json:"short_url,omitempty"`
	MainImageID     *int64   `json:"main_image_id,omitempty"`
	Headline        string   `json:"headline"`
	ShortTitle      string   `json:"short_title"`
	Tags            []string `json:"tags"`
	SearchCategory  string   `json:"search_category"`

	// Post
	Content  *string `json:"content,omitempty"`
	AlbumIDs []int64 `json:"album_ids,omitempty"`
	// Link
	URL         *string `json:"url,omitempty"`
	ContainerID *int64  `json:"container_id,omitempty"`
}

func containerResponse(c *model.Container) ContainerResponse {
	resp := ContainerResponse{
		ID:              c.ID,
		ChildClass:      c.Kind().String(),
		Publishable:     c.Publishable,
		Title:           c.Title,
		Slug:            c.Slug,
		ChannelID:       c.ChannelID,
		ChannelName:     c.ChannelName,
		ChannelLongSlug: c.ChannelLongSlug,
		ShortURL:        c.ShortURL,
		MainImageID:     c.MainImageID,
		Headline:        c.Headline,
		ShortTitle:      c.ShortTitle,
		Tags:            c.Tags,
		SearchCategory:  c.SearchCategory(),
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if path, err := c.CanonicalPath(); err == nil {
		resp.Path = path
	}
	switch body := c.Body.(type) {
	case model.PostBody:
		resp.Content = &body.Content
		resp.AlbumIDs = body.AlbumIDs
	case model.LinkBody:
		resp.URL = &body.URL
		resp.ContainerID = body.ContainerID
	}
	return resp
}

func containerResponses(items []*model.Container) []ContainerResponse {
	out := make([]ContainerResponse, 0, len(items))
	for _, c := range items {
		out = append(out, containerResponse(c))
	}
	return out
}

// ContainerRequest is the body of container create and update requests.
// Content and AlbumIDs apply to posts, URL and ContainerID to links.
type ContainerRequest struct {
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	ChannelID     int64      `json:"channel_id"`
	Published     bool       `json:"published"`
	DateAvailable *time.Time `json:"date_available"`
	MainImageID   *int64     `json:"main_image_id"`
	Headline      string     `json:"headline"`
	ShortTitle    string     `json:"short_title"`
	Tags          []string   `json:"tags"`

	Content     *string `json:"content"`
	AlbumIDs    []int64 `json:"album_ids"`
	URL         *string `json:"url"`
	ContainerID *int64  `json:"container_id"`
}

// input builds the service input for kind. Fields of another kind are
// reported as validation errors.
func (req ContainerRequest) input(kind model.Kind) (content.Input, error) {
	v := &content.ValidationError{}
	var body model.Body
	switch kind {
	case model.KindPost:
		if req.URL != nil {
			v.Add("url", "Only links have a URL")
		}
		if req.ContainerID != nil {
			v.Add("container_id", "Only links point to a container")
		}
		pb := model.PostBody{AlbumIDs: req.AlbumIDs}
		if req.Content != nil {
			pb.Content = *req.Content
		}
		body = pb
	case model.KindAlbum:
		if req.Content != nil {
			v.Add("content", "Only posts have content")
		}
		if len(req.AlbumIDs) > 0 {
			v.Add("album_ids", "Only posts have albums")
		}
		if req.URL != nil {
			v.Add("url", "Only links have a URL")
		}
		if req.ContainerID != nil {
			v.Add("container_id", "Only links point to a container")
		}
		body = model.AlbumBody{}
	case model.KindLink:
		if req.Content != nil {
			v.Add("content", "Only posts have content")
		}
		if len(req.AlbumIDs) > 0 {
			v.Add("album_ids", "Only posts have albums")
		}
		lb := model.LinkBody{ContainerID: req.ContainerID}
		if req.URL != nil {
			lb.URL = *req.URL
		}
		body = lb
	}
	if !v.Empty() {
		return content.Input{}, v
	}
	return content.Input{
		Title:         req.Title,
		Slug:          req.Slug,
		ChannelID:     req.ChannelID,
		Published:     req.Published,
		DateAvailable: dateOrZero(req.DateAvailable),
		MainImageID:   req.MainImageID,
		Headline:      req.Headline,
		ShortTitle:    req.ShortTitle,
		Tags:          req.Tags,
		Body:          body,
	}, nil
}

// Admin listing filters and the query parameters selecting them.
var listFilterParams = []struct {
	filter string
	params []string
}{
	{"published", []string{"published"}},
	{"channel_name", []string{"channel_name"}},
	{"child_class", []string{"child_class"}},
	{"date_available", []string{"date_from", "date_to"}},
}

// containerFilter builds the listing filter from the query string. Only the
// filters and search fields of the hidden container layout are accepted.
func (h *Handler) containerFilter(r *http.Request) (store.ContainerFilter, map[string]string) {
	q := r.URL.Query()
	layout, hasLayout := admin.ModelAdmin{}, false
	if h.deps.Admin != nil {
		layout, hasLayout = h.deps.Admin.Get(admin.ContainerAdmin)
	}
	allowed := func(filter string) bool { return !hasLayout || layout.HasFilter(filter) }

	var f store.ContainerFilter
	errs := map[string]string{}
	for _, lf := range listFilterParams {
		for _, p := range lf.params {
			if q.Get(p) != "" && !allowed(lf.filter) {
				errs[p] = "Filtering on " + lf.filter + " is not allowed"
			}
		}
	}

	if raw := q.Get("published"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			errs["published"] = "Must be true or false"
		} else {
			f.Published = sql.NullBool{Bool: b, Valid: true}
		}
	}
	f.ChannelName = q.Get("channel_name")
	if raw := q.Get("child_class"); raw != "" {
		if _, err := model.ParseKind(raw); err != nil {
			errs["child_class"] = "Unknown child class"
		}
		f.ChildClass = raw
	}
	if raw := q.Get("date_from"); raw != "" {
		t, err := parseDateParam(raw, false)
		if err != nil {
			errs["date_from"] = "Must be a date or RFC 3339 timestamp"
		}
		f.AvailableFrom = sql.NullTime{Time: t, Valid: err == nil}
	}
	if raw := q.Get("date_to"); raw != "" {
		t, err := parseDateParam(raw, true)
		if err != nil {
			errs["date_to"] = "Must be a date or RFC 3339 timestamp"
		}
		f.AvailableTo = sql.NullTime{Time: t, Valid: err == nil}
	}

	if s := strings.TrimSpace(q.Get("q")); s != "" {
		if hasLayout {
			if len(layout.SearchFields) == 0 {
				errs["q"] = "Search is not enabled"
			}
			f.SearchFields = layout.SearchFields
		}
		f.Search = s
	}
	return f, errs
}

// parseDateParam accepts RFC 3339 timestamps and plain dates. A plain date
// used as an upper bound covers the whole day.
func parseDateParam(raw string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

// ListContainers handles GET /api/v1/containers, the listing of every kind.
func (h *Handler) ListContainers(w http.ResponseWriter, r *http.Request) {
	f, errs := h.containerFilter(r)
	if len(errs) > 0 {
		WriteBadRequest(w, "Invalid filter", errs)
		return
	}
	h.listContainers(w, r, f)
}

func (h *Handler) listContainers(w http.ResponseWriter, r *http.Request, f store.ContainerFilter) {
	p := parsePage(r)
	items, total, err := h.deps.Containers.List(r.Context(), f, p.limit(), p.offset())
	if err != nil {
		h.writeServiceError(w, r, "containers", err)
		return
	}
	WriteSuccess(w, containerResponses(items), p.meta(total))
}

// Recommendations handles GET /api/v1/containers/{id}/recommendations.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "container")
	if !ok {
		return
	}
	items, err := h.deps.Containers.Recommendations(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, "container", err)
		return
	}
	WriteSuccess(w, containerResponses(items), nil)
}

// kindPath returns the plural URL segment of kind.
func kindPath(kind model.Kind) string {
	return strings.ToLower(kind.String()) + "s"
}

// containerHandler serves the endpoints of one container kind.
type containerHandler struct {
	h    *Handler
	kind model.Kind
}

func (ch containerHandler) entity() string {
	return strings.ToLower(ch.kind.String())
}

func (ch containerHandler) list(w http.ResponseWriter, r *http.Request) {
	f, errs := ch.h.containerFilter(r)
	if len(errs) > 0 {
		WriteBadRequest(w, "Invalid filter", errs)
		return
	}
	f.ChildClass = ch.kind.String()
	ch.h.listContainers(w, r, f)
}

func (ch containerHandler) create(w http.ResponseWriter, r *http.Request) {
	var req ContainerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in, err := req.input(ch.kind)
	if err != nil {
		ch.h.writeServiceError(w, r, ch.entity(), err)
		return
	}
	c, err := ch.h.deps.Containers.Create(r.Context(), middleware.GetUserID(r), ch.h.deps.SiteID, in)
	if err != nil {
		ch.h.writeServiceError(w, r, ch.entity(), err)
		return
	}
	WriteCreated(w, containerResponse(c))
}

func (ch containerHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, ch.entity())
	if !ok {
		return
	}
	c, err := ch.h.deps.Containers.GetKind(r.Context(), ch.kind, id)
	if err != nil {
		ch.h.writeServiceError(w, r, ch.entity(), err)
		return
	}
	WriteSuccess(w, containerResponse(c), nil)
}

func (ch containerHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, ch.entity())
	if !ok {
		return
	}
	if _, err := ch.h.deps.Containers.GetKind(r.Context(), ch.kind, id); err != nil {
		ch.h.writeServiceError(w, r, ch.entity(), err)
		return
	}
	var req ContainerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in, err := req.input(ch.kind)
	if err != nil {
		ch.h.writeServiceError(w, r, ch.entity(), err)
		return
	}
	c, err := ch.h.deps.Containers.Update(r.Context(), id, in)
	if err != nil {
		ch.h.writeServiceError(w, r, ch.entity(), err)
		return
	}
	WriteSuccess(w, containerResponse(c), nil)
}

// allImages answers the main image followed by the inline images, and for
// posts the images of their albums.
func (ch containerHandler) allImages(w http.ResponseWriter, r *http.Request) {
	id, ok := ch.requireKind(w, r)
	if !ok {
		return
	}
	images, err := ch.h.deps.Containers.AllImages(r.Context(), id)
	if err != nil {
		ch.h.writeServiceError(w, r, ch.entity(), err)
		return
	}
	WriteSuccess(w, ch.h.imageResponses(images), nil)
}

// SetImagesRequest is the body of PUT /{kind}/{id}/images.
type SetImagesRequest struct {
	Images []content.ImageRef `json:"images"`
}

func (ch containerHandler) setImages(w http.ResponseWriter, r *http.Request) {
	id, ok := ch.requireKind(w, r)
	if !ok {
		return
	}
	var req SetImagesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := ch.h.deps.Containers.SetImages(r.Context(), id, req.Images); err != nil {
		ch.h.writeServiceError(w, r, ch.entity(), err)
		return
	}
	images, err := ch.h.deps.Containers.Images(r.Context(), id)
	if err != nil {
		ch.h.writeServiceError(w, r, ch.entity(), err)
		return
	}
	WriteSuccess(w, ch.h.imageResponses(images), nil)
}

func (ch containerHandler) sources(w http.ResponseWriter, r *http.Request) {
	id, ok := ch.requireKind(w, r)
	if !ok {
		return
	}
	sources, err := ch.h.deps.Containers.Sources(r.Context(), id)
	if err != nil {
		ch.h.writeServiceError(w, r, ch.entity(), err)
		return
	}
	WriteSuccess(w, sources, nil)
}

// SetSourcesRequest is the body of PUT /{kind}/{id}/sources.
type SetSourcesRequest struct {
	Sources []content.SourceRef `json:"sources"`
}

func (ch containerHandler) setSources(w http.ResponseWriter, r *http.Request) {
	id, ok := ch.requireKind(w, r)
	if !ok {
		return
	}
	var req SetSourcesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := ch.h.deps.Containers.SetSources(r.Context(), id, req.Sources); err != nil {
		ch.h.writeServiceError(w, r, ch.entity(), err)
		return
	}
	sources, err := ch.h.deps.Containers.Sources(r.Context(), id)
	if err != nil {
		ch.h.writeServiceError(w, r, ch.entity(), err)
		return
	}
	WriteSuccess(w, sources, nil)
}

// requireKind parses {id} and checks the container is of the handler's kind.
func (ch containerHandler) requireKind(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := requireID(w, r, ch.entity())
	if !ok {
		return 0, false
	}
	if _, err := ch.h.deps.Containers.GetKind(r.Context(), ch.kind, id); err != nil {
		ch.h.writeServiceError(w, r, ch.entity(), err)
		return 0, false
	}
	return id, true
}
