// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/opps-go/internal/middleware"
	"github.com/olegiv/opps-go/internal/model"
	"github.com/olegiv/opps-go/internal/service"
)

// ImageResponse is an image with its public URL. URL is empty while the
// image is not live.
type ImageResponse struct {
	model.Image
	URL string `json:"url"`
}

func (h *Handler) imageResponse(img model.Image) ImageResponse {
	if img.Tags == nil {
		img.Tags = []string{}
	}
	return ImageResponse{Image: img, URL: h.deps.Images.AbsoluteURL(img)}
}

func (h *Handler) imageResponses(images []model.Image) []ImageResponse {
	out := make([]ImageResponse, 0, len(images))
	for _, img := range images {
		out = append(out, h.imageResponse(img))
	}
	return out
}

// ImageRequest is the body of PUT /api/v1/images/{id}.
type ImageRequest struct {
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Published     bool       `json:"published"`
	DateAvailable *time.Time `json:"date_available"`
	Description   string     `json:"description"`
	SourceID      *int64     `json:"source_id"`
	Tags          []string   `json:"tags"`
}

func (req ImageRequest) input() service.ImageInput {
	return service.ImageInput{
		Title:         req.Title,
		Slug:          req.Slug,
		Published:     req.Published,
		DateAvailable: dateOrZero(req.DateAvailable),
		Description:   req.Description,
		SourceID:      req.SourceID,
		Tags:          req.Tags,
	}
}

// ListImages handles GET /api/v1/images.
func (h *Handler) ListImages(w http.ResponseWriter, r *http.Request) {
	p := parsePage(r)
	images, total, err := h.deps.Images.List(r.Context(), p.limit(), p.offset())
	if err != nil {
		h.writeServiceError(w, r, "images", err)
		return
	}
	WriteSuccess(w, h.imageResponses(images), p.meta(total))
}

// UploadImage handles POST /api/v1/images as multipart/form-data with the
// image in "file" and the metadata in plain form fields. Tags are comma
// separated.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.deps.MaxUploadSize)
	if err := r.ParseMultipartForm(h.deps.MaxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			WriteError(w, http.StatusRequestEntityTooLarge, "file_too_large", "File exceeds the upload limit", nil)
			return
		}
		WriteBadRequest(w, "Invalid multipart form", nil)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, _, err := r.FormFile("file")
	if err != nil {
		WriteValidationError(w, map[string]string{"file": "File is required"})
		return
	}
	defer func() { _ = file.Close() }()

	in, errs := imageFormInput(r)
	if len(errs) > 0 {
		WriteValidationError(w, errs)
		return
	}

	img, err := h.deps.Images.Upload(r.Context(), middleware.GetUserID(r), h.deps.SiteID, file, in)
	if err != nil {
		h.writeServiceError(w, r, "image", err)
		return
	}
	WriteCreated(w, h.imageResponse(img))
}

func imageFormInput(r *http.Request) (service.ImageInput, map[string]string) {
	errs := map[string]string{}
	in := service.ImageInput{
		Title:       r.FormValue("title"),
		Slug:        r.FormValue("slug"),
		Description: r.FormValue("description"),
	}
	if raw := r.FormValue("published"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			errs["published"] = "Must be true or false"
		}
		in.Published = b
	}
	if raw := r.FormValue("date_available"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			errs["date_available"] = "Must be an RFC 3339 timestamp"
		}
		in.DateAvailable = t
	}
	if raw := r.FormValue("source_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			errs["source_id"] = "Must be a source ID"
		} else {
			in.SourceID = &id
		}
	}
	if raw := r.FormValue("tags"); raw != "" {
		in.Tags = strings.Split(raw, ",")
	}
	return in, errs
}

// GetImage handles GET /api/v1/images/{id}.
func (h *Handler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "image")
	if !ok {
		return
	}
	img, err := h.deps.Images.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, "image", err)
		return
	}
	WriteSuccess(w, h.imageResponse(img), nil)
}

// UpdateImage handles PUT /api/v1/images/{id}. The file cannot be replaced.
func (h *Handler) UpdateImage(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r, "image")
	if !ok {
		return
	}
	var req ImageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	img, err := h.deps.Images.Update(r.Context(), id, req.input())
	if err != nil {
		h.writeServiceError(w, r, "image", err)
		return
	}
	WriteSuccess(w, h.imageResponse(img), nil)
}
