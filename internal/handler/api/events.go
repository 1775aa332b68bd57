// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/opps-go/internal/middleware"
	"github.com/olegiv/opps-go/internal/model"
	"github.com/olegiv/opps-go/internal/scheduler"
	"github.com/olegiv/opps-go/internal/store"
	"github.com/olegiv/opps-go/internal/util"
)

// EventResponse represents an audit event in API responses.
type EventResponse struct {
	ID         int64           `json:"id"`
	Level      string          `json:"level"`
	Category   string          `json:"category"`
	Message    string          `json:"message"`
	UserID     *int64          `json:"user_id,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	IPAddress  string          `json:"ip_address,omitempty"`
	RequestURL string          `json:"request_url,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

func eventResponse(e store.Event) EventResponse {
	resp := EventResponse{
		ID:         e.ID,
		Level:      e.Level,
		Category:   e.Category,
		Message:    e.Message,
		UserID:     util.PtrFromNullInt64(e.UserID),
		IPAddress:  e.IpAddress,
		RequestURL: e.RequestUrl,
		CreatedAt:  e.CreatedAt,
	}
	if e.Metadata != "" && json.Valid([]byte(e.Metadata)) {
		resp.Metadata = json.RawMessage(e.Metadata)
	}
	return resp
}

// ListEvents handles GET /api/v1/events, newest first.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	p := parsePage(r)
	events, err := h.deps.Events.ListEvents(r.Context(), p.limit(), p.offset())
	if err != nil {
		h.writeServiceError(w, r, "events", err)
		return
	}
	total, err := h.deps.Events.CountEvents(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "events", err)
		return
	}
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, eventResponse(e))
	}
	WriteSuccess(w, out, p.meta(total))
}

// ListJobs handles GET /api/v1/scheduler/jobs.
func (h *Handler) ListJobs(w http.ResponseWriter, _ *http.Request) {
	if h.deps.Scheduler == nil {
		WriteSuccess(w, []scheduler.JobInfo{}, &Meta{})
		return
	}
	jobs := h.deps.Scheduler.Jobs()
	WriteSuccess(w, jobs, &Meta{Total: int64(len(jobs))})
}

// RunJob handles POST /api/v1/scheduler/jobs/{name}/run, running the job
// synchronously.
func (h *Handler) RunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if h.deps.Scheduler == nil {
		WriteNotFound(w, "Job not found")
		return
	}
	err := h.deps.Scheduler.Trigger(r.Context(), name)
	if errors.Is(err, scheduler.ErrUnknownJob) {
		WriteNotFound(w, "Job not found")
		return
	}

	userID := middleware.GetUserIDPtr(r)
	if err != nil {
		h.logger.Error("manual job run failed", "job", name, "error", err)
		if h.deps.Events != nil {
			_ = h.deps.Events.LogSystemEvent(r.Context(), model.EventLevelError, "Manual job run failed", userID,
				middleware.ClientIP(r), r.URL.Path, map[string]any{"job": name, "error": err.Error()})
		}
		WriteError(w, http.StatusInternalServerError, "job_failed", "Job failed: "+err.Error(), nil)
		return
	}
	if h.deps.Events != nil {
		_ = h.deps.Events.LogSystemEvent(r.Context(), model.EventLevelInfo, "Job run manually", userID,
			middleware.ClientIP(r), r.URL.Path, map[string]any{"job": name})
	}
	WriteSuccess(w, map[string]string{"job": name, "status": "completed"}, nil)
}
