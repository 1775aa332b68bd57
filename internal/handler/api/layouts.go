// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// ListLayouts handles GET /api/v1/admin/layouts.
func (h *Handler) ListLayouts(w http.ResponseWriter, _ *http.Request) {
	layouts := h.deps.Admin.All()
	WriteSuccess(w, layouts, &Meta{Total: int64(len(layouts))})
}

// GetLayout handles GET /api/v1/admin/layouts/{name}. name is either the
// layout name ("articles.PostAdmin") or its model ("articles.Post"). A miss
// answers 404 with close names in details.suggestions.
func (h *Handler) GetLayout(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	layout, ok := h.deps.Admin.Get(name)
	if !ok {
		var details map[string]string
		if s := h.deps.Admin.Suggest(name); len(s) > 0 {
			details = map[string]string{"suggestions": strings.Join(s, ", ")}
		}
		WriteError(w, http.StatusNotFound, "not_found", "Layout not found", details)
		return
	}
	WriteSuccess(w, layout, nil)
}
