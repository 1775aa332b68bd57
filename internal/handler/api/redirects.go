// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import "net/http"

// ListRedirects handles GET /api/v1/redirects. Redirects are written by the
// container save pipeline only.
func (h *Handler) ListRedirects(w http.ResponseWriter, r *http.Request) {
	p := parsePage(r)
	items, total, err := h.deps.Redirects.List(r.Context(), h.deps.SiteID, p.limit(), p.offset())
	if err != nil {
		h.writeServiceError(w, r, "redirects", err)
		return
	}
	WriteSuccess(w, items, p.meta(total))
}
