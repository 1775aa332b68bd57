// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/opps-go/internal/middleware"
	"github.com/olegiv/opps-go/internal/model"
)

// Routes registers the API on r. Everything below /api/v1 except the login
// endpoint and the public routes requires an authenticated user.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if h.deps.Login != nil {
				r.Use(h.deps.Login.Middleware())
			}
			r.Post("/auth/login", h.Login)
		})
		r.Post("/auth/logout", h.Logout)

		r.Route("/public", func(r chi.Router) {
			r.Get("/boxes/{slug}", h.PublicContainerBox)
			r.Get("/dynamic-boxes/{slug}", h.PublicDynamicBox)
			r.Get("/channels/*", h.PublicChannel)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.deps.Auth.Require)

			r.Get("/auth/me", h.Me)

			r.Get("/channels", h.ListChannels)
			r.Post("/channels", h.CreateChannel)
			r.Get("/channels/{id}", h.GetChannel)
			r.Put("/channels/{id}", h.UpdateChannel)

			r.Get("/containers", h.ListContainers)
			r.Get("/containers/{id}/recommendations", h.Recommendations)

			for _, kind := range model.Kinds {
				h.kindRoutes(r, kind)
			}

			r.Get("/images", h.ListImages)
			r.Post("/images", h.UploadImage)
			r.Get("/images/{id}", h.GetImage)
			r.Put("/images/{id}", h.UpdateImage)

			r.Get("/sources", h.ListSources)
			r.Post("/sources", h.CreateSource)
			r.Get("/sources/{id}", h.GetSource)
			r.Put("/sources/{id}", h.UpdateSource)

			r.Get("/querysets", h.ListQuerySets)
			r.Post("/querysets", h.CreateQuerySet)
			r.Get("/querysets/{id}", h.GetQuerySet)
			r.Put("/querysets/{id}", h.UpdateQuerySet)

			r.Get("/boxes", h.ListContainerBoxes)
			r.Post("/boxes", h.CreateContainerBox)
			r.Get("/boxes/{id}", h.GetContainerBox)
			r.Put("/boxes/{id}", h.UpdateContainerBox)
			r.Put("/boxes/{id}/containers", h.SetBoxMembers)

			r.Get("/dynamic-boxes", h.ListDynamicBoxes)
			r.Post("/dynamic-boxes", h.CreateDynamicBox)
			r.Get("/dynamic-boxes/{id}", h.GetDynamicBox)
			r.Put("/dynamic-boxes/{id}", h.UpdateDynamicBox)

			r.Get("/configs", h.ListConfigs)
			r.Post("/configs", h.CreateConfig)
			r.Get("/configs/value/{key}", h.ConfigValue)
			r.Get("/configs/group/{keyGroup}", h.ConfigGroup)
			r.Get("/configs/{id}", h.GetConfig)
			r.Put("/configs/{id}", h.UpdateConfig)

			r.Get("/redirects", h.ListRedirects)

			r.Get("/admin/layouts", h.ListLayouts)
			r.Get("/admin/layouts/{name}", h.GetLayout)

			r.Get("/events", h.ListEvents)
			r.Get("/scheduler/jobs", h.ListJobs)
			r.With(middleware.RequireAdmin).Post("/scheduler/jobs/{name}/run", h.RunJob)
		})
	})
}

// kindRoutes registers the endpoints of one container kind under its
// plural path, e.g. /posts.
func (h *Handler) kindRoutes(r chi.Router, kind model.Kind) {
	ch := containerHandler{h: h, kind: kind}
	r.Route("/"+kindPath(kind), func(r chi.Router) {
		r.Get("/", ch.list)
		r.Post("/", ch.create)
		r.Get("/{id}", ch.get)
		r.Put("/{id}", ch.update)
		r.Get("/{id}/images", ch.allImages)
		r.Put("/{id}/images", ch.setImages)
		r.Get("/{id}/sources", ch.sources)
		r.Put("/{id}/sources", ch.setSources)
	})
}

// NewRouter returns a chi router serving only the API. The caller adds
// global middleware and other routes.
func (h *Handler) NewRouter() http.Handler {
	r := chi.NewRouter()
	h.Routes(r)
	return r
}
