// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sitecms/internal/cache"
	"sitecms/internal/content"
	"sitecms/internal/render"
	"sitecms/internal/store"
	"sitecms/internal/util"
)

// FrontendHandler serves the public site and the public read API.
type FrontendHandler struct {
	queries  *store.Queries
	sections *content.Sections
	globals  *content.Globals
	renderer *render.Renderer
	routes   *cache.RouteCache
	homeSlug string
}

// NewFrontendHandler creates a new FrontendHandler.
func NewFrontendHandler(db *sql.DB, sections *content.Sections, globals *content.Globals, renderer *render.Renderer, routes *cache.RouteCache, homeSlug string) *FrontendHandler {
	return &FrontendHandler{
		queries:  store.New(db),
		sections: sections,
		globals:  globals,
		renderer: renderer,
		routes:   routes,
		homeSlug: homeSlug,
	}
}

// Home serves the home page.
func (h *FrontendHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.servePage(w, r, h.homeSlug)
}

// Page serves a page by slug.
func (h *FrontendHandler) Page(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if !util.IsValidSlug(slug) {
		http.NotFound(w, r)
		return
	}
	h.servePage(w, r, slug)
}

// servePage renders a published page, serving from the route cache when
// possible. Only full successful renders are cached.
func (h *FrontendHandler) servePage(w http.ResponseWriter, r *http.Request, slug string) {
	routePath := content.PublicRoute(slug, h.homeSlug)

	if body, ok := h.routes.Get(r.Context(), routePath); ok {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(body)
		return
	}

	page, err := h.queries.GetPageBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.NotFound(w, r)
			return
		}
		slog.Error("failed to fetch page", "slug", slug, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if page.Published == 0 {
		http.NotFound(w, r)
		return
	}

	sections, err := h.sections.ListPublishedForSlug(r.Context(), slug)
	if err != nil {
		slog.Error("failed to list page sections", "slug", slug, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	globals, err := h.globals.List(r.Context())
	if err != nil {
		slog.Error("failed to list global content", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	body, err := h.renderer.Page(page.Title, sections, globals)
	if err != nil {
		slog.Error("failed to render page", "slug", slug, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.routes.Set(r.Context(), routePath, body)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(body)
}

// APISections returns the published sections of a published page as JSON.
// This is the headless read path: same publish filtering as the HTML site.
func (h *FrontendHandler) APISections(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if !util.IsValidSlug(slug) {
		WriteNotFound(w, "Page not found")
		return
	}

	sections, err := h.sections.ListPublishedForSlug(r.Context(), slug)
	if err != nil {
		writeContentError(w, err, "Failed to list sections")
		return
	}
	WriteSuccess(w, sections, &Meta{Total: int64(len(sections))})
}

// APIGlobal returns one global content entry as JSON.
func (h *FrontendHandler) APIGlobal(w http.ResponseWriter, r *http.Request) {
	entry, err := h.globals.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeContentError(w, err, "Failed to fetch global content")
		return
	}
	WriteSuccess(w, entry, nil)
}
