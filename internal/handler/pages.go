// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"sitecms/internal/cache"
	"sitecms/internal/content"
	"sitecms/internal/store"
)

// pageView is the API shape of a page.
type pageView struct {
	ID        int64     `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func pageViewFromStore(p store.Page) pageView {
	return pageView{
		ID:        p.ID,
		Slug:      p.Slug,
		Title:     p.Title,
		Published: p.Published != 0,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// PageHandler handles the CMS page endpoints. The page set is fixed: pages
// can be retitled and (un)published, not created or deleted.
type PageHandler struct {
	queries  *store.Queries
	routes   *cache.RouteCache
	homeSlug string
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(db *sql.DB, routes *cache.RouteCache, homeSlug string) *PageHandler {
	return &PageHandler{
		queries:  store.New(db),
		routes:   routes,
		homeSlug: homeSlug,
	}
}

// List returns all pages.
func (h *PageHandler) List(w http.ResponseWriter, r *http.Request) {
	pages, err := h.queries.ListPages(r.Context())
	if err != nil {
		slog.Error("failed to list pages", "error", err)
		WriteInternalError(w, "Failed to list pages")
		return
	}

	total, err := h.queries.CountPages(r.Context())
	if err != nil {
		slog.Error("failed to count pages", "error", err)
		WriteInternalError(w, "Failed to list pages")
		return
	}

	views := make([]pageView, 0, len(pages))
	for _, p := range pages {
		views = append(views, pageViewFromStore(p))
	}
	WriteSuccess(w, views, &Meta{Total: total})
}

// Get returns one page by id.
func (h *PageHandler) Get(w http.ResponseWriter, r *http.Request) {
	pageID, err := pageIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid page ID")
		return
	}

	page, err := h.queries.GetPageByID(r.Context(), pageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Page not found")
			return
		}
		slog.Error("failed to fetch page", "page_id", pageID, "error", err)
		WriteInternalError(w, "Failed to fetch page")
		return
	}
	WriteSuccess(w, pageViewFromStore(page), nil)
}

type updatePageRequest struct {
	Title     *string `json:"title"`
	Published *bool   `json:"published"`
}

// Update changes a page's title or published flag, then invalidates its
// cached routes.
func (h *PageHandler) Update(w http.ResponseWriter, r *http.Request) {
	pageID, err := pageIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid page ID")
		return
	}

	var req updatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}

	existing, err := h.queries.GetPageByID(r.Context(), pageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Page not found")
			return
		}
		slog.Error("failed to fetch page", "page_id", pageID, "error", err)
		WriteInternalError(w, "Failed to fetch page")
		return
	}

	title := existing.Title
	if req.Title != nil {
		title = *req.Title
	}
	if title == "" {
		WriteValidationError(w, map[string][]string{"title": {"must not be empty"}})
		return
	}
	published := existing.Published
	if req.Published != nil {
		published = 0
		if *req.Published {
			published = 1
		}
	}

	page, err := h.queries.UpdatePage(r.Context(), store.UpdatePageParams{
		ID:        pageID,
		Title:     title,
		Published: published,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		slog.Error("failed to update page", "page_id", pageID, "error", err)
		WriteInternalError(w, "Failed to update page")
		return
	}

	h.routes.Invalidate(r.Context(), content.PublicRoute(page.Slug, h.homeSlug))

	slog.Info("page updated", "page_id", page.ID, "slug", page.Slug)
	WriteSuccess(w, pageViewFromStore(page), nil)
}
