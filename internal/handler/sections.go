// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"sitecms/internal/content"
	"sitecms/internal/middleware"
	"sitecms/internal/service"
)

// SectionHandler handles the CMS section endpoints.
type SectionHandler struct {
	sections     *content.Sections
	eventService *service.EventService
}

// NewSectionHandler creates a new SectionHandler.
func NewSectionHandler(sections *content.Sections, events *service.EventService) *SectionHandler {
	return &SectionHandler{sections: sections, eventService: events}
}

// pageIDParam parses the {pageID} URL parameter.
func pageIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "pageID"), 10, 64)
}

// List returns all sections of a page in render order, drafts included.
func (h *SectionHandler) List(w http.ResponseWriter, r *http.Request) {
	pageID, err := pageIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid page ID")
		return
	}

	sections, err := h.sections.ListForPage(r.Context(), pageID)
	if err != nil {
		writeContentError(w, err, "Failed to list sections")
		return
	}

	total, err := h.sections.CountForPage(r.Context(), pageID)
	if err != nil {
		writeContentError(w, err, "Failed to count sections")
		return
	}
	WriteSuccess(w, sections, &Meta{Total: total})
}

// Types returns the section type tags available to editors, sorted.
func (h *SectionHandler) Types(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, h.sections.TypeTags(), nil)
}

type createSectionRequest struct {
	TypeTag    string          `json:"type_tag"`
	OrderIndex int64           `json:"order_index"`
	Content    json.RawMessage `json:"content"`
	Published  bool            `json:"published"`
}

// Create adds a section to a page.
func (h *SectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	pageID, err := pageIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid page ID")
		return
	}

	var req createSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}

	actorID := middleware.GetUserIDPtr(r)
	section, err := h.sections.Create(r.Context(), content.CreateSectionParams{
		PageID:     pageID,
		TypeTag:    req.TypeTag,
		OrderIndex: req.OrderIndex,
		Content:    req.Content,
		Published:  req.Published,
		ActorID:    actorID,
	})
	if err != nil {
		writeContentError(w, err, "Failed to create section")
		return
	}

	h.logContentEvent(r, "Section created", section.ID, actorID)
	WriteCreated(w, section)
}

// Get returns one section by id.
func (h *SectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	section, err := h.sections.GetByID(r.Context(), chi.URLParam(r, "sectionID"))
	if err != nil {
		writeContentError(w, err, "Failed to fetch section")
		return
	}
	WriteSuccess(w, section, nil)
}

type updateSectionRequest struct {
	TypeTag    *string         `json:"type_tag"`
	OrderIndex *int64          `json:"order_index"`
	Content    json.RawMessage `json:"content"`
	Published  *bool           `json:"published"`
}

// Update applies a sparse patch to a section.
func (h *SectionHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}

	actorID := middleware.GetUserIDPtr(r)
	section, err := h.sections.Update(r.Context(), chi.URLParam(r, "sectionID"), content.UpdateSectionParams{
		TypeTag:    req.TypeTag,
		OrderIndex: req.OrderIndex,
		Content:    req.Content,
		Published:  req.Published,
		ActorID:    actorID,
	})
	if err != nil {
		writeContentError(w, err, "Failed to update section")
		return
	}

	h.logContentEvent(r, "Section updated", section.ID, actorID)
	WriteSuccess(w, section, nil)
}

// Delete removes a section.
func (h *SectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sectionID := chi.URLParam(r, "sectionID")
	actorID := middleware.GetUserIDPtr(r)

	if err := h.sections.Delete(r.Context(), sectionID, actorID); err != nil {
		writeContentError(w, err, "Failed to delete section")
		return
	}

	h.logContentEvent(r, "Section deleted", sectionID, actorID)
	WriteSuccess(w, map[string]string{"status": "deleted"}, nil)
}

type reorderRequest struct {
	SectionIDs []string `json:"section_ids"`
}

// Reorder assigns new order indices to a page's sections from the given id
// list.
func (h *SectionHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	pageID, err := pageIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid page ID")
		return
	}

	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}
	if len(req.SectionIDs) == 0 {
		WriteBadRequest(w, "section_ids must not be empty")
		return
	}

	actorID := middleware.GetUserIDPtr(r)
	if err := h.sections.Reorder(r.Context(), pageID, req.SectionIDs, actorID); err != nil {
		writeContentError(w, err, "Failed to reorder sections")
		return
	}

	sections, err := h.sections.ListForPage(r.Context(), pageID)
	if err != nil {
		writeContentError(w, err, "Failed to list sections")
		return
	}
	WriteSuccess(w, sections, &Meta{Total: int64(len(sections))})
}

// logContentEvent writes a content audit event; failures only get logged.
func (h *SectionHandler) logContentEvent(r *http.Request, message, sectionID string, actorID *int64) {
	if err := h.eventService.LogContentEvent(r.Context(), service.EventLevelInfo, message, actorID,
		map[string]any{"section_id": sectionID}); err != nil {
		slog.Error("failed to log content event", "error", err)
	}
}
