// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sitecms/internal/content"
	"sitecms/internal/middleware"
	"sitecms/internal/service"
)

// GlobalHandler handles the CMS global content endpoints.
type GlobalHandler struct {
	globals      *content.Globals
	eventService *service.EventService
}

// NewGlobalHandler creates a new GlobalHandler.
func NewGlobalHandler(globals *content.Globals, events *service.EventService) *GlobalHandler {
	return &GlobalHandler{globals: globals, eventService: events}
}

// List returns all global content entries.
func (h *GlobalHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.globals.List(r.Context())
	if err != nil {
		writeContentError(w, err, "Failed to list global content")
		return
	}
	WriteSuccess(w, entries, &Meta{Total: int64(len(entries))})
}

// Get returns one global content entry by key.
func (h *GlobalHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.globals.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeContentError(w, err, "Failed to fetch global content")
		return
	}
	WriteSuccess(w, entry, nil)
}

type upsertGlobalRequest struct {
	Content json.RawMessage `json:"content"`
}

// Upsert validates and replaces a global content entry.
func (h *GlobalHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req upsertGlobalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}

	actorID := middleware.GetUserIDPtr(r)
	entry, err := h.globals.Upsert(r.Context(), key, req.Content, actorID)
	if err != nil {
		writeContentError(w, err, "Failed to save global content")
		return
	}

	if err := h.eventService.LogContentEvent(r.Context(), service.EventLevelInfo,
		"Global content updated", actorID, map[string]any{"key": key}); err != nil {
		slog.Error("failed to log content event", "error", err)
	}
	WriteSuccess(w, entry, nil)
}
