// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"sitecms/internal/service"
)

// EventHandler exposes the event log to admins.
type EventHandler struct {
	eventService *service.EventService
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(events *service.EventService) *EventHandler {
	return &EventHandler{eventService: events}
}

// List returns event log entries newest first, paginated via `page` and
// `per_page`.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			WriteBadRequest(w, "Invalid page")
			return
		}
		page = parsed
	}
	perPage := 50
	if raw := r.URL.Query().Get("per_page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			WriteBadRequest(w, "Invalid per_page")
			return
		}
		perPage = parsed
	}

	events, err := h.eventService.ListEvents(r.Context(), int64(perPage), int64((page-1)*perPage))
	if err != nil {
		slog.Error("failed to list events", "error", err)
		WriteInternalError(w, "Failed to list events")
		return
	}

	total, err := h.eventService.CountEvents(r.Context())
	if err != nil {
		slog.Error("failed to count events", "error", err)
		WriteInternalError(w, "Failed to count events")
		return
	}

	WriteSuccess(w, events, &Meta{Total: total, Page: page, PerPage: perPage})
}
