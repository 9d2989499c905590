// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"sitecms/internal/content"
	"sitecms/internal/middleware"
	"sitecms/internal/service"
)

// HistoryHandler handles the audit trail and rollback endpoints.
type HistoryHandler struct {
	history      *content.History
	engine       *content.Engine
	eventService *service.EventService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(history *content.History, engine *content.Engine, events *service.EventService) *HistoryHandler {
	return &HistoryHandler{history: history, engine: engine, eventService: events}
}

// entityTypeParam validates the {entityType} URL parameter.
func entityTypeParam(r *http.Request) (string, bool) {
	entityType := chi.URLParam(r, "entityType")
	switch entityType {
	case content.EntityTypeSections, content.EntityTypeGlobalContent:
		return entityType, true
	default:
		return "", false
	}
}

// List returns an entity's history, newest first. The optional `limit` query
// parameter is clamped server-side.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	entityType, ok := entityTypeParam(r)
	if !ok {
		WriteBadRequest(w, "Unknown entity type")
		return
	}
	entityID := chi.URLParam(r, "entityID")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			WriteBadRequest(w, "Invalid limit")
			return
		}
		limit = parsed
	}

	records, err := h.history.ListForEntity(r.Context(), entityType, entityID, limit)
	if err != nil {
		writeContentError(w, err, "Failed to list history")
		return
	}
	WriteSuccess(w, records, &Meta{Total: int64(len(records))})
}

// Rollback restores the snapshot of one history record as the entity's
// current state.
func (h *HistoryHandler) Rollback(w http.ResponseWriter, r *http.Request) {
	entityID := chi.URLParam(r, "entityID")
	recordID, err := strconv.ParseInt(chi.URLParam(r, "recordID"), 10, 64)
	if err != nil {
		WriteBadRequest(w, "Invalid history record ID")
		return
	}

	actorID := middleware.GetUserIDPtr(r)
	if err := h.engine.Rollback(r.Context(), entityID, recordID, actorID); err != nil {
		writeContentError(w, err, "Failed to roll back")
		return
	}

	if err := h.eventService.LogContentEvent(r.Context(), service.EventLevelInfo,
		"Content rolled back", actorID,
		map[string]any{"entity_id": entityID, "history_id": recordID}); err != nil {
		slog.Error("failed to log content event", "error", err)
	}
	WriteSuccess(w, map[string]any{"status": "rolled_back", "history_id": recordID}, nil)
}
