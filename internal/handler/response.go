// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the HTTP handlers: the public site, the public
// read API and the authenticated CMS API.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"sitecms/internal/content"
	"sitecms/internal/schema"
)

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains pagination and other metadata.
type Meta struct {
	Total   int64 `json:"total,omitempty"`
	Page    int   `json:"page,omitempty"`
	PerPage int   `json:"per_page,omitempty"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information. Details carries every failure
// reason per field, not just the first one.
type ErrorDetail struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string][]string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: ErrorDetail{
		Code:    code,
		Message: message,
		Details: details,
	}})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, nil)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response carrying
// the complete field failure map.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string][]string) {
	WriteError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", fieldErrors)
}

// writeContentError maps content layer errors to API responses: schema
// failures to 422, missing entities to 404, unreplayable snapshots to a
// distinct 422 code, everything else to a logged 500.
func writeContentError(w http.ResponseWriter, err error, fallbackMsg string) {
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		WriteValidationError(w, verr.Fields)
		return
	}

	var snapErr *content.InvalidSnapshotError
	if errors.As(err, &snapErr) {
		WriteError(w, http.StatusUnprocessableEntity, "invalid_snapshot",
			"Snapshot cannot be restored", map[string][]string{"snapshot": snapErr.Missing})
		return
	}

	if errors.Is(err, content.ErrNotFound) {
		WriteNotFound(w, "Not found")
		return
	}

	slog.Error(fallbackMsg, "error", err)
	WriteInternalError(w, fallbackMsg)
}
