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

	"github.com/alexedwards/scs/v2"

	"sitecms/internal/auth"
	"sitecms/internal/middleware"
	"sitecms/internal/service"
	"sitecms/internal/store"
)

// AuthHandler handles login and logout.
type AuthHandler struct {
	queries        *store.Queries
	sessionManager *scs.SessionManager
	eventService   *service.EventService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *sql.DB, sm *scs.SessionManager, events *service.EventService) *AuthHandler {
	return &AuthHandler{
		queries:        store.New(db),
		sessionManager: sm,
		eventService:   events,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Login authenticates the user and starts a session. Credentials errors are
// indistinguishable in the response to prevent account enumeration.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		WriteBadRequest(w, "Email and password are required")
		return
	}

	user, err := h.queries.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			slog.Debug("login attempt for non-existent user", "email", req.Email)
			_ = h.eventService.LogAuthEvent(r.Context(), service.EventLevelWarning,
				"Login failed: user not found", nil, map[string]any{"email": req.Email})
		} else {
			slog.Error("database error during login", "error", err)
		}
		WriteUnauthorized(w, "Invalid credentials")
		return
	}

	valid, err := auth.CheckPassword(req.Password, user.PasswordHash)
	if err != nil {
		slog.Error("password check error", "error", err)
		WriteUnauthorized(w, "Invalid credentials")
		return
	}
	if !valid {
		slog.Debug("invalid password attempt", "email", req.Email)
		_ = h.eventService.LogAuthEvent(r.Context(), service.EventLevelWarning,
			"Login failed: invalid password", &user.ID, map[string]any{"email": req.Email})
		WriteUnauthorized(w, "Invalid credentials")
		return
	}

	if err := h.queries.UpdateUserLastLogin(r.Context(), user.ID, time.Now()); err != nil {
		// Not worth failing the login over.
		slog.Error("failed to update last login time", "error", err, "user_id", user.ID)
	}

	// Regenerate the session ID to prevent session fixation.
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		slog.Error("session renewal error", "error", err)
		WriteInternalError(w, "Failed to start session")
		return
	}
	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	slog.Info("user logged in", "user_id", user.ID, "email", user.Email)
	_ = h.eventService.LogAuthEvent(r.Context(), service.EventLevelInfo,
		"User logged in", &user.ID, map[string]any{"email": user.Email})

	WriteSuccess(w, loginResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}, nil)
}

// Logout destroys the session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := h.sessionManager.GetInt64(r.Context(), middleware.SessionKeyUserID)

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("session destroy error", "error", err)
		WriteInternalError(w, "Failed to end session")
		return
	}

	if userID != 0 {
		slog.Info("user logged out", "user_id", userID)
		_ = h.eventService.LogAuthEvent(r.Context(), service.EventLevelInfo, "User logged out", &userID, nil)
	}

	WriteSuccess(w, map[string]string{"status": "logged_out"}, nil)
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Not authenticated")
		return
	}
	WriteSuccess(w, loginResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}, nil)
}
