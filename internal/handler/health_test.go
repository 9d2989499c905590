// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthPublic(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	app.healthHandler.Health(rec, req)
	assertStatus(t, rec, http.StatusOK)

	// Anonymous callers only see the status word, no checks or system info.
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "healthy" {
		t.Errorf("expected healthy status, got %v", resp["status"])
	}
	if _, ok := resp["checks"]; ok {
		t.Error("anonymous health response must not include check details")
	}
}

func TestHealthAuthenticated(t *testing.T) {
	app := newTestApp(t)
	user := app.createTestUser(t, "admin@example.com", "admin", "x")

	req := httptest.NewRequest(http.MethodGet, "/healthz?verbose=true", nil)
	req = requestWithUser(req, user)
	rec := httptest.NewRecorder()

	app.healthHandler.Health(rec, req)
	assertStatus(t, rec, http.StatusOK)

	var resp HealthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Checks["database"].Status != "healthy" {
		t.Errorf("expected healthy database check, got %+v", resp.Checks)
	}
	if resp.System == nil || resp.System.GoVersion == "" {
		t.Error("expected system info with verbose=true")
	}
}

func TestHealthLiveness(t *testing.T) {
	app := newTestApp(t)

	rec := httptest.NewRecorder()
	app.healthHandler.Liveness(rec, httptest.NewRequest(http.MethodGet, "/healthz/live", nil))
	assertStatus(t, rec, http.StatusOK)
}

func TestHealthReadiness(t *testing.T) {
	app := newTestApp(t)

	rec := httptest.NewRecorder()
	app.healthHandler.Readiness(rec, httptest.NewRequest(http.MethodGet, "/healthz/ready", nil))
	assertStatus(t, rec, http.StatusOK)
}
