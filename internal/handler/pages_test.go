// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPageHandlerList(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/api/pages", nil)
	rec := httptest.NewRecorder()

	app.pageHandler.List(rec, req)
	assertStatus(t, rec, http.StatusOK)

	var resp struct {
		Data []pageView `json:"data"`
		Meta *Meta      `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("expected 2 seeded pages, got %d", len(resp.Data))
	}
}

func TestPageHandlerGet(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/api/pages/1", nil)
	req = requestWithURLParams(req, map[string]string{"pageID": fmt.Sprint(app.homeID)})
	rec := httptest.NewRecorder()

	app.pageHandler.Get(rec, req)
	assertStatus(t, rec, http.StatusOK)

	var resp struct {
		Data pageView `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.Slug != "home" {
		t.Errorf("expected slug home, got %q", resp.Data.Slug)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/api/pages/999", nil)
	req = requestWithURLParams(req, map[string]string{"pageID": "999"})
	rec = httptest.NewRecorder()

	app.pageHandler.Get(rec, req)
	assertStatus(t, rec, http.StatusNotFound)
}

func TestPageHandlerUpdate(t *testing.T) {
	app := newTestApp(t)

	body := `{"title": "About Us", "published": false}`
	req := httptest.NewRequest(http.MethodPut, "/admin/api/pages/2", strings.NewReader(body))
	req = requestWithURLParams(req, map[string]string{"pageID": fmt.Sprint(app.aboutID)})
	rec := httptest.NewRecorder()

	app.pageHandler.Update(rec, req)
	assertStatus(t, rec, http.StatusOK)

	var resp struct {
		Data pageView `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.Title != "About Us" {
		t.Errorf("expected retitled page, got %q", resp.Data.Title)
	}
	if resp.Data.Published {
		t.Error("expected page to be unpublished")
	}
	// Slug is immutable.
	if resp.Data.Slug != "about" {
		t.Errorf("expected slug unchanged, got %q", resp.Data.Slug)
	}
}

func TestPageHandlerUpdateEmptyTitle(t *testing.T) {
	app := newTestApp(t)

	body := `{"title": ""}`
	req := httptest.NewRequest(http.MethodPut, "/admin/api/pages/1", strings.NewReader(body))
	req = requestWithURLParams(req, map[string]string{"pageID": fmt.Sprint(app.homeID)})
	rec := httptest.NewRecorder()

	app.pageHandler.Update(rec, req)
	assertStatus(t, rec, http.StatusUnprocessableEntity)

	resp := decodeError(t, rec)
	if len(resp.Error.Details["title"]) == 0 {
		t.Errorf("expected title failure in details, got %v", resp.Error.Details)
	}
}

func TestPageHandlerUpdateInvalidatesRoute(t *testing.T) {
	app := newTestApp(t)
	app.heroSection(t, app.aboutID, "Old title content", true)

	// Prime the route cache.
	serveReq := httptest.NewRequest(http.MethodGet, "/about", nil)
	serveReq = requestWithURLParams(serveReq, map[string]string{"slug": "about"})
	serveRec := httptest.NewRecorder()
	app.frontendHandler.Page(serveRec, serveReq)
	assertStatus(t, serveRec, http.StatusOK)

	if _, ok := app.routes.Get(context.Background(), "/about"); !ok {
		t.Fatal("expected /about to be cached after render")
	}

	body := `{"title": "Renamed"}`
	req := httptest.NewRequest(http.MethodPut, "/admin/api/pages/2", strings.NewReader(body))
	req = requestWithURLParams(req, map[string]string{"pageID": fmt.Sprint(app.aboutID)})
	rec := httptest.NewRecorder()

	app.pageHandler.Update(rec, req)
	assertStatus(t, rec, http.StatusOK)

	if _, ok := app.routes.Get(context.Background(), "/about"); ok {
		t.Error("expected /about route cache to be invalidated by page update")
	}
}
