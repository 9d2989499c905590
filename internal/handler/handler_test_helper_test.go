// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	_ "modernc.org/sqlite"

	"sitecms/internal/cache"
	"sitecms/internal/content"
	"sitecms/internal/middleware"
	"sitecms/internal/render"
	"sitecms/internal/schema"
	"sitecms/internal/service"
	"sitecms/internal/store"
)

// testApp bundles the services and handlers over a shared in-memory
// database.
type testApp struct {
	db       *sql.DB
	queries  *store.Queries
	sm       *scs.SessionManager
	routes   *cache.RouteCache
	sections *content.Sections
	globals  *content.Globals
	history  *content.History
	engine   *content.Engine
	events   *service.EventService

	sectionHandler  *SectionHandler
	globalHandler   *GlobalHandler
	historyHandler  *HistoryHandler
	pageHandler     *PageHandler
	frontendHandler *FrontendHandler
	eventHandler    *EventHandler
	authHandler     *AuthHandler
	healthHandler   *HealthHandler

	homeID  int64
	aboutID int64
}

// testDB creates an in-memory SQLite database with the required schema.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// The in-memory database lives on a single connection.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	schemaSQL := `
		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'editor',
			name TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_login_at DATETIME
		);
		CREATE INDEX idx_users_email ON users(email);

		CREATE TABLE sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);

		CREATE TABLE pages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			slug TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			published BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE sections (
			id TEXT PRIMARY KEY,
			page_id INTEGER NOT NULL,
			type_tag TEXT NOT NULL,
			order_index INTEGER NOT NULL DEFAULT 0,
			content TEXT NOT NULL DEFAULT '{}',
			published BOOLEAN NOT NULL DEFAULT 0,
			created_by INTEGER,
			updated_by INTEGER,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX idx_sections_page_order ON sections(page_id, order_index);

		CREATE TABLE global_content (
			key TEXT PRIMARY KEY,
			content TEXT NOT NULL DEFAULT '{}',
			updated_by INTEGER,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			entity_type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			action TEXT NOT NULL,
			snapshot TEXT NOT NULL DEFAULT '{}',
			actor_id INTEGER,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX idx_history_entity ON history(entity_type, entity_id, created_at DESC);

		CREATE TABLE events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			level TEXT NOT NULL DEFAULT 'info',
			category TEXT NOT NULL DEFAULT 'system',
			message TEXT NOT NULL,
			user_id INTEGER,
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX idx_events_created_at ON events(created_at DESC);
	`
	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("failed to create test schema: %v", err)
	}

	return db
}

// testLayoutFS is a minimal layout for rendering public pages in tests.
var testLayoutFS = fstest.MapFS{
	"templates/layout.html": &fstest.MapFile{Data: []byte(`<!DOCTYPE html>
<html><head><title>{{.Title}} - {{.SiteName}}</title></head>
<body>
<nav>{{.Navbar.LogoText}}{{range .Navbar.Links}} <a href="{{.URL}}">{{.Label}}</a>{{end}}</nav>
<main>{{range .Sections}}{{.}}{{end}}</main>
<footer>{{.Footer.Copyright}}</footer>
</body></html>`)},
}

// newTestApp creates the full handler stack over an in-memory database with
// two seeded pages.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db := testDB(t)
	queries := store.New(db)

	backend := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = backend.Close() })
	routes := cache.NewRouteCache(backend, time.Minute)

	history := content.NewHistory(db)
	sections := content.NewSections(db, schema.SectionDefaults(), history, routes, "home")
	globals := content.NewGlobals(db, schema.GlobalDefaults(), history, routes)
	engine := content.NewEngine(db, history, routes, "home")
	events := service.NewEventService(db)

	renderer, err := render.New(render.Config{
		TemplatesFS: testLayoutFS,
		Sections:    render.Defaults(),
		SiteName:    "Test Site",
	})
	if err != nil {
		t.Fatalf("failed to create renderer: %v", err)
	}

	sm := scs.New()
	sm.Lifetime = 24 * time.Hour

	app := &testApp{
		db:       db,
		queries:  queries,
		sm:       sm,
		routes:   routes,
		sections: sections,
		globals:  globals,
		history:  history,
		engine:   engine,
		events:   events,

		sectionHandler:  NewSectionHandler(sections, events),
		globalHandler:   NewGlobalHandler(globals, events),
		historyHandler:  NewHistoryHandler(history, engine, events),
		pageHandler:     NewPageHandler(db, routes, "home"),
		frontendHandler: NewFrontendHandler(db, sections, globals, renderer, routes, "home"),
		eventHandler:    NewEventHandler(events),
		authHandler:     NewAuthHandler(db, sm, events),
		healthHandler:   NewHealthHandler(db),
	}

	app.homeID = app.createPage(t, "home", "Home", true)
	app.aboutID = app.createPage(t, "about", "About", true)

	return app
}

// createPage seeds a page row and returns its id.
func (app *testApp) createPage(t *testing.T, slug, title string, published bool) int64 {
	t.Helper()

	var pub int64
	if published {
		pub = 1
	}
	now := time.Now()
	page, err := app.queries.CreatePage(context.Background(), store.CreatePageParams{
		Slug:      slug,
		Title:     title,
		Published: pub,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("failed to create test page %q: %v", slug, err)
	}
	return page.ID
}

// createSection creates a section through the content service.
func (app *testApp) createSection(t *testing.T, p content.CreateSectionParams) content.Section {
	t.Helper()

	section, err := app.sections.Create(context.Background(), p)
	if err != nil {
		t.Fatalf("failed to create test section: %v", err)
	}
	return section
}

// createTestUser inserts a user row directly.
func (app *testApp) createTestUser(t *testing.T, email, role, passwordHash string) store.User {
	t.Helper()

	now := time.Now()
	result, err := app.db.Exec(
		`INSERT INTO users (email, password_hash, role, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		email, passwordHash, role, "Test User", now, now,
	)
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	id, _ := result.LastInsertId()
	return store.User{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Name:         "Test User",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// requestWithURLParams adds chi URL parameters to a request.
func requestWithURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// requestWithUser puts an authenticated user into the request context.
func requestWithUser(r *http.Request, user store.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.ContextKeyUser, user))
}

// requestWithSession wraps a request with loaded session context.
func requestWithSession(t *testing.T, sm *scs.SessionManager, r *http.Request) *http.Request {
	t.Helper()

	ctx, err := sm.Load(r.Context(), "")
	if err != nil {
		t.Fatalf("failed to load session: %v", err)
	}
	return r.WithContext(ctx)
}

// assertStatus fails the test if got != want.
func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()

	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

// decodeError decodes a standard error response body.
func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp
}
