// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"sitecms/internal/cache"
	"sitecms/internal/schema"
	"sitecms/internal/store"
)

// testEnv bundles the content services over a shared in-memory database.
type testEnv struct {
	db       *sql.DB
	queries  *store.Queries
	sections *Sections
	globals  *Globals
	history  *History
	engine   *Engine
	routes   *cache.RouteCache
	homeID   int64
	aboutID  int64
}

// newTestEnv creates an in-memory SQLite database with the content schema,
// two seeded pages, and the full set of content services.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// The in-memory database lives on a single connection.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	schemaSQL := `
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
	`
	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("failed to create test schema: %v", err)
	}

	backend := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = backend.Close() })
	routes := cache.NewRouteCache(backend, time.Minute)

	history := NewHistory(db)

	env := &testEnv{
		db:       db,
		queries:  store.New(db),
		sections: NewSections(db, schema.SectionDefaults(), history, routes, "home"),
		globals:  NewGlobals(db, schema.GlobalDefaults(), history, routes),
		history:  history,
		engine:   NewEngine(db, history, routes, "home"),
		routes:   routes,
	}

	env.homeID = env.createPage(t, "home", "Home")
	env.aboutID = env.createPage(t, "about", "About")

	return env
}

// createPage seeds a page row and returns its id.
func (env *testEnv) createPage(t *testing.T, slug, title string) int64 {
	t.Helper()

	now := time.Now()
	page, err := env.queries.CreatePage(context.Background(), store.CreatePageParams{
		Slug:      slug,
		Title:     title,
		Published: 1,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("failed to create test page %q: %v", slug, err)
	}
	return page.ID
}

// mustCreateSection creates a section or fails the test.
func (env *testEnv) mustCreateSection(t *testing.T, p CreateSectionParams) Section {
	t.Helper()

	section, err := env.sections.Create(context.Background(), p)
	if err != nil {
		t.Fatalf("failed to create test section: %v", err)
	}
	return section
}

// countSections returns the number of rows in the sections table.
func (env *testEnv) countSections(t *testing.T) int {
	t.Helper()

	var count int
	if err := env.db.QueryRow(`SELECT COUNT(*) FROM sections`).Scan(&count); err != nil {
		t.Fatalf("failed to count sections: %v", err)
	}
	return count
}

// countHistory returns the number of rows in the history table.
func (env *testEnv) countHistory(t *testing.T) int {
	t.Helper()

	var count int
	if err := env.db.QueryRow(`SELECT COUNT(*) FROM history`).Scan(&count); err != nil {
		t.Fatalf("failed to count history: %v", err)
	}
	return count
}
