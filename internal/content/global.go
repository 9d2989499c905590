// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"sitecms/internal/cache"
	"sitecms/internal/schema"
	"sitecms/internal/store"
)

// Globals is the global content store: singleton site-wide content blocks
// (navbar, footer, ...) keyed by fixed strings. Same validation discipline
// as sections, but no ordering, no page scoping, no soft delete: upsert only.
type Globals struct {
	queries  *store.Queries
	registry *schema.Registry
	history  *History
	routes   *cache.RouteCache
}

// NewGlobals creates a Globals store.
func NewGlobals(db *sql.DB, registry *schema.Registry, history *History, routes *cache.RouteCache) *Globals {
	return &Globals{
		queries:  store.New(db),
		registry: registry,
		history:  history,
		routes:   routes,
	}
}

// Upsert validates content against the schema registered for key, then
// inserts or replaces the entry. History is shared with the generic log
// under entity type "global_content"; the action distinguishes first
// insert from replacement.
func (g *Globals) Upsert(ctx context.Context, key string, content json.RawMessage, actorID *int64) (GlobalEntry, error) {
	validated, verr := g.registry.Validate(key, content)
	if verr != nil {
		return GlobalEntry{}, verr
	}

	action := ActionUpdated
	if _, err := g.queries.GetGlobalContent(ctx, key); err != nil {
		if err != sql.ErrNoRows {
			return GlobalEntry{}, fmt.Errorf("fetching global content: %w", err)
		}
		action = ActionCreated
	}

	row, err := g.queries.UpsertGlobalContent(ctx, store.UpsertGlobalContentParams{
		Key:       key,
		Content:   string(validated),
		UpdatedBy: nullActor(actorID),
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return GlobalEntry{}, fmt.Errorf("persisting global content: %w", err)
	}

	entry := globalFromStore(row)
	snapshot := GlobalSnapshot{Key: entry.Key, Content: entry.Content}
	if err := g.history.Record(ctx, EntityTypeGlobalContent, key, action, snapshot, actorID); err != nil {
		slog.Error("global content persisted but history write failed", "key", key, "error", err)
	}

	// Global blocks render on every page, so every cached route is stale now.
	g.routes.InvalidateAll(ctx)

	slog.Info("global content upserted", "key", key, "action", action)
	return entry, nil
}

// Get returns a global content entry by key.
func (g *Globals) Get(ctx context.Context, key string) (GlobalEntry, error) {
	row, err := g.queries.GetGlobalContent(ctx, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return GlobalEntry{}, fmt.Errorf("global content %q: %w", key, ErrNotFound)
		}
		return GlobalEntry{}, fmt.Errorf("fetching global content: %w", err)
	}
	return globalFromStore(row), nil
}

// List returns all global content entries ordered by key.
func (g *Globals) List(ctx context.Context) ([]GlobalEntry, error) {
	rows, err := g.queries.ListGlobalContent(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing global content: %w", err)
	}

	entries := make([]GlobalEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, globalFromStore(row))
	}
	return entries, nil
}
