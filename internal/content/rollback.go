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
	"sitecms/internal/store"
)

// Engine restores a historical snapshot as the current live state of an
// entity.
//
// Known limitation: the restore path does NOT re-run schema validation. A
// snapshot that was valid when captured is applied as-is, which holds only as
// long as the schema for its type tag has not changed incompatibly since.
// Revalidating would be safer but could make a previously valid snapshot
// unrestorable; this implementation keeps the unconditional-apply behavior.
type Engine struct {
	queries  *store.Queries
	history  *History
	routes   *cache.RouteCache
	homeSlug string
}

// NewEngine creates a rollback Engine.
func NewEngine(db *sql.DB, history *History, routes *cache.RouteCache, homeSlug string) *Engine {
	return &Engine{
		queries:  store.New(db),
		history:  history,
		routes:   routes,
		homeSlug: homeSlug,
	}
}

// Rollback reapplies the snapshot of the history record identified by both
// entityID and recordID. Returns ErrNotFound if no such record (or no such
// live entity) exists and *InvalidSnapshotError if the snapshot is missing
// the fields required to reconstruct state.
//
// The rollback itself is recorded as an `updated` history event so the audit
// trail stays complete across repeated rollbacks.
func (e *Engine) Rollback(ctx context.Context, entityID string, recordID int64, actorID *int64) error {
	record, err := e.history.Get(ctx, recordID, entityID)
	if err != nil {
		return err
	}

	switch record.EntityType {
	case EntityTypeSections:
		return e.rollbackSection(ctx, record, actorID)
	case EntityTypeGlobalContent:
		return e.rollbackGlobal(ctx, record, actorID)
	default:
		return &InvalidSnapshotError{Missing: []string{"entity_type"}}
	}
}

// rollbackSection applies a section snapshot over the live row.
func (e *Engine) rollbackSection(ctx context.Context, record HistoryRecord, actorID *int64) error {
	var snapshot SectionSnapshot
	if err := json.Unmarshal(record.Snapshot, &snapshot); err != nil {
		return &InvalidSnapshotError{Missing: []string{"snapshot"}}
	}

	var missing []string
	if len(snapshot.Content) == 0 {
		missing = append(missing, "content")
	}
	if snapshot.TypeTag == "" {
		missing = append(missing, "type_tag")
	}
	if len(missing) > 0 {
		return &InvalidSnapshotError{Missing: missing}
	}

	// Direct write, bypassing the validator. See the type comment.
	row, err := e.queries.UpdateSection(ctx, store.UpdateSectionParams{
		ID:         record.EntityID,
		TypeTag:    snapshot.TypeTag,
		OrderIndex: snapshot.OrderIndex,
		Content:    string(snapshot.Content),
		Published:  boolToInt(snapshot.Published),
		UpdatedBy:  nullActor(actorID),
		UpdatedAt:  time.Now(),
	})
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("section %s: %w", record.EntityID, ErrNotFound)
		}
		return fmt.Errorf("applying snapshot: %w", err)
	}

	section := sectionFromStore(row)
	if err := e.history.Record(ctx, EntityTypeSections, section.ID, ActionUpdated, snapshotOfSection(section), actorID); err != nil {
		slog.Error("rollback applied but history write failed", "section_id", section.ID, "error", err)
	}

	e.invalidatePage(ctx, section.PageID)

	slog.Info("section rolled back", "section_id", section.ID, "history_id", record.ID)
	return nil
}

// rollbackGlobal applies a global content snapshot via upsert.
func (e *Engine) rollbackGlobal(ctx context.Context, record HistoryRecord, actorID *int64) error {
	var snapshot GlobalSnapshot
	if err := json.Unmarshal(record.Snapshot, &snapshot); err != nil {
		return &InvalidSnapshotError{Missing: []string{"snapshot"}}
	}
	if len(snapshot.Content) == 0 {
		return &InvalidSnapshotError{Missing: []string{"content"}}
	}

	row, err := e.queries.UpsertGlobalContent(ctx, store.UpsertGlobalContentParams{
		Key:       record.EntityID,
		Content:   string(snapshot.Content),
		UpdatedBy: nullActor(actorID),
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("applying snapshot: %w", err)
	}

	entry := globalFromStore(row)
	restored := GlobalSnapshot{Key: entry.Key, Content: entry.Content}
	if err := e.history.Record(ctx, EntityTypeGlobalContent, entry.Key, ActionUpdated, restored, actorID); err != nil {
		slog.Error("rollback applied but history write failed", "key", entry.Key, "error", err)
	}

	// Global blocks render on every page, so every cached route is stale now.
	e.routes.InvalidateAll(ctx)

	slog.Info("global content rolled back", "key", entry.Key, "history_id", record.ID)
	return nil
}

// invalidatePage invalidates the owning page's public and editor routes.
func (e *Engine) invalidatePage(ctx context.Context, pageID int64) {
	page, err := e.queries.GetPageByID(ctx, pageID)
	if err != nil {
		slog.Warn("route invalidation skipped, page lookup failed", "page_id", pageID, "error", err)
		return
	}
	e.routes.Invalidate(ctx, PublicRoute(page.Slug, e.homeSlug))
	e.routes.Invalidate(ctx, fmt.Sprintf("/admin/pages/%d", page.ID))
}
