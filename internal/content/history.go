// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"sitecms/internal/store"
)

// Entity type tags for history records.
const (
	EntityTypeSections      = "sections"
	EntityTypeGlobalContent = "global_content"
)

// History actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// History limits for display and rollback candidate selection.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 100
)

// HistoryRecord is an immutable audit record: a full snapshot of an entity's
// state at the time of a mutation.
type HistoryRecord struct {
	ID         int64           `json:"id"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Action     string          `json:"action"`
	Snapshot   json.RawMessage `json:"snapshot"`
	ActorID    *int64          `json:"actor_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// historyFromStore converts a store row to the domain type.
func historyFromStore(h store.HistoryRecord) HistoryRecord {
	rec := HistoryRecord{
		ID:         h.ID,
		EntityType: h.EntityType,
		EntityID:   h.EntityID,
		Action:     h.Action,
		Snapshot:   json.RawMessage(h.Snapshot),
		CreatedAt:  h.CreatedAt,
	}
	if h.ActorID.Valid {
		rec.ActorID = &h.ActorID.Int64
	}
	return rec
}

// History is the append-only audit log. Records are written on every content
// mutation and never updated or deleted: whatever the mutation path does, an
// admin can always see what existed before.
type History struct {
	queries *store.Queries
}

// NewHistory creates a History service.
func NewHistory(db *sql.DB) *History {
	return &History{queries: store.New(db)}
}

// Record appends a history record. The snapshot is marshaled as-is; a nil
// actorID marks a system action.
func (h *History) Record(ctx context.Context, entityType, entityID, action string, snapshot any, actorID *int64) error {
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}

	var actor sql.NullInt64
	if actorID != nil {
		actor = sql.NullInt64{Int64: *actorID, Valid: true}
	}

	_, err = h.queries.CreateHistory(ctx, store.CreateHistoryParams{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Snapshot:   string(snapshotJSON),
		ActorID:    actor,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("recording history: %w", err)
	}
	return nil
}

// ListForEntity returns history records for an entity, newest first. The
// limit defaults to DefaultHistoryLimit and is capped at MaxHistoryLimit.
func (h *History) ListForEntity(ctx context.Context, entityType, entityID string, limit int) ([]HistoryRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	rows, err := h.queries.ListHistoryForEntity(ctx, store.ListHistoryForEntityParams{
		EntityType: entityType,
		EntityID:   entityID,
		Limit:      int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}

	records := make([]HistoryRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, historyFromStore(row))
	}
	return records, nil
}

// Get fetches a history record matching both the record id and the entity id.
// Requiring both guards against cross-entity id confusion.
func (h *History) Get(ctx context.Context, recordID int64, entityID string) (HistoryRecord, error) {
	row, err := h.queries.GetHistoryRecord(ctx, store.GetHistoryRecordParams{
		ID:       recordID,
		EntityID: entityID,
	})
	if err != nil {
		if err == sql.ErrNoRows {
			return HistoryRecord{}, ErrNotFound
		}
		return HistoryRecord{}, fmt.Errorf("fetching history record: %w", err)
	}
	return historyFromStore(row), nil
}
