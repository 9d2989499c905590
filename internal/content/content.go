// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content implements the section-based content model: the section
// store, the global content store, the append-only history log, and the
// rollback engine. Every mutation follows the same sequence of validate,
// persist, snapshot, invalidate, with each step's success gating the next.
//
// Concurrency contract: last-write-wins. There is no optimistic concurrency
// token; concurrent edits to the same entity are not serialized beyond the
// store's single-row atomicity.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"sitecms/internal/store"
)

// ErrNotFound indicates a referenced entity or history record is absent.
var ErrNotFound = errors.New("not found")

// InvalidSnapshotError indicates a history record's snapshot cannot be
// reapplied because required fields are missing. Distinct from ErrNotFound so
// operators can tell "no history" from "corrupt history" apart.
type InvalidSnapshotError struct {
	Missing []string
}

// Error implements the error interface.
func (e *InvalidSnapshotError) Error() string {
	return fmt.Sprintf("invalid snapshot: missing %s", strings.Join(e.Missing, ", "))
}

// Section is a typed, ordered, schema-validated content block belonging to a
// page. Content is an opaque validated JSON document whose shape is selected
// by TypeTag.
type Section struct {
	ID         string          `json:"id"`
	PageID     int64           `json:"page_id"`
	TypeTag    string          `json:"type_tag"`
	OrderIndex int64           `json:"order_index"`
	Content    json.RawMessage `json:"content"`
	Published  bool            `json:"published"`
	CreatedBy  *int64          `json:"created_by,omitempty"`
	UpdatedBy  *int64          `json:"updated_by,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// sectionFromStore converts a store row to the domain type.
func sectionFromStore(s store.Section) Section {
	sec := Section{
		ID:         s.ID,
		PageID:     s.PageID,
		TypeTag:    s.TypeTag,
		OrderIndex: s.OrderIndex,
		Content:    json.RawMessage(s.Content),
		Published:  s.Published != 0,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
	if s.CreatedBy.Valid {
		sec.CreatedBy = &s.CreatedBy.Int64
	}
	if s.UpdatedBy.Valid {
		sec.UpdatedBy = &s.UpdatedBy.Int64
	}
	return sec
}

// sectionsFromStore converts a slice of store rows.
func sectionsFromStore(rows []store.Section) []Section {
	sections := make([]Section, 0, len(rows))
	for _, row := range rows {
		sections = append(sections, sectionFromStore(row))
	}
	return sections
}

// GlobalEntry is a singleton, page-independent content block keyed by a fixed
// string (navbar, footer, etc.).
type GlobalEntry struct {
	Key       string          `json:"key"`
	Content   json.RawMessage `json:"content"`
	UpdatedBy *int64          `json:"updated_by,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// globalFromStore converts a store row to the domain type.
func globalFromStore(g store.GlobalContent) GlobalEntry {
	entry := GlobalEntry{
		Key:       g.Key,
		Content:   json.RawMessage(g.Content),
		UpdatedAt: g.UpdatedAt,
	}
	if g.UpdatedBy.Valid {
		entry.UpdatedBy = &g.UpdatedBy.Int64
	}
	return entry
}

// SectionSnapshot is the full section state captured in a history record.
type SectionSnapshot struct {
	PageID     int64           `json:"page_id"`
	TypeTag    string          `json:"type_tag"`
	OrderIndex int64           `json:"order_index"`
	Content    json.RawMessage `json:"content"`
	Published  bool            `json:"published"`
}

// GlobalSnapshot is the full global content state captured in a history record.
type GlobalSnapshot struct {
	Key     string          `json:"key"`
	Content json.RawMessage `json:"content"`
}

// snapshotOfSection captures a section's state for the history log.
func snapshotOfSection(s Section) SectionSnapshot {
	return SectionSnapshot{
		PageID:     s.PageID,
		TypeTag:    s.TypeTag,
		OrderIndex: s.OrderIndex,
		Content:    s.Content,
		Published:  s.Published,
	}
}
