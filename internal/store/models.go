// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

// User is an authenticated CMS principal.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         string
	Name         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  sql.NullTime
}

// Page is a routable site page owning an ordered list of sections.
type Page struct {
	ID        int64
	Slug      string
	Title     string
	Published int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Section is a typed, ordered content block belonging to a page.
// Content is a JSON document whose shape is determined by TypeTag.
type Section struct {
	ID         string
	PageID     int64
	TypeTag    string
	OrderIndex int64
	Content    string
	Published  int64
	CreatedBy  sql.NullInt64
	UpdatedBy  sql.NullInt64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// GlobalContent is a singleton site-wide content block keyed by a fixed string.
type GlobalContent struct {
	Key       string
	Content   string
	UpdatedBy sql.NullInt64
	UpdatedAt time.Time
}

// HistoryRecord is an immutable snapshot of an entity's state at mutation time.
type HistoryRecord struct {
	ID         int64
	EntityType string
	EntityID   string
	Action     string
	Snapshot   string
	ActorID    sql.NullInt64
	CreatedAt  time.Time
}

// Event is an operational event log entry.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	Metadata  string // JSON string
	CreatedAt time.Time
}

// Config is a site configuration key/value pair.
type Config struct {
	ID        int64
	Key       string
	Value     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
