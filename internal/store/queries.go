// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is the subset of *sql.DB / *sql.Tx used by the query layer.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries provides typed access to the database.
type Queries struct {
	db DBTX
}

// New creates a Queries instance backed by the given database or transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries instance bound to the given transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// --- Users ---

// CreateUserParams holds parameters for CreateUser.
type CreateUserParams struct {
	Email        string
	PasswordHash string
	Role         string
	Name         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUser inserts a new user and returns it.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash, role, name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING id, email, password_hash, role, name, created_at, updated_at, last_login_at`,
		arg.Email, arg.PasswordHash, arg.Role, arg.Name, arg.CreatedAt, arg.UpdatedAt,
	)
	return scanUser(row)
}

// GetUserByID fetches a user by primary key.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, role, name, created_at, updated_at, last_login_at
		 FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail fetches a user by email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, role, name, created_at, updated_at, last_login_at
		 FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// CountUsers returns the total number of users.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

// UpdateUserLastLogin records the time of a successful login.
func (q *Queries) UpdateUserLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := q.db.ExecContext(ctx, `UPDATE users SET last_login_at = ? WHERE id = ?`, at, id)
	return err
}

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Name,
		&u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt)
	return u, err
}

// --- Pages ---

// GetPageByID fetches a page by primary key.
func (q *Queries) GetPageByID(ctx context.Context, id int64) (Page, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, slug, title, published, created_at, updated_at FROM pages WHERE id = ?`, id)
	return scanPage(row)
}

// GetPageBySlug fetches a page by slug.
func (q *Queries) GetPageBySlug(ctx context.Context, slug string) (Page, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, slug, title, published, created_at, updated_at FROM pages WHERE slug = ?`, slug)
	return scanPage(row)
}

// ListPages returns all pages ordered by id.
func (q *Queries) ListPages(ctx context.Context) ([]Page, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, slug, title, published, created_at, updated_at FROM pages ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []Page
	for rows.Next() {
		var p Page
		if err := rows.Scan(&p.ID, &p.Slug, &p.Title, &p.Published, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// UpdatePageParams holds parameters for UpdatePage.
type UpdatePageParams struct {
	ID        int64
	Title     string
	Published int64
	UpdatedAt time.Time
}

// UpdatePage updates a page's title and published flag.
func (q *Queries) UpdatePage(ctx context.Context, arg UpdatePageParams) (Page, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE pages SET title = ?, published = ?, updated_at = ? WHERE id = ?
		 RETURNING id, slug, title, published, created_at, updated_at`,
		arg.Title, arg.Published, arg.UpdatedAt, arg.ID)
	return scanPage(row)
}

// CreatePageParams holds parameters for CreatePage. Used by seeding only:
// the page set is fixed and pages are not creatable through the CMS.
type CreatePageParams struct {
	Slug      string
	Title     string
	Published int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreatePage inserts a new page and returns it.
func (q *Queries) CreatePage(ctx context.Context, arg CreatePageParams) (Page, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO pages (slug, title, published, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING id, slug, title, published, created_at, updated_at`,
		arg.Slug, arg.Title, arg.Published, arg.CreatedAt, arg.UpdatedAt)
	return scanPage(row)
}

// CountPages returns the total number of pages.
func (q *Queries) CountPages(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages`).Scan(&count)
	return count, err
}

func scanPage(row *sql.Row) (Page, error) {
	var p Page
	err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Published, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// --- Sections ---

const sectionColumns = `id, page_id, type_tag, order_index, content, published,
created_by, updated_by, created_at, updated_at`

// CreateSectionParams holds parameters for CreateSection.
type CreateSectionParams struct {
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

// CreateSection inserts a new section and returns it.
func (q *Queries) CreateSection(ctx context.Context, arg CreateSectionParams) (Section, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO sections (id, page_id, type_tag, order_index, content, published,
		 created_by, updated_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING `+sectionColumns,
		arg.ID, arg.PageID, arg.TypeTag, arg.OrderIndex, arg.Content, arg.Published,
		arg.CreatedBy, arg.UpdatedBy, arg.CreatedAt, arg.UpdatedAt)
	return scanSection(row)
}

// GetSectionByID fetches a section by its opaque id.
func (q *Queries) GetSectionByID(ctx context.Context, id string) (Section, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+sectionColumns+` FROM sections WHERE id = ?`, id)
	return scanSection(row)
}

// ListSectionsByPage returns all sections of a page ordered by order_index.
// Used by the CMS editor: unpublished sections are included.
func (q *Queries) ListSectionsByPage(ctx context.Context, pageID int64) ([]Section, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+sectionColumns+` FROM sections WHERE page_id = ? ORDER BY order_index, id`, pageID)
	if err != nil {
		return nil, err
	}
	return collectSections(rows)
}

// ListPublishedSectionsByPage returns the published sections of a page ordered
// by order_index. This is the public read path.
func (q *Queries) ListPublishedSectionsByPage(ctx context.Context, pageID int64) ([]Section, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+sectionColumns+` FROM sections
		 WHERE page_id = ? AND published = 1 ORDER BY order_index, id`, pageID)
	if err != nil {
		return nil, err
	}
	return collectSections(rows)
}

// UpdateSectionParams holds parameters for UpdateSection. All fields are
// written; callers merge sparse patches against the current row first.
type UpdateSectionParams struct {
	ID         string
	TypeTag    string
	OrderIndex int64
	Content    string
	Published  int64
	UpdatedBy  sql.NullInt64
	UpdatedAt  time.Time
}

// UpdateSection writes the full mutable state of a section and returns it.
func (q *Queries) UpdateSection(ctx context.Context, arg UpdateSectionParams) (Section, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE sections SET type_tag = ?, order_index = ?, content = ?, published = ?,
		 updated_by = ?, updated_at = ?
		 WHERE id = ?
		 RETURNING `+sectionColumns,
		arg.TypeTag, arg.OrderIndex, arg.Content, arg.Published,
		arg.UpdatedBy, arg.UpdatedAt, arg.ID)
	return scanSection(row)
}

// DeleteSection removes a section row. History rows referencing it persist.
func (q *Queries) DeleteSection(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM sections WHERE id = ?`, id)
	return err
}

// UpdateSectionOrderParams holds parameters for UpdateSectionOrder.
type UpdateSectionOrderParams struct {
	ID         string
	PageID     int64
	OrderIndex int64
}

// UpdateSectionOrder sets a section's order_index, scoped to the owning page.
// A section id belonging to a different page matches no row and is a no-op.
func (q *Queries) UpdateSectionOrder(ctx context.Context, arg UpdateSectionOrderParams) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE sections SET order_index = ? WHERE id = ? AND page_id = ?`,
		arg.OrderIndex, arg.ID, arg.PageID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountSectionsByPage returns the number of sections on a page.
func (q *Queries) CountSectionsByPage(ctx context.Context, pageID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sections WHERE page_id = ?`, pageID).Scan(&count)
	return count, err
}

func scanSection(row *sql.Row) (Section, error) {
	var s Section
	err := row.Scan(&s.ID, &s.PageID, &s.TypeTag, &s.OrderIndex, &s.Content, &s.Published,
		&s.CreatedBy, &s.UpdatedBy, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func collectSections(rows *sql.Rows) ([]Section, error) {
	defer rows.Close()

	var sections []Section
	for rows.Next() {
		var s Section
		if err := rows.Scan(&s.ID, &s.PageID, &s.TypeTag, &s.OrderIndex, &s.Content, &s.Published,
			&s.CreatedBy, &s.UpdatedBy, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

// --- Global content ---

// UpsertGlobalContentParams holds parameters for UpsertGlobalContent.
type UpsertGlobalContentParams struct {
	Key       string
	Content   string
	UpdatedBy sql.NullInt64
	UpdatedAt time.Time
}

// UpsertGlobalContent inserts or replaces a global content entry by key.
func (q *Queries) UpsertGlobalContent(ctx context.Context, arg UpsertGlobalContentParams) (GlobalContent, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO global_content (key, content, updated_by, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET content = excluded.content,
		 updated_by = excluded.updated_by, updated_at = excluded.updated_at
		 RETURNING key, content, updated_by, updated_at`,
		arg.Key, arg.Content, arg.UpdatedBy, arg.UpdatedAt)

	var g GlobalContent
	err := row.Scan(&g.Key, &g.Content, &g.UpdatedBy, &g.UpdatedAt)
	return g, err
}

// GetGlobalContent fetches a global content entry by key.
func (q *Queries) GetGlobalContent(ctx context.Context, key string) (GlobalContent, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT key, content, updated_by, updated_at FROM global_content WHERE key = ?`, key)

	var g GlobalContent
	err := row.Scan(&g.Key, &g.Content, &g.UpdatedBy, &g.UpdatedAt)
	return g, err
}

// ListGlobalContent returns all global content entries ordered by key.
func (q *Queries) ListGlobalContent(ctx context.Context) ([]GlobalContent, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT key, content, updated_by, updated_at FROM global_content ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []GlobalContent
	for rows.Next() {
		var g GlobalContent
		if err := rows.Scan(&g.Key, &g.Content, &g.UpdatedBy, &g.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, g)
	}
	return entries, rows.Err()
}

// --- History ---

// CreateHistoryParams holds parameters for CreateHistory.
type CreateHistoryParams struct {
	EntityType string
	EntityID   string
	Action     string
	Snapshot   string
	ActorID    sql.NullInt64
	CreatedAt  time.Time
}

// CreateHistory appends an immutable history record. There is deliberately no
// corresponding update or delete query: the log is write-once, read-many.
func (q *Queries) CreateHistory(ctx context.Context, arg CreateHistoryParams) (HistoryRecord, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO history (entity_type, entity_id, action, snapshot, actor_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING id, entity_type, entity_id, action, snapshot, actor_id, created_at`,
		arg.EntityType, arg.EntityID, arg.Action, arg.Snapshot, arg.ActorID, arg.CreatedAt)
	return scanHistory(row)
}

// GetHistoryRecordParams holds parameters for GetHistoryRecord.
type GetHistoryRecordParams struct {
	ID       int64
	EntityID string
}

// GetHistoryRecord fetches a history record matching both the record id and
// the entity id, guarding against cross-entity id confusion.
func (q *Queries) GetHistoryRecord(ctx context.Context, arg GetHistoryRecordParams) (HistoryRecord, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, entity_type, entity_id, action, snapshot, actor_id, created_at
		 FROM history WHERE id = ? AND entity_id = ?`, arg.ID, arg.EntityID)
	return scanHistory(row)
}

// ListHistoryForEntityParams holds parameters for ListHistoryForEntity.
type ListHistoryForEntityParams struct {
	EntityType string
	EntityID   string
	Limit      int64
}

// ListHistoryForEntity returns history records for an entity, newest first.
func (q *Queries) ListHistoryForEntity(ctx context.Context, arg ListHistoryForEntityParams) ([]HistoryRecord, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, entity_type, entity_id, action, snapshot, actor_id, created_at
		 FROM history WHERE entity_type = ? AND entity_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ?`,
		arg.EntityType, arg.EntityID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []HistoryRecord
	for rows.Next() {
		var h HistoryRecord
		if err := rows.Scan(&h.ID, &h.EntityType, &h.EntityID, &h.Action, &h.Snapshot,
			&h.ActorID, &h.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, h)
	}
	return records, rows.Err()
}

func scanHistory(row *sql.Row) (HistoryRecord, error) {
	var h HistoryRecord
	err := row.Scan(&h.ID, &h.EntityType, &h.EntityID, &h.Action, &h.Snapshot,
		&h.ActorID, &h.CreatedAt)
	return h, err
}

// --- Events ---

// CreateEventParams holds parameters for CreateEvent.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	Metadata  string
	CreatedAt time.Time
}

// CreateEvent inserts a new event log entry.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (Event, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO events (level, category, message, user_id, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING id, level, category, message, user_id, metadata, created_at`,
		arg.Level, arg.Category, arg.Message, arg.UserID, arg.Metadata, arg.CreatedAt)

	var e Event
	err := row.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.UserID, &e.Metadata, &e.CreatedAt)
	return e, err
}

// ListEventsParams holds parameters for ListEvents.
type ListEventsParams struct {
	Limit  int64
	Offset int64
}

// ListEvents returns events newest first.
func (q *Queries) ListEvents(ctx context.Context, arg ListEventsParams) ([]Event, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, level, category, message, user_id, metadata, created_at
		 FROM events ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.UserID,
			&e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountEvents returns the total number of events.
func (q *Queries) CountEvents(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&count)
	return count, err
}

// DeleteOldEvents removes events created before the cutoff time.
func (q *Queries) DeleteOldEvents(ctx context.Context, cutoff time.Time) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM events WHERE created_at < ?`, cutoff)
	return err
}

// --- Config ---

// GetConfig fetches a config entry by key.
func (q *Queries) GetConfig(ctx context.Context, key string) (Config, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, key, value, created_at, updated_at FROM config WHERE key = ?`, key)

	var c Config
	err := row.Scan(&c.ID, &c.Key, &c.Value, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// UpsertConfigParams holds parameters for UpsertConfig.
type UpsertConfigParams struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// UpsertConfig inserts or updates a config entry by key.
func (q *Queries) UpsertConfig(ctx context.Context, arg UpsertConfigParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO config (key, value, created_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		arg.Key, arg.Value, arg.UpdatedAt, arg.UpdatedAt)
	return err
}
