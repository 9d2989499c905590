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

	"github.com/google/uuid"

	"sitecms/internal/cache"
	"sitecms/internal/schema"
	"sitecms/internal/store"
)

// Sections is the section store: CRUD and reordering over page sections,
// with schema validation as the single write gate and a history snapshot on
// every mutation.
//
// If the history write fails after the row write succeeded, the mutation
// stands and the gap is logged at ERROR level; there is no compensation.
type Sections struct {
	db       *sql.DB
	queries  *store.Queries
	registry *schema.Registry
	history  *History
	routes   *cache.RouteCache
	homeSlug string
}

// NewSections creates a Sections store.
func NewSections(db *sql.DB, registry *schema.Registry, history *History, routes *cache.RouteCache, homeSlug string) *Sections {
	return &Sections{
		db:       db,
		queries:  store.New(db),
		registry: registry,
		history:  history,
		routes:   routes,
		homeSlug: homeSlug,
	}
}

// CreateSectionParams holds the editor input for Create.
type CreateSectionParams struct {
	PageID     int64
	TypeTag    string
	OrderIndex int64
	Content    json.RawMessage
	Published  bool
	ActorID    *int64
}

// Create validates the content against the schema registered for the type
// tag, persists a new section, records a `created` history snapshot and
// invalidates the owning page's routes.
func (s *Sections) Create(ctx context.Context, p CreateSectionParams) (Section, error) {
	page, err := s.queries.GetPageByID(ctx, p.PageID)
	if err != nil {
		if err == sql.ErrNoRows {
			return Section{}, fmt.Errorf("page %d: %w", p.PageID, ErrNotFound)
		}
		return Section{}, fmt.Errorf("fetching page: %w", err)
	}

	validated, verr := s.registry.Validate(p.TypeTag, p.Content)
	if verr != nil {
		return Section{}, verr
	}

	now := time.Now()
	actor := nullActor(p.ActorID)
	row, err := s.queries.CreateSection(ctx, store.CreateSectionParams{
		ID:         uuid.NewString(),
		PageID:     p.PageID,
		TypeTag:    p.TypeTag,
		OrderIndex: p.OrderIndex,
		Content:    string(validated),
		Published:  boolToInt(p.Published),
		CreatedBy:  actor,
		UpdatedBy:  actor,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return Section{}, fmt.Errorf("persisting section: %w", err)
	}

	section := sectionFromStore(row)
	s.recordSnapshot(ctx, section, ActionCreated, p.ActorID)
	s.invalidatePage(ctx, page)

	slog.Info("section created", "section_id", section.ID, "page", page.Slug, "type", section.TypeTag)
	return section, nil
}

// UpdateSectionParams holds a sparse patch for Update: only non-nil fields
// are changed.
type UpdateSectionParams struct {
	TypeTag    *string
	OrderIndex *int64
	Content    json.RawMessage
	Published  *bool
	ActorID    *int64
}

// Update applies a sparse patch to a section. If the type tag or content is
// part of the patch, the merged (tag, content) pair is re-validated before
// the write. The history record holds the post-update full state.
func (s *Sections) Update(ctx context.Context, id string, p UpdateSectionParams) (Section, error) {
	existing, err := s.queries.GetSectionByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return Section{}, fmt.Errorf("section %s: %w", id, ErrNotFound)
		}
		return Section{}, fmt.Errorf("fetching section: %w", err)
	}

	typeTag := existing.TypeTag
	if p.TypeTag != nil {
		typeTag = *p.TypeTag
	}
	content := json.RawMessage(existing.Content)
	if p.Content != nil {
		content = p.Content
	}
	orderIndex := existing.OrderIndex
	if p.OrderIndex != nil {
		orderIndex = *p.OrderIndex
	}
	published := existing.Published
	if p.Published != nil {
		published = boolToInt(*p.Published)
	}

	if p.TypeTag != nil || p.Content != nil {
		validated, verr := s.registry.Validate(typeTag, content)
		if verr != nil {
			return Section{}, verr
		}
		content = validated
	}

	row, err := s.queries.UpdateSection(ctx, store.UpdateSectionParams{
		ID:         id,
		TypeTag:    typeTag,
		OrderIndex: orderIndex,
		Content:    string(content),
		Published:  published,
		UpdatedBy:  nullActor(p.ActorID),
		UpdatedAt:  time.Now(),
	})
	if err != nil {
		return Section{}, fmt.Errorf("persisting section update: %w", err)
	}

	section := sectionFromStore(row)
	s.recordSnapshot(ctx, section, ActionUpdated, p.ActorID)
	s.invalidatePageByID(ctx, section.PageID)

	slog.Info("section updated", "section_id", section.ID, "type", section.TypeTag)
	return section, nil
}

// Delete removes a section. The current state is read first: the `deleted`
// history record holds the pre-deletion snapshot, and the owning page is
// needed for route invalidation. A concurrent delete between the read and
// the delete is a race this design does not resolve.
func (s *Sections) Delete(ctx context.Context, id string, actorID *int64) error {
	existing, err := s.queries.GetSectionByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("section %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("fetching section: %w", err)
	}

	if err := s.queries.DeleteSection(ctx, id); err != nil {
		return fmt.Errorf("deleting section: %w", err)
	}

	section := sectionFromStore(existing)
	s.recordSnapshot(ctx, section, ActionDeleted, actorID)
	s.invalidatePageByID(ctx, section.PageID)

	slog.Info("section deleted", "section_id", id, "type", section.TypeTag)
	return nil
}

// Reorder assigns each listed section an order_index equal to its position
// in the list, scoped to pageID. Ids not belonging to the page match no row
// and are silently ignored. Reordering is deliberately not written to the
// history log: it carries no content, and replaying a content snapshot
// should not resurrect stale ordering.
func (s *Sections) Reorder(ctx context.Context, pageID int64, orderedIDs []string, actorID *int64) error {
	page, err := s.queries.GetPageByID(ctx, pageID)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("page %d: %w", pageID, ErrNotFound)
		}
		return fmt.Errorf("fetching page: %w", err)
	}

	// All rows move together or not at all.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning reorder: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := s.queries.WithTx(tx)
	for i, id := range orderedIDs {
		if _, err := qtx.UpdateSectionOrder(ctx, store.UpdateSectionOrderParams{
			ID:         id,
			PageID:     pageID,
			OrderIndex: int64(i),
		}); err != nil {
			return fmt.Errorf("reordering section %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing reorder: %w", err)
	}

	s.invalidatePage(ctx, page)

	slog.Info("sections reordered", "page", page.Slug, "count", len(orderedIDs), "actor_id", actorID)
	return nil
}

// GetByID fetches a single section, published or not.
func (s *Sections) GetByID(ctx context.Context, id string) (Section, error) {
	row, err := s.queries.GetSectionByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return Section{}, fmt.Errorf("section %s: %w", id, ErrNotFound)
		}
		return Section{}, fmt.Errorf("fetching section: %w", err)
	}
	return sectionFromStore(row), nil
}

// ListForPage returns all sections of a page in render order, including
// unpublished ones. This is the CMS editor read path.
func (s *Sections) ListForPage(ctx context.Context, pageID int64) ([]Section, error) {
	rows, err := s.queries.ListSectionsByPage(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("listing sections: %w", err)
	}
	return sectionsFromStore(rows), nil
}

// CountForPage returns the number of sections on a page, drafts included.
func (s *Sections) CountForPage(ctx context.Context, pageID int64) (int64, error) {
	count, err := s.queries.CountSectionsByPage(ctx, pageID)
	if err != nil {
		return 0, fmt.Errorf("counting sections: %w", err)
	}
	return count, nil
}

// TypeTags returns the section type tags editors may create, sorted.
func (s *Sections) TypeTags() []string {
	return s.registry.Tags()
}

// ListPublishedForSlug returns the published sections of a published page in
// render order. This is the public read path: unpublished sections never
// appear here.
func (s *Sections) ListPublishedForSlug(ctx context.Context, slug string) ([]Section, error) {
	page, err := s.queries.GetPageBySlug(ctx, slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("page %q: %w", slug, ErrNotFound)
		}
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	if page.Published == 0 {
		return nil, fmt.Errorf("page %q: %w", slug, ErrNotFound)
	}

	rows, err := s.queries.ListPublishedSectionsByPage(ctx, page.ID)
	if err != nil {
		return nil, fmt.Errorf("listing sections: %w", err)
	}
	return sectionsFromStore(rows), nil
}

// recordSnapshot writes a history record for the mutation. A failure here
// leaves the mutation persisted but unaudited; it is logged, not compensated.
func (s *Sections) recordSnapshot(ctx context.Context, section Section, action string, actorID *int64) {
	if err := s.history.Record(ctx, EntityTypeSections, section.ID, action, snapshotOfSection(section), actorID); err != nil {
		slog.Error("section mutation persisted but history write failed",
			"section_id", section.ID, "action", action, "error", err)
	}
}

// invalidatePage invalidates the page's public route and its CMS editor route.
func (s *Sections) invalidatePage(ctx context.Context, page store.Page) {
	s.routes.Invalidate(ctx, PublicRoute(page.Slug, s.homeSlug))
	s.routes.Invalidate(ctx, fmt.Sprintf("/admin/pages/%d", page.ID))
}

// invalidatePageByID resolves the owning page and invalidates its routes.
func (s *Sections) invalidatePageByID(ctx context.Context, pageID int64) {
	page, err := s.queries.GetPageByID(ctx, pageID)
	if err != nil {
		slog.Warn("route invalidation skipped, page lookup failed", "page_id", pageID, "error", err)
		return
	}
	s.invalidatePage(ctx, page)
}

// PublicRoute maps a page slug to its public route: "/" for the designated
// home slug, "/{slug}" otherwise.
func PublicRoute(slug, homeSlug string) string {
	if slug == homeSlug {
		return "/"
	}
	return "/" + slug
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func nullActor(actorID *int64) sql.NullInt64 {
	if actorID == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *actorID, Valid: true}
}
