// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"sitecms/internal/schema"
)

func heroContent(title string) json.RawMessage {
	return json.RawMessage(`{"title": "` + title + `"}`)
}

func TestSectionsCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	actor := int64(1)

	section := env.mustCreateSection(t, CreateSectionParams{
		PageID:     env.homeID,
		TypeTag:    schema.TagHero,
		OrderIndex: 0,
		Content:    heroContent("Welcome"),
		Published:  true,
		ActorID:    &actor,
	})

	if section.ID == "" {
		t.Error("expected a generated section id")
	}
	if section.PageID != env.homeID {
		t.Errorf("expected page id %d, got %d", env.homeID, section.PageID)
	}
	if !section.Published {
		t.Error("expected section to be published")
	}
	if section.CreatedBy == nil || *section.CreatedBy != actor {
		t.Errorf("expected created_by %d, got %v", actor, section.CreatedBy)
	}

	// Creation must leave a `created` audit record with a full snapshot.
	records, err := env.history.ListForEntity(ctx, EntityTypeSections, section.ID, 0)
	if err != nil {
		t.Fatalf("failed to list history: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(records))
	}
	if records[0].Action != ActionCreated {
		t.Errorf("expected action %q, got %q", ActionCreated, records[0].Action)
	}
	var snapshot SectionSnapshot
	if err := json.Unmarshal(records[0].Snapshot, &snapshot); err != nil {
		t.Fatalf("failed to unmarshal snapshot: %v", err)
	}
	if snapshot.TypeTag != schema.TagHero {
		t.Errorf("expected snapshot type tag %q, got %q", schema.TagHero, snapshot.TypeTag)
	}
}

func TestSectionsCreateUnknownPage(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.sections.Create(context.Background(), CreateSectionParams{
		PageID:  99999,
		TypeTag: schema.TagHero,
		Content: heroContent("Orphan"),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSectionsCreateValidationGate(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		typeTag string
		content json.RawMessage
	}{
		{"missing required field", schema.TagHero, json.RawMessage(`{"subtitle": "no title"}`)},
		{"unregistered tag", "carousel", json.RawMessage(`{"title": "x"}`)},
		{"non-object payload", schema.TagHero, json.RawMessage(`["not", "an", "object"]`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.sections.Create(context.Background(), CreateSectionParams{
				PageID:  env.homeID,
				TypeTag: tt.typeTag,
				Content: tt.content,
			})
			var verr *schema.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected a validation error, got %v", err)
			}
		})
	}

	// Rejected writes must leave no trace: no rows, no history.
	if got := env.countSections(t); got != 0 {
		t.Errorf("expected 0 sections after rejected creates, got %d", got)
	}
	if got := env.countHistory(t); got != 0 {
		t.Errorf("expected 0 history records after rejected creates, got %d", got)
	}
}

func TestSectionsUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	section := env.mustCreateSection(t, CreateSectionParams{
		PageID:  env.homeID,
		TypeTag: schema.TagHero,
		Content: heroContent("Before"),
	})

	updated, err := env.sections.Update(ctx, section.ID, UpdateSectionParams{
		Content: heroContent("After"),
	})
	if err != nil {
		t.Fatalf("failed to update section: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(updated.Content, &payload); err != nil {
		t.Fatalf("failed to unmarshal updated content: %v", err)
	}
	if payload["title"] != "After" {
		t.Errorf("expected title %q, got %v", "After", payload["title"])
	}
	// Fields absent from the patch are untouched.
	if updated.TypeTag != schema.TagHero {
		t.Errorf("expected type tag preserved, got %q", updated.TypeTag)
	}
	if updated.OrderIndex != section.OrderIndex {
		t.Errorf("expected order index preserved, got %d", updated.OrderIndex)
	}

	records, err := env.history.ListForEntity(ctx, EntityTypeSections, section.ID, 0)
	if err != nil {
		t.Fatalf("failed to list history: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 history records, got %d", len(records))
	}
	// Newest first.
	if records[0].Action != ActionUpdated || records[1].Action != ActionCreated {
		t.Errorf("expected [updated, created], got [%s, %s]", records[0].Action, records[1].Action)
	}
}

func TestSectionsUpdateInvalidContentLeavesRowUnchanged(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	section := env.mustCreateSection(t, CreateSectionParams{
		PageID:  env.homeID,
		TypeTag: schema.TagHero,
		Content: heroContent("Stable"),
	})

	_, err := env.sections.Update(ctx, section.ID, UpdateSectionParams{
		Content: json.RawMessage(`{"subtitle": "title removed"}`),
	})
	var verr *schema.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected a validation error, got %v", err)
	}
	if reasons := verr.Fields["title"]; len(reasons) == 0 {
		t.Errorf("expected failure reasons for field %q, got %v", "title", verr.Fields)
	}

	current, err := env.sections.GetByID(ctx, section.ID)
	if err != nil {
		t.Fatalf("failed to fetch section: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(current.Content, &payload); err != nil {
		t.Fatalf("failed to unmarshal content: %v", err)
	}
	if payload["title"] != "Stable" {
		t.Errorf("expected stored content untouched, got %v", payload)
	}

	// The failed update must not be audited.
	records, err := env.history.ListForEntity(ctx, EntityTypeSections, section.ID, 0)
	if err != nil {
		t.Fatalf("failed to list history: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 history record, got %d", len(records))
	}
}

func TestSectionsUpdateTypeTagRevalidates(t *testing.T) {
	env := newTestEnv(t)

	section := env.mustCreateSection(t, CreateSectionParams{
		PageID:  env.homeID,
		TypeTag: schema.TagHero,
		Content: heroContent("Hero"),
	})

	// Changing only the tag re-validates the existing content against the
	// new schema: hero content has no `body`, so "text" must reject it.
	textTag := schema.TagText
	_, err := env.sections.Update(context.Background(), section.ID, UpdateSectionParams{
		TypeTag: &textTag,
	})
	var verr *schema.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected a validation error, got %v", err)
	}
}

func TestSectionsUpdateNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.sections.Update(context.Background(), "no-such-id", UpdateSectionParams{
		Content: heroContent("x"),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSectionsDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	section := env.mustCreateSection(t, CreateSectionParams{
		PageID:  env.homeID,
		TypeTag: schema.TagHero,
		Content: heroContent("Doomed"),
	})

	if err := env.sections.Delete(ctx, section.ID, nil); err != nil {
		t.Fatalf("failed to delete section: %v", err)
	}

	if _, err := env.sections.GetByID(ctx, section.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// History survives the row: the `deleted` record holds the final state.
	records, err := env.history.ListForEntity(ctx, EntityTypeSections, section.ID, 0)
	if err != nil {
		t.Fatalf("failed to list history: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 history records, got %d", len(records))
	}
	if records[0].Action != ActionDeleted {
		t.Errorf("expected newest action %q, got %q", ActionDeleted, records[0].Action)
	}
	var snapshot SectionSnapshot
	if err := json.Unmarshal(records[0].Snapshot, &snapshot); err != nil {
		t.Fatalf("failed to unmarshal snapshot: %v", err)
	}
	if snapshot.TypeTag != schema.TagHero {
		t.Errorf("expected deletion snapshot to hold pre-delete state, got %+v", snapshot)
	}

	if err := env.sections.Delete(ctx, section.ID, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestSectionsReorder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		s := env.mustCreateSection(t, CreateSectionParams{
			PageID:     env.homeID,
			TypeTag:    schema.TagHero,
			OrderIndex: int64(i),
			Content:    heroContent("Home"),
			Published:  true,
		})
		ids = append(ids, s.ID)
	}
	other := env.mustCreateSection(t, CreateSectionParams{
		PageID:     env.aboutID,
		TypeTag:    schema.TagHero,
		OrderIndex: 7,
		Content:    heroContent("About"),
	})

	// Reverse the home page; include the about section's id, which is out
	// of scope and must be ignored.
	reversed := []string{ids[2], other.ID, ids[1], ids[0]}
	if err := env.sections.Reorder(ctx, env.homeID, reversed, nil); err != nil {
		t.Fatalf("failed to reorder: %v", err)
	}

	sections, err := env.sections.ListForPage(ctx, env.homeID)
	if err != nil {
		t.Fatalf("failed to list sections: %v", err)
	}
	if len(sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(sections))
	}
	wantOrder := []string{ids[2], ids[1], ids[0]}
	for i, s := range sections {
		if s.ID != wantOrder[i] {
			t.Errorf("position %d: expected section %s, got %s", i, wantOrder[i], s.ID)
		}
	}

	// The foreign section keeps its index and page.
	untouched, err := env.sections.GetByID(ctx, other.ID)
	if err != nil {
		t.Fatalf("failed to fetch other-page section: %v", err)
	}
	if untouched.OrderIndex != 7 || untouched.PageID != env.aboutID {
		t.Errorf("expected other-page section untouched, got index %d page %d",
			untouched.OrderIndex, untouched.PageID)
	}

	// Reordering is not audited.
	if got := env.countHistory(t); got != 4 {
		t.Errorf("expected 4 history records (creates only), got %d", got)
	}
}

func TestSectionsReorderUnknownPage(t *testing.T) {
	env := newTestEnv(t)

	err := env.sections.Reorder(context.Background(), 99999, []string{"a"}, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSectionsReorderDenseIndices(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Sparse starting indices; reorder compacts them to list positions.
	var ids []string
	for _, idx := range []int64{10, 20, 30} {
		s := env.mustCreateSection(t, CreateSectionParams{
			PageID:     env.homeID,
			TypeTag:    schema.TagHero,
			OrderIndex: idx,
			Content:    heroContent("Home"),
		})
		ids = append(ids, s.ID)
	}

	if err := env.sections.Reorder(ctx, env.homeID, ids, nil); err != nil {
		t.Fatalf("failed to reorder: %v", err)
	}

	sections, err := env.sections.ListForPage(ctx, env.homeID)
	if err != nil {
		t.Fatalf("failed to list sections: %v", err)
	}
	for i, s := range sections {
		if s.OrderIndex != int64(i) {
			t.Errorf("expected dense index %d, got %d", i, s.OrderIndex)
		}
	}
}

func TestSectionsListPublishedForSlug(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	published := env.mustCreateSection(t, CreateSectionParams{
		PageID:     env.homeID,
		TypeTag:    schema.TagHero,
		OrderIndex: 1,
		Content:    heroContent("Visible"),
		Published:  true,
	})
	env.mustCreateSection(t, CreateSectionParams{
		PageID:     env.homeID,
		TypeTag:    schema.TagHero,
		OrderIndex: 0,
		Content:    heroContent("Draft"),
		Published:  false,
	})
	first := env.mustCreateSection(t, CreateSectionParams{
		PageID:     env.homeID,
		TypeTag:    schema.TagCTA,
		OrderIndex: 0,
		Content:    json.RawMessage(`{"title": "Go", "button_label": "Start", "button_url": "/signup"}`),
		Published:  true,
	})

	sections, err := env.sections.ListPublishedForSlug(ctx, "home")
	if err != nil {
		t.Fatalf("failed to list published sections: %v", err)
	}
	if len(sections) != 2 {
		t.Fatalf("expected 2 published sections, got %d", len(sections))
	}
	if sections[0].ID != first.ID || sections[1].ID != published.ID {
		t.Errorf("expected render order [%s, %s], got [%s, %s]",
			first.ID, published.ID, sections[0].ID, sections[1].ID)
	}

	// The editor list sees drafts too.
	all, err := env.sections.ListForPage(ctx, env.homeID)
	if err != nil {
		t.Fatalf("failed to list all sections: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 sections in editor list, got %d", len(all))
	}
}

func TestSectionsListPublishedForSlugHidesUnpublishedPage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.db.Exec(`UPDATE pages SET published = 0 WHERE id = ?`, env.homeID); err != nil {
		t.Fatalf("failed to unpublish page: %v", err)
	}

	if _, err := env.sections.ListPublishedForSlug(ctx, "home"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unpublished page, got %v", err)
	}
	if _, err := env.sections.ListPublishedForSlug(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown slug, got %v", err)
	}
}

func TestSectionsMutationInvalidatesRouteCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.routes.Set(ctx, "/", []byte("<html>stale home</html>"))
	env.routes.Set(ctx, "/about", []byte("<html>stale about</html>"))

	env.mustCreateSection(t, CreateSectionParams{
		PageID:  env.homeID,
		TypeTag: schema.TagHero,
		Content: heroContent("Fresh"),
	})

	if _, ok := env.routes.Get(ctx, "/"); ok {
		t.Error("expected home route evicted after mutation")
	}
	if _, ok := env.routes.Get(ctx, "/about"); !ok {
		t.Error("expected unrelated route to survive the mutation")
	}
}

func TestPublicRoute(t *testing.T) {
	if got := PublicRoute("home", "home"); got != "/" {
		t.Errorf("expected %q, got %q", "/", got)
	}
	if got := PublicRoute("pricing", "home"); got != "/pricing" {
		t.Errorf("expected %q, got %q", "/pricing", got)
	}
}
