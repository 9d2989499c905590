// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"sitecms/internal/auth"
	"sitecms/internal/util"
)

// Default admin credentials used when no seed password is configured.
const (
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "changeme"
	DefaultAdminName     = "Administrator"
)

// seedPageTitles is the fixed set of routable pages. Pages are not creatable
// at runtime; the site's routes are defined here, with slugs derived from
// the titles.
var seedPageTitles = []string{"Home", "About", "Pricing", "FAQ", "Contact"}

// Seed creates initial data: the fixed page set and the first admin user.
// Both are idempotent; existing rows are left untouched.
func Seed(ctx context.Context, db *sql.DB, adminEmail, adminPassword string) error {
	queries := New(db)
	now := time.Now()

	for _, title := range seedPageTitles {
		slug := util.Slugify(title)

		_, err := queries.GetPageBySlug(ctx, slug)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("checking page %q: %w", slug, err)
		}

		page, err := queries.CreatePage(ctx, CreatePageParams{
			Slug:      slug,
			Title:     title,
			Published: 1,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return fmt.Errorf("creating page %q: %w", slug, err)
		}
		slog.Info("seeded page", "id", page.ID, "slug", page.Slug)
	}

	if adminEmail == "" {
		adminEmail = DefaultAdminEmail
	}

	// Check if the admin user already exists
	if _, err := queries.GetUserByEmail(ctx, adminEmail); err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	} else if err != sql.ErrNoRows {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	password := adminPassword
	if password == "" {
		password = DefaultAdminPassword
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        adminEmail,
		PasswordHash: passwordHash,
		Role:         "admin",
		Name:         DefaultAdminName,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created default admin user", "id", user.ID, "email", user.Email)

	return nil
}
