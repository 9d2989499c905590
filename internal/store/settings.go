// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// ConfigKeySiteName is the config table key holding the rendered site name.
const ConfigKeySiteName = "site_name"

// SiteName resolves the site name from the config table. On first run the
// row does not exist yet and is seeded with fallback, so the environment
// default only ever takes effect once; afterwards the stored value wins.
func SiteName(ctx context.Context, db *sql.DB, fallback string) (string, error) {
	queries := New(db)

	c, err := queries.GetConfig(ctx, ConfigKeySiteName)
	if err == nil {
		return c.Value, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("fetching site name: %w", err)
	}

	if err := queries.UpsertConfig(ctx, UpsertConfigParams{
		Key:       ConfigKeySiteName,
		Value:     fallback,
		UpdatedAt: time.Now(),
	}); err != nil {
		return "", fmt.Errorf("seeding site name: %w", err)
	}

	slog.Info("seeded site name", "value", fallback)
	return fallback, nil
}
