// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// routeKeyPrefix namespaces rendered-route entries in the shared backend.
const routeKeyPrefix = "route:"

// RouteCache caches rendered page output by route path and provides the
// invalidation contract used by every content mutation: Invalidate is
// fire-and-forget and idempotent, so a stale cached render is never served
// after a write, and invalidating an uncached route is harmless.
type RouteCache struct {
	backend Cacher
	ttl     time.Duration
}

// NewRouteCache creates a route cache over the given backend.
func NewRouteCache(backend Cacher, ttl time.Duration) *RouteCache {
	return &RouteCache{backend: backend, ttl: ttl}
}

// Get returns the cached render of a route, or false on a miss.
func (c *RouteCache) Get(ctx context.Context, routePath string) ([]byte, bool) {
	body, err := c.backend.Get(ctx, routeKeyPrefix+routePath)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			slog.Warn("route cache read failed", "route", routePath, "error", err)
		}
		return nil, false
	}
	return body, true
}

// Set stores the rendered output of a route.
func (c *RouteCache) Set(ctx context.Context, routePath string, body []byte) {
	if err := c.backend.Set(ctx, routeKeyPrefix+routePath, body, c.ttl); err != nil {
		slog.Warn("route cache write failed", "route", routePath, "error", err)
	}
}

// Invalidate removes the cached render of a route. Errors are logged, not
// returned: a failed invalidation must never fail the mutation that
// triggered it.
func (c *RouteCache) Invalidate(ctx context.Context, routePath string) {
	if err := c.backend.Delete(ctx, routeKeyPrefix+routePath); err != nil && !errors.Is(err, ErrCacheMiss) {
		slog.Warn("route cache invalidation failed", "route", routePath, "error", err)
	}
}

// InvalidateAll removes every cached route render.
func (c *RouteCache) InvalidateAll(ctx context.Context) {
	if err := c.backend.DeleteByPrefix(ctx, routeKeyPrefix); err != nil {
		slog.Warn("route cache flush failed", "error", err)
	}
}
