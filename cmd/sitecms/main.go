// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"sitecms/internal/cache"
	"sitecms/internal/config"
	"sitecms/internal/content"
	"sitecms/internal/handler"
	"sitecms/internal/logging"
	"sitecms/internal/middleware"
	"sitecms/internal/render"
	"sitecms/internal/scheduler"
	"sitecms/internal/schema"
	"sitecms/internal/service"
	"sitecms/internal/session"
	"sitecms/internal/store"
	"sitecms/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the event log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	ctx := context.Background()
	if cfg.DoSeed {
		if err := store.Seed(ctx, db, cfg.SeedAdminEmail, cfg.SeedAdminPass); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	// Site settings live in the config table; the env value is only the
	// first-run seed.
	siteName, err := store.SiteName(ctx, db, cfg.SiteName)
	if err != nil {
		return fmt.Errorf("resolving site name: %w", err)
	}

	// Session manager backed by the sessions table
	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	// Cache backend: Redis when configured, in-memory otherwise
	cacheOpts := cache.DefaultOptions()
	cacheOpts.RedisURL = cfg.RedisURL
	cacheOpts.Prefix = cfg.CachePrefix
	cacheOpts.DefaultTTL = time.Duration(cfg.CacheTTL) * time.Second
	backend, err := cache.New(cacheOpts)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			slog.Error("error closing cache backend", "error", err)
		}
	}()
	if cfg.UseRedisCache() {
		slog.Info("cache initialized", "backend", "redis", "url", cfg.RedisURL)
	} else {
		slog.Info("cache initialized", "backend", "memory")
	}
	routes := cache.NewRouteCache(backend, cacheOpts.DefaultTTL)

	// Content services
	history := content.NewHistory(db)
	sections := content.NewSections(db, schema.SectionDefaults(), history, routes, cfg.HomeSlug)
	globals := content.NewGlobals(db, schema.GlobalDefaults(), history, routes)
	engine := content.NewEngine(db, history, routes, cfg.HomeSlug)
	events := service.NewEventService(db)

	// Renderer over the embedded site templates
	renderer, err := render.New(render.Config{
		TemplatesFS: web.Templates,
		Sections:    render.Defaults(),
		SiteName:    siteName,
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	// Handlers
	authHandler := handler.NewAuthHandler(db, sessionManager, events)
	sectionHandler := handler.NewSectionHandler(sections, events)
	globalHandler := handler.NewGlobalHandler(globals, events)
	historyHandler := handler.NewHistoryHandler(history, engine, events)
	pageHandler := handler.NewPageHandler(db, routes, cfg.HomeSlug)
	frontendHandler := handler.NewFrontendHandler(db, sections, globals, renderer, routes, cfg.HomeSlug)
	eventHandler := handler.NewEventHandler(events)
	healthHandler := handler.NewHealthHandler(db)

	// Scheduler: nightly event log pruning
	sched := scheduler.New(events, cfg.EventRetentionDays, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	// Middleware stacks
	loginLimiter := middleware.NewRateLimiter(1, 5)
	apiLimiter := middleware.NewRateLimiter(50, 100)
	csrfCfg := middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.ServerAddr())

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.LoadUser(sessionManager, db))

	// Public site
	r.Get("/", frontendHandler.Home)
	r.Get("/{slug}", frontendHandler.Page)

	// Health
	r.Get("/healthz", healthHandler.Health)
	r.Get("/healthz/live", healthHandler.Liveness)
	r.Get("/healthz/ready", healthHandler.Readiness)

	// Public read API
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiLimiter.Middleware())
		r.Get("/pages/{slug}/sections", frontendHandler.APISections)
		r.Get("/global/{key}", frontendHandler.APIGlobal)
	})

	// Auth
	r.Group(func(r chi.Router) {
		r.Use(loginLimiter.LoginMiddleware())
		r.Use(middleware.CSRF(csrfCfg))
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
	})

	// CMS API: editors and up, CSRF-protected
	r.Route("/admin/api", func(r chi.Router) {
		r.Use(middleware.CSRF(csrfCfg))
		r.Use(middleware.RequireEditor())

		r.Get("/me", authHandler.Me)

		r.Get("/pages", pageHandler.List)
		r.Get("/pages/{pageID}", pageHandler.Get)
		r.Put("/pages/{pageID}", pageHandler.Update)

		r.Get("/section-types", sectionHandler.Types)
		r.Get("/pages/{pageID}/sections", sectionHandler.List)
		r.Post("/pages/{pageID}/sections", sectionHandler.Create)
		r.Put("/pages/{pageID}/sections/order", sectionHandler.Reorder)
		r.Get("/sections/{sectionID}", sectionHandler.Get)
		r.Put("/sections/{sectionID}", sectionHandler.Update)
		r.Delete("/sections/{sectionID}", sectionHandler.Delete)

		r.Get("/global", globalHandler.List)
		r.Get("/global/{key}", globalHandler.Get)
		r.Put("/global/{key}", globalHandler.Upsert)

		r.Get("/history/{entityType}/{entityID}", historyHandler.List)
		r.Post("/history/{entityType}/{entityID}/{recordID}/rollback", historyHandler.Rollback)

		// Admin only
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin())
			r.Get("/events", eventHandler.List)
		})
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
