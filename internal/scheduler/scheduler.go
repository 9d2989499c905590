// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"sitecms/internal/service"
)

// Scheduler handles recurring maintenance: currently event log pruning.
type Scheduler struct {
	cron          *cron.Cron
	events        *service.EventService
	retentionDays int
	logger        *slog.Logger
}

// New creates a scheduler instance. retentionDays controls how long event
// log entries are kept.
func New(events *service.EventService, retentionDays int, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		events:        events,
		retentionDays: retentionDays,
		logger:        logger,
	}
}

// Start registers the maintenance jobs and starts the cron loop. Event
// pruning runs daily at 03:00 server time.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("0 3 * * *", func() {
		if err := s.PruneEvents(context.Background()); err != nil {
			s.logger.Error("scheduler event pruning failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()), "event_retention_days", s.retentionDays)
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// PruneEvents removes event log entries older than the retention window.
func (s *Scheduler) PruneEvents(ctx context.Context) error {
	if s.retentionDays <= 0 {
		return nil
	}

	retention := time.Duration(s.retentionDays) * 24 * time.Hour
	if err := s.events.DeleteOldEvents(ctx, retention); err != nil {
		return err
	}

	s.logger.Info("pruned old events", "retention_days", s.retentionDays)
	return nil
}
