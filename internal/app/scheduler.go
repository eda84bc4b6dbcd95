/**
 * @description
 * Cron scheduler setup for the reminder and expiry jobs.
 */

package app

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/subtally/tracker-service/internal/config"
)

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron   *cron.Cron
	jobs   *Jobs
	logger *slog.Logger
	config config.Config
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(jobs *Jobs, logger *slog.Logger, cfg config.Config) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Scheduler{
		cron:   c,
		jobs:   jobs,
		logger: logger,
		config: cfg,
	}
}

// Start registers the jobs and starts the cron scheduler.
func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(s.config.ReminderJobSchedule, s.jobs.ProcessPaymentReminders); err != nil {
		s.logger.Error("failed to schedule payment reminder job", "error", err)
	} else {
		s.logger.Info("scheduled payment reminder job", "schedule", s.config.ReminderJobSchedule)
	}

	if _, err := s.cron.AddFunc(s.config.ExpiryJobSchedule, s.jobs.ProcessLapsedSubscriptions); err != nil {
		s.logger.Error("failed to schedule lapsed subscription expiry job", "error", err)
	} else {
		s.logger.Info("scheduled lapsed subscription expiry job", "schedule", s.config.ExpiryJobSchedule)
	}

	s.cron.Start()
}

// Stop gracefully stops the cron scheduler.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
