package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Houeta/promo-relay/internal/services/dispatcher"
	"github.com/robfig/cron/v3"
)

// Scheduler optionally drives queue dispatch runs on a cron schedule,
// replacing the external periodic caller. With an empty spec it stays
// inert and the HTTP triggers remain the only entry points.
type Scheduler struct {
	log  *slog.Logger
	cron *cron.Cron
	spec string
	disp dispatcher.Interface
}

// New creates a Scheduler for the given cron spec. An empty spec
// disables scheduling.
func New(log *slog.Logger, spec string, disp dispatcher.Interface) *Scheduler {
	return &Scheduler{log: log, cron: cron.New(), spec: spec, disp: disp}
}

// Start registers the dispatch job and starts the cron runner. Runs
// triggered after ctx is canceled abort on the first throttle wait.
func (s *Scheduler) Start(ctx context.Context) error {
	const opn = "scheduler.Start"

	if s.spec == "" {
		s.log.Info("No dispatch schedule configured, scheduler disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.spec, func() {
		result, err := s.disp.DispatchQueue(ctx)
		if err != nil {
			s.log.ErrorContext(ctx, "Scheduled dispatch failed", "error", err)
			return
		}
		s.log.InfoContext(ctx, "Scheduled dispatch finished",
			"sent", result.Sent, "remaining", result.Remaining)
	})
	if err != nil {
		return fmt.Errorf("%s: invalid cron spec %q: %w", opn, s.spec, err)
	}

	s.cron.Start()
	s.log.Info("Dispatch scheduler started", "spec", s.spec)

	return nil
}

// Stop stops the cron runner. Running jobs finish on their own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
