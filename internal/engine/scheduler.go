package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the sync engine on a fixed interval.
type Scheduler struct {
	cron   *cron.Cron
	engine *Engine
	log    *slog.Logger
}

// NewScheduler creates a Scheduler that syncs every interval.
func NewScheduler(
	eng *Engine,
	interval time.Duration,
	log *slog.Logger,
) (*Scheduler, error) {
	c := cron.New()
	s := &Scheduler{cron: c, engine: eng, log: log}

	if _, err := c.AddFunc("@every "+interval.String(), s.runSync); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins running scheduled syncs.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started")
	s.cron.Start()
}

// Stop gracefully stops the scheduler, waiting for a running sync to
// finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *Scheduler) runSync() {
	s.log.Info("scheduled sync starting")
	if err := s.engine.RunSync(context.Background()); err != nil {
		s.log.Error("scheduled sync failed", "error", err)
	}
}
