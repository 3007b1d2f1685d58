// Package cron runs the housekeeping jobs: idle session eviction and the
// purge of stale Postgres drafts.
package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/makerhub/innovation-wizard/internal/logging"
)

const (
	EvictSpec = "*/5 * * * *"
	PurgeSpec = "0 3 * * *"

	purgeTimeout = time.Minute
)

// Evictor is satisfied by the wizard and catalyst services.
type Evictor interface {
	EvictIdle(maxIdle time.Duration) int
}

// Purger is satisfied by *draftstore.PostgresSlot.
type Purger interface {
	Purge(ctx context.Context, retention time.Duration) (int64, error)
}

type Options struct {
	IdleTimeout time.Duration
	Retention   time.Duration
}

// Scheduler handles scheduled tasks
type Scheduler struct {
	cron     *cron.Cron
	evictors map[string]Evictor
	purger   Purger
	opt      Options
}

// NewScheduler creates a scheduler. purger may be nil when drafts are not in Postgres.
func NewScheduler(evictors map[string]Evictor, purger Purger, opt Options) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		evictors: evictors,
		purger:   purger,
		opt:      opt,
	}
}

// Start registers the jobs and starts the scheduler
func (s *Scheduler) Start() error {
	if len(s.evictors) > 0 && s.opt.IdleTimeout > 0 {
		if _, err := s.cron.AddFunc(EvictSpec, s.EvictIdle); err != nil {
			return fmt.Errorf("schedule eviction: %w", err)
		}
	}
	if s.purger != nil && s.opt.Retention > 0 {
		if _, err := s.cron.AddFunc(PurgeSpec, func() { _, _ = s.PurgeDrafts(context.Background()) }); err != nil {
			return fmt.Errorf("schedule purge: %w", err)
		}
	}

	s.cron.Start()
	logging.L().Sugar().Infof("[Cron] Scheduler started with %d jobs", len(s.cron.Entries()))
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logging.L().Sugar().Info("[Cron] Scheduler stopped")
}

// EvictIdle unmounts sessions idle longer than the configured timeout.
func (s *Scheduler) EvictIdle() {
	logger := logging.NewLogger(context.Background())
	for name, ev := range s.evictors {
		if n := ev.EvictIdle(s.opt.IdleTimeout); n > 0 {
			logger.LogInfof("evict_idle", "%s: evicted %d idle sessions", name, n)
		}
	}
}

// PurgeDrafts deletes Postgres drafts older than the retention window.
func (s *Scheduler) PurgeDrafts(ctx context.Context) (int64, error) {
	if s.purger == nil {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, purgeTimeout)
	defer cancel()

	logger := logging.NewLogger(ctx)
	n, err := s.purger.Purge(ctx, s.opt.Retention)
	if err != nil {
		logger.LogError("purge_drafts", err)
		return 0, err
	}
	logger.LogInfof("purge_drafts", "purged %d drafts older than %s", n, s.opt.Retention)
	return n, nil
}
