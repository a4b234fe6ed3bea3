package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mehrab10/loopgram/backend/internal/repositories"
	"github.com/mehrab10/loopgram/backend/pkg/logger"
)

// DefaultSweepSchedule runs the cleanup once an hour.
const DefaultSweepSchedule = "@every 1h"

// Sweeper owns the recurring job that purges expired clips. The handle is
// created at startup and stopped on shutdown; there is no package-level
// scheduler state.
type Sweeper struct {
	clips repositories.ClipRepository
	log   *logger.Logger
	cron  *cron.Cron
}

func NewSweeper(clips repositories.ClipRepository, log *logger.Logger) *Sweeper {
	// SkipIfStillRunning: a slow sweep must never stack a second concurrent
	// sweep of the same job; the next tick proceeds once the previous run
	// finishes.
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.PrintfLogger(log.Logger)),
	))
	return &Sweeper{clips: clips, log: log, cron: c}
}

// Start registers the hourly sweep and launches the scheduler.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(DefaultSweepSchedule, s.Run); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("clip expiry sweeper started")
	return nil
}

// Run performs one sweep. Failures are logged and swallowed: one bad cycle
// must never crash the scheduling loop or block the next run.
func (s *Sweeper) Run() {
	start := time.Now()
	count, err := s.clips.SweepExpired(context.Background())
	if err != nil {
		s.log.WithError(err).Error("expired clips cleanup failed")
		return
	}
	s.log.WithField("deleted_count", count).
		WithField("duration", time.Since(start).String()).
		Info("expired clips cleanup completed")
}

// Stop halts the scheduler and waits for an in-flight run to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("clip expiry sweeper stopped")
}
