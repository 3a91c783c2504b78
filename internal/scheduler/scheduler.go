// Package scheduler runs the job board's periodic background work: warming
// the home listings cache and sweeping idle rate-limit buckets.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/job-board/internal/config"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// bucketIdle is how long a rate-limit bucket may go unused before a sweep drops it.
const bucketIdle = time.Hour

// Warmer preloads cached listings.
type Warmer interface {
	WarmListings(ctx context.Context) error
}

// Sweeper drops rate-limit state idle for longer than maxIdle and reports how
// much it removed.
type Sweeper interface {
	Sweep(maxIdle time.Duration) int
}

// Scheduler wraps robfig/cron and owns the background jobs.
type Scheduler struct {
	cron    *cron.Cron
	log     *zap.SugaredLogger
	specs   config.Scheduler
	warmer  Warmer
	sweeper Sweeper
}

// New creates a Scheduler. A nil warmer or sweeper, or an empty spec,
// disables that job.
func New(specs config.Scheduler, warmer Warmer, sweeper Sweeper, log *zap.SugaredLogger) *Scheduler {
	logger := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		log:     log,
		specs:   specs,
		warmer:  warmer,
		sweeper: sweeper,
	}
}

// Start registers the enabled jobs and starts the scheduler. The listings are
// also warmed once immediately so the first visitor does not pay for it.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.warmer != nil && s.specs.WarmListings != "" {
		if _, err := s.cron.AddFunc(s.specs.WarmListings, func() { s.runWarm(ctx) }); err != nil {
			return fmt.Errorf("invalid warm_listings spec %q: %w", s.specs.WarmListings, err)
		}
	}
	if s.sweeper != nil && s.specs.SweepRateLimit != "" {
		if _, err := s.cron.AddFunc(s.specs.SweepRateLimit, s.runSweep); err != nil {
			return fmt.Errorf("invalid sweep_ratelimit spec %q: %w", s.specs.SweepRateLimit, err)
		}
	}

	s.cron.Start()
	s.log.Infow("scheduler started", "jobs", len(s.cron.Entries()))

	if s.warmer != nil && s.specs.WarmListings != "" {
		go s.runWarm(ctx)
	}
	return nil
}

// Stop stops scheduling and waits for running jobs to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
	s.log.Infow("scheduler stopped")
}

func (s *Scheduler) runWarm(ctx context.Context) {
	start := time.Now()
	if err := s.warmer.WarmListings(ctx); err != nil {
		s.log.Warnw("listing warm failed", "error", err)
		return
	}
	s.log.Debugw("listings warmed", "duration", time.Since(start))
}

func (s *Scheduler) runSweep() {
	removed := s.sweeper.Sweep(bucketIdle)
	s.log.Infow("rate limit sweep", "removed", removed)
}

// cronLogger routes cron's own logging through zap.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
