package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"channelpost-bot/internal/database"
	"channelpost-bot/internal/logger"
	"channelpost-bot/internal/publisher"

	"github.com/getsentry/sentry-go"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Publisher publishes one post.
type Publisher interface {
	Publish(ctx context.Context, req publisher.Request) (string, error)
}

// Options configures a Scheduler.
type Options struct {
	Interval     time.Duration
	BatchSize    int
	CaptionLimit int
	Location     *time.Location
}

// TickResult summarizes one poll.
type TickResult struct {
	Due       int
	Published int
	Failed    int
}

// Scheduler publishes due jobs on a fixed poll. A job is deleted only after it
// was published; failed jobs stay and are retried on the next tick.
type Scheduler struct {
	jobs   database.JobRepository
	pub    Publisher
	opts   Options
	now    func() time.Time
	logger zerolog.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

// New creates a Scheduler.
func New(jobs database.JobRepository, pub Publisher, opts Options, log zerolog.Logger) *Scheduler {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Scheduler{
		jobs:   jobs,
		pub:    pub,
		opts:   opts,
		now:    time.Now,
		logger: log.With().Str("component", "scheduler").Logger(),
	}
}

// Start begins polling every Interval until ctx is done or Stop is called.
// Ticks never overlap: a tick still running when the next is due is skipped.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return fmt.Errorf("scheduler already started")
	}

	cronLog := logger.Cron(s.logger)
	c := cron.New(
		cron.WithLocation(s.opts.Location),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	c.Schedule(cron.Every(s.opts.Interval), cron.FuncJob(func() {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.Tick(ctx); err != nil {
			s.logger.Error().Err(err).Msg("Scheduler tick failed")
			sentry.CaptureException(err)
		}
	}))
	c.Start()
	s.cron = c

	go func() {
		<-ctx.Done()
		<-s.Stop().Done()
	}()

	s.logger.Info().
		Dur("interval", s.opts.Interval).
		Int("batch_size", s.opts.BatchSize).
		Msg("Scheduler started")
	return nil
}

// Stop halts polling. The returned context is done once a running tick finishes.
func (s *Scheduler) Stop() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	c := s.cron
	s.cron = nil
	s.logger.Info().Msg("Scheduler stopping")
	return c.Stop()
}

// Tick publishes up to BatchSize due jobs, oldest first. Failing to load the
// batch fails the tick; a failing job is left in place and does not stop the batch.
func (s *Scheduler) Tick(ctx context.Context) (TickResult, error) {
	var result TickResult

	due, err := s.jobs.ListDueJobs(ctx, s.now(), s.opts.BatchSize)
	if err != nil {
		return result, fmt.Errorf("failed to load due jobs: %w", err)
	}
	result.Due = len(due)

	for _, job := range due {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		jobLog := s.logger.With().Str("job_id", job.ID).Time("run_at", job.RunAt).Logger()

		postID, err := s.pub.Publish(ctx, publisher.Request{
			ChannelID: job.ChannelID,
			Content:   job.Content(),
			SplitMode: job.SplitMode(s.opts.CaptionLimit),
			CreatedBy: job.CreatedBy,
		})
		if err != nil {
			result.Failed++
			jobLog.Error().Err(err).Msg("Failed to publish scheduled job, will retry")
			sentry.CaptureException(fmt.Errorf("publish job %s: %w", job.ID, err))
			continue
		}

		if err := s.jobs.DeleteJob(ctx, job.ID); err != nil {
			jobLog.Error().Err(err).Str("post_id", postID).Msg("Published job but failed to delete it")
			sentry.CaptureException(fmt.Errorf("delete published job %s: %w", job.ID, err))
		}
		result.Published++
		jobLog.Info().Str("post_id", postID).Msg("Published scheduled job")
	}

	if result.Due > 0 {
		s.logger.Debug().
			Int("due", result.Due).
			Int("published", result.Published).
			Int("failed", result.Failed).
			Msg("Scheduler tick finished")
	}
	return result, nil
}
