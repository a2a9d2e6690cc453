package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/tejusbharadwaj/wnsm-sync/internal/models"
	"github.com/tejusbharadwaj/wnsm-sync/internal/poller"
)

// DefaultSchedule polls once an hour.
const DefaultSchedule = "@every 1h"

// CycleRunner executes one poll cycle.
type CycleRunner interface {
	RunCycle(ctx context.Context) (map[string]models.PollResult, error)
}

// CycleHook is told about every finished cycle, successful or not.
type CycleHook func(results map[string]models.PollResult, err error)

type Scheduler struct {
	ctx       context.Context
	runner    CycleRunner
	logger    *logrus.Logger
	cron      *cron.Cron
	schedule  string
	timeout   time.Duration
	immediate bool
	hooks     []CycleHook

	// tracks the immediate cycle, which runs outside cron
	wg sync.WaitGroup
}

type Option func(*Scheduler)

// WithSchedule sets the cron expression, e.g. "0 * * * *" or "@every 30m".
func WithSchedule(spec string) Option {
	return func(s *Scheduler) {
		if spec != "" {
			s.schedule = spec
		}
	}
}

// WithCycleTimeout bounds a single cycle. Zero means no bound.
func WithCycleTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.timeout = d }
}

// WithImmediateRun controls whether Start runs a cycle right away.
func WithImmediateRun(run bool) Option {
	return func(s *Scheduler) { s.immediate = run }
}

func WithCycleHook(h CycleHook) Option {
	return func(s *Scheduler) { s.hooks = append(s.hooks, h) }
}

func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.cron = newCron(s.logger, loc)
		}
	}
}

func NewScheduler(ctx context.Context, runner CycleRunner, logger *logrus.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		ctx:       ctx,
		runner:    runner,
		logger:    logger,
		schedule:  DefaultSchedule,
		immediate: true,
	}
	s.cron = newCron(logger, time.Local)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newCron(logger *logrus.Logger, loc *time.Location) *cron.Cron {
	// a tick arriving while a cycle still runs is dropped
	return cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(logger))),
	)
}

// Start registers the poll job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runCycle); err != nil {
		return err
	}
	s.logger.WithField("schedule", s.schedule).Info("poll scheduler started")

	if s.immediate {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.runCycle()
		}()
	}
	s.cron.Start()
	return nil
}

// Stop halts the cron loop and waits for running cycles to return,
// including the immediate one started by Start.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.logger.Info("poll scheduler stopped")
}

func (s *Scheduler) runCycle() {
	if s.ctx.Err() != nil {
		return
	}

	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, s.timeout)
		defer cancel()
	}

	results, err := s.runner.RunCycle(ctx)
	if errors.Is(err, poller.ErrCycleInProgress) {
		s.logger.Debug("previous poll cycle still running, tick skipped")
		return
	}
	if err != nil {
		s.logger.WithError(err).Error("poll cycle failed")
	}

	for _, h := range s.hooks {
		h(results, err)
	}
}
