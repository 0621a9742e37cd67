// ABOUTME: Cron trigger that runs the publish cycle on a schedule in a fixed time zone.
// ABOUTME: Overlapping fires are skipped and panics in a run are recovered and logged.
package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/2389-research/riddleking/internal/logging"
	"github.com/2389-research/riddleking/internal/models"
)

// Schedule defaults: every day at 09:00 UTC.
const (
	DefaultSchedule = "0 9 * * *"
	DefaultTimezone = "UTC"
	DefaultTimeout  = 5 * time.Minute
)

// Runner is one triggerable unit of work; *Cycle implements it.
type Runner interface {
	Run(ctx context.Context) (*models.PostRecord, error)
}

// Scheduler fires a Runner on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	schedule cron.Schedule
	loc      *time.Location
	runner   Runner
	logger   *logging.Logger
	timeout  time.Duration
}

// NewScheduler parses expr (standard five-field cron or a descriptor such as
// @daily) and evaluates it in the named time zone.
func NewScheduler(expr, tz string, runner Runner, logger *logging.Logger) (*Scheduler, error) {
	if expr == "" {
		expr = DefaultSchedule
	}
	if tz == "" {
		tz = DefaultTimezone
	}
	if logger == nil {
		logger = logging.Discard()
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", expr, err)
	}

	s := &Scheduler{
		schedule: schedule,
		loc:      loc,
		runner:   runner,
		logger:   logger,
		timeout:  DefaultTimeout,
	}

	cl := cronLogger{logger: logger.WithPrefix("cron")}
	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	s.cron.Schedule(schedule, cron.FuncJob(s.fire))
	return s, nil
}

// SetTimeout bounds a single scheduled run.
func (s *Scheduler) SetTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

// Start begins firing in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule. The returned context is done once any running
// cycle has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Next reports the next fire time after now, in the scheduler's zone.
func (s *Scheduler) Next() time.Time {
	return s.NextAfter(time.Now())
}

// NextAfter reports the first fire time after t.
func (s *Scheduler) NextAfter(t time.Time) time.Time {
	return s.schedule.Next(t.In(s.loc))
}

// Location returns the zone the schedule is evaluated in.
func (s *Scheduler) Location() *time.Location {
	return s.loc
}

func (s *Scheduler) fire() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	s.logger.Info("Running scheduled riddle post...")
	if _, err := s.runner.Run(ctx); err != nil {
		if errors.Is(err, ErrCycleInProgress) {
			return
		}
		s.logger.Warn("Scheduled run failed, waiting for next fire", "err", err, "next", s.Next().Format(time.RFC3339))
	}
}

// cronLogger adapts the app logger to cron.Logger.
type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "err", err)...)
}
