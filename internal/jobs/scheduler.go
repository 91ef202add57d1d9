package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/notify"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const (
	DefaultSweepSchedule = "1 0 * * *"
	purgeSchedule        = "30 0 * * *"
)

// Sweeper removes swaps whose return date has passed.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

type Options struct {
	SweepSchedule string
	// Retention is how long persisted notifications are kept. Zero disables
	// the purge job.
	Retention time.Duration
	Logger    *slog.Logger
}

// Scheduler runs the expiry sweep and notification purge on a cron schedule
// in UTC.
type Scheduler struct {
	cron      *cron.Cron
	sweeper   Sweeper
	db        *gorm.DB
	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

func NewScheduler(sweeper Sweeper, db *gorm.DB, opts Options) (*Scheduler, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	schedule := opts.SweepSchedule
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}

	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cronLogger{logger: logger}),
			cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger: logger})),
		),
		sweeper:   sweeper,
		db:        db,
		retention: opts.Retention,
		logger:    logger,
		now:       time.Now,
	}

	if _, err := s.cron.AddFunc(schedule, func() { s.RunSweep(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	if s.retention > 0 && db != nil {
		if _, err := s.cron.AddFunc(purgeSchedule, func() { s.RunPurge(context.Background()) }); err != nil {
			return nil, fmt.Errorf("invalid purge schedule: %w", err)
		}
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop prevents new runs and waits for a running job to finish or ctx to
// expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
	}
}

// RunSweep removes expired swaps once.
func (s *Scheduler) RunSweep(ctx context.Context) (int, error) {
	start := s.now()
	removed, err := s.sweeper.SweepExpired(ctx)
	elapsed := s.now().Sub(start)

	metrics.RecordJobRun("sweep", err)
	if err != nil {
		s.logger.Error("expiry sweep failed", "error", err)
		return 0, err
	}
	metrics.RecordSweep(removed, elapsed)
	s.logger.Info("expiry sweep completed", "removed", removed, "duration_ms", elapsed.Milliseconds())
	return removed, nil
}

// RunPurge deletes persisted notifications older than the retention window.
func (s *Scheduler) RunPurge(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)
	deleted, err := notify.PurgeOlderThan(ctx, s.db, cutoff)

	metrics.RecordJobRun("notification_purge", err)
	if err != nil {
		s.logger.Error("notification purge failed", "error", err)
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("notification purge completed", "deleted", deleted)
	}
	return deleted, nil
}

// cronLogger routes cron's own messages to slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
