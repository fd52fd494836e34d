package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/obmertz/stocksync/internal/config"
	"github.com/obmertz/stocksync/internal/service/inventory"
)

// runTimeout bounds one full-catalog reconciliation run.
const runTimeout = 10 * time.Minute

// Scheduler triggers the full-catalog sync on a fixed interval.
type Scheduler struct {
	cron   *cron.Cron
	runner *inventory.Runner
	cfg    config.SyncConfig
	logger *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.SyncConfig, runner *inventory.Runner, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Standard 5-field cron expressions (min, hour, dom, month, dow).
	c := cron.New()

	return &Scheduler{
		cron:   c,
		runner: runner,
		cfg:    cfg,
		logger: logger,
	}
}

// Start registers the sync job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule))

	_, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runFullSync)
	if err != nil {
		s.logger.Error("failed to schedule full sync", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runFullSync() {
	s.logger.Info("scheduled full sync triggered")
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	report, err := s.runner.RunFullSync(ctx)
	if err != nil {
		s.logger.Error("scheduled full sync failed", zap.Error(err))
		return
	}

	s.logger.Info("scheduled full sync finished",
		zap.String("run_id", report.RunID),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed))
}
