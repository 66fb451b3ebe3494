package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/shelfline/shelfline-server/internal/config"
	"github.com/shelfline/shelfline-server/internal/logger"
	"github.com/shelfline/shelfline-server/internal/sweep"
)

// SweepJob runs the periodic overdue-loan sweep.
type SweepJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *SweepJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideSweepJob starts the overdue sweep on its configured interval.
//
// Each tick is independent: a failed tick is logged and the next one runs
// regardless. The sweeper's inserts dedup on (borrow, type), so interval
// choice only affects detection latency, never correctness.
func ProvideSweepJob(i do.Injector) (*SweepJob, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	sweeper := sweep.New(storeHandle.Store, sweep.Config{
		ReminderDays: cfg.Sweep.ReminderDays,
		OverdueDays:  cfg.Sweep.OverdueDays,
	}, log.Logger)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(cfg.Sweep.Interval)
		defer ticker.Stop()

		// Initial sweep on startup.
		if err := sweeper.RunOnce(ctx); err != nil {
			log.Warn("Initial overdue sweep failed", "error", err)
		}

		for {
			select {
			case <-ticker.C:
				if err := sweeper.RunOnce(ctx); err != nil {
					log.Warn("Overdue sweep failed", "error", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Overdue sweep started",
		"interval", cfg.Sweep.Interval,
		"reminder_days", cfg.Sweep.ReminderDays,
		"overdue_days", cfg.Sweep.OverdueDays,
	)

	return &SweepJob{cancel: cancel}, nil
}
