// Package worker runs the periodic background jobs.
package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/SinaHo/investment-backend/internal/config"
	"github.com/SinaHo/investment-backend/internal/lock"
	"github.com/SinaHo/investment-backend/internal/service"
)

const dailyReturnsLockKey = "investd:lock:daily-returns"

// DailyReturns periodically credits accrued returns. Each run holds a lease
// so that concurrent replicas do not process the same day twice.
type DailyReturns struct {
	accrual  service.AccrualService
	locker   lock.Locker
	interval time.Duration
	lockTTL  time.Duration
	logger   *zap.SugaredLogger
	now      func() time.Time
}

func NewDailyReturns(accrual service.AccrualService, locker lock.Locker, cfg config.SchedulerConfig, logger *zap.SugaredLogger) *DailyReturns {
	interval := cfg.DailyReturnsInterval
	if interval <= 0 {
		interval = time.Hour
	}
	ttl := cfg.LockTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &DailyReturns{
		accrual:  accrual,
		locker:   locker,
		interval: interval,
		lockTTL:  ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// Run processes once at start and then on every tick until ctx is done.
func (w *DailyReturns) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	w.logger.Infow("daily returns worker started", "interval", w.interval)

	w.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("daily returns worker stopped")
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *DailyReturns) tick(ctx context.Context) {
	if _, _, err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
		w.logger.Errorw("daily returns run failed", "error", err)
	}
}

// RunOnce processes all active investments under the lease. ran is false
// when another holder owns the lease.
func (w *DailyReturns) RunOnce(ctx context.Context) (summary *service.AccrualSummary, ran bool, err error) {
	release, ok, err := w.locker.Acquire(ctx, dailyReturnsLockKey, w.lockTTL)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		w.logger.Debug("daily returns already running elsewhere, skipping")
		return nil, false, nil
	}
	defer func() {
		// ctx may already be cancelled at shutdown.
		if rerr := release(context.Background()); rerr != nil {
			w.logger.Warnw("release daily returns lock", "error", rerr)
		}
	}()

	start := w.now()
	summary, err = w.accrual.ProcessDailyReturns(ctx, start)
	if err != nil {
		return summary, true, err
	}
	w.logger.Infow("daily returns processed",
		"processed", summary.Processed,
		"credited", summary.Credited,
		"amount", summary.CreditedAmount.StringFixed(2),
		"completed", summary.Completed,
		"failed", summary.Failed,
		"took", time.Since(start),
	)
	return summary, true, nil
}
