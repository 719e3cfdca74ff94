package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Pruner drops expired entries from a persistent response cache.
type Pruner interface {
	Prune(ctx context.Context) (int, error)
}

// CacheJanitor periodically prunes a persistent response cache.
type CacheJanitor struct {
	pruner   Pruner
	interval time.Duration
	logger   *zap.Logger
	cron     *cron.Cron
}

func NewCacheJanitor(pruner Pruner, interval time.Duration, logger *zap.Logger) *CacheJanitor {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	j := &CacheJanitor{
		pruner:   pruner,
		interval: interval,
		logger:   logger,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}

	schedule := fmt.Sprintf("@every %ds", max(1, int(interval.Seconds())))
	_, _ = j.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()
		if _, err := j.RunOnce(ctx); err != nil {
			j.logger.Error("response cache prune failed", zap.Error(err))
		}
	})

	return j
}

// Start launches the cron scheduler.
func (j *CacheJanitor) Start() {
	if j == nil || j.pruner == nil {
		return
	}
	j.cron.Start()
	j.logger.Info("cache janitor started", zap.Duration("interval", j.interval))
}

// Stop gracefully stops the scheduler.
func (j *CacheJanitor) Stop(ctx context.Context) {
	if j == nil {
		return
	}
	stopCtx := j.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	j.logger.Info("cache janitor stopped")
}

// RunOnce prunes synchronously.
func (j *CacheJanitor) RunOnce(ctx context.Context) (int, error) {
	if j == nil || j.pruner == nil {
		return 0, nil
	}
	removed, err := j.pruner.Prune(ctx)
	if err != nil {
		return removed, err
	}
	if removed > 0 {
		j.logger.Debug("pruned expired responses", zap.Int("removed", removed))
	}
	return removed, nil
}
