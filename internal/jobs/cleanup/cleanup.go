package cleanup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

type quotaPruner interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type eventPruner interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type Config struct {
	Interval       time.Duration
	QuotaRetention time.Duration
	EventRetention time.Duration
}

// Job prunes expired daily counters and old events on a fixed interval.
type Job struct {
	quotas quotaPruner
	events eventPruner
	cfg    Config
	now    func() time.Time
	logger *zap.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewJob(quotas quotaPruner, events eventPruner, logger *zap.Logger, cfg Config) *Job {
	if cfg.Interval <= 0 {
		cfg.Interval = 6 * time.Hour
	}
	if cfg.QuotaRetention <= 0 {
		cfg.QuotaRetention = 30 * 24 * time.Hour
	}
	if cfg.EventRetention <= 0 {
		cfg.EventRetention = 90 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		quotas: quotas,
		events: events,
		cfg:    cfg,
		now:    time.Now,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

func (j *Job) Start(ctx context.Context) {
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()

		ticker := time.NewTicker(j.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-j.stopCh:
				return
			case <-ticker.C:
				if err := j.Run(ctx); err != nil {
					j.logger.Warn("cleanup pass failed", zap.Error(err))
				}
			}
		}
	}()
}

func (j *Job) Stop() {
	j.stopOnce.Do(func() {
		close(j.stopCh)
	})
	j.wg.Wait()
}

func (j *Job) Run(ctx context.Context) error {
	now := j.now().UTC()

	if j.quotas != nil {
		cutoff := now.Add(-j.cfg.QuotaRetention)
		rows, err := j.quotas.PruneBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("prune daily quotas: %w", err)
		}
		if rows > 0 {
			j.logger.Info("pruned daily quotas", zap.Int64("deleted", rows))
		}
	}

	if j.events != nil {
		cutoff := now.Add(-j.cfg.EventRetention)
		rows, err := j.events.PruneBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("prune events: %w", err)
		}
		if rows > 0 {
			j.logger.Info("pruned events", zap.Int64("deleted", rows))
		}
	}

	return nil
}
