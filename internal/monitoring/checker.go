package monitoring

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Checker logs a metrics snapshot periodically in the background.
type Checker struct {
	collector     *Collector
	interval      time.Duration
	lookbackHours int
}

// NewChecker creates a background checker. A non-positive interval
// defaults to five minutes.
func NewChecker(collector *Collector, interval time.Duration, lookbackHours int) *Checker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Checker{
		collector:     collector,
		interval:      interval,
		lookbackHours: lookbackHours,
	}
}

// Run starts the periodic check loop. It blocks until ctx is cancelled.
func (c *Checker) Run(ctx context.Context) {
	log := zap.L().With(zap.String("component", "monitoring.checker"))
	log.Info("starting checker",
		zap.Duration("interval", c.interval),
		zap.Int("lookback_hours", c.lookbackHours),
	)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("checker stopped")
			return
		case <-ticker.C:
			c.check(ctx, log)
		}
	}
}

func (c *Checker) check(ctx context.Context, log *zap.Logger) {
	snap, err := c.collector.Collect(ctx, c.lookbackHours)
	if err != nil {
		log.Error("monitoring: failed to collect metrics", zap.Error(err))
		return
	}

	fields := []zap.Field{
		zap.Int("total", snap.Total),
		zap.Int("processed", snap.Processed),
		zap.Int("pending", snap.Pending),
		zap.Int("queue_depth", snap.QueueDepth),
	}
	if snap.Stale > 0 {
		log.Warn("monitoring: stale unprocessed results", append(fields, zap.Int("stale", snap.Stale))...)
		return
	}
	log.Debug("monitoring: check complete", fields...)
}
