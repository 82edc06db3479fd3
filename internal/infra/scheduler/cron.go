// Package scheduler wraps robfig/cron to drive usecase/scheduler.Scheduler's
// Tick on a schedule, the way cmd/worker's startCronWorker wires a crawl job
// inline, pulled out into a reusable component so cmd/aggregatord can start
// and stop it alongside its other long-running pieces.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"feedcore/internal/infra/worker"
)

// Tick is the function a CronDriver calls on each scheduled fire. It is
// usecase/scheduler.Scheduler.Tick in production, a fake in tests.
type Tick func(ctx context.Context) error

// CronDriver fires Tick on a cron schedule, bounding each run with a
// timeout and recording outcomes to worker.WorkerMetrics.
type CronDriver struct {
	cron    *cron.Cron
	logger  *slog.Logger
	metrics *worker.WorkerMetrics
	timeout time.Duration
	tick    Tick
}

// New builds a CronDriver for schedule in timezone. An invalid timezone
// falls back to UTC with a warning rather than failing startup, matching
// the fail-open posture WorkerConfig already takes on its other fields.
func New(schedule, timezone string, timeout time.Duration, metrics *worker.WorkerMetrics, tick Tick) (*CronDriver, error) {
	logger := slog.Default()

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		logger.Warn("invalid timezone for scheduler cron, using UTC",
			slog.String("timezone", timezone), slog.Any("error", err))
		loc = time.UTC
	}

	d := &CronDriver{
		cron:    cron.New(cron.WithLocation(loc)),
		logger:  logger,
		metrics: metrics,
		timeout: timeout,
		tick:    tick,
	}

	if _, err := d.cron.AddFunc(schedule, d.run); err != nil {
		return nil, err
	}
	return d, nil
}

// Start starts the cron scheduler; scheduling runs in its own goroutine.
func (d *CronDriver) Start() {
	d.cron.Start()
}

// Stop stops the cron scheduler and blocks until any running tick finishes
// or ctx is done, whichever comes first.
func (d *CronDriver) Stop(ctx context.Context) {
	stopCtx := d.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
}

func (d *CronDriver) run() {
	start := time.Now()
	d.metrics.RecordJobRun("started")
	d.logger.Info("scheduled tick started")

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.tick(ctx); err != nil {
		d.logger.Error("scheduled tick failed", slog.Any("error", err))
		d.metrics.RecordJobRun("failure")
		d.metrics.RecordJobDuration(time.Since(start).Seconds())
		return
	}

	d.metrics.RecordJobRun("success")
	d.metrics.RecordJobDuration(time.Since(start).Seconds())
	d.metrics.RecordLastSuccess()
	d.logger.Info("scheduled tick completed", slog.Duration("duration", time.Since(start)))
}
