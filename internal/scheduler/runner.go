package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/juanalonso3/webwatch/internal/dispatch"
	"github.com/juanalonso3/webwatch/internal/repo"
	"github.com/juanalonso3/webwatch/internal/stats"
)

// Runner re-checks the fixed target list on an interval and stores each
// batch's snapshot. Concurrency within a batch belongs to the pool; the
// runner never overlaps two batches.
type Runner struct {
	Logger   *zap.Logger
	Pool     *dispatch.Pool
	Store    repo.SnapshotStore
	Targets  []string
	Interval time.Duration
}

func NewRunner(
	logger *zap.Logger,
	pool *dispatch.Pool,
	store repo.SnapshotStore,
	targets []string,
	interval time.Duration,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval < 0 {
		interval = 0
	}
	return &Runner{
		Logger:   logger,
		Pool:     pool,
		Store:    store,
		Targets:  targets,
		Interval: interval,
	}
}

// Run starts the loop. It does an immediate pass, then runs each tick.
// Stops when ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	if r.Interval == 0 {
		// disabled
		r.Logger.Info("scheduler_disabled")
		return
	}
	t := time.NewTicker(r.Interval)
	defer t.Stop()

	// immediate pass
	r.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			r.Logger.Info("scheduler_stopped")
			return
		case <-t.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	if len(r.Targets) == 0 {
		return
	}

	started := time.Now()
	results := r.Pool.CheckAll(ctx, r.Targets)
	sum := stats.Compute(results)
	snap := repo.NewSnapshot(results, sum)

	if err := r.Store.Save(ctx, snap); err != nil {
		r.Logger.Warn("snapshot_save_error", zap.Error(err))
	}

	r.Logger.Info("check_run_complete",
		zap.Int("targets", sum.Total),
		zap.Int("successes", sum.Successes),
		zap.Int("http_errors", sum.HTTPErrors),
		zap.Int("transport_errors", sum.TransportErrors),
		zap.Float64("uptime_pct", sum.UptimePct),
		zap.Duration("took", time.Since(started)),
	)
}
