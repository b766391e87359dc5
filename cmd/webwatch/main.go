package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/juanalonso3/webwatch/internal/config"
	"github.com/juanalonso3/webwatch/internal/dispatch"
	"github.com/juanalonso3/webwatch/internal/logging"
	"github.com/juanalonso3/webwatch/internal/probe"
	"github.com/juanalonso3/webwatch/internal/report"
	"github.com/juanalonso3/webwatch/internal/stats"
	"github.com/juanalonso3/webwatch/internal/targets"
	"github.com/juanalonso3/webwatch/internal/timesource"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	list, err := targets.Load(cfg.Check.TargetsFile)
	if err != nil {
		log.Fatal(err)
	}
	if len(list) == 0 {
		log.Fatalf("no targets found in %s", cfg.Check.TargetsFile)
	}

	checker := probe.NewHTTPChecker(cfg.Check.RequestTimeout, cfg.BuildPolicy())
	pool := dispatch.NewPool(logger, checker, timesource.NewClient(), cfg.Check.Workers, cfg.Check.MaxRetries)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("monitor_start",
		zap.Int("targets", len(list)),
		zap.Int("workers", cfg.Check.Workers),
		zap.Int("max_retries", cfg.Check.MaxRetries),
		zap.Duration("interval", cfg.Check.Interval),
	)

	for {
		fmt.Println("=== Running website checks ===")
		results := pool.CheckAll(ctx, list)
		sum := stats.Compute(results)
		report.WriteBatch(os.Stdout, results, sum)

		logger.Info("check_run_complete",
			zap.Int("targets", sum.Total),
			zap.Int("successes", sum.Successes),
			zap.Int("http_errors", sum.HTTPErrors),
			zap.Int("transport_errors", sum.TransportErrors),
			zap.Float64("uptime_pct", sum.UptimePct),
		)

		// Interval zero means a single pass, e.g. for cron.
		if cfg.Check.Interval <= 0 {
			return
		}
		fmt.Printf("Sleeping %s before next run...\n\n", cfg.Check.Interval)
		select {
		case <-ctx.Done():
			logger.Info("monitor_stopped")
			return
		case <-time.After(cfg.Check.Interval):
		}
	}
}
