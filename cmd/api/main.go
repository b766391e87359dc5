package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/juanalonso3/webwatch/internal/config"
	"github.com/juanalonso3/webwatch/internal/dispatch"
	"github.com/juanalonso3/webwatch/internal/httpapi"
	"github.com/juanalonso3/webwatch/internal/httpapi/middleware"
	"github.com/juanalonso3/webwatch/internal/logging"
	"github.com/juanalonso3/webwatch/internal/probe"
	"github.com/juanalonso3/webwatch/internal/repo"
	"github.com/juanalonso3/webwatch/internal/repo/memory"
	"github.com/juanalonso3/webwatch/internal/repo/postgres"
	"github.com/juanalonso3/webwatch/internal/scheduler"
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
		logger.Fatal("targets_load_failed", zap.String("file", cfg.Check.TargetsFile), zap.Error(err))
	}
	if len(list) == 0 {
		logger.Fatal("no_targets", zap.String("file", cfg.Check.TargetsFile))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The in-memory store always serves reads; Postgres, when configured,
	// keeps the latest snapshot across restarts.
	var store repo.SnapshotStore = memory.New()
	if cfg.Database.URL != "" {
		pg, err := postgres.New(ctx, cfg.Database.URL, logger)
		if err != nil {
			logger.Fatal("postgres_connect_failed", zap.Error(err))
		}
		defer pg.Close()
		store = repo.Multi{store, pg}
		logger.Info("postgres_enabled")
	}

	checker := probe.NewHTTPChecker(cfg.Check.RequestTimeout, cfg.BuildPolicy())
	pool := dispatch.NewPool(logger, checker, timesource.NewClient(), cfg.Check.Workers, cfg.Check.MaxRetries)

	runner := scheduler.NewRunner(logger, pool, store, list, cfg.Check.Interval)
	go runner.Run(ctx)

	api := httpapi.NewServer(logger, store, pool, list)
	keys := middleware.Keys{
		Public: cfg.Server.PublicAPIKeys,
		Admin:  cfg.Server.AdminAPIKeys,
	}
	lim := httpapi.Limits{
		PublicRPM:   cfg.Server.PublicRPM,
		PublicBurst: cfg.Server.PublicBurst,
		AdminRPM:    cfg.Server.AdminRPM,
		AdminBurst:  cfg.Server.AdminBurst,
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Router(keys, cfg.Server.AllowedOrigins, lim),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			logger.Warn("shutdown_error", zap.Error(err))
		}
	}()

	logger.Info("api_listen", zap.String("addr", cfg.Server.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("listen_failed", zap.Error(err))
	}
	logger.Info("api_stopped")
}
