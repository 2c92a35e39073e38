package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/lexora-app/lexora/internal/app"
	"github.com/lexora-app/lexora/internal/authz"
	"github.com/lexora-app/lexora/internal/decks"
	jobmetrics "github.com/lexora-app/lexora/internal/jobs"
	"github.com/lexora-app/lexora/internal/observability"
	"github.com/lexora-app/lexora/internal/platform/cache"
	"github.com/lexora-app/lexora/internal/platform/db"
	"github.com/lexora-app/lexora/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	outcomes := cache.NewOutcomeStore(redisClient, 24*time.Hour)

	metrics := observability.NewMetrics()
	store := authz.NewPGStore(pool)
	engine := authz.NewEngine(authz.EngineConfig{
		Store:         store,
		KernelRealmID: cfg.KernelRealmID,
		Logger:        logger,
		Recorder:      metrics,
	})
	decksService := decks.NewService(decks.NewRepository(pool), engine)
	jobMetrics := jobmetrics.NewMetrics(nil)

	auditTask, err := jobs.NewGrantAuditTask(time.Now())
	if err != nil {
		logger.Error("build grant audit task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskDeckBulkArchive, Handler: jobs.NewDeckBulkArchiveHandler(logger, store, decksService, outcomes, jobMetrics)},
			{Type: jobs.TaskGrantAudit, Handler: jobs.NewGrantAuditHandler(logger, pool, jobMetrics)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 3 * * *", Task: auditTask},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker stopped")
}
