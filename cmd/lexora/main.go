package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/lexora-app/lexora/internal/app"
	"github.com/lexora-app/lexora/internal/authz"
	"github.com/lexora-app/lexora/internal/decks"
	"github.com/lexora-app/lexora/internal/observability"
	"github.com/lexora-app/lexora/internal/platform/cache"
	"github.com/lexora-app/lexora/internal/platform/db"
	"github.com/lexora-app/lexora/internal/rbac"
	"github.com/lexora-app/lexora/internal/shared"
	"github.com/lexora-app/lexora/internal/users"
	"github.com/lexora-app/lexora/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "lexora_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())

	metrics := observability.NewMetrics()
	store := authz.NewPGStore(pool)
	engine := authz.NewEngine(authz.EngineConfig{
		Store:         store,
		KernelRealmID: cfg.KernelRealmID,
		Logger:        logger,
		Recorder:      metrics,
	})

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	outcomes := cache.NewOutcomeStore(redisClient, 24*time.Hour)

	decksService := decks.NewService(decks.NewRepository(pool), engine)
	usersService := users.NewService(users.NewRepository(pool), engine)
	rbacService := rbac.NewService(rbac.NewRepository(pool), engine, cfg.KernelRealmID)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		Store:          store,
		DecksHandler:   decks.NewHandler(logger, decksService, jobsClient),
		UsersHandler:   users.NewHandler(logger, usersService),
		RBACHandler:    rbac.NewHandler(logger, rbacService),
		JobHandler:     jobs.NewHandler(inspector, outcomes, logger),
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
