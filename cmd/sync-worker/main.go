package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rsinghdev/storekhata-backend/internal/cron"
	"github.com/rsinghdev/storekhata-backend/internal/pending"
	"github.com/rsinghdev/storekhata-backend/internal/remoteledger"
	"github.com/rsinghdev/storekhata-backend/pkg/config"
	"github.com/rsinghdev/storekhata-backend/pkg/db"
	"github.com/rsinghdev/storekhata-backend/pkg/logger"
	"github.com/rsinghdev/storekhata-backend/pkg/metrics"
	"github.com/rsinghdev/storekhata-backend/pkg/migrate"
	"github.com/rsinghdev/storekhata-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "sync-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "sync-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	remoteClient, err := remoteledger.NewClient(
		cfg.RemoteLedger.BaseURL,
		cfg.RemoteLedger.APIToken,
		remoteledger.WithTimeout(cfg.RemoteLedger.Timeout),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create remote ledger client", err)
		os.Exit(1)
	}

	pendingRepo := pending.NewRepository(dbClient.DB())
	cronMetrics := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	ledgerMetrics := metrics.NewLedgerMetrics(prometheus.DefaultRegisterer)

	retryJob, err := cron.NewPendingRetryJob(cron.PendingRetryJobParams{
		Logger:      logg,
		Repository:  pendingRepo,
		Remote:      remoteClient,
		Metrics:     ledgerMetrics,
		BatchSize:   cfg.Sync.BatchSize,
		MaxAttempts: cfg.Sync.MaxAttempts,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create pending retry job", err)
		os.Exit(1)
	}

	reconcileJob, err := cron.NewPendingReconcileJob(cron.PendingReconcileJobParams{
		Logger:          logg,
		Repository:      pendingRepo,
		Remote:          remoteClient,
		Metrics:         ledgerMetrics,
		PromotionWindow: cfg.Sync.PromotionWindow,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create pending reconcile job", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry()
	registry.Register(retryJob)
	registry.Register(reconcileJob)

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("sync-worker"), cfg.Sync.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create sync lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Registry: registry,
		Lock:     lock,
		Logger:   logg,
		Metrics:  cronMetrics,
		Interval: cfg.Sync.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create sync worker", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	logg.Info(ctx, "starting sync worker")
	if err := service.Run(ctx); err != nil && err != context.Canceled {
		logg.Error(ctx, "sync worker exited with error", err)
		os.Exit(1)
	}
	logg.Info(ctx, "sync worker stopped")
}
