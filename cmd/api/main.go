package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rsinghdev/storekhata-backend/api/routes"
	"github.com/rsinghdev/storekhata-backend/internal/accounts"
	"github.com/rsinghdev/storekhata-backend/internal/ledger"
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
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	pendingStore, err := pending.NewStore(pending.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create pending store", err)
		os.Exit(1)
	}

	snapshotCache, err := ledger.NewSnapshotCache(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create snapshot cache", err)
		os.Exit(1)
	}

	ledgerMetrics := metrics.NewLedgerMetrics(prometheus.DefaultRegisterer)

	viewService, err := ledger.NewService(ledger.ServiceParams{
		Remote:      remoteClient,
		Pending:     pendingStore,
		Cache:       snapshotCache,
		Logger:      logg,
		Metrics:     ledgerMetrics,
		SnapshotTTL: cfg.RemoteLedger.SnapshotTTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger view service", err)
		os.Exit(1)
	}

	writer, err := ledger.NewWriter(ledger.WriterParams{
		Remote:  remoteClient,
		Pending: pendingStore,
		Views:   viewService,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger writer", err)
		os.Exit(1)
	}

	accountService, err := accounts.NewService(accounts.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create account service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:   cfg,
			Logger:   logg,
			DB:       dbClient,
			Redis:    redisClient,
			Accounts: accountService,
			Views:    viewService,
			Writer:   writer,
			Remote:   remoteClient,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
