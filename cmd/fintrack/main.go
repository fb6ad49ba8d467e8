package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	applog "fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)
	ctx := context.Background()

	opts, err := cfg.ReportOptions()
	if err != nil {
		cli.Fatal(logger, "Invalid report options", err)
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid backend configuration", err)
	}
	store, err := backend.NewFactory(logger.WithComponent(applog.ComponentStorage).Slog()).Create(ctx, bcfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize backend", err, "backend", cfg.DataBackend)
	}
	metrics.Init(store.DB)

	dashCache, err := cli.NewDashboardCache(ctx, cfg, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize dashboard cache", err)
	}

	dashboards := services.NewDashboardService(store.Store, dashCache.Cache, opts, cfg.Report.Window,
		logger.WithComponent(applog.ComponentReport).Slog())

	// AMQP is optional; without it dashboards are only invalidated locally.
	var (
		publisher  services.ChangePublisher
		amqpClient *amqp.Client
	)
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without change events", "error", err)
			amqpClient = nil
		} else {
			publisher = amqpClient
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	ledgerSvc := services.NewLedgerService(store.Store, dashboards, publisher,
		logger.WithComponent(applog.ComponentLedger).Slog())

	checks := map[string]apphttp.ReadinessCheck{"database": store.Ready}
	if dashCache.Ready != nil {
		checks["cache"] = dashCache.Ready
	}

	srv, err := apphttp.NewServer(apphttp.Config{
		Addr:              ":" + cfg.Port,
		JWTSecret:         []byte(cfg.JWTSecret),
		CORSOrigins:       cfg.CORSOrigins,
		RequestsPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:    cfg.TrustedProxies,
		Language:          cfg.LanguageTag(),
	}, dashboards, ledgerSvc, checks, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to configure server", err)
	}

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		dashCache.Close()
		if amqpClient != nil {
			_ = amqpClient.Close()
		}
		if err := store.Close(); err != nil {
			logger.Error("Backend close error", "error", err)
		}
	})

	logger.Info("Starting fintrack server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"window", cfg.Report.Window,
		"language", cfg.Report.Language)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cli.Fatal(logger, "Server error", err, "port", cfg.Port)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
