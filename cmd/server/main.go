package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/database"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/logging"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/routes"
	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/tenant"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Structured logging (JSON to stdout)
	stdout := logging.Setup(cfg.LogLevel)

	// Tenant registry
	registry, err := tenant.LoadFromFile(cfg.TenantsConfigPath)
	if err != nil {
		slog.Error("failed to load tenant registry", "path", cfg.TenantsConfigPath, "error", err)
		os.Exit(1)
	}
	slog.Info("tenant registry loaded", "tenants", registry.IDs())

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// Database log handler (ERROR+ async batch)
	dbLogHandler := logging.NewDBHandler(db)
	slog.SetDefault(slog.New(logging.NewMultiHandler(stdout, dbLogHandler)))

	cleanupDone := make(chan struct{})
	logging.StartCleanup(db, cfg.LogRetentionDays, cleanupDone)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		traceRate := 1.0
		if cfg.IsProduction() {
			traceRate = 0.2
		}
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: traceRate,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		}
	}

	h, err := routes.NewHandlers(db, cfg, registry, mailer.New(cfg))
	if err != nil {
		slog.Error("failed to wire handlers", "error", err)
		os.Exit(1)
	}

	app := routes.NewApp(cfg)
	routes.Setup(app, cfg, h)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}
