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

	"github.com/user/speedsale-scraper/internal/app"
	"github.com/user/speedsale-scraper/internal/delivery/http/handler"
	"github.com/user/speedsale-scraper/internal/delivery/http/router"
	"github.com/user/speedsale-scraper/pkg/config"
	"github.com/user/speedsale-scraper/pkg/logger"
	"github.com/user/speedsale-scraper/pkg/metrics"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// --- Logger ---
	logLevel := logger.ParseLevel(cfg.LogLevel)
	logger.Init(os.Stdout, logLevel, cfg.LogFormat)
	slog.Info("Logger initialized", "level", logLevel.String())

	// --- Metrics ---
	metrics.Init()
	slog.Info("Metrics initialized")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Stores and use cases ---
	a, err := app.New(ctx, cfg, app.Options{})
	if err != nil {
		slog.Error("Failed to start application", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	// --- HTTP Server ---
	var jobs handler.JobSubmitter
	if a.Jobs != nil {
		jobs = a.Jobs
	}
	if cfg.CronSecret == "" {
		slog.Warn("CRON_SECRET is not set, cron endpoints will reject every request")
	}
	apiHandler := handler.NewHandler(a.Orchestrator, a.Alerts, a.Health, jobs)
	httpRouter := router.New(apiHandler, cfg.CronSecret, cfg.Scraper.JobTimeout)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", "port", cfg.Server.Port, "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
}
