package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/user/log-console/internal/adapter/api"
	"github.com/user/log-console/internal/adapter/api/handler"
	"github.com/user/log-console/internal/adapter/metrics"
	"github.com/user/log-console/internal/adapter/repository/memory"
	"github.com/user/log-console/internal/domain"
	"github.com/user/log-console/internal/pkg/config"
	"github.com/user/log-console/internal/pkg/logger"
	"github.com/user/log-console/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logger.New(cfg.LogLevel)
	slog.SetDefault(logger)

	m := metrics.NewEngineMetrics()

	// --- Admin and Metrics Server ---
	adminMux := http.NewServeMux()
	adminMux.Handle("/metrics", promhttp.Handler())

	adminServer := &http.Server{
		Addr:    cfg.AdminAddr,
		Handler: adminMux,
	}

	go func() {
		logger.Info("starting admin & metrics server", "addr", adminServer.Addr)
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("admin & metrics server failed", "error", err)
		}
	}()

	// --- Graceful Shutdown Context ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Logging Subsystem ---
	hub := usecase.NewHub(logger, m)
	hub.RegisterProducer(domain.ProducerGeneral, memory.NewRingStore(cfg.GeneralCapacity, cfg.CircularBuffer))
	hub.RegisterProducer(domain.ProducerAPI, memory.NewRingStore(cfg.APICapacity, cfg.CircularBuffer))

	engine := usecase.NewQueryEngine(m)
	exporter := usecase.NewExporter(m)

	// --- Refresh Broker ---
	broker := handler.NewRefreshBroker(ctx, hub, engine, logger, cfg.RefreshInterval)
	hub.AddListener(broker.Nudge)

	// --- HTTP Server ---
	router := api.NewRouter(cfg, logger, hub, engine, exporter, broker)
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 0, // SSE stream stays open
		IdleTimeout:  15 * time.Second,
	}

	go func() {
		logger.Info("starting server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	// --- Wait for shutdown signal ---
	<-ctx.Done()
	logger.Info("shutting down servers...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("admin server shutdown failed", "error", err)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	logger.Info("servers shut down gracefully")
}
