package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/polancodf2024/consulta/internal/api/router"
	"github.com/polancodf2024/consulta/internal/auth"
	"github.com/polancodf2024/consulta/internal/catalog"
	appconfig "github.com/polancodf2024/consulta/internal/config"
	"github.com/polancodf2024/consulta/internal/document"
	"github.com/polancodf2024/consulta/internal/http/handlers"
	"github.com/polancodf2024/consulta/internal/ledger"
	"github.com/polancodf2024/consulta/internal/observability/metrics"
	"github.com/polancodf2024/consulta/internal/scheduling"
	"github.com/polancodf2024/consulta/pkg/logging"
)

func main() {
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel, cfg.Env)
	logger.Info("starting consulta booking API",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.SessionSecret == "" {
		logger.Error("SESSION_SECRET is required")
		os.Exit(1)
	}

	bookingMetrics := metrics.NewBookingMetrics(nil)

	credentials, err := auth.LoadStore(cfg.CredentialsPath, logger)
	if err != nil {
		logger.Error("failed to load credential store", "error", err)
		os.Exit(1)
	}
	serviceCatalog, err := catalog.Load(cfg.CatalogPath, logger, bookingMetrics)
	if err != nil {
		logger.Error("failed to load service catalog", "error", err)
		os.Exit(1)
	}
	documents, err := document.NewCache(cfg.DocumentCacheSize, logger)
	if err != nil {
		logger.Error("failed to create document cache", "error", err)
		os.Exit(1)
	}

	ledgerStore := ledger.NewStore(cfg.LedgerPath, logger, bookingMetrics)
	allocator := scheduling.NewAllocator(ledgerStore, logger, bookingMetrics)
	sessions := auth.NewSessionManager(cfg.SessionSecret, cfg.SessionTTL)

	routerCfg := &router.Config{
		Logger:         logger,
		AuthHandler:    handlers.NewAuthHandler(credentials, sessions, logger),
		CatalogHandler: handlers.NewCatalogHandler(serviceCatalog),
		BookingHandler: handlers.NewBookingHandler(allocator, serviceCatalog, documents, logger),
		Sessions:       sessions,
		MetricsHandler: promhttp.Handler(),
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
