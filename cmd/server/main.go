package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ishihatta/HamiotFirebase/internal/config"
	"github.com/ishihatta/HamiotFirebase/internal/directory"
	"github.com/ishihatta/HamiotFirebase/internal/engine"
	"github.com/ishihatta/HamiotFirebase/internal/handler"
	"github.com/ishihatta/HamiotFirebase/internal/ledger"
	"github.com/ishihatta/HamiotFirebase/internal/middleware"
	"github.com/ishihatta/HamiotFirebase/internal/notify"
	"github.com/ishihatta/HamiotFirebase/internal/queue"
	"github.com/ishihatta/HamiotFirebase/internal/telemetry"
	"github.com/ishihatta/HamiotFirebase/internal/transfer"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize structured logging
	telemetry.InitLogger(cfg.ServiceName, telemetry.ParseLevel(cfg.LogLevel))

	// Initialize OpenTelemetry tracing
	cleanup, err := telemetry.InitTracer(telemetry.TracingConfig{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.OTLPAddress,
		Environment: cfg.Environment,
	})
	if err != nil {
		slog.Warn("failed to initialize tracer", "error", err)
	} else {
		defer cleanup()
	}

	gin.SetMode(cfg.GinMode)

	slog.Info("starting asset transfer gateway", "ledger", cfg.LedgerAddress, "asset_id", cfg.LedgerAssetID)

	// 1. Ledger connection, shared by submission and attribute queries
	ledgerClient, err := ledger.Dial(cfg.LedgerAddress, ledger.Options{
		SubmitTimeout: cfg.LedgerSubmitTimeout,
		QueryTimeout:  cfg.LedgerQueryTimeout,
	})
	if err != nil {
		fatal("failed to create ledger client", err)
	}
	defer ledgerClient.Close()

	signer, err := ledger.NewSigner(cfg.LedgerSignatureScheme, cfg.LedgerAdminPrivateKey)
	if err != nil {
		fatal("invalid admin private key", err)
	}

	// 2. Push gateway
	gateway, closeGateway, err := newGateway(cfg)
	if err != nil {
		fatal("failed to initialize push gateway", err)
	}
	defer closeGateway()

	// 3. Pipeline
	dir := directory.NewLedgerDirectory(ledgerClient, signer, cfg.LedgerAdminAccount)
	dispatcher := notify.NewDispatcher(gateway, cfg.NotifyTimeout)
	transfers := engine.NewTransferEngine(transfer.NewValidator(cfg.LedgerAssetID), ledgerClient, dir, dispatcher)
	accounts := engine.NewAccountService(engine.AccountConfig{
		AdminAccountID: cfg.LedgerAdminAccount,
		DomainID:       cfg.LedgerDomain,
		LedgerAddress:  cfg.LedgerAddress,
	}, ledgerClient, signer, dir)

	// 4. HTTP
	h := handler.NewHandler(transfers, accounts)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Tracing())
	router.Use(middleware.Metrics())
	handler.SetupRoutes(router, h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// Metrics server (separate port for Prometheus scraping)
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler: metricsMux,
	}

	go func() {
		slog.Info("HTTP server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("HTTP server error", err)
		}
	}()

	go func() {
		slog.Info("metrics server listening", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("metrics server error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Warn("HTTP server forced to shutdown", "error", err)
	}

	// Pending notifications still need the ledger and the gateway.
	drained := make(chan struct{})
	go func() {
		transfers.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-ctx.Done():
		slog.Warn("background notifications still running at shutdown")
	}

	if err := metricsSrv.Shutdown(ctx); err != nil {
		slog.Warn("metrics server forced to shutdown", "error", err)
	}

	slog.Info("service stopped")
}

func newGateway(cfg config.Config) (notify.Gateway, func(), error) {
	switch cfg.PushDriver {
	case config.PushDriverNATS:
		client, err := queue.NewNATSClient(cfg.NATSUrl, cfg.NATSPushSubject)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("publishing pushes to NATS", "url", cfg.NATSUrl, "subject", cfg.NATSPushSubject)
		return client, client.Close, nil
	case config.PushDriverLog:
		return notify.LogGateway{}, func() {}, nil
	default:
		gw, err := notify.NewFCMGateway(context.Background(), cfg.FirebaseCredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		return gw, func() {}, nil
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
