package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/leadgate/internal/api/router"
	"github.com/wolfman30/leadgate/internal/app/bootstrap"
	appconfig "github.com/wolfman30/leadgate/internal/config"
	"github.com/wolfman30/leadgate/internal/leads"
	"github.com/wolfman30/leadgate/internal/observability/metrics"
	"github.com/wolfman30/leadgate/internal/session"
	"github.com/wolfman30/leadgate/pkg/logging"
)

func main() {
	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting leadgate API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"form_variant", cfg.LeadFormVariant,
		"session_verification", cfg.SessionVerification,
	)

	if err := cfg.Validate(); err != nil {
		logger.Error("refusing to start: invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pools, err := bootstrap.BuildStorePools(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect lead store", "error", err)
		os.Exit(1)
	}
	defer pools.Close()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	metricsHandler, leadMetrics := setupLeadMetrics()

	routerCfg, err := buildRouterConfig(ctx, cfg, leads.NewPostgresWriter(pools.Restricted), leads.NewPostgresReader(pools.Elevated), redisClient, leadMetrics, logger)
	if err != nil {
		logger.Error("failed to wire handlers", "error", err)
		os.Exit(1)
	}
	routerCfg.MetricsHandler = metricsHandler
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func setupLeadMetrics() (http.Handler, *metrics.LeadMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewLeadMetrics(reg)
}

// buildRouterConfig wires handlers around the given store halves. The intake
// side only ever sees writer and the listing side only ever sees reader.
func buildRouterConfig(
	ctx context.Context,
	cfg *appconfig.Config,
	writer leads.Writer,
	reader leads.Reader,
	redisClient *redis.Client,
	leadMetrics *metrics.LeadMetrics,
	logger *logging.Logger,
) (*router.Config, error) {
	variant, err := leads.ParseFormVariant(cfg.LeadFormVariant)
	if err != nil {
		return nil, &appconfig.ConfigError{Reason: err.Error()}
	}
	validator := leads.NewValidator(variant, cfg.DefaultDiscountCode)

	intake := leads.NewIntakeHandler(validator, writer, leads.IntakeOptions{
		SuppressStoreFailure: cfg.IntakeSuppressStoreFailure,
		ExposeStoreCause:     cfg.IntakeExposeStoreCause,
	}, logger.Component("leads-intake")).WithMetrics(leadMetrics)

	notifier, err := bootstrap.BuildLeadNotifier(ctx, cfg, logger.Component("notify"))
	if err != nil {
		return nil, err
	}
	if notifier != nil {
		intake.WithNotifier(notifier)
	}

	verifier, err := bootstrap.BuildSessionVerifier(cfg, redisClient, logger)
	if err != nil {
		return nil, err
	}
	gate := session.NewGate(session.Options{
		Password: cfg.AdminPassword,
		Verifier: verifier,
		Secure:   cfg.IsProduction(),
		MaxAge:   cfg.SessionMaxAge,
	}, logger.Component("session")).WithMetrics(leadMetrics)

	return &router.Config{
		Logger:             logger,
		IntakeHandler:      intake,
		ListingHandler:     leads.NewListingHandler(reader, logger.Component("leads-listing")).WithMetrics(leadMetrics),
		SessionHandler:     session.NewHandler(gate, logger.Component("session")),
		SessionGate:        gate,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}, nil
}
