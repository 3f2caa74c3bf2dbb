// @title        Seraj Store API
// @version      1.0
// @description  Inventory and point-of-sale backend for a phone shop.
// @BasePath     /
// @securityDefinitions.apikey BearerAuth
// @in           header
// @name         Authorization
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AriBaderkhan/seraj-store/internal/config"
	"github.com/AriBaderkhan/seraj-store/internal/infra"
	"github.com/AriBaderkhan/seraj-store/internal/metrics"
	"github.com/AriBaderkhan/seraj-store/internal/router"
	"github.com/AriBaderkhan/seraj-store/internal/worker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	if cfg.IsProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := infra.NewDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if cfg.AutoMigrate {
		if err := infra.Migrate(ctx, db, "up"); err != nil {
			log.Fatal().Err(err).Msg("migrations failed")
		}
	}

	rdb, err := infra.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Receipt hand-off: sales enqueue, the pool renders through the breaker
	dispatcher := worker.NewDispatcher(rdb)
	receipts := worker.NewReceiptWorker(
		infra.NewRendererClient(cfg.ReceiptRendererURL),
		infra.NewCircuitBreaker("receipt-renderer", infra.DefaultCBConfig()),
		worker.NewRedisDLQ(rdb),
		m,
		cfg.ReceiptMaxAttempts,
	)
	waitWorkers := worker.StartWorkerPool(ctx, rdb, map[string]worker.Handler{
		worker.QueueReceipt: receipts,
	}, cfg.WorkerPoolSize)

	r := router.New(cfg, db, rdb, dispatcher, m, reg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("seraj-store listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	cancel()
	waitWorkers()
	_ = rdb.Close()
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server exited")
}
