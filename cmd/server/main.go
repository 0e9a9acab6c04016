// Package main is the entry point for the erpledger API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"erpledger/internal/app"
	"erpledger/internal/config"
	"erpledger/internal/domain/auth"
	"erpledger/internal/infrastructure/cache"
	v1 "erpledger/internal/infrastructure/http/v1"
	"erpledger/internal/infrastructure/http/v1/handlers"
	"erpledger/internal/infrastructure/metrics"
	"erpledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting erpledger server", "storage", cfg.StorageDriver, "env", cfg.Env)

	// --- Storage ---
	storage, err := app.OpenStorage(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to open storage", "driver", cfg.StorageDriver, "error", err)
	}
	defer func() {
		if err := storage.Close(); err != nil {
			log.Warnw("failed to close storage", "error", err)
		}
	}()

	var checks []handlers.Check
	if storage.Ping != nil {
		checks = append(checks, handlers.Check{Name: storage.Driver, Ping: storage.Ping})
	}

	services := app.New(storage.Store, nil)

	// --- JWT Service ---
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret))

	// --- Idempotency ---
	var idem cache.IdempotencyStore
	if cfg.RedisAddr != "" {
		rs := cache.NewRedisIdempotencyStore(
			cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB),
			cfg.IdempotencyTTL,
		)
		if err := rs.Ping(ctx); err != nil {
			log.Fatalw("failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
		}
		defer rs.Close()
		checks = append(checks, handlers.Check{Name: "redis", Ping: rs.Ping})
		idem = rs
		log.Infow("idempotency store ready", "backend", "redis", "ttl", cfg.IdempotencyTTL)
	} else {
		idem = cache.NewMemoryIdempotencyStore(cfg.IdempotencyTTL)
		log.Infow("idempotency store ready", "backend", "memory", "ttl", cfg.IdempotencyTTL)
	}

	// --- Metrics ---
	m := metrics.New()
	if err := m.Register(metrics.NewStockCollector(services.Reports)); err != nil {
		log.Fatalw("failed to register stock collector", "error", err)
	}

	// --- Router ---
	router, err := v1.NewRouter(v1.RouterConfig{
		Services:        services,
		Logger:          log,
		JWTValidator:    jwtService,
		AuthRequired:    cfg.AuthRequired,
		Idempotency:     idem,
		Metrics:         m,
		StorageName:     storage.Driver,
		ReadinessChecks: checks,
	})
	if err != nil {
		log.Fatalw("failed to build router", "error", err)
	}

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port, "auth_required", cfg.AuthRequired)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
