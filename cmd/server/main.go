// Package main is the entry point for the icehouse API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"icehouse/internal/config"
	"icehouse/internal/domain/warehouse"
	v1 "icehouse/internal/infrastructure/http/v1"
	"icehouse/internal/infrastructure/storage/postgres"
	"icehouse/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Development(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting icehouse server")

	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = cfg.DBMaxConns
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatalw("failed to apply migrations", "error", err)
		}
	}

	txManager := postgres.NewTxManager(pool)
	warehouseRepo := postgres.NewWarehouseRepo(txManager)
	warehouseService := warehouse.NewService(warehouseRepo)

	router := v1.NewRouter(v1.RouterConfig{
		Logger:           log,
		Pool:             pool,
		TxManager:        txManager,
		WarehouseService: warehouseService,
	})

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	go func() {
		log.Infow("listening", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("graceful shutdown failed", "error", err)
	}
}
