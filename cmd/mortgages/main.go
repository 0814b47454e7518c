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

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"mortgages/internal/amqp"
	"mortgages/internal/cache"
	"mortgages/internal/config"
	apphttp "mortgages/internal/http"
	"mortgages/internal/log"
	"mortgages/internal/services"
	"mortgages/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := log.New(log.Config{Level: slog.LevelInfo, Component: log.ComponentApp})
	slog.SetDefault(logger.Logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// AMQP is optional: without it mortgages are still saved and the worker
	// picks them up through the pending sweep.
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("AMQP unavailable, sync messages disabled", "error", err)
		amqpClient = nil
	} else {
		defer amqpClient.Close()
	}

	// Result cache: Redis when configured, in-process LRU otherwise
	cacheManager := cache.NewManager()
	var resultCache cache.ResultCache
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisCache(cfg.RedisAddr, cfg.CacheTTL)
		defer redisCache.Close()
		resultCache = redisCache
		logger.Info("Using Redis result cache", "addr", cfg.RedisAddr)
	} else {
		lru := cache.NewLRUCache(cfg.CacheMaxSize, cfg.CacheTTL)
		cacheManager.Register(lru)
		resultCache = lru
		logger.Info("Using in-memory result cache", "max_size", cfg.CacheMaxSize, "ttl", cfg.CacheTTL)
	}
	cacheManager.StartCleanup(10 * time.Minute)
	defer cacheManager.Stop()

	mortgageService := services.NewMortgageService(repo, amqpClient)
	plannerService := services.NewPlannerService(repo, resultCache)

	srv := apphttp.NewServer(":"+cfg.Port, mortgageService, plannerService, repo)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting mortgages server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
}
