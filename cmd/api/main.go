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

	"github.com/joho/godotenv"

	"github.com/Raymond9734/customer-registry/internal/config"
	"github.com/Raymond9734/customer-registry/internal/db"
	"github.com/Raymond9734/customer-registry/internal/handler"
	"github.com/Raymond9734/customer-registry/internal/logging"
	"github.com/Raymond9734/customer-registry/internal/queue"
	"github.com/Raymond9734/customer-registry/internal/repository"
	"github.com/Raymond9734/customer-registry/internal/service"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize logger
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)
	slog.SetDefault(logger)

	logger.Info("starting customer registry API server")

	// Connect to database
	database, err := db.New(db.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	if err := database.EnsureSchema(context.Background()); err != nil {
		logger.Error("failed to create schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("connected to database", slog.String("driver", database.Driver()))

	// Connect to Redis change feed when configured
	var (
		publisher queue.Publisher
		feed      handler.HealthChecker
	)
	if cfg.Queue.RedisURL != "" {
		queueClient, err := queue.NewRedisClient(queue.RedisConfig{
			URL:       cfg.Queue.RedisURL,
			QueueName: cfg.Queue.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer queueClient.Close()

		publisher = queueClient
		feed = queueClient
		logger.Info("connected to Redis change feed", slog.String("queue", cfg.Queue.QueueName))
	} else {
		logger.Info("change feed disabled")
	}

	// Wire layers
	customerRepo := repository.NewCustomerRepository(database)
	customerSvc := service.NewCustomerService(customerRepo, publisher, logger)

	customerHandler := handler.NewCustomerHandler(customerSvc, logger)
	healthHandler := handler.NewHealthHandler(database, feed, logger)

	router := handler.NewRouter(customerHandler, healthHandler, logger)

	// Create server
	addr := fmt.Sprintf(":%d", cfg.API.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("API server listening", slog.String("addr", addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Wait for interrupt signal or server error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}

	case sig := <-quit:
		logger.Info("shutting down server", slog.String("signal", sig.String()))

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown failed", slog.String("error", err.Error()))
			os.Exit(1)
		}

		logger.Info("server stopped gracefully")
	}
}
