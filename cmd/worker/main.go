package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Raymond9734/customer-registry/internal/config"
	"github.com/Raymond9734/customer-registry/internal/db"
	"github.com/Raymond9734/customer-registry/internal/logging"
	"github.com/Raymond9734/customer-registry/internal/queue"
	"github.com/Raymond9734/customer-registry/internal/repository"
	"github.com/Raymond9734/customer-registry/internal/service"
	"github.com/Raymond9734/customer-registry/internal/worker"
)

func main() {
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

	logger.Info("starting customer change feed worker")

	if cfg.Queue.RedisURL == "" {
		logger.Error("REDIS_URL is required to run the worker")
		os.Exit(1)
	}

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

	logger.Info("connected to database", slog.String("driver", database.Driver()))

	// Connect to Redis change feed
	queueClient, err := queue.NewRedisClient(queue.RedisConfig{
		URL:       cfg.Queue.RedisURL,
		QueueName: cfg.Queue.QueueName,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer queueClient.Close()

	logger.Info("connected to Redis change feed", slog.String("queue", cfg.Queue.QueueName))

	// The worker only reads, so it never publishes events of its own
	customerRepo := repository.NewCustomerRepository(database)
	customerSvc := service.NewCustomerService(customerRepo, nil, logger)

	processor := worker.NewEventProcessor(customerSvc, logger)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start consuming events
	consumerErrors := make(chan error, 1)
	go func() {
		consumerErrors <- queueClient.Consume(ctx, processor.Process, cfg.Worker.Concurrency)
	}()

	// Wait for interrupt signal or consumer error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-consumerErrors:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("consumer error", slog.String("error", err.Error()))
			os.Exit(1)
		}

	case sig := <-quit:
		logger.Info("shutting down worker", slog.String("signal", sig.String()))

		// Cancel context to stop consumer
		cancel()

		// Consume returns once in-flight events are done
		select {
		case <-consumerErrors:
			logger.Info("worker stopped gracefully")
		case <-time.After(30 * time.Second):
			logger.Warn("worker shutdown timed out")
		}
	}
}
