package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Raymond9734/customer-registry/internal/config"
	"github.com/Raymond9734/customer-registry/internal/console"
	"github.com/Raymond9734/customer-registry/internal/db"
	"github.com/Raymond9734/customer-registry/internal/logging"
	"github.com/Raymond9734/customer-registry/internal/queue"
	"github.com/Raymond9734/customer-registry/internal/repository"
	"github.com/Raymond9734/customer-registry/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Stdout belongs to the menu
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	slog.SetDefault(logger)

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

	var publisher queue.Publisher
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
	}

	customerSvc := service.NewCustomerService(repository.NewCustomerRepository(database), publisher, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := console.NewMenu(customerSvc, os.Stdin, os.Stdout).Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("console session ended", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
