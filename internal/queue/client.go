package queue

import (
	"context"

	"github.com/Raymond9734/customer-registry/internal/models"
)

// Publisher sends customer change events to the feed
type Publisher interface {
	Publish(ctx context.Context, event *models.CustomerEvent) error
}

// Client defines the interface for change feed operations
type Client interface {
	Publisher

	// Consume receives events from the feed and processes them with the handler
	// concurrency controls how many events can be processed simultaneously
	Consume(ctx context.Context, handler EventHandler, concurrency int) error

	// Close closes the queue connection
	Close() error

	// Health checks if the queue is healthy
	Health(ctx context.Context) error
}

// EventHandler is a function that processes a customer event
type EventHandler func(ctx context.Context, event *models.CustomerEvent) error
