package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Raymond9734/customer-registry/internal/models"
	"github.com/Raymond9734/customer-registry/internal/service"
)

// EventProcessor reconciles change feed events against the store and
// records the current state of each affected customer
type EventProcessor struct {
	customers service.CustomerService
	logger    *slog.Logger
}

// NewEventProcessor creates a new event processor
func NewEventProcessor(customers service.CustomerService, logger *slog.Logger) *EventProcessor {
	return &EventProcessor{
		customers: customers,
		logger:    logger,
	}
}

// Process handles a single change event. Stale events are logged and
// dropped; only store failures are returned.
func (p *EventProcessor) Process(ctx context.Context, event *models.CustomerEvent) error {
	switch event.Type {
	case models.EventCustomerCreated, models.EventCustomerUpdated:
		return p.handleWrite(ctx, event)
	case models.EventCustomerDeleted:
		return p.handleDelete(ctx, event)
	default:
		p.logger.Warn("unknown event type",
			slog.String("type", event.Type),
			slog.Int64("customer_id", event.CustomerID),
		)
		return nil
	}
}

// handleWrite re-reads the record and logs the store-confirmed snapshot
func (p *EventProcessor) handleWrite(ctx context.Context, event *models.CustomerEvent) error {
	current, err := p.customers.Get(ctx, event.CustomerID)
	if errors.Is(err, models.ErrNotFound) {
		p.logger.Info("stale event, customer no longer exists",
			slog.String("type", event.Type),
			slog.Int64("customer_id", event.CustomerID),
		)
		return nil
	}
	if err != nil {
		p.logger.Error("failed to fetch customer",
			slog.Int64("customer_id", event.CustomerID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to fetch customer: %w", err)
	}

	superseded := event.Customer != nil && *event.Customer != *current

	p.logger.Info("customer change recorded",
		slog.String("type", event.Type),
		slog.Int64("customer_id", current.ID),
		slog.String("name", current.Name),
		slog.String("email", current.Email),
		slog.String("phone", current.Phone),
		slog.Bool("superseded", superseded),
		slog.Time("occurred_at", event.OccurredAt),
	)

	return nil
}

// handleDelete confirms the record is gone
func (p *EventProcessor) handleDelete(ctx context.Context, event *models.CustomerEvent) error {
	_, err := p.customers.Get(ctx, event.CustomerID)
	if errors.Is(err, models.ErrNotFound) {
		p.logger.Info("customer deletion recorded",
			slog.Int64("customer_id", event.CustomerID),
			slog.Time("occurred_at", event.OccurredAt),
		)
		return nil
	}
	if err != nil {
		p.logger.Error("failed to fetch customer",
			slog.Int64("customer_id", event.CustomerID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to fetch customer: %w", err)
	}

	p.logger.Warn("customer still present after deletion event",
		slog.Int64("customer_id", event.CustomerID),
	)
	return nil
}
