package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Raymond9734/customer-registry/internal/models"
	"github.com/Raymond9734/customer-registry/internal/queue"
	"github.com/Raymond9734/customer-registry/internal/repository"
)

// CustomerService is the narrow contract callers (HTTP, console) depend on.
// It forwards to the repository; it holds no state between calls.
type CustomerService interface {
	Create(ctx context.Context, input *models.CustomerInput) (*models.Customer, error)
	Get(ctx context.Context, id int64) (*models.Customer, error)
	List(ctx context.Context, filter string) ([]*models.Customer, error)
	Update(ctx context.Context, id int64, input *models.CustomerInput) (*models.Customer, error)
	Delete(ctx context.Context, id int64) error
}

type customerService struct {
	customerRepo repository.CustomerRepository
	publisher    queue.Publisher
	logger       *slog.Logger
}

// NewCustomerService creates a new customer service. publisher may be nil,
// in which case no change events are emitted.
func NewCustomerService(
	customerRepo repository.CustomerRepository,
	publisher queue.Publisher,
	logger *slog.Logger,
) CustomerService {
	return &customerService{
		customerRepo: customerRepo,
		publisher:    publisher,
		logger:       logger,
	}
}

// Create validates the candidate and persists it
func (s *customerService) Create(ctx context.Context, input *models.CustomerInput) (*models.Customer, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.Create(ctx, input)
	if err != nil {
		s.logFailure("failed to create customer", err, slog.String("email", input.Email))
		return nil, err
	}

	s.logger.Info("customer created",
		slog.Int64("customer_id", customer.ID),
	)
	s.publish(ctx, models.NewCustomerEvent(models.EventCustomerCreated, customer.ID, customer))

	return customer, nil
}

// Get retrieves a customer by ID
func (s *customerService) Get(ctx context.Context, id int64) (*models.Customer, error) {
	return s.customerRepo.GetByID(ctx, id)
}

// List retrieves customers, optionally filtered by an exact field value
func (s *customerService) List(ctx context.Context, filter string) ([]*models.Customer, error) {
	customers, err := s.customerRepo.List(ctx, filter)
	if err != nil {
		s.logFailure("failed to list customers", err)
		return nil, err
	}

	return customers, nil
}

// Update validates the candidate and replaces the customer's fields
func (s *customerService) Update(ctx context.Context, id int64, input *models.CustomerInput) (*models.Customer, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.Update(ctx, id, input)
	if err != nil {
		s.logFailure("failed to update customer", err, slog.Int64("customer_id", id))
		return nil, err
	}

	s.logger.Info("customer updated",
		slog.Int64("customer_id", customer.ID),
	)
	s.publish(ctx, models.NewCustomerEvent(models.EventCustomerUpdated, customer.ID, customer))

	return customer, nil
}

// Delete removes a customer
func (s *customerService) Delete(ctx context.Context, id int64) error {
	if err := s.customerRepo.Delete(ctx, id); err != nil {
		s.logFailure("failed to delete customer", err, slog.Int64("customer_id", id))
		return err
	}

	s.logger.Info("customer deleted",
		slog.Int64("customer_id", id),
	)
	s.publish(ctx, models.NewCustomerEvent(models.EventCustomerDeleted, id, nil))

	return nil
}

// logFailure logs expected outcomes at warn and store failures at error
func (s *customerService) logFailure(msg string, err error, attrs ...any) {
	attrs = append(attrs, slog.String("error", err.Error()))

	if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrConflict) {
		s.logger.Warn(msg, attrs...)
		return
	}
	s.logger.Error(msg, attrs...)
}

// publish emits a change event. The write is already committed, so a feed
// failure is logged and never returned to the caller.
func (s *customerService) publish(ctx context.Context, event *models.CustomerEvent) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish customer event",
			slog.String("type", event.Type),
			slog.Int64("customer_id", event.CustomerID),
			slog.String("error", err.Error()),
		)
	}
}
