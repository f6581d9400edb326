package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Raymond9734/customer-registry/internal/db"
	"github.com/Raymond9734/customer-registry/internal/models"
)

// CustomerRepository defines the interface for customer data access.
// Every method runs in its own unit of work.
type CustomerRepository interface {
	Create(ctx context.Context, input *models.CustomerInput) (*models.Customer, error)
	GetByID(ctx context.Context, id int64) (*models.Customer, error)
	List(ctx context.Context, filter string) ([]*models.Customer, error)
	Update(ctx context.Context, id int64, input *models.CustomerInput) (*models.Customer, error)
	Delete(ctx context.Context, id int64) error
}

// customerRepository implements CustomerRepository on top of a db.DB handle
type customerRepository struct {
	db *db.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(database *db.DB) CustomerRepository {
	return &customerRepository{db: database}
}

// Create inserts a new customer and returns it with its store-assigned id
func (r *customerRepository) Create(ctx context.Context, input *models.CustomerInput) (*models.Customer, error) {
	query := r.db.Rebind(`
		INSERT INTO customer (name, email, phone)
		VALUES ($1, $2, $3)
		RETURNING id, name, email, phone`)

	customer := &models.Customer{}
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, query, input.Name, input.Email, input.Phone).Scan(
			&customer.ID,
			&customer.Name,
			&customer.Email,
			&customer.Phone,
		)
		if db.IsUniqueViolation(err) {
			return models.ErrConflictWithMsg(fmt.Sprintf("customer with email %s already exists", input.Email))
		}
		if err != nil {
			return models.ErrUnavailableWithCause("failed to create customer", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return customer, nil
}

// GetByID retrieves a customer by ID
func (r *customerRepository) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	query := r.db.Rebind(`
		SELECT id, name, email, phone
		FROM customer
		WHERE id = $1`)

	customer := &models.Customer{}
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, query, id).Scan(
			&customer.ID,
			&customer.Name,
			&customer.Email,
			&customer.Phone,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrNotFoundWithMsg(fmt.Sprintf("customer with ID %d not found", id))
		}
		if err != nil {
			return models.ErrUnavailableWithCause("failed to get customer", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return customer, nil
}

// List retrieves every customer when filter is blank, otherwise only the
// customers whose name, email or phone equals filter exactly
func (r *customerRepository) List(ctx context.Context, filter string) ([]*models.Customer, error) {
	query := `
		SELECT id, name, email, phone
		FROM customer`
	args := []interface{}{}

	if strings.TrimSpace(filter) != "" {
		query += ` WHERE name = $1 OR email = $2 OR phone = $3`
		args = append(args, filter, filter, filter)
	}
	query = r.db.Rebind(query + ` ORDER BY id`)

	customers := []*models.Customer{}
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return models.ErrUnavailableWithCause("failed to list customers", err)
		}
		defer rows.Close()

		for rows.Next() {
			customer := &models.Customer{}
			if err := rows.Scan(
				&customer.ID,
				&customer.Name,
				&customer.Email,
				&customer.Phone,
			); err != nil {
				return models.ErrUnavailableWithCause("failed to scan customer", err)
			}
			customers = append(customers, customer)
		}

		if err := rows.Err(); err != nil {
			return models.ErrUnavailableWithCause("error iterating customers", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return customers, nil
}

// Update replaces name, email and phone of an existing customer. The id
// never changes. A missing id abandons the unit of work without writing.
func (r *customerRepository) Update(ctx context.Context, id int64, input *models.CustomerInput) (*models.Customer, error) {
	query := r.db.Rebind(`
		UPDATE customer
		SET name = $1, email = $2, phone = $3
		WHERE id = $4
		RETURNING id, name, email, phone`)

	customer := &models.Customer{}
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, query, input.Name, input.Email, input.Phone, id).Scan(
			&customer.ID,
			&customer.Name,
			&customer.Email,
			&customer.Phone,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrNotFoundWithMsg(fmt.Sprintf("customer with ID %d not found", id))
		}
		if db.IsUniqueViolation(err) {
			return models.ErrConflictWithMsg(fmt.Sprintf("customer with email %s already exists", input.Email))
		}
		if err != nil {
			return models.ErrUnavailableWithCause("failed to update customer", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return customer, nil
}

// Delete removes a customer permanently
func (r *customerRepository) Delete(ctx context.Context, id int64) error {
	query := r.db.Rebind(`DELETE FROM customer WHERE id = $1`)

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query, id)
		if err != nil {
			return models.ErrUnavailableWithCause("failed to delete customer", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return models.ErrUnavailableWithCause("failed to get rows affected", err)
		}

		if rowsAffected == 0 {
			return models.ErrNotFoundWithMsg(fmt.Sprintf("customer with ID %d not found", id))
		}

		return nil
	})
}
