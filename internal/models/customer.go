package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Name length bounds, in characters
const (
	NameMinLength = 3
	NameMaxLength = 50
)

// Customer represents a persisted customer record
type Customer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// CustomerInput is a candidate record submitted for create or update.
// It carries no id; the store assigns one on create.
type CustomerInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field rule and collects all violations.
// It returns nil or a *ValidationError.
func (in *CustomerInput) Validate() error {
	var violations []Violation

	if isBlank(in.Name) {
		violations = append(violations, Violation{Field: "name", Code: RequiredField, Message: "name is required"})
	}
	if n := utf8.RuneCountInString(in.Name); n < NameMinLength || n > NameMaxLength {
		violations = append(violations, Violation{Field: "name", Code: LengthOutOfRange, Message: "name must be between 3 and 50 characters"})
	}

	if isBlank(in.Email) {
		violations = append(violations, Violation{Field: "email", Code: RequiredField, Message: "email is required"})
	} else if err := validate.Var(in.Email, "email"); err != nil {
		violations = append(violations, Violation{Field: "email", Code: InvalidFormat, Message: "email must be valid"})
	}

	if isBlank(in.Phone) {
		violations = append(violations, Violation{Field: "phone", Code: RequiredField, Message: "phone is required"})
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Matches reports whether any field equals filter exactly
func (c *Customer) Matches(filter string) bool {
	return c.Name == filter || c.Email == filter || c.Phone == filter
}

// Customer change event types
const (
	EventCustomerCreated = "customer.created"
	EventCustomerUpdated = "customer.updated"
	EventCustomerDeleted = "customer.deleted"
)

// CustomerEvent is published on the change feed after a committed write
type CustomerEvent struct {
	Type       string    `json:"type"`
	CustomerID int64     `json:"customer_id"`
	Customer   *Customer `json:"customer,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewCustomerEvent builds an event stamped with the current time
func NewCustomerEvent(eventType string, id int64, customer *Customer) *CustomerEvent {
	return &CustomerEvent{
		Type:       eventType,
		CustomerID: id,
		Customer:   customer,
		OccurredAt: time.Now().UTC(),
	}
}
