package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Raymond9734/customer-registry/internal/logging"
	"github.com/Raymond9734/customer-registry/internal/models"
)

// mockCustomerRepository keeps customers in memory for testing
type mockCustomerRepository struct {
	customers []*models.Customer
	nextID    int64
	calls     int
	failWith  error
}

func (m *mockCustomerRepository) Create(ctx context.Context, input *models.CustomerInput) (*models.Customer, error) {
	m.calls++
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, c := range m.customers {
		if c.Email == input.Email {
			return nil, models.ErrConflictWithMsg("customer with email " + input.Email + " already exists")
		}
	}
	m.nextID++
	customer := &models.Customer{ID: m.nextID, Name: input.Name, Email: input.Email, Phone: input.Phone}
	m.customers = append(m.customers, customer)
	copied := *customer
	return &copied, nil
}

func (m *mockCustomerRepository) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	m.calls++
	for _, c := range m.customers {
		if c.ID == id {
			copied := *c
			return &copied, nil
		}
	}
	return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("customer with ID %d not found", id))
}

func (m *mockCustomerRepository) List(ctx context.Context, filter string) ([]*models.Customer, error) {
	m.calls++
	if m.failWith != nil {
		return nil, m.failWith
	}
	result := []*models.Customer{}
	for _, c := range m.customers {
		if strings.TrimSpace(filter) == "" || c.Matches(filter) {
			copied := *c
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *mockCustomerRepository) Update(ctx context.Context, id int64, input *models.CustomerInput) (*models.Customer, error) {
	m.calls++
	for _, c := range m.customers {
		if c.ID == id {
			c.Name, c.Email, c.Phone = input.Name, input.Email, input.Phone
			copied := *c
			return &copied, nil
		}
	}
	return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("customer with ID %d not found", id))
}

func (m *mockCustomerRepository) Delete(ctx context.Context, id int64) error {
	m.calls++
	for i, c := range m.customers {
		if c.ID == id {
			m.customers = append(m.customers[:i], m.customers[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFoundWithMsg(fmt.Sprintf("customer with ID %d not found", id))
}

// mockPublisher records published events
type mockPublisher struct {
	events   []*models.CustomerEvent
	failWith error
}

func (m *mockPublisher) Publish(ctx context.Context, event *models.CustomerEvent) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.events = append(m.events, event)
	return nil
}

func newTestService() (CustomerService, *mockCustomerRepository, *mockPublisher) {
	repo := &mockCustomerRepository{}
	pub := &mockPublisher{}
	return NewCustomerService(repo, pub, logging.Discard()), repo, pub
}

func TestCreateCustomer(t *testing.T) {
	svc, _, pub := newTestService()
	ctx := context.Background()

	customer, err := svc.Create(ctx, &models.CustomerInput{Name: "Bob", Email: "bob@x.com", Phone: "111"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if customer.ID != 1 || customer.Name != "Bob" {
		t.Errorf("unexpected customer %+v", customer)
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(pub.events))
	}
	if pub.events[0].Type != models.EventCustomerCreated || pub.events[0].CustomerID != 1 {
		t.Errorf("unexpected event %+v", pub.events[0])
	}
}

func TestCreateInvalidNeverReachesStore(t *testing.T) {
	svc, repo, pub := newTestService()

	_, err := svc.Create(context.Background(), &models.CustomerInput{Name: "Bo", Email: "abc", Phone: ""})

	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, want := range []struct{ field, code string }{
		{"name", models.LengthOutOfRange},
		{"email", models.InvalidFormat},
		{"phone", models.RequiredField},
	} {
		if !verr.HasViolation(want.field, want.code) {
			t.Errorf("missing violation %s/%s", want.field, want.code)
		}
	}
	if repo.calls != 0 {
		t.Errorf("expected no repository calls, got %d", repo.calls)
	}
	if len(pub.events) != 0 {
		t.Errorf("expected no events, got %d", len(pub.events))
	}
}

func TestUpdateInvalidNeverReachesStore(t *testing.T) {
	svc, repo, _ := newTestService()

	_, err := svc.Update(context.Background(), 1, &models.CustomerInput{Name: "", Email: "bob@x.com", Phone: "111"})

	var verr *models.ValidationError
	if !errors.As(err, &verr) || !verr.HasViolation("name", models.RequiredField) {
		t.Fatalf("expected name RequiredField, got %v", err)
	}
	if repo.calls != 0 {
		t.Errorf("expected no repository calls, got %d", repo.calls)
	}
}

func TestCreateConflictPassesThrough(t *testing.T) {
	svc, _, pub := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, &models.CustomerInput{Name: "Bob", Email: "bob@x.com", Phone: "111"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := svc.Create(ctx, &models.CustomerInput{Name: "Eve", Email: "bob@x.com", Phone: "222"})
	if !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if len(pub.events) != 1 {
		t.Errorf("expected only the first create to publish, got %d events", len(pub.events))
	}
}

func TestUpdateAndDeleteNotFound(t *testing.T) {
	svc, _, pub := newTestService()
	ctx := context.Background()

	_, err := svc.Update(ctx, 99, &models.CustomerInput{Name: "Bob", Email: "bob@x.com", Phone: "111"})
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound on update, got %v", err)
	}
	if err := svc.Delete(ctx, 99); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound on delete, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Errorf("expected no events, got %d", len(pub.events))
	}
}

func TestUpdateAndDeletePublish(t *testing.T) {
	svc, _, pub := newTestService()
	ctx := context.Background()

	created, _ := svc.Create(ctx, &models.CustomerInput{Name: "Bob", Email: "bob@x.com", Phone: "111"})

	updated, err := svc.Update(ctx, created.ID, &models.CustomerInput{Name: "Robert", Email: "bob@x.com", Phone: "111"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ID != created.ID || updated.Name != "Robert" {
		t.Errorf("unexpected update result %+v", updated)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	wantTypes := []string{models.EventCustomerCreated, models.EventCustomerUpdated, models.EventCustomerDeleted}
	if len(pub.events) != len(wantTypes) {
		t.Fatalf("expected %d events, got %d", len(wantTypes), len(pub.events))
	}
	for i, want := range wantTypes {
		if pub.events[i].Type != want {
			t.Errorf("event %d: expected %s, got %s", i, want, pub.events[i].Type)
		}
	}
	if pub.events[2].Customer != nil {
		t.Error("delete event must not carry a snapshot")
	}
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	repo := &mockCustomerRepository{}
	pub := &mockPublisher{failWith: errors.New("redis down")}
	svc := NewCustomerService(repo, pub, logging.Discard())

	if _, err := svc.Create(context.Background(), &models.CustomerInput{Name: "Bob", Email: "bob@x.com", Phone: "111"}); err != nil {
		t.Fatalf("expected create to succeed despite feed failure, got %v", err)
	}
	if len(repo.customers) != 1 {
		t.Errorf("expected customer to be stored, got %d", len(repo.customers))
	}
}

func TestNilPublisher(t *testing.T) {
	svc := NewCustomerService(&mockCustomerRepository{}, nil, logging.Discard())

	if _, err := svc.Create(context.Background(), &models.CustomerInput{Name: "Bob", Email: "bob@x.com", Phone: "111"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestListForwardsFilter(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	svc.Create(ctx, &models.CustomerInput{Name: "Alice", Email: "alice@x.com", Phone: "111"})
	svc.Create(ctx, &models.CustomerInput{Name: "Alicia", Email: "alicia@x.com", Phone: "222"})

	all, err := svc.List(ctx, "")
	if err != nil || len(all) != 2 {
		t.Fatalf("expected 2 customers, got %d (%v)", len(all), err)
	}

	exact, err := svc.List(ctx, "Alice")
	if err != nil || len(exact) != 1 || exact[0].Name != "Alice" {
		t.Fatalf("expected only Alice, got %+v (%v)", exact, err)
	}
}

func TestListStoreFailure(t *testing.T) {
	repo := &mockCustomerRepository{failWith: models.ErrUnavailableWithCause("failed to list customers", errors.New("timeout"))}
	svc := NewCustomerService(repo, nil, logging.Discard())

	if _, err := svc.List(context.Background(), ""); !errors.Is(err, models.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
