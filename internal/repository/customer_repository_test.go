package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/Raymond9734/customer-registry/internal/db"
	"github.com/Raymond9734/customer-registry/internal/models"
)

func newTestRepository(t *testing.T) (CustomerRepository, *db.DB) {
	t.Helper()

	database, err := db.New(db.Config{Driver: db.DriverSQLite, Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := database.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	return NewCustomerRepository(database), database
}

func mustCreate(t *testing.T, repo CustomerRepository, name, email, phone string) *models.Customer {
	t.Helper()

	customer, err := repo.Create(context.Background(), &models.CustomerInput{Name: name, Email: email, Phone: phone})
	if err != nil {
		t.Fatalf("failed to create %s: %v", name, err)
	}
	return customer
}

func TestCreateAssignsID(t *testing.T) {
	repo, _ := newTestRepository(t)

	first := mustCreate(t, repo, "Bob", "bob@x.com", "111")
	second := mustCreate(t, repo, "Alice", "alice@x.com", "222")

	if first.ID == 0 || second.ID == 0 {
		t.Fatalf("expected ids to be assigned, got %d and %d", first.ID, second.ID)
	}
	if first.ID == second.ID {
		t.Errorf("expected distinct ids, both got %d", first.ID)
	}
	if first.Name != "Bob" || first.Email != "bob@x.com" || first.Phone != "111" {
		t.Errorf("unexpected fields %+v", first)
	}
}

func TestGetByIDRoundTrip(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	created := mustCreate(t, repo, "Bob", "bob@x.com", "111")

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *got != *created {
		t.Errorf("expected %+v, got %+v", created, got)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	repo, _ := newTestRepository(t)

	_, err := repo.GetByID(context.Background(), 42)
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateDuplicateEmailConflicts(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	mustCreate(t, repo, "Bob", "bob@x.com", "111")

	_, err := repo.Create(ctx, &models.CustomerInput{Name: "Eve", Email: "bob@x.com", Phone: "222"})
	if !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	matches, err := repo.List(ctx, "bob@x.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 1 || matches[0].Name != "Bob" {
		t.Errorf("expected exactly Bob to hold the email, got %+v", matches)
	}
}

func TestListFilterIsExact(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	alice := mustCreate(t, repo, "Alice", "alice@x.com", "111")
	mustCreate(t, repo, "Alicia", "alicia@x.com", "222")
	bob := mustCreate(t, repo, "Bob", "bob@x.com", "Alice")
	mustCreate(t, repo, "alice", "lower@x.com", "333")

	tests := []struct {
		name   string
		filter string
		want   []int64
	}{
		{name: "empty filter returns all", filter: "", want: nil},
		{name: "blank filter returns all", filter: "   ", want: nil},
		{name: "name or phone match", filter: "Alice", want: []int64{alice.ID, bob.ID}},
		{name: "email match", filter: "bob@x.com", want: []int64{bob.ID}},
		{name: "no substring match", filter: "Ali", want: []int64{}},
		{name: "case sensitive", filter: "ALICE", want: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.want == nil {
				if len(got) != 4 {
					t.Fatalf("expected all 4 customers, got %d", len(got))
				}
				return
			}

			if len(got) != len(tt.want) {
				t.Fatalf("expected %d customers, got %d: %+v", len(tt.want), len(got), got)
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("position %d: expected id %d, got %d", i, id, got[i].ID)
				}
			}
		})
	}
}

func TestListEmptyStore(t *testing.T) {
	repo, _ := newTestRepository(t)

	got, err := repo.List(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestUpdateReplacesFields(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	created := mustCreate(t, repo, "Bob", "bob@x.com", "111")

	updated, err := repo.Update(ctx, created.ID, &models.CustomerInput{Name: "Robert", Email: "robert@x.com", Phone: "999"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := models.Customer{ID: created.ID, Name: "Robert", Email: "robert@x.com", Phone: "999"}
	if *updated != want {
		t.Errorf("expected %+v, got %+v", want, updated)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *got != want {
		t.Errorf("expected persisted %+v, got %+v", want, got)
	}
}

func TestUpdateMissingLeavesStoreUnchanged(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	mustCreate(t, repo, "Bob", "bob@x.com", "111")
	before, _ := repo.List(ctx, "")

	_, err := repo.Update(ctx, 999, &models.CustomerInput{Name: "Ghost", Email: "ghost@x.com", Phone: "000"})
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	after, _ := repo.List(ctx, "")
	if len(before) != len(after) || *before[0] != *after[0] {
		t.Errorf("store changed: before %+v, after %+v", before, after)
	}
}

func TestUpdateDuplicateEmailConflicts(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	mustCreate(t, repo, "Bob", "bob@x.com", "111")
	eve := mustCreate(t, repo, "Eve", "eve@x.com", "222")

	_, err := repo.Update(ctx, eve.ID, &models.CustomerInput{Name: "Eve", Email: "bob@x.com", Phone: "222"})
	if !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	got, _ := repo.GetByID(ctx, eve.ID)
	if got.Email != "eve@x.com" {
		t.Errorf("expected rollback to keep eve@x.com, got %s", got.Email)
	}
}

func TestDelete(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	created := mustCreate(t, repo, "Bob", "bob@x.com", "111")

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := repo.GetByID(ctx, created.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	if err := repo.Delete(ctx, created.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestClosedStoreIsUnavailable(t *testing.T) {
	repo, database := newTestRepository(t)
	_ = database.Close()

	_, err := repo.List(context.Background(), "")
	if !errors.Is(err, models.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestScenario(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	bob, err := repo.Create(ctx, &models.CustomerInput{Name: "Bob", Email: "bob@x.com", Phone: "111"})
	if err != nil {
		t.Fatalf("create Bob: %v", err)
	}
	if bob.ID != 1 {
		t.Errorf("expected Bob to get id 1, got %d", bob.ID)
	}

	if _, err := repo.Create(ctx, &models.CustomerInput{Name: "Eve", Email: "bob@x.com", Phone: "222"}); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("create Eve: expected ErrConflict, got %v", err)
	}

	robert, err := repo.Update(ctx, 1, &models.CustomerInput{Name: "Robert", Email: "bob@x.com", Phone: "111"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if robert.Name != "Robert" || robert.ID != 1 {
		t.Errorf("unexpected update result %+v", robert)
	}

	if err := repo.Delete(ctx, 2); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("delete(2): expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, 1); err != nil {
		t.Fatalf("delete(1): %v", err)
	}
	if _, err := repo.GetByID(ctx, 1); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("get(1): expected ErrNotFound, got %v", err)
	}
}
