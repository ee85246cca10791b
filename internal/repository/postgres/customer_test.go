package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/flipdev/customer-cleanup/internal/domain"
	"github.com/flipdev/customer-cleanup/internal/service/eligibility"
)

var customerCols = []string{"id", "email", "first_name", "last_name", "store_id", "created_at", "last_login_at"}

func TestCustomerRepo_GetByID(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	login := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM customers WHERE id").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(customerCols).
			AddRow(int64(7), "jane@example.com", "Jane", "Miller", 1,
				time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), login))

	repo := NewCustomerRepo(db)
	c, err := repo.GetByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if c.Email != "jane@example.com" || c.LastLoginAt == nil || !c.LastLoginAt.Equal(login) {
		t.Errorf("unexpected customer: %+v", c)
	}
}

func TestCustomerRepo_GetByIDNotFound(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM customers WHERE id").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(customerCols))

	repo := NewCustomerRepo(db)
	if _, err := repo.GetByID(context.Background(), 404); !errors.Is(err, eligibility.ErrCustomerNotFound) {
		t.Errorf("err = %v, want ErrCustomerNotFound", err)
	}
}

func TestCustomerRepo_CreatedBeforeNeverLoggedIn(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	cutoff := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT (.+) FROM customers WHERE created_at < \$1 AND last_login_at IS NULL`).
		WithArgs(cutoff).
		WillReturnRows(sqlmock.NewRows(customerCols).
			AddRow(int64(1), "a@example.com", "A", "One", 1,
				time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), nil))

	repo := NewCustomerRepo(db)
	customers, err := repo.CreatedBefore(context.Background(), cutoff, true)
	if err != nil {
		t.Fatalf("CreatedBefore: %v", err)
	}
	if len(customers) != 1 || customers[0].LastLoginAt != nil {
		t.Errorf("customers = %+v", customers)
	}
}

func TestCustomerRepo_DeleteRequiresPrivilege(t *testing.T) {
	db, _, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCustomerRepo(db)
	err := repo.Delete(context.Background(), &domain.Customer{ID: 7}, domain.DeleteOptions{})
	if err == nil {
		t.Fatal("unprivileged delete must be refused")
	}
}

func TestCustomerRepo_DeleteCascades(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM customer_addresses WHERE customer_id").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM customer_reviews WHERE customer_id").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM customers WHERE id").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewCustomerRepo(db)
	err := repo.Delete(context.Background(), &domain.Customer{ID: 7}, domain.DeleteOptions{
		Privileged:      true,
		DeleteAddresses: true,
		DeleteReviews:   true,
	})
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestCustomerRepo_DeleteMissingCustomerRollsBack(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM customers WHERE id").
		WithArgs(int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	repo := NewCustomerRepo(db)
	err := repo.Delete(context.Background(), &domain.Customer{ID: 404}, domain.DeleteOptions{Privileged: true})
	if !errors.Is(err, eligibility.ErrCustomerNotFound) {
		t.Errorf("err = %v, want ErrCustomerNotFound", err)
	}
}
