package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"time"

	"github.com/flipdev/customer-cleanup/internal/domain"
	"github.com/flipdev/customer-cleanup/internal/service/eligibility"
)

const customerColumns = `id, email, first_name, last_name, store_id, created_at, last_login_at`

// CustomerRepo implements eligibility.CustomerRepository against
// PostgreSQL.
type CustomerRepo struct{ db *sql.DB }

// NewCustomerRepo creates a Postgres-backed customer repository.
func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

func (r *CustomerRepo) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)

	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eligibility.ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get customer %d: %w", id, err)
	}
	return c, nil
}

func (r *CustomerRepo) CreatedBefore(ctx context.Context, cutoff time.Time, neverLoggedIn bool) ([]domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE created_at < $1`
	if neverLoggedIn {
		query += ` AND last_login_at IS NULL`
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("customers created before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return collectCustomers(rows)
}

func (r *CustomerRepo) LastLoginBefore(ctx context.Context, cutoff time.Time) ([]domain.Customer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE last_login_at IS NOT NULL AND last_login_at < $1 ORDER BY id`,
		cutoff)
	if err != nil {
		return nil, fmt.Errorf("customers with last login before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return collectCustomers(rows)
}

// Delete removes the customer inside a transaction, cascading into
// addresses and reviews per the options. The privileged flag is the
// caller's assertion that the protected delete is intended; an
// unprivileged call is refused outright.
func (r *CustomerRepo) Delete(ctx context.Context, customer *domain.Customer, opts domain.DeleteOptions) error {
	if !opts.Privileged {
		return fmt.Errorf("delete customer %d: privileged scope required", customer.ID)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete customer %d: begin: %w", customer.ID, err)
	}
	defer tx.Rollback()

	if opts.DeleteAddresses {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM customer_addresses WHERE customer_id = $1`, customer.ID); err != nil {
			return fmt.Errorf("delete customer %d addresses: %w", customer.ID, err)
		}
	}
	if opts.DeleteReviews {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM customer_reviews WHERE customer_id = $1`, customer.ID); err != nil {
			return fmt.Errorf("delete customer %d reviews: %w", customer.ID, err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, customer.ID)
	if err != nil {
		return fmt.Errorf("delete customer %d: %w", customer.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eligibility.ErrCustomerNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete customer %d: commit: %w", customer.ID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (*domain.Customer, error) {
	var c domain.Customer
	var lastLogin sql.NullTime
	if err := row.Scan(&c.ID, &c.Email, &c.FirstName, &c.LastName, &c.StoreID, &c.CreatedAt, &lastLogin); err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		c.LastLoginAt = &t
	}
	return &c, nil
}

func collectCustomers(rows *sql.Rows) ([]domain.Customer, error) {
	defer rows.Close()

	var out []domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}
