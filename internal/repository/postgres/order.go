package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/flipdev/customer-cleanup/internal/domain"
)

const orderColumns = `id, customer_id, created_at,
		customer_email, customer_firstname, customer_lastname,
		billing_firstname, billing_lastname, billing_email, billing_telephone,
		shipping_firstname, shipping_lastname, shipping_email, shipping_telephone`

// OrderRepo implements eligibility.OrderRepository against PostgreSQL.
type OrderRepo struct{ db *sql.DB }

// NewOrderRepo creates a Postgres-backed order repository.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

func (r *OrderRepo) CountByCustomer(ctx context.Context, customerID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE customer_id = $1`, customerID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count orders for customer %d: %w", customerID, err)
	}
	return n, nil
}

func (r *OrderRepo) FindByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE customer_id = $1 ORDER BY id`, customerID)
	if err != nil {
		return nil, fmt.Errorf("orders for customer %d: %w", customerID, err)
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		var o domain.Order
		var custID sql.NullInt64
		billing := &domain.Address{}
		shipping := &domain.Address{}
		if err := rows.Scan(
			&o.ID, &custID, &o.CreatedAt,
			&o.CustomerEmail, &o.CustomerFirstName, &o.CustomerLastName,
			&billing.FirstName, &billing.LastName, &billing.Email, &billing.Telephone,
			&shipping.FirstName, &shipping.LastName, &shipping.Email, &shipping.Telephone,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if custID.Valid {
			id := custID.Int64
			o.CustomerID = &id
		}
		o.Billing = billing
		o.Shipping = shipping
		out = append(out, o)
	}
	return out, rows.Err()
}

// Save persists the order's customer identity and address fields. Only
// the columns the anonymizer changes are written.
func (r *OrderRepo) Save(ctx context.Context, order *domain.Order) error {
	billing := order.Billing
	if billing == nil {
		billing = &domain.Address{}
	}
	shipping := order.Shipping
	if shipping == nil {
		shipping = &domain.Address{}
	}

	_, err := r.db.ExecContext(ctx, `
		UPDATE orders SET
			customer_email = $2, customer_firstname = $3, customer_lastname = $4,
			billing_firstname = $5, billing_lastname = $6, billing_email = $7, billing_telephone = $8,
			shipping_firstname = $9, shipping_lastname = $10, shipping_email = $11, shipping_telephone = $12
		WHERE id = $1
	`, order.ID,
		order.CustomerEmail, order.CustomerFirstName, order.CustomerLastName,
		billing.FirstName, billing.LastName, billing.Email, billing.Telephone,
		shipping.FirstName, shipping.LastName, shipping.Email, shipping.Telephone)
	if err != nil {
		return fmt.Errorf("save order %d: %w", order.ID, err)
	}
	return nil
}

// LastOrderTimes aggregates each customer's newest order time, keeping
// only customers whose newest order predates the cutoff. Guest orders
// carry no customer id and never appear.
func (r *OrderRepo) LastOrderTimes(ctx context.Context, cutoff time.Time) (map[int64]time.Time, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT customer_id, MAX(created_at) AS last_order
		FROM orders
		WHERE customer_id IS NOT NULL
		GROUP BY customer_id
		HAVING MAX(created_at) < $1
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("last order times: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]time.Time)
	for rows.Next() {
		var customerID int64
		var last time.Time
		if err := rows.Scan(&customerID, &last); err != nil {
			return nil, fmt.Errorf("scan last order time: %w", err)
		}
		out[customerID] = last
	}
	return out, rows.Err()
}
