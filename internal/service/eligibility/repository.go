package eligibility

import (
	"context"
	"time"

	"github.com/flipdev/customer-cleanup/internal/domain"
)

// CustomerRepository is the data access contract for customer accounts.
type CustomerRepository interface {
	// GetByID returns the customer or an error when it does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)

	// CreatedBefore returns customers registered before the cutoff. When
	// neverLoggedIn is true, only customers without a recorded login are
	// returned.
	CreatedBefore(ctx context.Context, cutoff time.Time, neverLoggedIn bool) ([]domain.Customer, error)

	// LastLoginBefore returns customers whose recorded last login is older
	// than the cutoff. Customers who never logged in are not included.
	LastLoginBefore(ctx context.Context, cutoff time.Time) ([]domain.Customer, error)

	// Delete removes the customer record and, per the options, its
	// dependent records.
	Delete(ctx context.Context, customer *domain.Customer, opts domain.DeleteOptions) error
}

// OrderRepository is the data access contract for orders.
type OrderRepository interface {
	// CountByCustomer returns the number of orders the customer owns.
	CountByCustomer(ctx context.Context, customerID int64) (int, error)

	// FindByCustomer returns all orders owned by the customer, including
	// billing and shipping addresses.
	FindByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error)

	// Save persists modified order fields and addresses.
	Save(ctx context.Context, order *domain.Order) error

	// LastOrderTimes returns, for every customer whose newest order is
	// older than the cutoff, that newest order's creation time. Customers
	// with any order at or after the cutoff are excluded. Guest orders
	// (nil customer id) are ignored.
	LastOrderTimes(ctx context.Context, cutoff time.Time) (map[int64]time.Time, error)
}
