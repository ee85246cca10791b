package cleanup

import (
	"context"

	"github.com/flipdev/customer-cleanup/internal/config"
	"github.com/flipdev/customer-cleanup/internal/domain"
)

// ConfigSource supplies the current cleanup settings. Resolved fresh at
// the start of every call, never cached across calls: flipping dry-run in
// configuration must take effect on the next invocation.
type ConfigSource interface {
	Cleanup() config.CleanupSnapshot
}

// CustomerStore is the slice of the customer repository this service needs.
type CustomerStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	Delete(ctx context.Context, customer *domain.Customer, opts domain.DeleteOptions) error
}

// OrderStore is the slice of the order repository this service needs.
type OrderStore interface {
	CountByCustomer(ctx context.Context, customerID int64) (int, error)
	FindByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error)
	Save(ctx context.Context, order *domain.Order) error
}

// AuditLog records cleanup actions. Append failures surface as
// auditlog.ErrPersistence and are handled (logged, swallowed) here.
type AuditLog interface {
	Append(ctx context.Context, entry *domain.CleanupLogEntry) error
}

// Mailer delivers the pre-deletion warning email.
type Mailer interface {
	SendWarning(ctx context.Context, customer domain.Customer, daysUntilDeletion int) error
}

// ScanInvalidator drops any cached eligibility scan after a live mutation.
type ScanInvalidator interface {
	InvalidateScan(ctx context.Context)
}
