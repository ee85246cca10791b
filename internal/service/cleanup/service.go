package cleanup

import (
	"context"
	"fmt"

	"github.com/flipdev/customer-cleanup/internal/config"
	"github.com/flipdev/customer-cleanup/internal/domain"
	"github.com/flipdev/customer-cleanup/internal/pkg/logger"
)

// Service executes customer cleanup and deletion warnings. It holds no
// mutable state and is safe for concurrent use; each call resolves its own
// config snapshot and carries the privileged-delete signal as a per-call
// value.
type Service struct {
	customers   CustomerStore
	orders      OrderStore
	audit       AuditLog
	mailer      Mailer
	cfg         ConfigSource
	invalidator ScanInvalidator
	metrics     *Metrics
}

// NewService creates a cleanup service.
func NewService(customers CustomerStore, orders OrderStore, audit AuditLog, mailer Mailer, cfg ConfigSource) *Service {
	return &Service{
		customers: customers,
		orders:    orders,
		audit:     audit,
		mailer:    mailer,
		cfg:       cfg,
	}
}

// SetScanInvalidator attaches the eligibility scan cache so live mutations
// can drop it. Optional.
func (s *Service) SetScanInvalidator(inv ScanInvalidator) { s.invalidator = inv }

// SetMetrics attaches Prometheus counters. Optional.
func (s *Service) SetMetrics(m *Metrics) { s.metrics = m }

// CleanupCustomer deletes or anonymizes one customer and records the
// action in the audit log. In dry-run mode nothing is mutated but the
// audit entry is still written, with action "deleted" as the record of
// what would have happened.
//
// On a live-path failure the error is logged with customer context and
// returned as *OperationError; no audit entry is written in that case.
// Batch callers must catch per customer and continue.
func (s *Service) CleanupCustomer(ctx context.Context, customer *domain.Customer, reason, adminUser string) (bool, error) {
	snap := s.cfg.Cleanup()
	action := domain.ActionDeleted

	if !snap.DryRun {
		liveAction, err := s.executeLive(ctx, customer, snap)
		if err != nil {
			logger.Error("customer cleanup failed",
				"customer_id", customer.ID,
				"customer_email", customer.Email,
				"error", err)
			s.metrics.recordFailure()
			return false, &OperationError{CustomerID: customer.ID, Email: customer.Email, Err: err}
		}
		action = liveAction

		logger.Info("customer cleaned up",
			"customer_id", customer.ID,
			"customer_email", customer.Email,
			"action", string(action))

		if s.invalidator != nil {
			s.invalidator.InvalidateScan(ctx)
		}
	}

	s.writeAudit(ctx, domain.NewCleanupLogEntry(*customer, action, reason, snap.DryRun, adminUser))
	s.metrics.recordAction(string(action), mode(snap.DryRun))
	return true, nil
}

// executeLive runs the mutation sequence: anonymize order history first if
// configured, then delete the customer. Anonymization must be persisted
// BEFORE the delete: deleting the customer can cascade into addresses,
// and the anonymized historical order data has to survive the customer's
// removal for accounting retention.
func (s *Service) executeLive(ctx context.Context, customer *domain.Customer, snap config.CleanupSnapshot) (domain.ActionType, error) {
	orderCount, err := s.orders.CountByCustomer(ctx, customer.ID)
	if err != nil {
		return "", fmt.Errorf("count orders: %w", err)
	}

	action := domain.ActionDeleted
	if orderCount > 0 && snap.AnonymizeOrders {
		if err := s.anonymizeOrders(ctx, customer.ID); err != nil {
			return "", err
		}
		action = domain.ActionAnonymized
	}

	opts := domain.DeleteOptions{
		Privileged:      true,
		DeleteAddresses: snap.DeleteAddresses,
		DeleteReviews:   snap.DeleteReviews,
	}
	if err := s.customers.Delete(ctx, customer, opts); err != nil {
		return "", fmt.Errorf("delete customer: %w", err)
	}
	return action, nil
}

// anonymizeOrders overwrites personal data on every order the customer
// owns and persists each one.
func (s *Service) anonymizeOrders(ctx context.Context, customerID int64) error {
	orders, err := s.orders.FindByCustomer(ctx, customerID)
	if err != nil {
		return fmt.Errorf("load orders: %w", err)
	}
	for i := range orders {
		orders[i].Anonymize()
		if err := s.orders.Save(ctx, &orders[i]); err != nil {
			return fmt.Errorf("save anonymized order %d: %w", orders[i].ID, err)
		}
	}
	logger.Debug("anonymized customer orders",
		"customer_id", customerID,
		"order_count", len(orders))
	return nil
}

// SendDeletionWarning emails the customer that the account will be removed
// in the given number of days, and records the notification in the audit
// log. Returns false when notifications are disabled or the send failed;
// it never raises to its caller.
func (s *Service) SendDeletionWarning(ctx context.Context, customer *domain.Customer, daysUntilDeletion int) bool {
	snap := s.cfg.Cleanup()
	if !snap.NotificationsEnabled {
		return false
	}

	if !snap.DryRun {
		if err := s.mailer.SendWarning(ctx, *customer, daysUntilDeletion); err != nil {
			logger.Error("failed to send deletion warning",
				"customer_id", customer.ID,
				"customer_email", customer.Email,
				"error", err)
			s.metrics.recordNotification("failed")
			return false
		}
	}

	reason := fmt.Sprintf("Warning sent: Account will be deleted in %d days", daysUntilDeletion)
	s.writeAudit(ctx, domain.NewCleanupLogEntry(*customer, domain.ActionNotificationSent, reason, snap.DryRun, ""))
	s.metrics.recordNotification("sent")
	return true
}

// writeAudit appends the entry, swallowing persistence failures: the
// customer-facing action already happened and must not be reported as
// failed because its paper trail could not be written.
func (s *Service) writeAudit(ctx context.Context, entry domain.CleanupLogEntry) {
	if err := s.audit.Append(ctx, &entry); err != nil {
		logger.Error("failed to write cleanup log entry",
			"customer_id", entry.CustomerID,
			"customer_email", entry.CustomerEmail,
			"action", string(entry.Action),
			"error", err)
	}
}

func mode(dryRun bool) string {
	if dryRun {
		return "dry_run"
	}
	return "live"
}
