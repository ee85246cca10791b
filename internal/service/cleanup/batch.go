package cleanup

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/flipdev/customer-cleanup/internal/pkg/logger"
)

// BatchResult aggregates the outcome of a batch run. Presentation of the
// per-item errors is entirely the caller's responsibility.
type BatchResult struct {
	RunID     string       `json:"run_id"`
	DryRun    bool         `json:"dry_run"`
	Processed int          `json:"processed"`
	Errored   int          `json:"errored"`
	Skipped   int          `json:"skipped"`
	Errors    []BatchError `json:"errors,omitempty"`
}

// BatchError reports one customer's failure within a batch.
type BatchError struct {
	CustomerID int64  `json:"customer_id"`
	Message    string `json:"message"`
}

// ProcessBatch cleans up the given customers strictly in order, one at a
// time. A failure for one customer is recorded and processing continues;
// each customer's audit entry is written before the next customer starts.
// Returns ErrModuleDisabled without touching anything when the module is
// switched off.
func (s *Service) ProcessBatch(ctx context.Context, customerIDs []int64, reason, adminUser string) (*BatchResult, error) {
	snap := s.cfg.Cleanup()
	if !snap.Enabled {
		return nil, ErrModuleDisabled
	}

	result := &BatchResult{RunID: uuid.New().String(), DryRun: snap.DryRun}
	logger.Info("cleanup batch started",
		"run_id", result.RunID,
		"count", len(customerIDs),
		"dry_run", snap.DryRun,
		"admin_user", adminUser)

	for _, id := range customerIDs {
		customer, err := s.customers.GetByID(ctx, id)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, BatchError{
				CustomerID: id,
				Message:    fmt.Sprintf("customer not found: %v", err),
			})
			continue
		}

		if _, err := s.CleanupCustomer(ctx, customer, reason, adminUser); err != nil {
			result.Errored++
			result.Errors = append(result.Errors, BatchError{CustomerID: id, Message: err.Error()})
			continue
		}
		result.Processed++
	}

	logger.Info("cleanup batch finished",
		"run_id", result.RunID,
		"processed", result.Processed,
		"errored", result.Errored,
		"skipped", result.Skipped)
	return result, nil
}

// NotifyBatch sends the deletion warning to the given customers in order.
// Send failures and disabled notifications count as errored; processing
// always continues to the next customer.
func (s *Service) NotifyBatch(ctx context.Context, customerIDs []int64, daysUntilDeletion int) (*BatchResult, error) {
	snap := s.cfg.Cleanup()
	if !snap.Enabled {
		return nil, ErrModuleDisabled
	}

	result := &BatchResult{RunID: uuid.New().String(), DryRun: snap.DryRun}

	for _, id := range customerIDs {
		customer, err := s.customers.GetByID(ctx, id)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, BatchError{
				CustomerID: id,
				Message:    fmt.Sprintf("customer not found: %v", err),
			})
			continue
		}

		if s.SendDeletionWarning(ctx, customer, daysUntilDeletion) {
			result.Processed++
		} else {
			result.Errored++
			result.Errors = append(result.Errors, BatchError{
				CustomerID: id,
				Message:    "notification not sent",
			})
		}
	}

	logger.Info("notification batch finished",
		"run_id", result.RunID,
		"processed", result.Processed,
		"errored", result.Errored,
		"skipped", result.Skipped)
	return result, nil
}
