package domain

import "time"

// ActionType enumerates the audited cleanup actions.
type ActionType string

const (
	ActionDeleted          ActionType = "deleted"
	ActionAnonymized       ActionType = "anonymized"
	ActionNotificationSent ActionType = "notification_sent"
)

// Valid reports whether the action type is one of the known values.
func (a ActionType) Valid() bool {
	switch a {
	case ActionDeleted, ActionAnonymized, ActionNotificationSent:
		return true
	}
	return false
}

// DeleteOptions controls how a customer delete is executed by the store.
// The privileged flag replaces the global "secure area" registry switch of
// older admin frameworks: it lives only in this value for the duration of
// a single Delete call, so concurrent cleanups cannot leak guard state.
type DeleteOptions struct {
	Privileged      bool
	DeleteAddresses bool
	DeleteReviews   bool
}

// EligibilityResult tags a customer with the reason it qualified for
// cleanup. Produced transiently by the eligibility filter, never persisted.
type EligibilityResult struct {
	CustomerID int64  `json:"customer_id"`
	Reason     string `json:"reason"`
}

// CleanupLogEntry is one row of the append-only audit log. Entries are
// immutable once written: LogID and CreatedAt are assigned by the store on
// append and never change afterwards.
type CleanupLogEntry struct {
	LogID         int64      `json:"log_id" db:"log_id"`
	CustomerID    int64      `json:"customer_id" db:"customer_id"`
	CustomerEmail string     `json:"customer_email" db:"customer_email"`
	CustomerName  string     `json:"customer_name,omitempty" db:"customer_name"`
	Action        ActionType `json:"action_type" db:"action_type"`
	Reason        string     `json:"reason,omitempty" db:"reason"`
	DryRun        bool       `json:"dry_run" db:"dry_run"`
	AdminUser     string     `json:"admin_user,omitempty" db:"admin_user"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

// NewCleanupLogEntry builds an audit entry for a customer action. LogID and
// CreatedAt are left zero for the store to assign.
func NewCleanupLogEntry(c Customer, action ActionType, reason string, dryRun bool, adminUser string) CleanupLogEntry {
	return CleanupLogEntry{
		CustomerID:    c.ID,
		CustomerEmail: c.Email,
		CustomerName:  c.FullName(),
		Action:        action,
		Reason:        reason,
		DryRun:        dryRun,
		AdminUser:     adminUser,
	}
}
