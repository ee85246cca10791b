// Package cleanup implements the customer cleanup executor and the
// pre-deletion warning dispatcher.
//
// CleanupCustomer deletes a customer account or, when order history must
// be retained, anonymizes that history first and then deletes the account.
// SendDeletionWarning emails the customer ahead of deletion. Every
// completed action, live or simulated, attempts to record exactly one
// audit log entry; an audit write failure is reported to operational
// logging but never rolls back or blocks the customer-facing action.
//
// Dry-run semantics: all side effects (delete, anonymize, email) are
// suppressed, decision logic and audit logging still run in full.
package cleanup
