// Package auditlog is the paper trail for every cleanup action. Entries
// are append-only: one row per action, written after the action happened,
// never updated. Reporting queries back the admin log grid.
//
// Append failures are wrapped in ErrPersistence so callers can recognize
// them and decide whether to swallow (the cleanup executor does) or fail.
package auditlog
