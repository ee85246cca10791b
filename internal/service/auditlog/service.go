package auditlog

import (
	"context"
	"fmt"

	"github.com/flipdev/customer-cleanup/internal/domain"
	"github.com/flipdev/customer-cleanup/internal/pkg/logger"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// Store fronts the log repository with validation and limit handling.
type Store struct {
	repo Repository
}

func NewStore(repo Repository) *Store {
	return &Store{repo: repo}
}

// Append stores the entry and returns its assigned log ID. A rejected
// entry or failed insert comes back wrapped in ErrPersistence.
func (s *Store) Append(ctx context.Context, entry *domain.CleanupLogEntry) (int64, error) {
	if !entry.Action.Valid() {
		return 0, fmt.Errorf("%w: unknown action type %q", ErrPersistence, entry.Action)
	}
	if entry.CustomerID <= 0 {
		return 0, fmt.Errorf("%w: missing customer id", ErrPersistence)
	}

	if err := s.repo.Insert(ctx, entry); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return entry.LogID, nil
}

// List returns entries matching the filter, newest first. The limit is
// defaulted and capped so the admin grid cannot request the whole table.
func (s *Store) List(ctx context.Context, filter Filter) ([]domain.CleanupLogEntry, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list cleanup log: %w", err)
	}
	return entries, nil
}

// Recent returns the n newest entries.
func (s *Store) Recent(ctx context.Context, n int) ([]domain.CleanupLogEntry, error) {
	return s.List(ctx, Filter{Limit: n})
}

// CountByAction aggregates entry counts per action type for the status
// banner.
func (s *Store) CountByAction(ctx context.Context) (map[domain.ActionType]int64, error) {
	counts, err := s.repo.CountByAction(ctx)
	if err != nil {
		return nil, fmt.Errorf("count cleanup log: %w", err)
	}
	return counts, nil
}

// Purge removes every entry. Only uninstall tooling calls this.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	removed, err := s.repo.Purge(ctx)
	if err != nil {
		return 0, fmt.Errorf("purge cleanup log: %w", err)
	}
	logger.Warn("cleanup log purged", "removed", removed)
	return removed, nil
}
